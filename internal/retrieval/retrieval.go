// Package retrieval provides the side-data collaborators: document stores
// that answer free-text queries with formatted reference context.
package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Document is one stored reference document.
type Document struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	Module    string    `db:"module" json:"module"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// maxResults caps how many documents a single retrieval folds into context.
const maxResults = 5

// FormatContext renders search results as a reference block: one [DOC n]
// section per document. An empty result formats to an empty string, which
// callers treat as "no side data".
func FormatContext(docs []Document) string {
	if len(docs) == 0 {
		return ""
	}

	var b strings.Builder
	for i, doc := range docs {
		module := doc.Module
		if module == "" {
			module = "Unknown"
		}
		fmt.Fprintf(&b, "[DOC %d] %s\n%s\n", i+1, module, doc.Content)
		if i < len(docs)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Store is the document-store contract shared by the Postgres and in-memory
// implementations.
type Store interface {
	Retrieve(ctx context.Context, query string) (string, bool, error)
	Add(ctx context.Context, doc Document) (string, error)
	List(ctx context.Context, limit int) ([]Document, error)
}
