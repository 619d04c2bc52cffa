package llm

import (
	"encoding/json"
)

// Message roles used in assembled requests.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// CacheControl marks a content block as a cache breakpoint. Providers that
// support prefix caching may reuse everything up to and including the marked
// block if it is byte-identical to a previously submitted prefix.
type CacheControl struct {
	Type string `json:"type"`
}

// EphemeralCache returns the standard short-lived cache marker.
func EphemeralCache() *CacheControl {
	return &CacheControl{Type: "ephemeral"}
}

// ContentBlock is a single block of request content. Only the last block of
// a contiguous cacheable run carries a CacheControl marker.
type ContentBlock struct {
	Type         string        `json:"type"`
	Text         string        `json:"text,omitempty"`
	CacheControl *CacheControl `json:"cache_control,omitempty"`
}

// TextBlock builds a plain text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: "text", Text: text}
}

// Message is one role-attributed entry in the assembled message sequence.
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// AssembledRequest is the provider-agnostic outbound request shape: a system
// block sequence plus an ordered message sequence, both annotated with cache
// breakpoints where content is stable enough to reuse.
type AssembledRequest struct {
	System   []ContentBlock `json:"system,omitempty"`
	Messages []Message      `json:"messages"`
}

// ToolCall records a tool invocation requested by the model.
type ToolCall struct {
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input,omitempty"`
}

// Usage is the token accounting returned alongside a model response. All
// counts default to zero; providers that do not report a category leave it
// at zero rather than omitting the field.
type Usage struct {
	InputTokens      int `json:"input_tokens"`
	CacheWriteTokens int `json:"cache_creation_input_tokens"`
	CacheReadTokens  int `json:"cache_read_input_tokens"`
	OutputTokens     int `json:"output_tokens"`
}

// CacheHit reports whether any part of the request prefix was served from
// the provider-side cache.
func (u Usage) CacheHit() bool {
	return u.CacheReadTokens > 0
}

// Response is the provider-agnostic model response.
type Response struct {
	Text       string     `json:"text"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	Usage      Usage      `json:"usage"`
	Model      string     `json:"model,omitempty"`
	StopReason string     `json:"stop_reason,omitempty"`
}
