// Package skills loads capability guidance ("skills") from disk and detects
// which of them apply to an incoming message. The rendered skill context is
// a best-effort enrichment: a skill that fails to load is skipped, never
// fatal.
package skills

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// Skill is one loaded capability guide.
type Skill struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Content     string `json:"-"`
	Category    string `json:"category"`
}

// Manager holds the loaded skill library.
type Manager struct {
	skills map[string]Skill
	log    *logrus.Logger
}

// skillKeywords maps skill names to the message keywords that trigger them.
// Skills not listed here are triggered by their own name appearing in the
// message.
var skillKeywords = map[string][]string{
	"docx": {"word", "docx", "document", "doc"},
	"pptx": {"powerpoint", "pptx", "presentation", "slide"},
	"xlsx": {"excel", "xlsx", "spreadsheet", "workbook"},
	"pdf":  {"pdf", "portable document"},
}

// Load reads every <category>/<name>/SKILL.md under baseDir. Unreadable
// skills are logged and skipped.
func Load(baseDir string, log *logrus.Logger) *Manager {
	m := &Manager{
		skills: make(map[string]Skill),
		log:    log,
	}

	categories, err := os.ReadDir(baseDir)
	if err != nil {
		log.WithError(err).WithField("dir", baseDir).Warn("skill directory unavailable")
		return m
	}

	for _, category := range categories {
		if !category.IsDir() {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(baseDir, category.Name()))
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			path := filepath.Join(baseDir, category.Name(), entry.Name(), "SKILL.md")
			content, err := os.ReadFile(path)
			if err != nil {
				log.WithError(err).WithField("skill", entry.Name()).Warn("skipping unreadable skill")
				continue
			}
			m.skills[entry.Name()] = Skill{
				Name:        entry.Name(),
				Description: describe(string(content), entry.Name()),
				Content:     string(content),
				Category:    category.Name(),
			}
		}
	}

	log.WithField("skills", len(m.skills)).Info("skill library loaded")
	return m
}

// Detect returns the loaded skills relevant to a message, by keyword match
// or by the skill's name appearing in the message.
func (m *Manager) Detect(message string) []string {
	lower := strings.ToLower(message)

	var tags []string
	for name := range m.skills {
		if matches(lower, name) {
			tags = append(tags, name)
		}
	}
	sort.Strings(tags)
	return tags
}

// Context renders the given skills as a single context block. Unknown tags
// are ignored; an empty result means the capability block is omitted.
func (m *Manager) Context(tags []string) string {
	var sections []string
	for _, tag := range tags {
		skill, ok := m.skills[tag]
		if !ok {
			continue
		}
		sections = append(sections, fmt.Sprintf("=== SKILL: %s ===\n%s\n", skill.Name, skill.Content))
	}
	return strings.Join(sections, "\n")
}

// SystemPrompt builds the assistant's system instructions, listing the
// loaded skills. The text is stable for a given skill library, which keeps
// the system block cacheable across requests.
func (m *Manager) SystemPrompt() string {
	names := make([]string, 0, len(m.skills))
	for name := range m.skills {
		names = append(names, name)
	}
	sort.Strings(names)

	var list strings.Builder
	for _, name := range names {
		fmt.Fprintf(&list, "- %s: %s\n", name, m.skills[name].Description)
	}

	return fmt.Sprintf(`You are the Librarian, the keeper of this knowledge base.

Your role:
- Help users find and understand documentation
- Provide expert guidance using the specialized skills below
- Synthesize information from multiple sources and cite them
- Ask clarifying questions when needed

Available skills:
%s
When a request matches a skill, follow that skill's guidance exactly and
cite which skills you used.`, list.String())
}

// Skills returns the loaded skills sorted by name.
func (m *Manager) Skills() []Skill {
	out := make([]Skill, 0, len(m.skills))
	for _, skill := range m.skills {
		out = append(out, skill)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Count returns the number of loaded skills.
func (m *Manager) Count() int {
	return len(m.skills)
}

func matches(lowerMessage, skillName string) bool {
	keywords, ok := skillKeywords[skillName]
	if !ok {
		keywords = []string{strings.ToLower(skillName)}
	}
	for _, keyword := range keywords {
		if strings.Contains(lowerMessage, keyword) {
			return true
		}
	}
	return false
}

// describe extracts a one-line description: a frontmatter description field
// if present, otherwise the first body line that is not a heading, falling
// back to the skill name.
func describe(content, name string) string {
	lines := strings.Split(content, "\n")

	inFrontmatter := false
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "---" {
			if i == 0 {
				inFrontmatter = true
				continue
			}
			inFrontmatter = false
			continue
		}
		if inFrontmatter {
			if value, found := strings.CutPrefix(line, "description:"); found {
				return strings.TrimSpace(value)
			}
			continue
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line
	}
	return name
}
