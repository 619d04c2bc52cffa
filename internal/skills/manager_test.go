package skills

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func writeSkill(t *testing.T, baseDir, category, name, content string) {
	t.Helper()
	dir := filepath.Join(baseDir, category, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte(content), 0o644))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeSkill(t, dir, "public", "docx", "---\nname: docx\ndescription: Word document guidance\n---\n\n# docx\n\nUse styles.")
	writeSkill(t, dir, "public", "pdf", "# pdf\n\nPDF manipulation guide.")
	writeSkill(t, dir, "examples", "theme-factory", "Toolkit for styling artifacts.")

	m := Load(dir, testLogger())

	require.Equal(t, 3, m.Count())

	loaded := m.Skills()
	assert.Equal(t, "docx", loaded[0].Name)
	assert.Equal(t, "Word document guidance", loaded[0].Description)
	assert.Equal(t, "public", loaded[0].Category)
	assert.Equal(t, "PDF manipulation guide.", loaded[1].Description)
	assert.Equal(t, "examples", loaded[2].Category)
}

func TestLoad_MissingDirectory(t *testing.T) {
	m := Load(filepath.Join(t.TempDir(), "does-not-exist"), testLogger())

	assert.Zero(t, m.Count())
	assert.Empty(t, m.Detect("make me a word document"))
}

func TestManager_Detect(t *testing.T) {
	dir := t.TempDir()
	writeSkill(t, dir, "public", "docx", "word docs")
	writeSkill(t, dir, "public", "pptx", "slides")
	writeSkill(t, dir, "public", "xlsx", "sheets")
	writeSkill(t, dir, "examples", "theme-factory", "themes")
	m := Load(dir, testLogger())

	tests := []struct {
		name    string
		message string
		want    []string
	}{
		{name: "word keyword", message: "Write me a Word document about Q3", want: []string{"docx"}},
		{name: "multiple skills", message: "turn this spreadsheet into a presentation", want: []string{"pptx", "xlsx"}},
		{name: "skill name match", message: "use the theme-factory look", want: []string{"theme-factory"}},
		{name: "no match", message: "what time is it", want: nil},
		{name: "unloaded skill keyword", message: "read this pdf", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Detect(tt.message))
		})
	}
}

func TestManager_Context(t *testing.T) {
	dir := t.TempDir()
	writeSkill(t, dir, "public", "docx", "Use styles.")
	writeSkill(t, dir, "public", "pptx", "Use layouts.")
	m := Load(dir, testLogger())

	context := m.Context([]string{"docx", "pptx", "unknown"})

	assert.Contains(t, context, "=== SKILL: docx ===")
	assert.Contains(t, context, "Use styles.")
	assert.Contains(t, context, "=== SKILL: pptx ===")
	assert.NotContains(t, context, "unknown")

	assert.Empty(t, m.Context(nil))
}

func TestManager_SystemPromptStable(t *testing.T) {
	dir := t.TempDir()
	writeSkill(t, dir, "public", "docx", "Word guidance")
	writeSkill(t, dir, "public", "xlsx", "Sheet guidance")
	m := Load(dir, testLogger())

	first := m.SystemPrompt()
	second := m.SystemPrompt()

	// Byte-identical output is required for the system block to stay
	// cacheable across requests.
	assert.Equal(t, first, second)
	assert.Contains(t, first, "- docx: Word guidance")
	assert.Contains(t, first, "- xlsx: Sheet guidance")
}
