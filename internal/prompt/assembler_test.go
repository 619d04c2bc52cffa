package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarian/librarian-backend/internal/llm"
)

func breakpoints(req llm.AssembledRequest) (system int, messageIdx []int) {
	for _, block := range req.System {
		if block.CacheControl != nil {
			system++
		}
	}
	for i, msg := range req.Messages {
		for _, block := range msg.Content {
			if block.CacheControl != nil {
				messageIdx = append(messageIdx, i)
			}
		}
	}
	return system, messageIdx
}

func TestAssemble_FullRequest(t *testing.T) {
	req := Assemble(Input{
		System:            "you are the librarian",
		CapabilityContext: "=== SKILL: docx ===\ncontent",
		SideData:          "[DOC 1] reference text",
		Prefix:            []Exchange{{User: "u0", Assistant: "a0"}},
		Suffix:            []Exchange{{User: "u1", Assistant: "a1"}, {User: "u2", Assistant: "a2"}},
		UserMessage:       "new question",
	})

	require.Len(t, req.System, 1)
	assert.Equal(t, "you are the librarian", req.System[0].Text)

	// capability pair, side-data pair, prefix pair, two suffix pairs, new message.
	require.Len(t, req.Messages, 11)

	roles := make([]string, len(req.Messages))
	for i, m := range req.Messages {
		roles[i] = m.Role
	}
	assert.Equal(t, []string{
		llm.RoleUser, llm.RoleAssistant, // capability context + ack
		llm.RoleUser, llm.RoleAssistant, // side data + ack
		llm.RoleUser, llm.RoleAssistant, // prefix turn
		llm.RoleUser, llm.RoleAssistant, // suffix turn
		llm.RoleUser, llm.RoleAssistant, // suffix turn
		llm.RoleUser, // new message
	}, roles)

	assert.Contains(t, req.Messages[0].Content[0].Text, "=== SKILL: docx ===")
	assert.Contains(t, req.Messages[2].Content[0].Text, "[DOC 1] reference text")
	assert.Equal(t, "new question", req.Messages[10].Content[0].Text)

	system, messageIdx := breakpoints(req)
	assert.Equal(t, 1, system, "system block is always marked cacheable")
	assert.Equal(t, []int{5}, messageIdx, "one breakpoint, on the last message of the cacheable run")
}

func TestAssemble_OmittedBlocks(t *testing.T) {
	tests := []struct {
		name         string
		in           Input
		wantMessages int
		wantMarkIdx  []int
	}{
		{
			name: "no capability context",
			in: Input{
				System:      "sys",
				SideData:    "docs",
				Prefix:      []Exchange{{User: "u0", Assistant: "a0"}},
				UserMessage: "q",
			},
			wantMessages: 5,
			wantMarkIdx:  []int{3},
		},
		{
			name: "no side data",
			in: Input{
				System:            "sys",
				CapabilityContext: "skills",
				Prefix:            []Exchange{{User: "u0", Assistant: "a0"}},
				UserMessage:       "q",
			},
			wantMessages: 5,
			wantMarkIdx:  []int{3},
		},
		{
			name: "empty prefix marks side data",
			in: Input{
				System:      "sys",
				SideData:    "docs",
				Suffix:      []Exchange{{User: "u0", Assistant: "a0"}},
				UserMessage: "q",
			},
			wantMessages: 5,
			wantMarkIdx:  []int{1},
		},
		{
			name:         "nothing cacheable in messages",
			in:           Input{System: "sys", UserMessage: "q"},
			wantMessages: 1,
			wantMarkIdx:  nil,
		},
		{
			name: "suffix only",
			in: Input{
				System:      "sys",
				Suffix:      []Exchange{{User: "u0", Assistant: "a0"}},
				UserMessage: "q",
			},
			wantMessages: 3,
			wantMarkIdx:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Assemble(tt.in)

			assert.Len(t, req.Messages, tt.wantMessages)

			_, messageIdx := breakpoints(req)
			assert.Equal(t, tt.wantMarkIdx, messageIdx)

			// The new user message is always last and never cached.
			last := req.Messages[len(req.Messages)-1]
			assert.Equal(t, llm.RoleUser, last.Role)
			assert.Equal(t, "q", last.Content[0].Text)
			assert.Nil(t, last.Content[0].CacheControl)
		})
	}
}

func TestAssemble_EmptySystemOmitted(t *testing.T) {
	req := Assemble(Input{UserMessage: "q"})

	assert.Empty(t, req.System)
	require.Len(t, req.Messages, 1)
}

func TestAssemble_PrefixStableAcrossGrowth(t *testing.T) {
	// The serialized cacheable run for a growing history must keep earlier
	// content byte-identical, or the provider cache is worthless.
	prefix := []Exchange{{User: "u0", Assistant: "a0"}}
	grown := []Exchange{{User: "u0", Assistant: "a0"}, {User: "u1", Assistant: "a1"}}

	small := Assemble(Input{System: "sys", Prefix: prefix, UserMessage: "q"})
	large := Assemble(Input{System: "sys", Prefix: grown, UserMessage: "q"})

	for i, msg := range small.Messages[:2] {
		assert.Equal(t, msg.Role, large.Messages[i].Role)
		assert.Equal(t, msg.Content[0].Text, large.Messages[i].Content[0].Text)
	}
}
