// Package prompt assembles outbound model requests: an ordered block
// sequence with explicit cache-breakpoint markers.
package prompt

import (
	"github.com/librarian/librarian-backend/internal/llm"
)

// Exchange is one serialized user/assistant turn.
type Exchange struct {
	User      string
	Assistant string
}

// Input carries everything a single request is assembled from. Empty
// CapabilityContext or SideData means the corresponding block is omitted
// entirely; a partial block is never sent.
type Input struct {
	// System is the system-instructions text, always marked cacheable.
	System string
	// CapabilityContext is task-specific guidance, cacheable as a unit.
	CapabilityContext string
	// SideData is retrieved reference text, cacheable as a unit.
	SideData string
	// Prefix is the committable turn history, cacheable.
	Prefix []Exchange
	// Suffix is the freshness-window turn history, never cached.
	Suffix []Exchange
	// UserMessage is the new incoming message, never cached.
	UserMessage string
}

const (
	capabilityHeader = "SKILL CONTEXT:\n\n"
	capabilityAck    = "I've reviewed the skills and I'm ready to apply them."
	sideDataHeader   = "REFERENCE DOCUMENTATION:\n\n"
	sideDataAck      = "I've reviewed the documentation."
)

// Assemble builds the request in fixed order: system instructions,
// capability context, side data, committable prefix, fresh suffix, new user
// message. A cache breakpoint is placed only at the end of a block, and only
// on the last block of a contiguous cacheable run: one marker covers all
// preceding content in the request, which is how prefix-caching protocols
// define reuse.
func Assemble(in Input) llm.AssembledRequest {
	req := llm.AssembledRequest{}

	if in.System != "" {
		system := llm.TextBlock(in.System)
		system.CacheControl = llm.EphemeralCache()
		req.System = []llm.ContentBlock{system}
	}

	// Cacheable run at the head of the message sequence.
	var cacheable []llm.Message
	if in.CapabilityContext != "" {
		cacheable = append(cacheable,
			userText(capabilityHeader+in.CapabilityContext),
			assistantText(capabilityAck),
		)
	}
	if in.SideData != "" {
		cacheable = append(cacheable,
			userText(sideDataHeader+in.SideData),
			assistantText(sideDataAck),
		)
	}
	for _, turn := range in.Prefix {
		cacheable = append(cacheable, userText(turn.User), assistantText(turn.Assistant))
	}
	markLastBlock(cacheable)
	req.Messages = append(req.Messages, cacheable...)

	for _, turn := range in.Suffix {
		req.Messages = append(req.Messages, userText(turn.User), assistantText(turn.Assistant))
	}
	req.Messages = append(req.Messages, userText(in.UserMessage))

	return req
}

func userText(text string) llm.Message {
	return llm.Message{Role: llm.RoleUser, Content: []llm.ContentBlock{llm.TextBlock(text)}}
}

func assistantText(text string) llm.Message {
	return llm.Message{Role: llm.RoleAssistant, Content: []llm.ContentBlock{llm.TextBlock(text)}}
}

// markLastBlock sets the breakpoint on the final content block of the run.
func markLastBlock(run []llm.Message) {
	if len(run) == 0 {
		return
	}
	last := &run[len(run)-1]
	if len(last.Content) == 0 {
		return
	}
	last.Content[len(last.Content)-1].CacheControl = llm.EphemeralCache()
}
