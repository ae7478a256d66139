// Package prompt renders chat turns into the ChatML-style prompt the bundled
// model was tuned on and cleans the raw text that comes back.
package prompt

import "strings"

// Chat template markers.
const (
	TurnStart   = "<|im_start|>"
	TurnEnd     = "<|im_end|>"
	EndOfText   = "<|endoftext|>"
	defaultTurn = 10
)

// Role identifies the author of a turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one prior turn of the conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Persona shapes the system turn.
type Persona struct {
	Name         string `json:"name,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// DefaultPersona is used when the caller supplies an empty persona.
var DefaultPersona = Persona{
	Name:         "LocalMind",
	Instructions: "You are a helpful assistant running entirely on this device. Answer concisely.",
}

type options struct {
	historyTurns int
}

// Option customises Build.
type Option func(*options)

// WithHistoryTurns keeps only the last n history messages. n <= 0 keeps the default.
func WithHistoryTurns(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.historyTurns = n
		}
	}
}

// Build renders the system turn, the most recent history turns, the new user
// turn and an open assistant turn. The output depends only on its inputs.
func Build(persona Persona, history []Message, userText string, opts ...Option) string {
	o := options{historyTurns: defaultTurn}
	for _, fn := range opts {
		fn(&o)
	}
	if len(history) > o.historyTurns {
		history = history[len(history)-o.historyTurns:]
	}

	var b strings.Builder
	writeTurn(&b, RoleSystem, systemText(persona))
	for _, m := range history {
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		writeTurn(&b, normalizeRole(m.Role), content)
	}
	writeTurn(&b, RoleUser, strings.TrimSpace(userText))
	b.WriteString(TurnStart)
	b.WriteString(string(RoleAssistant))
	b.WriteByte('\n')
	return b.String()
}

func systemText(p Persona) string {
	if p.Name == "" && p.Instructions == "" {
		p = DefaultPersona
	}
	switch {
	case p.Name == "":
		return strings.TrimSpace(p.Instructions)
	case p.Instructions == "":
		return "You are " + p.Name + "."
	default:
		return "You are " + p.Name + ". " + strings.TrimSpace(p.Instructions)
	}
}

func writeTurn(b *strings.Builder, role Role, content string) {
	b.WriteString(TurnStart)
	b.WriteString(string(role))
	b.WriteByte('\n')
	b.WriteString(scrub(content))
	b.WriteString(TurnEnd)
	b.WriteByte('\n')
}

// scrub removes template markers from user-controlled text so a message
// cannot open or close turns on its own.
func scrub(s string) string {
	for _, m := range markers {
		s = strings.ReplaceAll(s, m, "")
	}
	return s
}

func normalizeRole(r Role) Role {
	switch Role(strings.ToLower(string(r))) {
	case RoleAssistant:
		return RoleAssistant
	case RoleSystem:
		return RoleSystem
	default:
		return RoleUser
	}
}
