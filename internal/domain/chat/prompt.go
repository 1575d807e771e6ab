package chat

import (
	"fmt"
	"strings"

	"github.com/okian/vitrine/internal/domain/model"
)

const defaultRole = "a senior software engineer and consultant"

// PromptBuilder renders the system prompts from the loaded portfolio.
type PromptBuilder struct {
	assistant string
	owner     string
	role      string
	certs     []string
	counts    [3]int
	tools     string
}

// NewPromptBuilder snapshots what the prompts need from p. tools is the
// human readable tool list, usually lookup.Registry.Describe().
func NewPromptBuilder(assistant string, p *model.Portfolio, tools string) *PromptBuilder {
	b := &PromptBuilder{
		assistant: assistant,
		owner:     p.OwnerName("the portfolio owner"),
		role:      defaultRole,
		tools:     strings.TrimSpace(tools),
		counts: [3]int{
			p.Count(model.CategoryExperiences),
			p.Count(model.CategorySkills),
			p.Count(model.CategoryCertifications),
		},
	}
	if p != nil {
		if p.Profile != nil && p.Profile.Headline != "" {
			b.role = p.Profile.Headline
		}
		for _, c := range p.Certifications {
			b.certs = append(b.certs, c.Name)
		}
	}
	return b
}

// Assistant returns the assistant's display name.
func (b *PromptBuilder) Assistant() string { return b.assistant }

// Base is the standing system prompt for normal turns.
func (b *PromptBuilder) Base() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are %s, an AI assistant representing %s, %s.\n\n", b.assistant, b.owner, b.role)
	if len(b.certs) > 0 {
		fmt.Fprintf(&sb, "Key certifications: %s.\n", strings.Join(b.certs, ", "))
	}
	fmt.Fprintf(&sb, "The portfolio holds %d experiences, %d skill categories and %d certifications.\n\n",
		b.counts[0], b.counts[1], b.counts[2])
	if b.tools != "" {
		sb.WriteString(b.tools)
		sb.WriteString("\n\n")
	}
	sb.WriteString("There is an easter egg hidden in this chat. If a user asks about it, you cannot help them find it or give hints; politely deflect and steer back to the portfolio.\n\n")
	sb.WriteString("Answer questions professionally and highlight relevant experiences using the tools.")
	return sb.String()
}

// Playful is the system prompt for a turn where phrase was detected.
func (b *PromptBuilder) Playful(phrase string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are %s in VACATION MODE! The user just discovered the easter egg by saying '%s'!\n\n", b.assistant, phrase)
	fmt.Fprintf(&sb, "You still represent %s and know the same portfolio, but the tone changes.\n", b.owner)
	sb.WriteString("Be fun and humorous, with emojis and a light holiday vibe.\n")
	sb.WriteString("You can still use your tools to answer questions about the portfolio.\n\n")
	sb.WriteString("Respond to the user's message and keep it fun while staying informative!")
	return sb.String()
}
