package ai

import (
	"fmt"
	"strings"
)

// Profile is the subset of a character used to drive generation
type Profile struct {
	Name              string
	Description       string
	Scenario          string
	PersonalityTraits string
	WritingStyle      string
	Background        string
	KnowledgeScope    string
	Quirks            string
	EmotionalRange    string
	Language          string
	GreetingMessage   string
	FallbackResponse  string
}

// BuildSystemPrompt assembles the character system prompt. Section order is
// fixed and empty persona fields are omitted so the prompt stays compact.
func BuildSystemPrompt(p Profile) string {
	parts := []string{
		fmt.Sprintf("You are %s. Respond as this character.", p.Name),
	}

	appendSection := func(label, value string) {
		if value != "" {
			parts = append(parts, label+": "+value)
		}
	}

	appendSection("Description", p.Description)
	appendSection("Scenario", p.Scenario)
	appendSection("Personality Traits", p.PersonalityTraits)
	appendSection("Writing Style", p.WritingStyle)
	appendSection("Background", p.Background)
	appendSection("Knowledge Scope", p.KnowledgeScope)
	appendSection("Quirks", p.Quirks)
	appendSection("Emotional Range", p.EmotionalRange)

	if p.Language != "" {
		parts = append(parts, fmt.Sprintf("Language: Respond in %s.", p.Language))
	} else {
		parts = append(parts, "Respond in English.")
	}

	parts = append(parts,
		"Maintain character consistency throughout the conversation.",
		"Keep responses concise and engaging unless the user prompts for more detail.",
	)

	return strings.Join(parts, "\n")
}

// WindowHistory keeps the most recent k turns, preserving order. A
// non-positive k returns the history unchanged.
func WindowHistory(history []Turn, k int) []Turn {
	if k <= 0 || len(history) <= k {
		return history
	}
	return history[len(history)-k:]
}
