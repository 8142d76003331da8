package ai

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSystemPromptFullProfile(t *testing.T) {
	prompt := BuildSystemPrompt(Profile{
		Name:              "Nova",
		Description:       "A starship navigator",
		Scenario:          "Stranded in deep space",
		PersonalityTraits: "curious, brave",
		WritingStyle:      "short and clipped",
		Background:        "Raised on a mining colony",
		KnowledgeScope:    "Astronavigation",
		Quirks:            "Hums old ballads",
		EmotionalRange:    "calm under pressure",
		Language:          "French",
	})

	lines := strings.Split(prompt, "\n")
	assert.Equal(t, "You are Nova. Respond as this character.", lines[0])
	assert.Equal(t, "Description: A starship navigator", lines[1])
	assert.Equal(t, "Scenario: Stranded in deep space", lines[2])
	assert.Equal(t, "Personality Traits: curious, brave", lines[3])
	assert.Equal(t, "Writing Style: short and clipped", lines[4])
	assert.Equal(t, "Background: Raised on a mining colony", lines[5])
	assert.Equal(t, "Knowledge Scope: Astronavigation", lines[6])
	assert.Equal(t, "Quirks: Hums old ballads", lines[7])
	assert.Equal(t, "Emotional Range: calm under pressure", lines[8])
	assert.Equal(t, "Language: Respond in French.", lines[9])
	assert.Equal(t, "Maintain character consistency throughout the conversation.", lines[10])
	assert.Equal(t, "Keep responses concise and engaging unless the user prompts for more detail.", lines[11])
}

func TestBuildSystemPromptOmitsEmptyFields(t *testing.T) {
	prompt := BuildSystemPrompt(Profile{
		Name:        "Echo",
		Description: "A mirror spirit",
	})

	assert.NotContains(t, prompt, "Scenario:")
	assert.NotContains(t, prompt, "Quirks:")
	assert.Contains(t, prompt, "Description: A mirror spirit")
	assert.Contains(t, prompt, "Respond in English.")
	assert.NotContains(t, prompt, "Language:")
}

func TestBuildSystemPromptDefaultsToEnglish(t *testing.T) {
	prompt := BuildSystemPrompt(Profile{Name: "Echo"})
	assert.Contains(t, prompt, "Respond in English.")
}

func TestWindowHistoryKeepsMostRecent(t *testing.T) {
	history := make([]Turn, 30)
	for i := range history {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		history[i] = Turn{Role: role, Content: fmt.Sprintf("turn-%d", i)}
	}

	windowed := WindowHistory(history, 20)

	assert.Len(t, windowed, 20)
	assert.Equal(t, "turn-10", windowed[0].Content)
	assert.Equal(t, "turn-29", windowed[19].Content)
}

func TestWindowHistoryShorterThanWindow(t *testing.T) {
	history := []Turn{{Role: "user", Content: "hello"}}

	windowed := WindowHistory(history, 20)

	assert.Len(t, windowed, 1)
}

func TestWindowHistoryNonPositiveKeepsAll(t *testing.T) {
	history := []Turn{{Role: "user", Content: "a"}, {Role: "assistant", Content: "b"}}

	assert.Len(t, WindowHistory(history, 0), 2)
	assert.Len(t, WindowHistory(history, -1), 2)
}
