package authoring

import (
	"fmt"
	"strings"

	"github.com/abhisek/skiquiz/internal/llm"
)

const systemPrompt = `You write multiple-choice trivia questions about skiing and snowboarding.

Rules:
- Write one question with exactly 3 options. Exactly one option is correct.
- The answer field must repeat the correct option verbatim.
- Keep the question under 200 characters and each option under 60.
- Facts must be verifiable: records, venues, equipment, technique, terminology, history.
- Distractors should be plausible to a casual fan, not obviously wrong.
- Never reuse a question from the "already in the pool" list.`

// QuestionSchema is the structured output requested from the model.
var QuestionSchema = &llm.Schema{
	Name:        "ski_trivia_question",
	Description: "One multiple-choice ski trivia question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{
				"type":        "string",
				"description": "The question shown to the player",
			},
			"options": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"minItems":    OptionCount,
				"maxItems":    OptionCount,
				"description": "Exactly three answer options",
			},
			"answer": map[string]any{
				"type":        "string",
				"description": "The correct option, copied exactly",
			},
		},
		"required":             []string{"text", "options", "answer"},
		"additionalProperties": false,
	},
}

// userPrompt lists at most maxAvoid of the most recent texts to avoid. A
// non-empty feedback reports why the previous draft was rejected.
func userPrompt(in Input, maxAvoid int, feedback string) string {
	var b strings.Builder
	topic := in.Topic
	if topic == "" {
		topic = "any skiing or snowboarding subject"
	}
	fmt.Fprintf(&b, "Topic: %s\n", topic)

	b.WriteString("\nAlready in the pool:\n")
	avoid := in.Avoid
	if maxAvoid > 0 && len(avoid) > maxAvoid {
		avoid = avoid[len(avoid)-maxAvoid:]
	}
	if len(avoid) == 0 {
		b.WriteString("None\n")
	}
	for i, a := range avoid {
		fmt.Fprintf(&b, "%d. %s\n", i+1, a)
	}

	if feedback != "" {
		fmt.Fprintf(&b, "\nYour previous draft was rejected: %s\nWrite a different question.\n", feedback)
	}
	return strings.TrimRight(b.String(), "\n")
}
