// Package authoring drafts new trivia questions with a language model and
// checks them before they are offered for inclusion in a content pack.
package authoring

import (
	"context"

	"github.com/abhisek/skiquiz/internal/content"
)

// Generator drafts one question. Implementations run their validators
// before returning, so a nil error means the draft is usable as-is apart
// from its ID.
type Generator interface {
	Generate(ctx context.Context, in Input) (*content.Question, error)
}

// Input steers a draft.
type Input struct {
	// Topic narrows the subject, e.g. "alpine racing history". Empty means
	// any skiing or snowboarding topic.
	Topic string

	// Avoid lists question texts the draft must not repeat.
	Avoid []string
}
