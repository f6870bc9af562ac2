package authoring

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/abhisek/skiquiz/internal/content"
)

// Validator checks a drafted question. Implementations must be safe for
// concurrent use.
type Validator interface {
	Name() string
	Validate(q *content.Question, in Input) *ValidationError
}

// ValidationError describes a rejected draft.
type ValidationError struct {
	Validator string
	Message   string
	Retryable bool // another draft is likely to pass
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// normalize folds case, punctuation and spacing so near-identical question
// texts compare equal.
func normalize(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			space = true
		}
	}
	return b.String()
}
