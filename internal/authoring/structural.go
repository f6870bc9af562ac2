package authoring

import (
	"fmt"
	"unicode/utf8"

	"github.com/abhisek/skiquiz/internal/content"
)

// Length limits match what content pack validation accepts.
const (
	MaxTextLen   = 200
	MaxOptionLen = 60
	OptionCount  = 3
)

// StructuralValidator enforces the shape every pack question must have.
type StructuralValidator struct{}

func (v StructuralValidator) Name() string { return "structural" }

func (v StructuralValidator) Validate(q *content.Question, _ Input) *ValidationError {
	fail := func(format string, args ...any) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf(format, args...), Retryable: true}
	}

	switch n := utf8.RuneCountInString(q.Text); {
	case n == 0:
		return fail("text is empty")
	case n > MaxTextLen:
		return fail("text is %d characters, limit is %d", n, MaxTextLen)
	}
	if len(q.Options) != OptionCount {
		return fail("need exactly %d options, got %d", OptionCount, len(q.Options))
	}

	seen := make(map[string]bool, OptionCount)
	for _, o := range q.Options {
		switch {
		case o == "":
			return fail("empty option")
		case utf8.RuneCountInString(o) > MaxOptionLen:
			return fail("option %q exceeds %d characters", o, MaxOptionLen)
		case o == content.TimeoutAnswer:
			return fail("option uses the reserved value %q", o)
		case seen[normalize(o)]:
			return fail("duplicate option %q", o)
		}
		seen[normalize(o)] = true
	}

	for _, o := range q.Options {
		if o == q.Answer {
			return nil
		}
	}
	return fail("answer %q is not one of the options", q.Answer)
}
