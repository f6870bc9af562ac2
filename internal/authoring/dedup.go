package authoring

import "github.com/abhisek/skiquiz/internal/content"

// DedupValidator rejects drafts whose text matches a known question or one
// listed in Input.Avoid after normalization.
type DedupValidator struct {
	known map[string]bool
}

// NewDedupValidator indexes the texts of an existing question pool.
func NewDedupValidator(pool []content.Question) *DedupValidator {
	known := make(map[string]bool, len(pool))
	for _, q := range pool {
		known[normalize(q.Text)] = true
	}
	return &DedupValidator{known: known}
}

func (v *DedupValidator) Name() string { return "dedup" }

func (v *DedupValidator) Validate(q *content.Question, in Input) *ValidationError {
	key := normalize(q.Text)
	dup := v.known[key]
	for _, a := range in.Avoid {
		if dup {
			break
		}
		dup = normalize(a) == key
	}
	if dup {
		return &ValidationError{
			Validator: v.Name(),
			Message:   "question already exists: " + q.Text,
			Retryable: true,
		}
	}
	return nil
}
