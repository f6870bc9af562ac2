package authoring

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/skiquiz/internal/content"
)

// DraftBatch drafts n questions with at most limit calls in flight. Drafts
// that collide with an earlier one in the same batch are redrafted with the
// batch added to Input.Avoid. The first failure cancels the rest.
func DraftBatch(ctx context.Context, gen Generator, in Input, n, limit int) ([]content.Question, error) {
	if n <= 0 {
		return nil, nil
	}
	if limit < 1 {
		limit = 1
	}

	var (
		mu    sync.Mutex
		texts = make(map[string]bool, n)
		batch []string
	)
	out := make([]content.Question, n)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range n {
		g.Go(func() error {
			for attempt := 0; ; attempt++ {
				mu.Lock()
				req := Input{Topic: in.Topic, Avoid: append(append([]string(nil), in.Avoid...), batch...)}
				mu.Unlock()

				q, err := gen.Generate(ctx, req)
				if err != nil {
					return fmt.Errorf("draft %d: %w", i+1, err)
				}

				mu.Lock()
				key := normalize(q.Text)
				if !texts[key] {
					texts[key] = true
					batch = append(batch, q.Text)
					mu.Unlock()
					q.ID = "draft-" + uuid.NewString()[:8]
					out[i] = *q
					return nil
				}
				mu.Unlock()

				if attempt >= maxBatchRedrafts {
					return fmt.Errorf("draft %d: %w", i+1, &ValidationError{
						Validator: "batch-dedup",
						Message:   "kept repeating another draft in this batch",
					})
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

const maxBatchRedrafts = 2

// MarshalDrafts renders drafts as a content pack fragment that only
// overrides the question pool.
func MarshalDrafts(qs []content.Question) ([]byte, error) {
	return yaml.Marshal(struct {
		Questions []content.Question `yaml:"questions"`
	}{qs})
}
