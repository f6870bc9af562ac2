// Package questionbank samples quiz questions from the static pool.
package questionbank

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/abhisek/skiquiz/internal/content"
)

// ErrNotEnoughQuestions is returned by a strict bank asked for more
// questions than the pool holds.
var ErrNotEnoughQuestions = errors.New("not enough questions in pool")

// Bank is a fixed question pool.
type Bank struct {
	pool   []content.Question
	strict bool

	mu  sync.Mutex
	rnd *rand.Rand
}

// Option configures a Bank.
type Option func(*Bank)

// WithStrict makes oversized samples fail instead of clamping.
func WithStrict(strict bool) Option {
	return func(b *Bank) { b.strict = strict }
}

// WithRand sets the random source, for reproducible draws in tests.
func WithRand(r *rand.Rand) Option {
	return func(b *Bank) { b.rnd = r }
}

// New creates a Bank over a copy of pool.
func New(pool []content.Question, opts ...Option) *Bank {
	b := &Bank{
		pool: append([]content.Question(nil), pool...),
		rnd:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Size returns the pool size.
func (b *Bank) Size() int {
	return len(b.pool)
}

// Sample draws n distinct questions uniformly without replacement, in random
// order. A strict bank rejects n larger than the pool; otherwise n is clamped.
func (b *Bank) Sample(n int) ([]content.Question, error) {
	if n < 0 {
		return nil, fmt.Errorf("sample %d questions: negative count", n)
	}
	if n > len(b.pool) {
		if b.strict {
			return nil, fmt.Errorf("sample %d of %d: %w", n, len(b.pool), ErrNotEnoughQuestions)
		}
		n = len(b.pool)
	}

	idx := make([]int, len(b.pool))
	for i := range idx {
		idx[i] = i
	}

	// Partial Fisher-Yates: only the first n slots need to be settled.
	b.mu.Lock()
	for i := 0; i < n; i++ {
		j := i + b.rnd.Intn(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	b.mu.Unlock()

	out := make([]content.Question, n)
	for i := 0; i < n; i++ {
		out[i] = b.pool[idx[i]]
	}
	return out, nil
}
