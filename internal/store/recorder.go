package store

import (
	"context"
	"errors"
	"sync"
)

// DefaultRecorderBuffer is the number of pending writes a Recorder queues
// before Append calls start to block.
const DefaultRecorderBuffer = 64

// Recorder writes journal events from a single background goroutine so the
// game loop never waits on disk. Writes are applied in submission order.
type Recorder struct {
	repo EventRepo
	ch   chan func(context.Context) error
	done chan struct{}

	sendMu sync.Mutex // guards closed and sends on ch
	closed bool

	errMu sync.Mutex
	err   error
}

// ErrRecorderClosed is returned by Append calls made after Close.
var ErrRecorderClosed = errors.New("recorder closed")

// NewRecorder starts a recorder that forwards events to repo.
func NewRecorder(repo EventRepo, buffer int) *Recorder {
	if buffer <= 0 {
		buffer = DefaultRecorderBuffer
	}
	r := &Recorder{
		repo: repo,
		ch:   make(chan func(context.Context) error, buffer),
		done: make(chan struct{}),
	}
	go r.loop()
	return r
}

func (r *Recorder) loop() {
	defer close(r.done)
	ctx := context.Background()
	for write := range r.ch {
		if err := write(ctx); err != nil {
			r.errMu.Lock()
			if r.err == nil {
				r.err = err
			}
			r.errMu.Unlock()
		}
	}
}

func (r *Recorder) enqueue(write func(context.Context) error) error {
	r.sendMu.Lock()
	defer r.sendMu.Unlock()
	if r.closed {
		return ErrRecorderClosed
	}
	r.ch <- write
	return nil
}

func (r *Recorder) AppendGameEvent(_ context.Context, data GameEventData) error {
	return r.enqueue(func(ctx context.Context) error { return r.repo.AppendGameEvent(ctx, data) })
}

func (r *Recorder) AppendAnswerEvent(_ context.Context, data AnswerEventData) error {
	return r.enqueue(func(ctx context.Context) error { return r.repo.AppendAnswerEvent(ctx, data) })
}

func (r *Recorder) AppendBadgeEvent(_ context.Context, data BadgeEventData) error {
	return r.enqueue(func(ctx context.Context) error { return r.repo.AppendBadgeEvent(ctx, data) })
}

func (r *Recorder) AppendTicketEvent(_ context.Context, data TicketEventData) error {
	return r.enqueue(func(ctx context.Context) error { return r.repo.AppendTicketEvent(ctx, data) })
}

func (r *Recorder) AppendLLMRequest(_ context.Context, data LLMRequestEventData) error {
	return r.enqueue(func(ctx context.Context) error { return r.repo.AppendLLMRequest(ctx, data) })
}

// Err returns the first write error seen so far.
func (r *Recorder) Err() error {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	return r.err
}

// Close stops accepting events and waits for queued writes to finish.
func (r *Recorder) Close() error {
	r.sendMu.Lock()
	if !r.closed {
		r.closed = true
		close(r.ch)
	}
	r.sendMu.Unlock()
	<-r.done
	return r.Err()
}
