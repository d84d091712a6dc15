package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrFull is returned when a bounded queue cannot take another job.
var ErrFull = errors.New("queue: full")

// Job is one section refresh or other unit of background work.
type Job struct {
	Name string
	Run  func(ctx context.Context)
}

// Queue is the abstraction over different dispatchers.
type Queue interface {
	Publish(ctx context.Context, job Job) error
	Consume(ctx context.Context) (<-chan Job, error)
}

// InMemory is a bounded channel-backed queue.
type InMemory struct {
	ch chan Job
}

// NewInMemory creates a bounded in-memory queue.
func NewInMemory(size int) *InMemory {
	if size <= 0 {
		size = 64
	}
	return &InMemory{ch: make(chan Job, size)}
}

// Publish enqueues a job without blocking; a full buffer yields ErrFull.
func (q *InMemory) Publish(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case q.ch <- job:
		return nil
	default:
		return fmt.Errorf("%w: dropping %s", ErrFull, job.Name)
	}
}

// Consume returns a channel for workers. It closes when ctx is done.
func (q *InMemory) Consume(ctx context.Context) (<-chan Job, error) {
	out := make(chan Job)
	go func() {
		defer close(out)
		for {
			select {
			case job := <-q.ch:
				select {
				case out <- job:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Inline runs every job synchronously inside Publish. Tests use it to make
// dispatch deterministic.
type Inline struct{}

// Publish runs the job before returning.
func (Inline) Publish(ctx context.Context, job Job) error {
	job.Run(ctx)
	return nil
}

// Consume returns a closed channel; Inline has nothing to hand out.
func (Inline) Consume(ctx context.Context) (<-chan Job, error) {
	out := make(chan Job)
	close(out)
	return out, nil
}

// Work starts n workers draining q until ctx is done. A panicking job is
// logged and does not take its worker down. The returned WaitGroup is done
// once every worker has exited.
func Work(ctx context.Context, q Queue, n int, log *zap.Logger) (*sync.WaitGroup, error) {
	if n <= 0 {
		n = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	jobs, err := q.Consume(ctx)
	if err != nil {
		return nil, fmt.Errorf("queue consume init failed: %w", err)
	}
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for job := range jobs {
				run(ctx, job, worker, log)
			}
		}(i)
	}
	return &wg, nil
}

func run(ctx context.Context, job Job, worker int, log *zap.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("job panicked", zap.String("job", job.Name), zap.Int("worker", worker), zap.Any("panic", r))
		}
	}()
	job.Run(ctx)
}
