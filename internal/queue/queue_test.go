package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestInMemoryFullReturnsErrFull(t *testing.T) {
	q := NewInMemory(1)
	ctx := context.Background()
	if err := q.Publish(ctx, Job{Name: "a", Run: func(context.Context) {}}); err != nil {
		t.Fatal(err)
	}
	if err := q.Publish(ctx, Job{Name: "b", Run: func(context.Context) {}}); !errors.Is(err, ErrFull) {
		t.Fatalf("expected ErrFull, got %v", err)
	}
}

func TestWorkRunsJobsAndSurvivesPanics(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q := NewInMemory(16)
	wg, err := Work(ctx, q, 3, nil)
	if err != nil {
		t.Fatal(err)
	}

	var ran atomic.Int32
	done := make(chan struct{}, 10)
	_ = q.Publish(ctx, Job{Name: "panics", Run: func(context.Context) { panic("boom") }})
	for i := 0; i < 10; i++ {
		if err := q.Publish(ctx, Job{Name: "ok", Run: func(context.Context) {
			ran.Add(1)
			done <- struct{}{}
		}}); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 10; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d jobs ran", ran.Load())
		}
	}

	cancel()
	stopped := make(chan struct{})
	go func() { wg.Wait(); close(stopped) }()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not stop after cancel")
	}
}

func TestInlineRunsBeforeReturning(t *testing.T) {
	ran := false
	if err := (Inline{}).Publish(context.Background(), Job{Name: "x", Run: func(context.Context) { ran = true }}); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Fatal("inline job should run synchronously")
	}
}
