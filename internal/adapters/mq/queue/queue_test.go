package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/ladder/internal/domain/model"
)

func request(id string, gen uint64) model.LoadRequest {
	return model.LoadRequest{ID: id, Generation: gen, Reason: "test", RequestedAt: time.Now()}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if err := q.Enqueue(ctx, request("load1", 1)); err != nil {
		t.Fatalf("expected enqueue to succeed, got %v", err)
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	r := <-q.Dequeue(ctx)
	if r.ID != "load1" || r.Generation != 1 {
		t.Errorf("unexpected request %+v", r)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	ctx := context.Background()

	if err := q.Enqueue(ctx, request("load1", 1)); err != nil {
		t.Fatalf("expected enqueue to succeed, got %v", err)
	}
	if err := q.Enqueue(ctx, request("load2", 2)); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull, got %v", err)
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}
}

func TestInMemoryQueue_DefaultCapacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(0))
	if q.capacity != defaultQueueCapacity {
		t.Errorf("expected default capacity %d, got %d", defaultQueueCapacity, q.capacity)
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := q.Enqueue(ctx, request("load1", 1)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const producers, perProducer = 4, 25
	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				r := request(fmt.Sprintf("load%d_%d", id, j), uint64(j))
				for q.Enqueue(ctx, r) != nil {
					time.Sleep(time.Millisecond)
				}
			}
		}(i)
	}

	received := 0
	ch := q.Dequeue(ctx)
	timeout := time.After(5 * time.Second)
	for received < producers*perProducer {
		select {
		case <-ch:
			received++
		case <-timeout:
			t.Fatalf("received %d of %d requests", received, producers*perProducer)
		}
	}
	wg.Wait()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected final length 0, got %d", l)
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if err := q.Enqueue(ctx, request("load1", 1)); err != nil {
		t.Fatalf("expected enqueue to succeed, got %v", err)
	}

	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}
	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}
	if err := q.Enqueue(ctx, request("load2", 2)); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	// pending requests drain before the channel closes
	ch := q.Dequeue(ctx)
	timeout := time.After(100 * time.Millisecond)
	var drained []string
	for {
		select {
		case r, ok := <-ch:
			if !ok {
				if len(drained) != 1 || drained[0] != "load1" {
					t.Errorf("expected load1 to drain, got %v", drained)
				}
				if err := q.Close(); err != nil {
					t.Errorf("expected second close to succeed, got error: %v", err)
				}
				return
			}
			drained = append(drained, r.ID)
		case <-timeout:
			t.Fatal("expected dequeue channel to be closed within timeout")
		}
	}
}
