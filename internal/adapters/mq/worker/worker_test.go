package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	queue "github.com/okian/ladder/internal/adapters/mq/queue"
	worker "github.com/okian/ladder/internal/adapters/mq/worker"
	model "github.com/okian/ladder/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing.
type mockQueue struct {
	ch   chan queue.Request
	once sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{ch: make(chan queue.Request, 10)}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan queue.Request {
	return mq.ch
}

func (mq *mockQueue) Close() error {
	mq.once.Do(func() { close(mq.ch) })
	return nil
}

func (mq *mockQueue) add(id string, gen uint64) {
	mq.ch <- model.LoadRequest{ID: id, Generation: gen, Reason: "test"}
}

type mockLoader struct {
	mu       sync.Mutex
	loaded   []string
	fail     map[string]error
	inflight atomic.Int32
	maxSeen  atomic.Int32
	delay    time.Duration
}

func newMockLoader() *mockLoader {
	return &mockLoader{fail: make(map[string]error)}
}

func (ml *mockLoader) Load(ctx context.Context, r queue.Request) error {
	n := ml.inflight.Add(1)
	defer ml.inflight.Add(-1)
	for {
		seen := ml.maxSeen.Load()
		if n <= seen || ml.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	if ml.delay > 0 {
		time.Sleep(ml.delay)
	}

	ml.mu.Lock()
	defer ml.mu.Unlock()
	ml.loaded = append(ml.loaded, r.ID)
	return ml.fail[r.ID]
}

func (ml *mockLoader) ids() []string {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	return append([]string(nil), ml.loaded...)
}

// waitFor polls cond until it holds or a second passes.
func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker reading from a queue", t, func() {
		q := newMockQueue()
		loader := newMockLoader()
		w := worker.NewInMemoryWorker(q, loader, worker.WithName("test-loader"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go w.Run(ctx)

		convey.Convey("When requests arrive", func() {
			q.add("load-1", 1)
			q.add("load-2", 2)

			convey.Convey("Then they are loaded in order", func() {
				convey.So(waitFor(func() bool { return len(loader.ids()) == 2 }), convey.ShouldBeTrue)
				convey.So(loader.ids(), convey.ShouldResemble, []string{"load-1", "load-2"})
				convey.So(w.Processed(), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When a load fails", func() {
			loader.fail["bad"] = errors.New("upstream down")
			q.add("bad", 1)
			q.add("good", 2)

			convey.Convey("Then the worker keeps running", func() {
				convey.So(waitFor(func() bool { return len(loader.ids()) == 2 }), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When shutting down", func() {
			err := w.Shutdown(context.Background())

			convey.Convey("Then it stops cleanly and a second shutdown is harmless", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})
	})
}

func TestInMemoryWorker_ShutdownBeforeRun(t *testing.T) {
	convey.Convey("Given a worker that never ran", t, func() {
		w := worker.NewInMemoryWorker(newMockQueue(), newMockLoader())

		convey.Convey("Then shutdown returns immediately", func() {
			convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a single-worker pool", t, func() {
		q := newMockQueue()
		loader := newMockLoader()
		loader.delay = 10 * time.Millisecond
		pool := worker.NewPool(0, q, loader)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.So(pool.Size(), convey.ShouldEqual, 1)

		convey.Convey("When several loads are queued", func() {
			for _, id := range []string{"a", "b", "c"} {
				q.add(id, 1)
			}

			convey.Convey("Then loads never overlap", func() {
				convey.So(waitFor(func() bool { return len(loader.ids()) == 3 }), convey.ShouldBeTrue)
				convey.So(loader.maxSeen.Load(), convey.ShouldEqual, 1)
				processed, failed := pool.Stats()
				convey.So(processed, convey.ShouldEqual, 3)
				convey.So(failed, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the pool shuts down", func() {
			err := pool.Shutdown(context.Background())

			convey.Convey("Then the queue is closed and workers stop", func() {
				convey.So(err, convey.ShouldBeNil)
				_, open := <-q.ch
				convey.So(open, convey.ShouldBeFalse)
			})
		})
	})
}
