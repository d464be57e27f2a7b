package saver

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/anja8577/salescoachreplitapp-sub001/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// fakeWriter records PutBehaviorScore calls. When started/release are set,
// each write signals started and then waits for release, letting tests
// freeze a write in flight.
type fakeWriter struct {
	mu     sync.Mutex
	writes []bool
	err    error

	started chan struct{}
	release chan struct{}
}

func (w *fakeWriter) PutBehaviorScore(_ context.Context, _ string, _ int, checked bool) error {
	if w.started != nil {
		w.started <- struct{}{}
	}
	if w.release != nil {
		<-w.release
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.writes = append(w.writes, checked)
	return nil
}

func (w *fakeWriter) setErr(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.err = err
}

func (w *fakeWriter) recorded() []bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]bool, len(w.writes))
	copy(out, w.writes)
	return out
}

func testLogger(t *testing.T) logger.Logger {
	t.Helper()
	if err := logger.Init(); err != nil {
		t.Fatalf("logger init: %v", err)
	}
	return logger.Get().Named("saver-test")
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestSaverWritesThrough(t *testing.T) {
	convey.Convey("Given a started saver over a healthy store", t, func() {
		ctx := context.Background()
		w := &fakeWriter{}
		s := New(w, WithWorkers(1), WithRetry(0, time.Millisecond), WithLogger(testLogger(t)))
		s.Start(ctx)

		convey.Convey("When toggles are saved", func() {
			s.SaveToggle(ctx, "a-1", 1101, true)
			s.SaveToggle(ctx, "a-1", 1102, true)
			s.Close()

			convey.Convey("Then every toggle lands in the store", func() {
				convey.So(w.recorded(), convey.ShouldHaveLength, 2)
				convey.So(s.Pending(), convey.ShouldEqual, 0)
				convey.So(s.Failed(), convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When saving after Close", func() {
			s.Close()
			s.SaveToggle(ctx, "a-1", 1101, true)

			convey.Convey("Then the toggle is reported as not saved", func() {
				failed := s.Failed()
				convey.So(failed, convey.ShouldHaveLength, 1)
				convey.So(failed[0].BehaviorID, convey.ShouldEqual, 1101)
			})
		})
	})
}

func TestSaverLastWriteWins(t *testing.T) {
	convey.Convey("Given a saver whose store write is frozen in flight", t, func() {
		ctx := context.Background()
		w := &fakeWriter{
			started: make(chan struct{}, 4),
			release: make(chan struct{}),
		}
		s := New(w, WithWorkers(1), WithRetry(0, time.Millisecond), WithLogger(testLogger(t)))
		s.Start(ctx)

		convey.Convey("When a newer toggle arrives while the older one is writing", func() {
			s.SaveToggle(ctx, "a-1", 1101, true)
			<-w.started // first write now in flight with checked=true

			s.SaveToggle(ctx, "a-1", 1101, false) // coalesces onto the pending key
			w.release <- struct{}{}               // let the stale write finish

			<-w.started // worker re-writes the superseding value
			w.release <- struct{}{}
			s.Close()

			convey.Convey("Then the newest value is written last and wins", func() {
				writes := w.recorded()
				convey.So(writes, convey.ShouldResemble, []bool{true, false})
				convey.So(s.Pending(), convey.ShouldEqual, 0)
				convey.So(s.Failed(), convey.ShouldBeEmpty)
			})
		})
	})
}

func TestSaverFailureAndRetry(t *testing.T) {
	convey.Convey("Given a saver over a failing store", t, func() {
		ctx := context.Background()
		w := &fakeWriter{}
		w.setErr(errors.New("disk on fire"))
		s := New(w, WithWorkers(1), WithRetry(1, time.Millisecond), WithLogger(testLogger(t)))
		s.Start(ctx)

		convey.Convey("When a toggle exhausts its retries", func() {
			s.SaveToggle(ctx, "a-1", 1101, true)
			waitFor(t, func() bool { return len(s.Failed()) == 1 })

			convey.Convey("Then it is surfaced as failed, not silently dropped", func() {
				failed := s.Failed()
				convey.So(failed, convey.ShouldHaveLength, 1)
				convey.So(failed[0].AssessmentID, convey.ShouldEqual, "a-1")
				convey.So(failed[0].BehaviorID, convey.ShouldEqual, 1101)
				convey.So(failed[0].Checked, convey.ShouldBeTrue)
			})

			convey.Convey("And Retry reschedules it once the store recovers", func() {
				w.setErr(nil)
				retried := s.Retry(ctx)
				convey.So(retried, convey.ShouldEqual, 1)

				waitFor(t, func() bool { return len(w.recorded()) == 1 })
				s.Close()
				convey.So(w.recorded(), convey.ShouldResemble, []bool{true})
				convey.So(s.Failed(), convey.ShouldBeEmpty)
			})
		})
	})
}

func TestSaverQueueFull(t *testing.T) {
	convey.Convey("Given an unstarted saver with a single-slot queue", t, func() {
		ctx := context.Background()
		w := &fakeWriter{}
		s := New(w, WithQueueSize(1), WithWorkers(1), WithLogger(testLogger(t)))
		// No Start: nothing drains the queue.

		convey.Convey("When more toggles arrive than the queue holds", func() {
			s.SaveToggle(ctx, "a-1", 1101, true)
			s.SaveToggle(ctx, "a-1", 1102, true)

			convey.Convey("Then the overflow is reported as failed", func() {
				convey.So(s.Pending(), convey.ShouldEqual, 1)
				failed := s.Failed()
				convey.So(failed, convey.ShouldHaveLength, 1)
				convey.So(failed[0].BehaviorID, convey.ShouldEqual, 1102)
			})
		})
	})
}
