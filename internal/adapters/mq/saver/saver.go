// Package saver persists behavior toggle flags asynchronously. Writes are
// serialized per behavior with last-write-wins coalescing: a toggle issued
// while an earlier one for the same behavior is still in flight simply
// replaces the value to be written, so network completion order can never
// resurrect a stale flag.
package saver

import (
	"context"
	"sync"
	"time"

	"github.com/anja8577/salescoachreplitapp-sub001/internal/domain/types"
	"github.com/anja8577/salescoachreplitapp-sub001/pkg/logger"
	"github.com/anja8577/salescoachreplitapp-sub001/pkg/metrics"
)

// Default saver configuration constants.
const (
	defaultQueueSize  = 1024
	defaultWorkers    = 2
	defaultRetryMax   = 3
	defaultRetryDelay = 250 * time.Millisecond
)

// Writer is the slice of the durable store the saver needs.
type Writer interface {
	PutBehaviorScore(ctx context.Context, assessmentID string, behaviorID int, checked bool) error
}

// FailedSave describes a toggle that exhausted its retries. The in-memory
// session keeps the coach's input; the UI shows a "not saved" indicator and
// may call Retry.
type FailedSave = types.FailedSave

type saveKey struct {
	assessmentID string
	behaviorID   int
}

// Saver coalesces and persists behavior toggles in the background.
type Saver struct {
	store Writer

	mu      sync.Mutex
	pending map[saveKey]bool
	failed  map[saveKey]bool
	closed  bool

	keys chan saveKey
	wg   sync.WaitGroup

	queueSize  int
	workers    int
	retryMax   int
	retryDelay time.Duration

	logger logger.Logger
}

// New creates a saver writing through store. Call Start before use.
func New(store Writer, opts ...Option) *Saver {
	s := &Saver{
		store:      store,
		pending:    make(map[saveKey]bool),
		failed:     make(map[saveKey]bool),
		queueSize:  defaultQueueSize,
		workers:    defaultWorkers,
		retryMax:   defaultRetryMax,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.keys = make(chan saveKey, s.queueSize)
	return s
}

// Start launches the background writer goroutines.
func (s *Saver) Start(ctx context.Context) {
	if s.logger == nil {
		s.logger = logger.Get().Named("saver")
	}
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.run(ctx)
		}()
	}
}

// Close stops accepting work and waits for in-flight writes to land.
func (s *Saver) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.keys)
	s.mu.Unlock()

	s.wg.Wait()
}

// SaveToggle records the desired checked flag and schedules its write.
// Fire-and-forget: failures are surfaced through Failed, never to the
// caller, and the session's in-memory state is not touched.
func (s *Saver) SaveToggle(ctx context.Context, assessmentID string, behaviorID int, checked bool) {
	k := saveKey{assessmentID: assessmentID, behaviorID: behaviorID}

	s.mu.Lock()
	if s.closed {
		s.failed[k] = checked
		s.mu.Unlock()
		metrics.RecordToggleSaveFailed()
		s.logger.Warn(ctx, "saver closed; toggle not persisted",
			logger.String("assessmentID", assessmentID),
			logger.Int("behaviorID", behaviorID),
		)
		return
	}
	delete(s.failed, k)
	if _, inFlight := s.pending[k]; inFlight {
		// Coalesce: the queued key will pick up the newest value.
		s.pending[k] = checked
		s.mu.Unlock()
		return
	}
	s.pending[k] = checked
	s.mu.Unlock()

	select {
	case s.keys <- k:
		metrics.UpdateSaveQueueDepth(len(s.keys))
	default:
		// Queue full: give up on this write but keep the coach's input.
		s.mu.Lock()
		delete(s.pending, k)
		s.failed[k] = checked
		s.mu.Unlock()
		metrics.RecordToggleSaveFailed()
		s.logger.Warn(ctx, "save queue full; toggle not persisted",
			logger.String("assessmentID", assessmentID),
			logger.Int("behaviorID", behaviorID),
		)
	}
}

// Pending returns the number of toggles not yet written.
func (s *Saver) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Failed returns the toggles that exhausted their retries.
func (s *Saver) Failed() []FailedSave {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]FailedSave, 0, len(s.failed))
	for k, checked := range s.failed {
		out = append(out, FailedSave{AssessmentID: k.assessmentID, BehaviorID: k.behaviorID, Checked: checked})
	}
	return out
}

// Retry reschedules every failed toggle.
func (s *Saver) Retry(ctx context.Context) int {
	s.mu.Lock()
	retries := make(map[saveKey]bool, len(s.failed))
	for k, v := range s.failed {
		retries[k] = v
	}
	s.failed = make(map[saveKey]bool)
	s.mu.Unlock()

	for k, checked := range retries {
		metrics.RecordToggleSaveRetried()
		s.SaveToggle(ctx, k.assessmentID, k.behaviorID, checked)
	}
	return len(retries)
}

// run drains keys until the channel closes or ctx is canceled.
func (s *Saver) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case k, ok := <-s.keys:
			if !ok {
				return
			}
			s.flush(ctx, k)
			metrics.UpdateSaveQueueDepth(len(s.keys))
		}
	}
}

// flush writes the newest value for k, looping if the value moved while the
// write was in flight. Only one worker holds a given key at a time, which
// serializes writes per behavior.
func (s *Saver) flush(ctx context.Context, k saveKey) {
	for {
		s.mu.Lock()
		checked, ok := s.pending[k]
		s.mu.Unlock()
		if !ok {
			return
		}

		err := s.writeWithRetry(ctx, k, checked)

		s.mu.Lock()
		latest, still := s.pending[k]
		if still && latest != checked {
			// Superseded while writing; write the newer value next.
			s.mu.Unlock()
			continue
		}
		delete(s.pending, k)
		if err != nil {
			s.failed[k] = checked
		}
		s.mu.Unlock()

		if err != nil {
			metrics.RecordToggleSaveFailed()
			s.logger.Warn(ctx, "toggle save failed after retries",
				logger.String("assessmentID", k.assessmentID),
				logger.Int("behaviorID", k.behaviorID),
				logger.Error(err),
			)
		} else {
			metrics.RecordToggleSaved()
		}
		return
	}
}

func (s *Saver) writeWithRetry(ctx context.Context, k saveKey, checked bool) error {
	var err error
	for attempt := 0; attempt <= s.retryMax; attempt++ {
		if attempt > 0 {
			metrics.RecordToggleSaveRetried()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.retryDelay):
			}
		}
		if err = s.store.PutBehaviorScore(ctx, k.assessmentID, k.behaviorID, checked); err == nil {
			return nil
		}
	}
	return err
}
