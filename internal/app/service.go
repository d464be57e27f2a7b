// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	saverpkg "github.com/anja8577/salescoachreplitapp-sub001/internal/adapters/mq/saver"
	"github.com/anja8577/salescoachreplitapp-sub001/internal/adapters/repository"
	"github.com/anja8577/salescoachreplitapp-sub001/internal/domain/rubric"
	"github.com/anja8577/salescoachreplitapp-sub001/internal/domain/scoring"
	"github.com/anja8577/salescoachreplitapp-sub001/internal/domain/session"
	"github.com/anja8577/salescoachreplitapp-sub001/internal/domain/types"
	"github.com/anja8577/salescoachreplitapp-sub001/pkg/logger"
	"github.com/anja8577/salescoachreplitapp-sub001/pkg/metrics"
)

// ErrNotStarted is returned when an operation runs before Start.
var ErrNotStarted = errors.New("service not started")

// Request and read shapes shared with the HTTP API.
type (
	CreateRequest = types.CreateAssessmentRequest
	Radar         = types.Radar
	RadarPoint    = types.RadarPoint
	SaveStatus    = types.SaveStatus
)

// Service implements the API dependencies for the assessment system.
type Service struct {
	mu sync.RWMutex

	// Core components
	rubric   *rubric.Rubric
	source   rubric.Source
	store    repository.Store
	saver    *saverpkg.Saver
	sessions map[string]*session.Aggregator

	// Configuration
	dbPath        string
	saveQueueSize int
	saveWorkers   int
	saveRetryMax  int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRubricSource sets the rubric source loaded at Start.
func WithRubricSource(src rubric.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithStore injects a durable store, bypassing DBPath selection.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithDBPath selects the SQLite store at the given file path.
func WithDBPath(path string) Option {
	return func(s *Service) {
		s.dbPath = path
	}
}

// WithSaveQueueSize bounds the toggle save queue.
func WithSaveQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.saveQueueSize = size
		}
	}
}

// WithSaveWorkers sets the number of background save writers.
func WithSaveWorkers(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.saveWorkers = count
		}
	}
}

// WithSaveRetryMax caps retries per toggle write.
func WithSaveRetryMax(max int) Option {
	return func(s *Service) {
		if max >= 0 {
			s.saveRetryMax = max
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		source:        rubric.NewSeedSource(),
		sessions:      make(map[string]*session.Aggregator),
		saveQueueSize: 1024,
		saveWorkers:   2,
		saveRetryMax:  3,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the rubric, opens the store, and launches the save pipeline.
// A rubric load failure aborts the start: no session can run without it.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting assessment service...")

	r, err := s.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load rubric: %w", err)
	}
	s.rubric = r

	if s.store == nil {
		if s.dbPath != "" {
			store, err := repository.OpenSQLite(ctx, s.dbPath)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			s.store = store
			s.logger.Info(ctx, "using sqlite store", logger.String("path", s.dbPath))
		} else {
			s.store = repository.NewMemStore()
			s.logger.Info(ctx, "using in-memory store")
		}
	}

	s.saver = saverpkg.New(s.store,
		saverpkg.WithQueueSize(s.saveQueueSize),
		saverpkg.WithWorkers(s.saveWorkers),
		saverpkg.WithRetry(s.saveRetryMax, 0),
		saverpkg.WithLogger(s.logger.Named("saver")),
	)
	s.saver.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "assessment service started",
		logger.Int("steps", len(s.rubric.Steps())),
		logger.Int("behaviors", s.rubric.BehaviorCount()),
	)
	return nil
}

// Stop gracefully shuts down the service, draining pending saves.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping assessment service...")

	if s.saver != nil {
		s.saver.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(ctx, "store close failed", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "assessment service stopped")
}

// Rubric returns the loaded rubric tree.
func (s *Service) Rubric() *rubric.Rubric {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rubric
}

// CreateAssessment opens a new session record and its in-memory aggregator.
// When req.BaselineID names a previous assessment, its persisted checked set
// is cloned into the new session and written through for the new record.
func (s *Service) CreateAssessment(ctx context.Context, req CreateRequest) (repository.Assessment, error) {
	if !s.isStarted() {
		return repository.Assessment{}, ErrNotStarted
	}

	checked := scoring.NewSet()
	if req.BaselineID != "" {
		var err error
		checked, err = s.cloneCheckedSet(ctx, req.BaselineID)
		if err != nil {
			return repository.Assessment{}, fmt.Errorf("clone baseline %s: %w", req.BaselineID, err)
		}
	}

	rec, err := s.store.CreateAssessment(ctx, repository.NewAssessment{
		Title:        req.Title,
		AssessorID:   req.AssessorID,
		AssesseeName: req.AssesseeName,
		Context:      req.Context,
	})
	if err != nil {
		return repository.Assessment{}, err
	}

	agg := session.New(rec.ID, s.rubric,
		session.WithSaver(s.saver),
		session.WithChecked(checked),
	)

	s.mu.Lock()
	s.sessions[rec.ID] = agg
	active := len(s.sessions)
	s.mu.Unlock()

	// Write the cloned baseline through so the new record rehydrates
	// identically after a restart.
	for _, id := range checked.IDs() {
		s.saver.SaveToggle(ctx, rec.ID, id, true)
	}

	metrics.RecordAssessmentCreated()
	metrics.UpdateActiveSessions(active)
	s.logger.Info(ctx, "assessment created",
		logger.String("assessmentID", rec.ID),
		logger.String("assessee", rec.AssesseeName),
		logger.Int("baselineChecked", checked.Len()),
	)
	return rec, nil
}

// cloneCheckedSet reads a previous assessment's persisted flags and returns
// the set of checked behavior IDs still present in the current rubric.
func (s *Service) cloneCheckedSet(ctx context.Context, previousID string) (scoring.Set, error) {
	rows, err := s.store.BehaviorScores(ctx, previousID)
	if err != nil {
		return nil, err
	}
	set := scoring.NewSet()
	for _, row := range rows {
		if !row.Checked {
			continue
		}
		if _, ok := s.rubric.Behavior(row.BehaviorID); !ok {
			continue
		}
		set.Add(row.BehaviorID)
	}
	return set, nil
}

// ResumeAssessment rehydrates a session from the durable store. A record
// with no persisted scores resumes with an empty checked set; that is a
// normal empty result, not an error.
func (s *Service) ResumeAssessment(ctx context.Context, id string) (repository.Assessment, error) {
	if !s.isStarted() {
		return repository.Assessment{}, ErrNotStarted
	}

	rec, err := s.store.GetAssessment(ctx, id)
	if err != nil {
		return repository.Assessment{}, err
	}

	s.mu.RLock()
	_, live := s.sessions[id]
	s.mu.RUnlock()
	if live {
		return rec, nil
	}

	rows, err := s.store.BehaviorScores(ctx, id)
	if err != nil {
		return repository.Assessment{}, err
	}
	overrides, err := s.store.StepOverrides(ctx, id)
	if err != nil {
		return repository.Assessment{}, err
	}

	agg := session.New(id, s.rubric, session.WithSaver(s.saver))
	checkedIDs := make([]int, 0, len(rows))
	for _, row := range rows {
		if row.Checked {
			checkedIDs = append(checkedIDs, row.BehaviorID)
		}
	}
	if err := agg.Rehydrate(checkedIDs); err != nil {
		return repository.Assessment{}, err
	}
	for stepID, level := range overrides {
		if err := agg.SetStepOverride(ctx, stepID, level); err != nil {
			return repository.Assessment{}, err
		}
	}

	s.mu.Lock()
	s.sessions[id] = agg
	active := len(s.sessions)
	s.mu.Unlock()

	metrics.RecordAssessmentResumed()
	metrics.UpdateActiveSessions(active)
	s.logger.Info(ctx, "assessment resumed",
		logger.String("assessmentID", id),
		logger.Int("checked", len(checkedIDs)),
	)
	return rec, nil
}

// sessionFor returns the live aggregator for id, resuming it if needed.
func (s *Service) sessionFor(ctx context.Context, id string) (*session.Aggregator, error) {
	s.mu.RLock()
	agg, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return agg, nil
	}
	if _, err := s.ResumeAssessment(ctx, id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	agg = s.sessions[id]
	s.mu.RUnlock()
	return agg, nil
}

// ToggleBehavior flips one behavior's checked flag in the session. Returns
// whether the set actually changed; persistence is asynchronous.
func (s *Service) ToggleBehavior(ctx context.Context, assessmentID string, behaviorID int, checked bool) (bool, error) {
	if !s.isStarted() {
		return false, ErrNotStarted
	}
	agg, err := s.sessionFor(ctx, assessmentID)
	if err != nil {
		return false, err
	}
	changed, err := agg.ToggleBehavior(ctx, behaviorID, checked)
	if err != nil {
		return false, err
	}
	if changed {
		metrics.RecordToggleApplied()
	}
	return changed, nil
}

// SetStepOverride records a manual step level (0 clears) and persists it.
// A persistence failure keeps the in-memory override and is only logged.
func (s *Service) SetStepOverride(ctx context.Context, assessmentID string, stepID, level int) error {
	if !s.isStarted() {
		return ErrNotStarted
	}
	agg, err := s.sessionFor(ctx, assessmentID)
	if err != nil {
		return err
	}
	if err := agg.SetStepOverride(ctx, stepID, level); err != nil {
		return err
	}
	metrics.RecordOverrideSet()
	if err := s.store.PutStepOverride(ctx, assessmentID, stepID, level); err != nil {
		s.logger.Warn(ctx, "step override not persisted",
			logger.String("assessmentID", assessmentID),
			logger.Int("stepID", stepID),
			logger.Error(err),
		)
	}
	return nil
}

// SaveNotes stores the free-text coaching fields and finalizes the record.
// Unlike toggles this is a synchronous save; the caller sees the failure
// and can retry, while the in-memory notes are kept either way.
func (s *Service) SaveNotes(ctx context.Context, assessmentID string, notes map[string]string) error {
	if !s.isStarted() {
		return ErrNotStarted
	}
	agg, err := s.sessionFor(ctx, assessmentID)
	if err != nil {
		return err
	}
	for field, text := range notes {
		agg.SetNote(field, text)
	}
	if err := s.store.UpdateAssessmentNotes(ctx, assessmentID, notes); err != nil {
		return fmt.Errorf("save notes: %w", err)
	}
	s.logger.Info(ctx, "assessment finalized", logger.String("assessmentID", assessmentID))
	return nil
}

// Snapshot recomputes the session's derived scores.
func (s *Service) Snapshot(ctx context.Context, assessmentID string) (session.Snapshot, error) {
	if !s.isStarted() {
		return session.Snapshot{}, ErrNotStarted
	}
	agg, err := s.sessionFor(ctx, assessmentID)
	if err != nil {
		return session.Snapshot{}, err
	}
	start := time.Now()
	snap, err := agg.Snapshot(ctx)
	if err != nil {
		if errors.Is(err, scoring.ErrConfiguration) {
			metrics.RecordScoringError()
		}
		return session.Snapshot{}, err
	}
	metrics.RecordSnapshotLatency(float64(time.Since(start).Milliseconds()))
	return snap, nil
}

// Radar builds the chart series comparing step scores to their benchmark
// targets.
func (s *Service) Radar(ctx context.Context, assessmentID string) (Radar, error) {
	snap, err := s.Snapshot(ctx, assessmentID)
	if err != nil {
		return Radar{}, err
	}
	radar := Radar{
		AssessmentID: snap.AssessmentID,
		Points:       make([]RadarPoint, 0, len(snap.Steps)),
	}
	for _, step := range snap.Steps {
		radar.Points = append(radar.Points, RadarPoint{
			StepID: step.ID,
			Title:  step.Title,
			Score:  step.Score,
			Target: step.Target,
			Rank:   step.Rank,
		})
	}
	return radar, nil
}

// Export renders a plain-text coaching report for the assessment.
func (s *Service) Export(ctx context.Context, assessmentID string) (string, error) {
	rec, err := s.store.GetAssessment(ctx, assessmentID)
	if err != nil {
		return "", err
	}
	snap, err := s.Snapshot(ctx, assessmentID)
	if err != nil {
		return "", err
	}
	agg, err := s.sessionFor(ctx, assessmentID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Sales Coaching Assessment: %s\n", rec.Title)
	fmt.Fprintf(&b, "Coachee: %s\n", rec.AssesseeName)
	fmt.Fprintf(&b, "Coach:   %s\n", rec.AssessorID)
	if rec.Context != "" {
		fmt.Fprintf(&b, "Context: %s\n", rec.Context)
	}
	fmt.Fprintf(&b, "Date:    %s\n\n", rec.CreatedAt.Format("2006-01-02"))

	fmt.Fprintf(&b, "Overall: %s (total score %d, %d behaviors observed)\n\n",
		snap.Overall.Label, snap.TotalScore, snap.CheckedCount)

	for _, step := range snap.Steps {
		marker := ""
		if step.Overridden {
			marker = " [manual]"
		}
		fmt.Fprintf(&b, "%d. %s: %s%s (score %d, target %d)\n",
			step.Order, step.Title, step.Label, marker, step.Score, step.Target)
		for _, sub := range step.Substeps {
			fmt.Fprintf(&b, "   - %s: %s (score %d, %d checked)\n",
				sub.Title, sub.Label, sub.Score, sub.CheckedCount)
		}
	}

	notes := agg.Notes()
	if len(notes) > 0 {
		fields := make([]string, 0, len(notes))
		for field := range notes {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		b.WriteString("\nCoaching Notes\n")
		for _, field := range fields {
			fmt.Fprintf(&b, "%s:\n%s\n\n", field, notes[field])
		}
	}
	return b.String(), nil
}

// GetAssessment returns the persisted record.
func (s *Service) GetAssessment(ctx context.Context, id string) (repository.Assessment, error) {
	if !s.isStarted() {
		return repository.Assessment{}, ErrNotStarted
	}
	return s.store.GetAssessment(ctx, id)
}

// ListAssessments returns persisted records, newest first.
func (s *Service) ListAssessments(ctx context.Context, assesseeName string, limit int) ([]repository.Assessment, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	return s.store.ListAssessments(ctx, assesseeName, limit)
}

// SaveStatus reports the toggle save pipeline state.
func (s *Service) SaveStatus(_ context.Context) SaveStatus {
	if !s.isStarted() {
		return SaveStatus{Failed: []saverpkg.FailedSave{}}
	}
	failed := s.saver.Failed()
	if failed == nil {
		failed = []saverpkg.FailedSave{}
	}
	return SaveStatus{
		Pending: s.saver.Pending(),
		Failed:  failed,
	}
}

// RetrySaves reschedules every failed toggle write.
func (s *Service) RetrySaves(ctx context.Context) int {
	if !s.isStarted() {
		return 0
	}
	return s.saver.Retry(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"activeSessions": len(s.sessions),
	}
	if s.started {
		stats["rubricSteps"] = len(s.rubric.Steps())
		stats["rubricBehaviors"] = s.rubric.BehaviorCount()
		stats["savePending"] = s.saver.Pending()
		stats["saveFailed"] = len(s.saver.Failed())
		metrics.UpdateActiveSessions(len(s.sessions))
	}
	return stats
}

func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}
