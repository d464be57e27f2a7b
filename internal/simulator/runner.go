package simulator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/anja8577/salescoachreplitapp-sub001/internal/adapters/repository"
	"github.com/anja8577/salescoachreplitapp-sub001/internal/domain/rubric"
	"github.com/anja8577/salescoachreplitapp-sub001/internal/domain/session"
	"github.com/anja8577/salescoachreplitapp-sub001/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// settleDelay gives the background save pipeline time to drain before the
// run is reported.
const settleDelay = 2 * time.Second

// Run executes the complete coaching session simulation.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting coaching session simulation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("sessions", config.NumSessions),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.String("reportFile", config.ReportFile),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Script the sessions
	plans, err := generatePlans(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("plan generation failed: %w", err)
	}

	// The verifier replays plans against the same built-in rubric the
	// service loads when no rubric file is configured.
	r, err := rubric.NewSeedSource().Load(ctx)
	if err != nil {
		return fmt.Errorf("rubric load failed: %w", err)
	}

	// Step 3: Run the sessions concurrently
	results, err := runSessions(ctx, config, r, plans, stats)
	if err != nil {
		return fmt.Errorf("session execution failed: %w", err)
	}

	// Step 4: Let the save pipeline settle
	logger.Get().Info(ctx, "waiting for background saves to settle")
	time.Sleep(settleDelay)

	// Step 5: Save results to file
	if err := saveResultsToFile(ctx, config, results); err != nil {
		logger.Get().Warn(ctx, "failed to save results to file", logger.Error(err))
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	if stats.Mismatches > 0 {
		return fmt.Errorf("simulation found %d snapshot mismatches", stats.Mismatches)
	}
	logger.Get().Info(ctx, "simulation completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer drainResponse(resp)

	// Accept any 200 response as healthy (the endpoint returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// runSessions drives the scripted sessions through the HTTP API using a
// worker pool, verifying each session's snapshot as it completes.
func runSessions(ctx context.Context, config *Config, r *rubric.Rubric, plans []Plan, stats *Stats) ([]Result, error) {
	logger.Get().Info(ctx, "running sessions",
		logger.Int("sessions", len(plans)),
		logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)
	results := make([]Result, len(plans))

	var (
		completed int64
		failed    int64
		toggles   int64
		mismatch  int64
	)

	type job struct {
		index int
		plan  Plan
	}
	jobChan := make(chan job, config.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobChan {
				select {
				case <-ctx.Done():
					return
				default:
					res := runSingleSession(ctx, client, config.BaseURL, r, j.plan)
					atomic.AddInt64(&toggles, int64(len(j.plan.Toggles)))
					switch {
					case res.Error != "":
						atomic.AddInt64(&failed, 1)
					case !res.Verified:
						atomic.AddInt64(&mismatch, 1)
						atomic.AddInt64(&completed, 1)
					default:
						atomic.AddInt64(&completed, 1)
					}
					results[j.index] = res
				}
			}
		}()
	}

	go func() {
		defer close(jobChan)
		for i, plan := range plans {
			select {
			case <-ctx.Done():
				return
			case jobChan <- job{index: i, plan: plan}:
			}
		}
	}()

	wg.Wait()

	stats.SessionsCompleted = int(atomic.LoadInt64(&completed))
	stats.SessionsFailed = int(atomic.LoadInt64(&failed))
	stats.TogglesSubmitted = int(atomic.LoadInt64(&toggles))
	stats.Mismatches = int(atomic.LoadInt64(&mismatch))
	return results, nil
}

// runSingleSession walks one plan through create, toggles, overrides,
// snapshot verification, and notes.
func runSingleSession(ctx context.Context, client *HTTPClient, baseURL string, r *rubric.Rubric, plan Plan) Result {
	res := Result{Assessee: plan.Assessee}

	rec, err := createAssessment(ctx, client, baseURL, plan)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.AssessmentID = rec.ID

	base := baseURL + "/assessments/" + rec.ID
	for _, op := range plan.Toggles {
		url := fmt.Sprintf("%s/behaviors/%d", base, op.BehaviorID)
		resp, err := client.Put(ctx, url, map[string]bool{"checked": op.Checked})
		if err != nil {
			res.Error = fmt.Sprintf("toggle %d: %v", op.BehaviorID, err)
			return res
		}
		drainResponse(resp)
		if resp.StatusCode != StatusOK {
			res.Error = fmt.Sprintf("toggle %d: status %d", op.BehaviorID, resp.StatusCode)
			return res
		}
	}

	for stepID, level := range plan.Overrides {
		url := fmt.Sprintf("%s/steps/%d/override", base, stepID)
		resp, err := client.Put(ctx, url, map[string]int{"level": level})
		if err != nil {
			res.Error = fmt.Sprintf("override %d: %v", stepID, err)
			return res
		}
		drainResponse(resp)
		if resp.StatusCode != StatusOK {
			res.Error = fmt.Sprintf("override %d: status %d", stepID, resp.StatusCode)
			return res
		}
	}

	var snap session.Snapshot
	resp, err := client.Get(ctx, base+"/snapshot")
	if err != nil {
		res.Error = "snapshot: " + err.Error()
		return res
	}
	if resp.StatusCode != StatusOK {
		drainResponse(resp)
		res.Error = fmt.Sprintf("snapshot: status %d", resp.StatusCode)
		return res
	}
	if err := decodeResponse(resp, &snap); err != nil {
		res.Error = "snapshot: " + err.Error()
		return res
	}

	res.TotalScore = snap.TotalScore
	res.CheckedCount = snap.CheckedCount
	res.Overall = snap.Overall.Label

	if err := verifySnapshot(ctx, r, plan, snap); err != nil {
		logger.Get().Warn(ctx, "snapshot verification failed",
			logger.String("assessmentID", rec.ID),
			logger.Error(err))
		res.Verified = false
		res.Error = ""
		return res
	}
	res.Verified = true

	if len(plan.Notes) > 0 {
		resp, err := client.Put(ctx, base+"/notes", plan.Notes)
		if err != nil {
			res.Error = "notes: " + err.Error()
			return res
		}
		drainResponse(resp)
	}
	return res
}

// createAssessment opens one assessment record over HTTP.
func createAssessment(ctx context.Context, client *HTTPClient, baseURL string, plan Plan) (repository.Assessment, error) {
	body := map[string]string{
		"title":         plan.Title,
		"assessor_id":   "simulator",
		"assessee_name": plan.Assessee,
		"context":       "simulated field visit",
	}
	resp, err := client.Post(ctx, baseURL+"/assessments", body)
	if err != nil {
		return repository.Assessment{}, fmt.Errorf("create: %w", err)
	}
	if resp.StatusCode != StatusCreated {
		drainResponse(resp)
		return repository.Assessment{}, fmt.Errorf("create: status %d", resp.StatusCode)
	}
	var rec repository.Assessment
	if err := decodeResponse(resp, &rec); err != nil {
		return repository.Assessment{}, fmt.Errorf("create: %w", err)
	}
	return rec, nil
}

// saveResultsToFile saves the per-session results to a JSON file.
func saveResultsToFile(ctx context.Context, config *Config, results []Result) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to save")
	}

	filename := config.ReportFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "simulation_results_" + timestamp + ".json"
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	if _, err := file.WriteString("[\n"); err != nil {
		return fmt.Errorf("failed to write opening bracket: %w", err)
	}
	for i, res := range results {
		jsonData, err := marshalJSON(res)
		if err != nil {
			return fmt.Errorf("failed to marshal result %d: %w", i, err)
		}
		if _, err := file.Write(jsonData); err != nil {
			return fmt.Errorf("failed to write result %d: %w", i, err)
		}
		if i < len(results)-1 {
			if _, err := file.WriteString(","); err != nil {
				return fmt.Errorf("failed to write comma: %w", err)
			}
		}
		_, _ = file.WriteString("\n")
	}
	if _, err := file.WriteString("]\n"); err != nil {
		return fmt.Errorf("failed to write closing bracket: %w", err)
	}

	logger.Get().Info(ctx, "results saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final simulation statistics.
func displayFinalStats(stats *Stats) {
	var successRate, sessionsPerSecond float64

	if stats.SessionsPlanned > 0 {
		successRate = float64(stats.SessionsCompleted) / float64(stats.SessionsPlanned) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		sessionsPerSecond = float64(stats.SessionsCompleted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("sessionsPlanned", stats.SessionsPlanned),
		logger.Int("sessionsCompleted", stats.SessionsCompleted),
		logger.Int("sessionsFailed", stats.SessionsFailed),
		logger.Int("togglesSubmitted", stats.TogglesSubmitted),
		logger.Int("mismatches", stats.Mismatches),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("sessionsPerSecond", sessionsPerSecond))
}
