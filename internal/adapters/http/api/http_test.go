package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anja8577/salescoachreplitapp-sub001/internal/adapters/repository"
	"github.com/anja8577/salescoachreplitapp-sub001/internal/domain/session"
	"github.com/anja8577/salescoachreplitapp-sub001/internal/domain/types"
	"github.com/smartystreets/goconvey/convey"
)

// stubDeps is a scripted Dependencies implementation. Each field, when set,
// overrides the default canned response.
type stubDeps struct {
	createErr   error
	getErr      error
	listRecs    []repository.Assessment
	listErr     error
	toggleErr   error
	overrideErr error
	notesErr    error
	snapErr     error

	lastToggle struct {
		id         string
		behaviorID int
		checked    bool
	}
	lastOverride struct {
		id     string
		stepID int
		level  int
	}
	lastNotes map[string]string
	retried   int
}

func (d *stubDeps) CreateAssessment(_ context.Context, req types.CreateAssessmentRequest) (repository.Assessment, error) {
	if d.createErr != nil {
		return repository.Assessment{}, d.createErr
	}
	return repository.Assessment{ID: "a-1", Title: req.Title, AssessorID: req.AssessorID, AssesseeName: req.AssesseeName}, nil
}

func (d *stubDeps) GetAssessment(_ context.Context, id string) (repository.Assessment, error) {
	if d.getErr != nil {
		return repository.Assessment{}, d.getErr
	}
	return repository.Assessment{ID: id, Title: "stub"}, nil
}

func (d *stubDeps) ListAssessments(_ context.Context, _ string, _ int) ([]repository.Assessment, error) {
	return d.listRecs, d.listErr
}

func (d *stubDeps) ToggleBehavior(_ context.Context, id string, behaviorID int, checked bool) (bool, error) {
	if d.toggleErr != nil {
		return false, d.toggleErr
	}
	d.lastToggle.id = id
	d.lastToggle.behaviorID = behaviorID
	d.lastToggle.checked = checked
	return true, nil
}

func (d *stubDeps) SetStepOverride(_ context.Context, id string, stepID, level int) error {
	if d.overrideErr != nil {
		return d.overrideErr
	}
	d.lastOverride.id = id
	d.lastOverride.stepID = stepID
	d.lastOverride.level = level
	return nil
}

func (d *stubDeps) SaveNotes(_ context.Context, _ string, notes map[string]string) error {
	if d.notesErr != nil {
		return d.notesErr
	}
	d.lastNotes = notes
	return nil
}

func (d *stubDeps) Snapshot(_ context.Context, id string) (session.Snapshot, error) {
	if d.snapErr != nil {
		return session.Snapshot{}, d.snapErr
	}
	return session.Snapshot{AssessmentID: id, CheckedCount: 3, TotalScore: 7}, nil
}

func (d *stubDeps) Radar(_ context.Context, id string) (types.Radar, error) {
	if d.snapErr != nil {
		return types.Radar{}, d.snapErr
	}
	return types.Radar{
		AssessmentID: id,
		Points:       []types.RadarPoint{{StepID: 1, Title: "Preparation", Score: 5, Target: 12, Rank: 2}},
	}, nil
}

func (d *stubDeps) Export(_ context.Context, id string) (string, error) {
	if d.snapErr != nil {
		return "", d.snapErr
	}
	return "Sales Coaching Assessment: stub\n", nil
}

func (d *stubDeps) SaveStatus(_ context.Context) types.SaveStatus {
	return types.SaveStatus{Pending: 1, Failed: []types.FailedSave{{AssessmentID: "a-1", BehaviorID: 1101, Checked: true}}}
}

func (d *stubDeps) RetrySaves(_ context.Context) int { return d.retried }

type stubStats struct{}

func (stubStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true, "activeSessions": 2}
}

func newTestMux(deps *stubDeps) *http.ServeMux {
	mux := http.NewServeMux()
	NewServer(deps, stubStats{}, 100).Register(context.Background(), mux)
	return mux
}

func doJSON(mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestCreateEndpoint(t *testing.T) {
	convey.Convey("Given the API routes", t, func() {
		deps := &stubDeps{}
		mux := newTestMux(deps)

		convey.Convey("When POSTing a valid assessment", func() {
			rec := doJSON(mux, http.MethodPost, "/assessments", map[string]string{
				"title": "visit", "assessor_id": "c1", "assessee_name": "Dana",
			})
			convey.So(rec.Code, convey.ShouldEqual, http.StatusCreated)

			var got repository.Assessment
			convey.So(json.Unmarshal(rec.Body.Bytes(), &got), convey.ShouldBeNil)
			convey.So(got.ID, convey.ShouldEqual, "a-1")
			convey.So(got.Title, convey.ShouldEqual, "visit")
		})

		convey.Convey("When required fields are missing", func() {
			for _, body := range []map[string]string{
				{"assessor_id": "c1", "assessee_name": "Dana"},
				{"title": "visit", "assessee_name": "Dana"},
				{"title": "visit", "assessor_id": "c1"},
				{"title": "  ", "assessor_id": "c1", "assessee_name": "Dana"},
			} {
				rec := doJSON(mux, http.MethodPost, "/assessments", body)
				convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
			}
		})

		convey.Convey("When the body is not JSON", func() {
			req := httptest.NewRequest(http.MethodPost, "/assessments", strings.NewReader("{nope"))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
		})

		convey.Convey("When the baseline id is unknown", func() {
			deps.createErr = fmt.Errorf("clone baseline: %w", repository.ErrNotFound)
			rec := doJSON(mux, http.MethodPost, "/assessments", map[string]string{
				"title": "visit", "assessor_id": "c1", "assessee_name": "Dana", "baseline_id": "missing",
			})
			convey.So(rec.Code, convey.ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestListEndpoint(t *testing.T) {
	convey.Convey("Given the API routes", t, func() {
		deps := &stubDeps{}
		mux := newTestMux(deps)

		convey.Convey("Then a nil slice from the service renders as an empty array", func() {
			rec := doJSON(mux, http.MethodGet, "/assessments", nil)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(strings.TrimSpace(rec.Body.String()), convey.ShouldEqual, "[]")
		})

		convey.Convey("Then records come back as JSON", func() {
			deps.listRecs = []repository.Assessment{{ID: "a-2"}, {ID: "a-1"}}
			rec := doJSON(mux, http.MethodGet, "/assessments?assessee=Dana&limit=10", nil)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)

			var got []repository.Assessment
			convey.So(json.Unmarshal(rec.Body.Bytes(), &got), convey.ShouldBeNil)
			convey.So(got, convey.ShouldHaveLength, 2)
		})

		convey.Convey("Then a malformed limit is rejected", func() {
			for _, q := range []string{"limit=abc", "limit=0", "limit=-3"} {
				rec := doJSON(mux, http.MethodGet, "/assessments?"+q, nil)
				convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
			}
		})

		convey.Convey("Then a limit above the cap is rejected", func() {
			rec := doJSON(mux, http.MethodGet, "/assessments?limit=101", nil)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)

			var body map[string]string
			convey.So(json.Unmarshal(rec.Body.Bytes(), &body), convey.ShouldBeNil)
			convey.So(body["code"], convey.ShouldEqual, "limit_exceeded")
		})
	})
}

func TestResourceEndpoints(t *testing.T) {
	convey.Convey("Given the API routes", t, func() {
		deps := &stubDeps{}
		mux := newTestMux(deps)

		convey.Convey("When fetching a record", func() {
			rec := doJSON(mux, http.MethodGet, "/assessments/a-1", nil)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("When the record does not exist", func() {
			deps.getErr = repository.ErrNotFound
			rec := doJSON(mux, http.MethodGet, "/assessments/missing", nil)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusNotFound)

			var body map[string]string
			convey.So(json.Unmarshal(rec.Body.Bytes(), &body), convey.ShouldBeNil)
			convey.So(body["code"], convey.ShouldEqual, "not_found")
		})

		convey.Convey("When fetching the snapshot", func() {
			rec := doJSON(mux, http.MethodGet, "/assessments/a-1/snapshot", nil)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)

			var snap session.Snapshot
			convey.So(json.Unmarshal(rec.Body.Bytes(), &snap), convey.ShouldBeNil)
			convey.So(snap.AssessmentID, convey.ShouldEqual, "a-1")
			convey.So(snap.TotalScore, convey.ShouldEqual, 7)
		})

		convey.Convey("When fetching the radar series", func() {
			rec := doJSON(mux, http.MethodGet, "/assessments/a-1/radar", nil)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)

			var radar types.Radar
			convey.So(json.Unmarshal(rec.Body.Bytes(), &radar), convey.ShouldBeNil)
			convey.So(radar.Points, convey.ShouldHaveLength, 1)
			convey.So(radar.Points[0].Target, convey.ShouldEqual, 12)
		})

		convey.Convey("When fetching the report", func() {
			rec := doJSON(mux, http.MethodGet, "/assessments/a-1/report", nil)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(rec.Header().Get("Content-Type"), convey.ShouldStartWith, "text/plain")
			convey.So(rec.Body.String(), convey.ShouldContainSubstring, "Sales Coaching Assessment")
		})

		convey.Convey("When the path is unknown", func() {
			rec := doJSON(mux, http.MethodGet, "/assessments/a-1/bogus", nil)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestToggleEndpoint(t *testing.T) {
	convey.Convey("Given the API routes", t, func() {
		deps := &stubDeps{}
		mux := newTestMux(deps)

		convey.Convey("When toggling a behavior on", func() {
			rec := doJSON(mux, http.MethodPut, "/assessments/a-1/behaviors/1102", map[string]bool{"checked": true})
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(deps.lastToggle.behaviorID, convey.ShouldEqual, 1102)
			convey.So(deps.lastToggle.checked, convey.ShouldBeTrue)

			var body map[string]any
			convey.So(json.Unmarshal(rec.Body.Bytes(), &body), convey.ShouldBeNil)
			convey.So(body["changed"], convey.ShouldBeTrue)
		})

		convey.Convey("When the behavior id is not numeric", func() {
			rec := doJSON(mux, http.MethodPut, "/assessments/a-1/behaviors/abc", map[string]bool{"checked": true})
			convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
		})

		convey.Convey("When the behavior is outside the rubric", func() {
			deps.toggleErr = session.ErrUnknownBehavior
			rec := doJSON(mux, http.MethodPut, "/assessments/a-1/behaviors/424242", map[string]bool{"checked": true})
			convey.So(rec.Code, convey.ShouldEqual, http.StatusConflict)

			var body map[string]string
			convey.So(json.Unmarshal(rec.Body.Bytes(), &body), convey.ShouldBeNil)
			convey.So(body["code"], convey.ShouldEqual, "not_in_rubric")
		})

		convey.Convey("When toggling with GET", func() {
			rec := doJSON(mux, http.MethodGet, "/assessments/a-1/behaviors/1102", nil)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestOverrideEndpoint(t *testing.T) {
	convey.Convey("Given the API routes", t, func() {
		deps := &stubDeps{}
		mux := newTestMux(deps)

		convey.Convey("When setting a step override", func() {
			rec := doJSON(mux, http.MethodPut, "/assessments/a-1/steps/3/override", map[string]int{"level": 4})
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(deps.lastOverride.stepID, convey.ShouldEqual, 3)
			convey.So(deps.lastOverride.level, convey.ShouldEqual, 4)
		})

		convey.Convey("When the level is out of range", func() {
			deps.overrideErr = session.ErrInvalidLevel
			rec := doJSON(mux, http.MethodPut, "/assessments/a-1/steps/3/override", map[string]int{"level": 9})
			convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
		})

		convey.Convey("When the step is outside the rubric", func() {
			deps.overrideErr = session.ErrUnknownStep
			rec := doJSON(mux, http.MethodPut, "/assessments/a-1/steps/99/override", map[string]int{"level": 2})
			convey.So(rec.Code, convey.ShouldEqual, http.StatusConflict)
		})
	})
}

func TestNotesAndSavesEndpoints(t *testing.T) {
	convey.Convey("Given the API routes", t, func() {
		deps := &stubDeps{}
		mux := newTestMux(deps)

		convey.Convey("When saving notes", func() {
			rec := doJSON(mux, http.MethodPut, "/assessments/a-1/notes", map[string]string{"strengths": "great recap"})
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(deps.lastNotes["strengths"], convey.ShouldEqual, "great recap")
		})

		convey.Convey("When the notes save fails", func() {
			deps.notesErr = repository.ErrNotFound
			rec := doJSON(mux, http.MethodPut, "/assessments/missing/notes", map[string]string{"strengths": "x"})
			convey.So(rec.Code, convey.ShouldEqual, http.StatusNotFound)
		})

		convey.Convey("When reading the save pipeline status", func() {
			rec := doJSON(mux, http.MethodGet, "/assessments/a-1/saves", nil)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)

			var status types.SaveStatus
			convey.So(json.Unmarshal(rec.Body.Bytes(), &status), convey.ShouldBeNil)
			convey.So(status.Pending, convey.ShouldEqual, 1)
			convey.So(status.Failed, convey.ShouldHaveLength, 1)
			convey.So(status.Failed[0].BehaviorID, convey.ShouldEqual, 1101)
		})

		convey.Convey("When requeuing failed saves", func() {
			deps.retried = 2
			rec := doJSON(mux, http.MethodPost, "/assessments/a-1/saves/retry", nil)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)

			var body map[string]int
			convey.So(json.Unmarshal(rec.Body.Bytes(), &body), convey.ShouldBeNil)
			convey.So(body["retried"], convey.ShouldEqual, 2)
		})
	})
}

func TestOperationalEndpoints(t *testing.T) {
	convey.Convey("Given the API routes", t, func() {
		mux := newTestMux(&stubDeps{})

		convey.Convey("Then /stats serves the provider's counters", func() {
			rec := doJSON(mux, http.MethodGet, "/stats", nil)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)

			var stats map[string]any
			convey.So(json.Unmarshal(rec.Body.Bytes(), &stats), convey.ShouldBeNil)
			convey.So(stats["started"], convey.ShouldBeTrue)
		})

		convey.Convey("Then /healthz serves Prometheus exposition text", func() {
			rec := doJSON(mux, http.MethodGet, "/healthz", nil)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then /dashboard serves the embedded page", func() {
			rec := doJSON(mux, http.MethodGet, "/dashboard", nil)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(rec.Header().Get("Content-Type"), convey.ShouldStartWith, "text/html")
			convey.So(rec.Body.String(), convey.ShouldContainSubstring, "Sales Coaching Dashboard")
		})

		convey.Convey("Then /openapi.yaml serves the API description", func() {
			rec := doJSON(mux, http.MethodGet, "/openapi.yaml", nil)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(rec.Body.String(), convey.ShouldContainSubstring, "openapi: 3.0.3")
		})
	})
}
