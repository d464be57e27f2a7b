package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	convey.Convey("Given metrics manager creation", t, func() {
		convey.Convey("When creating with default options", func() {
			manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))
			convey.So(manager, convey.ShouldNotBeNil)
		})

		convey.Convey("When creating with custom options", func() {
			manager := NewManager(
				WithNamespace("testns"),
				WithSubsystem("testsub"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)
			convey.So(manager, convey.ShouldNotBeNil)
		})

		convey.Convey("When options carry zero values they fall back to defaults", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)
			convey.So(manager, convey.ShouldNotBeNil)
			convey.So(manager.namespace, convey.ShouldEqual, "salescoach")
			convey.So(manager.subsystem, convey.ShouldEqual, "assessment")
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	convey.Convey("Given the global metrics manager", t, func() {
		convey.Convey("When recording business metrics", func() {
			convey.So(func() {
				RecordAssessmentCreated()
				RecordAssessmentResumed()
				RecordToggleApplied()
				RecordOverrideSet()
				RecordScoringError()
				RecordSnapshotLatency(12.5)
				UpdateActiveSessions(3)
			}, convey.ShouldNotPanic)
		})

		convey.Convey("When recording save pipeline metrics", func() {
			convey.So(func() {
				RecordToggleSaved()
				RecordToggleSaveFailed()
				RecordToggleSaveRetried()
				UpdateSaveQueueDepth(7)
				UpdateSaveQueueDepth(0)
			}, convey.ShouldNotPanic)
		})

		convey.Convey("When recording HTTP metrics", func() {
			convey.So(func() {
				RecordHTTPRequest("/healthz", "GET", "200")
				RecordHTTPRequest("/assessments", "POST", "201")
				RecordHTTPRequestDuration("/assessments", "POST", "201", 4.2)
				RecordHTTPRequest("", "", "200")
				RecordHTTPRequestDuration("/assessments?limit=5", "GET", "400", 0.0)
			}, convey.ShouldNotPanic)
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	convey.Convey("Given concurrent metric writers", t, func() {
		done := make(chan struct{}, 8)
		for i := 0; i < 8; i++ {
			go func() {
				for j := 0; j < 100; j++ {
					RecordToggleApplied()
					UpdateSaveQueueDepth(j)
					RecordSnapshotLatency(float64(j))
					RecordHTTPRequest("/assessments", "GET", "200")
				}
				done <- struct{}{}
			}()
		}
		for i := 0; i < 8; i++ {
			<-done
		}

		convey.Convey("Then concurrent access completes without panics", func() {
			convey.So(true, convey.ShouldBeTrue)
		})
	})
}

func TestGetRegistry(t *testing.T) {
	convey.Convey("Given the package registry", t, func() {
		convey.So(GetRegistry(), convey.ShouldNotBeNil)
	})
}
