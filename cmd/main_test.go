package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/anja8577/salescoachreplitapp-sub001/internal/adapters/http/api"
	service "github.com/anja8577/salescoachreplitapp-sub001/internal/app"
	"github.com/anja8577/salescoachreplitapp-sub001/internal/config"
	"github.com/anja8577/salescoachreplitapp-sub001/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("COACH_ADDR", ":8080")
			_ = os.Setenv("COACH_SAVE_QUEUE_SIZE", "500")
			_ = os.Setenv("COACH_SAVE_WORKERS", "4")
			defer func() {
				_ = os.Unsetenv("COACH_ADDR")
				_ = os.Unsetenv("COACH_SAVE_QUEUE_SIZE")
				_ = os.Unsetenv("COACH_SAVE_WORKERS")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.SaveQueueSize, convey.ShouldEqual, 500)
				convey.So(cfg.SaveWorkers, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := service.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := service.New(
					service.WithSaveQueueSize(2000),
					service.WithSaveWorkers(4),
					service.WithSaveRetryMax(5),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			svc := service.New()
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then HTTP server should be creatable", func() {
				server := api.NewServer(svc, svc, 100)
				convey.So(server, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				registry := prometheus.NewRegistry()
				manager := metrics.NewManager(metrics.WithPrometheusRegistry(registry))
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given main application integration", t, func() {
		convey.Convey("When testing full application setup", func() {
			_ = os.Setenv("COACH_ADDR", ":8080")
			defer func() { _ = os.Unsetenv("COACH_ADDR") }()

			convey.Convey("Then all components should work together", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)

				svc := service.New(
					service.WithSaveQueueSize(cfg.SaveQueueSize),
					service.WithSaveWorkers(cfg.SaveWorkers),
					service.WithSaveRetryMax(cfg.SaveRetryMax),
				)
				convey.So(svc, convey.ShouldNotBeNil)

				server := api.NewServer(svc, svc, cfg.MaxListLimit)
				convey.So(server, convey.ShouldNotBeNil)

				mux := http.NewServeMux()
				convey.So(mux, convey.ShouldNotBeNil)

				server.Register(ctx, mux)

				svc.Stop()
			})
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given main application error handling", t, func() {
		convey.Convey("When testing invalid configuration", func() {
			_ = os.Setenv("COACH_ADDR", "")
			defer func() { _ = os.Unsetenv("COACH_ADDR") }()

			convey.Convey("Then configuration loading should fail", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When testing service creation with invalid options", func() {
			convey.Convey("Then service should handle invalid options gracefully", func() {
				svc := service.New(
					service.WithSaveQueueSize(0),
					service.WithSaveWorkers(0),
					service.WithSaveRetryMax(-1),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})
	})
}
