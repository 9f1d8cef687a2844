package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/ladder/internal/adapters/source"
	app "github.com/okian/ladder/internal/app"
	"github.com/okian/ladder/internal/config"
	"github.com/okian/ladder/internal/domain/model"
)

type staticSource struct{}

func (staticSource) Kind() string { return "static" }

func (staticSource) Fetch(context.Context) ([]model.RawRecord, error) {
	return []model.RawRecord{{"date": "2024-01-02", "nickname": "alice", "jobTab": float64(0)}}, nil
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			t.Setenv("LADDER_ADDR", ":8080")
			t.Setenv("LADDER_RELOAD_QUEUE_SIZE", "3")
			t.Setenv("LADDER_LOADER_WORKERS", "2")

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ReloadQueueSize, convey.ShouldEqual, 3)
				convey.So(cfg.LoaderWorkers, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When building the source", func() {
			cfg := config.New(context.Background())

			convey.Convey("Then the sheet endpoint should be used by default", func() {
				src, err := newSource(cfg)
				convey.So(err, convey.ShouldBeNil)
				convey.So(src.Kind(), convey.ShouldEqual, source.KindHTTP)
			})

			convey.Convey("And an xlsx export should take precedence", func() {
				cfg.SourceFile = "ranking.xlsx"
				src, err := newSource(cfg)
				convey.So(err, convey.ShouldBeNil)
				convey.So(src.Kind(), convey.ShouldEqual, source.KindXLSX)
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When running the system metrics updater until its context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
		})

		convey.Convey("When running the service metrics updater until its context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() { startServiceMetricsUpdater(ctx, app.New()) }, convey.ShouldNotPanic)
		})

		convey.Convey("When updating metrics directly", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(app.New()) }, convey.ShouldNotPanic)
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given a started service behind the mux", t, func() {
		ctx := context.Background()
		svc := app.New(app.WithSource(staticSource{}))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		ts := httptest.NewServer(newMux(ctx, svc))
		defer ts.Close()

		for _, path := range []string{"/", "/view", "/tabs", "/healthz", "/metrics", "/api-docs", "/openapi.yaml"} {
			convey.Convey("Then GET "+path+" should succeed", func() {
				resp, err := http.Get(ts.URL + path)
				convey.So(err, convey.ShouldBeNil)
				defer resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			})
		}
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given main application error handling", t, func() {
		convey.Convey("When the address is empty", func() {
			t.Setenv("LADDER_ADDR", "")

			convey.Convey("Then configuration loading should fail", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the source URL is malformed", func() {
			cfg := config.New(context.Background())
			cfg.SourceURL = "://bad"

			convey.Convey("Then building the source should fail", func() {
				_, err := newSource(cfg)
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}
