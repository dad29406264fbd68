package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/muziki/internal/config"
	"github.com/okian/muziki/pkg/logger"
	"github.com/okian/muziki/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	_ = logger.SetLevelString("error")
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("MUZIKI_ADDR", "127.0.0.1:0")
	t.Setenv("MUZIKI_DB_DSN", filepath.Join(t.TempDir(), "main.db"))
	t.Setenv("MUZIKI_JWT_SECRET", "main-test-secret")
	t.Setenv("MUZIKI_BCRYPT_COST", "4")
	t.Setenv("MUZIKI_LOG_LEVEL", "error")
	cfg, err := config.Load(context.Background())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func TestMainConfiguration(t *testing.T) {
	convey.Convey("Given MUZIKI_ environment variables", t, func() {
		cfg := testConfig(t)

		convey.Convey("Then configuration should reflect them", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, "127.0.0.1:0")
			convey.So(cfg.JWTSecret, convey.ShouldEqual, "main-test-secret")
			convey.So(cfg.BcryptCost, convey.ShouldEqual, 4)
		})

		convey.Convey("And the service should be buildable from it", func() {
			convey.So(newService(cfg, logger.Get()), convey.ShouldNotBeNil)
		})
	})
}

func TestMainHandler(t *testing.T) {
	convey.Convey("Given a started service and the assembled handler", t, func() {
		cfg := testConfig(t)
		ctx := context.Background()
		svc := newService(cfg, logger.Get())
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		h := newHandler(ctx, svc, logger.Get())

		serve := func(method, path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(method, path, http.NoBody))
			return w
		}

		convey.Convey("Then docs, metrics and stats should be served", func() {
			convey.So(serve(http.MethodGet, "/api-docs").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(serve(http.MethodGet, "/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(serve(http.MethodGet, "/healthz").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(serve(http.MethodGet, "/stats").Body.String(), convey.ShouldContainSubstring, `"database_driver":"sqlite"`)
		})

		convey.Convey("And the song list should require a token", func() {
			convey.So(serve(http.MethodGet, "/v1/songs/").Code, convey.ShouldEqual, http.StatusUnauthorized)
		})

		convey.Convey("And public song routes should be reachable", func() {
			convey.So(serve(http.MethodGet, "/v1/songs/7/").Code, convey.ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestMetricsOptions(t *testing.T) {
	convey.Convey("Given metrics settings in the environment", t, func() {
		t.Setenv("MUZIKI_METRICS_NAMESPACE", "radio")
		t.Setenv("MUZIKI_METRICS_SUBSYSTEM", "songs")
		cfg := testConfig(t)

		convey.Convey("Then a manager built from them should use those names", func() {
			registry := prometheus.NewRegistry()
			opts := append(metricsOptions(cfg), metrics.WithPrometheusRegistry(registry))
			convey.So(metrics.NewManager(opts...), convey.ShouldNotBeNil)

			families, err := registry.Gather()
			convey.So(err, convey.ShouldBeNil)
			names := make([]string, 0, len(families))
			for _, f := range families {
				names = append(names, f.GetName())
			}
			convey.So(names, convey.ShouldContain, "radio_songs_songs")
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a context that is cancelled shortly after start", t, func() {
		cfg := testConfig(t)
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		convey.Convey("Then run should shut down cleanly", func() {
			convey.So(run(ctx, cfg), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given an unreachable database", t, func() {
		cfg := testConfig(t)
		cfg.DBDSN = filepath.Join(t.TempDir(), "missing", "dir", "main.db")

		convey.Convey("Then run should fail to start", func() {
			convey.So(run(context.Background(), cfg), convey.ShouldNotBeNil)
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the metrics updaters", t, func() {
		convey.Convey("Then a system metrics update should not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("And the updater loops should stop with their context", func() {
			cfg := testConfig(t)
			svc := newService(cfg, logger.Get())
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
			convey.So(func() { startServiceMetricsUpdater(ctx, svc) }, convey.ShouldNotPanic)
		})
	})
}
