package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/valuator/internal/adapters/repository"
	app "github.com/okian/valuator/internal/app"
	"github.com/okian/valuator/internal/config"
	"github.com/okian/valuator/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainWiring(t *testing.T) {
	if err := logger.InitWithFormat(&strings.Builder{}, logger.FormatText); err != nil {
		t.Fatalf("init logger: %v", err)
	}

	convey.Convey("Given the main application wiring", t, func() {
		ctx := context.Background()

		convey.Convey("When no database path is configured", func() {
			store, err := openStore(ctx, config.New(), logger.Nop())

			convey.Convey("Then an in-memory store is used", func() {
				convey.So(err, convey.ShouldBeNil)
				_, ok := store.(*repository.MemoryStore)
				convey.So(ok, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a database path is configured", func() {
			cfg := config.New()
			cfg.DatabasePath = filepath.Join(t.TempDir(), "catalogs.db")
			store, err := openStore(ctx, cfg, logger.Nop())

			convey.Convey("Then a sqlite store is opened", func() {
				convey.So(err, convey.ShouldBeNil)
				sqlStore, ok := store.(*repository.SQLStore)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(sqlStore.Close(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When building the HTTP handler", func() {
			svc := app.New(app.WithLogger(logger.Nop()))
			handler := newHandler(ctx, svc)

			for _, path := range []string{"/healthz", "/stats", "/genres", "/openapi.yaml", "/openapi.json"} {
				req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
				w := httptest.NewRecorder()
				handler.ServeHTTP(w, req)

				convey.Convey("Then "+path+" is served", func() {
					convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				})
			}
		})

		convey.Convey("When updating system metrics", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})
	})
}
