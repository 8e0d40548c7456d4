package swagger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestSwaggerHandler(t *testing.T) {
	convey.Convey("Given a swagger handler", t, func() {
		ctx := context.Background()
		mux := http.NewServeMux()

		convey.Convey("When registering the swagger handler", func() {
			Register(ctx, mux)

			convey.Convey("Then it should handle /openapi.yaml route", func() {
				req := httptest.NewRequest("GET", "/openapi.yaml", http.NoBody)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/yaml; charset=utf-8")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "/catalogs/{id}/valuation")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "/catalogs/valuations")
			})

			convey.Convey("And it should serve the document as JSON", func() {
				req := httptest.NewRequest("GET", "/openapi.json", http.NoBody)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				var doc map[string]any
				convey.So(json.Unmarshal(w.Body.Bytes(), &doc), convey.ShouldBeNil)
				convey.So(doc["openapi"], convey.ShouldEqual, "3.0.3")
				convey.So(doc["paths"], convey.ShouldContainKey, "/valuations")
			})
		})

		convey.Convey("When registering on a nil mux", func() {
			convey.So(func() { Register(ctx, nil) }, convey.ShouldPanic)
		})
	})
}

func TestSwaggerErrors(t *testing.T) {
	convey.Convey("Given an unparsable document", t, func() {
		_, err := toJSON([]byte("openapi: [unterminated"))

		convey.Convey("Then the conversion fails with ErrServe", func() {
			convey.So(errors.Is(err, ErrServe), convey.ShouldBeTrue)
		})
	})
}
