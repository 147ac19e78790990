package swagger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSwaggerHandler(t *testing.T) {
	Convey("Given the API docs handler", t, func() {
		ctx := context.Background()
		mux := http.NewServeMux()

		Convey("When registering the routes", func() {
			Register(ctx, mux)

			Convey("Then /openapi.yaml serves the embedded spec", func() {
				req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", http.NoBody)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/yaml; charset=utf-8")
				So(w.Body.String(), ShouldContainSubstring, "openapi: 3.0.3")
				So(w.Body.String(), ShouldContainSubstring, "/calendar")
			})

			Convey("And /api-docs serves the ReDoc page", func() {
				req := httptest.NewRequest(http.MethodGet, "/api-docs", http.NoBody)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "text/html; charset=utf-8")
				So(w.Body.String(), ShouldContainSubstring, "redoc-container")
				So(w.Body.String(), ShouldContainSubstring, "/openapi.yaml")
			})
		})

		Convey("When registering on a nil mux", func() {
			So(func() { Register(ctx, nil) }, ShouldPanic)
		})
	})
}
