package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChain(t *testing.T) {
	tag := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Add("X-Order", name)
				next.ServeHTTP(w, r)
			})
		}
	}

	t.Run("FirstMiddlewareIsOutermost", func(t *testing.T) {
		// Arrange
		var handled bool
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { handled = true })
		rec := httptest.NewRecorder()

		// Act
		Chain(h, tag("outer"), tag("inner")).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		// Assert
		if !handled {
			t.Fatal("handler was not invoked")
		}
		got := rec.Header().Values("X-Order")
		if len(got) != 2 || got[0] != "outer" || got[1] != "inner" {
			t.Fatalf("middleware order = %v, want [outer inner]", got)
		}
	})

	t.Run("NoMiddlewaresReturnsHandler", func(t *testing.T) {
		// Arrange
		var handled bool
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { handled = true })

		// Act
		Chain(h).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		// Assert
		if !handled {
			t.Fatal("handler was not invoked")
		}
	})

	t.Run("SkipsNilMiddleware", func(t *testing.T) {
		// Arrange
		var handled bool
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { handled = true })
		rec := httptest.NewRecorder()

		// Act
		Chain(h, nil, tag("only")).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		// Assert
		if !handled {
			t.Fatal("handler was not invoked")
		}
		if got := rec.Header().Values("X-Order"); len(got) != 1 || got[0] != "only" {
			t.Fatalf("middleware order = %v, want [only]", got)
		}
	})
}
