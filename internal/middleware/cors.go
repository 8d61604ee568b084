package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

const (
	allowedMethods = "GET,POST,OPTIONS"
	allowedHeaders = "Content-Type, Authorization"
)

// SetCORSHeaders applies the CORS headers for origin to w.
func SetCORSHeaders(w http.ResponseWriter, origin string) {
	if origin == "" {
		origin = "*"
	}
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", origin)
	h.Set("Access-Control-Allow-Methods", allowedMethods)
	h.Set("Access-Control-Allow-Headers", allowedHeaders)
	if origin != "*" {
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Vary", "Origin")
	}
}

// CORS decorates every response and answers preflight requests with a bare
// 200.
func CORS(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			SetCORSHeaders(w, origin)
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Recoverer turns a panic into a JSON 500. CORS headers are re-applied so
// the browser can read the error body.
func Recoverer(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				slog.Error("panic in handler", "panic", rec, "path", r.URL.Path, "stack", string(debug.Stack()))
				SetCORSHeaders(w, origin)
				writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal error", r)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
