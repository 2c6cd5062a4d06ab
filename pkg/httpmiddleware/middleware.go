// Package httpmiddleware provides composable net/http middleware: recovery,
// CORS, rate limiting, request IDs, request-scoped logging and
// OpenTelemetry instrumentation.
package httpmiddleware

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/gorilla/mux"
)

// Middleware decorates an http.Handler.
type Middleware func(next http.Handler) http.Handler

// Wrap applies middlewares to h. The first middleware is the outermost one,
// so Wrap(h, a, b) serves a(b(h)).
func Wrap(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// Route describes the registered route a request matched.
type Route struct {
	Name     string
	Template string
}

// RouteFinder resolves the route of a request without serving it.
type RouteFinder func(r *http.Request) (Route, bool)

// MakeRouteFinder returns a RouteFinder backed by router's matcher.
func MakeRouteFinder(router *mux.Router) RouteFinder {
	return func(r *http.Request) (Route, bool) {
		var match mux.RouteMatch
		if !router.Match(r, &match) || match.Route == nil {
			return Route{}, false
		}
		tpl, err := match.Route.GetPathTemplate()
		if err != nil {
			return Route{}, false
		}
		name := match.Route.GetName()
		if name == "" {
			name = tpl
		}
		return Route{Name: name, Template: tpl}, true
	}
}

// writeError writes the JSON error envelope used by every endpoint.
func writeError(w http.ResponseWriter, status int, message string) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	e.ObjStart()
	e.FieldStart("success")
	e.Bool(false)
	e.FieldStart("statusCode")
	e.Int(status)
	e.FieldStart("message")
	e.Str(message)
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// statusRecorder captures the status code and size written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}
