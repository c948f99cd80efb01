package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"

	"retailflow/internal/infrastructure"
)

// Problem types served by the API
const (
	TypeValidation    = "/errors/validation-failed"
	TypeNotFound      = "/errors/not-found"
	TypeRateLimit     = "/errors/rate-limit-exceeded"
	TypeRunInProgress = "/errors/pipeline/already-running"
	TypeUnsupported   = "/errors/unsupported-media-type"
	TypeUnavailable   = "/errors/service-unavailable"
	TypeInternal      = "/errors/internal-server-error"
)

// Problem represents an RFC 7807 problem details object
type Problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Trace  string `json:"trace_id,omitempty"`
}

// Render implements the chi render.Renderer interface; render.Respond
// then encodes the problem.
func (p Problem) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, p.Status)
	return nil
}

// WriteProblem writes p as application/problem+json
func WriteProblem(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NewProblem builds a problem for r, tagged with the request's trace id
func NewProblem(r *http.Request, status int, problemType, detail string) Problem {
	return Problem{
		Type:   problemType,
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
		Trace:  infrastructure.GetTraceID(r.Context()),
	}
}

// NotFound answers unknown routes with a problem document
func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteProblem(w, NewProblem(r, http.StatusNotFound, TypeNotFound, "no route for "+r.URL.Path))
}

// MethodNotAllowed answers known routes called with the wrong method
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteProblem(w, NewProblem(r, http.StatusMethodNotAllowed, TypeValidation, r.Method+" is not allowed on "+r.URL.Path))
}
