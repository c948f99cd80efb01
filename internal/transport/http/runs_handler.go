package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/semaphore"

	"retailflow/internal/history"
	"retailflow/internal/middleware"
	"retailflow/internal/operations"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// RunsHandler handles pipeline run requests
type RunsHandler struct {
	runner  PipelineRunner
	history RunHistory
	active  *semaphore.Weighted
	limiter *middleware.RateLimiter
	logger  *slog.Logger
}

// NewRunsHandler creates a runs handler. history may be nil when run
// history is disabled; limiter may be nil to disable rate limiting.
func NewRunsHandler(runner PipelineRunner, hist RunHistory, limiter *middleware.RateLimiter, logger *slog.Logger) *RunsHandler {
	if runner == nil {
		panic("runner cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RunsHandler{
		runner:  runner,
		history: hist,
		active:  semaphore.NewWeighted(1),
		limiter: limiter,
		logger:  logger.With(slog.String("handler", "runs")),
	}
}

// Routes sets up the run routes
func (h *RunsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		if h.limiter != nil {
			r.Use(h.limiter.Handler)
		}
		r.Use(middleware.ContentTypeValidator("application/json"))
		r.Post("/", h.StartRun)
	})
	r.Get("/", h.ListRuns)
	r.Get("/{id}", h.GetRun)
	return r
}

// RunRequest is the optional body of POST /api/pipeline/runs
type RunRequest struct {
	SkipValidation bool   `json:"skip_validation"`
	RunID          string `json:"run_id,omitempty"`
}

// Bind implements the render.Binder interface
func (r *RunRequest) Bind(*http.Request) error {
	if len(r.RunID) > 128 {
		return errors.New("run_id must be at most 128 characters")
	}
	return nil
}

// StartRun handles POST /api/pipeline/runs. The run executes synchronously
// and the structured result is returned: 200 when it succeeded, 422 when it
// ended in the failed state.
func (h *RunsHandler) StartRun(w http.ResponseWriter, r *http.Request) {
	req := &RunRequest{}
	if r.ContentLength != 0 {
		if err := render.Bind(r, req); err != nil && !errors.Is(err, io.EOF) {
			render.Render(w, r, middleware.NewProblem(r, http.StatusBadRequest, middleware.TypeValidation, err.Error()))
			return
		}
	}

	if !h.active.TryAcquire(1) {
		h.logger.WarnContext(r.Context(), "run_rejected_already_running")
		render.Render(w, r, middleware.NewProblem(r, http.StatusConflict, middleware.TypeRunInProgress,
			"a pipeline run is already in progress"))
		return
	}
	defer h.active.Release(1)

	// a disconnecting client must not abort a run halfway through promotion
	ctx := context.WithoutCancel(r.Context())
	res := h.runner.RunFullPipeline(ctx, operations.RunOptions{
		RunID:          req.RunID,
		SkipValidation: req.SkipValidation,
	})

	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnprocessableEntity
	}
	render.Status(r, status)
	render.JSON(w, r, res)
}

// ListRuns handles GET /api/pipeline/runs
func (h *RunsHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.historyDisabled(w, r)
		return
	}
	limit, ok := middleware.QueryInt(w, r, "limit", 1, maxListLimit, defaultListLimit)
	if !ok {
		return
	}

	runs, err := h.history.List(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "run_history_list_failed", slog.String("error", err.Error()))
		render.Render(w, r, middleware.NewProblem(r, http.StatusInternalServerError, middleware.TypeInternal, "failed to read run history"))
		return
	}
	if runs == nil {
		runs = []history.RunRecord{}
	}
	render.JSON(w, r, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

// ActiveRunResponse describes a run that is still executing
type ActiveRunResponse struct {
	ID     string                            `json:"id"`
	Active bool                              `json:"active"`
	State  operations.RunState               `json:"state"`
	Stages map[string]operations.StageStatus `json:"stages"`
}

// GetRun handles GET /api/pipeline/runs/{id}
func (h *RunsHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if run, ok := h.runner.ActiveRun(id); ok {
		resp := ActiveRunResponse{
			ID:     id,
			Active: true,
			State:  run.CurrentState(),
			Stages: make(map[string]operations.StageStatus),
		}
		for _, stage := range []string{
			operations.StageIDInputs,
			operations.StageIDCleaning,
			operations.StageIDValidation,
			operations.StageIDPromotion,
			operations.StageIDReport,
		} {
			if s := run.GetStage(stage); s != nil {
				resp.Stages[stage] = s.GetStatus()
			}
		}
		render.JSON(w, r, resp)
		return
	}

	if h.history == nil {
		h.historyDisabled(w, r)
		return
	}
	rec, err := h.history.Get(r.Context(), id)
	if errors.Is(err, history.ErrNotFound) {
		render.Render(w, r, middleware.NewProblem(r, http.StatusNotFound, middleware.TypeNotFound, "run "+id+" not found"))
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "run_history_get_failed",
			slog.String("run_id", id),
			slog.String("error", err.Error()))
		render.Render(w, r, middleware.NewProblem(r, http.StatusInternalServerError, middleware.TypeInternal, "failed to read run history"))
		return
	}
	render.JSON(w, r, rec)
}

func (h *RunsHandler) historyDisabled(w http.ResponseWriter, r *http.Request) {
	render.Render(w, r, middleware.NewProblem(r, http.StatusServiceUnavailable, middleware.TypeUnavailable, "run history is disabled"))
}
