package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"tuition/internal/eligibility"
	"tuition/pkg/platform/httputil"
	"tuition/pkg/requestcontext"
)

// Service defines the interface for tuition evaluation operations.
type Service interface {
	Evaluate(ctx context.Context, req eligibility.EvaluateRequest) (*eligibility.EvaluateResult, error)
	EvaluateBatch(ctx context.Context, reqs []eligibility.EvaluateRequest) ([]*eligibility.EvaluateResult, error)
	RuleNames() []string
}

// Handler wires tuition endpoints to the eligibility service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a tuition handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts tuition endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/tuition", func(r chi.Router) {
		r.Post("/evaluate", h.HandleEvaluate)
		r.Post("/evaluate/batch", h.HandleEvaluateBatch)
		r.Get("/rules", h.HandleListRules)
	})
}

// HandleEvaluate handles POST /tuition/evaluate requests.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[EvaluateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Evaluate(ctx, req.ToDomain())
	if err != nil {
		h.logger.ErrorContext(ctx, "tuition evaluation failed",
			"request_id", requestID,
			"name", req.Name,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.DebugContext(ctx, "tuition evaluation served",
		"request_id", requestID,
		"tier", result.Tier,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}

// HandleEvaluateBatch handles POST /tuition/evaluate/batch requests.
func (h *Handler) HandleEvaluateBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[BatchEvaluateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	results, err := h.service.EvaluateBatch(ctx, req.ToDomain())
	if err != nil {
		h.logger.ErrorContext(ctx, "tuition batch evaluation failed",
			"request_id", requestID,
			"count", len(req.Registrations),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.DebugContext(ctx, "tuition batch served",
		"request_id", requestID,
		"count", len(results),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromResults(results))
}

// HandleListRules handles GET /tuition/rules requests.
func (h *Handler) HandleListRules(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, &RulesResponse{Rules: h.service.RuleNames()})
}
