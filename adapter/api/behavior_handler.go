package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/application/commands"
	"github.com/felixgeelhaar/behaviortracker/internal/behavior/application/queries"
	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
)

// BehaviorService is the part of the behavior application the API uses.
type BehaviorService interface {
	SaveBaseline(ctx context.Context, cmd commands.SaveBaselineCommand) (*domain.Baseline, error)
	Baseline(ctx context.Context, userID uuid.UUID) (*domain.Baseline, error)
	LogSession(ctx context.Context, cmd commands.LogSessionCommand) (*commands.LogSessionResult, error)
	ListSessions(ctx context.Context, userID uuid.UUID, date time.Time) ([]queries.SessionDTO, error)
	DailyAggregate(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.DailyAggregate, error)
	PeriodAggregate(ctx context.Context, userID uuid.UUID, start time.Time, days int) (*domain.DailyAggregate, error)
	Advice(ctx context.Context, userID uuid.UUID, date time.Time) (*queries.AdviceDTO, error)
	PeriodAdvice(ctx context.Context, userID uuid.UUID, start time.Time, days int) (*queries.AdviceDTO, error)
	Digest(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.DailyDigest, error)
	Progress(ctx context.Context, userID uuid.UUID) (*domain.Progress, error)
}

// BehaviorHandler handles behavior API requests.
type BehaviorHandler struct {
	service BehaviorService
	logger  *slog.Logger
}

// NewBehaviorHandler creates a new behavior handler.
func NewBehaviorHandler(service BehaviorService, logger *slog.Logger) *BehaviorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BehaviorHandler{service: service, logger: logger}
}

// GetBaseline handles GET /api/v1/users/{userID}/baseline
func (h *BehaviorHandler) GetBaseline(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	b, err := h.service.Baseline(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ToBaselineResponse(b))
}

// PutBaseline handles PUT /api/v1/users/{userID}/baseline
func (h *BehaviorHandler) PutBaseline(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req BaselineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, ErrBadRequest, "invalid JSON body")
		return
	}

	b, err := h.service.SaveBaseline(r.Context(), req.ToCommand(userID))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ToBaselineResponse(b))
}

// LogSession handles POST /api/v1/users/{userID}/sessions
func (h *BehaviorHandler) LogSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, ErrBadRequest, "invalid JSON body")
		return
	}

	result, err := h.service.LogSession(r.Context(), req.ToCommand(userID))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ToSessionResponse(result))
}

// ListSessions handles GET /api/v1/users/{userID}/days/{date}/sessions
func (h *BehaviorHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID, date, ok := h.userAndDate(w, r)
	if !ok {
		return
	}
	sessions, err := h.service.ListSessions(r.Context(), userID, date)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

// GetAggregate handles GET /api/v1/users/{userID}/days/{date}/aggregate
func (h *BehaviorHandler) GetAggregate(w http.ResponseWriter, r *http.Request) {
	userID, date, ok := h.userAndDate(w, r)
	if !ok {
		return
	}
	agg, err := h.service.DailyAggregate(r.Context(), userID, date)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ToAggregateResponse(agg))
}

// GetPeriodAggregate handles GET /api/v1/users/{userID}/periods/{date}?days=7
func (h *BehaviorHandler) GetPeriodAggregate(w http.ResponseWriter, r *http.Request) {
	userID, date, ok := h.userAndDate(w, r)
	if !ok {
		return
	}
	days, ok := periodDays(w, r)
	if !ok {
		return
	}

	agg, err := h.service.PeriodAggregate(r.Context(), userID, date, days)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ToAggregateResponse(agg))
}

// GetPeriodAdvice handles GET /api/v1/users/{userID}/periods/{date}/advice?days=7
func (h *BehaviorHandler) GetPeriodAdvice(w http.ResponseWriter, r *http.Request) {
	userID, date, ok := h.userAndDate(w, r)
	if !ok {
		return
	}
	days, ok := periodDays(w, r)
	if !ok {
		return
	}

	advice, err := h.service.PeriodAdvice(r.Context(), userID, date, days)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, advice)
}

// GetAdvice handles GET /api/v1/users/{userID}/days/{date}/advice
func (h *BehaviorHandler) GetAdvice(w http.ResponseWriter, r *http.Request) {
	userID, date, ok := h.userAndDate(w, r)
	if !ok {
		return
	}
	advice, err := h.service.Advice(r.Context(), userID, date)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, advice)
}

// GetDigest handles GET /api/v1/users/{userID}/days/{date}/digest
func (h *BehaviorHandler) GetDigest(w http.ResponseWriter, r *http.Request) {
	userID, date, ok := h.userAndDate(w, r)
	if !ok {
		return
	}
	d, err := h.service.Digest(r.Context(), userID, date)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ToDigestResponse(d))
}

// GetProgress handles GET /api/v1/users/{userID}/progress
func (h *BehaviorHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	p, err := h.service.Progress(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ToProgressResponse(p))
}

func (h *BehaviorHandler) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, ErrBadRequest, "invalid user id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *BehaviorHandler) userAndDate(w http.ResponseWriter, r *http.Request) (uuid.UUID, time.Time, bool) {
	userID, ok := h.userID(w, r)
	if !ok {
		return uuid.Nil, time.Time{}, false
	}
	date, err := time.Parse(time.DateOnly, chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, ErrBadRequest, "date must be YYYY-MM-DD")
		return uuid.Nil, time.Time{}, false
	}
	return userID, date, true
}

// periodDays reads the days query parameter, defaulting to a week.
func periodDays(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return 7, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, ErrBadRequest, "days must be a number")
		return 0, false
	}
	return n, true
}

func (h *BehaviorHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidBaseline):
		writeError(w, ErrBadRequest, err.Error())
	case domain.IsConfigurationError(err):
		writeError(w, ErrSetupIncomplete, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, ErrNotFound, "")
	case errors.Is(err, domain.ErrInvalidSession), errors.Is(err, queries.ErrInvalidPeriod):
		writeError(w, ErrBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, ErrInternalServer, "")
	}
}
