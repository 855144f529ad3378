package analysis

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/verae/ironrisk/internal/platform/auth"
	"github.com/verae/ironrisk/internal/platform/queue"
	"github.com/verae/ironrisk/internal/risk"
	"github.com/verae/ironrisk/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/analyses", h.CreateAnalysis)
	api.GET("/analyses", h.ListAnalyses)
	api.GET("/analyses/:id", h.GetAnalysis)
	api.GET("/analyses/:id/result", h.GetAnalysisResult)
}

type apiError struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

// statusResponse is the shape shared by create, status and list reads.
type statusResponse struct {
	AnalysisID        uuid.UUID      `json:"analysis_id"`
	UserID            uuid.UUID      `json:"user_id"`
	Status            Status         `json:"status"`
	ProgressStage     string         `json:"progress_stage"`
	ErrorCode         *string        `json:"error_code,omitempty"`
	FailureDiagnostic *string        `json:"failure_diagnostic,omitempty"`
	Job               *queue.JobInfo `json:"job,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

func toStatusResponse(a *Analysis, job *queue.JobInfo) statusResponse {
	return statusResponse{
		AnalysisID:        a.ID,
		UserID:            a.UserID,
		Status:            a.Status,
		ProgressStage:     a.ProgressStage,
		ErrorCode:         a.ErrorCode,
		FailureDiagnostic: a.ErrorMessage,
		Job:               job,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

// resultResponse flattens the stored assessment into the same shape the
// synchronous predict endpoint returns, with analysis metadata alongside.
// The assessment's own status field (ok or needs_input) is the one clients
// read; the record itself is always completed here.
type resultResponse struct {
	*risk.Result
	AnalysisID  uuid.UUID `json:"analysis_id"`
	CreatedAt   time.Time `json:"created_at"`
	CompletedAt time.Time `json:"completed_at"`
}

type listResponse struct {
	Analyses []statusResponse `json:"analyses"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
	HasMore  bool             `json:"has_more"`
}

// createRequest carries upload provenance alongside the lab values extracted
// from the document. Both parts are optional; an absent lab section fails the
// analysis later with missing_lab_payload rather than rejecting the create.
type createRequest struct {
	Upload *Upload          `json:"upload"`
	Lab    *risk.LabPayload `json:"lab"`
}

func (h *Handler) CreateAnalysis(c echo.Context) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	var req createRequest
	if err := dec.Decode(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apiError{
			ErrorCode: "malformed_body",
			Message:   err.Error(),
		})
	}

	userID := auth.UserIDFromContext(c.Request().Context())
	a, job, err := h.svc.Create(c.Request().Context(), userID, req.Upload, req.Lab)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusAccepted, toStatusResponse(a, &job))
}

func (h *Handler) GetAnalysis(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, apiError{
			ErrorCode: "analysis_not_found",
			Message:   "Analysis does not exist",
		})
	}

	userID := auth.UserIDFromContext(c.Request().Context())
	a, err := h.svc.GetStatus(c.Request().Context(), id, userID)
	if errors.Is(err, ErrNotFound) {
		return c.JSON(http.StatusNotFound, apiError{
			ErrorCode: "analysis_not_found",
			Message:   "Analysis does not exist",
		})
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toStatusResponse(a, nil))
}

func (h *Handler) GetAnalysisResult(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, apiError{
			ErrorCode: "analysis_not_found",
			Message:   "Analysis does not exist",
		})
	}

	userID := auth.UserIDFromContext(c.Request().Context())
	a, err := h.svc.GetResult(c.Request().Context(), id, userID)
	if errors.Is(err, ErrNotFound) {
		return c.JSON(http.StatusNotFound, apiError{
			ErrorCode: "analysis_not_found",
			Message:   "Analysis does not exist",
		})
	}
	if errors.Is(err, ErrNotCompleted) {
		return c.JSON(http.StatusConflict, apiError{
			ErrorCode: "analysis_not_completed",
			Message:   "Analysis has not completed yet",
		})
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, resultResponse{
		Result:      a.Result,
		AnalysisID:  a.ID,
		CreatedAt:   a.CreatedAt,
		CompletedAt: a.UpdatedAt,
	})
}

func (h *Handler) ListAnalyses(c echo.Context) error {
	pg := pagination.FromContext(c)
	userID := auth.UserIDFromContext(c.Request().Context())

	items, total, err := h.svc.List(c.Request().Context(), userID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	out := make([]statusResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toStatusResponse(a, nil))
	}
	return c.JSON(http.StatusOK, listResponse{
		Analyses: out,
		Total:    total,
		Limit:    pg.Limit,
		Offset:   pg.Offset,
		HasMore:  pg.HasNext(total),
	})
}
