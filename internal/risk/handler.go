package risk

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	engine *Engine
}

func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/risk/predict", h.Predict)
}

type apiError struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

// Predict scores a payload synchronously. Payload problems are soft: the
// endpoint answers 200 with a needs_input result, never 422. Only a body that
// cannot be parsed at all is a client error.
func (h *Handler) Predict(c echo.Context) error {
	payload, err := DecodeLabPayload(c.Request().Body)
	if err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			// A non-numeric value for a known field is a payload problem,
			// reported in the same shape as other validation failures.
			res := h.engine.needsInput("low", ErrCodeInvalidPayload,
				"Payload contains non-numeric values", nil,
				[]InvalidField{{Field: typeErr.Field, Reason: ReasonMustBeNumber}})
			return c.JSON(http.StatusOK, res)
		}
		return c.JSON(http.StatusBadRequest, apiError{
			ErrorCode: "malformed_body",
			Message:   err.Error(),
		})
	}

	res, err := h.engine.Predict(payload)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}
