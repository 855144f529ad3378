package user

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/verae/ironrisk/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.GET("/users/me", h.GetMe)
	api.PATCH("/users/me", h.UpdateMe)
}

type apiError struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

type credentialsRequest struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Profile  *Profile `json:"profile,omitempty"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        *User  `json:"user"`
}

func (h *Handler) Register(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apiError{ErrorCode: "malformed_body", Message: err.Error()})
	}

	u, err := h.svc.Register(c.Request().Context(), req.Email, req.Password, req.Profile)
	if errors.Is(err, ErrEmailTaken) {
		return c.JSON(http.StatusConflict, apiError{
			ErrorCode: "email_taken",
			Message:   "Email is already registered",
		})
	}
	if err != nil {
		return c.JSON(http.StatusBadRequest, apiError{ErrorCode: "invalid_request", Message: err.Error()})
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) Login(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apiError{ErrorCode: "malformed_body", Message: err.Error()})
	}

	u, token, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if errors.Is(err, ErrBadCredentials) {
		return c.JSON(http.StatusUnauthorized, apiError{
			ErrorCode: "invalid_credentials",
			Message:   "Email or password is incorrect",
		})
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        u,
	})
}

func (h *Handler) GetMe(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	u, err := h.svc.Get(c.Request().Context(), userID)
	if errors.Is(err, ErrNotFound) {
		return c.JSON(http.StatusNotFound, apiError{ErrorCode: "user_not_found", Message: "User does not exist"})
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) UpdateMe(c echo.Context) error {
	var profile Profile
	if err := c.Bind(&profile); err != nil {
		return c.JSON(http.StatusBadRequest, apiError{ErrorCode: "malformed_body", Message: err.Error()})
	}

	userID := auth.UserIDFromContext(c.Request().Context())
	u, err := h.svc.UpdateProfile(c.Request().Context(), userID, &profile)
	if errors.Is(err, ErrNotFound) {
		return c.JSON(http.StatusNotFound, apiError{ErrorCode: "user_not_found", Message: "User does not exist"})
	}
	if err != nil {
		return c.JSON(http.StatusBadRequest, apiError{ErrorCode: "invalid_profile", Message: err.Error()})
	}
	return c.JSON(http.StatusOK, u)
}
