package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey contextKey = "user_id"
	EmailKey  contextKey = "user_email"
)

type authError struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

// Middleware authenticates requests with a Bearer access token and stores the
// caller's identity on the request context. Paths matched by AuthSkipper pass
// through untouched.
func Middleware(issuer *TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if AuthSkipper(c) {
				return next(c)
			}

			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return c.JSON(http.StatusUnauthorized, authError{
					ErrorCode: "missing_token",
					Message:   "Authorization header is required",
				})
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return c.JSON(http.StatusUnauthorized, authError{
					ErrorCode: "invalid_token",
					Message:   "Authorization header must be a Bearer token",
				})
			}

			claims, err := issuer.Parse(parts[1])
			if err != nil {
				return c.JSON(http.StatusUnauthorized, authError{
					ErrorCode: "invalid_token",
					Message:   "Token is expired or invalid",
				})
			}

			userID, _ := uuid.Parse(claims.Subject)
			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, UserIDKey, userID)
			ctx = context.WithValue(ctx, EmailKey, claims.Email)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// UserIDFromContext returns the authenticated user id, or uuid.Nil when the
// request was not authenticated.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	uid, _ := ctx.Value(UserIDKey).(uuid.UUID)
	return uid
}

func EmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(EmailKey).(string)
	return email
}
