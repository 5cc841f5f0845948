package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Abdulhamidsa/BimCall-sub002/internal/apperrors"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/dto"
	"github.com/Abdulhamidsa/BimCall-sub002/internal/middleware"
)

// respondWithError maps a service error onto a status code. Decision errors
// carry their message to the caller; store failures are reported as retryable
// without internals.
func respondWithError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, apperrors.ErrPersistence):
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: fallback + ", please retry", Retryable: true})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		logger.Warn("Forbidden", slog.String("error", err.Error()))
		c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: forbiddenMessage(err)})
	case errors.Is(err, apperrors.ErrAlreadyClosed), errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Conflict", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrInvalidTarget), errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Rejected request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.As(err, &appErr) && appErr.Code >= 400 && appErr.Code < 500:
		logger.Warn(appErr.Message, slog.String("error", err.Error()))
		c.JSON(appErr.Code, dto.ErrorResponse{Error: appErr.Message})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: fallback})
	}
}

// forbiddenMessage returns the service's explanation without the sentinel prefix.
// A bare sentinel, or any other wrapping, yields a generic message.
func forbiddenMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), apperrors.ErrForbidden.Error()+": ")
	if msg == err.Error() || msg == "" {
		return "Forbidden"
	}
	return msg
}

// requireUserID reads the authenticated user or writes 401.
func requireUserID(c *gin.Context, logger *slog.Logger) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return "", false
	}
	return userID, true
}
