package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luct/reporting/internal/app/models/dto"
	"github.com/luct/reporting/internal/pkg/apperrors"
	"github.com/luct/reporting/internal/pkg/logger"
)

// HandleAPIError maps an error onto a status code and the standard error envelope.
// Internal failures are logged and answered with a generic message.
func HandleAPIError(c *gin.Context, err error) {
	switch apperrors.Kind(err) {
	case apperrors.KindValidation:
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, apperrors.Message(err)).
			WithFields(apperrors.FieldErrors(err))
		c.JSON(http.StatusBadRequest, dto.APIResponse{Error: detail})
	case apperrors.KindForbidden:
		c.JSON(http.StatusForbidden, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeForbidden, apperrors.Message(err)),
		})
	case apperrors.KindNotFound:
		c.JSON(http.StatusNotFound, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, apperrors.Message(err)),
		})
	case apperrors.KindConflict:
		c.JSON(http.StatusConflict, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, apperrors.Message(err)),
		})
	case apperrors.KindAuth:
		code := dto.ErrorCodeInvalidCredentials
		message := "Invalid credentials"
		switch {
		case apperrors.Is(err, apperrors.ErrTokenExpired):
			code, message = dto.ErrorCodeExpiredToken, "Token expired"
		case apperrors.Is(err, apperrors.ErrTokenInvalid):
			code, message = dto.ErrorCodeInvalidToken, "Invalid token"
		}
		c.JSON(http.StatusUnauthorized, dto.APIResponse{Error: dto.NewErrorDetail(code, message)})
	default:
		logger.Error().Err(err).Str("path", c.FullPath()).Str("method", c.Request.Method).Msg("Unhandled error")
		c.JSON(http.StatusInternalServerError, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error"),
		})
	}
}
