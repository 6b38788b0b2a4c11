package api

import (
	"errors"
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/kotche/notekeeper/infrastructure/logger"
	"github.com/kotche/notekeeper/internal/model"
	"net/http"
	"strings"
)

const (
	detailNoteNotFound    = "Note not found"
	detailForbidden       = "Request forbidden -- authorization will not help"
	detailBadCredentials  = "Incorrect username or password"
	detailUnauthenticated = "Could not validate credentials"
	detailNotAuthorized   = "Not authenticated"
	detailTooManyRequests = "Too many requests"
	detailInternal        = "internal error"
	detailMalformedBody   = "malformed request body"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

func abortWithDetail(c *gin.Context, status int, detail string) {
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(status, errorResponse{Detail: detail})
}

// writeError maps service errors to responses. Unknown errors are logged and
// reported without their text.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrNoteNotFound):
		abortWithDetail(c, http.StatusNotFound, detailNoteNotFound)
	case errors.Is(err, model.ErrForbidden):
		abortWithDetail(c, http.StatusForbidden, detailForbidden)
	case errors.Is(err, model.ErrInvalidCredentials):
		abortWithDetail(c, http.StatusBadRequest, detailBadCredentials)
	case errors.Is(err, model.ErrUnauthenticated):
		abortWithDetail(c, http.StatusUnauthorized, detailUnauthenticated)
	default:
		logger.From(c.Request.Context()).WithError(err).Errorf("%s %s failed", c.Request.Method, c.FullPath())
		abortWithDetail(c, http.StatusInternalServerError, detailInternal)
	}
}

// writeValidationError reports binding failures per field without exposing
// Go type names.
func writeValidationError(c *gin.Context, err error) {
	abortWithDetail(c, http.StatusUnprocessableEntity, validationDetail(err))
}

func validationDetail(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return detailMalformedBody
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, strings.ToLower(fe.Field())+": "+fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "max":
		return fmt.Sprintf("ensure this value has at most %s characters", fe.Param())
	default:
		return "invalid value"
	}
}
