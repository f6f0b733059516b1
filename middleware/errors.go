package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	pkgzerolog "github.com/duynhne/pkg/logger/zerolog"
	"github.com/gin-gonic/gin"
)

// DefaultErrorMessage is shown for any error that does not carry its own.
const DefaultErrorMessage = "Something went wrong!"

// AppError is an error with the status code and message to show the user.
type AppError struct {
	StatusCode int
	Message    string
}

// NewAppError returns an AppError.
func NewAppError(status int, message string) *AppError {
	return &AppError{StatusCode: status, Message: message}
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// ErrNotFound is raised for every unmatched route.
var ErrNotFound = NewAppError(http.StatusNotFound, "Page Not Found")

// NotFound is the catch-all handler for unmatched routes.
func NotFound(c *gin.Context) {
	_ = c.Error(ErrNotFound)
}

// Resolve maps any error to the status and message shown to the user.
// Internal details never leave the process.
func Resolve(err error) (int, string) {
	var appErr *AppError
	switch {
	case errors.As(err, &appErr):
		status, msg := appErr.StatusCode, appErr.Message
		if status == 0 {
			status = http.StatusInternalServerError
		}
		if msg == "" {
			msg = DefaultErrorMessage
		}
		return status, msg
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "The request took too long, please try again."
	default:
		return http.StatusInternalServerError, DefaultErrorMessage
	}
}

// ErrorRenderer writes the error page.
type ErrorRenderer func(c *gin.Context, status int, message string)

// ErrorHandler is the terminal stage of the pipeline: it renders the last
// error recorded on the context, and recovers panics into a 500 page.
func ErrorHandler(render ErrorRenderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger := pkgzerolog.FromContext(c.Request.Context())
				logger.Error().Interface("panic", rec).Msg("Recovered from panic")
				if !c.Writer.Written() {
					render(c, http.StatusInternalServerError, DefaultErrorMessage)
				}
				c.Abort()
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, msg := Resolve(err)
		if status >= http.StatusInternalServerError {
			logger := pkgzerolog.FromContext(c.Request.Context())
			logger.Error().Err(err).Int("status", status).Msg("Request failed")
		}
		render(c, status, msg)
	}
}
