package v1

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// render executes a named view with the request locals merged in.
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	view := gin.H{
		currUserKey: currentUser(c),
		successKey:  c.GetStringSlice(successKey),
		errorKey:    c.GetStringSlice(errorKey),
	}
	for k, v := range data {
		view[k] = v
	}
	c.HTML(status, name, view)
}

// RenderError is the error page renderer for middleware.ErrorHandler.
func (h *Handler) RenderError(c *gin.Context, status int, message string) {
	h.render(c, status, "error", gin.H{"message": message})
}

// validationMessage turns binding errors into one readable sentence.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid form data"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email", field))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid URL", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, ", ")
}
