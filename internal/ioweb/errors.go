package ioweb

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/eufgis/fgrdb/pkg/errcode"
	"github.com/gin-gonic/gin"
	"github.com/gnames/gn"
)

// StartError is returned when the service cannot listen on its port.
func StartError(port int, err error) error {
	msg := "Cannot start REST service on port <em>%d</em>"
	vars := []any{port}
	return &gn.Error{
		Code: errcode.ServerStartError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot listen on port %d: %w", port, err),
	}
}

// BadRequestError is returned for requests that cannot be decoded.
func BadRequestError(err error) error {
	msg := "Request is malformed: %s"
	vars := []any{err.Error()}
	return &gn.Error{
		Code: errcode.InvalidRequestError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("bad request: %w", err),
	}
}

// ErrorResponse is the body of a failed request. Details carry the
// partial result of batch operations.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
	Details any    `json:"details,omitempty"`
}

var emTags = strings.NewReplacer("<em>", "", "</em>", "")

// writeError reports an error with the status of its code. Errors
// without a code are internal errors.
func writeError(c *gin.Context, err error) {
	writeErrorDetails(c, err, nil)
}

func writeErrorDetails(c *gin.Context, err error, details any) {
	gnErr, ok := err.(*gn.Error)
	if !ok {
		slog.Error("Request failed", "path", c.Request.URL.Path, "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Code:    int(errcode.UnknownError),
			Message: err.Error(),
			Details: details,
		})
		return
	}

	status := errcode.Status(gnErr.Code)
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "path", c.Request.URL.Path, "error", err)
	}
	msg := emTags.Replace(fmt.Sprintf(gnErr.Msg, gnErr.Vars...))
	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:    int(gnErr.Code),
		Message: msg,
		Details: details,
	})
}
