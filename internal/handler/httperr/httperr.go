package httperr

import (
	"log/slog"
	"net/http"

	"smartpark/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status}
	resp.Error.Code = CodeForStatus(status)
	resp.Error.Message = msg
	resp.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

// AbortWithKind renders a classified use case error. Unclassified errors are
// logged with their stack and rendered without detail.
func AbortWithKind(c *gin.Context, err error) {
	kind := errs.KindOf(err)
	status := StatusForKind(kind)

	msg := err.Error()
	switch kind {
	case errs.KindInternal:
		slog.Error("unhandled error",
			"path", c.FullPath(),
			"error", err.Error(),
			"stack", errs.ExtractStackLines(err, 20),
		)
		msg = "Internal server error"
	case errs.KindExternalDependency:
		slog.Warn("external dependency failed", "path", c.FullPath(), "error", err.Error())
		msg = "An external service is unavailable, please retry"
	}
	AbortWithError(c, status, err, msg, nil)
}

func StatusForKind(kind errs.Kind) int {
	switch kind {
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindInvalidInput:
		return http.StatusBadRequest
	case errs.KindConflict:
		return http.StatusConflict
	case errs.KindForbidden:
		return http.StatusForbidden
	case errs.KindExternalDependency:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func CodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return string(errs.KindInvalidInput)
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return string(errs.KindForbidden)
	case http.StatusNotFound:
		return string(errs.KindNotFound)
	case http.StatusConflict:
		return string(errs.KindConflict)
	case http.StatusBadGateway:
		return string(errs.KindExternalDependency)
	default:
		return string(errs.KindInternal)
	}
}
