package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/immxrtalbeast/swarm_chat/internal/service"
)

// respondError maps the service error taxonomy onto HTTP statuses.
// Internal and transient failures surface a generic body so store details
// never leak to clients.
func respondError(ctx *gin.Context, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": service.CodeInternal, "error": "internal error"})
		return
	}

	status := http.StatusInternalServerError
	switch svcErr.Kind {
	case service.KindValidation:
		status = http.StatusBadRequest
	case service.KindConflict:
		status = http.StatusConflict
	case service.KindNotFound:
		status = http.StatusNotFound
	case service.KindTransient:
		status = http.StatusServiceUnavailable
	}

	body := gin.H{"code": svcErr.Code, "error": svcErr.Error()}
	if svcErr.Field != "" {
		body["field"] = svcErr.Field
	}
	if svcErr.Kind == service.KindTransient || svcErr.Kind == service.KindInternal {
		body["error"] = "internal error"
	}
	ctx.JSON(status, body)
}

// respondBindingError reports field-level detail for request body
// validation failures.
func respondBindingError(ctx *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make(map[string]string, len(validationErrs))
		for _, fieldErr := range validationErrs {
			fields[fieldErr.Field()] = fieldErr.Tag()
		}
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":   service.CodeValidationFailed,
			"error":  "invalid request body",
			"fields": fields,
		})
		return
	}
	ctx.JSON(http.StatusBadRequest, gin.H{
		"code":  service.CodeValidationFailed,
		"error": "invalid request body",
	})
}
