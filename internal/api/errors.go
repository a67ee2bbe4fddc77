package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"catalog-service/internal/apperr"
	"catalog-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

func init() {
	// Report request fields by their JSON names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, key := range []string{"json", "form"} {
				if tag := strings.SplitN(f.Tag.Get(key), ",", 2)[0]; tag != "" && tag != "-" {
					return tag
				}
			}
			return f.Name
		})
	}
}

type errorResponse struct {
	Error   apperr.Code       `json:"error"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// respondError renders err with the status of its code. Non-public errors
// answer with a generic message and are logged.
func respondError(c *gin.Context, err error) {
	typed := apperr.As(err)
	if typed == nil {
		typed = apperr.Wrap(apperr.CodeInternal, err, "unexpected error")
	}

	meta := apperr.MetadataFor(typed.Code())
	message := typed.Message()
	if !meta.Public || message == "" {
		message = meta.PublicMessage
	}
	if meta.HTTPStatus >= 500 {
		util.GetLogger().Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("code", string(typed.Code())),
			zap.Error(err))
	}

	c.AbortWithStatusJSON(meta.HTTPStatus, errorResponse{Error: typed.Code(), Message: message})
}

// respondBindError renders request decoding and validation failures
func respondBindError(c *gin.Context, err error) {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		details := make(map[string]string, len(errs))
		for _, fe := range errs {
			details[fe.Field()] = validationMessage(fe)
		}
		c.AbortWithStatusJSON(apperr.MetadataFor(apperr.CodeValidation).HTTPStatus, errorResponse{
			Error:   apperr.CodeValidation,
			Message: "validation failed",
			Details: details,
		})
		return
	}
	respondError(c, apperr.Wrap(apperr.CodeValidation, err, "invalid request: "+err.Error()))
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	}
	return "is invalid"
}
