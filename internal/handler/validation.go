package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"visiongate/internal/domain"
)

var registerOnce sync.Once

// RegisterValidators installs the custom rules used by request bindings
// on gin's shared validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("notblank", validators.NotBlank)
		v.RegisterStructValidation(captionRequestStructLevel, domain.CaptionRequest{})
	})
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// captionRequestStructLevel requires an image in one of the two accepted shapes.
func captionRequestStructLevel(sl validator.StructLevel) {
	req := sl.Current().Interface().(domain.CaptionRequest)
	if req.Image == "" && req.Body == nil {
		sl.ReportError(req.Image, "image", "Image", "required", "")
	}
}

// bindStatus maps a binding error to its response status and body.
func bindStatus(err error) (int, map[string]any) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge, map[string]any{"error": "request body too large"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fieldPath(fe)] = fe.Tag()
		}
		return http.StatusUnprocessableEntity, map[string]any{
			"error":  "validation failed",
			"fields": fields,
		}
	}

	return http.StatusBadRequest, map[string]any{"error": "malformed JSON body"}
}

// fieldPath is the JSON path of the failing field without the root struct,
// e.g. "body.image".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
