package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"treepress/internal/models"
)

// pageQuery is the validated form of the page and size query parameters.
// Size is capped at 100.
type pageQuery struct {
	Page int `json:"page" validate:"gte=1"`
	Size int `json:"size" validate:"gte=1,lte=100"`
}

// annotationQuery is the validated form of the annotations query.
type annotationQuery struct {
	Pattern string `json:"pattern" validate:"max=256"`
}

// queryError reports invalid query parameters by field name.
type queryError struct {
	Fields map[string]string
}

func (e *queryError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for k, v := range e.Fields {
		parts = append(parts, k+" "+v)
	}
	return "invalid query: " + strings.Join(parts, ", ")
}

// newValidator returns a validator that reports fields by their JSON name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateStruct runs v over s and converts failures to a queryError.
func validateStruct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = friendlyMessage(fe)
	}
	return &queryError{Fields: fields}
}

func friendlyMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "max":
		return fmt.Sprintf("must not exceed %s characters", fe.Param())
	default:
		return "is invalid"
	}
}

// parsePageQuery reads page and size from the request, applying defaults
// for absent values.
func parsePageQuery(v *validator.Validate, r *http.Request) (pageQuery, error) {
	q := pageQuery{Page: models.DefaultPage, Size: models.DefaultSize}
	fields := map[string]string{}

	for name, dst := range map[string]*int{"page": &q.Page, "size": &q.Size} {
		raw := strings.TrimSpace(r.URL.Query().Get(name))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields[name] = "must be an integer"
			continue
		}
		*dst = n
	}
	if len(fields) > 0 {
		return pageQuery{}, &queryError{Fields: fields}
	}

	if err := validateStruct(v, q); err != nil {
		return pageQuery{}, err
	}
	return q, nil
}
