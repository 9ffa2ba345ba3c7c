package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type ResortsRequest struct {
	Sort string `query:"sort" default:"name" validate:"oneof=name country"`
}

type ConditionsRequest struct {
	Resort string `query:"resort" validate:"required"`
	Start  string `query:"start" validate:"omitempty,datetime=2006-01-02"`
	End    string `query:"end" validate:"omitempty,datetime=2006-01-02"`
}

type CompareRequest struct {
	Resorts []string `query:"resort" validate:"max=20,dive,required"`
	Start   string   `query:"start" validate:"omitempty,datetime=2006-01-02"`
	End     string   `query:"end" validate:"omitempty,datetime=2006-01-02"`
}

type ValidationError struct {
	Code    string                 `json:"code"`
	Field   string                 `json:"field,omitempty"`
	Message string                 `json:"message"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

// RequestError carries every problem found in a request's query string.
type RequestError struct {
	Errors []ValidationError
}

func (e *RequestError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, v := range e.Errors {
		msgs = append(msgs, v.Message)
	}
	return "invalid request: " + strings.Join(msgs, "; ")
}

// parseQuery binds the query string into req, applies defaults and validates it.
func parseQuery(c *fiber.Ctx, req interface{}) error {
	if err := c.QueryParser(req); err != nil {
		return toRequestError(err)
	}

	if err := defaults.Set(req); err != nil {
		return toRequestError(err)
	}

	if err := validate.StructCtx(c.UserContext(), req); err != nil {
		return toRequestError(err)
	}

	return nil
}

func toRequestError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		errs := make([]ValidationError, 0, len(validationErrors))
		for _, fe := range validationErrors {
			errs = append(errs, ValidationError{
				Code:    "ERR_" + strings.ToUpper(fe.Tag()),
				Field:   fe.Field(),
				Message: errorMessage(fe),
				Params:  errorParams(fe),
			})
		}
		return &RequestError{Errors: errs}
	}

	return &RequestError{Errors: []ValidationError{{
		Code:    "ERR_UNKNOWN",
		Message: err.Error(),
	}}}
}

func errorMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted YYYY-MM-DD", field)
	case "max":
		return fmt.Sprintf("%s accepts at most %s values", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

func errorParams(fe validator.FieldError) map[string]interface{} {
	switch fe.Tag() {
	case "max":
		return map[string]interface{}{"max": fe.Param()}
	case "datetime":
		return map[string]interface{}{"layout": fe.Param()}
	case "oneof":
		return map[string]interface{}{"options": strings.Split(fe.Param(), " ")}
	}
	return nil
}
