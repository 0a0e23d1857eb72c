package server

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// RequestValidator adapts go-playground validator to echo.Validator.
type RequestValidator struct {
	validator *validator.Validate
}

var _ echo.Validator = (*RequestValidator)(nil)

func NewValidator() *RequestValidator {
	validate := validator.New()

	// Report JSON field names in errors
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{validator: validate}
}

func (v *RequestValidator) Validate(i any) error {
	if err := v.validator.Struct(i); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, fe.Field()+" is "+fe.Tag())
			}
		}
		if len(fields) == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, strings.Join(fields, ", "))
	}
	return nil
}
