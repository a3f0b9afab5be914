package http

import (
	"errors"
	"math"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Code    string       `json:"code,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

var reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()

	// report json names, not Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	// decimals validate as float64 so gt/gte/lte/dec2 apply
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// public ids = 32-char lowercase hex
	_ = v.RegisterValidation("hex32", func(fl validator.FieldLevel) bool {
		return reHex32.MatchString(fl.Field().String())
	})
	// max 2 decimal places
	_ = v.RegisterValidation("dec2", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return math.Abs(f-(math.Round(f*100)/100)) < 1e-9
	})

	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

// fieldMessages renders a failed tag; param is the tag argument.
var fieldMessages = map[string]func(param string) string{
	"required": func(string) string { return "is required" },
	"hex32":    func(string) string { return "must be 32-char lowercase hex" },
	"dec2":     func(string) string { return "must have at most 2 decimal places" },
	"numeric":  func(string) string { return "must be a number" },
	"gt":       func(p string) string { return "must be greater than " + p },
	"gte":      func(p string) string { return "must be greater than or equal to " + p },
	"lte":      func(p string) string { return "must be less than or equal to " + p },
	"max":      func(p string) string { return "must be at most " + p + " characters" },
	"oneof":    func(p string) string { return "must be one of: " + p },
}

// ToFieldErrors flattens validator output into the API's details list.
func ToFieldErrors(err error) []FieldError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		msg := e.Tag() + " validation failed"
		if render, ok := fieldMessages[e.Tag()]; ok {
			msg = render(e.Param())
		}
		out = append(out, FieldError{Field: e.Field(), Message: msg})
	}
	return out
}
