// Package inputval validates request input structs using go-playground
// validator tags. A `label` tag supplies the human-readable field name used
// in messages:
//
//	type registerInput struct {
//	    Name string `validate:"required,min=2,max=50" label:"Name"`
//	}
package inputval

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/dalemusser/bloodlink/internal/domain/models"
	"github.com/go-playground/validator/v10"
)

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
			return f.Name
		})
		_ = v.RegisterValidation("bloodgroup", func(fl validator.FieldLevel) bool {
			_, ok := models.NormalizeBloodGroup(fl.Field().String())
			return ok
		})
		_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			return models.IsValidRole(fl.Field().String())
		})
		_ = v.RegisterValidation("userstatus", func(fl validator.FieldLevel) bool {
			return models.IsValidStatus(fl.Field().String())
		})
	})
	return v
}

// FieldError is one failed rule.
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

// Result collects the failures from Validate in struct field order.
type Result struct {
	Errors []FieldError
}

func (r Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "" when valid.
func (r Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// Has reports whether any failure used the given tag.
func (r Result) Has(tag string) bool {
	for _, e := range r.Errors {
		if e.Tag == tag {
			return true
		}
	}
	return false
}

// Validate runs the struct's validate tags.
func Validate(s any) Result {
	err := instance().Struct(s)
	if err == nil {
		return Result{}
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Result{Errors: []FieldError{{Message: err.Error()}}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.StructField(),
			Tag:     fe.Tag(),
			Message: message(fe),
		})
	}
	return Result{Errors: out}
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "email":
		return "Please provide a valid email"
	case "eqfield":
		return "Passwords do not match"
	case "bloodgroup":
		return "Invalid blood group"
	case "role":
		return "Invalid role"
	case "userstatus":
		return "Invalid status"
	case "url", "http_url":
		return label + " must be a valid URL"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return label + " is invalid"
	}
}

// IsValidEmail checks a single address.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	return email != "" && instance().Var(email, "email") == nil
}

// IsValidHTTPURL accepts absolute http and https URLs.
func IsValidHTTPURL(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && instance().Var(s, "http_url") == nil
}
