// Package validator provides validation infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Enumerations checked by the custom tags registered in New.
var (
	Qualifications = []string{"cold", "warm", "hot"}
	LeadStatuses   = []string{"new", "contacted", "qualified", "converted", "lost"}
)

// Validator wraps the go-playground validator for structured validation.
type Validator struct {
	v *validator.Validate
}

// New creates a new Validator instance with the CRM enum tags registered.
// Field errors report JSON names instead of Go field names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	_ = v.RegisterValidation("qualification", oneOfFunc(Qualifications))
	_ = v.RegisterValidation("leadstatus", oneOfFunc(LeadStatuses))
	return &Validator{v: v}
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// Var validates a single variable against a tag.
func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// RegisterValidation registers a custom validation function.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}

// FieldViolation is one field-level validation problem, keyed by JSON name.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Violations converts an error returned by Struct into field violations.
// messages overrides the text for a field; other fields get a message derived
// from the failed tag. Each field is reported once.
func Violations(err error, messages map[string]string) []FieldViolation {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldViolation{{Field: "", Message: "Invalid value"}}
	}

	seen := make(map[string]bool, len(verrs))
	out := make([]FieldViolation, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if seen[field] {
			continue
		}
		seen[field] = true
		msg, ok := messages[field]
		if !ok {
			msg = tagMessage(fe)
		}
		out = append(out, FieldViolation{Field: field, Message: msg})
	}
	return out
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Invalid email address"
	case "uuid":
		return "Invalid uuid"
	case "url":
		return "Invalid url"
	case "oneof":
		return fe.Field() + " must be one of " + fe.Param()
	case "qualification":
		return "Qualification must be one of " + strings.Join(Qualifications, ", ")
	case "leadstatus":
		return "Status must be one of " + strings.Join(LeadStatuses, ", ")
	case "min", "max", "gte", "lte":
		return fe.Field() + " is out of range"
	default:
		return "Invalid value"
	}
}

// IsQualification reports whether s is a known qualification tier.
func IsQualification(s string) bool { return contains(Qualifications, s) }

// IsLeadStatus reports whether s is a known lead status.
func IsLeadStatus(s string) bool { return contains(LeadStatuses, s) }

func oneOfFunc(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return contains(allowed, fl.Field().String())
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}
