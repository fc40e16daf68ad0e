// Package validation turns raw lead payloads into canonical drafts.
package validation

import (
	"bytes"
	"encoding/json"
	"strings"

	"nuvra_crm_backend/internal/leads/domain"
	"nuvra_crm_backend/platform/apperr"
	"nuvra_crm_backend/platform/phone"
	"nuvra_crm_backend/platform/sanitize"
	"nuvra_crm_backend/platform/validator"

	"github.com/google/uuid"
)

const msgInvalidLead = "Invalid lead data"

// FieldViolation is one field-level schema problem.
type FieldViolation = validator.FieldViolation

// input mirrors the accepted lead payload after type checks.
type input struct {
	Name          string         `json:"name" validate:"required,min=1"`
	Email         string         `json:"email" validate:"required,email"`
	Phone         string         `json:"phone"`
	Company       string         `json:"company"`
	Origin        string         `json:"origin"`
	Metadata      map[string]any `json:"metadata"`
	Qualification string         `json:"qualification" validate:"omitempty,qualification"`
	Status        string         `json:"status" validate:"omitempty,leadstatus"`
	Value         float64        `json:"value"`
	Notes         string         `json:"notes"`
	ProductID     string         `json:"product_id" validate:"omitempty,uuid"`
}

// fieldDecoders decodes each known field on its own so that a type mismatch is
// reported against that field instead of aborting the whole payload.
var fieldDecoders = []struct {
	name     string
	nullable bool
	expect   string
	decode   func(in *input, raw json.RawMessage) error
}{
	{"name", false, "string", func(in *input, raw json.RawMessage) error { return json.Unmarshal(raw, &in.Name) }},
	{"email", false, "string", func(in *input, raw json.RawMessage) error { return json.Unmarshal(raw, &in.Email) }},
	{"phone", false, "string", func(in *input, raw json.RawMessage) error { return json.Unmarshal(raw, &in.Phone) }},
	{"company", false, "string", func(in *input, raw json.RawMessage) error { return json.Unmarshal(raw, &in.Company) }},
	{"origin", false, "string", func(in *input, raw json.RawMessage) error { return json.Unmarshal(raw, &in.Origin) }},
	{"metadata", false, "object", func(in *input, raw json.RawMessage) error { return json.Unmarshal(raw, &in.Metadata) }},
	{"qualification", false, "string", func(in *input, raw json.RawMessage) error { return json.Unmarshal(raw, &in.Qualification) }},
	{"status", false, "string", func(in *input, raw json.RawMessage) error { return json.Unmarshal(raw, &in.Status) }},
	{"value", false, "number", func(in *input, raw json.RawMessage) error { return json.Unmarshal(raw, &in.Value) }},
	{"notes", false, "string", func(in *input, raw json.RawMessage) error { return json.Unmarshal(raw, &in.Notes) }},
	{"product_id", true, "string", func(in *input, raw json.RawMessage) error { return json.Unmarshal(raw, &in.ProductID) }},
}

var messages = map[string]string{
	"name":          "Name is required",
	"email":         "Invalid email address",
	"qualification": "Qualification must be one of cold, warm, hot",
	"status":        "Status must be one of new, contacted, qualified, converted, lost",
	"product_id":    "Invalid uuid",
}

// Validator checks raw lead payloads.
type Validator struct {
	val           *validator.Validator
	defaultRegion string
}

// New creates a lead validator. Phones are normalized to E.164 using region.
func New(val *validator.Validator, region string) *Validator {
	return &Validator{val: val, defaultRegion: region}
}

// Validate decodes raw into a canonical draft with defaults applied.
// A payload that is not a JSON object fails with a single top-level violation;
// otherwise every field problem is reported in the error details.
func (v *Validator) Validate(raw []byte) (domain.Draft, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return domain.Draft{}, apperr.Validation(msgInvalidLead).
			WithDetails([]FieldViolation{{Field: "", Message: "Expected a JSON object"}})
	}

	var in input
	violations := make([]FieldViolation, 0)

	for _, fd := range fieldDecoders {
		rawField, present := fields[fd.name]
		if !present {
			continue
		}
		if isNull(rawField) {
			if !fd.nullable {
				violations = append(violations, FieldViolation{Field: fd.name, Message: "Expected " + fd.expect + ", received null"})
			}
			continue
		}
		if err := fd.decode(&in, rawField); err != nil {
			violations = append(violations, FieldViolation{Field: fd.name, Message: "Expected " + fd.expect})
		}
	}

	// Markup is stripped before the struct check so a name made only of tags
	// fails as empty.
	in.Name = sanitize.Text(in.Name)
	in.Company = sanitize.Text(in.Company)
	in.Notes = sanitize.Text(in.Notes)
	in.Email = strings.TrimSpace(in.Email)
	if err := v.val.Struct(in); err != nil {
		violations = append(violations, translate(err, violations)...)
	}

	if len(violations) > 0 {
		return domain.Draft{}, apperr.Validation(msgInvalidLead).WithDetails(violations)
	}

	return v.toDraft(in), nil
}

func (v *Validator) toDraft(in input) domain.Draft {
	d := domain.Draft{
		Name:          in.Name,
		Email:         in.Email,
		Phone:         phone.NormalizeE164(in.Phone, v.defaultRegion),
		Company:       in.Company,
		Origin:        strings.TrimSpace(in.Origin),
		Qualification: in.Qualification,
		Status:        in.Status,
		Value:         in.Value,
		Notes:         in.Notes,
		Metadata:      in.Metadata,
	}
	if d.Origin == "" {
		d.Origin = domain.OriginAPI
	}
	if d.Status == "" {
		d.Status = domain.StatusNew
	}
	if d.Metadata == nil {
		d.Metadata = map[string]any{}
	}
	if in.ProductID != "" {
		if id, err := uuid.Parse(in.ProductID); err == nil {
			d.ProductID = &id
		}
	}
	return d
}

// translate converts go-playground errors into violations, skipping fields that
// already failed their type check.
func translate(err error, existing []FieldViolation) []FieldViolation {
	seen := make(map[string]bool, len(existing))
	for _, v := range existing {
		seen[v.Field] = true
	}

	out := make([]FieldViolation, 0)
	for _, v := range validator.Violations(err, messages) {
		if !seen[v.Field] {
			out = append(out, v)
		}
	}
	return out
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
