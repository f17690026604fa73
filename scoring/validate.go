package scoring

import (
	"regexp"
	"time"

	"github.com/vnkhanh/formbuilder-server/models"
)

// FieldError is one field-level violation found while validating entry
// data against a form's field schemas.
type FieldError struct {
	Field  string `json:"field"`
	Label  string `json:"label,omitempty"`
	Reason string `json:"reason"`
}

func (e FieldError) Error() string {
	return "field " + e.Field + ": " + e.Reason
}

var reEmail = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

var dateLayouts = []string{"2006-01-02", time.RFC3339}

// ValidateAll checks every field and collects every violation. A nil
// result means the data satisfies the form.
func ValidateAll(fields []models.Field, data map[string]Value) []FieldError {
	var errs []FieldError
	for i := range fields {
		if fe := checkField(&fields[i], data); fe != nil {
			errs = append(errs, *fe)
		}
	}
	return errs
}

// ValidateFailFast stops at the first violation, in field order. Used by
// the row-oriented import path where one bad cell fails the whole row.
func ValidateFailFast(fields []models.Field, data map[string]Value) *FieldError {
	for i := range fields {
		if fe := checkField(&fields[i], data); fe != nil {
			return fe
		}
	}
	return nil
}

func checkField(f *models.Field, data map[string]Value) *FieldError {
	v, present := data[f.Key()]
	if !present || v.IsEmpty() {
		if f.Required {
			return &FieldError{Field: f.Key(), Label: f.Label, Reason: "is required"}
		}
		return nil
	}

	switch f.Type {
	case models.FieldNumber, models.FieldCurrency:
		if _, ok := v.AsNumber(); !ok {
			return &FieldError{Field: f.Key(), Label: f.Label, Reason: "must be a number"}
		}
	case models.FieldEmail:
		if v.Kind != KindString || !reEmail.MatchString(v.Text()) {
			return &FieldError{Field: f.Key(), Label: f.Label, Reason: "must be a valid email address"}
		}
	case models.FieldDate:
		if v.Kind != KindString || !parsesAsDate(v.Str) {
			return &FieldError{Field: f.Key(), Label: f.Label, Reason: "must be a date"}
		}
	case models.FieldBoolean:
		if _, ok := v.AsBool(); !ok {
			return &FieldError{Field: f.Key(), Label: f.Label, Reason: "must be a boolean"}
		}
	}
	// text and select carry no extra type constraint
	return nil
}

func parsesAsDate(s string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
