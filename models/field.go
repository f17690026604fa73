package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Closed set of field types. Anything else is rejected when the field is
// constructed.
const (
	FieldText     = "text"
	FieldNumber   = "number"
	FieldDate     = "date"
	FieldBoolean  = "boolean"
	FieldSelect   = "select"
	FieldCurrency = "currency"
	FieldEmail    = "email"
)

var fieldTypes = map[string]bool{
	FieldText:     true,
	FieldNumber:   true,
	FieldDate:     true,
	FieldBoolean:  true,
	FieldSelect:   true,
	FieldCurrency: true,
	FieldEmail:    true,
}

// ParseFieldType normalizes and validates a field type string.
func ParseFieldType(s string) (string, error) {
	t := strings.ToLower(strings.TrimSpace(s))
	if !fieldTypes[t] {
		return "", fmt.Errorf("unknown field type %q", s)
	}
	return t, nil
}

type Field struct {
	ID            uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	FormID        uint    `json:"form_id"`
	Form          Form    `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" json:"-"`
	Label         string  `gorm:"size:255;not null" json:"label"`
	Type          string  `gorm:"size:20;not null" json:"type"`
	Required      bool    `gorm:"default:false" json:"required"`
	OptionsJSON   string  `gorm:"column:options_json;type:text" json:"-"`
	Unit          string  `gorm:"size:50" json:"unit,omitempty"`
	Category      string  `gorm:"size:100" json:"category,omitempty"`
	SortOrder     int     `gorm:"column:sort_order;default:0" json:"order"`
	CorrectAnswer *string `gorm:"type:text" json:"correct_answer,omitempty"`
	Points        int     `gorm:"default:0" json:"points"`
}

func (Field) TableName() string {
	return "fields"
}

// Key is the identifier entries use in their data map (JSON object keys
// are strings).
func (f *Field) Key() string {
	return strconv.FormatUint(uint64(f.ID), 10)
}
