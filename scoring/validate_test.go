package scoring

import (
	"testing"

	"github.com/vnkhanh/formbuilder-server/models"
)

func TestValidateAll(t *testing.T) {
	fields := []models.Field{
		{ID: 1, Label: "Name", Type: models.FieldText, Required: true},
		{ID: 2, Label: "Age", Type: models.FieldNumber, Required: true},
		{ID: 3, Label: "Email", Type: models.FieldEmail},
	}

	t.Run("valid data passes", func(t *testing.T) {
		data := map[string]Value{
			"1": String("Alice"),
			"2": Number(30),
			"3": String("alice@example.com"),
		}
		if errs := ValidateAll(fields, data); errs != nil {
			t.Errorf("Expected no errors, got %+v", errs)
		}
	})

	t.Run("collects every violation and names the field", func(t *testing.T) {
		data := map[string]Value{
			"3": String("not-an-email"),
		}
		errs := ValidateAll(fields, data)
		if len(errs) != 3 {
			t.Fatalf("Expected 3 errors, got %+v", errs)
		}
		if errs[0].Field != "1" || errs[0].Reason != "is required" {
			t.Errorf("Expected field 1 required error, got %+v", errs[0])
		}
		if errs[0].Label != "Name" {
			t.Errorf("Expected label Name, got %q", errs[0].Label)
		}
		if errs[1].Field != "2" {
			t.Errorf("Expected field 2 error, got %+v", errs[1])
		}
		if errs[2].Field != "3" || errs[2].Reason != "must be a valid email address" {
			t.Errorf("Expected field 3 email error, got %+v", errs[2])
		}
	})

	t.Run("blank string counts as missing", func(t *testing.T) {
		data := map[string]Value{
			"1": String("   "),
			"2": Number(1),
		}
		errs := ValidateAll(fields, data)
		if len(errs) != 1 || errs[0].Field != "1" || errs[0].Reason != "is required" {
			t.Errorf("Expected required error on field 1, got %+v", errs)
		}
	})

	t.Run("optional field may be absent", func(t *testing.T) {
		data := map[string]Value{
			"1": String("Bob"),
			"2": Number(1),
		}
		if errs := ValidateAll(fields, data); errs != nil {
			t.Errorf("Expected no errors, got %+v", errs)
		}
	})
}

func TestValidateFailFast(t *testing.T) {
	fields := []models.Field{
		{ID: 1, Label: "Name", Type: models.FieldText, Required: true},
		{ID: 2, Label: "Age", Type: models.FieldNumber, Required: true},
	}

	t.Run("stops at first violation in field order", func(t *testing.T) {
		fe := ValidateFailFast(fields, map[string]Value{})
		if fe == nil {
			t.Fatal("Expected an error")
		}
		if fe.Field != "1" {
			t.Errorf("Expected first failure on field 1, got %+v", fe)
		}
	})

	t.Run("nil on valid data", func(t *testing.T) {
		data := map[string]Value{"1": String("Alice"), "2": String("30")}
		if fe := ValidateFailFast(fields, data); fe != nil {
			t.Errorf("Expected no error, got %+v", fe)
		}
	})
}

func TestCheckFieldTypes(t *testing.T) {
	cases := []struct {
		name      string
		fieldType string
		value     Value
		wantErr   bool
	}{
		{"number accepts numeric string", models.FieldNumber, String("12.5"), false},
		{"number rejects text", models.FieldNumber, String("abc"), true},
		{"currency accepts number", models.FieldCurrency, Number(99.99), false},
		{"currency rejects bool", models.FieldCurrency, Boolean(true), true},
		{"email accepts address", models.FieldEmail, String("a@b.co"), false},
		{"email rejects number", models.FieldEmail, Number(5), true},
		{"date accepts iso day", models.FieldDate, String("2024-03-01"), false},
		{"date accepts rfc3339", models.FieldDate, String("2024-03-01T10:00:00Z"), false},
		{"date rejects free text", models.FieldDate, String("yesterday"), true},
		{"boolean accepts bool", models.FieldBoolean, Boolean(false), false},
		{"boolean accepts 1", models.FieldBoolean, String("1"), false},
		{"boolean rejects text", models.FieldBoolean, String("maybe"), true},
		{"text accepts anything", models.FieldText, Number(7), false},
		{"select accepts anything", models.FieldSelect, String("option b"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fields := []models.Field{{ID: 1, Label: "F", Type: tc.fieldType}}
			errs := ValidateAll(fields, map[string]Value{"1": tc.value})
			if tc.wantErr && len(errs) == 0 {
				t.Errorf("Expected a validation error")
			}
			if !tc.wantErr && len(errs) != 0 {
				t.Errorf("Expected no error, got %+v", errs)
			}
		})
	}
}
