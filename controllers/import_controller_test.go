package controllers

import (
	"testing"

	"github.com/vnkhanh/formbuilder-server/models"
)

func TestParseImportRecords(t *testing.T) {
	answer := "42"
	fields := []models.Field{
		{ID: 1, Label: "Name", Type: models.FieldText, Required: true},
		{ID: 2, Label: "Answer", Type: models.FieldNumber, CorrectAnswer: &answer, Points: 10},
	}

	t.Run("header matches by label", func(t *testing.T) {
		records := [][]string{
			{"Name", "Answer"},
			{"Alice", "42"},
			{"Bob", "7"},
		}
		rows, rowErrs, err := parseImportRecords(fields, records)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(rowErrs) != 0 {
			t.Errorf("Expected no row errors, got %+v", rowErrs)
		}
		if len(rows) != 2 {
			t.Fatalf("Expected 2 rows, got %d", len(rows))
		}
		if rows[0].data["1"] != "Alice" || rows[0].data["2"] != "42" {
			t.Errorf("Row mapped wrong: %+v", rows[0].data)
		}
		if rows[0].line != 2 || rows[1].line != 3 {
			t.Errorf("Expected lines 2 and 3, got %d and %d", rows[0].line, rows[1].line)
		}
	})

	t.Run("header matches by field id", func(t *testing.T) {
		records := [][]string{
			{"1", "2"},
			{"Carol", "9"},
		}
		rows, _, err := parseImportRecords(fields, records)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(rows) != 1 || rows[0].data["1"] != "Carol" {
			t.Errorf("Expected one row keyed by id, got %+v", rows)
		}
	})

	t.Run("unknown header column fails the import", func(t *testing.T) {
		records := [][]string{
			{"Name", "Nickname"},
			{"Alice", "Al"},
		}
		_, _, err := parseImportRecords(fields, records)
		if err == nil {
			t.Fatal("Expected a header error")
		}
	})

	t.Run("bad row is reported and skipped", func(t *testing.T) {
		records := [][]string{
			{"Name", "Answer"},
			{"Alice", "42"},
			{"", "7"},             // missing required Name
			{"Carol", "not a nb"}, // Answer is not numeric
			{"Dave", "8"},
		}
		rows, rowErrs, err := parseImportRecords(fields, records)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(rows) != 2 {
			t.Errorf("Expected 2 good rows, got %+v", rows)
		}
		if len(rowErrs) != 2 {
			t.Fatalf("Expected 2 row errors, got %+v", rowErrs)
		}
		if rowErrs[0].Row != 3 || rowErrs[0].Field != "1" {
			t.Errorf("Expected row 3 field 1 error, got %+v", rowErrs[0])
		}
		if rowErrs[1].Row != 4 || rowErrs[1].Field != "2" {
			t.Errorf("Expected row 4 field 2 error, got %+v", rowErrs[1])
		}
	})

	t.Run("short record ignores missing trailing cells", func(t *testing.T) {
		optional := []models.Field{
			{ID: 1, Label: "Name", Type: models.FieldText},
			{ID: 2, Label: "Note", Type: models.FieldText},
		}
		records := [][]string{
			{"Name", "Note"},
			{"Alice"},
		}
		rows, rowErrs, err := parseImportRecords(optional, records)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(rowErrs) != 0 || len(rows) != 1 {
			t.Errorf("Expected one clean row, got rows=%+v errs=%+v", rows, rowErrs)
		}
		if _, ok := rows[0].data["2"]; ok {
			t.Errorf("Missing cell must not appear in data: %+v", rows[0].data)
		}
	})
}
