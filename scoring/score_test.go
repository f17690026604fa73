package scoring

import (
	"testing"

	"github.com/vnkhanh/formbuilder-server/models"
)

func strPtr(s string) *string { return &s }

func TestScore(t *testing.T) {
	t.Run("case and whitespace insensitive text match", func(t *testing.T) {
		fields := []models.Field{
			{ID: 1, Label: "Capital of France", Type: models.FieldText, CorrectAnswer: strPtr("Paris"), Points: 10},
		}
		data := map[string]Value{"1": String("  pArIs  ")}

		total, results := Score(fields, data)
		if total != 10 {
			t.Errorf("Expected score 10, got %d", total)
		}
		if len(results) != 1 || !results[0].IsCorrect {
			t.Errorf("Expected one correct result, got %+v", results)
		}
	})

	t.Run("unicode case folding", func(t *testing.T) {
		fields := []models.Field{
			{ID: 1, Label: "Bear", Type: models.FieldText, CorrectAnswer: strPtr("Медведь"), Points: 10},
		}
		data := map[string]Value{"1": String("медведь")}

		total, _ := Score(fields, data)
		if total != 10 {
			t.Errorf("Expected score 10 for cyrillic case fold, got %d", total)
		}
	})

	t.Run("partial credit", func(t *testing.T) {
		fields := []models.Field{
			{ID: 1, Label: "Q1", Type: models.FieldText, CorrectAnswer: strPtr("A"), Points: 10},
			{ID: 2, Label: "Q2", Type: models.FieldText, CorrectAnswer: strPtr("42"), Points: 20},
		}
		data := map[string]Value{"1": String("A"), "2": String("50")}

		total, _ := Score(fields, data)
		if total != 10 {
			t.Errorf("Expected score 10, got %d", total)
		}
	})

	t.Run("zero field quiz scores zero", func(t *testing.T) {
		total, results := Score(nil, map[string]Value{})
		if total != 0 {
			t.Errorf("Expected score 0, got %d", total)
		}
		if len(results) != 0 {
			t.Errorf("Expected empty breakdown, got %+v", results)
		}
	})

	t.Run("numeric field matches across representations", func(t *testing.T) {
		fields := []models.Field{
			{ID: 1, Label: "Answer", Type: models.FieldNumber, CorrectAnswer: strPtr("42"), Points: 5},
		}

		for name, v := range map[string]Value{
			"number":            Number(42),
			"string":            String("42"),
			"string with space": String(" 42 "),
			"decimal":           String("42.0"),
		} {
			total, _ := Score(fields, map[string]Value{"1": v})
			if total != 5 {
				t.Errorf("%s: expected score 5, got %d", name, total)
			}
		}
	})

	t.Run("boolean field compares as booleans", func(t *testing.T) {
		fields := []models.Field{
			{ID: 1, Label: "Agree?", Type: models.FieldBoolean, CorrectAnswer: strPtr("true"), Points: 3},
		}

		total, _ := Score(fields, map[string]Value{"1": Boolean(true)})
		if total != 3 {
			t.Errorf("Expected score 3 for true, got %d", total)
		}
		total, _ = Score(fields, map[string]Value{"1": String("1")})
		if total != 3 {
			t.Errorf("Expected score 3 for \"1\", got %d", total)
		}
		total, _ = Score(fields, map[string]Value{"1": Boolean(false)})
		if total != 0 {
			t.Errorf("Expected score 0 for false, got %d", total)
		}
	})

	t.Run("type mismatch is not equal", func(t *testing.T) {
		fields := []models.Field{
			{ID: 1, Label: "Count", Type: models.FieldNumber, CorrectAnswer: strPtr("1"), Points: 5},
		}
		// boolean true never loosely equals numeric 1
		total, _ := Score(fields, map[string]Value{"1": Boolean(true)})
		if total != 0 {
			t.Errorf("Expected score 0 for bool vs number, got %d", total)
		}
	})

	t.Run("null submission and null correct answer are skipped", func(t *testing.T) {
		fields := []models.Field{
			{ID: 1, Label: "Unanswered", Type: models.FieldText, CorrectAnswer: strPtr("x"), Points: 10},
			{ID: 2, Label: "Unscoreable", Type: models.FieldText, Points: 10},
		}
		data := map[string]Value{"1": Null(), "2": String("whatever")}

		total, results := Score(fields, data)
		if total != 0 {
			t.Errorf("Expected score 0, got %d", total)
		}
		// field without a correct answer does not appear in the breakdown
		if len(results) != 1 {
			t.Errorf("Expected breakdown of 1, got %+v", results)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		fields := []models.Field{
			{ID: 1, Label: "Q1", Type: models.FieldText, CorrectAnswer: strPtr("6"), Points: 10},
			{ID: 2, Label: "Q2", Type: models.FieldNumber, CorrectAnswer: strPtr("12"), Points: 20},
		}
		data := map[string]Value{"1": String("6"), "2": Number(12)}

		first, _ := Score(fields, data)
		second, _ := Score(fields, data)
		if first != second {
			t.Errorf("Score not deterministic: %d then %d", first, second)
		}
		if first != 30 {
			t.Errorf("Expected score 30, got %d", first)
		}
	})

	t.Run("end to end two question quiz", func(t *testing.T) {
		fields := []models.Field{
			{ID: 1, Label: "Q1", Type: models.FieldText, CorrectAnswer: strPtr("6"), Points: 10},
			{ID: 2, Label: "Q2", Type: models.FieldText, CorrectAnswer: strPtr("12"), Points: 20},
		}

		total, _ := Score(fields, map[string]Value{"1": String("6"), "2": String("12")})
		if total != 30 {
			t.Errorf("Expected score 30, got %d", total)
		}

		total, results := Score(fields, map[string]Value{"1": String("8"), "2": String("12")})
		if total != 20 {
			t.Errorf("Expected score 20, got %d", total)
		}
		if results[0].IsCorrect || !results[1].IsCorrect {
			t.Errorf("Expected q1 wrong and q2 right, got %+v", results)
		}
	})
}
