package scoring

import (
	"strconv"
	"strings"

	"github.com/vnkhanh/formbuilder-server/models"
)

// ResultItem is the per-field breakdown of a scored quiz entry, shaped
// for direct display.
type ResultItem struct {
	FieldID       uint   `json:"field_id"`
	Label         string `json:"label"`
	UserAnswer    any    `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
	Points        int    `json:"points"`
}

// Score computes the total quiz score for one entry. Pure and
// deterministic: same (fields, data) always yields the same total.
//
// A field counts only when both the submitted value and the correct
// answer are non-null. Comparison is normalized by the field's declared
// type: number/currency compare numerically, boolean as booleans, and
// everything else as trimmed text under Unicode case folding. A side that
// fails its type's normalization makes the field incorrect.
func Score(fields []models.Field, data map[string]Value) (int, []ResultItem) {
	total := 0
	var results []ResultItem

	for i := range fields {
		f := &fields[i]
		if f.CorrectAnswer == nil {
			continue
		}
		correct := strings.TrimSpace(*f.CorrectAnswer)

		item := ResultItem{
			FieldID:       f.ID,
			Label:         f.Label,
			CorrectAnswer: correct,
			Points:        f.Points,
		}

		v, present := data[f.Key()]
		if present && v.Kind != KindNull {
			item.UserAnswer = v.Raw()
			if answerMatches(f.Type, v, correct) {
				item.IsCorrect = true
				total += f.Points
			}
		}
		results = append(results, item)
	}
	return total, results
}

func answerMatches(fieldType string, v Value, correct string) bool {
	switch fieldType {
	case models.FieldNumber, models.FieldCurrency:
		got, ok := v.AsNumber()
		if !ok {
			return false
		}
		want, err := strconv.ParseFloat(correct, 64)
		if err != nil {
			return false
		}
		return got == want
	case models.FieldBoolean:
		got, ok := v.AsBool()
		if !ok {
			return false
		}
		want, ok := String(correct).AsBool()
		if !ok {
			return false
		}
		return got == want
	default:
		return strings.EqualFold(strings.TrimSpace(v.Text()), correct)
	}
}
