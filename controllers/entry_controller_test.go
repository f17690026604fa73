package controllers

import (
	"errors"
	"testing"

	"github.com/vnkhanh/formbuilder-server/models"
)

func TestSubmissionAllowed(t *testing.T) {
	cases := []struct {
		name       string
		form       models.Form
		priorCount int64
		wantDup    bool
	}{
		{"first submission passes", models.Form{SingleSubmission: true}, 0, false},
		{"second submission rejected", models.Form{SingleSubmission: true}, 1, true},
		{"stale duplicates still rejected", models.Form{SingleSubmission: true}, 3, true},
		{"multi-submission form never blocks", models.Form{SingleSubmission: false}, 5, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := submissionAllowed(tc.form, tc.priorCount)
			if tc.wantDup && !errors.Is(err, models.ErrDuplicateSubmission) {
				t.Errorf("Expected ErrDuplicateSubmission, got %v", err)
			}
			if !tc.wantDup && err != nil {
				t.Errorf("Expected submission to pass, got %v", err)
			}
		})
	}
}
