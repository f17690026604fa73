package controllers

import (
	"errors"
	"strings"
	"testing"

	"gorm.io/gorm/clause"

	"github.com/vnkhanh/formbuilder-server/models"
)

func boolPtr(b bool) *bool { return &b }

func TestFormUpdateSet(t *testing.T) {
	t.Run("draft edit does not touch version", func(t *testing.T) {
		f := models.Form{Status: models.StatusDraft}
		name := "Renamed form"
		updates, err := formUpdateSet(f, updateFormReq{Name: &name})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if updates["name"] != name {
			t.Errorf("Expected name update, got %+v", updates)
		}
		if _, ok := updates["version"]; ok {
			t.Errorf("Draft update must not bump version: %+v", updates)
		}
	})

	t.Run("published edit bumps version by exactly 1", func(t *testing.T) {
		f := models.Form{Status: models.StatusPublished}
		name := "Renamed form"
		updates, err := formUpdateSet(f, updateFormReq{Name: &name})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		expr, ok := updates["version"].(clause.Expr)
		if !ok {
			t.Fatalf("Expected a version expression, got %+v", updates["version"])
		}
		if expr.SQL != "version + 1" {
			t.Errorf("Expected version + 1, got %q", expr.SQL)
		}
	})

	t.Run("empty update set skips the version bump", func(t *testing.T) {
		f := models.Form{Status: models.StatusPublished}
		updates, err := formUpdateSet(f, updateFormReq{})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(updates) != 0 {
			t.Errorf("Expected no updates, got %+v", updates)
		}
	})

	t.Run("single_submission locked after publish", func(t *testing.T) {
		f := models.Form{Status: models.StatusPublished}
		_, err := formUpdateSet(f, updateFormReq{SingleSubmission: boolPtr(true)})
		if !errors.Is(err, models.ErrFormLocked) {
			t.Fatalf("Expected ErrFormLocked, got %v", err)
		}
	})

	t.Run("single_submission editable on draft", func(t *testing.T) {
		f := models.Form{Status: models.StatusDraft}
		updates, err := formUpdateSet(f, updateFormReq{SingleSubmission: boolPtr(true)})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if updates["single_submission"] != true {
			t.Errorf("Expected single_submission update, got %+v", updates)
		}
	})

	t.Run("name length counts runes", func(t *testing.T) {
		f := models.Form{Status: models.StatusDraft}

		// 250 multibyte runes but well over 255 bytes
		long := strings.Repeat("ü", 250)
		if _, err := formUpdateSet(f, updateFormReq{Name: &long}); err != nil {
			t.Errorf("250-rune name must be accepted, got %v", err)
		}

		short := "ab"
		if _, err := formUpdateSet(f, updateFormReq{Name: &short}); err == nil {
			t.Error("2-rune name must be rejected")
		}

		tooLong := strings.Repeat("x", 256)
		if _, err := formUpdateSet(f, updateFormReq{Name: &tooLong}); err == nil {
			t.Error("256-rune name must be rejected")
		}
	})
}
