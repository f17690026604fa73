package models

import (
	"errors"
	"testing"
)

func TestFormPublish(t *testing.T) {
	t.Run("draft with fields publishes", func(t *testing.T) {
		f := Form{Status: StatusDraft}
		if err := f.Publish(3); err != nil {
			t.Fatalf("Expected publish to succeed, got %v", err)
		}
		if !f.Published() {
			t.Errorf("Expected status published, got %q", f.Status)
		}
	})

	t.Run("no fields cannot publish", func(t *testing.T) {
		f := Form{Status: StatusDraft}
		err := f.Publish(0)
		var pe *PublishError
		if !errors.As(err, &pe) {
			t.Fatalf("Expected PublishError, got %v", err)
		}
		if pe.Reason != "no fields" {
			t.Errorf("Expected reason %q, got %q", "no fields", pe.Reason)
		}
		if f.Published() {
			t.Error("Form must stay draft after failed publish")
		}
	})

	t.Run("publish is one way", func(t *testing.T) {
		f := Form{Status: StatusPublished}
		err := f.Publish(3)
		var pe *PublishError
		if !errors.As(err, &pe) {
			t.Fatalf("Expected PublishError, got %v", err)
		}
		if pe.Reason != "already published" {
			t.Errorf("Expected reason %q, got %q", "already published", pe.Reason)
		}
	})
}

func TestFieldsEditable(t *testing.T) {
	draft := Form{Status: StatusDraft}
	if !draft.FieldsEditable() {
		t.Error("Draft form fields must be editable")
	}
	published := Form{Status: StatusPublished}
	if published.FieldsEditable() {
		t.Error("Published form fields must be frozen")
	}
}

func TestParseFieldType(t *testing.T) {
	for _, ft := range []string{
		FieldText, FieldNumber, FieldDate, FieldBoolean,
		FieldSelect, FieldCurrency, FieldEmail,
	} {
		got, err := ParseFieldType(ft)
		if err != nil {
			t.Errorf("ParseFieldType(%q) failed: %v", ft, err)
		}
		if got != ft {
			t.Errorf("ParseFieldType(%q) = %q", ft, got)
		}
	}

	// case and surrounding whitespace are normalized away
	if got, err := ParseFieldType("  Number "); err != nil || got != FieldNumber {
		t.Errorf("ParseFieldType(\"  Number \") = %q, %v", got, err)
	}

	for _, bad := range []string{"", "image", "dropdown"} {
		if _, err := ParseFieldType(bad); err == nil {
			t.Errorf("ParseFieldType(%q) should fail", bad)
		}
	}
}
