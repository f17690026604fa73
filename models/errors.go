package models

import "errors"

// PublishError: the draft -> published transition was rejected.
type PublishError struct {
	Reason string
}

func (e *PublishError) Error() string {
	return "cannot publish form: " + e.Reason
}

var (
	// ErrFieldsLocked: field add/update/remove attempted on a published form.
	ErrFieldsLocked = errors.New("form is published, fields can no longer be changed")
	// ErrFormLocked: a form property outside the post-publish whitelist
	// (name, description, quiz flag) was touched on a published form.
	ErrFormLocked = errors.New("form is published, only name, description and quiz flag can be changed")
	// ErrDuplicateSubmission: second entry for a single-submission form.
	ErrDuplicateSubmission = errors.New("form accepts a single submission per user")
)
