package models

import "time"

// Form lifecycle: draft -> published (terminal). "deleted" is a soft-delete
// marker, excluded from every query.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusDeleted   = "deleted"
)

type Form struct {
	ID               uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OwnerID          *uint     `gorm:"column:owner_id" json:"owner_id"`
	Name             string    `gorm:"column:name;size:255;not null" json:"name"`
	Description      string    `gorm:"column:description;type:text" json:"description"`
	Status           string    `gorm:"column:status;size:20;default:'draft'" json:"status"`
	IsQuiz           bool      `gorm:"column:is_quiz;default:false" json:"is_quiz"`
	SingleSubmission bool      `gorm:"column:single_submission;default:false" json:"single_submission"`
	Version          int       `gorm:"column:version;default:1" json:"version"`
	ShareToken       *string   `gorm:"column:share_token;size:64;uniqueIndex" json:"share_token,omitempty"`
	EditTokenHash    string    `gorm:"column:edit_token_hash;type:text" json:"-"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Owner *User `gorm:"foreignKey:OwnerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	Fields  []Field `gorm:"foreignKey:FormID" json:"-"`
	Entries []Entry `gorm:"foreignKey:FormID" json:"-"`
}

func (Form) TableName() string {
	return "forms"
}

func (f *Form) Published() bool {
	return f.Status == StatusPublished
}

// FieldsEditable reports whether the field list may still be mutated.
// Fields are frozen the moment the form is published.
func (f *Form) FieldsEditable() bool {
	return f.Status != StatusPublished
}

// Publish transitions draft -> published. The caller passes the current
// field count; a form with no fields cannot be published, and the
// transition is one-way.
func (f *Form) Publish(fieldCount int64) error {
	if f.Published() {
		return &PublishError{Reason: "already published"}
	}
	if fieldCount < 1 {
		return &PublishError{Reason: "no fields"}
	}
	f.Status = StatusPublished
	return nil
}
