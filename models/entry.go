package models

import "time"

// Entry holds one submission. The answers live in a single JSON column
// mapping field id -> submitted value (string, number or boolean).
type Entry struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	FormID    uint      `gorm:"column:form_id;not null;index:idx_entries_form_user" json:"form_id"`
	UserID    *uint     `gorm:"column:user_id;index:idx_entries_form_user" json:"user_id"`
	DataJSON  string    `gorm:"column:data_json;type:text;not null" json:"-"`
	Score     *int      `gorm:"column:score" json:"score,omitempty"`
	Duration  *int      `gorm:"column:duration" json:"duration,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Form Form  `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" json:"-"`
	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Entry) TableName() string {
	return "entries"
}
