package models

import "time"

type Submission struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	PollID uint  `gorm:"not null;index" json:"poll_id"`
	Poll   Poll  `gorm:"foreignKey:PollID;constraint:OnDelete:CASCADE" json:"-"`
	UserID *uint `gorm:"index" json:"user_id,omitempty"`
	User   *User `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`

	// SessionKey identifies anonymous participants.
	SessionKey string `gorm:"size:64;index" json:"-"`

	Score int `gorm:"not null;default:0" json:"score"`
	Total int `gorm:"not null;default:0" json:"total"`

	Answers   []Answer  `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
