package models

import "time"

type Poll struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OwnerID     *uint  `gorm:"index" json:"owner_id,omitempty"`
	Owner       *User  `gorm:"foreignKey:OwnerID;constraint:OnDelete:SET NULL" json:"-"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	// AccessCode is assigned once at creation and never changes.
	AccessCode string `gorm:"size:8;uniqueIndex;not null" json:"access_code"`

	AllowMultipleSubmissions bool `gorm:"not null;default:false" json:"allow_multiple_submissions"`
	TimeLimitMinutes         *int `json:"time_limit_minutes,omitempty"`

	Questions   []Question   `gorm:"foreignKey:PollID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	Submissions []Submission `gorm:"foreignKey:PollID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time    `json:"created_at"`
}

func (p *Poll) HasTimeLimit() bool {
	return p.TimeLimitMinutes != nil && *p.TimeLimitMinutes > 0
}

func (p *Poll) TimeLimitSeconds() int {
	if !p.HasTimeLimit() {
		return 0
	}
	return *p.TimeLimitMinutes * 60
}
