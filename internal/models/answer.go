package models

type Answer struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	SubmissionID uint     `gorm:"not null;uniqueIndex:idx_answer_submission_question" json:"submission_id"`
	QuestionID   uint     `gorm:"not null;uniqueIndex:idx_answer_submission_question" json:"question_id"`
	Question     Question `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`

	// TextValue holds the response for TEXT questions; SINGLE and MULTI
	// responses live in the answer_choices association instead.
	TextValue       string   `gorm:"type:text" json:"text_value,omitempty"`
	SelectedChoices []Choice `gorm:"many2many:answer_choices;constraint:OnDelete:CASCADE" json:"selected_choices,omitempty"`
}
