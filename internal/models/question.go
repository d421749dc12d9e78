package models

type Question struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	PollID   uint   `gorm:"not null;uniqueIndex:idx_poll_question_order" json:"poll_id"`
	Text     string `gorm:"size:500;not null" json:"text"`
	Kind     string `gorm:"size:10;not null;default:'TEXT'" json:"kind"`
	OrderNum int    `gorm:"not null;uniqueIndex:idx_poll_question_order" json:"order_num"`

	// Test questions are graded; a TEXT question can never be one.
	IsTestQuestion bool `gorm:"not null;default:false" json:"is_test_question"`

	Choices []Choice `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"choices,omitempty"`
}

const (
	QuestionKindText   = "TEXT"
	QuestionKindSingle = "SINGLE"
	QuestionKindMulti  = "MULTI"
)

func ValidQuestionKind(kind string) bool {
	switch kind {
	case QuestionKindText, QuestionKindSingle, QuestionKindMulti:
		return true
	}
	return false
}

// Gradable reports whether answers to this question count toward a score.
func (q *Question) Gradable() bool {
	return q.IsTestQuestion && q.Kind != QuestionKindText
}

// CorrectChoices returns the correct choices among the preloaded Choices.
func (q *Question) CorrectChoices() []Choice {
	var correct []Choice
	for _, c := range q.Choices {
		if c.IsCorrect {
			correct = append(correct, c)
		}
	}
	return correct
}
