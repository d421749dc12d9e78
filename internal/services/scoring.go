package services

import (
	"github.com/gamfolz-glitch/pollapp/internal/models"

	"gorm.io/gorm"
)

type ScoringService struct {
	db *gorm.DB
}

func NewScoringService(db *gorm.DB) *ScoringService {
	return &ScoringService{db: db}
}

// AnswerIsCorrect derives correctness from the question's choice set and
// the selected choices. It returns nil for answers that are not
// gradable (non-test questions and TEXT questions).
//
// SINGLE: correct iff the one selected choice is the one correct choice.
// MULTI: correct iff the selected id set equals the non-empty correct id
// set; a question without correct choices is never answered correctly.
func AnswerIsCorrect(question models.Question, selected []models.Choice) *bool {
	if !question.Gradable() {
		return nil
	}

	correct := question.CorrectChoices()
	result := false

	switch question.Kind {
	case models.QuestionKindSingle:
		result = len(selected) == 1 && len(correct) == 1 && selected[0].ID == correct[0].ID
	case models.QuestionKindMulti:
		result = len(correct) > 0 && sameChoiceSet(selected, correct)
	}
	return &result
}

// Recalculate recomputes score and total for a committed submission from
// its stored answers and persists them. Calling it again on unchanged
// data yields the same numbers.
func (s *ScoringService) Recalculate(submissionID uint) (*models.Submission, error) {
	var submission models.Submission
	if err := s.db.First(&submission, submissionID).Error; err != nil {
		return nil, ErrNotFound
	}
	if err := s.recalculate(s.db, &submission); err != nil {
		return nil, err
	}
	return &submission, nil
}

func (s *ScoringService) recalculate(db *gorm.DB, submission *models.Submission) error {
	var answers []models.Answer
	err := db.Where("submission_id = ?", submission.ID).
		Preload("Question.Choices").
		Preload("SelectedChoices").
		Find(&answers).Error
	if err != nil {
		return err
	}

	score, total := 0, 0
	for _, answer := range answers {
		correct := AnswerIsCorrect(answer.Question, answer.SelectedChoices)
		if correct == nil {
			continue
		}
		total++
		if *correct {
			score++
		}
	}

	submission.Score = score
	submission.Total = total
	return db.Model(submission).Updates(map[string]interface{}{
		"score": score,
		"total": total,
	}).Error
}

func sameChoiceSet(a, b []models.Choice) bool {
	if len(a) != len(b) {
		return false
	}
	ids := make(map[uint]bool, len(a))
	for _, c := range a {
		ids[c.ID] = true
	}
	for _, c := range b {
		if !ids[c.ID] {
			return false
		}
	}
	return true
}
