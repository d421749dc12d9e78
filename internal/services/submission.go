package services

import (
	"context"

	"github.com/gamfolz-glitch/pollapp/internal/models"

	"gorm.io/gorm"
)

// SubmissionService runs the intake pipeline: eligibility, timer,
// validation, atomic commit, scoring.
type SubmissionService struct {
	db          *gorm.DB
	polls       *PollService
	eligibility *EligibilityService
	timer       *TimerService
	validator   *ValidatorService
	scoring     *ScoringService
}

func NewSubmissionService(db *gorm.DB, polls *PollService, eligibility *EligibilityService, timer *TimerService, scoring *ScoringService) *SubmissionService {
	return &SubmissionService{
		db:          db,
		polls:       polls,
		eligibility: eligibility,
		timer:       timer,
		validator:   NewValidatorService(),
		scoring:     scoring,
	}
}

// CheckEligibility exposes the eligibility read so the serving layer
// can block the form before any answers are typed.
func (s *SubmissionService) CheckEligibility(poll *models.Poll, identity Identity) error {
	return s.eligibility.Check(poll, identity)
}

// Submit validates and persists one attempt. On any failure nothing is
// written: either the whole submission with all its answers becomes
// durable, or no row at all.
func (s *SubmissionService) Submit(ctx context.Context, accessCode string, identity Identity, payload AnswerPayload) (*models.Submission, error) {
	poll, err := s.polls.GetPollByAccessCode(accessCode)
	if err != nil {
		return nil, err
	}

	if err := s.eligibility.Check(poll, identity); err != nil {
		return nil, err
	}
	if err := s.timer.CheckSubmit(ctx, poll, identity.SessionKey); err != nil {
		return nil, err
	}

	questions, err := s.polls.QuestionsOrdered(poll.ID)
	if err != nil {
		return nil, err
	}

	validated, verrs := s.validator.Validate(questions, payload)
	if verrs != nil {
		return nil, verrs
	}

	submission := models.Submission{
		PollID:     poll.ID,
		UserID:     identity.UserID,
		SessionKey: identity.SessionKey,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&submission).Error; err != nil {
			return err
		}

		for _, va := range validated {
			answer := models.Answer{
				SubmissionID: submission.ID,
				QuestionID:   va.Question.ID,
			}
			switch va.Question.Kind {
			case models.QuestionKindText:
				answer.TextValue = va.Text
				if err := tx.Create(&answer).Error; err != nil {
					return err
				}
			case models.QuestionKindSingle:
				if err := tx.Create(&answer).Error; err != nil {
					return err
				}
				if err := tx.Model(&answer).Association("SelectedChoices").Append(va.Choice); err != nil {
					return err
				}
			case models.QuestionKindMulti:
				if err := tx.Create(&answer).Error; err != nil {
					return err
				}
				if err := tx.Model(&answer).Association("SelectedChoices").Append(&va.Choices); err != nil {
					return err
				}
			}
		}

		return s.scoring.recalculate(tx, &submission)
	})
	if err != nil {
		return nil, err
	}

	return &submission, nil
}

// LatestSubmission returns the identity's most recent submission for a
// poll, with answers and selections loaded for the result view.
func (s *SubmissionService) LatestSubmission(poll *models.Poll, identity Identity) (*models.Submission, error) {
	query := s.db.Where("poll_id = ?", poll.ID)
	if identity.UserID != nil {
		query = query.Where("user_id = ?", *identity.UserID)
	} else {
		query = query.Where("user_id IS NULL AND session_key = ?", identity.SessionKey)
	}

	var submission models.Submission
	err := query.Order("created_at DESC, id DESC").
		Preload("Answers.SelectedChoices").
		First(&submission).Error
	if err != nil {
		return nil, ErrNotFound
	}
	return &submission, nil
}
