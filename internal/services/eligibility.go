package services

import (
	"github.com/gamfolz-glitch/pollapp/internal/models"

	"gorm.io/gorm"
)

// Identity is who is taking the poll: an authenticated user, or an
// anonymous participant known only by their session key.
type Identity struct {
	UserID     *uint
	SessionKey string
}

type EligibilityService struct {
	db *gorm.DB
}

func NewEligibilityService(db *gorm.DB) *EligibilityService {
	return &EligibilityService{db: db}
}

// Check returns ErrAlreadySubmitted when a once-only poll already has a
// submission from this identity. Pure read, no side effects.
func (s *EligibilityService) Check(poll *models.Poll, identity Identity) error {
	if poll.AllowMultipleSubmissions {
		return nil
	}

	query := s.db.Model(&models.Submission{}).Where("poll_id = ?", poll.ID)
	if identity.UserID != nil {
		query = query.Where("user_id = ?", *identity.UserID)
	} else {
		query = query.Where("user_id IS NULL AND session_key = ?", identity.SessionKey)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrAlreadySubmitted
	}
	return nil
}
