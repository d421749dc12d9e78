package services

import (
	"errors"
	"strings"

	"github.com/gamfolz-glitch/pollapp/internal/models"

	"gorm.io/gorm"
)

type PollService struct {
	db *gorm.DB
}

func NewPollService(db *gorm.DB) *PollService {
	return &PollService{db: db}
}

type PollInput struct {
	Title                    string
	Description              string
	AllowMultipleSubmissions bool
	TimeLimitMinutes         *int
}

type QuestionInput struct {
	Text           string
	Kind           string
	OrderNum       *int
	IsTestQuestion bool
}

type ChoiceInput struct {
	Text      string
	IsCorrect bool
}

func (s *PollService) CreatePoll(ownerID uint, input PollInput) (*models.Poll, error) {
	code, err := uniqueAccessCode(s.db)
	if err != nil {
		return nil, err
	}

	poll := models.Poll{
		OwnerID:                  &ownerID,
		Title:                    input.Title,
		Description:              input.Description,
		AccessCode:               code,
		AllowMultipleSubmissions: input.AllowMultipleSubmissions,
		TimeLimitMinutes:         input.TimeLimitMinutes,
	}
	if err := s.db.Create(&poll).Error; err != nil {
		return nil, err
	}
	return &poll, nil
}

func (s *PollService) GetPollsByOwner(ownerID uint) ([]models.Poll, error) {
	var polls []models.Poll
	err := s.db.Where("owner_id = ?", ownerID).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_num ASC, id ASC")
		}).
		Preload("Questions.Choices").
		Order("created_at DESC").
		Find(&polls).Error
	if err != nil {
		return nil, err
	}
	return polls, nil
}

func (s *PollService) GetPollByID(pollID, ownerID uint) (*models.Poll, error) {
	var poll models.Poll
	err := s.db.Where("id = ? AND owner_id = ?", pollID, ownerID).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_num ASC, id ASC")
		}).
		Preload("Questions.Choices").
		First(&poll).Error
	if err != nil {
		return nil, ErrNotFound
	}
	return &poll, nil
}

// GetPollByAccessCode resolves the public entry point. Codes are stored
// uppercase, so participant input is folded before the lookup.
func (s *PollService) GetPollByAccessCode(code string) (*models.Poll, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	var poll models.Poll
	if err := s.db.Where("access_code = ?", code).First(&poll).Error; err != nil {
		return nil, ErrNotFound
	}
	return &poll, nil
}

// QuestionsOrdered returns a poll's questions with choices, in display
// order (order_num, ties broken by id).
func (s *PollService) QuestionsOrdered(pollID uint) ([]models.Question, error) {
	var questions []models.Question
	err := s.db.Where("poll_id = ?", pollID).
		Order("order_num ASC, id ASC").
		Preload("Choices").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (s *PollService) UpdatePoll(pollID, ownerID uint, input PollInput) (*models.Poll, error) {
	var poll models.Poll
	if err := s.db.Where("id = ? AND owner_id = ?", pollID, ownerID).First(&poll).Error; err != nil {
		return nil, ErrNotFound
	}

	poll.Title = input.Title
	poll.Description = input.Description
	poll.AllowMultipleSubmissions = input.AllowMultipleSubmissions
	poll.TimeLimitMinutes = input.TimeLimitMinutes
	if err := s.db.Save(&poll).Error; err != nil {
		return nil, err
	}
	return &poll, nil
}

func (s *PollService) DeletePoll(pollID, ownerID uint) error {
	result := s.db.Where("id = ? AND owner_id = ?", pollID, ownerID).Delete(&models.Poll{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PollService) CreateQuestion(pollID, ownerID uint, input QuestionInput) (*models.Question, error) {
	var poll models.Poll
	if err := s.db.Where("id = ? AND owner_id = ?", pollID, ownerID).First(&poll).Error; err != nil {
		return nil, ErrNotFound
	}

	if !models.ValidQuestionKind(input.Kind) {
		return nil, errors.New("invalid question kind")
	}
	if input.Kind == models.QuestionKindText && input.IsTestQuestion {
		return nil, errors.New("a text question cannot be a test question")
	}

	orderNum, err := s.resolveOrder(pollID, 0, input.OrderNum)
	if err != nil {
		return nil, err
	}

	question := models.Question{
		PollID:         pollID,
		Text:           input.Text,
		Kind:           input.Kind,
		OrderNum:       orderNum,
		IsTestQuestion: input.IsTestQuestion,
	}
	if err := s.db.Create(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (s *PollService) UpdateQuestion(questionID, ownerID uint, input QuestionInput) (*models.Question, error) {
	question, err := s.ownedQuestion(questionID, ownerID)
	if err != nil {
		return nil, err
	}

	if !models.ValidQuestionKind(input.Kind) {
		return nil, errors.New("invalid question kind")
	}
	if input.Kind == models.QuestionKindText && input.IsTestQuestion {
		return nil, errors.New("a text question cannot be a test question")
	}
	// A kind change to SINGLE must not smuggle in extra correct choices.
	if input.Kind == models.QuestionKindSingle && input.IsTestQuestion {
		var count int64
		s.db.Model(&models.Choice{}).
			Where("question_id = ? AND is_correct = ?", question.ID, true).
			Count(&count)
		if count > 1 {
			return nil, errors.New("a single-choice question can only have one correct choice")
		}
	}

	question.Text = input.Text
	question.Kind = input.Kind
	question.IsTestQuestion = input.IsTestQuestion
	if input.OrderNum != nil {
		orderNum, err := s.resolveOrder(question.PollID, question.ID, input.OrderNum)
		if err != nil {
			return nil, err
		}
		question.OrderNum = orderNum
	}
	if err := s.db.Save(question).Error; err != nil {
		return nil, err
	}

	// A question that is no longer gradable cannot keep correct choices.
	if !question.Gradable() {
		err := s.db.Model(&models.Choice{}).
			Where("question_id = ?", question.ID).
			Update("is_correct", false).Error
		if err != nil {
			return nil, err
		}
	}
	return question, nil
}

func (s *PollService) DeleteQuestion(questionID, ownerID uint) error {
	question, err := s.ownedQuestion(questionID, ownerID)
	if err != nil {
		return err
	}
	return s.db.Delete(question).Error
}

func (s *PollService) CreateChoice(questionID, ownerID uint, input ChoiceInput) (*models.Choice, error) {
	question, err := s.ownedQuestion(questionID, ownerID)
	if err != nil {
		return nil, err
	}

	if input.IsCorrect {
		if err := s.checkCorrectAllowed(question); err != nil {
			return nil, err
		}
	}

	choice := models.Choice{
		QuestionID: questionID,
		Text:       input.Text,
		IsCorrect:  input.IsCorrect,
	}
	if err := s.db.Create(&choice).Error; err != nil {
		return nil, err
	}
	return &choice, nil
}

func (s *PollService) UpdateChoice(choiceID, ownerID uint, input ChoiceInput) (*models.Choice, error) {
	var choice models.Choice
	if err := s.db.First(&choice, choiceID).Error; err != nil {
		return nil, ErrNotFound
	}
	question, err := s.ownedQuestion(choice.QuestionID, ownerID)
	if err != nil {
		return nil, err
	}

	if input.IsCorrect && !choice.IsCorrect {
		if err := s.checkCorrectAllowed(question); err != nil {
			return nil, err
		}
	}

	choice.Text = input.Text
	choice.IsCorrect = input.IsCorrect
	if err := s.db.Save(&choice).Error; err != nil {
		return nil, err
	}
	return &choice, nil
}

func (s *PollService) DeleteChoice(choiceID, ownerID uint) error {
	var choice models.Choice
	if err := s.db.First(&choice, choiceID).Error; err != nil {
		return ErrNotFound
	}
	if _, err := s.ownedQuestion(choice.QuestionID, ownerID); err != nil {
		return err
	}
	return s.db.Delete(&choice).Error
}

func (s *PollService) ownedQuestion(questionID, ownerID uint) (*models.Question, error) {
	var question models.Question
	if err := s.db.First(&question, questionID).Error; err != nil {
		return nil, ErrNotFound
	}
	var poll models.Poll
	if err := s.db.Where("id = ? AND owner_id = ?", question.PollID, ownerID).First(&poll).Error; err != nil {
		return nil, ErrNotFound
	}
	return &question, nil
}

// resolveOrder auto-assigns max(order)+1 when no explicit order was
// given, and rejects an explicit order already taken by another
// question of the same poll.
func (s *PollService) resolveOrder(pollID, questionID uint, explicit *int) (int, error) {
	if explicit == nil {
		var maxOrder int
		s.db.Model(&models.Question{}).Where("poll_id = ?", pollID).
			Select("COALESCE(MAX(order_num), 0)").Scan(&maxOrder)
		return maxOrder + 1, nil
	}

	if *explicit < 1 {
		return 0, errors.New("question order must be at least 1")
	}
	var count int64
	s.db.Model(&models.Question{}).
		Where("poll_id = ? AND order_num = ? AND id != ?", pollID, *explicit, questionID).
		Count(&count)
	if count > 0 {
		return 0, errors.New("question order already in use")
	}
	return *explicit, nil
}

func (s *PollService) checkCorrectAllowed(question *models.Question) error {
	if !question.IsTestQuestion || question.Kind == models.QuestionKindText {
		return errors.New("correct choices are only allowed on test questions with selectable answers")
	}
	if question.Kind == models.QuestionKindSingle {
		var count int64
		s.db.Model(&models.Choice{}).
			Where("question_id = ? AND is_correct = ?", question.ID, true).
			Count(&count)
		if count > 0 {
			return errors.New("a single-choice question can only have one correct choice")
		}
	}
	return nil
}
