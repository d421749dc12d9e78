package services

import (
	"testing"

	"github.com/gamfolz-glitch/pollapp/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A pooled second connection would see an empty :memory: database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Poll{},
		&models.Question{},
		&models.Choice{},
		&models.Submission{},
		&models.Answer{},
	))
	return db
}

func intPtr(n int) *int { return &n }

func uintPtr(n uint) *uint { return &n }

func makePoll(t *testing.T, db *gorm.DB, allowMultiple bool, timeLimitMinutes *int) *models.Poll {
	t.Helper()

	code, err := uniqueAccessCode(db)
	require.NoError(t, err)

	poll := &models.Poll{
		Title:                    "Test poll",
		AccessCode:               code,
		AllowMultipleSubmissions: allowMultiple,
		TimeLimitMinutes:         timeLimitMinutes,
	}
	require.NoError(t, db.Create(poll).Error)
	return poll
}

func makeQuestion(t *testing.T, db *gorm.DB, pollID uint, kind string, orderNum int, isTest bool) *models.Question {
	t.Helper()

	question := &models.Question{
		PollID:         pollID,
		Text:           "Question " + kind,
		Kind:           kind,
		OrderNum:       orderNum,
		IsTestQuestion: isTest,
	}
	require.NoError(t, db.Create(question).Error)
	return question
}

func makeChoice(t *testing.T, db *gorm.DB, questionID uint, text string, isCorrect bool) *models.Choice {
	t.Helper()

	choice := &models.Choice{
		QuestionID: questionID,
		Text:       text,
		IsCorrect:  isCorrect,
	}
	require.NoError(t, db.Create(choice).Error)
	return choice
}

func makeUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{Username: username, PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newSubmissionService(db *gorm.DB, store TimerStore) *SubmissionService {
	return NewSubmissionService(
		db,
		NewPollService(db),
		NewEligibilityService(db),
		NewTimerService(store),
		NewScoringService(db),
	)
}
