package services

import (
	"strings"
	"testing"

	"github.com/gamfolz-glitch/pollapp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessCodeFormat(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := randomAccessCode()
		require.NoError(t, err)
		assert.Len(t, code, 8)
		assert.NotContains(t, code, "0")
		assert.NotContains(t, code, "O")
		assert.Equal(t, strings.ToUpper(code), code)
		for _, r := range code {
			assert.Contains(t, accessCodeAlphabet, string(r))
		}
	}
}

func TestCreatePollAssignsUniqueCode(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPollService(db)
	owner := makeUser(t, db, "alice")

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		poll, err := svc.CreatePoll(owner.ID, PollInput{Title: "p"})
		require.NoError(t, err)
		assert.Len(t, poll.AccessCode, 8)
		assert.False(t, seen[poll.AccessCode], "access code reused")
		seen[poll.AccessCode] = true
	}
}

func TestGetPollByAccessCodeFoldsCase(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPollService(db)
	poll := makePoll(t, db, true, nil)

	got, err := svc.GetPollByAccessCode("  " + strings.ToLower(poll.AccessCode) + " ")
	require.NoError(t, err)
	assert.Equal(t, poll.ID, got.ID)

	_, err = svc.GetPollByAccessCode("NOPENOPE")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateQuestionOrderAutoAssign(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPollService(db)
	owner := makeUser(t, db, "alice")
	poll, err := svc.CreatePoll(owner.ID, PollInput{Title: "p"})
	require.NoError(t, err)

	q1, err := svc.CreateQuestion(poll.ID, owner.ID, QuestionInput{Text: "a", Kind: models.QuestionKindText})
	require.NoError(t, err)
	assert.Equal(t, 1, q1.OrderNum)

	q2, err := svc.CreateQuestion(poll.ID, owner.ID, QuestionInput{Text: "b", Kind: models.QuestionKindSingle})
	require.NoError(t, err)
	assert.Equal(t, 2, q2.OrderNum)

	_, err = svc.CreateQuestion(poll.ID, owner.ID, QuestionInput{Text: "c", Kind: models.QuestionKindText, OrderNum: intPtr(2)})
	assert.Error(t, err, "explicit duplicate order must be rejected")

	_, err = svc.CreateQuestion(poll.ID, owner.ID, QuestionInput{Text: "d", Kind: models.QuestionKindText, OrderNum: intPtr(0)})
	assert.Error(t, err, "order below 1 must be rejected")
}

func TestTextQuestionCannotBeTest(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPollService(db)
	owner := makeUser(t, db, "alice")
	poll, err := svc.CreatePoll(owner.ID, PollInput{Title: "p"})
	require.NoError(t, err)

	_, err = svc.CreateQuestion(poll.ID, owner.ID, QuestionInput{
		Text:           "free text",
		Kind:           models.QuestionKindText,
		IsTestQuestion: true,
	})
	assert.Error(t, err)

	q, err := svc.CreateQuestion(poll.ID, owner.ID, QuestionInput{
		Text:           "pick",
		Kind:           models.QuestionKindSingle,
		IsTestQuestion: true,
	})
	require.NoError(t, err)

	_, err = svc.UpdateQuestion(q.ID, owner.ID, QuestionInput{
		Text:           "pick",
		Kind:           models.QuestionKindText,
		IsTestQuestion: true,
	})
	assert.Error(t, err)
}

func TestSingleQuestionSingleCorrectChoice(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPollService(db)
	owner := makeUser(t, db, "alice")
	poll, err := svc.CreatePoll(owner.ID, PollInput{Title: "p"})
	require.NoError(t, err)

	q, err := svc.CreateQuestion(poll.ID, owner.ID, QuestionInput{
		Text:           "pick",
		Kind:           models.QuestionKindSingle,
		IsTestQuestion: true,
	})
	require.NoError(t, err)

	_, err = svc.CreateChoice(q.ID, owner.ID, ChoiceInput{Text: "right", IsCorrect: true})
	require.NoError(t, err)

	_, err = svc.CreateChoice(q.ID, owner.ID, ChoiceInput{Text: "also right?", IsCorrect: true})
	assert.Error(t, err, "second correct choice on SINGLE must be rejected")

	wrong, err := svc.CreateChoice(q.ID, owner.ID, ChoiceInput{Text: "wrong"})
	require.NoError(t, err)

	_, err = svc.UpdateChoice(wrong.ID, owner.ID, ChoiceInput{Text: "wrong", IsCorrect: true})
	assert.Error(t, err)
}

func TestUpdateQuestionToSingleKeepsSingleCorrect(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPollService(db)
	owner := makeUser(t, db, "alice")
	poll, err := svc.CreatePoll(owner.ID, PollInput{Title: "p"})
	require.NoError(t, err)

	q, err := svc.CreateQuestion(poll.ID, owner.ID, QuestionInput{
		Text:           "pick all",
		Kind:           models.QuestionKindMulti,
		IsTestQuestion: true,
	})
	require.NoError(t, err)
	makeChoice(t, db, q.ID, "a", true)
	makeChoice(t, db, q.ID, "b", true)

	_, err = svc.UpdateQuestion(q.ID, owner.ID, QuestionInput{
		Text:           "pick one",
		Kind:           models.QuestionKindSingle,
		IsTestQuestion: true,
	})
	assert.Error(t, err, "SINGLE with two correct choices must be rejected")

	var stored models.Question
	require.NoError(t, db.First(&stored, q.ID).Error)
	assert.Equal(t, models.QuestionKindMulti, stored.Kind, "rejected update must not change the kind")

	// With one correct choice left the same change goes through.
	require.NoError(t, db.Model(&models.Choice{}).
		Where("question_id = ? AND text = ?", q.ID, "b").
		Update("is_correct", false).Error)

	updated, err := svc.UpdateQuestion(q.ID, owner.ID, QuestionInput{
		Text:           "pick one",
		Kind:           models.QuestionKindSingle,
		IsTestQuestion: true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.QuestionKindSingle, updated.Kind)

	var count int64
	db.Model(&models.Choice{}).Where("question_id = ? AND is_correct = ?", q.ID, true).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCorrectChoiceOnlyOnGradableQuestions(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPollService(db)
	owner := makeUser(t, db, "alice")
	poll, err := svc.CreatePoll(owner.ID, PollInput{Title: "p"})
	require.NoError(t, err)

	plain, err := svc.CreateQuestion(poll.ID, owner.ID, QuestionInput{Text: "opinion", Kind: models.QuestionKindSingle})
	require.NoError(t, err)

	_, err = svc.CreateChoice(plain.ID, owner.ID, ChoiceInput{Text: "x", IsCorrect: true})
	assert.Error(t, err, "correct flag on a non-test question must be rejected")
}

func TestUpdateQuestionDowngradeClearsCorrectFlags(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPollService(db)
	owner := makeUser(t, db, "alice")
	poll, err := svc.CreatePoll(owner.ID, PollInput{Title: "p"})
	require.NoError(t, err)

	q, err := svc.CreateQuestion(poll.ID, owner.ID, QuestionInput{
		Text:           "pick",
		Kind:           models.QuestionKindMulti,
		IsTestQuestion: true,
	})
	require.NoError(t, err)
	makeChoice(t, db, q.ID, "a", true)
	makeChoice(t, db, q.ID, "b", true)

	_, err = svc.UpdateQuestion(q.ID, owner.ID, QuestionInput{Text: "pick", Kind: models.QuestionKindMulti})
	require.NoError(t, err)

	var count int64
	db.Model(&models.Choice{}).Where("question_id = ? AND is_correct = ?", q.ID, true).Count(&count)
	assert.Zero(t, count)
}

func TestOwnershipScoping(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPollService(db)
	alice := makeUser(t, db, "alice")
	mallory := makeUser(t, db, "mallory")

	poll, err := svc.CreatePoll(alice.ID, PollInput{Title: "p"})
	require.NoError(t, err)

	_, err = svc.GetPollByID(poll.ID, mallory.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.CreateQuestion(poll.ID, mallory.ID, QuestionInput{Text: "q", Kind: models.QuestionKindText})
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.DeletePoll(poll.ID, mallory.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
