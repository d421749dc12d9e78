package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/gamfolz-glitch/pollapp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsEmptyPoll(t *testing.T) {
	db := setupTestDB(t)
	svc := NewStatsService(db)

	poll := makePoll(t, db, true, nil)
	single := makeQuestion(t, db, poll.ID, models.QuestionKindSingle, 1, false)
	makeChoice(t, db, single.ID, "a", false)
	makeChoice(t, db, single.ID, "b", false)

	stats, err := svc.Stats(poll.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalSubmissions)
	require.Len(t, stats.Questions, 1)

	// Denominator floored at 1: zero answers read as 0%, not NaN.
	for _, cs := range stats.Questions[0].Choices {
		assert.Zero(t, cs.Count)
		assert.Zero(t, cs.Percent)
	}
}

func TestStatsTallies(t *testing.T) {
	db := setupTestDB(t)
	submit := newSubmissionService(db, NewMemoryTimerStore())
	svc := NewStatsService(db)

	poll := makePoll(t, db, true, nil)
	text := makeQuestion(t, db, poll.ID, models.QuestionKindText, 1, false)
	single := makeQuestion(t, db, poll.ID, models.QuestionKindSingle, 2, false)
	a := makeChoice(t, db, single.ID, "a", false)
	b := makeChoice(t, db, single.ID, "b", false)

	picks := []uint{a.ID, a.ID, a.ID, b.ID}
	for i, choiceID := range picks {
		_, err := submit.Submit(context.Background(), poll.AccessCode, Identity{SessionKey: fmt.Sprintf("s%d", i)}, AnswerPayload{
			text.ID:   {fmt.Sprintf("answer %d", i)},
			single.ID: {fmt.Sprint(choiceID)},
		})
		require.NoError(t, err)
	}

	stats, err := svc.Stats(poll.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalSubmissions)
	require.Len(t, stats.Questions, 2)

	assert.Equal(t, models.QuestionKindText, stats.Questions[0].Kind)
	assert.Equal(t, 4, stats.Questions[0].TextAnswersCount)

	choiceStats := stats.Questions[1].Choices
	require.Len(t, choiceStats, 2)
	byText := map[string]ChoiceStat{}
	for _, cs := range choiceStats {
		byText[cs.Text] = cs
	}
	assert.Equal(t, 3, byText["a"].Count)
	assert.Equal(t, 75, byText["a"].Percent)
	assert.Equal(t, 1, byText["b"].Count)
	assert.Equal(t, 25, byText["b"].Percent)
}

func TestResponsesRows(t *testing.T) {
	db := setupTestDB(t)
	submit := newSubmissionService(db, NewMemoryTimerStore())
	svc := NewStatsService(db)

	poll := makePoll(t, db, true, nil)
	text := makeQuestion(t, db, poll.ID, models.QuestionKindText, 1, false)
	multi := makeQuestion(t, db, poll.ID, models.QuestionKindMulti, 2, true)
	x := makeChoice(t, db, multi.ID, "x", true)
	y := makeChoice(t, db, multi.ID, "y", true)
	user := makeUser(t, db, "alice")

	_, err := submit.Submit(context.Background(), poll.AccessCode, Identity{UserID: &user.ID, SessionKey: "s1"}, AnswerPayload{
		text.ID:  {"hello"},
		multi.ID: {fmt.Sprint(x.ID), fmt.Sprint(y.ID)},
	})
	require.NoError(t, err)

	responses, err := svc.Responses(poll.ID)
	require.NoError(t, err)
	assert.True(t, responses.HasTestQuestions)
	assert.Equal(t, 1, responses.TotalSubmissions)
	require.Len(t, responses.Rows, 1)

	row := responses.Rows[0]
	assert.Equal(t, "alice", row.Participant)
	assert.Equal(t, 1, row.Score)
	assert.Equal(t, 1, row.Total)
	require.Len(t, row.Cells, 2)

	assert.Equal(t, "hello", row.Cells[0].Value)
	assert.True(t, row.Cells[0].Answered)
	assert.Nil(t, row.Cells[0].IsCorrect)

	assert.Contains(t, []string{"x, y", "y, x"}, row.Cells[1].Value)
	require.NotNil(t, row.Cells[1].IsCorrect)
	assert.True(t, *row.Cells[1].IsCorrect)
}

func TestResponsesPlaceholderForMissingAnswers(t *testing.T) {
	db := setupTestDB(t)
	svc := NewStatsService(db)

	poll := makePoll(t, db, true, nil)
	makeQuestion(t, db, poll.ID, models.QuestionKindText, 1, false)

	// A submission written without answers (not reachable through the
	// committer, but the view must not choke on it).
	require.NoError(t, db.Create(&models.Submission{PollID: poll.ID, SessionKey: "s1"}).Error)

	responses, err := svc.Responses(poll.ID)
	require.NoError(t, err)
	require.Len(t, responses.Rows, 1)
	require.Len(t, responses.Rows[0].Cells, 1)

	cell := responses.Rows[0].Cells[0]
	assert.Equal(t, UnansweredCell, cell.Value)
	assert.False(t, cell.Answered)
	assert.Equal(t, "Anonymous", responses.Rows[0].Participant)
}

func TestLiveSnapshot(t *testing.T) {
	db := setupTestDB(t)
	submit := newSubmissionService(db, NewMemoryTimerStore())
	svc := NewStatsService(db)

	poll := makePoll(t, db, true, nil)
	single := makeQuestion(t, db, poll.ID, models.QuestionKindSingle, 1, false)
	a := makeChoice(t, db, single.ID, "a", false)
	makeChoice(t, db, single.ID, "b", false)

	_, err := svc.Live("NOPENOPE")
	assert.ErrorIs(t, err, ErrNotFound)

	for i := 0; i < 2; i++ {
		_, err := submit.Submit(context.Background(), poll.AccessCode, Identity{SessionKey: fmt.Sprintf("s%d", i)}, AnswerPayload{
			single.ID: {fmt.Sprint(a.ID)},
		})
		require.NoError(t, err)
	}

	snapshot, err := svc.Live(poll.AccessCode)
	require.NoError(t, err)
	assert.Equal(t, poll.ID, snapshot.PollID)
	assert.Equal(t, 2, snapshot.TotalSubmissions)
	require.Len(t, snapshot.Questions, 1)
	assert.Equal(t, 2, snapshot.Questions[0].Count)

	byText := map[string]int{}
	for _, lc := range snapshot.Questions[0].Choices {
		byText[lc.Text] = lc.Count
	}
	assert.Equal(t, 2, byText["a"])
	assert.Equal(t, 0, byText["b"])
}
