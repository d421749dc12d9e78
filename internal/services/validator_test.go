package services

import (
	"fmt"
	"testing"

	"github.com/gamfolz-glitch/pollapp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func choiceFixture(id uint, text string) models.Choice {
	return models.Choice{ID: id, Text: text}
}

func validatorQuestions() []models.Question {
	return []models.Question{
		{ID: 1, Kind: models.QuestionKindText, OrderNum: 1},
		{ID: 2, Kind: models.QuestionKindSingle, OrderNum: 2, Choices: []models.Choice{
			choiceFixture(10, "a"), choiceFixture(11, "b"),
		}},
		{ID: 3, Kind: models.QuestionKindMulti, OrderNum: 3, Choices: []models.Choice{
			choiceFixture(20, "x"), choiceFixture(21, "y"), choiceFixture(22, "z"),
		}},
	}
}

func TestValidateFullValidPayload(t *testing.T) {
	svc := NewValidatorService()

	answers, errs := svc.Validate(validatorQuestions(), AnswerPayload{
		1: {"  hello  "},
		2: {"11"},
		3: {"20", "22"},
	})
	require.Nil(t, errs)
	require.Len(t, answers, 3)

	assert.Equal(t, "hello", answers[0].Text)
	require.NotNil(t, answers[1].Choice)
	assert.Equal(t, uint(11), answers[1].Choice.ID)
	require.Len(t, answers[2].Choices, 2)
	assert.Equal(t, uint(20), answers[2].Choices[0].ID)
	assert.Equal(t, uint(22), answers[2].Choices[1].ID)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	svc := NewValidatorService()

	answers, errs := svc.Validate(validatorQuestions(), AnswerPayload{
		1: {"   "},
		2: {"999"},
		3: {},
	})
	assert.Nil(t, answers, "no partial answer set on failure")
	require.Len(t, errs, 3)

	byQuestion := map[uint]string{}
	for _, fe := range errs {
		byQuestion[fe.QuestionID] = fe.Message
	}
	assert.Equal(t, "enter an answer", byQuestion[1])
	assert.Equal(t, "invalid option", byQuestion[2])
	assert.Equal(t, "select at least one", byQuestion[3])
}

func TestValidateTextRules(t *testing.T) {
	svc := NewValidatorService()
	questions := []models.Question{{ID: 1, Kind: models.QuestionKindText}}

	tests := []struct {
		name    string
		values  []string
		wantErr string
	}{
		{"missing", nil, "enter an answer"},
		{"empty", []string{""}, "enter an answer"},
		{"whitespace", []string{"   "}, "enter an answer"},
		{"valid", []string{"Alice"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers, errs := svc.Validate(questions, AnswerPayload{1: tt.values})
			if tt.wantErr == "" {
				require.Nil(t, errs)
				require.Len(t, answers, 1)
				return
			}
			require.Len(t, errs, 1)
			assert.Equal(t, tt.wantErr, errs[0].Message)
		})
	}
}

func TestValidateSingleRules(t *testing.T) {
	svc := NewValidatorService()
	questions := []models.Question{
		{ID: 2, Kind: models.QuestionKindSingle, Choices: []models.Choice{choiceFixture(10, "a"), choiceFixture(11, "b")}},
	}

	tests := []struct {
		name    string
		values  []string
		wantErr string
	}{
		{"missing", nil, "select exactly one option"},
		{"two submitted", []string{"10", "11"}, "select exactly one option"},
		{"not a number", []string{"abc"}, "select exactly one option"},
		{"zero id", []string{"0"}, "invalid option"},
		{"foreign choice", []string{"99"}, "invalid option"},
		{"valid", []string{"10"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers, errs := svc.Validate(questions, AnswerPayload{2: tt.values})
			if tt.wantErr == "" {
				require.Nil(t, errs)
				require.NotNil(t, answers[0].Choice)
				assert.Equal(t, uint(10), answers[0].Choice.ID)
				return
			}
			require.Len(t, errs, 1)
			assert.Equal(t, tt.wantErr, errs[0].Message)
		})
	}
}

func TestValidateMultiRules(t *testing.T) {
	svc := NewValidatorService()
	questions := []models.Question{
		{ID: 3, Kind: models.QuestionKindMulti, Choices: []models.Choice{choiceFixture(20, "x"), choiceFixture(21, "y")}},
	}

	t.Run("empty submission", func(t *testing.T) {
		_, errs := svc.Validate(questions, AnswerPayload{3: {}})
		require.Len(t, errs, 1)
		assert.Equal(t, "select at least one", errs[0].Message)
	})

	t.Run("nothing resolves", func(t *testing.T) {
		_, errs := svc.Validate(questions, AnswerPayload{3: {"98", "99"}})
		require.Len(t, errs, 1)
		assert.Equal(t, "select at least one valid option", errs[0].Message)
	})

	t.Run("invalid ids dropped when some resolve", func(t *testing.T) {
		answers, errs := svc.Validate(questions, AnswerPayload{3: {"20", "99"}})
		require.Nil(t, errs)
		require.Len(t, answers[0].Choices, 1)
		assert.Equal(t, uint(20), answers[0].Choices[0].ID)
	})

	t.Run("duplicates collapsed", func(t *testing.T) {
		answers, errs := svc.Validate(questions, AnswerPayload{3: {"20", "20", "21"}})
		require.Nil(t, errs)
		assert.Len(t, answers[0].Choices, 2)
	})
}

func TestValidationErrorsMessage(t *testing.T) {
	errs := ValidationErrors{{QuestionID: 1, Message: "enter an answer"}}
	assert.Equal(t, fmt.Sprintf("validation failed for %d question(s)", 1), errs.Error())
}
