package services

import (
	"strconv"
	"strings"

	"github.com/gamfolz-glitch/pollapp/internal/models"
)

// AnswerPayload maps a question id to the raw submitted values: one
// trimmed string for TEXT, one choice id for SINGLE, one or more choice
// ids for MULTI.
type AnswerPayload map[uint][]string

// ValidatedAnswer is the typed result of validation. Exactly one of
// Text, Choice or Choices is meaningful, selected by Question.Kind; it
// is constructed here once and never re-interpreted downstream.
type ValidatedAnswer struct {
	Question models.Question
	Text     string
	Choice   *models.Choice
	Choices  []models.Choice
}

type ValidatorService struct{}

func NewValidatorService() *ValidatorService {
	return &ValidatorService{}
}

// Validate checks the payload against every question independently and
// collects all failures; it returns either a full answer set or a
// non-empty error list, never both.
func (s *ValidatorService) Validate(questions []models.Question, payload AnswerPayload) ([]ValidatedAnswer, ValidationErrors) {
	var answers []ValidatedAnswer
	var errs ValidationErrors

	for _, q := range questions {
		values := payload[q.ID]

		switch q.Kind {
		case models.QuestionKindText:
			text := ""
			if len(values) > 0 {
				text = strings.TrimSpace(values[0])
			}
			if text == "" {
				errs = append(errs, FieldError{QuestionID: q.ID, Message: "enter an answer"})
				continue
			}
			answers = append(answers, ValidatedAnswer{Question: q, Text: text})

		case models.QuestionKindSingle:
			if len(values) != 1 {
				errs = append(errs, FieldError{QuestionID: q.ID, Message: "select exactly one option"})
				continue
			}
			id, err := strconv.ParseUint(strings.TrimSpace(values[0]), 10, 64)
			if err != nil {
				errs = append(errs, FieldError{QuestionID: q.ID, Message: "select exactly one option"})
				continue
			}
			// "0" never resolves, so it falls into the invalid-option case.
			choice := findChoice(q.Choices, uint(id))
			if choice == nil {
				errs = append(errs, FieldError{QuestionID: q.ID, Message: "invalid option"})
				continue
			}
			answers = append(answers, ValidatedAnswer{Question: q, Choice: choice})

		case models.QuestionKindMulti:
			if len(values) == 0 {
				errs = append(errs, FieldError{QuestionID: q.ID, Message: "select at least one"})
				continue
			}
			// Ids not belonging to this question are dropped; the answer
			// only fails when nothing submitted resolves.
			var selected []models.Choice
			for _, v := range values {
				id, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
				if err != nil {
					continue
				}
				if choice := findChoice(q.Choices, uint(id)); choice != nil && findChoice(selected, choice.ID) == nil {
					selected = append(selected, *choice)
				}
			}
			if len(selected) == 0 {
				errs = append(errs, FieldError{QuestionID: q.ID, Message: "select at least one valid option"})
				continue
			}
			answers = append(answers, ValidatedAnswer{Question: q, Choices: selected})
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return answers, nil
}

func findChoice(choices []models.Choice, id uint) *models.Choice {
	for i := range choices {
		if choices[i].ID == id {
			return &choices[i]
		}
	}
	return nil
}
