package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers polls, questions and choices that do not resolve.
	ErrNotFound = errors.New("not found")

	// ErrAlreadySubmitted blocks a second attempt on a once-only poll.
	ErrAlreadySubmitted = errors.New("already submitted")

	// ErrSessionExpired means a time-limited poll has no start record for
	// this session; the participant has to restart the poll.
	ErrSessionExpired = errors.New("session expired, restart the poll")
)

// TimeExceededError reports a submission that arrived after the poll's
// time limit ran out. Nothing is persisted for such an attempt.
type TimeExceededError struct {
	ElapsedMinutes int
	LimitMinutes   int
}

func (e *TimeExceededError) Error() string {
	return fmt.Sprintf("time exceeded: %d minutes elapsed, limit is %d", e.ElapsedMinutes, e.LimitMinutes)
}

// FieldError is a per-question validation failure.
type FieldError struct {
	QuestionID uint   `json:"question_id"`
	Message    string `json:"message"`
}

// ValidationErrors collects every failing question of one submission
// attempt; a non-empty list means nothing was persisted.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed for %d question(s)", len(v))
}
