package services

import (
	"math"
	"strings"
	"time"

	"github.com/gamfolz-glitch/pollapp/internal/models"

	"gorm.io/gorm"
)

// StatsService computes aggregate read views over committed
// submissions. Every call reads fresh; there is no caching layer, and a
// snapshot taken mid-submission simply misses the uncommitted attempt.
type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

type ChoiceStat struct {
	ID      uint   `json:"id"`
	Text    string `json:"text"`
	Count   int    `json:"count"`
	Percent int    `json:"percent"`
}

type QuestionStat struct {
	ID               uint         `json:"id"`
	Kind             string       `json:"kind"`
	Text             string       `json:"text"`
	TextAnswersCount int          `json:"text_answers_count,omitempty"`
	Choices          []ChoiceStat `json:"choices"`
}

type PollStats struct {
	PollID           uint           `json:"poll_id"`
	TotalSubmissions int            `json:"total_submissions"`
	Questions        []QuestionStat `json:"questions"`
}

// Stats builds the per-question tally view: non-empty answer counts for
// TEXT questions, per-choice counts with percentages for the rest.
func (s *StatsService) Stats(pollID uint) (*PollStats, error) {
	var questions []models.Question
	err := s.db.Where("poll_id = ?", pollID).
		Order("order_num ASC, id ASC").
		Preload("Choices").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}

	var total int64
	if err := s.db.Model(&models.Submission{}).Where("poll_id = ?", pollID).Count(&total).Error; err != nil {
		return nil, err
	}

	stats := &PollStats{PollID: pollID, TotalSubmissions: int(total)}

	for _, q := range questions {
		qs := QuestionStat{ID: q.ID, Kind: q.Kind, Text: q.Text, Choices: []ChoiceStat{}}

		if q.Kind == models.QuestionKindText {
			var count int64
			err := s.db.Model(&models.Answer{}).
				Where("question_id = ? AND text_value != ''", q.ID).
				Count(&count).Error
			if err != nil {
				return nil, err
			}
			qs.TextAnswersCount = int(count)
			stats.Questions = append(stats.Questions, qs)
			continue
		}

		counts := make([]int, len(q.Choices))
		sum := 0
		for i, c := range q.Choices {
			var count int64
			err := s.db.Model(&models.Answer{}).
				Joins("JOIN answer_choices ON answer_choices.answer_id = answers.id").
				Where("answer_choices.choice_id = ?", c.ID).
				Count(&count).Error
			if err != nil {
				return nil, err
			}
			counts[i] = int(count)
			sum += int(count)
		}

		// Floor the denominator at 1 so an unanswered question reads as
		// all zeros instead of dividing by zero.
		denom := sum
		if denom < 1 {
			denom = 1
		}
		for i, c := range q.Choices {
			qs.Choices = append(qs.Choices, ChoiceStat{
				ID:      c.ID,
				Text:    c.Text,
				Count:   counts[i],
				Percent: int(math.Round(float64(counts[i]) / float64(denom) * 100)),
			})
		}
		stats.Questions = append(stats.Questions, qs)
	}

	return stats, nil
}

// UnansweredCell marks a question a submission gave no usable answer to.
const UnansweredCell = "—"

type ResponseCell struct {
	QuestionID uint   `json:"question_id"`
	Value      string `json:"value"`
	Answered   bool   `json:"answered"`
	IsCorrect  *bool  `json:"is_correct,omitempty"`
}

type ResponseRow struct {
	SubmissionID uint           `json:"submission_id"`
	Participant  string         `json:"participant"`
	CreatedAt    time.Time      `json:"created_at"`
	Score        int            `json:"score"`
	Total        int            `json:"total"`
	Cells        []ResponseCell `json:"cells"`
}

type PollResponses struct {
	PollID           uint          `json:"poll_id"`
	TotalSubmissions int           `json:"total_submissions"`
	HasTestQuestions bool          `json:"has_test_questions"`
	Rows             []ResponseRow `json:"rows"`
}

// Responses builds the per-submission table: one row per submission, one
// cell per question with the given text or joined choice texts.
func (s *StatsService) Responses(pollID uint) (*PollResponses, error) {
	var questions []models.Question
	err := s.db.Where("poll_id = ?", pollID).
		Order("order_num ASC, id ASC").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}

	var hasTest int64
	err = s.db.Model(&models.Question{}).
		Where("poll_id = ? AND is_test_question = ?", pollID, true).
		Count(&hasTest).Error
	if err != nil {
		return nil, err
	}

	var submissions []models.Submission
	err = s.db.Where("poll_id = ?", pollID).
		Order("created_at DESC, id DESC").
		Preload("User").
		Preload("Answers.Question.Choices").
		Preload("Answers.SelectedChoices").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}

	result := &PollResponses{
		PollID:           pollID,
		TotalSubmissions: len(submissions),
		HasTestQuestions: hasTest > 0,
		Rows:             []ResponseRow{},
	}

	for _, sub := range submissions {
		participant := "Anonymous"
		if sub.User != nil {
			participant = sub.User.DisplayName()
		}

		row := ResponseRow{
			SubmissionID: sub.ID,
			Participant:  participant,
			CreatedAt:    sub.CreatedAt,
			Score:        sub.Score,
			Total:        sub.Total,
		}

		for _, q := range questions {
			var answer *models.Answer
			for i := range sub.Answers {
				if sub.Answers[i].QuestionID == q.ID {
					answer = &sub.Answers[i]
					break
				}
			}

			cell := ResponseCell{QuestionID: q.ID, Value: UnansweredCell}

			if q.Kind == models.QuestionKindText {
				if answer != nil && strings.TrimSpace(answer.TextValue) != "" {
					cell.Value = strings.TrimSpace(answer.TextValue)
					cell.Answered = true
				}
			} else if answer != nil && len(answer.SelectedChoices) > 0 {
				texts := make([]string, len(answer.SelectedChoices))
				for i, c := range answer.SelectedChoices {
					texts[i] = c.Text
				}
				cell.Value = strings.Join(texts, ", ")
				cell.Answered = true
				cell.IsCorrect = AnswerIsCorrect(answer.Question, answer.SelectedChoices)
			}

			row.Cells = append(row.Cells, cell)
		}

		result.Rows = append(result.Rows, row)
	}

	return result, nil
}

type LiveChoice struct {
	ID    uint   `json:"id"`
	Text  string `json:"text"`
	Count int    `json:"count"`
}

type LiveQuestion struct {
	ID      uint         `json:"id"`
	Kind    string       `json:"kind"`
	Text    string       `json:"text"`
	Count   int          `json:"count"`
	Choices []LiveChoice `json:"choices,omitempty"`
}

type LiveSnapshot struct {
	PollID           uint           `json:"poll_id"`
	Title            string         `json:"title"`
	TotalSubmissions int            `json:"total_submissions"`
	Questions        []LiveQuestion `json:"questions"`
}

// Live builds the lightweight snapshot the presentation view polls for
// and the websocket hub pushes after each commit.
func (s *StatsService) Live(accessCode string) (*LiveSnapshot, error) {
	accessCode = strings.ToUpper(strings.TrimSpace(accessCode))
	var poll models.Poll
	if err := s.db.Where("access_code = ?", accessCode).First(&poll).Error; err != nil {
		return nil, ErrNotFound
	}

	var total int64
	if err := s.db.Model(&models.Submission{}).Where("poll_id = ?", poll.ID).Count(&total).Error; err != nil {
		return nil, err
	}

	var questions []models.Question
	err := s.db.Where("poll_id = ?", poll.ID).
		Order("order_num ASC, id ASC").
		Preload("Choices").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}

	snapshot := &LiveSnapshot{PollID: poll.ID, Title: poll.Title, TotalSubmissions: int(total)}

	for _, q := range questions {
		lq := LiveQuestion{ID: q.ID, Kind: q.Kind, Text: q.Text}

		if q.Kind == models.QuestionKindText {
			var count int64
			err := s.db.Model(&models.Answer{}).
				Where("question_id = ? AND text_value != ''", q.ID).
				Count(&count).Error
			if err != nil {
				return nil, err
			}
			lq.Count = int(count)
		} else {
			for _, c := range q.Choices {
				var count int64
				err := s.db.Model(&models.Answer{}).
					Joins("JOIN answer_choices ON answer_choices.answer_id = answers.id").
					Where("answer_choices.choice_id = ?", c.ID).
					Count(&count).Error
				if err != nil {
					return nil, err
				}
				lq.Count += int(count)
				lq.Choices = append(lq.Choices, LiveChoice{ID: c.ID, Text: c.Text, Count: int(count)})
			}
		}
		snapshot.Questions = append(snapshot.Questions, lq)
	}

	return snapshot, nil
}
