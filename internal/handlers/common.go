package handlers

import "github.com/gamfolz-glitch/pollapp/internal/models"

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

type MessageResponse struct {
	Message string `json:"message" example:"operation successful"`
}

// Type aliases so swag can resolve models in annotations.
type Poll = models.Poll
type Question = models.Question
type Choice = models.Choice
type Submission = models.Submission
