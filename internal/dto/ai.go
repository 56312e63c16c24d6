package dto

import "time"

// ParseDraftRequest is the JSON body for POST /ai/task-draft.
type ParseDraftRequest struct {
	Text string `json:"text" binding:"required"`
}

// DraftResponse is an unpersisted task draft pending user confirmation.
type DraftResponse struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Confidence  float64    `json:"confidence"`
}

type SummaryResponse struct {
	Summary string `json:"summary"`
}

type PrioritiesResponse struct {
	Suggestions  []string `json:"suggestions"`
	Reasoning    string   `json:"reasoning"`
	TotalPending int      `json:"total_pending"`
}

// ChatRequest is the JSON body for POST /ai/chat.
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

type PlanResponse struct {
	Plan string `json:"plan"`
}
