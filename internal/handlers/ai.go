package handlers

import (
	"net/http"
	"time"

	"taskdeck/internal/ai"
	"taskdeck/internal/auth"
	dom "taskdeck/internal/domain"
	"taskdeck/internal/dto"
	"taskdeck/internal/service"

	"github.com/gin-gonic/gin"
)

// chatContextLimit caps how many recent tasks are handed to the assistant
// as conversational context.
const chatContextLimit = 20

// AIHandler serves the advisory endpoints. All of them are read-only over
// the task store: a provider failure degrades to a canned reply, never to
// a request failure.
type AIHandler struct {
	assistant *ai.Assistant
	tasks     *service.TaskService
}

func NewAIHandler(assistant *ai.Assistant, tasks *service.TaskService) *AIHandler {
	return &AIHandler{assistant: assistant, tasks: tasks}
}

// TaskSummary godoc
// @Summary      Summarize the user's tasks
// @Tags         ai
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.SummaryResponse
// @Failure      500  {object}  map[string]string
// @Router       /ai/task-summary [get]
func (h *AIHandler) TaskSummary(c *gin.Context) {
	tasks, ok := h.allTasks(c)
	if !ok {
		return
	}
	summary := h.assistant.SummarizeTasks(c.Request.Context(), tasks)
	c.JSON(http.StatusOK, dto.SummaryResponse{Summary: summary})
}

// Priorities godoc
// @Summary      Suggest which tasks to focus on
// @Tags         ai
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.PrioritiesResponse
// @Failure      500  {object}  map[string]string
// @Router       /ai/priorities [get]
func (h *AIHandler) Priorities(c *gin.Context) {
	tasks, ok := h.allTasks(c)
	if !ok {
		return
	}
	p := h.assistant.SuggestPriorities(c.Request.Context(), tasks)
	c.JSON(http.StatusOK, dto.PrioritiesResponse{
		Suggestions:  p.Suggestions,
		Reasoning:    p.Reasoning,
		TotalPending: p.TotalPending,
	})
}

// TaskDraft godoc
// @Summary      Parse free text into a task draft
// @Tags         ai
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.ParseDraftRequest  true  "Free text"
// @Success      200   {object}  dto.DraftResponse
// @Failure      400   {object}  map[string]string
// @Router       /ai/task-draft [post]
func (h *AIHandler) TaskDraft(c *gin.Context) {
	var req dto.ParseDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	draft := h.assistant.ParseDraft(c.Request.Context(), req.Text, time.Now().UTC())

	resp := dto.DraftResponse{
		Title:      draft.Title,
		DueDate:    draft.DueDate,
		Confidence: draft.Confidence,
	}
	if draft.Description != "" {
		resp.Description = &draft.Description
	}
	c.JSON(http.StatusOK, resp)
}

// Chat godoc
// @Summary      Chat about your tasks
// @Tags         ai
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.ChatRequest  true  "Message"
// @Success      200   {object}  dto.ChatResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /ai/chat [post]
func (h *AIHandler) Chat(c *gin.Context) {
	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := auth.UserIDFromContext(c)
	tasks, err := h.tasks.Recent(c.Request.Context(), userID, chatContextLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	reply := h.assistant.Chat(c.Request.Context(), req.Message, tasks)
	c.JSON(http.StatusOK, dto.ChatResponse{Reply: reply})
}

// DailyPlan godoc
// @Summary      Get a plan for today
// @Tags         ai
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.PlanResponse
// @Router       /ai/daily-plan [get]
func (h *AIHandler) DailyPlan(c *gin.Context) {
	plan := h.assistant.DailyPlan(c.Request.Context())
	c.JSON(http.StatusOK, dto.PlanResponse{Plan: plan})
}

func (h *AIHandler) allTasks(c *gin.Context) ([]dom.Task, bool) {
	userID := auth.UserIDFromContext(c)
	tasks, err := h.tasks.List(c.Request.Context(), userID, dom.Filter{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return tasks, true
}
