package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	dom "taskdeck/internal/domain"
)

const (
	summaryLimit  = 15
	priorityLimit = 10
	chatLimit     = 20
	topPicks      = 3

	draftTitleLimit   = 50
	draftLowConfid    = 0.5
	draftParsedConfid = 0.9
)

// Priorities is the advisory priority suggestion. Suggestions are chosen by
// the backend (first pending titles); the model only supplies the reasoning
// narration.
type Priorities struct {
	Suggestions  []string
	Reasoning    string
	TotalPending int
}

// Assistant produces non-authoritative text suggestions over task data.
// Every operation is read-only with respect to the task store and always
// yields a usable result, even with no provider configured.
type Assistant struct {
	client *Client
}

func NewAssistant(client *Client) *Assistant {
	return &Assistant{client: client}
}

// SummarizeTasks asks for a friendly summary of up to 15 tasks.
func (a *Assistant) SummarizeTasks(ctx context.Context, tasks []dom.Task) string {
	if len(tasks) == 0 {
		return "Your task list is clear! Start adding some tasks."
	}
	if len(tasks) > summaryLimit {
		tasks = tasks[:summaryLimit]
	}
	var b strings.Builder
	for _, t := range tasks {
		fmt.Fprintf(&b, "- %s (%s)\n", t.Title, t.Status)
	}
	prompt := "Summarize these tasks for me in a friendly, concise way:\n" + b.String()
	return a.client.Complete(ctx, "You are a helpful and encouraging task assistant.", prompt)
}

// SuggestPriorities picks the top pending tasks. The suggestion list is
// deterministic; the provider only explains the choice.
func (a *Assistant) SuggestPriorities(ctx context.Context, tasks []dom.Task) Priorities {
	var pending []dom.Task
	for _, t := range tasks {
		if t.Status == dom.StatusPending {
			pending = append(pending, t)
		}
	}
	if len(pending) == 0 {
		return Priorities{
			Suggestions: []string{},
			Reasoning:   "You've finished everything! Time for a break?",
		}
	}

	listed := pending
	if len(listed) > priorityLimit {
		listed = listed[:priorityLimit]
	}
	var b strings.Builder
	for _, t := range listed {
		fmt.Fprintf(&b, "- %s (Due: %s)\n", t.Title, dueLabel(t.DueDate))
	}
	prompt := "Which 3 tasks from this list should I focus on? Explain why briefly:\n" + b.String()
	reasoning := a.client.Complete(ctx, "You are a productivity expert.", prompt)

	n := topPicks
	if len(pending) < n {
		n = len(pending)
	}
	suggestions := make([]string, 0, n)
	for _, t := range pending[:n] {
		suggestions = append(suggestions, t.Title)
	}
	return Priorities{Suggestions: suggestions, Reasoning: reasoning, TotalPending: len(pending)}
}

// draftPayload is the JSON shape the provider is asked to emit.
type draftPayload struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
}

// ParseDraft turns free text into a tentative task draft. The provider's
// reply is scanned for the first brace-delimited substring; anything that
// fails to parse degrades to a default draft built from the raw input.
func (a *Assistant) ParseDraft(ctx context.Context, text string, now time.Time) dom.Draft {
	today := now.Format("2006-01-02 (Monday)")
	prompt := fmt.Sprintf("Today is %s. Convert this text into a JSON object for a task. Text: %q. "+
		"Return ONLY JSON with keys: title, description, due_date (YYYY-MM-DD or null).", today, text)
	reply := a.client.Complete(ctx, "You are a data extractor. Return only valid JSON.", prompt)

	draft := dom.Draft{Title: truncateRunes(text, draftTitleLimit), Confidence: draftLowConfid}

	raw, ok := extractJSONObject(reply)
	if !ok {
		return draft
	}
	var parsed draftPayload
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return draft
	}

	if parsed.Title != "" {
		draft.Title = parsed.Title
	}
	if parsed.Description != nil {
		draft.Description = *parsed.Description
	}
	if parsed.DueDate != nil {
		// An unparseable date is dropped but the draft still counts as parsed.
		if d, err := time.Parse("2006-01-02", *parsed.DueDate); err == nil {
			d = d.UTC()
			draft.DueDate = &d
		}
	}
	draft.Confidence = draftParsedConfid
	return draft
}

// Chat answers a free-form question with the user's recent tasks as context.
// The provider's reply is returned verbatim.
func (a *Assistant) Chat(ctx context.Context, message string, tasks []dom.Task) string {
	if len(tasks) > chatLimit {
		tasks = tasks[:chatLimit]
	}
	var b strings.Builder
	b.WriteString("USER TASKS:\n")
	for _, t := range tasks {
		fmt.Fprintf(&b, "- %s (%s)\n", t.Title, t.Status)
	}
	prompt := b.String() + "\nUser Question: " + message
	return a.client.Complete(ctx,
		"You are a helpful companion for this task manager. You know all the user's tasks "+
			"and you're here to help them brainstorm, organize, or just chat.",
		prompt)
}

// DailyPlan asks for a plan for today. The prompt is fixed; the provider
// does its own reasoning.
func (a *Assistant) DailyPlan(ctx context.Context) string {
	return a.client.Complete(ctx, "You are a daily planner.",
		"Look at my tasks and give me a quick plan for today.")
}

// extractJSONObject returns the first top-level {...} substring of s with
// newlines stripped, or ok=false when there is none.
func extractJSONObject(s string) (string, bool) {
	s = strings.ReplaceAll(s, "\n", "")
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	end := strings.LastIndexByte(s, '}')
	if end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func dueLabel(d *time.Time) string {
	if d == nil {
		return "None"
	}
	return d.Format("2006-01-02")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
