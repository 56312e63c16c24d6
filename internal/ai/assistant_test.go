package ai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dom "taskdeck/internal/domain"

	"github.com/stretchr/testify/require"
)

// assistantWithReply builds an Assistant whose (free) provider always
// answers with the given text.
func assistantWithReply(t *testing.T, reply string) (*Assistant, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(reply))
	}))
	client := NewClient(Options{FreeURL: srv.URL, FreeTimeout: time.Second})
	return NewAssistant(client), srv
}

// degradedAssistant has no providers at all.
func degradedAssistant() *Assistant {
	return NewAssistant(NewClient(Options{}))
}

func pendingTask(title string) dom.Task {
	return dom.Task{Title: title, Status: dom.StatusPending}
}

func TestSummarizeTasks_Empty(t *testing.T) {
	a := degradedAssistant()
	got := a.SummarizeTasks(context.Background(), nil)
	require.Equal(t, "Your task list is clear! Start adding some tasks.", got)
}

func TestSummarizeTasks_Degraded(t *testing.T) {
	a := degradedAssistant()
	got := a.SummarizeTasks(context.Background(), []dom.Task{pendingTask("write report")})
	require.NotEmpty(t, got)
	require.Equal(t, msgNoKey, got)
}

func TestSuggestPriorities_DeterministicPicks(t *testing.T) {
	a, srv := assistantWithReply(t, "focus on the first three, obviously")
	defer srv.Close()

	tasks := []dom.Task{
		pendingTask("one"),
		{Title: "done already", Status: dom.StatusCompleted},
		pendingTask("two"),
		pendingTask("three"),
		pendingTask("four"),
	}
	got := a.SuggestPriorities(context.Background(), tasks)

	// The backend picks the suggestions; the model only narrates.
	require.Equal(t, []string{"one", "two", "three"}, got.Suggestions)
	require.Equal(t, "focus on the first three, obviously", got.Reasoning)
	require.Equal(t, 4, got.TotalPending)
}

func TestSuggestPriorities_NothingPending(t *testing.T) {
	a := degradedAssistant()
	got := a.SuggestPriorities(context.Background(), []dom.Task{
		{Title: "done", Status: dom.StatusCompleted},
	})
	require.Empty(t, got.Suggestions)
	require.Equal(t, "You've finished everything! Time for a break?", got.Reasoning)
	require.Equal(t, 0, got.TotalPending)
}

func TestSuggestPriorities_FewerThanThree(t *testing.T) {
	a, srv := assistantWithReply(t, "just do it")
	defer srv.Close()

	got := a.SuggestPriorities(context.Background(), []dom.Task{pendingTask("only one")})
	require.Equal(t, []string{"only one"}, got.Suggestions)
	require.Equal(t, 1, got.TotalPending)
}

func TestParseDraft_ValidJSON(t *testing.T) {
	a, srv := assistantWithReply(t,
		"Here you go:\n{\"title\": \"Dentist appointment\", \"description\": \"routine checkup\", \"due_date\": \"2026-09-15\"}\nanything else?")
	defer srv.Close()

	draft := a.ParseDraft(context.Background(), "dentist next week", time.Now())
	require.Equal(t, "Dentist appointment", draft.Title)
	require.Equal(t, "routine checkup", draft.Description)
	require.NotNil(t, draft.DueDate)
	require.Equal(t, "2026-09-15", draft.DueDate.Format("2006-01-02"))
	require.InDelta(t, 0.9, draft.Confidence, 0.001)
}

func TestParseDraft_NoJSONFallsBack(t *testing.T) {
	a, srv := assistantWithReply(t, "sorry, I can't help with that")
	defer srv.Close()

	input := "remind me to water the plants tomorrow morning before work because they are thirsty"
	draft := a.ParseDraft(context.Background(), input, time.Now())
	require.Equal(t, input[:50], draft.Title)
	require.Empty(t, draft.Description)
	require.Nil(t, draft.DueDate)
	require.InDelta(t, 0.5, draft.Confidence, 0.001)
}

func TestParseDraft_MalformedJSONFallsBack(t *testing.T) {
	a, srv := assistantWithReply(t, "{not json at all}")
	defer srv.Close()

	draft := a.ParseDraft(context.Background(), "short input", time.Now())
	require.Equal(t, "short input", draft.Title)
	require.InDelta(t, 0.5, draft.Confidence, 0.001)
}

func TestParseDraft_BadDateStillParsed(t *testing.T) {
	a, srv := assistantWithReply(t, `{"title": "t", "due_date": "next tuesday"}`)
	defer srv.Close()

	draft := a.ParseDraft(context.Background(), "whatever", time.Now())
	require.Equal(t, "t", draft.Title)
	require.Nil(t, draft.DueDate)
	require.InDelta(t, 0.9, draft.Confidence, 0.001)
}

func TestParseDraft_Degraded(t *testing.T) {
	// The degraded-mode message contains no JSON, so the default draft wins.
	a := degradedAssistant()
	draft := a.ParseDraft(context.Background(), "buy milk", time.Now())
	require.Equal(t, "buy milk", draft.Title)
	require.InDelta(t, 0.5, draft.Confidence, 0.001)
}

func TestChat_ContextRendering(t *testing.T) {
	var prompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		prompt = string(body)
		_, _ = w.Write([]byte("model reply"))
	}))
	defer srv.Close()

	a := NewAssistant(NewClient(Options{FreeURL: srv.URL, FreeTimeout: time.Second}))
	got := a.Chat(context.Background(), "what should I do first?", []dom.Task{pendingTask("ship release")})

	require.Equal(t, "model reply", got)
	require.Contains(t, prompt, "- ship release (pending)")
	require.Contains(t, prompt, "User Question: what should I do first?")
}

func TestDailyPlan_Degraded(t *testing.T) {
	a := degradedAssistant()
	require.NotEmpty(t, a.DailyPlan(context.Background()))
}

func TestExtractJSONObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{`prefix {"a":1} suffix`, `{"a":1}`, true},
		{"{\"a\":\n1}", `{"a":1}`, true},
		{"no braces here", "", false},
		{"} reversed {", "", false},
	}
	for _, c := range cases {
		got, ok := extractJSONObject(c.in)
		require.Equal(t, c.ok, ok, c.in)
		if ok {
			require.Equal(t, c.want, got, c.in)
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	require.Equal(t, "abc", truncateRunes("abc", 50))
	require.Equal(t, strings.Repeat("x", 50), truncateRunes(strings.Repeat("x", 60), 50))
	// Multibyte input is cut on rune boundaries.
	require.Equal(t, "日本語", truncateRunes("日本語のテキスト", 3))
}
