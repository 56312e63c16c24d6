package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDueDate_Unmarshal(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want *time.Time
		fail bool
	}{
		{"date only", `"2026-09-15"`, timePtr(2026, 9, 15, 0, 0), false},
		{"rfc3339", `"2026-09-15T14:30:00Z"`, timePtr(2026, 9, 15, 14, 30), false},
		{"null", `null`, nil, false},
		{"empty string", `""`, nil, false},
		{"garbage", `"next tuesday"`, nil, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var d DueDate
			err := json.Unmarshal([]byte(c.in), &d)
			if c.fail {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if c.want == nil {
				require.Nil(t, d.Ptr())
				return
			}
			require.NotNil(t, d.Ptr())
			require.True(t, c.want.Equal(*d.Ptr()))
		})
	}
}

func TestUpdateTaskRequest_DueDatePresence(t *testing.T) {
	var absent UpdateTaskRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title":"x"}`), &absent))
	require.False(t, absent.DueDate.Set)

	// An explicit null is a clear, not an omission.
	var cleared UpdateTaskRequest
	require.NoError(t, json.Unmarshal([]byte(`{"due_date":null}`), &cleared))
	require.True(t, cleared.DueDate.Set)
	require.Nil(t, cleared.DueDate.Ptr())

	var set UpdateTaskRequest
	require.NoError(t, json.Unmarshal([]byte(`{"due_date":"2026-09-15"}`), &set))
	require.True(t, set.DueDate.Set)
	require.NotNil(t, set.DueDate.Ptr())
}

func timePtr(year int, month time.Month, day, hour, min int) *time.Time {
	t := time.Date(year, month, day, hour, min, 0, 0, time.UTC)
	return &t
}
