package recurrence

import (
	"errors"
	"testing"
	"time"

	"github.com/klokku/monthcal/pkg/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.Local)
}

func endOfDay(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 23, 59, 59, 999_000_000, time.Local)
}

func recurringEvent(start time.Time, duration time.Duration, pattern calendar.RecurrencePattern) calendar.Event {
	return calendar.Event{
		ID:          "base",
		Title:       "Standup",
		StartDate:   start,
		EndDate:     start.Add(duration),
		Color:       calendar.ColorBlue,
		Category:    calendar.CategoryWork,
		IsRecurring: true,
		Recurrence:  &pattern,
	}
}

func starts(events []calendar.Event) []time.Time {
	result := make([]time.Time, 0, len(events))
	for _, e := range events {
		result = append(result, e.StartDate)
	}
	return result
}

func ids(events []calendar.Event) []string {
	result := make([]string, 0, len(events))
	for _, e := range events {
		result = append(result, e.ID)
	}
	return result
}

func TestExpand_NonRecurringPassthrough(t *testing.T) {
	event := calendar.Event{
		ID:        "single",
		Title:     "Dentist",
		StartDate: time.Date(2024, 1, 3, 10, 0, 0, 0, time.Local),
		EndDate:   time.Date(2024, 1, 3, 11, 0, 0, 0, time.Local),
	}

	t.Run("flag unset", func(t *testing.T) {
		got, err := Expand(event, day(2030, 1, 1), day(2031, 1, 1))

		require.NoError(t, err)
		assert.Equal(t, []calendar.Event{event}, got)
	})

	t.Run("flag set without pattern", func(t *testing.T) {
		event := event
		event.IsRecurring = true

		got, err := Expand(event, day(2024, 1, 1), day(2024, 2, 1))

		require.NoError(t, err)
		assert.Equal(t, []calendar.Event{event}, got)
	})

	t.Run("pattern present but flag unset", func(t *testing.T) {
		event := event
		event.Recurrence = &calendar.RecurrencePattern{Type: calendar.Daily, Interval: 1}

		got, err := Expand(event, day(2024, 1, 1), day(2024, 2, 1))

		require.NoError(t, err)
		assert.Equal(t, []calendar.Event{event}, got)
	})
}

func TestExpand_DailyStandup(t *testing.T) {
	base := recurringEvent(time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local), 30*time.Minute,
		calendar.RecurrencePattern{Type: calendar.Daily, Interval: 1})

	got, err := Expand(base, day(2024, 1, 1), endOfDay(2024, 1, 5))

	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, []string{"base-0", "base-1", "base-2", "base-3", "base-4"}, ids(got))
	for i, occurrence := range got {
		assert.Equal(t, time.Date(2024, 1, 1+i, 9, 0, 0, 0, time.Local), occurrence.StartDate)
		assert.Equal(t, 30*time.Minute, occurrence.Duration())
		assert.Equal(t, "base", occurrence.OriginalEventID)
		assert.Equal(t, base.Title, occurrence.Title)
		assert.Equal(t, base.Category, occurrence.Category)
		assert.Equal(t, base.Color, occurrence.Color)
	}
}

func TestExpand_WeeklyDaysOfWeek(t *testing.T) {
	// 2024-01-01 is a Monday.
	base := recurringEvent(time.Date(2024, 1, 1, 18, 0, 0, 0, time.Local), time.Hour,
		calendar.RecurrencePattern{Type: calendar.Weekly, Interval: 1, DaysOfWeek: []int{1, 3, 5}})

	got, err := Expand(base, day(2024, 1, 1), day(2024, 1, 8))

	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		time.Date(2024, 1, 1, 18, 0, 0, 0, time.Local),
		time.Date(2024, 1, 3, 18, 0, 0, 0, time.Local),
		time.Date(2024, 1, 5, 18, 0, 0, 0, time.Local),
	}, starts(got))
	assert.Equal(t, time.Monday, got[0].StartDate.Weekday())
	assert.Equal(t, time.Wednesday, got[1].StartDate.Weekday())
	assert.Equal(t, time.Friday, got[2].StartDate.Weekday())
}

func TestExpand_StepRules(t *testing.T) {
	start := time.Date(2024, 1, 31, 8, 0, 0, 0, time.Local)
	testCases := []struct {
		name    string
		pattern calendar.RecurrencePattern
		want    []time.Time
	}{
		{
			name:    "daily every third day",
			pattern: calendar.RecurrencePattern{Type: calendar.Daily, Interval: 3},
			want: []time.Time{
				time.Date(2024, 1, 31, 8, 0, 0, 0, time.Local),
				time.Date(2024, 2, 3, 8, 0, 0, 0, time.Local),
				time.Date(2024, 2, 6, 8, 0, 0, 0, time.Local),
			},
		},
		{
			name:    "custom behaves like daily",
			pattern: calendar.RecurrencePattern{Type: calendar.Custom, Interval: 2},
			want: []time.Time{
				time.Date(2024, 1, 31, 8, 0, 0, 0, time.Local),
				time.Date(2024, 2, 2, 8, 0, 0, 0, time.Local),
				time.Date(2024, 2, 4, 8, 0, 0, 0, time.Local),
			},
		},
		{
			name:    "weekly without days adds interval weeks",
			pattern: calendar.RecurrencePattern{Type: calendar.Weekly, Interval: 2},
			want: []time.Time{
				time.Date(2024, 1, 31, 8, 0, 0, 0, time.Local),
				time.Date(2024, 2, 14, 8, 0, 0, 0, time.Local),
				time.Date(2024, 2, 28, 8, 0, 0, 0, time.Local),
			},
		},
		{
			name:    "weekly with unmatched weekdays falls back to interval weeks",
			pattern: calendar.RecurrencePattern{Type: calendar.Weekly, Interval: 1, DaysOfWeek: []int{9}},
			want: []time.Time{
				time.Date(2024, 1, 31, 8, 0, 0, 0, time.Local),
				time.Date(2024, 2, 7, 8, 0, 0, 0, time.Local),
				time.Date(2024, 2, 14, 8, 0, 0, 0, time.Local),
			},
		},
		{
			name:    "monthly without day clamps to month end",
			pattern: calendar.RecurrencePattern{Type: calendar.Monthly, Interval: 1},
			want: []time.Time{
				time.Date(2024, 1, 31, 8, 0, 0, 0, time.Local),
				time.Date(2024, 2, 29, 8, 0, 0, 0, time.Local),
				time.Date(2024, 3, 29, 8, 0, 0, 0, time.Local),
			},
		},
		{
			name:    "monthly with day of month rolls over short months",
			pattern: calendar.RecurrencePattern{Type: calendar.Monthly, Interval: 1, DayOfMonth: 31},
			want: []time.Time{
				time.Date(2024, 1, 31, 8, 0, 0, 0, time.Local),
				time.Date(2024, 3, 2, 8, 0, 0, 0, time.Local),
				time.Date(2024, 5, 1, 8, 0, 0, 0, time.Local),
			},
		},
		{
			name:    "monthly day of month is capped at 31",
			pattern: calendar.RecurrencePattern{Type: calendar.Monthly, Interval: 2, DayOfMonth: 45},
			want: []time.Time{
				time.Date(2024, 1, 31, 8, 0, 0, 0, time.Local),
				time.Date(2024, 3, 31, 8, 0, 0, 0, time.Local),
				time.Date(2024, 5, 31, 8, 0, 0, 0, time.Local),
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.pattern.EndAfterOccurrences = 3
			base := recurringEvent(start, time.Hour, tc.pattern)

			got, err := Expand(base, day(2024, 1, 1), day(2025, 1, 1))

			require.NoError(t, err)
			assert.Equal(t, tc.want, starts(got))
		})
	}
}

func TestExpand_Termination(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)

	t.Run("occurrence cap counts skipped steps", func(t *testing.T) {
		base := recurringEvent(start, time.Hour,
			calendar.RecurrencePattern{Type: calendar.Daily, Interval: 1, EndAfterOccurrences: 5})

		got, err := Expand(base, day(2024, 1, 4), day(2024, 2, 1))

		require.NoError(t, err)
		assert.Equal(t, []string{"base-3", "base-4"}, ids(got))
	})

	t.Run("end date is exclusive", func(t *testing.T) {
		endDate := time.Date(2024, 1, 4, 9, 0, 0, 0, time.Local)
		base := recurringEvent(start, time.Hour,
			calendar.RecurrencePattern{Type: calendar.Daily, Interval: 1, EndDate: &endDate})

		got, err := Expand(base, day(2024, 1, 1), day(2024, 2, 1))

		require.NoError(t, err)
		assert.Equal(t, []string{"base-0", "base-1", "base-2"}, ids(got))
	})

	t.Run("default cap of 365", func(t *testing.T) {
		base := recurringEvent(start, time.Hour, calendar.RecurrencePattern{Type: calendar.Daily, Interval: 1})

		got, err := Expand(base, day(2024, 1, 1), day(2030, 1, 1))

		require.NoError(t, err)
		assert.Len(t, got, DefaultMaxOccurrences)
		assert.Equal(t, "base-364", got[len(got)-1].ID)
	})

	t.Run("window end is exclusive", func(t *testing.T) {
		base := recurringEvent(start, time.Hour, calendar.RecurrencePattern{Type: calendar.Daily, Interval: 1})

		got, err := Expand(base, day(2024, 1, 1), time.Date(2024, 1, 3, 9, 0, 0, 0, time.Local))

		require.NoError(t, err)
		assert.Equal(t, []string{"base-0", "base-1"}, ids(got))
	})

	t.Run("window before pattern start", func(t *testing.T) {
		base := recurringEvent(start, time.Hour, calendar.RecurrencePattern{Type: calendar.Daily, Interval: 1})

		got, err := Expand(base, day(2023, 1, 1), day(2023, 12, 1))

		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestExpand_Properties(t *testing.T) {
	patterns := []calendar.RecurrencePattern{
		{Type: calendar.Daily, Interval: 2},
		{Type: calendar.Weekly, Interval: 1, DaysOfWeek: []int{0, 2, 4}},
		{Type: calendar.Weekly, Interval: 3},
		{Type: calendar.Monthly, Interval: 1, DayOfMonth: 15},
		{Type: calendar.Custom, Interval: 5, EndAfterOccurrences: 20},
	}
	start := time.Date(2024, 2, 10, 13, 15, 0, 0, time.Local)

	for _, pattern := range patterns {
		t.Run(string(pattern.Type), func(t *testing.T) {
			base := recurringEvent(start, 90*time.Minute, pattern)

			narrow, err := Expand(base, day(2024, 3, 1), day(2024, 6, 1))
			require.NoError(t, err)
			again, err := Expand(base, day(2024, 3, 1), day(2024, 6, 1))
			require.NoError(t, err)
			wide, err := Expand(base, day(2024, 1, 1), day(2024, 9, 1))
			require.NoError(t, err)

			// determinism
			assert.Equal(t, narrow, again)

			// horizon monotonicity
			assert.Subset(t, wide, narrow)

			// duration preservation
			for _, occurrence := range wide {
				assert.Equal(t, base.Duration(), occurrence.Duration())
			}
		})
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		pattern *calendar.RecurrencePattern
		field   string
	}{
		{name: "nil pattern", pattern: nil},
		{name: "valid", pattern: &calendar.RecurrencePattern{Type: calendar.Monthly, Interval: 1, DayOfMonth: 31}},
		{name: "zero interval", pattern: &calendar.RecurrencePattern{Type: calendar.Daily}, field: "interval"},
		{name: "negative interval", pattern: &calendar.RecurrencePattern{Type: calendar.Weekly, Interval: -2}, field: "interval"},
		{name: "unknown type", pattern: &calendar.RecurrencePattern{Type: "yearly", Interval: 1}, field: "type"},
		{name: "negative day of month", pattern: &calendar.RecurrencePattern{Type: calendar.Monthly, Interval: 1, DayOfMonth: -1}, field: "dayOfMonth"},
		{name: "negative cap", pattern: &calendar.RecurrencePattern{Type: calendar.Daily, Interval: 1, EndAfterOccurrences: -1}, field: "endAfterOccurrences"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.pattern)
			if tc.field == "" {
				assert.NoError(t, err)
				return
			}
			var configErr *ConfigurationError
			require.True(t, errors.As(err, &configErr))
			assert.Equal(t, tc.field, configErr.Field)
		})
	}
}

func TestExpand_RejectsInvalidPattern(t *testing.T) {
	base := recurringEvent(day(2024, 1, 1), time.Hour, calendar.RecurrencePattern{Type: calendar.Daily, Interval: 0})

	_, err := Expand(base, day(2024, 1, 1), day(2024, 2, 1))

	var configErr *ConfigurationError
	assert.ErrorAs(t, err, &configErr)
}

func TestExpandAll(t *testing.T) {
	single := calendar.Event{ID: "single", StartDate: day(2024, 1, 2), EndDate: day(2024, 1, 2).Add(time.Hour)}
	daily := recurringEvent(day(2024, 1, 1), time.Hour,
		calendar.RecurrencePattern{Type: calendar.Daily, Interval: 1, EndAfterOccurrences: 3})
	broken := recurringEvent(day(2024, 1, 1), time.Hour, calendar.RecurrencePattern{Type: calendar.Daily})
	broken.ID = "broken"

	got := ExpandAll([]calendar.Event{single, daily, broken}, day(2024, 1, 1), day(2024, 2, 1))

	assert.Equal(t, []string{"single", "base-0", "base-1", "base-2", "broken"}, ids(got))
}
