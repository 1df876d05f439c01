package hubstaff

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatActivitiesEmpty(t *testing.T) {
	text := FormatActivities("Acme", nil)
	require.Equal(t, "No activity recorded for Acme in the last 24 hours.", text)
}

func TestFormatActivitiesAggregatesPerUser(t *testing.T) {
	activities := []DailyActivity{
		{UserID: 1, Tracked: 3600, Overall: 1800, Billable: 3600},
		{UserID: 1, Tracked: 1800, Overall: 900, Billable: 0},
		{UserID: 2, Tracked: 7200, Overall: 7200, Billable: 7200},
	}

	text := FormatActivities("Acme", activities)
	require.Contains(t, text, "Activity report for Acme")
	require.Contains(t, text, "Total tracked: 3h 30m")
	require.Contains(t, text, "Productivity: 79%")

	// Sorted by tracked time, busiest first.
	require.Regexp(t, `(?s)user 2.*user 1`, text)
	require.Contains(t, text, "user 1: tracked 1h 30m")
	require.Contains(t, text, "user 2: tracked 2h 00m")
}
