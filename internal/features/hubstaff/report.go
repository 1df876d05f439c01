package hubstaff

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// FormatActivities renders the last-24h summary sent to chat: overall
// totals, a productivity ratio, and a per-user breakdown sorted by
// tracked time.
func FormatActivities(orgName string, activities []DailyActivity) string {
	if len(activities) == 0 {
		return fmt.Sprintf("No activity recorded for %s in the last 24 hours.", orgName)
	}

	var totalTracked, totalOverall, totalBillable, totalManual, totalIdle int64
	perUser := make(map[int64]*DailyActivity)
	for _, a := range activities {
		totalTracked += a.Tracked
		totalOverall += a.Overall
		totalBillable += a.Billable
		totalManual += a.Manual
		totalIdle += a.Idle

		agg, ok := perUser[a.UserID]
		if !ok {
			agg = &DailyActivity{UserID: a.UserID}
			perUser[a.UserID] = agg
		}
		agg.Tracked += a.Tracked
		agg.Overall += a.Overall
		agg.Billable += a.Billable
	}

	users := make([]*DailyActivity, 0, len(perUser))
	for _, agg := range perUser {
		users = append(users, agg)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Tracked > users[j].Tracked })

	var b strings.Builder
	fmt.Fprintf(&b, "Activity report for %s (last 24h)\n\n", orgName)
	fmt.Fprintf(&b, "Total tracked: %s\n", formatDuration(totalTracked))
	fmt.Fprintf(&b, "Active: %s\n", formatDuration(totalOverall))
	fmt.Fprintf(&b, "Billable: %s\n", formatDuration(totalBillable))
	fmt.Fprintf(&b, "Manual: %s\n", formatDuration(totalManual))
	fmt.Fprintf(&b, "Idle: %s\n", formatDuration(totalIdle))
	if totalTracked > 0 {
		fmt.Fprintf(&b, "Productivity: %.0f%%\n", float64(totalOverall)/float64(totalTracked)*100)
	}

	b.WriteString("\nPer member:\n")
	for _, u := range users {
		fmt.Fprintf(&b, "- user %d: tracked %s, active %s, billable %s\n",
			u.UserID, formatDuration(u.Tracked), formatDuration(u.Overall), formatDuration(u.Billable))
	}

	return b.String()
}

func formatDuration(seconds int64) string {
	d := time.Duration(seconds) * time.Second
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 && m == 0 {
		return fmt.Sprintf("%ds", seconds%60)
	}
	return fmt.Sprintf("%dh %02dm", h, m)
}
