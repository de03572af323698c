package tui

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/aussiebroadwan/clientdesk/pkg/clientsdk"
)

type sortKey int

const (
	sortByDate sortKey = iota
	sortByName
	sortByEmail
	sortKeyCount
)

func (k sortKey) String() string {
	switch k {
	case sortByName:
		return "name"
	case sortByEmail:
		return "email"
	default:
		return "date added"
	}
}

// sortClients orders clients in place. Date sorts newest first, name and
// email sort alphabetically ignoring case. Ties fall back to id descending.
func sortClients(clients []clientsdk.Client, by sortKey) {
	slices.SortStableFunc(clients, func(a, b clientsdk.Client) int {
		var c int
		switch by {
		case sortByName:
			c = cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		case sortByEmail:
			c = cmp.Compare(strings.ToLower(a.Email), strings.ToLower(b.Email))
		default:
			c = b.CreatedAt.Compare(a.CreatedAt)
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
}

// addedAgo renders t relative to now, e.g. "3 days ago".
func addedAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour") + " ago"
	case d < 30*24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day") + " ago"
	case d < 365*24*time.Hour:
		return plural(int(d/(30*24*time.Hour)), "month") + " ago"
	default:
		return plural(int(d/(365*24*time.Hour)), "year") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// truncateStr truncates a string to the specified length with ellipsis
func truncateStr(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
