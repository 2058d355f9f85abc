package progress

import (
	"sort"
	"time"
)

// ComputeStreak counts consecutive UTC days with at least one completion.
// The current streak only counts if the last active day is today or yesterday.
func ComputeStreak(activity []time.Time, now time.Time) (current, longest int) {
	if len(activity) == 0 {
		return 0, 0
	}

	days := make([]time.Time, 0, len(activity))
	seen := make(map[time.Time]bool)
	for _, t := range activity {
		d := t.UTC().Truncate(24 * time.Hour)
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	run := 0
	for i, d := range days {
		if i > 0 && int(d.Sub(days[i-1]).Hours()/24) == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	today := now.UTC().Truncate(24 * time.Hour)
	last := days[len(days)-1]
	switch int(today.Sub(last).Hours() / 24) {
	case 0, 1:
		current = run
	default:
		current = 0
	}
	return current, longest
}
