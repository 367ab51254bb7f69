package attendance

import (
	"sort"
	"time"
)

// DuplicatesToRemove returns the IDs of records that share a user and day with
// another record, keeping the one with the earliest check-in (or creation time
// when nobody checked in).
func DuplicatesToRemove(records []Attendance) []string {
	type dayKey struct {
		userID string
		date   string
	}

	groups := make(map[dayKey][]Attendance)
	for _, r := range records {
		k := dayKey{userID: r.UserID, date: r.Date.Format("2006-01-02")}
		groups[k] = append(groups[k], r)
	}

	var remove []string
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		sort.SliceStable(group, func(i, j int) bool {
			a, b := firstSeen(group[i]), firstSeen(group[j])
			if a.Equal(b) {
				return group[i].ID < group[j].ID
			}
			return a.Before(b)
		})
		for _, r := range group[1:] {
			remove = append(remove, r.ID)
		}
	}

	sort.Strings(remove)
	return remove
}

func firstSeen(a Attendance) time.Time {
	if a.CheckInTime != nil {
		return *a.CheckInTime
	}
	return a.CreatedAt
}
