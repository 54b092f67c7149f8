package archive

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// TimeRange bounds the snapshots considered, inclusive at both ends
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// ParseTimeRange parses two YYYY-MM-DD dates
func ParseTimeRange(from, to string) (TimeRange, error) {
	start, err := time.Parse(dateLayout, from)
	if err != nil {
		return TimeRange{}, fmt.Errorf("parse start date: %w", err)
	}
	end, err := time.Parse(dateLayout, to)
	if err != nil {
		return TimeRange{}, fmt.Errorf("parse end date: %w", err)
	}
	if end.Before(start) {
		return TimeRange{}, fmt.Errorf("end date %s is before start date %s", to, from)
	}
	return TimeRange{Start: start, End: end}, nil
}

// Contains reports whether t falls within the range
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

func (r TimeRange) String() string {
	return r.Start.Format(dateLayout) + ".." + r.End.Format(dateLayout)
}

// ISOWeekStart returns the Monday of the given ISO 8601 week in UTC
func ISOWeekStart(year, week int) (time.Time, error) {
	if week < 1 || week > 53 {
		return time.Time{}, fmt.Errorf("week %d out of range", week)
	}
	// January 4th always falls in week 1
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -offset+(week-1)*7)

	if y, w := monday.ISOWeek(); y != year || w != week {
		return time.Time{}, fmt.Errorf("year %d has no ISO week %d", year, week)
	}
	return monday, nil
}
