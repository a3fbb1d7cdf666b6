// Package review contains the pure logic behind weekly review artifacts:
// ISO week bucketing and the markdown layout with preserved reflections.
package review

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var weekIDPattern = regexp.MustCompile(`^(\d{4})-W(\d{2})$`)

// WeekID returns the ISO week id (YYYY-W##, weeks start on Monday) of t.
func WeekID(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// ParseWeekID splits a week id into ISO year and week number.
func ParseWeekID(id string) (int, int, error) {
	m := weekIDPattern.FindStringSubmatch(id)
	if m == nil {
		return 0, 0, fmt.Errorf("invalid week id %q (expected YYYY-W##)", id)
	}
	year, _ := strconv.Atoi(m[1])
	week, _ := strconv.Atoi(m[2])
	if week < 1 || week > 53 {
		return 0, 0, fmt.Errorf("invalid week id %q: week must be 1-53", id)
	}
	return year, week, nil
}

// WeekStart returns Monday 00:00 of the ISO week in loc.
func WeekStart(year, week int, loc *time.Location) time.Time {
	// January 4th always falls in ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, loc)
	offset := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -offset)
	return monday.AddDate(0, 0, (week-1)*7)
}
