package item

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// DefaultDueIn is the due-date offset applied when none is given.
const DefaultDueIn = 7 * 24 * time.Hour

var dueParser = newDueParser()

func newDueParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// ParseDue resolves a due date relative to now. Accepts RFC3339, YYYY-MM-DD
// and natural language such as "next friday" or "in 3 days". Empty input
// means one week from now.
func ParseDue(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return now.Add(DefaultDueIn), nil
	}
	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", input, now.Location()); err == nil {
		return t, nil
	}

	r, err := dueParser.Parse(input, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q: %w", input, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("invalid due date %q: expected a date like 2025-01-31 or \"next friday\"", input)
	}
	return r.Time, nil
}
