package item

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/example/safer/internal/models"
)

// StandardDoD is the checklist seeded on every new item when none is given.
var StandardDoD = []string{
	"Outcome delivered to stakeholder",
	"Work reviewed and verified",
	"Learnings captured",
}

// NewDoDEntry builds an unchecked checklist entry with a short random id.
func NewDoDEntry(text string) models.DoDEntry {
	return models.DoDEntry{
		ID:   uuid.NewString()[:8],
		Text: text,
	}
}

// StandardDoDEntries returns fresh entries for StandardDoD.
func StandardDoDEntries() []models.DoDEntry {
	entries := make([]models.DoDEntry, 0, len(StandardDoD))
	for _, text := range StandardDoD {
		entries = append(entries, NewDoDEntry(text))
	}
	return entries
}

// CompletionRate is completed entries over total entries; 0 when there are none.
func CompletionRate(dod []models.DoDEntry) float64 {
	if len(dod) == 0 {
		return 0
	}
	done := 0
	for _, e := range dod {
		if e.Completed {
			done++
		}
	}
	return float64(done) / float64(len(dod))
}

// CycleTimeDays is the number of days between created and end, rounded up.
func CycleTimeDays(created, end time.Time) int {
	if !end.After(created) {
		return 0
	}
	days := end.Sub(created).Hours() / 24
	return int(math.Ceil(days))
}

// SessionMinutes totals the durations of finished sessions.
func SessionMinutes(sessions []models.FocusSession) int {
	total := 0
	for _, s := range sessions {
		if s.End != nil {
			total += s.DurationMinutes
		}
	}
	return total
}

// ComputeMetrics derives the completion metrics of an item as of now.
func ComputeMetrics(d *models.DeliveryItem, now time.Time) models.Metrics {
	return models.Metrics{
		CycleTimeDays:    CycleTimeDays(d.Created, now),
		CompletionRate:   CompletionRate(d.Constraints.DefinitionOfDone),
		TimeSpentMinutes: SessionMinutes(d.Constraints.TimeBox.Sessions),
	}
}

// SessionDuration is the whole minutes between start and end.
func SessionDuration(start, end time.Time) int {
	if !end.After(start) {
		return 0
	}
	return int(end.Sub(start).Minutes())
}
