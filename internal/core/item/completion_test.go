package item

import (
	"testing"
	"time"

	"github.com/example/safer/internal/models"
)

func TestComputeMetrics(t *testing.T) {
	created := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	now := created.Add(2*24*time.Hour + 3*time.Hour)
	done := now.Add(-time.Hour)
	end := created.Add(45 * time.Minute)

	d := &models.DeliveryItem{
		ID:      "DI-001",
		Created: created,
		Constraints: models.Constraints{
			DefinitionOfDone: []models.DoDEntry{
				{ID: "a", Text: "one", Completed: true, CompletedAt: &done},
				{ID: "b", Text: "two"},
			},
			TimeBox: models.TimeBox{Sessions: []models.FocusSession{
				{Start: created, End: &end, DurationMinutes: 45},
				{Start: now}, // still running, not counted
			}},
		},
	}

	got := ComputeMetrics(d, now)
	if got.CompletionRate != 0.5 {
		t.Errorf("CompletionRate = %v, want 0.5", got.CompletionRate)
	}
	if got.CycleTimeDays != 3 {
		t.Errorf("CycleTimeDays = %d, want 3 (ceil of 2.125)", got.CycleTimeDays)
	}
	if got.TimeSpentMinutes != 45 {
		t.Errorf("TimeSpentMinutes = %d, want 45", got.TimeSpentMinutes)
	}
}

func TestCompletionRate_NoEntries(t *testing.T) {
	if got := CompletionRate(nil); got != 0 {
		t.Errorf("CompletionRate(nil) = %v, want 0", got)
	}
}

func TestCycleTimeDays(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		end  time.Time
		want int
	}{
		{"same instant", base, 0},
		{"one minute", base.Add(time.Minute), 1},
		{"exactly one day", base.Add(24 * time.Hour), 1},
		{"just over one day", base.Add(25 * time.Hour), 2},
		{"end before start", base.Add(-time.Hour), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CycleTimeDays(base, tt.end); got != tt.want {
				t.Errorf("CycleTimeDays = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStandardDoDEntries(t *testing.T) {
	entries := StandardDoDEntries()
	if len(entries) != len(StandardDoD) {
		t.Fatalf("got %d entries, want %d", len(entries), len(StandardDoD))
	}
	seen := map[string]bool{}
	for _, e := range entries {
		if e.ID == "" || seen[e.ID] {
			t.Errorf("entry id %q is empty or duplicated", e.ID)
		}
		seen[e.ID] = true
		if e.Completed || e.CompletedAt != nil {
			t.Errorf("entry %q should start unchecked", e.Text)
		}
	}
}

func TestSessionDuration(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if got := SessionDuration(start, start.Add(90*time.Minute+30*time.Second)); got != 90 {
		t.Errorf("SessionDuration = %d, want 90", got)
	}
	if got := SessionDuration(start, start.Add(-time.Minute)); got != 0 {
		t.Errorf("SessionDuration backwards = %d, want 0", got)
	}
}
