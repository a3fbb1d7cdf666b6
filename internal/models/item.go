// Package models defines the persisted shape of delivery items.
// Every record is stored as one JSON document; field names are the on-disk contract.
package models

import "time"

// ItemStatus is the lifecycle status of a delivery item.
type ItemStatus string

// Item statuses.
const (
	StatusActive    ItemStatus = "active"
	StatusCompleted ItemStatus = "completed"
	StatusArchived  ItemStatus = "archived"
	StatusBlocked   ItemStatus = "blocked"
)

// DeliveryItem is the unit of tracked work.
type DeliveryItem struct {
	ID              string          `json:"id"`
	Status          ItemStatus      `json:"status"`
	Created         time.Time       `json:"created"`
	Updated         time.Time       `json:"updated"`
	Scope           Scope           `json:"scope"`
	Plan            Plan            `json:"plan"`
	Constraints     Constraints     `json:"constraints"`
	OutcomeTracking OutcomeTracking `json:"outcomeTracking"`
}

// Scope describes what is being delivered and to whom.
type Scope struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Outcome     string    `json:"outcome"`
	Stakeholder string    `json:"stakeholder"`
	DueDate     time.Time `json:"dueDate"`
}

// Plan holds the intent behind an item.
type Plan struct {
	Objectives     []string `json:"objectives"`
	Stakeholders   []string `json:"stakeholders"`
	Dependencies   []string `json:"dependencies"`
	ValueStatement string   `json:"valueStatement"`
}

// Constraints bound the work: time-box, completion checklist and WIP lane.
type Constraints struct {
	TimeBox          TimeBox    `json:"timeBox"`
	DefinitionOfDone []DoDEntry `json:"definitionOfDone"`
	WipSlot          int        `json:"wipSlot"`
}

// TimeBox is the planned duration plus the focus sessions logged against it.
type TimeBox struct {
	DurationMinutes int            `json:"durationMinutes"`
	Sessions        []FocusSession `json:"sessions"`
}

// DoDEntry is one Definition-of-Done checklist line.
type DoDEntry struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
}

// FocusSession is a timestamped interval of work. End is nil while running.
type FocusSession struct {
	Start           time.Time  `json:"start"`
	End             *time.Time `json:"end"`
	DurationMinutes int        `json:"durationMinutes"`
	Notes           string     `json:"notes"`
}

// OutcomeTracking records what happened while delivering the item.
type OutcomeTracking struct {
	LinkedIssues []int          `json:"linkedIssues"`
	WorkLog      []WorkLogEntry `json:"workLog"`
	Review       Review         `json:"review"`
	Metrics      Metrics        `json:"metrics"`
}

// WorkLogEntry is a free-text note with a timestamp.
type WorkLogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note"`
}

// Review holds the post-delivery reflection. StressLevel 0 means not recorded.
type Review struct {
	StressLevel   int      `json:"stressLevel"`
	IncidentCount int      `json:"incidentCount"`
	Blockers      []string `json:"blockers"`
	Learnings     []string `json:"learnings"`
}

// Metrics are computed when an item is completed.
type Metrics struct {
	CycleTimeDays    int     `json:"cycleTimeDays"`
	CompletionRate   float64 `json:"completionRate"`
	TimeSpentMinutes int     `json:"timeSpentMinutes"`
}

// Title is a shortcut for Scope.Title.
func (d *DeliveryItem) Title() string {
	return d.Scope.Title
}

// RunningSession returns the index of the open focus session, or -1.
func (d *DeliveryItem) RunningSession() int {
	sessions := d.Constraints.TimeBox.Sessions
	for i := len(sessions) - 1; i >= 0; i-- {
		if sessions[i].End == nil {
			return i
		}
	}
	return -1
}

// HasLinkedIssue reports whether the external issue number is linked to this item.
func (d *DeliveryItem) HasLinkedIssue(number int) bool {
	for _, n := range d.OutcomeTracking.LinkedIssues {
		if n == number {
			return true
		}
	}
	return false
}
