// Package importer contains the pure mapping from external work items onto
// delivery items, plus the duplicate detection rules shared by every source.
package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/safer/internal/core/item"
	"github.com/example/safer/internal/models"
)

// DefaultObjective is used when neither priority nor labels yield an objective.
const DefaultObjective = "Complete assigned work"

// ConvertOptions carries the allocation decided by the caller.
type ConvertOptions struct {
	ID             string
	WipSlot        int
	TimeBoxMinutes int
	Now            time.Time
}

// ConvertToDeliveryItem maps an imported item onto a full, active delivery item.
func ConvertToDeliveryItem(imp models.ImportedItem, opts ConvertOptions) models.DeliveryItem {
	due := opts.Now.Add(item.DefaultDueIn)
	if imp.DueDate != nil && !imp.DueDate.IsZero() {
		due = *imp.DueDate
	}

	description := imp.Title
	if imp.URL != "" {
		description = fmt.Sprintf("%s (%s)", imp.Title, imp.URL)
	}

	stakeholder := imp.Author
	var stakeholders []string
	if stakeholder != "" {
		stakeholders = []string{stakeholder}
	}

	dod := item.StandardDoDEntries()
	dod = append(dod, item.NewDoDEntry(sourceDoDText(imp)))

	return models.DeliveryItem{
		ID:      opts.ID,
		Status:  models.StatusActive,
		Created: opts.Now,
		Updated: opts.Now,
		Scope: models.Scope{
			Title:       imp.Title,
			Description: description,
			Outcome:     "Resolved: " + imp.Title,
			Stakeholder: stakeholder,
			DueDate:     due,
		},
		Plan: models.Plan{
			Objectives:     DeriveObjectives(imp.Priority, imp.Labels),
			Stakeholders:   stakeholders,
			ValueStatement: fmt.Sprintf("Imported from %s #%d", sourceName(imp), imp.Number),
		},
		Constraints: models.Constraints{
			TimeBox:          models.TimeBox{DurationMinutes: opts.TimeBoxMinutes},
			DefinitionOfDone: dod,
			WipSlot:          opts.WipSlot,
		},
		OutcomeTracking: models.OutcomeTracking{
			LinkedIssues: []int{imp.Number},
			Review: models.Review{
				StressLevel: EstimateStress(imp.Priority, imp.Labels),
			},
		},
	}
}

func sourceName(imp models.ImportedItem) string {
	if imp.Source == "" {
		return "external tracker"
	}
	return imp.Source
}

func sourceDoDText(imp models.ImportedItem) string {
	if imp.Kind == models.KindPullRequest {
		return fmt.Sprintf("PR #%d merged or closed", imp.Number)
	}
	return fmt.Sprintf("Issue #%d closed", imp.Number)
}

// DeriveObjectives turns priority and labels into plan objectives.
func DeriveObjectives(priority string, labels []string) []string {
	var objectives []string
	if priority != "" {
		objectives = append(objectives, fmt.Sprintf("Resolve %s priority work", strings.ToLower(priority)))
	}
	for _, l := range labels {
		if l == "" {
			continue
		}
		objectives = append(objectives, "Address "+l)
	}
	if len(objectives) == 0 {
		return []string{DefaultObjective}
	}
	return objectives
}

// EstimateStress guesses a 1-5 stress level: urgent, critical or high → 4,
// medium → 3, anything else → 2. Labels are consulted when the priority is empty.
func EstimateStress(priority string, labels []string) int {
	candidates := append([]string{priority}, labels...)
	level := 2
	for _, c := range candidates {
		switch normalizePriority(c) {
		case "urgent", "critical", "high":
			return 4
		case "medium":
			level = 3
		}
	}
	return level
}

// normalizePriority reduces "priority:high", "priority/High" or "P1"-style
// values to a bare lowercase level.
func normalizePriority(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, sep := range []string{":", "/"} {
		if i := strings.Index(s, sep); i >= 0 && strings.HasPrefix(s, "priority") {
			s = strings.TrimSpace(s[i+1:])
		}
	}
	switch s {
	case "p0":
		return "critical"
	case "p1":
		return "high"
	case "p2":
		return "medium"
	}
	return s
}
