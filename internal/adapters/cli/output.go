// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting, either human
// text or JSON for scripted front ends, but delegate business logic to services.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/example/safer/internal/core/item"
	"github.com/example/safer/internal/models"
)

const rule = "────────────────────────────────────────────────────────────────"

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	warnMark = color.New(color.FgYellow).Sprint("!")
	errMark  = color.New(color.FgRed).Sprint("✗")
)

// writeJSON prints v as indented JSON.
func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func statusLabel(s models.ItemStatus) string {
	switch s {
	case models.StatusActive:
		return color.New(color.FgGreen).Sprint(s)
	case models.StatusBlocked:
		return color.New(color.FgRed).Sprint(s)
	case models.StatusCompleted:
		return color.New(color.FgCyan).Sprint(s)
	default:
		return color.New(color.FgHiBlack).Sprint(s)
	}
}

func wipLabel(w item.WipStatus) string {
	label := fmt.Sprintf("%d/%d", w.Current, w.Max)
	if w.WithinLimit {
		return color.New(color.FgGreen).Sprint(label)
	}
	return color.New(color.FgYellow).Sprint(label)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
