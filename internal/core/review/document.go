package review

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Placeholder is the body of a reflection section nobody has written yet.
const Placeholder = "_Add your reflections here._"

// Fixed section headings.
const (
	SectionMetrics   = "Metrics"
	SectionCompleted = "Completed Items"
)

// DefaultReflections are the reflection sections of a fresh review, in order.
var DefaultReflections = []string{
	"What Went Well",
	"What Could Be Improved",
	"Focus For Next Week",
}

// FrontMatter is the YAML header of a review file.
type FrontMatter struct {
	Week      string    `yaml:"week"`
	Generated time.Time `yaml:"generated"`
	Items     int       `yaml:"items"`
}

// Summary is the metrics table of one week.
type Summary struct {
	Completed     int
	AverageStress float64
	Incidents     int
	AverageCycle  float64
	FocusMinutes  int
}

// CompletedEntry is one line of the completed-items list.
type CompletedEntry struct {
	ID            string
	Title         string
	CycleTimeDays int
	StressLevel   int
}

// Section is a named markdown section and its raw body.
type Section struct {
	Heading string
	Body    string
}

// Document is a weekly review.
type Document struct {
	Front       FrontMatter
	Summary     Summary
	Completed   []CompletedEntry
	Reflections []Section
}

// NewDocument builds a review with default, empty reflection sections.
func NewDocument(front FrontMatter, summary Summary, completed []CompletedEntry) *Document {
	reflections := make([]Section, 0, len(DefaultReflections))
	for _, h := range DefaultReflections {
		reflections = append(reflections, Section{Heading: h, Body: Placeholder})
	}
	return &Document{
		Front:       front,
		Summary:     summary,
		Completed:   completed,
		Reflections: reflections,
	}
}

// Render writes the document as markdown with YAML front matter.
func (d *Document) Render() (string, error) {
	front, err := yaml.Marshal(d.Front)
	if err != nil {
		return "", fmt.Errorf("failed to marshal front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(front)
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "# Weekly Review %s\n\n", d.Front.Week)

	fmt.Fprintf(&b, "## %s\n\n", SectionMetrics)
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Items completed | %d |\n", d.Summary.Completed)
	fmt.Fprintf(&b, "| Average stress | %.1f |\n", d.Summary.AverageStress)
	fmt.Fprintf(&b, "| Incidents | %d |\n", d.Summary.Incidents)
	fmt.Fprintf(&b, "| Average cycle time (days) | %.1f |\n", d.Summary.AverageCycle)
	fmt.Fprintf(&b, "| Focus time (minutes) | %d |\n\n", d.Summary.FocusMinutes)

	fmt.Fprintf(&b, "## %s\n\n", SectionCompleted)
	if len(d.Completed) == 0 {
		b.WriteString("_No items completed this week._\n\n")
	}
	for _, c := range d.Completed {
		fmt.Fprintf(&b, "- %s: %s (cycle %dd", c.ID, c.Title, c.CycleTimeDays)
		if c.StressLevel > 0 {
			fmt.Fprintf(&b, ", stress %d", c.StressLevel)
		}
		b.WriteString(")\n")
	}
	if len(d.Completed) > 0 {
		b.WriteString("\n")
	}

	for _, s := range d.Reflections {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", s.Heading, strings.TrimRight(s.Body, "\n"))
	}

	return strings.TrimRight(b.String(), "\n") + "\n", nil
}

// Parse reads the front matter and sections of an existing review.
// Only the front matter and the raw section bodies are recovered; the metrics
// table and completed list are regenerated from the archive anyway.
func Parse(content string) (FrontMatter, []Section, error) {
	var front FrontMatter
	body := content

	if strings.HasPrefix(content, "---\n") {
		rest := content[len("---\n"):]
		end := strings.Index(rest, "\n---\n")
		if end >= 0 {
			if err := yaml.Unmarshal([]byte(rest[:end]), &front); err != nil {
				return front, nil, fmt.Errorf("failed to parse front matter: %w", err)
			}
			body = rest[end+len("\n---\n"):]
		}
	}

	var sections []Section
	var current *Section
	var buf bytes.Buffer
	flush := func() {
		if current != nil {
			current.Body = strings.Trim(buf.String(), "\n")
			sections = append(sections, *current)
		}
		buf.Reset()
	}

	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "## ") {
			flush()
			current = &Section{Heading: strings.TrimSpace(strings.TrimPrefix(line, "## "))}
			continue
		}
		if current != nil {
			buf.WriteString(line)
			buf.WriteString("\n")
		}
	}
	flush()

	return front, sections, nil
}

// isWritten reports whether a reflection body holds real content.
func isWritten(body string) bool {
	trimmed := strings.TrimSpace(body)
	return trimmed != "" && trimmed != Placeholder
}

// Merge refreshes fresh with the reflections of an existing review. Written
// reflection sections are kept verbatim and in the order the user left them,
// including any headings they added. Default reflections missing from the
// existing review are appended at the end.
func Merge(existing string, fresh *Document) (*Document, error) {
	_, sections, err := Parse(existing)
	if err != nil {
		return nil, err
	}

	defaults := make(map[string]string, len(fresh.Reflections))
	for _, s := range fresh.Reflections {
		defaults[s.Heading] = s.Body
	}

	merged := *fresh
	merged.Reflections = make([]Section, 0, len(sections))
	seen := make(map[string]bool, len(defaults))
	for _, s := range sections {
		if s.Heading == SectionMetrics || s.Heading == SectionCompleted {
			continue
		}
		body, known := defaults[s.Heading]
		if !known {
			if isWritten(s.Body) {
				merged.Reflections = append(merged.Reflections, s)
			}
			continue
		}
		if seen[s.Heading] {
			continue
		}
		seen[s.Heading] = true
		if isWritten(s.Body) {
			body = s.Body
		}
		merged.Reflections = append(merged.Reflections, Section{Heading: s.Heading, Body: body})
	}
	for _, s := range fresh.Reflections {
		if !seen[s.Heading] {
			merged.Reflections = append(merged.Reflections, s)
		}
	}

	return &merged, nil
}
