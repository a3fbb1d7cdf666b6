package item

import (
	"fmt"
	"regexp"
	"strconv"
)

// IDPrefix is the prefix of every delivery item ID.
const IDPrefix = "DI-"

var idPattern = regexp.MustCompile(`^DI-(\d+)$`)

// ParseIDNumber extracts the numeric suffix of a DI-<n> id.
func ParseIDNumber(id string) (int, bool) {
	m := idPattern.FindStringSubmatch(id)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// FormatID renders n as a DI id zero-padded to three digits.
func FormatID(n int) string {
	return fmt.Sprintf("%s%03d", IDPrefix, n)
}

// MaxIDNumber returns the highest numeric suffix among ids, ignoring ids that
// do not match the DI-<n> pattern. Returns 0 when none match.
func MaxIDNumber(ids []string) int {
	highest := 0
	for _, id := range ids {
		if n, ok := ParseIDNumber(id); ok && n > highest {
			highest = n
		}
	}
	return highest
}

// NextID returns the id following both the highest stored id and the
// highest id ever issued, or DI-001 when neither exists. The issued
// high-water mark keeps numbers from being reused after the highest item is
// deleted.
func NextID(ids []string, issued int) string {
	return FormatID(max(MaxIDNumber(ids), issued) + 1)
}

// IDSequence hands out consecutive ids for a batch, starting after the highest
// existing id. It keeps batch members from colliding with each other.
type IDSequence struct {
	last int
}

// NewIDSequence seeds a sequence from existing ids and the issued high-water mark.
func NewIDSequence(existing []string, issued int) *IDSequence {
	return &IDSequence{last: max(MaxIDNumber(existing), issued)}
}

// Next reserves and returns the next id.
func (s *IDSequence) Next() string {
	s.last++
	return FormatID(s.last)
}

// FreeSlots returns the unused slots in [1,max] in ascending order.
func FreeSlots(used []int, limit int) []int {
	taken := make(map[int]bool, len(used))
	for _, slot := range used {
		taken[slot] = true
	}
	var free []int
	for slot := 1; slot <= limit; slot++ {
		if !taken[slot] {
			free = append(free, slot)
		}
	}
	return free
}

// NextWipSlot returns the lowest free slot in [1,max]. When every slot is
// taken it falls back to 1; callers are expected to check the WIP limit first.
func NextWipSlot(used []int, limit int) int {
	free := FreeSlots(used, limit)
	if len(free) == 0 {
		return 1
	}
	return free[0]
}

// WipStatus summarises capacity.
type WipStatus struct {
	Current     int  `json:"current"`
	Max         int  `json:"max"`
	WithinLimit bool `json:"withinLimit"`
}

// Headroom is the number of items that can still be created.
func (w WipStatus) Headroom() int {
	if w.Current >= w.Max {
		return 0
	}
	return w.Max - w.Current
}

// CheckWipLimit computes capacity from the active count. WithinLimit means
// one more item still fits.
func CheckWipLimit(activeCount, limit int) WipStatus {
	return WipStatus{
		Current:     activeCount,
		Max:         limit,
		WithinLimit: activeCount < limit,
	}
}
