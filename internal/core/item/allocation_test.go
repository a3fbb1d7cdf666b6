package item

import (
	"reflect"
	"testing"
)

func TestParseIDNumber(t *testing.T) {
	tests := []struct {
		id     string
		want   int
		wantOK bool
	}{
		{"DI-001", 1, true},
		{"DI-042", 42, true},
		{"DI-1234", 1234, true},
		{"DI-", 0, false},
		{"TASK-001", 0, false},
		{"DI-01a", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, ok := ParseIDNumber(tt.id)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseIDNumber(%q) = (%d, %v), want (%d, %v)", tt.id, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNextID(t *testing.T) {
	tests := []struct {
		name   string
		ids    []string
		issued int
		want   string
	}{
		{"empty store", nil, 0, "DI-001"},
		{"sequential", []string{"DI-001", "DI-002"}, 0, "DI-003"},
		{"gaps use max", []string{"DI-001", "DI-007", "DI-003"}, 0, "DI-008"},
		{"ignores foreign ids", []string{"notes", "DI-002", "DI-x"}, 0, "DI-003"},
		{"highest deleted is not reused", []string{"DI-001"}, 5, "DI-006"},
		{"stored ids above issued win", []string{"DI-009"}, 5, "DI-010"},
		{"grows past three digits", []string{"DI-999"}, 0, "DI-1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextID(tt.ids, tt.issued); got != tt.want {
				t.Errorf("NextID = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIDSequence_AvoidsIntraBatchCollisions(t *testing.T) {
	seq := NewIDSequence([]string{"DI-002", "DI-004"}, 0)

	got := []string{seq.Next(), seq.Next(), seq.Next()}
	want := []string{"DI-005", "DI-006", "DI-007"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sequence = %v, want %v", got, want)
	}
}

func TestFreeSlots(t *testing.T) {
	tests := []struct {
		name string
		used []int
		max  int
		want []int
	}{
		{"all free", nil, 3, []int{1, 2, 3}},
		{"middle taken", []int{2}, 3, []int{1, 3}},
		{"full", []int{3, 1, 2}, 3, nil},
		{"out of range ignored", []int{7}, 2, []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FreeSlots(tt.used, tt.max); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FreeSlots(%v, %d) = %v, want %v", tt.used, tt.max, got, tt.want)
			}
		})
	}
}

func TestNextWipSlot(t *testing.T) {
	if got := NextWipSlot([]int{1, 3}, 3); got != 2 {
		t.Errorf("NextWipSlot = %d, want 2", got)
	}
	if got := NextWipSlot([]int{1, 2, 3}, 3); got != 1 {
		t.Errorf("NextWipSlot on full board = %d, want fallback 1", got)
	}
}

func TestCheckWipLimit(t *testing.T) {
	status := CheckWipLimit(2, 3)
	if !status.WithinLimit || status.Headroom() != 1 {
		t.Errorf("CheckWipLimit(2,3) = %+v headroom %d", status, status.Headroom())
	}

	status = CheckWipLimit(3, 3)
	if status.WithinLimit || status.Headroom() != 0 {
		t.Errorf("CheckWipLimit(3,3) = %+v headroom %d", status, status.Headroom())
	}

	status = CheckWipLimit(4, 3)
	if status.Headroom() != 0 {
		t.Errorf("over-limit headroom = %d, want 0", status.Headroom())
	}
}
