package item

import (
	"testing"
	"time"
)

func TestParseDue(t *testing.T) {
	now := time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "empty defaults to one week",
			input: "",
			want:  now.Add(7 * 24 * time.Hour),
		},
		{
			name:  "calendar date",
			input: "2025-02-01",
			want:  time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "rfc3339",
			input: "2025-02-01T15:04:05Z",
			want:  time.Date(2025, 2, 1, 15, 4, 5, 0, time.UTC),
		},
		{
			name:    "gibberish",
			input:   "zzzz qqqq",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDue(tt.input, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseDue(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDue_NaturalLanguageIsInTheFuture(t *testing.T) {
	now := time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC)

	got, err := ParseDue("in 3 days", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.After(now) {
		t.Errorf("expected a time after %v, got %v", now, got)
	}
}
