package schedule_tools

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		check   func(time.Time) bool
	}{
		{
			name:  "RFC3339",
			input: "2024-12-05T09:00:00Z",
			check: func(got time.Time) bool {
				return got.Equal(time.Date(2024, 12, 5, 9, 0, 0, 0, time.UTC))
			},
		},
		{
			name:  "date and 24h time",
			input: "2024-12-05 14:30",
			check: func(got time.Time) bool {
				return got.Year() == 2024 && got.Hour() == 14 && got.Minute() == 30
			},
		},
		{
			name:  "date and 12h time",
			input: "2024-12-05 2:30 PM",
			check: func(got time.Time) bool {
				return got.Hour() == 14 && got.Minute() == 30
			},
		},
		{
			name:    "garbage",
			input:   "next tuesday",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseDate(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseDate(%q) unexpected error: %v", tt.input, err)
			}
			if !tt.check(got) {
				t.Errorf("parseDate(%q) = %v", tt.input, got)
			}
		})
	}
}

func TestGetID(t *testing.T) {
	// JSON numbers arrive as float64.
	if id, err := getID(map[string]interface{}{"id": float64(1733400000000)}); err != nil || id != 1733400000000 {
		t.Errorf("getID(float64) = %d, %v", id, err)
	}

	if id, err := getID(map[string]interface{}{"id": "42"}); err != nil || id != 42 {
		t.Errorf("getID(string) = %d, %v", id, err)
	}

	if _, err := getID(map[string]interface{}{"id": "not-a-number"}); err == nil {
		t.Error("expected error for non-numeric string id")
	}

	if _, err := getID(map[string]interface{}{}); err == nil {
		t.Error("expected error for missing id")
	}
}
