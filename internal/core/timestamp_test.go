package core

import (
	"testing"
	"time"
)

func TestBuildTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		date  string
		clock string
		want  time.Time
		valid bool
	}{
		{
			name:  "typical row",
			date:  "10/03/2004",
			clock: "18.00.00",
			want:  time.Date(2004, 3, 10, 18, 0, 0, 0, time.UTC),
			valid: true,
		},
		{
			name:  "day and month not swapped",
			date:  "01/02/2004",
			clock: "00.30.00",
			want:  time.Date(2004, 2, 1, 0, 30, 0, 0, time.UTC),
			valid: true,
		},
		{
			name:  "whitespace trimmed",
			date:  " 10/03/2004 ",
			clock: " 18.00.00 ",
			want:  time.Date(2004, 3, 10, 18, 0, 0, 0, time.UTC),
			valid: true,
		},
		{name: "empty date", date: "", clock: "18.00.00", valid: false},
		{name: "empty time", date: "10/03/2004", clock: "", valid: false},
		{name: "colon separated time", date: "10/03/2004", clock: "18:00:00", valid: false},
		{name: "iso date", date: "2004-03-10", clock: "18.00.00", valid: false},
		{name: "garbage", date: "not a date", clock: "not a time", valid: false},
		{name: "impossible day", date: "32/01/2004", clock: "18.00.00", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildTimestamp(tt.date, tt.clock)
			if got.Valid != tt.valid {
				t.Fatalf("BuildTimestamp(%q, %q).Valid = %v, want %v", tt.date, tt.clock, got.Valid, tt.valid)
			}
			if got.Valid && !got.Time.Equal(tt.want) {
				t.Errorf("BuildTimestamp(%q, %q) = %v, want %v", tt.date, tt.clock, got.Time, tt.want)
			}
		})
	}
}

func TestBuildTimestamps_MissingColumns(t *testing.T) {
	frame := &Frame{
		Columns: []Column{{Name: "T", Cells: []string{"18,5", "19,0"}}},
		Rows:    2,
	}

	stamps := buildTimestamps(frame)
	if len(stamps) != 2 {
		t.Fatalf("got %d stamps, want 2", len(stamps))
	}
	for i, ts := range stamps {
		if ts.Valid {
			t.Errorf("row %d: timestamp should be absent without Date/Time columns", i)
		}
	}
}
