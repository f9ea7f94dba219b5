package schema

import (
	"errors"
	"testing"
	"time"
)

func TestParseCount(t *testing.T) {
	tests := []struct {
		raw       string
		want      int64
		defaulted bool
	}{
		{"1,234", 1234, false},
		{"1234", 1234, false},
		{"", 0, true},
		{"n/a", 0, true},
		{":", 0, true},
		{"*", 0, true},
		{"-", 0, true},
		{"-42", -42, false},
		{" 3,844 ", 3844, false},
		{"1234.0", 1234, false},
		{"£2,500", 2500, false},
	}

	for _, tt := range tests {
		got := ParseCount(tt.raw)
		if got.Value != tt.want {
			t.Errorf("ParseCount(%q).Value = %d, want %d", tt.raw, got.Value, tt.want)
		}
		if got.Defaulted() != tt.defaulted {
			t.Errorf("ParseCount(%q).Defaulted() = %v, want %v", tt.raw, got.Defaulted(), tt.defaulted)
		}
	}
}

func TestParseDate_Serial(t *testing.T) {
	// Serial 45000 is 2023-03-15 on the 1899-12-30 spreadsheet epoch.
	got, err := ParseDate("45000")
	if err != nil {
		t.Fatalf("ParseDate(45000) failed: %v", err)
	}
	want := time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseDate(45000) = %s, want %s", got, want)
	}
}

func TestParseDate_Text(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2023-03-15", time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC)},
		{"15/03/2023", time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC)},
		{"March 2023", time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{"Mar 2023", time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.raw)
		if err != nil {
			t.Errorf("ParseDate(%q) failed: %v", tt.raw, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestParseDate_SkipsNotFails(t *testing.T) {
	for _, raw := range []string{"TBD", "", "not a date", "999999999"} {
		_, err := ParseDate(raw)
		var skip *SkipError
		if !errors.As(err, &skip) {
			t.Errorf("ParseDate(%q) = %v, want *SkipError", raw, err)
		}
	}
}
