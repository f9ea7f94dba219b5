package refdata

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Glasgow City", "glasgow city"},
		{"  Glasgow   City  ", "glasgow city"},
		{"Ynys Môn", "ynys mon"},
		{"Côte d'Ivoire", "cote d ivoire"},
		{"Bristol, City of", "bristol city of"},
		{"Kingston-upon-Hull", "kingston upon hull"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlug(t *testing.T) {
	if got := Slug("glasgow city"); got != "glasgow-city" {
		t.Errorf("Slug() = %q", got)
	}
}

func TestSimilarity(t *testing.T) {
	if got := similarity("glasgow city", "glasgow city"); got != 1 {
		t.Errorf("identical similarity = %v, want 1", got)
	}
	if got := similarity("glasgow", "edinburgh"); got >= similarityFloor {
		t.Errorf("unrelated similarity = %v, want below floor", got)
	}
	// One-character typo stays above the floor.
	if got := similarity("glasgow city", "glasgow cty"); got < similarityFloor {
		t.Errorf("typo similarity = %v, want above floor", got)
	}
}
