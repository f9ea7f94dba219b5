package schema

import "testing"

func TestMap_FirstMatchWins(t *testing.T) {
	rules := []Rule{
		{Field: "total", Keywords: []string{"total"}},
		{Field: "hotel", Keywords: []string{"hotel", "contingency"}},
	}
	columns := []string{"Local Authority", "Total Supported", "Total in Hotels", "Contingency Hotel"}

	m := Map(rules, columns)

	if got, _ := m.Column("total"); got != "Total Supported" {
		t.Errorf("total = %q, want %q", got, "Total Supported")
	}
	// "Total in Hotels" was claimed by nothing ("total" already satisfied),
	// so the hotel rule takes it, not the later "Contingency Hotel".
	if got, _ := m.Column("hotel"); got != "Total in Hotels" {
		t.Errorf("hotel = %q, want %q", got, "Total in Hotels")
	}
}

func TestMap_ClaimedColumnNotReused(t *testing.T) {
	rules := []Rule{
		{Field: "dispersed", Keywords: []string{"dispersed"}},
		{Field: "total", Keywords: []string{"total", "supported"}},
	}
	columns := []string{"Total Dispersed", "Total Supported"}

	m := Map(rules, columns)

	if got, _ := m.Column("dispersed"); got != "Total Dispersed" {
		t.Errorf("dispersed = %q, want %q", got, "Total Dispersed")
	}
	// "Total Dispersed" contains "total" but is already claimed.
	if got, _ := m.Column("total"); got != "Total Supported" {
		t.Errorf("total = %q, want %q", got, "Total Supported")
	}
}

func TestMap_UnmatchedFieldAbsent(t *testing.T) {
	rules := []Rule{
		{Field: "subsistence", Keywords: []string{"subsistence"}},
	}
	m := Map(rules, []string{"Local Authority", "Total"})

	if _, ok := m.Column("subsistence"); ok {
		t.Error("subsistence should be unmatched")
	}
}

func TestMap_HeaderDrift(t *testing.T) {
	// The same rule list must survive wording drift between releases.
	rules := []Rule{
		{Field: "area", Keywords: []string{"local authority", "area"}},
		{Field: "total", Keywords: []string{"total", "supported"}},
	}

	release2022 := []string{"Local Authority", "Total supported"}
	release2023 := []string{"Area of residence", "People receiving Section 95 support"}

	m22 := Map(rules, release2022)
	m23 := Map(rules, release2023)

	if got, _ := m22.Column("area"); got != "Local Authority" {
		t.Errorf("2022 area = %q", got)
	}
	if got, _ := m23.Column("area"); got != "Area of residence" {
		t.Errorf("2023 area = %q", got)
	}
	if got, _ := m23.Column("total"); got != "People receiving Section 95 support" {
		t.Errorf("2023 total = %q", got)
	}
}

func TestFold(t *testing.T) {
	if got := Fold("  Total\nSupported \t People "); got != "total supported people" {
		t.Errorf("Fold() = %q", got)
	}
}
