package utils

import "testing"

func TestNormalizeCategory(t *testing.T) {
	tests := map[string]string{
		"Electronics":  "electronics",
		" electronic ": "electronics",
		"Apparel":      "clothing",
		"hardware":     "hardware",
		"TOY":          "toys",
		"":             "",
	}
	for input, want := range tests {
		if got := NormalizeCategory(input); got != want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestFuzzyMatchCategory(t *testing.T) {
	if !FuzzyMatchCategory("Books", "books") {
		t.Error("exact match failed")
	}
	if !FuzzyMatchCategory("novel", "books") {
		t.Error("alias match failed")
	}
	if FuzzyMatchCategory("novel", "toys") {
		t.Error("novel should not match toys")
	}
	if FuzzyMatchCategory("", "toys") {
		t.Error("empty term should not match")
	}
}

func TestNormalizeAttributes(t *testing.T) {
	got := NormalizeAttributes(map[string]string{
		"Brand Tier":       "Mid Range",
		"format":           "Hard Cover",
		"battery-required": "TRUE",
		"Weight":           " 2.5 ",
		"color":            "  ",
	})

	want := map[string]string{
		"brand_tier":       "mid-range",
		"format":           "hardcover",
		"battery_required": "yes",
		"weight":           "2.5",
	}
	if len(got) != len(want) {
		t.Fatalf("NormalizeAttributes() = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}

	if NormalizeAttributes(nil) != nil {
		t.Error("nil input should stay nil")
	}
}
