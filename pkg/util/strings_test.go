package util

import "testing"

func TestNormalizeCIK(t *testing.T) {
	cases := map[string]string{
		"1234567":    "0001234567",
		"0001234567": "0001234567",
		"1234567890": "1234567890",
		"":           "0000000000",
		"abc123def":  "0000000123",
	}
	for in, want := range cases {
		if got := NormalizeCIK(in); got != want {
			t.Fatalf("NormalizeCIK(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLooksLikeCIK(t *testing.T) {
	if !LooksLikeCIK("1167483") || !LooksLikeCIK("0001167483") {
		t.Fatalf("expected digit strings to look like CIKs")
	}
	if LooksLikeCIK("Citadel Advisors") || LooksLikeCIK("") || LooksLikeCIK("12345678901") {
		t.Fatalf("unexpected CIK match")
	}
}

func TestNormalizeFundName(t *testing.T) {
	cases := map[string]string{
		"Citadel Advisors LLC":       "CITADEL ADVISORS",
		"AQR Capital Management LP":  "AQR CAPITAL MANAGEMENT",
		"  Bridgewater Associates  ": "BRIDGEWATER ASSOCIATES",
		"":                           "",
		"Simple Fund":                "SIMPLE FUND",
	}
	for in, want := range cases {
		if got := NormalizeFundName(in); got != want {
			t.Fatalf("NormalizeFundName(%q) = %q, want %q", in, got, want)
		}
	}
}
