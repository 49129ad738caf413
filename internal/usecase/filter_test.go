package usecase

import (
	"errors"
	"testing"

	"EdgarPull/internal/domain/models"
)

func intPtr(n int) *int { return &n }

func TestFilterValidate(t *testing.T) {
	cases := []struct {
		name   string
		filter *HoldingsFilter
		ok     bool
	}{
		{"nil filter", nil, true},
		{"empty filter", &HoldingsFilter{}, true},
		{"min only", &HoldingsFilter{Min: intPtr(5)}, true},
		{"min above max", &HoldingsFilter{Min: intPtr(10), Max: intPtr(5)}, false},
		{"negative min", &HoldingsFilter{Min: intPtr(-1)}, false},
		{"negative max", &HoldingsFilter{Max: intPtr(-3)}, false},
		{"between", &HoldingsFilter{Between: []int{5, 20}}, true},
		{"between one bound", &HoldingsFilter{Between: []int{5}}, false},
		{"between inverted", &HoldingsFilter{Between: []int{20, 5}}, false},
	}

	for _, tc := range cases {
		err := tc.filter.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok {
			var cfgErr *models.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("%s: want ConfigurationError, got %v", tc.name, err)
			}
		}
	}
}

func TestFilterAllows(t *testing.T) {
	var none *HoldingsFilter
	if !none.Allows(0) || !none.Allows(10000) {
		t.Fatal("nil filter must pass everything")
	}

	min := &HoldingsFilter{Min: intPtr(10)}
	if min.Allows(9) || !min.Allows(10) {
		t.Fatal("min bound is inclusive")
	}

	max := &HoldingsFilter{Max: intPtr(100)}
	if !max.Allows(100) || max.Allows(101) {
		t.Fatal("max bound is inclusive")
	}

	both := &HoldingsFilter{Min: intPtr(10), Max: intPtr(100)}
	for n, want := range map[int]bool{9: false, 10: true, 100: true, 101: false} {
		if got := both.Allows(n); got != want {
			t.Fatalf("Allows(%d) = %v, want %v", n, got, want)
		}
	}
}

func TestFilterBetweenOverrides(t *testing.T) {
	f := &HoldingsFilter{Min: intPtr(50), Max: intPtr(60), Between: []int{5, 20}}
	if !f.Allows(10) {
		t.Fatal("between range should pass 10")
	}
	if f.Allows(55) {
		t.Fatal("min/max must be ignored when between is set")
	}
}
