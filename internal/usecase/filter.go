package usecase

import "EdgarPull/internal/domain/models"

// HoldingsFilter is a pure predicate over a filing's holdings count.
// Between, when set, overrides Min and Max. Validate must pass before any
// network activity starts.
type HoldingsFilter struct {
	Min     *int
	Max     *int
	Between []int // inclusive [min, max]
}

// IsZero reports whether no filter is configured.
func (f *HoldingsFilter) IsZero() bool {
	return f == nil || (f.Min == nil && f.Max == nil && len(f.Between) == 0)
}

// Validate rejects inverted ranges and negative bounds as configuration
// errors.
func (f *HoldingsFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.Min != nil && *f.Min < 0 {
		return &models.ConfigurationError{Field: "min_holdings", Reason: "must be non-negative"}
	}
	if f.Max != nil && *f.Max < 0 {
		return &models.ConfigurationError{Field: "max_holdings", Reason: "must be non-negative"}
	}
	if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
		return &models.ConfigurationError{Field: "min_holdings", Reason: "minimum exceeds maximum"}
	}
	if len(f.Between) != 0 {
		if len(f.Between) != 2 {
			return &models.ConfigurationError{Field: "between_holdings", Reason: "want exactly two bounds"}
		}
		if f.Between[0] < 0 || f.Between[0] > f.Between[1] {
			return &models.ConfigurationError{Field: "between_holdings", Reason: "invalid range"}
		}
	}
	return nil
}

// Allows reports whether a holdings count passes the filter.
func (f *HoldingsFilter) Allows(n int) bool {
	if f.IsZero() {
		return true
	}
	if len(f.Between) == 2 {
		return n >= f.Between[0] && n <= f.Between[1]
	}
	if f.Min != nil && n < *f.Min {
		return false
	}
	if f.Max != nil && n > *f.Max {
		return false
	}
	return true
}
