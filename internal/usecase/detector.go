package usecase

import (
	"EdgarPull/internal/domain/models"
	"EdgarPull/pkg/util"
)

// Detection is the three-valued outcome of first-time-filer detection.
// PeriodNotFound is distinct from true/false: the requested period simply
// has no qualifying filing and must be reported as such.
type Detection int

const (
	DetectionPeriodNotFound Detection = iota
	DetectionFirstTime
	DetectionNotFirstTime
)

// DetectionResult carries the verdict plus, when the entity has filed
// before, its earliest prior reporting period.
type DetectionResult struct {
	Status         Detection
	EarliestPeriod util.Quarter
}

// FirstTimeDetector decides whether a target period is an entity's
// earliest qualifying disclosure.
type FirstTimeDetector struct{}

func NewFirstTimeDetector() *FirstTimeDetector { return &FirstTimeDetector{} }

// Detect inspects a notice-free history (see EntityResolver.FetchHistory)
// for the target period. The entity is a first-time filer iff a qualifying
// entry exists at the target period and no non-amendment 13F-HR covers a
// strictly earlier period. Amendments never disqualify: an amendment to an
// earlier period corrects an original that is itself present in history.
func (d *FirstTimeDetector) Detect(history []models.FilingHistoryEntry, target util.Quarter) DetectionResult {
	targetFound := false
	var earliest util.Quarter

	for _, e := range history {
		if !e.Form.IsQualifying() {
			continue
		}
		if e.Period.Equal(target) {
			targetFound = true
			continue
		}
		if e.Form.IsAmendment() {
			continue
		}
		if e.Period.Before(target) {
			if earliest.IsZero() || e.Period.Before(earliest) {
				earliest = e.Period
			}
		}
	}

	if !targetFound {
		return DetectionResult{Status: DetectionPeriodNotFound}
	}
	if !earliest.IsZero() {
		return DetectionResult{Status: DetectionNotFirstTime, EarliestPeriod: earliest}
	}
	return DetectionResult{Status: DetectionFirstTime}
}
