package usecase

import (
	"testing"
	"time"

	"EdgarPull/internal/domain/models"
	"EdgarPull/pkg/util"
)

func entry(form models.FilingForm, filed string, q util.Quarter) models.FilingHistoryEntry {
	d, _ := time.Parse("2006-01-02", filed)
	return models.FilingHistoryEntry{
		AccessionNumber: "0000000000-00-000001",
		Form:            form,
		FilingDate:      d,
		Period:          q,
		PeriodOfReport:  q.EndDate(),
	}
}

func TestDetectNotFirstTime(t *testing.T) {
	history := []models.FilingHistoryEntry{
		entry(models.Form13FHR, "2024-02-10", util.Quarter{Year: 2023, Q: 4}),
		entry(models.Form13FHR, "2024-05-12", util.Quarter{Year: 2024, Q: 1}),
	}

	d := NewFirstTimeDetector()
	res := d.Detect(history, util.Quarter{Year: 2024, Q: 1})
	if res.Status != DetectionNotFirstTime {
		t.Fatalf("expected not-first-time, got %v", res.Status)
	}
	if want := (util.Quarter{Year: 2023, Q: 4}); !res.EarliestPeriod.Equal(want) {
		t.Fatalf("earliest period = %s, want %s", res.EarliestPeriod, want)
	}
}

func TestDetectFirstTime(t *testing.T) {
	history := []models.FilingHistoryEntry{
		entry(models.Form13FHR, "2024-08-10", util.Quarter{Year: 2024, Q: 2}),
	}

	d := NewFirstTimeDetector()
	res := d.Detect(history, util.Quarter{Year: 2024, Q: 2})
	if res.Status != DetectionFirstTime {
		t.Fatalf("expected first-time, got %v", res.Status)
	}
	if !res.EarliestPeriod.IsZero() {
		t.Fatalf("first-time result should carry no earlier period, got %s", res.EarliestPeriod)
	}
}

func TestDetectPeriodNotFound(t *testing.T) {
	history := []models.FilingHistoryEntry{
		entry(models.Form13FHR, "2023-11-10", util.Quarter{Year: 2023, Q: 3}),
	}

	d := NewFirstTimeDetector()
	res := d.Detect(history, util.Quarter{Year: 2024, Q: 1})
	if res.Status != DetectionPeriodNotFound {
		t.Fatalf("expected period-not-found, got %v", res.Status)
	}
}

func TestDetectEmptyHistory(t *testing.T) {
	d := NewFirstTimeDetector()
	res := d.Detect(nil, util.Quarter{Year: 2024, Q: 1})
	if res.Status != DetectionPeriodNotFound {
		t.Fatalf("expected period-not-found for empty history, got %v", res.Status)
	}
}

func TestDetectAmendmentDoesNotDisqualify(t *testing.T) {
	// The only earlier entry is an amendment; it corrects an original the
	// index no longer lists, so it must not count as a prior disclosure.
	history := []models.FilingHistoryEntry{
		entry(models.Form13FHRAmendment, "2024-03-01", util.Quarter{Year: 2023, Q: 4}),
		entry(models.Form13FHR, "2024-05-10", util.Quarter{Year: 2024, Q: 1}),
	}

	d := NewFirstTimeDetector()
	res := d.Detect(history, util.Quarter{Year: 2024, Q: 1})
	if res.Status != DetectionFirstTime {
		t.Fatalf("amendment should not disqualify, got %v", res.Status)
	}
}

func TestDetectAmendedTargetStillFound(t *testing.T) {
	history := []models.FilingHistoryEntry{
		entry(models.Form13FHR, "2024-05-10", util.Quarter{Year: 2024, Q: 1}),
		entry(models.Form13FHRAmendment, "2024-06-02", util.Quarter{Year: 2024, Q: 1}),
	}

	d := NewFirstTimeDetector()
	res := d.Detect(history, util.Quarter{Year: 2024, Q: 1})
	if res.Status != DetectionFirstTime {
		t.Fatalf("expected first-time with amended target, got %v", res.Status)
	}
}

func TestDetectLaterFilingsIgnored(t *testing.T) {
	history := []models.FilingHistoryEntry{
		entry(models.Form13FHR, "2024-05-10", util.Quarter{Year: 2024, Q: 1}),
		entry(models.Form13FHR, "2024-08-09", util.Quarter{Year: 2024, Q: 2}),
	}

	d := NewFirstTimeDetector()
	res := d.Detect(history, util.Quarter{Year: 2024, Q: 1})
	if res.Status != DetectionFirstTime {
		t.Fatalf("later periods must not affect the verdict, got %v", res.Status)
	}
}
