package models

import (
	"time"

	"EdgarPull/pkg/util"
)

// FilingForm is an EDGAR form type code.
type FilingForm string

const (
	Form13FHR          FilingForm = "13F-HR"
	Form13FHRAmendment FilingForm = "13F-HR/A"
	Form13FNT          FilingForm = "13F-NT"
	Form13FNTAmendment FilingForm = "13F-NT/A"
)

// IsQualifying reports whether the form counts as a holdings disclosure.
// Notice filings report no holdings and never count.
func (f FilingForm) IsQualifying() bool {
	return f == Form13FHR || f == Form13FHRAmendment
}

// IsAmendment reports whether the form amends an earlier filing.
func (f FilingForm) IsAmendment() bool {
	return f == Form13FHRAmendment || f == Form13FNTAmendment
}

// Entity is a resolved 13F filer. Immutable once resolved for a run.
type Entity struct {
	CIK     string // canonical 10-digit zero-padded identifier
	Name    string
	History []FilingHistoryEntry // ascending by (filing date, period)
}

// FilingHistoryEntry is one submission from the entity's filing index.
type FilingHistoryEntry struct {
	AccessionNumber string
	Form            FilingForm
	FilingDate      time.Time
	PeriodOfReport  time.Time // quarter-end date the filing covers
	Period          util.Quarter
	PrimaryDocument string
}
