package models

import "EdgarPull/pkg/util"

// Outcome classifies the per-entity result of a pipeline run.
type Outcome string

const (
	OutcomeOK              Outcome = "ok"
	OutcomeFilteredOut     Outcome = "filtered_out"
	OutcomePeriodNotFound  Outcome = "period_not_found"
	OutcomeNotResolved     Outcome = "not_resolved"
	OutcomeRetrievalFailed Outcome = "retrieval_failed"
	OutcomeParseFailed     Outcome = "parse_failed"
)

// ProcessingResult is the per-entity output of one orchestrator run.
// Immutable after creation; consumed by the API and file-writer collaborators.
type ProcessingResult struct {
	Input           string         `json:"input"` // the name or CIK as requested
	FundName        string         `json:"fund_name,omitempty"`
	CIK             string         `json:"cik,omitempty"`
	Period          util.Quarter   `json:"-"`
	PeriodLabel     string         `json:"period,omitempty"`
	PeriodEnd       string         `json:"period_end,omitempty"`
	Outcome         Outcome        `json:"outcome"`
	IsFirstTime     bool           `json:"is_first_time_filer"`
	EarliestPeriod  string         `json:"earliest_filing_period,omitempty"`
	HoldingsCount   int            `json:"num_holdings"`
	Holdings        []Holding      `json:"holdings,omitempty"`
	FilingURL       string         `json:"filing_url,omitempty"`
	InfoTableURL    string         `json:"info_table_url,omitempty"`
	AccessionNumber string         `json:"accession_number,omitempty"`
	ParseStatus     ParseStatus    `json:"parse_status,omitempty"`
	ParseWarnings   []ParseWarning `json:"parse_warnings,omitempty"`
	Error           string         `json:"error,omitempty"`
}
