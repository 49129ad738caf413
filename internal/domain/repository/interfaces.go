package repository

import (
	"context"

	"EdgarPull/internal/domain/models"
)

// CompanyMatch is one hit from the repository's entity name index.
type CompanyMatch struct {
	CIK  string
	Name string
}

// FilingSource retrieves raw documents from the filing repository.
// Implementations own rate limiting, retries, and response caching.
type FilingSource interface {
	// FetchSubmissions returns the parsed submissions index for a CIK.
	FetchSubmissions(ctx context.Context, cik string) (*Submissions, error)
	// FetchDocument returns the raw body at an archive location.
	FetchDocument(ctx context.Context, location string) ([]byte, error)
	// SearchCompanies looks up 13F filers by company name.
	SearchCompanies(ctx context.Context, name string) ([]CompanyMatch, error)
	// ArchiveURL builds the archive location of a filing document.
	ArchiveURL(cik, accessionNumber, document string) string
	Close() error
}

// Submissions mirrors the repository's submissions index schema: the
// entity header plus parallel arrays describing recent filings.
type Submissions struct {
	CIK     string            `json:"cik"`
	Name    string            `json:"name"`
	Filings SubmissionFilings `json:"filings"`
}

type SubmissionFilings struct {
	Recent RecentFilings `json:"recent"`
}

// RecentFilings holds parallel arrays; index i describes one filing.
type RecentFilings struct {
	AccessionNumber []string `json:"accessionNumber"`
	Form            []string `json:"form"`
	FilingDate      []string `json:"filingDate"`
	ReportDate      []string `json:"reportDate"`
	PrimaryDocument []string `json:"primaryDocument"`
}

// HoldingsParser turns one information-table document into holdings.
type HoldingsParser interface {
	Parse(doc []byte) ([]models.Holding, []models.ParseWarning, error)
}

type Metrics interface {
	RecordRequest(endpoint string)
	RecordRetry(endpoint string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordHoldings(count int)
}
