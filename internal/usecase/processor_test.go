package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"EdgarPull/internal/domain/models"
	drepo "EdgarPull/internal/domain/repository"
	"EdgarPull/internal/service/infotable"
	"EdgarPull/pkg/util"
)

// fakeParser returns a fixed number of holdings per parse, or an error.
type fakeParser struct {
	holdings int
	err      error
}

func (p *fakeParser) Parse(_ []byte) ([]models.Holding, []models.ParseWarning, error) {
	if p.err != nil {
		return nil, nil, p.err
	}
	out := make([]models.Holding, p.holdings)
	for i := range out {
		out[i] = models.Holding{IssuerName: fmt.Sprintf("ISSUER %d", i), CUSIP: "037833100"}
	}
	return out, nil, nil
}

func filerSource() *fakeSource {
	return &fakeSource{
		submissions: map[string]*drepo.Submissions{
			"0000000007": {
				CIK:  "7",
				Name: "EXAMPLE ADVISORS LLC",
				Filings: drepo.SubmissionFilings{Recent: drepo.RecentFilings{
					AccessionNumber: []string{"a-2", "a-1"},
					Form:            []string{"13F-HR", "13F-HR"},
					FilingDate:      []string{"2024-05-10", "2024-02-09"},
					ReportDate:      []string{"2024-03-31", "2023-12-31"},
					PrimaryDocument: []string{"primary.xml", "primary.xml"},
				}},
			},
		},
		documents: map[string][]byte{
			"/archives/7/a2/index.json":           []byte(`{"directory":{"item":[{"name":"primary.xml"},{"name":"form13fInfoTable.xml"}]}}`),
			"/archives/7/a2/form13fInfoTable.xml": []byte("<informationTable/>"),
		},
		companies: []drepo.CompanyMatch{{CIK: "0000000007", Name: "EXAMPLE ADVISORS LLC"}},
		fetchErr:  map[string]error{},
	}
}

func newTestProcessor(src *fakeSource, parser drepo.HoldingsParser, workers int) *Processor {
	resolver := NewEntityResolver(src, nil)
	return NewProcessor(resolver, NewFirstTimeDetector(), src, parser, nil, nil, workers)
}

func TestRunSuccess(t *testing.T) {
	src := filerSource()
	p := newTestProcessor(src, &fakeParser{holdings: 12}, 2)

	results, err := p.Run(context.Background(), &BatchRequest{
		CIKs:    []string{"7"},
		Quarter: util.Quarter{Year: 2024, Q: 1},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}

	r := results[0]
	if r.Outcome != models.OutcomeOK {
		t.Fatalf("outcome = %s (%s)", r.Outcome, r.Error)
	}
	if r.HoldingsCount != 12 {
		t.Fatalf("holdings = %d, want 12", r.HoldingsCount)
	}
	if r.IsFirstTime {
		t.Fatal("entity filed for 2023Q4, must not be first-time")
	}
	if r.EarliestPeriod != "2023Q4" {
		t.Fatalf("earliest period = %q", r.EarliestPeriod)
	}
	if r.InfoTableURL != "/archives/7/a2/form13fInfoTable.xml" {
		t.Fatalf("info table url = %q", r.InfoTableURL)
	}
	if r.AccessionNumber != "a-2" {
		t.Fatalf("accession = %q, want the filing covering the period", r.AccessionNumber)
	}
}

func TestRunBatchSurvivesFailures(t *testing.T) {
	src := filerSource()
	p := newTestProcessor(src, &fakeParser{holdings: 3}, 3)

	results, err := p.Run(context.Background(), &BatchRequest{
		CIKs:    []string{"7", "42"},
		Funds:   []string{"No Such Fund Anywhere"},
		Quarter: util.Quarter{Year: 2024, Q: 1},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}

	byInput := make(map[string]*models.ProcessingResult)
	for _, r := range results {
		byInput[r.Input] = r
	}
	if byInput["0000000007"].Outcome != models.OutcomeOK {
		t.Fatalf("good entity outcome = %s", byInput["0000000007"].Outcome)
	}
	if byInput["0000000042"].Outcome != models.OutcomeNotResolved {
		t.Fatalf("unknown cik outcome = %s", byInput["0000000042"].Outcome)
	}
	if byInput["No Such Fund Anywhere"].Outcome != models.OutcomeNotResolved {
		t.Fatalf("unknown name outcome = %s", byInput["No Such Fund Anywhere"].Outcome)
	}
}

func TestRunFilterValidatedBeforeNetwork(t *testing.T) {
	src := filerSource()
	p := newTestProcessor(src, &fakeParser{holdings: 3}, 1)

	_, err := p.Run(context.Background(), &BatchRequest{
		CIKs:   []string{"7"},
		Filter: &HoldingsFilter{Min: intPtr(10), Max: intPtr(5)},
	}, nil)

	var cfgErr *models.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("want ConfigurationError, got %v", err)
	}
	if src.fetchCalls != 0 {
		t.Fatalf("network touched %d times before validation", src.fetchCalls)
	}
}

func TestRunHoldingsFilter(t *testing.T) {
	src := filerSource()
	p := newTestProcessor(src, &fakeParser{holdings: 12}, 1)

	results, err := p.Run(context.Background(), &BatchRequest{
		CIKs:    []string{"7"},
		Quarter: util.Quarter{Year: 2024, Q: 1},
		Filter:  &HoldingsFilter{Max: intPtr(5)},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].Outcome != models.OutcomeFilteredOut {
		t.Fatalf("outcome = %s, want filtered_out", results[0].Outcome)
	}
	if results[0].HoldingsCount != 12 {
		t.Fatalf("count should still be reported, got %d", results[0].HoldingsCount)
	}
}

func TestRunOnlyFirstTime(t *testing.T) {
	src := filerSource()
	p := newTestProcessor(src, &fakeParser{holdings: 12}, 1)

	results, err := p.Run(context.Background(), &BatchRequest{
		CIKs:          []string{"7"},
		Quarter:       util.Quarter{Year: 2024, Q: 1},
		OnlyFirstTime: true,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := results[0]
	if r.Outcome != models.OutcomeFilteredOut {
		t.Fatalf("outcome = %s, want filtered_out", r.Outcome)
	}
	if len(r.Holdings) != 0 {
		t.Fatal("holdings must not be fetched for entities screened out")
	}
}

func TestRunPeriodNotFound(t *testing.T) {
	src := filerSource()
	p := newTestProcessor(src, &fakeParser{holdings: 12}, 1)

	results, err := p.Run(context.Background(), &BatchRequest{
		CIKs:    []string{"7"},
		Quarter: util.Quarter{Year: 2020, Q: 2},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].Outcome != models.OutcomePeriodNotFound {
		t.Fatalf("outcome = %s, want period_not_found", results[0].Outcome)
	}
}

func TestRunParseFailure(t *testing.T) {
	src := filerSource()
	parseErr := &models.ParseError{Total: 100, Skipped: 40}
	p := newTestProcessor(src, &fakeParser{err: parseErr}, 1)

	results, err := p.Run(context.Background(), &BatchRequest{
		CIKs:    []string{"7"},
		Quarter: util.Quarter{Year: 2024, Q: 1},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].Outcome != models.OutcomeParseFailed {
		t.Fatalf("outcome = %s, want parse_failed", results[0].Outcome)
	}
	if results[0].Error == "" {
		t.Fatal("parse failure must carry the error text")
	}
}

func TestRunDedupesByCIK(t *testing.T) {
	src := filerSource()
	p := newTestProcessor(src, &fakeParser{holdings: 2}, 2)

	results, err := p.Run(context.Background(), &BatchRequest{
		CIKs:    []string{"7", "0000000007"},
		Funds:   []string{"Example Advisors LLC"},
		Quarter: util.Quarter{Year: 2024, Q: 1},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1 after dedupe", len(results))
	}
}

func TestRunProgressCallback(t *testing.T) {
	src := filerSource()
	p := newTestProcessor(src, &fakeParser{holdings: 2}, 2)

	var mu sync.Mutex
	var calls []int
	progress := func(done, total int) {
		mu.Lock()
		calls = append(calls, done)
		if total != 2 {
			t.Errorf("total = %d, want 2", total)
		}
		mu.Unlock()
	}

	_, err := p.Run(context.Background(), &BatchRequest{
		CIKs:    []string{"7", "42"},
		Quarter: util.Quarter{Year: 2024, Q: 1},
	}, progress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(calls) != 2 || calls[len(calls)-1] != 2 {
		t.Fatalf("progress calls = %v", calls)
	}
}

func TestRunInfoTableFallsBackToPrimary(t *testing.T) {
	src := filerSource()
	src.documents["/archives/7/a2/index.json"] = []byte(`{"directory":{"item":[{"name":"primary.xml"}]}}`)
	src.documents["/archives/7/a2/primary.xml"] = []byte("<informationTable/>")
	p := newTestProcessor(src, &fakeParser{holdings: 1}, 1)

	results, err := p.Run(context.Background(), &BatchRequest{
		CIKs:    []string{"7"},
		Quarter: util.Quarter{Year: 2024, Q: 1},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].InfoTableURL != "/archives/7/a2/primary.xml" {
		t.Fatalf("info table url = %q, want primary document fallback", results[0].InfoTableURL)
	}
}

func TestRunPrimaryDocumentWithoutTableFails(t *testing.T) {
	// Older filings fall back to the primary document, which can be a
	// cover page with no information table. That must surface as a
	// parse failure, never as a successful result with zero holdings.
	src := filerSource()
	src.documents["/archives/7/a2/index.json"] = []byte(`{"directory":{"item":[{"name":"primary.xml"}]}}`)
	src.documents["/archives/7/a2/primary.xml"] = []byte(`<?xml version="1.0"?>
	<edgarSubmission><formData><coverPage><reportType>13F HOLDINGS REPORT</reportType></coverPage></formData></edgarSubmission>`)
	p := newTestProcessor(src, infotable.NewParser(), 1)

	results, err := p.Run(context.Background(), &BatchRequest{
		CIKs:    []string{"7"},
		Quarter: util.Quarter{Year: 2024, Q: 1},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := results[0]
	if r.Outcome != models.OutcomeParseFailed {
		t.Fatalf("outcome = %s, want %s", r.Outcome, models.OutcomeParseFailed)
	}
	if r.ParseStatus != models.ParseFailed {
		t.Fatalf("parse status = %s, want %s", r.ParseStatus, models.ParseFailed)
	}
	if r.HoldingsCount != 0 || len(r.Holdings) != 0 {
		t.Fatalf("holdings must not be reported on a failed parse: %+v", r)
	}
}
