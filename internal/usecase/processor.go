package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"EdgarPull/internal/domain/models"
	drepo "EdgarPull/internal/domain/repository"
	xlogger "EdgarPull/pkg/logger"
	"EdgarPull/pkg/util"
)

// BatchRequest describes one orchestrator run.
type BatchRequest struct {
	Funds         []string // fund names to resolve via the entity index
	CIKs          []string // canonical identifiers, used directly
	Quarter       util.Quarter // zero value means latest completed quarter
	OnlyFirstTime bool
	Filter        *HoldingsFilter
}

// Progress is invoked after each entity completes. done counts finished
// entities; total is the batch size.
type Progress func(done, total int)

// Processor sequences the pipeline per entity: resolve, fetch history,
// detect, parse holdings, filter. Entities run on a bounded worker pool
// sharing one rate limiter and one document cache underneath the source.
type Processor struct {
	resolver *EntityResolver
	detector *FirstTimeDetector
	source   drepo.FilingSource
	parser   drepo.HoldingsParser
	metrics  drepo.Metrics
	logger   *xlogger.Logger
	workers  int
}

// NewProcessor creates a Processor with the given worker-pool size.
func NewProcessor(resolver *EntityResolver, detector *FirstTimeDetector, source drepo.FilingSource, parser drepo.HoldingsParser, metrics drepo.Metrics, logger *xlogger.Logger, workers int) *Processor {
	if workers <= 0 {
		workers = 4
	}
	return &Processor{
		resolver: resolver,
		detector: detector,
		source:   source,
		parser:   parser,
		metrics:  metrics,
		logger:   logger,
		workers:  workers,
	}
}

// Run processes every requested entity and returns one result per input.
// Only configuration errors abort the run; per-entity failures become
// outcomes so a bad input never sinks the batch. Cancelling ctx stops new
// network calls; in-flight fetches finish or time out on their own.
func (p *Processor) Run(ctx context.Context, req *BatchRequest, progress Progress) ([]*models.ProcessingResult, error) {
	if err := req.Filter.Validate(); err != nil {
		return nil, err
	}

	inputs := gatherInputs(req)
	if len(inputs) == 0 {
		return nil, nil
	}

	quarter := req.Quarter
	if quarter.IsZero() {
		quarter = util.LatestQuarter(time.Now())
	}

	results := make([]*models.ProcessingResult, len(inputs))
	jobs := make(chan int)
	var wg sync.WaitGroup
	var done int
	var mu sync.Mutex

	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = p.processOne(ctx, inputs[i], quarter, req)
				if progress != nil {
					mu.Lock()
					done++
					progress(done, len(inputs))
					mu.Unlock()
				}
			}
		}()
	}

	for i := range inputs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	// Keep the first result per resolved CIK; a name and its CIK listed
	// together must not produce duplicates.
	return dedupe(results), nil
}

func gatherInputs(req *BatchRequest) []string {
	seen := make(map[string]struct{})
	var inputs []string
	for _, cik := range req.CIKs {
		c := util.NormalizeCIK(cik)
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		inputs = append(inputs, c)
	}
	for _, f := range req.Funds {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		key := "name:" + util.NormalizeFundName(f)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		inputs = append(inputs, f)
	}
	return inputs
}

func dedupe(results []*models.ProcessingResult) []*models.ProcessingResult {
	seen := make(map[string]struct{})
	out := results[:0]
	for _, r := range results {
		if r == nil {
			continue
		}
		if r.CIK != "" {
			if _, ok := seen[r.CIK]; ok {
				continue
			}
			seen[r.CIK] = struct{}{}
		}
		out = append(out, r)
	}
	return out
}

// processOne runs the full pipeline for a single input. Failures are
// converted to outcomes at this boundary; nothing escapes as an error.
func (p *Processor) processOne(ctx context.Context, input string, quarter util.Quarter, req *BatchRequest) *models.ProcessingResult {
	res := &models.ProcessingResult{
		Input:       input,
		Period:      quarter,
		PeriodLabel: quarter.String(),
		PeriodEnd:   quarter.EndDate().Format("2006-01-02"),
	}

	if ctx.Err() != nil {
		return fail(res, models.OutcomeRetrievalFailed, ctx.Err())
	}

	entity, err := p.resolver.Resolve(ctx, input)
	if err != nil {
		var nr *models.EntityNotResolvedError
		if errors.As(err, &nr) {
			return fail(res, models.OutcomeNotResolved, err)
		}
		return fail(res, models.OutcomeRetrievalFailed, err)
	}
	res.CIK = entity.CIK
	res.FundName = entity.Name

	history, err := p.resolver.FetchHistory(ctx, entity)
	if err != nil {
		return fail(res, models.OutcomeRetrievalFailed, err)
	}

	det := p.detector.Detect(history, quarter)
	switch det.Status {
	case DetectionPeriodNotFound:
		res.Outcome = models.OutcomePeriodNotFound
		return res
	case DetectionNotFirstTime:
		res.EarliestPeriod = det.EarliestPeriod.String()
	case DetectionFirstTime:
		res.IsFirstTime = true
	}

	if req.OnlyFirstTime && !res.IsFirstTime {
		res.Outcome = models.OutcomeFilteredOut
		return res
	}

	target := latestForPeriod(history, quarter)
	res.AccessionNumber = target.AccessionNumber
	res.FilingURL = p.source.ArchiveURL(entity.CIK, target.AccessionNumber, target.PrimaryDocument)

	infoTableURL, err := p.locateInfoTable(ctx, entity.CIK, target)
	if err != nil {
		return fail(res, models.OutcomeRetrievalFailed, err)
	}
	res.InfoTableURL = infoTableURL

	doc, err := p.source.FetchDocument(ctx, infoTableURL)
	if err != nil {
		return fail(res, models.OutcomeRetrievalFailed, err)
	}

	holdings, warnings, err := p.parser.Parse(doc)
	res.ParseWarnings = warnings
	switch {
	case err != nil:
		res.ParseStatus = models.ParseFailed
	case len(warnings) > 0:
		res.ParseStatus = models.ParseWithWarnings
	default:
		res.ParseStatus = models.ParseOK
	}
	if err != nil {
		if p.logger != nil {
			p.logger.Warn("information table parse failed",
				xlogger.String("cik", entity.CIK),
				xlogger.String("accession", target.AccessionNumber),
				xlogger.Error(err))
		}
		return fail(res, models.OutcomeParseFailed, err)
	}
	res.Holdings = holdings
	res.HoldingsCount = len(holdings)
	if p.metrics != nil {
		p.metrics.RecordHoldings(len(holdings))
	}

	if !req.Filter.Allows(res.HoldingsCount) {
		res.Outcome = models.OutcomeFilteredOut
		return res
	}

	res.Outcome = models.OutcomeOK
	return res
}

func fail(res *models.ProcessingResult, outcome models.Outcome, err error) *models.ProcessingResult {
	res.Outcome = outcome
	res.Error = err.Error()
	return res
}

// latestForPeriod picks the most recent qualifying filing covering the
// period: amendments supersede the original they amend.
func latestForPeriod(history []models.FilingHistoryEntry, quarter util.Quarter) models.FilingHistoryEntry {
	var target models.FilingHistoryEntry
	for _, e := range history {
		if !e.Period.Equal(quarter) || !e.Form.IsQualifying() {
			continue
		}
		if target.AccessionNumber == "" || e.FilingDate.After(target.FilingDate) {
			target = e
		}
	}
	return target
}

// filingIndex mirrors the repository's per-filing directory listing.
type filingIndex struct {
	Directory struct {
		Item []struct {
			Name string `json:"name"`
		} `json:"item"`
	} `json:"directory"`
}

// locateInfoTable finds the information-table file inside a filing's
// archive directory. Falls back to the primary document when the listing
// names no separate table.
func (p *Processor) locateInfoTable(ctx context.Context, cik string, entry models.FilingHistoryEntry) (string, error) {
	indexURL := p.source.ArchiveURL(cik, entry.AccessionNumber, "index.json")
	body, err := p.source.FetchDocument(ctx, indexURL)
	if err != nil {
		return "", err
	}

	var idx filingIndex
	if err := json.Unmarshal(body, &idx); err != nil {
		return "", err
	}

	for _, item := range idx.Directory.Item {
		name := strings.ToLower(item.Name)
		if strings.Contains(name, "infotable") && strings.HasSuffix(name, ".xml") {
			return p.source.ArchiveURL(cik, entry.AccessionNumber, item.Name), nil
		}
	}
	return p.source.ArchiveURL(cik, entry.AccessionNumber, entry.PrimaryDocument), nil
}
