package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"

	"EdgarPull/internal/domain/models"
	drepo "EdgarPull/internal/domain/repository"
	xlogger "EdgarPull/pkg/logger"
	"EdgarPull/pkg/util"
)

// EntityResolver maps a fund name or CIK to the canonical entity and its
// 13F filing history.
type EntityResolver struct {
	source drepo.FilingSource
	logger *xlogger.Logger
}

// NewEntityResolver creates an EntityResolver.
func NewEntityResolver(source drepo.FilingSource, logger *xlogger.Logger) *EntityResolver {
	return &EntityResolver{source: source, logger: logger}
}

// Resolve maps nameOrID to an Entity. Digit strings are treated as CIKs
// directly; anything else goes through the name index. Exact normalized
// match wins; a unique substring match is accepted as fallback; zero or
// multiple remaining candidates fail rather than guess.
func (r *EntityResolver) Resolve(ctx context.Context, nameOrID string) (*models.Entity, error) {
	input := strings.TrimSpace(nameOrID)
	if input == "" {
		return nil, &models.EntityNotResolvedError{Input: nameOrID, Failure: models.ResolveNoMatch}
	}

	if util.LooksLikeCIK(input) {
		return r.resolveByCIK(ctx, util.NormalizeCIK(input))
	}
	return r.resolveByName(ctx, input)
}

func (r *EntityResolver) resolveByCIK(ctx context.Context, cik string) (*models.Entity, error) {
	subs, err := r.source.FetchSubmissions(ctx, cik)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, &models.EntityNotResolvedError{Input: cik, Failure: models.ResolveNoMatch}
		}
		return nil, err
	}
	name := subs.Name
	if name == "" {
		name = cik
	}
	return &models.Entity{CIK: cik, Name: name}, nil
}

func (r *EntityResolver) resolveByName(ctx context.Context, name string) (*models.Entity, error) {
	matches, err := r.source.SearchCompanies(ctx, name)
	if err != nil {
		return nil, err
	}

	want := util.NormalizeFundName(name)

	var exact []drepo.CompanyMatch
	for _, m := range matches {
		if util.NormalizeFundName(m.Name) == want {
			exact = append(exact, m)
		}
	}
	if len(exact) == 1 {
		return &models.Entity{CIK: exact[0].CIK, Name: exact[0].Name}, nil
	}

	// Fallback: normalized substring containment in either direction.
	var fuzzy []drepo.CompanyMatch
	for _, m := range matches {
		n := util.NormalizeFundName(m.Name)
		if strings.Contains(n, want) || strings.Contains(want, n) {
			fuzzy = append(fuzzy, m)
		}
	}
	if len(fuzzy) == 1 {
		if r.logger != nil {
			r.logger.Debug("fuzzy entity match",
				xlogger.String("input", name),
				xlogger.String("matched", fuzzy[0].Name))
		}
		return &models.Entity{CIK: fuzzy[0].CIK, Name: fuzzy[0].Name}, nil
	}

	failure := models.ResolveNoMatch
	var candidates []string
	pool := fuzzy
	if len(exact) > 1 {
		pool = exact
	}
	if len(pool) > 1 {
		failure = models.ResolveAmbiguous
		for _, m := range pool {
			candidates = append(candidates, m.Name)
		}
	}
	return nil, &models.EntityNotResolvedError{Input: name, Failure: failure, Candidates: candidates}
}

// FetchHistory returns the entity's 13F-HR filing history, amendments
// included, sorted ascending by (filing date, period-of-report). Notice
// filings are excluded entirely; they never count toward first-filing
// status.
func (r *EntityResolver) FetchHistory(ctx context.Context, entity *models.Entity) ([]models.FilingHistoryEntry, error) {
	subs, err := r.source.FetchSubmissions(ctx, entity.CIK)
	if err != nil {
		return nil, err
	}
	history := buildHistory(&subs.Filings.Recent)
	entity.History = history
	return history, nil
}

func buildHistory(recent *drepo.RecentFilings) []models.FilingHistoryEntry {
	var history []models.FilingHistoryEntry
	for i, form := range recent.Form {
		f := models.FilingForm(form)
		if !f.IsQualifying() {
			continue
		}
		filed, ok := util.ParseDate(at(recent.FilingDate, i))
		if !ok {
			continue
		}
		entry := models.FilingHistoryEntry{
			AccessionNumber: at(recent.AccessionNumber, i),
			Form:            f,
			FilingDate:      filed,
			PrimaryDocument: at(recent.PrimaryDocument, i),
		}
		if report, ok := util.ParseDate(at(recent.ReportDate, i)); ok {
			entry.PeriodOfReport = report
			entry.Period = util.QuarterOfDate(report)
		} else {
			entry.Period = util.ReportedQuarter(filed)
			entry.PeriodOfReport = entry.Period.EndDate()
		}
		history = append(history, entry)
	}

	sort.SliceStable(history, func(i, j int) bool {
		if !history[i].FilingDate.Equal(history[j].FilingDate) {
			return history[i].FilingDate.Before(history[j].FilingDate)
		}
		return history[i].PeriodOfReport.Before(history[j].PeriodOfReport)
	})
	return history
}

func at(ss []string, i int) string {
	if i < len(ss) {
		return ss[i]
	}
	return ""
}
