package usecase

import (
	"context"
	"fmt"
	"time"

	"EdgarPull/internal/domain/models"
	"EdgarPull/pkg/util"
)

// ScrapeService adapts the transport-level request shape onto the
// processor. Shared by the synchronous endpoint and the async job.
type ScrapeService struct {
	processor *Processor
}

func NewScrapeService(processor *Processor) *ScrapeService {
	return &ScrapeService{processor: processor}
}

// Execute runs one scrape. Only configuration problems return an error;
// per-entity failures are reported inside the response.
func (s *ScrapeService) Execute(ctx context.Context, req *models.ScrapeRequest, progress Progress) (*models.ScrapeResponse, error) {
	batch, err := buildBatch(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results, err := s.processor.Run(ctx, batch, progress)
	if err != nil {
		return nil, err
	}

	firstTime := 0
	for _, r := range results {
		if r.IsFirstTime {
			firstTime++
		}
	}

	return &models.ScrapeResponse{
		Success:          true,
		Message:          fmt.Sprintf("processed %d entities", len(results)),
		Results:          results,
		TotalProcessed:   len(results),
		TotalFirstTime:   firstTime,
		ExecutionSeconds: time.Since(start).Seconds(),
	}, nil
}

// InputCount reports the number of distinct inputs a request carries,
// used to size job progress before the run starts.
func (s *ScrapeService) InputCount(req *models.ScrapeRequest) int {
	batch, err := buildBatch(req)
	if err != nil {
		return 0
	}
	return len(gatherInputs(batch))
}

func buildBatch(req *models.ScrapeRequest) (*BatchRequest, error) {
	batch := &BatchRequest{
		Funds:         req.Funds,
		CIKs:          req.CIKs,
		OnlyFirstTime: req.OnlyFirstTime,
	}

	if req.Quarter != "" {
		q, err := util.ParseQuarter(req.Quarter)
		if err != nil {
			return nil, &models.ConfigurationError{Field: "quarter", Reason: err.Error()}
		}
		batch.Quarter = q
	}

	if req.MinHoldings != nil || req.MaxHoldings != nil || len(req.BetweenHoldings) != 0 {
		batch.Filter = &HoldingsFilter{
			Min:     req.MinHoldings,
			Max:     req.MaxHoldings,
			Between: req.BetweenHoldings,
		}
	}

	return batch, nil
}
