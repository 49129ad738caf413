package jobs

import (
	"context"
	"fmt"

	"EdgarPull/internal/domain/models"
	"EdgarPull/internal/usecase"
	"EdgarPull/pkg/logger"
	"EdgarPull/pkg/queue"
)

// ScrapePayload is the queue message for one async scrape.
type ScrapePayload struct {
	JobID   string                `json:"job_id"`
	Request *models.ScrapeRequest `json:"request"`
}

// ScrapeJob consumes queued scrape requests and reports progress to the
// job store.
type ScrapeJob struct {
	service *usecase.ScrapeService
	store   *Store
	logger  *logger.Logger
}

func NewScrapeJob(service *usecase.ScrapeService, store *Store, lgr *logger.Logger) *ScrapeJob {
	return &ScrapeJob{service: service, store: store, logger: lgr}
}

func (j *ScrapeJob) Name() string { return "scrape" }

func (j *ScrapeJob) Type() string { return "scrape.request" }

func (j *ScrapeJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[ScrapePayload](payload)
	if err != nil {
		return fmt.Errorf("scrape payload: %w", err)
	}
	if p.JobID == "" || p.Request == nil {
		return fmt.Errorf("scrape payload incomplete")
	}

	j.store.Start(p.JobID)
	j.logger.Info("scrape job started", logger.String("job_id", p.JobID))

	resp, err := j.service.Execute(ctx, p.Request, func(done, total int) {
		j.store.Progress(p.JobID, done, total)
	})
	if err != nil {
		j.store.Fail(p.JobID, err)
		j.logger.Error("scrape job failed",
			logger.String("job_id", p.JobID),
			logger.Error(err))
		// The failure is recorded on the job; do not requeue.
		return nil
	}

	j.store.Complete(p.JobID, resp)
	j.logger.Info("scrape job completed",
		logger.String("job_id", p.JobID),
		logger.Int("processed", resp.TotalProcessed))
	return nil
}
