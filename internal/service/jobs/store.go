package jobs

import (
	"fmt"
	"sync"
	"time"

	"EdgarPull/internal/domain/models"
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Store tracks async scrape jobs in memory and fans progress out to
// subscribers. Finished jobs stay visible for retention, then get swept.
type Store struct {
	mu        sync.RWMutex
	jobs      map[string]*record
	retention time.Duration
	stopCh    chan struct{}
	stopOnce  sync.Once
}

type record struct {
	status      models.JobStatus
	finishedAt  time.Time
	subscribers []chan models.JobStatus
}

// NewStore creates a Store. Jobs are swept retention after they finish;
// zero means one hour.
func NewStore(retention time.Duration) *Store {
	if retention <= 0 {
		retention = time.Hour
	}
	s := &Store{
		jobs:      make(map[string]*record),
		retention: retention,
		stopCh:    make(chan struct{}),
	}
	go s.sweeper()
	return s
}

// Close stops the background sweeper.
func (s *Store) Close() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Create registers a new pending job and returns its ID.
func (s *Store) Create(total int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := fmt.Sprintf("job-%d", time.Now().UnixNano())
	s.jobs[id] = &record{status: models.JobStatus{
		JobID:   id,
		Status:  StatusPending,
		Message: "queued",
		Total:   total,
	}}
	return id
}

// Get returns a snapshot of the job, or false if unknown.
func (s *Store) Get(id string) (models.JobStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.jobs[id]
	if !ok {
		return models.JobStatus{}, false
	}
	return rec.status, true
}

// Start marks the job as processing.
func (s *Store) Start(id string) {
	s.update(id, func(st *models.JobStatus) {
		st.Status = StatusProcessing
		st.Message = "processing"
	})
}

// Progress records per-entity completion.
func (s *Store) Progress(id string, done, total int) {
	s.update(id, func(st *models.JobStatus) {
		st.Processed = done
		st.Total = total
		if total > 0 {
			st.Progress = float64(done) / float64(total)
		}
	})
}

// Complete stores the final response and marks the job done.
func (s *Store) Complete(id string, resp *models.ScrapeResponse) {
	s.update(id, func(st *models.JobStatus) {
		st.Status = StatusCompleted
		st.Message = resp.Message
		st.Progress = 1
		st.Response = resp
	})
}

// Fail marks the job failed with the error text.
func (s *Store) Fail(id string, err error) {
	s.update(id, func(st *models.JobStatus) {
		st.Status = StatusFailed
		st.Message = err.Error()
	})
}

// Subscribe returns a channel receiving every status change of the job,
// starting with its current state, plus a cancel function. The channel
// closes when the job finishes or cancel is called.
func (s *Store) Subscribe(id string) (<-chan models.JobStatus, func(), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.jobs[id]
	if !ok {
		return nil, nil, false
	}

	ch := make(chan models.JobStatus, 16)
	ch <- rec.status
	if finished(rec.status.Status) {
		close(ch)
		return ch, func() {}, true
	}

	rec.subscribers = append(rec.subscribers, ch)
	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range rec.subscribers {
			if sub == ch {
				rec.subscribers = append(rec.subscribers[:i], rec.subscribers[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, cancel, true
}

func (s *Store) update(id string, fn func(*models.JobStatus)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.jobs[id]
	if !ok {
		return
	}
	fn(&rec.status)

	for _, sub := range rec.subscribers {
		select {
		case sub <- rec.status:
		default: // slow subscriber, drop the intermediate update
		}
	}

	if finished(rec.status.Status) {
		rec.finishedAt = time.Now()
		for _, sub := range rec.subscribers {
			close(sub)
		}
		rec.subscribers = nil
	}
}

func finished(status string) bool {
	return status == StatusCompleted || status == StatusFailed
}

func (s *Store) sweeper() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-s.retention)
			s.mu.Lock()
			for id, rec := range s.jobs {
				if finished(rec.status.Status) && rec.finishedAt.Before(cutoff) {
					delete(s.jobs, id)
				}
			}
			s.mu.Unlock()
		}
	}
}
