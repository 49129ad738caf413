package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"EdgarPull/pkg/logger"
)

// MemoryQueue is an in-process queue with the same worker and retry
// semantics as the Redis variant. It is the default when no Redis is
// configured; messages do not survive a restart.
type MemoryQueue struct {
	logger    *logger.Logger
	config    *QueueConfig
	jobs      map[string]Job
	messages  chan Message
	wg        sync.WaitGroup
	mu        sync.RWMutex
	isRunning bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewMemoryQueue creates a new in-process queue.
func NewMemoryQueue(lgr *logger.Logger, config *QueueConfig) *MemoryQueue {
	if config == nil {
		config = &QueueConfig{}
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 64
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 10 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &MemoryQueue{
		logger:   lgr,
		config:   config,
		jobs:     make(map[string]Job),
		messages: make(chan Message, config.QueueSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// RegisterJobs registers multiple jobs.
func (m *MemoryQueue) RegisterJobs(jobs []Job) {
	for _, job := range jobs {
		m.RegisterJob(job)
	}
}

// RegisterJob registers a single job.
func (m *MemoryQueue) RegisterJob(job Job) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.jobs[job.Type()]; exists {
		m.logger.Warn("job already registered", logger.String("job", job.Name()))
		return
	}

	m.jobs[job.Type()] = job
	m.logger.Info("job registered",
		logger.String("job", job.Name()),
		logger.String("type", job.Type()))
}

// Start starts the queue workers.
func (m *MemoryQueue) Start() error {
	m.mu.Lock()
	if m.isRunning {
		m.mu.Unlock()
		return fmt.Errorf("queue already running")
	}
	m.isRunning = true
	m.mu.Unlock()

	for i := 0; i < m.config.Workers; i++ {
		m.wg.Add(1)
		go m.worker(i)
	}
	m.logger.Info("memory queue started", logger.Int("workers", m.config.Workers))

	return nil
}

// Stop gracefully stops the queue.
func (m *MemoryQueue) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.isRunning {
		m.mu.Unlock()
		return nil
	}
	m.isRunning = false
	m.mu.Unlock()

	m.logger.Info("stopping memory queue...")
	m.cancel()

	doneCh := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(doneCh)
	}()

	select {
	case <-ctx.Done():
		m.logger.Warn("timeout waiting for queue workers", logger.Error(ctx.Err()))
		return fmt.Errorf("timeout: %w", ctx.Err())
	case <-doneCh:
		m.logger.Info("memory queue stopped gracefully")
		return nil
	}
}

// Enqueue adds a message to the queue.
func (m *MemoryQueue) Enqueue(ctx context.Context, msgType string, payload interface{}) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.isRunning {
		return fmt.Errorf("queue not running")
	}
	if _, exists := m.jobs[msgType]; !exists {
		return fmt.Errorf("no job registered for type: %s", msgType)
	}

	msg := Message{
		ID:        fmt.Sprintf("%d", time.Now().UnixNano()),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
		Attempts:  0,
	}

	select {
	case m.messages <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("queue full")
	}
}

// PublishMessage publishes a message (implements QueueService).
func (m *MemoryQueue) PublishMessage(ctx context.Context, msgType string, payload interface{}) error {
	return m.Enqueue(ctx, msgType, payload)
}

func (m *MemoryQueue) worker(id int) {
	defer m.wg.Done()
	m.logger.Info("queue worker started", logger.Int("worker_id", id))

	for {
		select {
		case <-m.ctx.Done():
			m.logger.Info("queue worker stopping", logger.Int("worker_id", id))
			return
		case msg := <-m.messages:
			m.processMessage(msg)
		}
	}
}

func (m *MemoryQueue) processMessage(msg Message) {
	m.mu.RLock()
	job, exists := m.jobs[msg.Type]
	m.mu.RUnlock()
	if !exists {
		m.logger.Error("no job found",
			logger.String("type", msg.Type),
			logger.String("id", msg.ID))
		return
	}

	if err := job.Handle(m.ctx, msg.Payload); err != nil {
		m.logger.Error("message processing error",
			logger.String("id", msg.ID),
			logger.String("job", job.Name()),
			logger.Int("attempt", msg.Attempts+1),
			logger.Error(err))

		if msg.Attempts < m.config.RetryLimit {
			msg.Attempts++
			m.wg.Add(1)
			go func(msg Message) {
				defer m.wg.Done()
				select {
				case <-m.ctx.Done():
				case <-time.After(m.config.RetryDelay):
					select {
					case m.messages <- msg:
					default:
						m.logger.Error("retry dropped, queue full", logger.String("id", msg.ID))
					}
				}
			}(msg)
		}
	}
}
