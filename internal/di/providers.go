package di

import (
	"fmt"

	"EdgarPull/internal/domain/repository"
	"EdgarPull/internal/handler/api"
	"EdgarPull/internal/service/edgar"
	"EdgarPull/internal/service/infotable"
	"EdgarPull/internal/service/jobs"
	"EdgarPull/internal/service/ratelimit"
	"EdgarPull/internal/usecase"
	"EdgarPull/pkg/cache"
	"EdgarPull/pkg/config"
	xhttp "EdgarPull/pkg/http"
	applogger "EdgarPull/pkg/logger"
	"EdgarPull/pkg/metrics"
	"EdgarPull/pkg/queue"
	"EdgarPull/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	lgr, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return lgr, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache creates the document cache backend selected in config.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	switch cfg.Cache.Backend {
	case "memory":
		return cache.NewMemoryCache(
			cache.WithMemoryMaxSize(cfg.Cache.Memory.MaxSize),
		), nil
	case "redis":
		return newRedisCache(cfg)
	case "layered":
		rc, err := newRedisCache(cfg)
		if err != nil {
			return nil, err
		}
		return cache.NewLayeredCache(rc,
			cache.WithLayeredMemorySize(cfg.Cache.Memory.MaxSize),
		), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Cache.Backend)
	}
}

func newRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Cache.Redis.Host),
		cache.WithRedisPort(cfg.Cache.Redis.Port),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideLimiter creates the shared repository rate limiter.
func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Edgar.MaxRPS)
}

// ProvideFilingSource creates the rate-limited, caching repository client.
func ProvideFilingSource(
	cfg *config.Config,
	limiter *ratelimit.Limiter,
	docCache cache.Service,
	m repository.Metrics,
	lgr *applogger.Logger,
) (repository.FilingSource, error) {
	client, err := edgar.New(cfg.Edgar.UserAgent, limiter, docCache, m, lgr,
		edgar.WithBaseURL(cfg.Edgar.BaseURL),
		edgar.WithDataBaseURL(cfg.Edgar.DataBaseURL),
		edgar.WithRetry(cfg.Edgar.MaxRetries, cfg.Edgar.BackoffMin, cfg.Edgar.BackoffMax),
		edgar.WithTimeout(cfg.Edgar.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("edgar client: %w", err)
	}
	return client, nil
}

// ProvideParser creates the information-table parser.
func ProvideParser() repository.HoldingsParser {
	return infotable.NewParser()
}

// ProvideResolver creates the entity resolver.
func ProvideResolver(source repository.FilingSource, lgr *applogger.Logger) *usecase.EntityResolver {
	return usecase.NewEntityResolver(source, lgr)
}

// ProvideDetector creates the first-time-filer detector.
func ProvideDetector() *usecase.FirstTimeDetector {
	return usecase.NewFirstTimeDetector()
}

// ProvideProcessor creates the scrape pipeline.
func ProvideProcessor(
	resolver *usecase.EntityResolver,
	detector *usecase.FirstTimeDetector,
	source repository.FilingSource,
	parser repository.HoldingsParser,
	m repository.Metrics,
	lgr *applogger.Logger,
	cfg *config.Config,
) *usecase.Processor {
	return usecase.NewProcessor(resolver, detector, source, parser, m, lgr, cfg.Scrape.Workers)
}

// ProvideScrapeService creates the scrape service.
func ProvideScrapeService(processor *usecase.Processor) *usecase.ScrapeService {
	return usecase.NewScrapeService(processor)
}

// ProvideJobStore creates the async job registry.
func ProvideJobStore() *jobs.Store {
	return jobs.NewStore(0)
}

// ProvideQueue creates the job queue and registers the scrape consumer.
// Redis-backed when the cache runs on Redis, in-process otherwise.
func ProvideQueue(
	cfg *config.Config,
	lgr *applogger.Logger,
	service *usecase.ScrapeService,
	store *jobs.Store,
) queue.Queue {
	qcfg := &queue.QueueConfig{Workers: 1, QueueSize: 64}

	var q queue.Queue
	switch cfg.Cache.Backend {
	case "redis", "layered":
		client := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Cache.Redis.Host, cfg.Cache.Redis.Port),
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		q = queue.NewRedisQueue(lgr, qcfg, client, queue.ModeProducerConsumer)
	default:
		q = queue.NewMemoryQueue(lgr, qcfg)
	}

	q.RegisterJob(jobs.NewScrapeJob(service, store, lgr))
	return q
}

// ProvideHandler creates the HTTP handler.
func ProvideHandler(
	lgr *applogger.Logger,
	service *usecase.ScrapeService,
	store *jobs.Store,
	q queue.Queue,
) xhttp.Handler {
	return api.NewScrapeEchoHandler(lgr, service, store, q)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	lgr *applogger.Logger,
	handler xhttp.Handler,
	q queue.Queue,
	store *jobs.Store,
	source repository.FilingSource,
) *server.App {
	return server.New(cfg, lgr, handler, q, store, source)
}
