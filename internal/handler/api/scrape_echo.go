package api

import (
	"errors"
	"net/http"
	"time"

	models "EdgarPull/internal/domain/models"
	"EdgarPull/internal/service/jobs"
	"EdgarPull/internal/usecase"
	xhttp "EdgarPull/pkg/http"
	xlogger "EdgarPull/pkg/logger"
	"EdgarPull/pkg/queue"
	"EdgarPull/pkg/util"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// earliest period offered by the quarters endpoint
const (
	quarterBacklog    = 40
	maxQuarterBacklog = 200
)

// ScrapeEchoHandler implements Echo-based HTTP handlers following Clean Architecture.
type ScrapeEchoHandler struct {
	logger   *xlogger.Logger
	service  *usecase.ScrapeService
	store    *jobs.Store
	queue    queue.QueueService
	upgrader websocket.Upgrader
}

func NewScrapeEchoHandler(logger *xlogger.Logger, service *usecase.ScrapeService, store *jobs.Store, q queue.QueueService) *ScrapeEchoHandler {
	return &ScrapeEchoHandler{
		logger:  logger,
		service: service,
		store:   store,
		queue:   q,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (h *ScrapeEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	g := e.Group("/api")
	g.POST("/scrape", h.Scrape)
	g.GET("/quarters", h.Quarters)
	g.GET("/jobs/:id", h.JobStatus)
	g.GET("/jobs/:id/ws", h.JobProgress)
}

func (h *ScrapeEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *ScrapeEchoHandler) Scrape(c echo.Context) error {
	req := &models.ScrapeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if len(req.Funds) == 0 && len(req.CIKs) == 0 {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code:    "ERR_REQUIRED",
			Field:   "funds",
			Message: "at least one fund name or CIK is required",
		}})
	}

	if req.Async {
		return h.scrapeAsync(c, req)
	}

	res, err := h.service.Execute(c.Request().Context(), req, nil)
	if err != nil {
		return h.scrapeError(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ScrapeEchoHandler) scrapeAsync(c echo.Context, req *models.ScrapeRequest) error {
	id := h.store.Create(h.service.InputCount(req))
	payload := jobs.ScrapePayload{JobID: id, Request: req}

	if err := h.queue.PublishMessage(c.Request().Context(), "scrape.request", payload); err != nil {
		h.logger.Error("scrape enqueue error", xlogger.Error(err))
		h.store.Fail(id, err)
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not queue scrape").WithError(err))
	}

	st, _ := h.store.Get(id)
	return xhttp.CreatedResponse(c, st)
}

func (h *ScrapeEchoHandler) scrapeError(c echo.Context, err error) error {
	var cfgErr *models.ConfigurationError
	if errors.As(err, &cfgErr) {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code:    "ERR_INVALID",
			Field:   cfgErr.Field,
			Message: cfgErr.Reason,
		}})
	}
	h.logger.Error("scrape usecase error", xlogger.Error(err))
	return xhttp.AppErrorResponse(c, err)
}

func (h *ScrapeEchoHandler) Quarters(c echo.Context) error {
	count := xhttp.ParseIntDefault(c.QueryParam("count"), quarterBacklog)
	if count < 1 || count > maxQuarterBacklog {
		count = quarterBacklog
	}
	current := util.LatestQuarter(time.Now())
	available := make([]string, 0, count)
	q := current
	for i := 0; i < count; i++ {
		available = append(available, q.String())
		q = q.Prev()
	}
	return xhttp.SuccessResponse(c, &models.QuartersResponse{
		CurrentQuarter:    current.String(),
		AvailableQuarters: available,
	})
}

func (h *ScrapeEchoHandler) JobStatus(c echo.Context) error {
	st, ok := h.store.Get(c.Param("id"))
	if !ok {
		return xhttp.NotFoundResponse(c, "job not found")
	}
	return xhttp.SuccessResponse(c, st)
}

// JobProgress streams job status updates over a websocket until the job
// finishes or the client goes away.
func (h *ScrapeEchoHandler) JobProgress(c echo.Context) error {
	id := c.Param("id")
	updates, cancel, ok := h.store.Subscribe(id)
	if !ok {
		return xhttp.NotFoundResponse(c, "job not found")
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Drain client frames so close messages are noticed.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case st, open := <-updates:
			if !open {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "job finished"))
				return nil
			}
			if err := conn.WriteJSON(st); err != nil {
				h.logger.Debug("job websocket write error",
					xlogger.String("job_id", id),
					xlogger.Error(err))
				return nil
			}
		case <-clientGone:
			return nil
		}
	}
}
