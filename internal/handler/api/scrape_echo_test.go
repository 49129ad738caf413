package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"EdgarPull/internal/domain/models"
	drepo "EdgarPull/internal/domain/repository"
	"EdgarPull/internal/service/jobs"
	"EdgarPull/internal/usecase"
	xlogger "EdgarPull/pkg/logger"
	"EdgarPull/pkg/queue"

	"github.com/labstack/echo/v4"
)

type stubSource struct {
	submissions map[string]*drepo.Submissions
	documents   map[string][]byte
}

func (s *stubSource) FetchSubmissions(_ context.Context, cik string) (*drepo.Submissions, error) {
	if subs, ok := s.submissions[cik]; ok {
		return subs, nil
	}
	return nil, fmt.Errorf("submissions %s: %w", cik, models.ErrNotFound)
}

func (s *stubSource) FetchDocument(_ context.Context, location string) ([]byte, error) {
	if doc, ok := s.documents[location]; ok {
		return doc, nil
	}
	return nil, fmt.Errorf("document %s: %w", location, models.ErrNotFound)
}

func (s *stubSource) SearchCompanies(context.Context, string) ([]drepo.CompanyMatch, error) {
	return nil, nil
}

func (s *stubSource) ArchiveURL(cik, accessionNumber, document string) string {
	return fmt.Sprintf("/archives/%s/%s/%s", strings.TrimLeft(cik, "0"), strings.ReplaceAll(accessionNumber, "-", ""), document)
}

func (s *stubSource) Close() error { return nil }

type stubParser struct{ holdings int }

func (p *stubParser) Parse([]byte) ([]models.Holding, []models.ParseWarning, error) {
	return make([]models.Holding, p.holdings), nil, nil
}

func testHandler(t *testing.T) (*ScrapeEchoHandler, *jobs.Store, queue.Queue) {
	t.Helper()

	lgr, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	src := &stubSource{
		submissions: map[string]*drepo.Submissions{
			"0000000007": {
				CIK:  "7",
				Name: "EXAMPLE ADVISORS LLC",
				Filings: drepo.SubmissionFilings{Recent: drepo.RecentFilings{
					AccessionNumber: []string{"a-1"},
					Form:            []string{"13F-HR"},
					FilingDate:      []string{"2024-05-10"},
					ReportDate:      []string{"2024-03-31"},
					PrimaryDocument: []string{"primary.xml"},
				}},
			},
		},
		documents: map[string][]byte{
			"/archives/7/a1/index.json":  []byte(`{"directory":{"item":[{"name":"primary.xml"}]}}`),
			"/archives/7/a1/primary.xml": []byte("<informationTable/>"),
		},
	}

	resolver := usecase.NewEntityResolver(src, lgr)
	processor := usecase.NewProcessor(resolver, usecase.NewFirstTimeDetector(), src, &stubParser{holdings: 7}, nil, lgr, 2)
	service := usecase.NewScrapeService(processor)

	store := jobs.NewStore(time.Hour)
	t.Cleanup(store.Close)

	q := queue.NewMemoryQueue(lgr, &queue.QueueConfig{Workers: 1})
	q.RegisterJob(jobs.NewScrapeJob(service, store, lgr))
	if err := q.Start(); err != nil {
		t.Fatalf("queue start: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = q.Stop(ctx)
	})

	return NewScrapeEchoHandler(lgr, service, store, q), store, q
}

func doRequest(h *ScrapeEchoHandler, method, path, body string) *httptest.ResponseRecorder {
	e := echo.New()
	h.RegisterRoutes(e)

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h, _, _ := testHandler(t)
	rec := doRequest(h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestScrapeSync(t *testing.T) {
	h, _, _ := testHandler(t)
	rec := doRequest(h, http.MethodPost, "/api/scrape", `{"ciks":["7"],"quarter":"2024Q1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data models.ScrapeResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Data.TotalProcessed != 1 {
		t.Fatalf("processed = %d", body.Data.TotalProcessed)
	}
	if body.Data.Results[0].Outcome != models.OutcomeOK {
		t.Fatalf("outcome = %s (%s)", body.Data.Results[0].Outcome, body.Data.Results[0].Error)
	}
	if body.Data.Results[0].HoldingsCount != 7 {
		t.Fatalf("holdings = %d", body.Data.Results[0].HoldingsCount)
	}
}

func TestScrapeRequiresInput(t *testing.T) {
	h, _, _ := testHandler(t)
	rec := doRequest(h, http.MethodPost, "/api/scrape", `{}`)
	var body struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", body.Status)
	}
}

func TestScrapeBadQuarter(t *testing.T) {
	h, _, _ := testHandler(t)
	rec := doRequest(h, http.MethodPost, "/api/scrape", `{"ciks":["7"],"quarter":"enron"}`)
	var body struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", body.Status)
	}
}

func TestScrapeAsync(t *testing.T) {
	h, store, _ := testHandler(t)
	rec := doRequest(h, http.MethodPost, "/api/scrape", `{"ciks":["7"],"quarter":"2024Q1","async":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data models.JobStatus `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Data.JobID == "" {
		t.Fatal("missing job id")
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		st, ok := store.Get(body.Data.JobID)
		if !ok {
			t.Fatal("job vanished")
		}
		if st.Status == jobs.StatusCompleted {
			if st.Response == nil || st.Response.TotalProcessed != 1 {
				t.Fatalf("final status = %+v", st)
			}
			break
		}
		if st.Status == jobs.StatusFailed {
			t.Fatalf("job failed: %s", st.Message)
		}
		if time.Now().After(deadline) {
			t.Fatalf("job did not finish, status = %s", st.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestQuarters(t *testing.T) {
	h, _, _ := testHandler(t)
	rec := doRequest(h, http.MethodGet, "/api/quarters", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		Data models.QuartersResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Data.CurrentQuarter == "" || len(body.Data.AvailableQuarters) == 0 {
		t.Fatalf("response = %+v", body.Data)
	}
	if body.Data.AvailableQuarters[0] != body.Data.CurrentQuarter {
		t.Fatal("available quarters should start with the current quarter")
	}
}

func TestQuartersCount(t *testing.T) {
	h, _, _ := testHandler(t)

	cases := []struct {
		query string
		want  int
	}{
		{"?count=4", 4},
		{"?count=0", 40},
		{"?count=9999", 40},
		{"?count=abc", 40},
	}
	for _, c := range cases {
		rec := doRequest(h, http.MethodGet, "/api/quarters"+c.query, "")
		var body struct {
			Data models.QuartersResponse `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: decode response: %v", c.query, err)
		}
		if len(body.Data.AvailableQuarters) != c.want {
			t.Fatalf("%s: got %d quarters, want %d", c.query, len(body.Data.AvailableQuarters), c.want)
		}
	}
}

func TestJobStatusNotFound(t *testing.T) {
	h, _, _ := testHandler(t)
	rec := doRequest(h, http.MethodGet, "/api/jobs/nope", "")
	var body struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", body.Status)
	}
}
