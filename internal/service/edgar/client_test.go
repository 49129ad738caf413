package edgar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"EdgarPull/internal/domain/models"
	"EdgarPull/internal/service/ratelimit"
	"EdgarPull/pkg/cache"
)

func newTestClient(t *testing.T, url string, docCache cache.Service) *Client {
	t.Helper()
	c, err := New("test test@example.com", ratelimit.New(1000), docCache, nil, nil,
		WithBaseURL(url),
		WithDataBaseURL(url),
		WithRetry(3, time.Millisecond, 5*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestNewRequiresUserAgent(t *testing.T) {
	_, err := New("  ", ratelimit.New(10), nil, nil, nil)
	var cfgErr *models.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestFetchDocumentSetsUserAgent(t *testing.T) {
	var gotUA atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.Header.Get("User-Agent"))
		w.Write([]byte("doc"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	body, err := c.FetchDocument(context.Background(), srv.URL+"/doc.xml")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(body) != "doc" {
		t.Fatalf("unexpected body %q", body)
	}
	if gotUA.Load() != "test test@example.com" {
		t.Fatalf("User-Agent not sent, got %v", gotUA.Load())
	}
}

func TestFetchRetriesTransient(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	body, err := c.FetchDocument(context.Background(), srv.URL+"/doc.xml")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(body) != "ok" || atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("expected success on third attempt, calls=%d body=%q", calls, body)
	}
}

func TestFetchExhaustsRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	_, err := c.FetchDocument(context.Background(), srv.URL+"/doc.xml")
	var rerr *models.RetrievalError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RetrievalError, got %v", err)
	}
	if rerr.Attempts != 3 || atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("expected 3 attempts, got err=%d calls=%d", rerr.Attempts, calls)
	}
}

func TestFetchClientErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	_, err := c.FetchDocument(context.Background(), srv.URL+"/doc.xml")
	if err == nil {
		t.Fatalf("expected error")
	}
	var rerr *models.RetrievalError
	if errors.As(err, &rerr) {
		t.Fatalf("4xx must not be wrapped as retrieval failure: %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("4xx retried: %d calls", calls)
	}
}

func TestFetchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	_, err := c.FetchDocument(context.Background(), srv.URL+"/missing.xml")
	if !IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestFetchDocumentCached(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte("cached-doc"))
	}))
	defer srv.Close()

	mc := cache.NewMemoryCache()
	defer mc.Close()
	c := newTestClient(t, srv.URL, mc)

	for i := 0; i < 3; i++ {
		body, err := c.FetchDocument(context.Background(), srv.URL+"/doc.xml")
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if string(body) != "cached-doc" {
			t.Fatalf("unexpected body %q", body)
		}
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected single upstream fetch, got %d", calls)
	}
}

func TestFetchSubmissions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/submissions/CIK0001167483.json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{
			"cik": "1167483",
			"name": "CITADEL ADVISORS LLC",
			"filings": {"recent": {
				"accessionNumber": ["0001167483-24-000001"],
				"form": ["13F-HR"],
				"filingDate": ["2024-02-14"],
				"reportDate": ["2023-12-31"],
				"primaryDocument": ["primary_doc.xml"]
			}}
		}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	subs, err := c.FetchSubmissions(context.Background(), "0001167483")
	if err != nil {
		t.Fatalf("fetch submissions: %v", err)
	}
	if subs.Name != "CITADEL ADVISORS LLC" {
		t.Fatalf("unexpected name %q", subs.Name)
	}
	if len(subs.Filings.Recent.Form) != 1 || subs.Filings.Recent.Form[0] != "13F-HR" {
		t.Fatalf("unexpected filings %+v", subs.Filings.Recent)
	}
}

func TestParseCompanySearch(t *testing.T) {
	feed := []byte(`<?xml version="1.0" encoding="ISO-8859-1" ?>
	<feed xmlns="http://www.w3.org/2005/Atom">
	<company-info>
		<cik>0001167483</cik>
		<conformed-name>CITADEL ADVISORS LLC</conformed-name>
	</company-info>
	<company-info>
		<cik>1056903</cik>
		<conformed-name>AQR CAPITAL MANAGEMENT LLC</conformed-name>
	</company-info>
	</feed>`)

	matches, err := parseCompanySearch(feed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].CIK != "0001167483" || matches[1].CIK != "0001056903" {
		t.Fatalf("unexpected CIKs %+v", matches)
	}
}

func TestParseCompanySearchFormerNames(t *testing.T) {
	feed := []byte(`<?xml version="1.0" encoding="ISO-8859-1" ?>
	<feed xmlns="http://www.w3.org/2005/Atom">
	<company-info>
		<cik>0001067983</cik>
		<conformed-name>BERKSHIRE HATHAWAY INC</conformed-name>
		<formerly-names>
			<names>
				<name>NBH INC</name>
				<name>BERKSHIRE HATHAWAY INC /DE/</name>
			</names>
		</formerly-names>
	</company-info>
	</feed>`)

	matches, err := parseCompanySearch(feed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Name != "BERKSHIRE HATHAWAY INC" {
		t.Fatalf("former names leaked into current name: %q", matches[0].Name)
	}
}
