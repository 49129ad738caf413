package jobs

import (
	"errors"
	"testing"
	"time"

	"EdgarPull/internal/domain/models"
)

func TestStoreLifecycle(t *testing.T) {
	s := NewStore(time.Hour)
	defer s.Close()

	id := s.Create(3)
	st, ok := s.Get(id)
	if !ok {
		t.Fatal("job not found after create")
	}
	if st.Status != StatusPending || st.Total != 3 {
		t.Fatalf("initial status = %+v", st)
	}

	s.Start(id)
	s.Progress(id, 2, 3)
	st, _ = s.Get(id)
	if st.Status != StatusProcessing || st.Processed != 2 {
		t.Fatalf("status after progress = %+v", st)
	}
	if st.Progress < 0.6 || st.Progress > 0.7 {
		t.Fatalf("progress = %f", st.Progress)
	}

	s.Complete(id, &models.ScrapeResponse{Success: true, Message: "done"})
	st, _ = s.Get(id)
	if st.Status != StatusCompleted || st.Response == nil {
		t.Fatalf("status after complete = %+v", st)
	}
}

func TestStoreFail(t *testing.T) {
	s := NewStore(time.Hour)
	defer s.Close()

	id := s.Create(1)
	s.Fail(id, errors.New("boom"))
	st, _ := s.Get(id)
	if st.Status != StatusFailed || st.Message != "boom" {
		t.Fatalf("status = %+v", st)
	}
}

func TestStoreUnknownJob(t *testing.T) {
	s := NewStore(time.Hour)
	defer s.Close()

	if _, ok := s.Get("nope"); ok {
		t.Fatal("unknown job reported as found")
	}
	if _, _, ok := s.Subscribe("nope"); ok {
		t.Fatal("subscribe to unknown job succeeded")
	}
}

func TestStoreSubscribe(t *testing.T) {
	s := NewStore(time.Hour)
	defer s.Close()

	id := s.Create(2)
	ch, cancel, ok := s.Subscribe(id)
	if !ok {
		t.Fatal("subscribe failed")
	}
	defer cancel()

	first := <-ch
	if first.Status != StatusPending {
		t.Fatalf("first update status = %s", first.Status)
	}

	s.Start(id)
	s.Complete(id, &models.ScrapeResponse{Success: true})

	var last models.JobStatus
	for st := range ch {
		last = st
	}
	if last.Status != StatusCompleted {
		t.Fatalf("last update status = %s", last.Status)
	}
}

func TestStoreSubscribeAfterFinish(t *testing.T) {
	s := NewStore(time.Hour)
	defer s.Close()

	id := s.Create(1)
	s.Complete(id, &models.ScrapeResponse{Success: true})

	ch, cancel, ok := s.Subscribe(id)
	if !ok {
		t.Fatal("subscribe failed")
	}
	defer cancel()

	st, open := <-ch
	if !open || st.Status != StatusCompleted {
		t.Fatalf("snapshot = %+v open=%v", st, open)
	}
	if _, open := <-ch; open {
		t.Fatal("channel should close after final snapshot")
	}
}
