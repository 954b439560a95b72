package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"tallermatch/internal/backend"
	"tallermatch/internal/cache"
	"tallermatch/internal/models"
)

type testLogger struct{ t *testing.T }

func (l testLogger) Infof(format string, args ...interface{})  { l.t.Logf("INFO "+format, args...) }
func (l testLogger) Errorf(format string, args ...interface{}) { l.t.Logf("ERROR "+format, args...) }

// fakeBackend counts list hits and serves a mutable request collection.
type fakeBackend struct {
	listHits   int64
	activeHits int64
	failReads  atomic.Bool
	srv        *httptest.Server
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	f := &fakeBackend{}
	mux := http.NewServeMux()
	mux.HandleFunc("/requests", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if f.failReads.Load() {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			atomic.AddInt64(&f.listHits, 1)
			json.NewEncoder(w).Encode([]models.ServiceRequest{
				{ID: "req-1", Status: "published", TotalOffers: 1, CreatedAt: time.Now()},
			})
		case http.MethodPost:
			json.NewEncoder(w).Encode(models.ServiceRequest{ID: "req-new", Status: "created"})
		}
	})
	mux.HandleFunc("/requests/active", func(w http.ResponseWriter, r *http.Request) {
		if f.failReads.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		atomic.AddInt64(&f.activeHits, 1)
		json.NewEncoder(w).Encode([]models.ServiceRequest{
			{ID: "req-1", Status: "published", TotalOffers: 1, CreatedAt: time.Now()},
		})
	})
	mux.HandleFunc("/requests/req-1/select-offer", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.ServiceRequest{ID: "req-1", Status: "awarded"})
	})
	mux.HandleFunc("/requests/req-1/publish", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.ServiceRequest{ID: "req-1", Status: "published"})
	})
	mux.HandleFunc("/requests/req-1", func(w http.ResponseWriter, r *http.Request) {
		if f.failReads.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(models.ServiceRequest{ID: "req-1", Status: "published", TotalOffers: 1})
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func newService(t *testing.T, f *fakeBackend, ttls TTLs) *RequestService {
	t.Helper()
	api := backend.NewClient(f.srv.Client(), f.srv.URL)
	return NewRequestService(api, cache.NewMemoryStore(), testLogger{t}, ttls)
}

func TestListRequestsWithoutSessionIsEmpty(t *testing.T) {
	f := newFakeBackend(t)
	svc := newService(t, f, TTLs{})

	requests, err := svc.ListRequests(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(requests) != 0 {
		t.Fatalf("expected empty result got %+v", requests)
	}
	if atomic.LoadInt64(&f.listHits) != 0 {
		t.Fatal("backend must not be hit without a session")
	}
}

func TestListRequestsServesFromCache(t *testing.T) {
	f := newFakeBackend(t)
	svc := newService(t, f, TTLs{})

	for i := 0; i < 3; i++ {
		if _, err := svc.ListRequests(context.Background(), "token-1"); err != nil {
			t.Fatalf("list %d: %v", i, err)
		}
	}
	if hits := atomic.LoadInt64(&f.listHits); hits != 1 {
		t.Fatalf("expected 1 backend hit within the staleness window got %d", hits)
	}
}

func TestSelectOfferDirtiesTheCache(t *testing.T) {
	f := newFakeBackend(t)
	svc := newService(t, f, TTLs{All: time.Hour, Active: time.Hour})

	if _, err := svc.ListRequests(context.Background(), "token-1"); err != nil {
		t.Fatalf("warm list: %v", err)
	}
	if _, err := svc.ListActiveRequests(context.Background(), "token-1"); err != nil {
		t.Fatalf("warm active: %v", err)
	}

	if _, err := svc.SelectOffer(context.Background(), "token-1", "req-1", "off-1"); err != nil {
		t.Fatalf("select offer: %v", err)
	}

	// Both collection reads must bypass the hour-long staleness window:
	// the entries were deleted, not merely aged.
	if _, err := svc.ListRequests(context.Background(), "token-1"); err != nil {
		t.Fatalf("list after mutation: %v", err)
	}
	if _, err := svc.ListActiveRequests(context.Background(), "token-1"); err != nil {
		t.Fatalf("active after mutation: %v", err)
	}
	if hits := atomic.LoadInt64(&f.listHits); hits != 2 {
		t.Fatalf("expected refetch after invalidation, got %d hits", hits)
	}
	if hits := atomic.LoadInt64(&f.activeHits); hits != 2 {
		t.Fatalf("expected active refetch after invalidation, got %d hits", hits)
	}
}

func TestStaleFallbackWhenBackendDown(t *testing.T) {
	f := newFakeBackend(t)
	// Tiny TTL so the warm entry ages out immediately.
	svc := newService(t, f, TTLs{All: time.Nanosecond})

	if _, err := svc.ListRequests(context.Background(), "token-1"); err != nil {
		t.Fatalf("warm list: %v", err)
	}

	f.failReads.Store(true)
	time.Sleep(time.Millisecond)

	requests, err := svc.ListRequests(context.Background(), "token-1")
	if err != nil {
		t.Fatalf("expected stale fallback, got error: %v", err)
	}
	if len(requests) != 1 || requests[0].ID != "req-1" {
		t.Fatalf("expected stale copy of req-1 got %+v", requests)
	}
}

func TestMutationsRequireSession(t *testing.T) {
	f := newFakeBackend(t)
	svc := newService(t, f, TTLs{})

	if _, err := svc.CreateRequest(context.Background(), "", models.CreateRequestInput{}); err != models.ErrNoSession {
		t.Fatalf("expected ErrNoSession got %v", err)
	}
	if err := svc.CancelRequest(context.Background(), "", "req-1"); err != models.ErrNoSession {
		t.Fatalf("expected ErrNoSession got %v", err)
	}
	if _, err := svc.SelectOffer(context.Background(), "", "req-1", "off-1"); err != models.ErrNoSession {
		t.Fatalf("expected ErrNoSession got %v", err)
	}
}

func TestCancelGuardsTerminalStatus(t *testing.T) {
	f := newFakeBackend(t)
	svc := newService(t, f, TTLs{Detail: time.Hour})

	// Seed the detail cache with a terminal status.
	entry, _ := json.Marshal(cachedRequest{
		StoredAt: time.Now(),
		Request:  models.ServiceRequest{ID: "req-1", Status: "cancelled"},
	})
	svc.cache.Set(context.Background(), detailKey("req-1"), entry, time.Hour)

	if err := svc.CancelRequest(context.Background(), "token-1", "req-1"); err != models.ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition got %v", err)
	}
}
