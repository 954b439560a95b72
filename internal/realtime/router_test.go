package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"tallermatch/internal/models"
)

type testLogger struct{ t *testing.T }

func (l testLogger) Infof(format string, args ...interface{})  { l.t.Logf("INFO "+format, args...) }
func (l testLogger) Errorf(format string, args ...interface{}) { l.t.Logf("ERROR "+format, args...) }

type fakeInvalidator struct {
	mu          sync.Mutex
	collections int
	requests    []string
}

func (f *fakeInvalidator) InvalidateCollections(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collections++
}

func (f *fakeInvalidator) InvalidateRequest(_ context.Context, requestID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, requestID)
}

func (f *fakeInvalidator) snapshot() (int, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.collections, append([]string(nil), f.requests...)
}

// pushServer upgrades one connection and immediately sends the given
// envelopes, mimicking a backend that pushes before the client settles.
func pushServer(t *testing.T, envelopes []models.PushEnvelope) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		for _, env := range envelopes {
			if err := conn.WriteJSON(env); err != nil {
				t.Errorf("write: %v", err)
				return
			}
		}
		// Keep the connection open so the read loop stays alive.
		time.Sleep(2 * time.Second)
		conn.Close()
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestRouterBuffersEarlyFramesAndDispatches(t *testing.T) {
	srv := pushServer(t, []models.PushEnvelope{
		{Type: models.EventNewOffer, RequestID: "req-1", Offer: &models.Offer{ID: "off-1"}},
		{Type: models.EventRequestAwarded, RequestID: "req-1"},
	})
	defer srv.Close()

	inv := &fakeInvalidator{}
	router := NewRouter(wsURL(srv), inv, testLogger{t}, 50*time.Millisecond)

	received := make(chan models.PushEnvelope, 1)
	if err := router.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer router.Close()

	// Subscribing after connect must still observe the early frame: the
	// router buffers until the readiness grace elapses.
	router.Subscribe(models.EventNewOffer, func(env models.PushEnvelope) {
		received <- env
	})

	select {
	case env := <-received:
		if env.RequestID != "req-1" || env.Offer == nil || env.Offer.ID != "off-1" {
			t.Fatalf("unexpected envelope: %+v", env)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler never saw the buffered frame")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		collections, requests := inv.snapshot()
		if collections == 2 && len(requests) == 1 && requests[0] == "req-1" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("invalidations incomplete: collections=%d requests=%v", collections, requests)
		}
		time.Sleep(5 * time.Millisecond)
	}

	if router.TotalNewOffers() != 1 {
		t.Fatalf("expected 1 ephemeral offer event got %d", router.TotalNewOffers())
	}
	bucket := router.NewOffers("req-1")
	if len(bucket) != 1 || bucket[0].Offer.ID != "off-1" {
		t.Fatalf("unexpected bucket: %+v", bucket)
	}

	router.ClearNewOffers("req-1")
	if router.TotalNewOffers() != 0 || len(router.NewOffers("req-1")) != 0 {
		t.Fatal("expected counters cleared")
	}
}

func TestRouterConnectFailureIsReadable(t *testing.T) {
	inv := &fakeInvalidator{}
	router := NewRouter("ws://127.0.0.1:1/push", inv, testLogger{t}, 10*time.Millisecond)

	if err := router.Connect(context.Background()); err == nil {
		t.Fatal("expected connect error")
	}
	if router.LastError() == nil {
		t.Fatal("expected last error to be recorded")
	}
}

func TestSubscribeReplacementIsIdempotent(t *testing.T) {
	inv := &fakeInvalidator{}
	router := NewRouter("ws://unused", inv, testLogger{t}, 10*time.Millisecond)

	var firstCalls, secondCalls int
	router.Subscribe(models.EventNewOffer, func(models.PushEnvelope) { firstCalls++ })
	router.Subscribe(models.EventNewOffer, func(models.PushEnvelope) { secondCalls++ })

	router.markReady()
	router.route(models.PushEnvelope{Type: models.EventNewOffer, RequestID: "req-7"})

	if firstCalls != 0 || secondCalls != 1 {
		t.Fatalf("expected only the latest handler to fire, got %d/%d", firstCalls, secondCalls)
	}
}
