package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"tallermatch/internal/models"
)

// Logger is the minimal logger this package needs.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Invalidator is how the router tells the synchronizer that cached
// collections went stale. Invalidation is idempotent, so a push-triggered
// call racing a mutation-triggered one is harmless.
type Invalidator interface {
	InvalidateCollections(ctx context.Context)
	InvalidateRequest(ctx context.Context, requestID string)
}

// Handler consumes one inbound push envelope.
type Handler func(models.PushEnvelope)

const defaultReadyDelay = 250 * time.Millisecond

// Router owns the single logical push connection. Frames that arrive
// between the handshake and handler registration are buffered until a
// short readiness grace elapses, then flushed in order; nothing is
// silently dropped in that window.
type Router struct {
	url        string
	dialer     *websocket.Dialer
	logger     Logger
	inv        Invalidator
	readyDelay time.Duration

	mu       sync.Mutex
	conn     *websocket.Conn
	handlers map[string]Handler
	pending  []models.PushEnvelope
	ready    bool
	lastErr  error

	offersMu  sync.Mutex
	allOffers []models.NewOfferEvent
	byRequest map[string][]models.NewOfferEvent
}

// NewRouter constructs the router. readyDelay <= 0 picks the default.
func NewRouter(url string, inv Invalidator, logger Logger, readyDelay time.Duration) *Router {
	if readyDelay <= 0 {
		readyDelay = defaultReadyDelay
	}
	return &Router{
		url:        url,
		dialer:     websocket.DefaultDialer,
		logger:     logger,
		inv:        inv,
		readyDelay: readyDelay,
		handlers:   make(map[string]Handler),
		byRequest:  make(map[string][]models.NewOfferEvent),
	}
}

// Subscribe registers the handler for an event type, replacing any
// previous one. Re-registration is idempotent.
func (r *Router) Subscribe(eventType string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[eventType] = h
}

// Unsubscribe removes the handler for an event type.
func (r *Router) Unsubscribe(eventType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, eventType)
}

// Connect dials the push channel and starts the read loop. A failed dial
// surfaces as a readable error state; no retry loop is started here, that
// is the supervisor's call.
func (r *Router) Connect(ctx context.Context) error {
	conn, _, err := r.dialer.DialContext(ctx, r.url, nil)
	if err != nil {
		r.mu.Lock()
		r.lastErr = err
		r.mu.Unlock()
		return err
	}

	r.mu.Lock()
	if r.conn != nil {
		_ = r.conn.Close()
	}
	r.conn = conn
	r.ready = false
	r.lastErr = nil
	r.mu.Unlock()

	time.AfterFunc(r.readyDelay, r.markReady)
	go r.readLoop(conn)
	return nil
}

// Close tears the connection down.
func (r *Router) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn != nil {
		_ = r.conn.Close()
		r.conn = nil
	}
}

// LastError returns the most recent connection-level failure, or
// ErrRouterNotConnected when the push channel was never established.
func (r *Router) LastError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastErr != nil {
		return r.lastErr
	}
	if r.conn == nil {
		return models.ErrRouterNotConnected
	}
	return nil
}

func (r *Router) markReady() {
	r.mu.Lock()
	pending := r.pending
	r.pending = nil
	r.ready = true
	r.mu.Unlock()

	for _, env := range pending {
		r.route(env)
	}
}

func (r *Router) readLoop(conn *websocket.Conn) {
	for {
		var env models.PushEnvelope
		if err := conn.ReadJSON(&env); err != nil {
			r.mu.Lock()
			if r.conn == conn {
				r.lastErr = err
				r.conn = nil
			}
			r.mu.Unlock()
			r.logger.Errorf("realtime: read loop ended: %v", err)
			return
		}

		r.mu.Lock()
		if !r.ready {
			r.pending = append(r.pending, env)
			r.mu.Unlock()
			continue
		}
		r.mu.Unlock()
		r.route(env)
	}
}

// route applies the built-in bookkeeping for an envelope, then hands it
// to the subscribed handler, if any.
func (r *Router) route(env models.PushEnvelope) {
	ctx := context.Background()

	switch env.Type {
	case models.EventNewOffer:
		r.recordNewOffer(env)
		r.inv.InvalidateCollections(ctx)
		if env.RequestID != "" {
			r.inv.InvalidateRequest(ctx, env.RequestID)
		}
	case models.EventRequestAwarded:
		r.inv.InvalidateCollections(ctx)
	default:
		r.logger.Infof("realtime: unhandled event type %q", env.Type)
	}

	r.mu.Lock()
	handler := r.handlers[env.Type]
	r.mu.Unlock()
	if handler != nil {
		handler(env)
	}
}

func (r *Router) recordNewOffer(env models.PushEnvelope) {
	event := models.NewOfferEvent{
		RequestID:  env.RequestID,
		Offer:      env.Offer,
		ReceivedAt: time.Now(),
	}
	r.offersMu.Lock()
	defer r.offersMu.Unlock()
	r.allOffers = append(r.allOffers, event)
	if env.RequestID != "" {
		r.byRequest[env.RequestID] = append(r.byRequest[env.RequestID], event)
	}
}

// NewOffers returns the ephemeral new-offer events for one request.
func (r *Router) NewOffers(requestID string) []models.NewOfferEvent {
	r.offersMu.Lock()
	defer r.offersMu.Unlock()
	bucket := r.byRequest[requestID]
	out := make([]models.NewOfferEvent, len(bucket))
	copy(out, bucket)
	return out
}

// ClearNewOffers drops the bucket for one request, typically after the
// UI surfaced the badge.
func (r *Router) ClearNewOffers(requestID string) {
	r.offersMu.Lock()
	defer r.offersMu.Unlock()
	cleared := r.byRequest[requestID]
	delete(r.byRequest, requestID)
	if len(cleared) == 0 {
		return
	}
	remaining := r.allOffers[:0]
	for _, ev := range r.allOffers {
		if ev.RequestID != requestID {
			remaining = append(remaining, ev)
		}
	}
	r.allOffers = remaining
}

// TotalNewOffers counts all unseen new-offer events.
func (r *Router) TotalNewOffers() int {
	r.offersMu.Lock()
	defer r.offersMu.Unlock()
	return len(r.allOffers)
}
