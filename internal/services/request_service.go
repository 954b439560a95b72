package services

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/exp/slices"

	"tallermatch/internal/backend"
	"tallermatch/internal/cache"
	"tallermatch/internal/fsm"
	"tallermatch/internal/models"
)

// Logger is the minimal logger this package needs.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

const (
	cacheKeyAll          = "requests:all"
	cacheKeyActive       = "requests:active"
	cacheKeyDetailPrefix = "requests:detail:"

	// Entries physically outlive their staleness window so reads can
	// fall back to stale data while the backend is unreachable.
	cacheRetention = 24 * time.Hour

	defaultAllTTL    = 5 * time.Minute
	defaultActiveTTL = 2 * time.Minute
	defaultDetailTTL = 2 * time.Minute
)

// TTLs bound how long cached reads are considered fresh.
type TTLs struct {
	All    time.Duration
	Active time.Duration
	Detail time.Duration
}

type cachedRequests struct {
	StoredAt time.Time               `json:"stored_at"`
	Requests []models.ServiceRequest `json:"requests"`
}

type cachedRequest struct {
	StoredAt time.Time             `json:"stored_at"`
	Request  models.ServiceRequest `json:"request"`
}

// RequestService keeps the canonical view of the user's requests.
// Reads go through the staleness-windowed cache; every successful
// mutation deletes the affected entries so the next read refetches no
// matter how fresh they were. Push events funnel into the same deletes
// through the Invalidator methods, and deletion is idempotent, so the
// two racing is harmless.
type RequestService struct {
	api    *backend.Client
	cache  cache.Store
	logger Logger
	ttls   TTLs
}

func NewRequestService(api *backend.Client, store cache.Store, logger Logger, ttls TTLs) *RequestService {
	if ttls.All <= 0 {
		ttls.All = defaultAllTTL
	}
	if ttls.Active <= 0 {
		ttls.Active = defaultActiveTTL
	}
	if ttls.Detail <= 0 {
		ttls.Detail = defaultDetailTTL
	}
	return &RequestService{api: api, cache: store, logger: logger, ttls: ttls}
}

func detailKey(id string) string {
	return cacheKeyDetailPrefix + id
}

// ListRequests returns the user's full request collection. No session
// means an empty result, not an error.
func (s *RequestService) ListRequests(ctx context.Context, token string) ([]models.ServiceRequest, error) {
	return s.listCollection(ctx, token, cacheKeyAll, s.ttls.All, s.api.ListRequests)
}

// ListActiveRequests returns only the requests still in play.
func (s *RequestService) ListActiveRequests(ctx context.Context, token string) ([]models.ServiceRequest, error) {
	return s.listCollection(ctx, token, cacheKeyActive, s.ttls.Active, s.api.ListActiveRequests)
}

func (s *RequestService) listCollection(ctx context.Context, token, key string, ttl time.Duration, fetch func(context.Context, string) ([]models.ServiceRequest, error)) ([]models.ServiceRequest, error) {
	if token == "" {
		return []models.ServiceRequest{}, nil
	}

	var stale *cachedRequests
	if blob, ok := s.cache.Get(ctx, key); ok {
		var entry cachedRequests
		if err := json.Unmarshal(blob, &entry); err == nil {
			if time.Since(entry.StoredAt) <= ttl {
				return entry.Requests, nil
			}
			stale = &entry
		}
	}

	requests, err := fetch(ctx, token)
	if err != nil {
		if stale != nil {
			s.logger.Errorf("requests: refresh of %s failed, serving stale: %v", key, err)
			return stale.Requests, nil
		}
		return nil, err
	}

	s.checkInvariants(requests)
	slices.SortFunc(requests, func(a, b models.ServiceRequest) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	s.store(ctx, key, cachedRequests{StoredAt: time.Now(), Requests: requests})
	return requests, nil
}

// GetRequest returns one request with its offers, cached separately.
func (s *RequestService) GetRequest(ctx context.Context, token, id string) (models.ServiceRequest, error) {
	if token == "" {
		return models.ServiceRequest{}, nil
	}

	key := detailKey(id)
	var stale *cachedRequest
	if blob, ok := s.cache.Get(ctx, key); ok {
		var entry cachedRequest
		if err := json.Unmarshal(blob, &entry); err == nil {
			if time.Since(entry.StoredAt) <= s.ttls.Detail {
				return entry.Request, nil
			}
			stale = &entry
		}
	}

	req, err := s.api.GetRequest(ctx, token, id)
	if err != nil {
		if stale != nil {
			s.logger.Errorf("requests: refresh of %s failed, serving stale: %v", key, err)
			return stale.Request, nil
		}
		return models.ServiceRequest{}, err
	}

	s.checkInvariants([]models.ServiceRequest{req})
	s.store(ctx, key, cachedRequest{StoredAt: time.Now(), Request: req})
	return req, nil
}

// CreateRequest creates a draft request. Mutations do require a session.
func (s *RequestService) CreateRequest(ctx context.Context, token string, in models.CreateRequestInput) (models.ServiceRequest, error) {
	if token == "" {
		return models.ServiceRequest{}, models.ErrNoSession
	}
	req, err := s.api.CreateRequest(ctx, token, in)
	if err != nil {
		return models.ServiceRequest{}, err
	}
	s.InvalidateCollections(ctx)
	return req, nil
}

// AddServices appends services to a draft request.
func (s *RequestService) AddServices(ctx context.Context, token, id string, serviceIDs []string) (models.ServiceRequest, error) {
	if token == "" {
		return models.ServiceRequest{}, models.ErrNoSession
	}
	req, err := s.api.AddServices(ctx, token, id, serviceIDs)
	if err != nil {
		return models.ServiceRequest{}, err
	}
	s.InvalidateCollections(ctx)
	s.InvalidateRequest(ctx, id)
	return req, nil
}

// PublishRequest opens a draft to bidding. When the current status is
// known locally the transition is guarded client-side; the backend keeps
// the final word either way.
func (s *RequestService) PublishRequest(ctx context.Context, token, id string) (models.ServiceRequest, error) {
	if token == "" {
		return models.ServiceRequest{}, models.ErrNoSession
	}
	if status, ok := s.cachedStatus(ctx, id); ok && !fsm.CanTransition(status, fsm.StatusPublished) {
		return models.ServiceRequest{}, models.ErrInvalidTransition
	}
	req, err := s.api.PublishRequest(ctx, token, id)
	if err != nil {
		return models.ServiceRequest{}, err
	}
	s.InvalidateCollections(ctx)
	s.InvalidateRequest(ctx, id)
	return req, nil
}

// CancelRequest cancels a request. Terminal requests never re-open, so a
// locally known terminal status short-circuits.
func (s *RequestService) CancelRequest(ctx context.Context, token, id string) error {
	if token == "" {
		return models.ErrNoSession
	}
	if status, ok := s.cachedStatus(ctx, id); ok && fsm.IsTerminal(status) {
		return models.ErrInvalidTransition
	}
	if err := s.api.CancelRequest(ctx, token, id); err != nil {
		return err
	}
	s.InvalidateCollections(ctx)
	s.InvalidateRequest(ctx, id)
	return nil
}

// SelectOffer awards the request to the given offer and dirties the
// collections plus the request's detail entry.
func (s *RequestService) SelectOffer(ctx context.Context, token, requestID, offerID string) (models.ServiceRequest, error) {
	if token == "" {
		return models.ServiceRequest{}, models.ErrNoSession
	}
	req, err := s.api.SelectOffer(ctx, token, requestID, offerID)
	if err != nil {
		return models.ServiceRequest{}, err
	}
	s.InvalidateCollections(ctx)
	s.InvalidateRequest(ctx, requestID)
	return req, nil
}

// InvalidateCollections dirties the all/active collection entries. The
// realtime router calls this on inbound push events.
func (s *RequestService) InvalidateCollections(ctx context.Context) {
	s.cache.Delete(ctx, cacheKeyAll, cacheKeyActive)
}

// InvalidateRequest dirties one request's detail entry.
func (s *RequestService) InvalidateRequest(ctx context.Context, requestID string) {
	s.cache.Delete(ctx, detailKey(requestID))
}

// cachedStatus peeks at the detail cache without fetching.
func (s *RequestService) cachedStatus(ctx context.Context, id string) (string, bool) {
	blob, ok := s.cache.Get(ctx, detailKey(id))
	if !ok {
		return "", false
	}
	var entry cachedRequest
	if err := json.Unmarshal(blob, &entry); err != nil {
		return "", false
	}
	return entry.Request.Status, true
}

func (s *RequestService) store(ctx context.Context, key string, entry interface{}) {
	blob, err := json.Marshal(entry)
	if err != nil {
		s.logger.Errorf("requests: marshal cache entry %s: %v", key, err)
		return
	}
	s.cache.Set(ctx, key, blob, cacheRetention)
}

// checkInvariants logs upstream invariant violations without blocking
// the user. A request carrying both deadlines indicates a backend bug.
func (s *RequestService) checkInvariants(requests []models.ServiceRequest) {
	for _, req := range requests {
		if err := fsm.ValidateDeadlines(req); err != nil {
			s.logger.Errorf("requests: %s violates deadline exclusivity", req.ID)
		}
	}
}
