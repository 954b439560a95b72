package cart

import (
	"context"
	"encoding/json"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"tallermatch/internal/models"
	"tallermatch/internal/storage"
)

// The whole cart lives under one fixed key as schema-versioned JSON.
const (
	cartKey       = "tallermatch:cart"
	schemaVersion = 1

	defaultDebounce = 800 * time.Millisecond
)

// Logger is the minimal logger this package needs.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type persistedCart struct {
	Items     []models.CartItem `json:"items"`
	Timestamp time.Time         `json:"timestamp"`
	Version   int               `json:"version"`
}

// Store owns the locally staged bookings. It is an explicit injected
// object: all state sits behind its mutex and every mutation goes through
// a command method, reducer-style.
//
// Persistence writes are debounced and serialized; only the latest
// snapshot is flushed, so a slow write of an older state can never
// overwrite a newer one. Nothing is written before the initial Load has
// completed.
type Store struct {
	kv       storage.KV
	logger   Logger
	debounce time.Duration

	mu     sync.Mutex
	items  []models.CartItem
	loaded bool
	closed bool
	timer  *time.Timer
}

// NewStore constructs the cart store. A zero debounce picks the default.
func NewStore(kv storage.KV, logger Logger, debounce time.Duration) *Store {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Store{kv: kv, logger: logger, debounce: debounce}
}

// Load reads the persisted cart. A missing or unparsable blob yields an
// empty cart; items failing validation are dropped and the valid subset
// is re-persisted immediately. Load never fails the caller over corrupt
// local data.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return nil
	}

	blob, ok, err := s.kv.Get(ctx, cartKey)
	if err != nil {
		s.logger.Errorf("cart: load failed, starting empty: %v", err)
		s.loaded = true
		return nil
	}
	if !ok {
		s.loaded = true
		return nil
	}

	var persisted persistedCart
	if err := json.Unmarshal([]byte(blob), &persisted); err != nil {
		s.logger.Errorf("cart: unparsable blob discarded: %v", err)
		s.loaded = true
		return nil
	}

	valid := make([]models.CartItem, 0, len(persisted.Items))
	dropped := 0
	for _, item := range persisted.Items {
		if validItem(item) {
			valid = append(valid, item)
			continue
		}
		dropped++
	}
	s.items = valid
	s.loaded = true

	if dropped > 0 {
		s.logger.Infof("cart: dropped %d invalid item(s), re-persisting %d", dropped, len(valid))
		s.persistLocked(ctx)
	}
	return nil
}

// validItem requires the identifiers without which a staged booking
// cannot be reconciled later.
func validItem(item models.CartItem) bool {
	if item.CartItemID == "" || item.VehicleID == "" {
		return false
	}
	return item.ServiceName != "" || item.Offer.OfferServiceID != ""
}

// AddInput carries everything an add command needs.
type AddInput struct {
	Offer             models.ServiceOffer
	Vehicle           models.Vehicle
	ScheduledDate     string
	ScheduledTimeSlot string
	WithParts         bool
}

// Add stages a booking. The price is snapshotted at add time from the
// withParts flag and the service name resolved through the extraction
// rules; the full offer and vehicle are embedded for later reconciliation.
func (s *Store) Add(ctx context.Context, in AddInput) (models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return models.CartItem{}, models.ErrCartNotLoaded
	}

	item := models.CartItem{
		CartItemID:        uuid.NewString(),
		OfferServiceID:    in.Offer.OfferServiceID,
		VehicleID:         in.Vehicle.VehicleID,
		ScheduledDate:     in.ScheduledDate,
		ScheduledTimeSlot: in.ScheduledTimeSlot,
		Price:             selectPrice(in.Offer, in.WithParts),
		WithParts:         in.WithParts,
		ProviderType:      in.Offer.ProviderType,
		ServiceName:       ResolveServiceName(in.Offer),
		Offer:             in.Offer,
		Vehicle:           in.Vehicle,
		AddedAt:           time.Now(),
	}
	s.items = append(s.items, item)
	s.scheduleFlushLocked()
	return item, nil
}

// UpdateInput patches a staged booking. Nil fields stay untouched;
// changing WithParts recomputes the price snapshot from the embedded
// offer.
type UpdateInput struct {
	ScheduledDate     *string
	ScheduledTimeSlot *string
	WithParts         *bool
}

func (s *Store) Update(ctx context.Context, cartItemID string, in UpdateInput) (models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return models.CartItem{}, models.ErrCartNotLoaded
	}

	for i := range s.items {
		if s.items[i].CartItemID != cartItemID {
			continue
		}
		if in.ScheduledDate != nil {
			s.items[i].ScheduledDate = *in.ScheduledDate
		}
		if in.ScheduledTimeSlot != nil {
			s.items[i].ScheduledTimeSlot = *in.ScheduledTimeSlot
		}
		if in.WithParts != nil {
			s.items[i].WithParts = *in.WithParts
			s.items[i].Price = selectPrice(s.items[i].Offer, *in.WithParts)
		}
		s.scheduleFlushLocked()
		return s.items[i], nil
	}
	return models.CartItem{}, models.ErrCartItemNotFound
}

func (s *Store) Remove(ctx context.Context, cartItemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return models.ErrCartNotLoaded
	}

	for i := range s.items {
		if s.items[i].CartItemID == cartItemID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.scheduleFlushLocked()
			return nil
		}
	}
	return models.ErrCartItemNotFound
}

// Clear empties the cart, typically on checkout.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return models.ErrCartNotLoaded
	}
	s.items = nil
	s.scheduleFlushLocked()
	return nil
}

// Items returns a copy of the staged bookings in insertion order.
func (s *Store) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns one staged booking by id.
func (s *Store) Get(cartItemID string) (models.CartItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.CartItemID == cartItemID {
			return item, true
		}
	}
	return models.CartItem{}, false
}

// IsServiceInCart reports whether a catalog offer is already staged.
func (s *Store) IsServiceInCart(offerServiceID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.OfferServiceID == offerServiceID {
			return true
		}
	}
	return false
}

// TotalByVehicle sums the staged prices for one vehicle.
func (s *Store) TotalByVehicle(vehicleID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, item := range s.items {
		if item.VehicleID == vehicleID {
			total += item.Price
		}
	}
	return total
}

// Close cancels any pending debounced write and flushes the final state
// once. The store rejects further mutations afterwards via loaded=false.
func (s *Store) Close(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.loaded {
		s.persistLocked(ctx)
	}
	s.loaded = false
}

// selectPrice snapshots the price for the chosen configuration, falling
// back to whichever figure is non-zero when the selected one is missing.
func selectPrice(offer models.ServiceOffer, withParts bool) float64 {
	parts := sanitizePrice(offer.PartsInclusivePrice)
	labor := sanitizePrice(offer.LaborOnlyPrice)

	price := labor
	if withParts {
		price = parts
	}
	if price == 0 {
		if parts != 0 {
			return parts
		}
		return labor
	}
	return price
}

func sanitizePrice(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// scheduleFlushLocked resets the debounce timer. Callers hold s.mu.
func (s *Store) scheduleFlushLocked() {
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || !s.loaded {
			return
		}
		s.persistLocked(context.Background())
	})
}

// persistLocked writes the current snapshot. Callers hold s.mu, which
// serializes writes.
func (s *Store) persistLocked(ctx context.Context) {
	blob, err := json.Marshal(persistedCart{
		Items:     s.items,
		Timestamp: time.Now(),
		Version:   schemaVersion,
	})
	if err != nil {
		s.logger.Errorf("cart: marshal failed: %v", err)
		return
	}
	if err := s.kv.Set(ctx, cartKey, string(blob)); err != nil {
		s.logger.Errorf("cart: persist failed: %v", err)
	}
}
