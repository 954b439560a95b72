package countdown

import (
	"context"
	"time"
)

// Band classifies how urgent a deadline is.
type Band string

const (
	BandLow     Band = "low"
	BandMedium  Band = "medium"
	BandHigh    Band = "high"
	BandExpired Band = "expired"
)

const (
	lowThreshold  = 24 * time.Hour
	highThreshold = 6 * time.Hour
)

// Remaining describes the time left until a deadline.
type Remaining struct {
	Days    int `json:"dias"`
	Hours   int `json:"horas"`
	Minutes int `json:"minutos"`
	Seconds int `json:"segundos"`
}

// Until returns the remaining time until target. The second return value
// is false once target is due. Now is injected so callers stay clock-free.
func Until(now, target time.Time) (Remaining, bool) {
	d := target.Sub(now)
	if d <= 0 {
		return Remaining{}, false
	}
	return Remaining{
		Days:    int(d / (24 * time.Hour)),
		Hours:   int(d/time.Hour) % 24,
		Minutes: int(d/time.Minute) % 60,
		Seconds: int(d/time.Second) % 60,
	}, true
}

// Urgency bands the remaining window: more than 24h is low, 6-24h is
// medium, under 6h is high.
func Urgency(now, target time.Time) Band {
	d := target.Sub(now)
	switch {
	case d <= 0:
		return BandExpired
	case d < highThreshold:
		return BandHigh
	case d <= lowThreshold:
		return BandMedium
	default:
		return BandLow
	}
}

// Watch invokes fn on every tick with the freshly evaluated remaining
// time and urgency band, and once more when the deadline expires, then
// returns. It blocks until expiry or ctx cancellation, so run it in its
// own goroutine and cancel ctx on teardown to avoid leaking the ticker.
func Watch(ctx context.Context, target time.Time, interval time.Duration, fn func(Remaining, Band)) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			remaining, ok := Until(now, target)
			fn(remaining, Urgency(now, target))
			if !ok {
				return
			}
		}
	}
}
