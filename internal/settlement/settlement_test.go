package settlement

import (
	"math"
	"testing"

	"tallermatch/internal/models"
)

func offerWith(parts, labor, mgmt, total float64) models.Offer {
	return models.Offer{
		Breakdown: models.PriceBreakdown{
			PartsCost:              parts,
			LaborCost:              labor,
			PurchaseManagementCost: mgmt,
		},
		TotalOffered: total,
	}
}

func TestComputeWithBreakdown(t *testing.T) {
	cases := []struct {
		name         string
		offer        models.Offer
		wantSubtotal int64
		wantTax      int64
		wantTotal    int64
	}{
		{
			name:         "itemized offer",
			offer:        offerWith(10000, 20000, 0, 35700),
			wantSubtotal: 30000,
			wantTax:      5700,
			wantTotal:    35700,
		},
		{
			name:         "purchase management included in subtotal",
			offer:        offerWith(10000, 20000, 5000, 41650),
			wantSubtotal: 35000,
			wantTax:      6650,
			wantTotal:    41650,
		},
		{
			name:         "quoted total wins even when inconsistent",
			offer:        offerWith(10000, 20000, 0, 34000),
			wantSubtotal: 30000,
			wantTax:      5700,
			wantTotal:    34000,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Compute(tc.offer)
			if got.Subtotal != tc.wantSubtotal || got.Tax != tc.wantTax || got.Total != tc.wantTotal {
				t.Fatalf("expected %d/%d/%d got %d/%d/%d",
					tc.wantSubtotal, tc.wantTax, tc.wantTotal,
					got.Subtotal, got.Tax, got.Total)
			}
		})
	}
}

func TestComputeWithoutBreakdown(t *testing.T) {
	totals := []float64{35700, 11900, 23800, 59500, 1190}

	for _, total := range totals {
		got := Compute(offerWith(0, 0, 0, total))
		wantSubtotal := int64(math.Round(total / 1.19))
		if got.Subtotal != wantSubtotal {
			t.Fatalf("total %.0f: expected subtotal %d got %d", total, wantSubtotal, got.Subtotal)
		}
		// Round trip must hold within rounding tolerance.
		diff := got.Subtotal + got.Tax - got.Total
		if diff < -1 || diff > 1 {
			t.Fatalf("total %.0f: subtotal %d + tax %d drifts from total %d", total, got.Subtotal, got.Tax, got.Total)
		}
	}
}

func TestPartialSplit(t *testing.T) {
	offer := offerWith(10000, 20000, 0, 35700)
	got := Partial(offer)
	if got.PaidNow != 11900 {
		t.Fatalf("expected paid-now 11900 got %d", got.PaidNow)
	}
	if got.DueLater != 23800 {
		t.Fatalf("expected due-later 23800 got %d", got.DueLater)
	}

	// Paid-now must not depend on labor.
	inflated := offerWith(10000, 90000, 0, 119000)
	if Partial(inflated).PaidNow != 11900 {
		t.Fatal("paid-now must be independent of labor cost")
	}

	withMgmt := offerWith(10000, 20000, 5000, 41650)
	if Partial(withMgmt).PaidNow != 17850 {
		t.Fatalf("expected paid-now 17850 got %d", Partial(withMgmt).PaidNow)
	}
}

func TestSanitizeCoercesBadInputs(t *testing.T) {
	offer := offerWith(math.NaN(), -500, math.Inf(1), math.NaN())
	got := Compute(offer)
	if got.Subtotal != 0 || got.Tax != 0 || got.Total != 0 {
		t.Fatalf("expected zeroed breakdown got %+v", got)
	}
	split := Partial(offer)
	if split.PaidNow != 0 || split.DueLater != 0 {
		t.Fatalf("expected zeroed split got %+v", split)
	}
}
