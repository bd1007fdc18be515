package domain

import (
	"fmt"
	"math"
	"time"
)

// Stock is the quantity of one Item at one Location. The (LocationID, ItemID)
// pair is unique; a missing record reads as quantity 0.
type Stock struct {
	LocationID int64     `json:"location_id"`
	ItemID     int64     `json:"item_id"`
	Quantity   int64     `json:"quantity"`
	Version    int64     `json:"version"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type AdjustMode string

const (
	// AdjustBounded floors the resulting quantity at zero.
	AdjustBounded AdjustMode = "bounded"
	// AdjustUnbounded applies the delta as is.
	AdjustUnbounded AdjustMode = "unbounded"
)

func (m AdjustMode) Valid() bool {
	return m == AdjustBounded || m == AdjustUnbounded
}

// Apply returns current+delta, floored at zero for bounded adjustments. A sum
// outside the int64 range fails with ErrInvalidInput.
func (m AdjustMode) Apply(current, delta int64) (int64, error) {
	if (delta > 0 && current > math.MaxInt64-delta) || (delta < 0 && current < math.MinInt64-delta) {
		return current, fmt.Errorf("quantity %d%+d out of range: %w", current, delta, ErrInvalidInput)
	}
	next := current + delta
	if m == AdjustBounded && next < 0 {
		return 0, nil
	}
	return next, nil
}

// ItemQuantity pairs an item with its quantity at some location.
type ItemQuantity struct {
	Item     Item  `json:"item"`
	Quantity int64 `json:"quantity"`
}

// LocationSheet lists every item at one location, grouped by category name.
type LocationSheet struct {
	Location Location             `json:"location"`
	Groups   []LocationSheetGroup `json:"groups"`
}

type LocationSheetGroup struct {
	Category string         `json:"category"`
	Items    []ItemQuantity `json:"items"`
}
