package commerce

import (
	"sort"

	"github.com/harborline/checkoutd/models"
	"github.com/shopspring/decimal"
)

// DefaultShippingRate picks the rate to preselect when the checkout has no
// shipping rate: the cheapest available rate, by handle on ties so the
// choice is deterministic. Returns nil when no rates are available.
func DefaultShippingRate(rates []models.ShippingRate) *models.ShippingRate {
	if len(rates) == 0 {
		return nil
	}
	sorted := make([]models.ShippingRate, len(rates))
	copy(sorted, rates)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, aerr := decimal.NewFromString(sorted[i].Price.Amount)
		b, berr := decimal.NewFromString(sorted[j].Price.Amount)
		if aerr != nil || berr != nil {
			return sorted[i].RateHandle() < sorted[j].RateHandle()
		}
		if !a.Equal(b) {
			return a.LessThan(b)
		}
		return sorted[i].RateHandle() < sorted[j].RateHandle()
	})
	return &sorted[0]
}

// UpdateNoteAttributes upserts the given attributes into the checkout's
// existing note attributes, preserving the order of attributes that are
// already present.
func UpdateNoteAttributes(existing []models.NoteAttribute, updates ...models.NoteAttribute) []models.NoteAttribute {
	merged := make([]models.NoteAttribute, len(existing))
	copy(merged, existing)

	for _, update := range updates {
		replaced := false
		for i, attr := range merged {
			if attr.Name == update.Name {
				merged[i] = update
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, update)
		}
	}
	return merged
}
