package shopping

import (
	"sort"

	"github.com/shopspring/decimal"
)

type PriceTrend string

const (
	FirstTime PriceTrend = "first-time"
	Unchanged PriceTrend = "unchanged"
	Increased PriceTrend = "increased"
	Decreased PriceTrend = "decreased"
)

// PriceComparison is the outcome of comparing one item against the same-named
// item of the previous purchase. Diff keeps its sign (current - previous);
// Percentage is always a magnitude and the direction lives in Trend.
type PriceComparison struct {
	Item          Item       `json:"item"`
	Trend         PriceTrend `json:"trend"`
	PreviousPrice *float64   `json:"previousPrice,omitempty"`
	Diff          float64    `json:"diff"`
	Percentage    float64    `json:"percentage"`
}

// SortNewestFirst orders history by date descending, in place.
func SortNewestFirst(history []Purchase) {
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Date > history[j].Date
	})
}

// PreviousPurchase returns the purchase made just before purchaseId. The
// history must already be newest first.
func PreviousPurchase(history []Purchase, purchaseId string) (Purchase, bool) {
	for i, p := range history {
		if p.ID == purchaseId {
			if i+1 < len(history) {
				return history[i+1], true
			}
			return Purchase{}, false
		}
	}
	return Purchase{}, false
}

// ComparePrice matches current by exact name in previous. A nil previous, or
// no match in it, is a first-time item.
func ComparePrice(current Item, previous *Purchase) PriceComparison {
	comparison := PriceComparison{
		Item:  current,
		Trend: FirstTime,
	}
	if previous == nil {
		return comparison
	}
	var found *Item
	for i := range previous.Items {
		if previous.Items[i].Name == current.Name {
			found = &previous.Items[i]
			break
		}
	}
	if found == nil {
		return comparison
	}
	previousPrice := found.Price
	comparison.PreviousPrice = &previousPrice
	before := decimal.NewFromFloat(found.Price)
	diff := decimal.NewFromFloat(current.Price).Sub(before)
	switch diff.Sign() {
	case 0:
		comparison.Trend = Unchanged
		return comparison
	case 1:
		comparison.Trend = Increased
	default:
		comparison.Trend = Decreased
	}
	comparison.Diff = diff.InexactFloat64()
	comparison.Percentage = diff.Div(before).Mul(decimal.NewFromInt(100)).Abs().InexactFloat64()
	return comparison
}

// ComparePurchase compares every item of the purchase with purchaseId against
// the purchase before it. The second return is false when purchaseId is not in
// history.
func ComparePurchase(history []Purchase, purchaseId string) ([]PriceComparison, bool) {
	var current *Purchase
	for i := range history {
		if history[i].ID == purchaseId {
			current = &history[i]
			break
		}
	}
	if current == nil {
		return nil, false
	}
	var previous *Purchase
	if p, ok := PreviousPurchase(history, purchaseId); ok {
		previous = &p
	}
	comparisons := make([]PriceComparison, len(current.Items))
	for i, item := range current.Items {
		comparisons[i] = ComparePrice(item, previous)
	}
	return comparisons, true
}
