// Package shopping holds the shopping session: the live cart against a budget,
// the purchase history it produces at checkout, and the price comparison
// between consecutive purchases.
package shopping

import (
	"time"

	"github.com/shopspring/decimal"
)

type ItemType string

const (
	// Unit items are counted, so their quantity is a whole number.
	Unit ItemType = "unit"
	// Weight items are measured (kilograms), so their quantity may be fractional.
	Weight ItemType = "weight"
)

// Item is one line of the cart.
type Item struct {
	ID       string   `json:"id"`
	Name     string   `json:"name" validate:"required"`
	Quantity float64  `json:"quantity" validate:"gt=0"`
	Price    float64  `json:"price" validate:"gt=0"`
	Type     ItemType `json:"type" validate:"oneof=unit weight"`
}

func (i Item) cost() decimal.Decimal {
	return decimal.NewFromFloat(i.Price).Mul(decimal.NewFromFloat(i.Quantity))
}

// Cost is price × quantity for the line.
func (i Item) Cost() float64 {
	return i.cost().InexactFloat64()
}

// Purchase is a finalized session. It is written once at checkout and never
// changed afterwards; Items is its own copy of the cart.
type Purchase struct {
	ID         string  `json:"id"`
	OwnerID    string  `json:"ownerId,omitempty"`
	Date       int64   `json:"date"`
	Budget     float64 `json:"budget"`
	TotalSpent float64 `json:"totalSpent"`
	Items      []Item  `json:"items"`
}

func (p Purchase) Time() time.Time {
	return time.UnixMilli(p.Date)
}

// Product is a reusable catalog entry used to pick item names.
type Product struct {
	ID   string   `json:"id"`
	Name string   `json:"name" validate:"required"`
	Type ItemType `json:"type" validate:"oneof=unit weight"`
}

// State is the whole session as persisted to the local snapshot slot. A zero
// Budget means no session is active.
type State struct {
	Budget          float64    `json:"budget"`
	ShoppingList    []Item     `json:"shoppingList"`
	PurchaseHistory []Purchase `json:"purchaseHistory"`
}

func cloneItems(items []Item) []Item {
	cloned := make([]Item, len(items))
	copy(cloned, items)
	return cloned
}

func clonePurchase(p Purchase) Purchase {
	p.Items = cloneItems(p.Items)
	return p
}

func clonePurchases(history []Purchase) []Purchase {
	cloned := make([]Purchase, len(history))
	for i, p := range history {
		cloned[i] = clonePurchase(p)
	}
	return cloned
}

func (s State) clone() State {
	return State{
		Budget:          s.Budget,
		ShoppingList:    cloneItems(s.ShoppingList),
		PurchaseHistory: clonePurchases(s.PurchaseHistory),
	}
}

// TotalCost sums price × quantity over items.
func TotalCost(items []Item) float64 {
	return totalCost(items).InexactFloat64()
}

func totalCost(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.cost())
	}
	return total
}
