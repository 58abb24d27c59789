package purchases

import (
	"philcali.me/groceries/internal/shopping"
)

type Purchase struct {
	Id         string          `json:"purchaseId"`
	Date       int64           `json:"date"`
	Budget     float64         `json:"budget"`
	TotalSpent float64         `json:"totalSpent"`
	Remaining  float64         `json:"remainingBudget"`
	Items      []shopping.Item `json:"items"`
}

// PurchaseInput is a finished cart. The server stamps the date and computes
// the total.
type PurchaseInput struct {
	Budget *float64        `json:"budget"`
	Items  []shopping.Item `json:"items"`
}

type PurchaseList struct {
	Items []Purchase `json:"items"`
}

type Comparison struct {
	PurchaseId         string                     `json:"purchaseId"`
	PreviousPurchaseId *string                    `json:"previousPurchaseId"`
	Items              []shopping.PriceComparison `json:"items"`
}

func NewPurchase(p shopping.Purchase) Purchase {
	return Purchase{
		Id:         p.ID,
		Date:       p.Date,
		Budget:     p.Budget,
		TotalSpent: p.TotalSpent,
		Remaining:  p.Budget - p.TotalSpent,
		Items:      p.Items,
	}
}

func NewPurchaseList(history []shopping.Purchase) PurchaseList {
	items := make([]Purchase, len(history))
	for i, p := range history {
		items[i] = NewPurchase(p)
	}
	return PurchaseList{Items: items}
}
