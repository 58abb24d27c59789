package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OwnerAttribute is the message attribute subscriptions filter on, so each
// subscriber only receives receipts for their own purchases.
const OwnerAttribute = "owner"

type SubscribeInput struct {
	OwnerId  string
	Endpoint *string
	Protocol *string
}

type SubscribeOutput struct {
	SubscriberId string
}

type Receipt struct {
	OwnerId    string
	PurchaseId string
	Date       int64
	Budget     decimal.Decimal
	TotalSpent decimal.Decimal
	Items      []string
}

func (r Receipt) Subject() string {
	return fmt.Sprintf("Purchase receipt: %s spent", r.TotalSpent.StringFixed(2))
}

func (r Receipt) Message() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Purchase %s on %s\n", r.PurchaseId, time.UnixMilli(r.Date).UTC().Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&b, "Budget: %s\n", r.Budget.StringFixed(2))
	fmt.Fprintf(&b, "Spent: %s\n", r.TotalSpent.StringFixed(2))
	remaining := r.Budget.Sub(r.TotalSpent)
	if remaining.IsNegative() {
		fmt.Fprintf(&b, "Over budget by: %s\n", remaining.Neg().StringFixed(2))
	} else {
		fmt.Fprintf(&b, "Remaining: %s\n", remaining.StringFixed(2))
	}
	if len(r.Items) > 0 {
		b.WriteString("\nItems:\n")
		for _, item := range r.Items {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}
	return b.String()
}

type NotificationService interface {
	Subscribe(ctx context.Context, input SubscribeInput) (*SubscribeOutput, error)
	Unsubscribe(ctx context.Context, subscriberId string) error
	PublishReceipt(ctx context.Context, receipt Receipt) error
}
