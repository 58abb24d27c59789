package events

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/shopspring/decimal"
	"philcali.me/groceries/internal/dynamodb/purchases"
	"philcali.me/groceries/internal/notifications"
)

// ReceiptHandler publishes a receipt for every newly written purchase.
type ReceiptHandler struct {
	Notifications notifications.NotificationService
}

func DefaultReceiptHandler(service notifications.NotificationService) *ReceiptHandler {
	return &ReceiptHandler{
		Notifications: service,
	}
}

func (rh *ReceiptHandler) Filter(record events.DynamoDBEventRecord) bool {
	if record.EventName != "INSERT" {
		return false
	}
	_, resource := resourceKey(record)
	return resource == purchases.Resource
}

func number(image map[string]events.DynamoDBAttributeValue, name string) (decimal.Decimal, error) {
	value, ok := image[name]
	if !ok || value.DataType() != events.DataTypeNumber {
		return decimal.Zero, nil
	}
	parsed, err := decimal.NewFromString(value.Number())
	if err != nil {
		return decimal.Zero, fmt.Errorf("attribute %s: %w", name, err)
	}
	return parsed, nil
}

func itemLines(image map[string]events.DynamoDBAttributeValue) ([]string, error) {
	value, ok := image["items"]
	if !ok || value.DataType() != events.DataTypeList {
		return nil, nil
	}
	lines := make([]string, 0, len(value.List()))
	for _, entry := range value.List() {
		if entry.DataType() != events.DataTypeMap {
			continue
		}
		item := entry.Map()
		quantity, err := number(item, "quantity")
		if err != nil {
			return nil, err
		}
		price, err := number(item, "price")
		if err != nil {
			return nil, err
		}
		lines = append(lines, fmt.Sprintf("%s x%s @ %s", str(item, "name"), quantity.String(), price.StringFixed(2)))
	}
	return lines, nil
}

func NewReceipt(record events.DynamoDBEventRecord) (notifications.Receipt, error) {
	owner, _ := resourceKey(record)
	image := recordImage(record)
	receipt := notifications.Receipt{
		OwnerId:    owner,
		PurchaseId: str(image, "SK"),
	}
	if date, ok := image["date"]; ok && date.DataType() == events.DataTypeNumber {
		millis, err := strconv.ParseInt(date.Number(), 10, 64)
		if err != nil {
			return receipt, fmt.Errorf("attribute date: %w", err)
		}
		receipt.Date = millis
	}
	var err error
	if receipt.Budget, err = number(image, "budget"); err != nil {
		return receipt, err
	}
	if receipt.TotalSpent, err = number(image, "totalSpent"); err != nil {
		return receipt, err
	}
	receipt.Items, err = itemLines(image)
	return receipt, err
}

func (rh *ReceiptHandler) Apply(ctx context.Context, record events.DynamoDBEventRecord) error {
	receipt, err := NewReceipt(record)
	if err != nil {
		return err
	}
	return rh.Notifications.PublishReceipt(ctx, receipt)
}
