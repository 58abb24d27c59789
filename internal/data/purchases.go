package data

import "time"

type PurchaseItemDTO struct {
	Id       string  `dynamodbav:"id"`
	Name     string  `dynamodbav:"name"`
	Quantity float64 `dynamodbav:"quantity"`
	Price    float64 `dynamodbav:"price"`
	Type     string  `dynamodbav:"type"`
}

type PurchaseDTO struct {
	PK         string            `dynamodbav:"PK"`
	SK         string            `dynamodbav:"SK"`
	Date       int64             `dynamodbav:"date"`
	Budget     float64           `dynamodbav:"budget"`
	TotalSpent float64           `dynamodbav:"totalSpent"`
	Items      []PurchaseItemDTO `dynamodbav:"items"`
	CreateTime time.Time         `dynamodbav:"createTime"`
	UpdateTime time.Time         `dynamodbav:"updateTime"`
}

// PurchaseInputDTO only supports creation; purchases are immutable once
// written, so Update is refused by the purchase repository.
type PurchaseInputDTO struct {
	Date       *int64             `dynamodbav:"date"`
	Budget     *float64           `dynamodbav:"budget"`
	TotalSpent *float64           `dynamodbav:"totalSpent"`
	Items      *[]PurchaseItemDTO `dynamodbav:"items"`
}

type PurchaseDataService interface {
	Repository[PurchaseDTO, PurchaseInputDTO]
}
