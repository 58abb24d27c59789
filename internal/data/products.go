package data

import "time"

type ProductDTO struct {
	PK         string    `dynamodbav:"PK"`
	SK         string    `dynamodbav:"SK"`
	Name       string    `dynamodbav:"name"`
	Type       string    `dynamodbav:"type"`
	CreateTime time.Time `dynamodbav:"createTime"`
	UpdateTime time.Time `dynamodbav:"updateTime"`
}

type ProductInputDTO struct {
	Name *string `dynamodbav:"name"`
	Type *string `dynamodbav:"type"`
}

type ProductDataService interface {
	Repository[ProductDTO, ProductInputDTO]
}
