package data

import "time"

// SubscriptionDTO records a receipt subscription so it can be removed later.
type SubscriptionDTO struct {
	PK            string    `dynamodbav:"PK"`
	SK            string    `dynamodbav:"SK"`
	Endpoint      string    `dynamodbav:"endpoint"`
	Protocol      string    `dynamodbav:"protocol"`
	SubscriberArn string    `dynamodbav:"subscriberArn"`
	CreateTime    time.Time `dynamodbav:"createTime"`
	UpdateTime    time.Time `dynamodbav:"updateTime"`
}

type SubscriptionInputDTO struct {
	Endpoint      *string `dynamodbav:"endpoint"`
	Protocol      *string `dynamodbav:"protocol"`
	SubscriberArn *string `dynamodbav:"subscriberArn"`
}

type SubscriptionDataService interface {
	Repository[SubscriptionDTO, SubscriptionInputDTO]
}
