package subscriptions

import (
	"time"

	"philcali.me/groceries/internal/data"
	"philcali.me/groceries/internal/dynamodb/services"
	"philcali.me/groceries/internal/dynamodb/token"
)

const Resource = "Subscription"

func NewSubscriptionDynamoDBService(tableName string, client services.Client, marshaler token.TokenMarshaler) data.SubscriptionDataService {
	return &services.RepositoryDynamoDBService[data.SubscriptionDTO, data.SubscriptionInputDTO]{
		DynamoDB:       client,
		TableName:      tableName,
		TokenMarshaler: marshaler,
		Name:           Resource,
		GetPK: func(sd data.SubscriptionDTO) string {
			return sd.PK
		},
		GetSK: func(sd data.SubscriptionDTO) string {
			return sd.SK
		},
		Shim: func(pk, sk string) data.SubscriptionDTO {
			return data.SubscriptionDTO{PK: pk, SK: sk}
		},
		OnCreate: func(sid data.SubscriptionInputDTO, createTime time.Time, pk, sk string) data.SubscriptionDTO {
			return data.SubscriptionDTO{
				PK:            pk,
				SK:            sk,
				CreateTime:    createTime,
				UpdateTime:    createTime,
				Endpoint:      *sid.Endpoint,
				Protocol:      *sid.Protocol,
				SubscriberArn: *sid.SubscriberArn,
			}
		},
	}
}
