package purchases

import (
	"time"

	"philcali.me/groceries/internal/data"
	"philcali.me/groceries/internal/dynamodb/services"
	"philcali.me/groceries/internal/dynamodb/token"
)

const Resource = "Purchase"

func NewPurchaseDynamoDBService(tableName string, client services.Client, marshaler token.TokenMarshaler) data.PurchaseDataService {
	return &services.RepositoryDynamoDBService[data.PurchaseDTO, data.PurchaseInputDTO]{
		DynamoDB:       client,
		TableName:      tableName,
		TokenMarshaler: marshaler,
		Name:           Resource,
		GetPK: func(pd data.PurchaseDTO) string {
			return pd.PK
		},
		GetSK: func(pd data.PurchaseDTO) string {
			return pd.SK
		},
		Shim: func(pk, sk string) data.PurchaseDTO {
			return data.PurchaseDTO{PK: pk, SK: sk}
		},
		OnCreate: func(pid data.PurchaseInputDTO, createTime time.Time, pk, sk string) data.PurchaseDTO {
			purchase := data.PurchaseDTO{
				PK:         pk,
				SK:         sk,
				Date:       createTime.UnixMilli(),
				Items:      []data.PurchaseItemDTO{},
				CreateTime: createTime,
				UpdateTime: createTime,
			}
			if pid.Date != nil {
				purchase.Date = *pid.Date
			}
			if pid.Budget != nil {
				purchase.Budget = *pid.Budget
			}
			if pid.TotalSpent != nil {
				purchase.TotalSpent = *pid.TotalSpent
			}
			if pid.Items != nil {
				purchase.Items = *pid.Items
			}
			return purchase
		},
	}
}
