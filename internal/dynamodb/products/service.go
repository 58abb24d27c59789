package products

import (
	"time"

	"philcali.me/groceries/internal/data"
	"philcali.me/groceries/internal/dynamodb/services"
	"philcali.me/groceries/internal/dynamodb/token"
)

const Resource = "Product"

func NewProductDynamoDBService(tableName string, client services.Client, marshaler token.TokenMarshaler) data.ProductDataService {
	return &services.RepositoryDynamoDBService[data.ProductDTO, data.ProductInputDTO]{
		DynamoDB:       client,
		TableName:      tableName,
		TokenMarshaler: marshaler,
		Name:           Resource,
		GetPK: func(pd data.ProductDTO) string {
			return pd.PK
		},
		GetSK: func(pd data.ProductDTO) string {
			return pd.SK
		},
		Shim: func(pk, sk string) data.ProductDTO {
			return data.ProductDTO{PK: pk, SK: sk}
		},
		OnCreate: func(pid data.ProductInputDTO, createTime time.Time, pk, sk string) data.ProductDTO {
			return data.ProductDTO{
				PK:         pk,
				SK:         sk,
				Name:       *pid.Name,
				Type:       *pid.Type,
				CreateTime: createTime,
				UpdateTime: createTime,
			}
		},
	}
}
