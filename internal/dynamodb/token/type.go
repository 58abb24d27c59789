package token

import "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

// TokenMarshaler turns a DynamoDB LastEvaluatedKey into an opaque cursor that
// only the owner it was issued to can replay.
type TokenMarshaler interface {
	Marshal(ownerId string, lastKey map[string]types.AttributeValue) ([]byte, error)

	Unmarshal(ownerId string, token []byte) (map[string]types.AttributeValue, error)
}
