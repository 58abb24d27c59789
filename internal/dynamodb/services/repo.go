package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"philcali.me/groceries/internal/data"
	"philcali.me/groceries/internal/dynamodb/token"
	"philcali.me/groceries/internal/exceptions"
)

// Client is the slice of the DynamoDB API the repositories use.
type Client interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// RepositoryDynamoDBService stores every document of one kind for an owner
// under PK "<owner>:<Name>" with a generated SK.
type RepositoryDynamoDBService[T interface{}, I interface{}] struct {
	DynamoDB       Client
	TableName      string
	TokenMarshaler token.TokenMarshaler
	Name           string
	Shim           func(pk string, sk string) T
	GetPK          func(T) string
	GetSK          func(T) string
	OnCreate       func(I, time.Time, string, string) T
	// OnUpdate is nil for immutable documents.
	OnUpdate func(I, expression.UpdateBuilder) expression.UpdateBuilder
	NewId    func() string
	Now      func() time.Time
}

func PrimaryKey(ownerId string, name string) string {
	return fmt.Sprintf("%s:%s", ownerId, name)
}

func key(pk string, sk string) (map[string]types.AttributeValue, error) {
	pkv, err := attributevalue.Marshal(pk)
	if err != nil {
		return nil, err
	}
	skv, err := attributevalue.Marshal(sk)
	if err != nil {
		return nil, err
	}
	return map[string]types.AttributeValue{"PK": pkv, "SK": skv}, nil
}

func (rs *RepositoryDynamoDBService[T, I]) resource() string {
	return strings.ToLower(rs.Name)
}

func (rs *RepositoryDynamoDBService[T, I]) now() time.Time {
	if rs.Now != nil {
		return rs.Now()
	}
	return time.Now()
}

func (rs *RepositoryDynamoDBService[T, I]) newId() string {
	if rs.NewId != nil {
		return rs.NewId()
	}
	return uuid.NewString()
}

func isConditionFailure(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func (rs *RepositoryDynamoDBService[T, I]) List(ctx context.Context, ownerId string, params data.QueryParams) (data.QueryResults[T], error) {
	keyEx := expression.Key("PK").Equal(expression.Value(PrimaryKey(ownerId, rs.Name)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyEx).Build()
	if err != nil {
		return data.QueryResults[T]{}, err
	}
	startKey, err := rs.TokenMarshaler.Unmarshal(ownerId, params.NextToken)
	if err != nil {
		return data.QueryResults[T]{}, err
	}
	output, err := rs.DynamoDB.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(rs.TableName),
		Limit:                     params.GetLimit(),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ExclusiveStartKey:         startKey,
	})
	if err != nil {
		return data.QueryResults[T]{}, err
	}
	items := make([]T, 0, len(output.Items))
	if err := attributevalue.UnmarshalListOfMaps(output.Items, &items); err != nil {
		return data.QueryResults[T]{}, err
	}
	nextToken, err := rs.TokenMarshaler.Marshal(ownerId, output.LastEvaluatedKey)
	if err != nil {
		return data.QueryResults[T]{}, err
	}
	return data.QueryResults[T]{
		Items:     items,
		NextToken: nextToken,
	}, nil
}

func (rs *RepositoryDynamoDBService[T, I]) Create(ctx context.Context, ownerId string, input I) (T, error) {
	shim := rs.OnCreate(input, rs.now(), PrimaryKey(ownerId, rs.Name), rs.newId())
	item, err := attributevalue.MarshalMap(shim)
	if err != nil {
		return shim, err
	}
	expr, err := expression.NewBuilder().
		WithCondition(expression.Name("PK").AttributeNotExists().And(expression.Name("SK").AttributeNotExists())).
		Build()
	if err != nil {
		return shim, err
	}
	_, err = rs.DynamoDB.PutItem(ctx, &dynamodb.PutItemInput{
		Item:                     item,
		TableName:                aws.String(rs.TableName),
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		if isConditionFailure(err) {
			return shim, exceptions.Conflict(rs.resource(), rs.GetSK(shim))
		}
		return shim, err
	}
	return shim, nil
}

func (rs *RepositoryDynamoDBService[T, I]) Update(ctx context.Context, ownerId string, itemId string, input I) (T, error) {
	pk := PrimaryKey(ownerId, rs.Name)
	shim := rs.Shim(pk, itemId)
	if rs.OnUpdate == nil {
		return shim, exceptions.InvalidInput(fmt.Sprintf("a %s cannot be changed once created", rs.resource()))
	}
	k, err := key(pk, itemId)
	if err != nil {
		return shim, err
	}
	update := rs.OnUpdate(input, expression.Set(expression.Name("updateTime"), expression.Value(rs.now())))
	condition := expression.Name("PK").AttributeExists().And(expression.Name("SK").AttributeExists())
	expr, err := expression.NewBuilder().WithCondition(condition).WithUpdate(update).Build()
	if err != nil {
		return shim, err
	}
	response, err := rs.DynamoDB.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(rs.TableName),
		Key:                       k,
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionFailure(err) {
			return shim, exceptions.NotFound(rs.resource(), itemId)
		}
		return shim, err
	}
	err = attributevalue.UnmarshalMap(response.Attributes, &shim)
	return shim, err
}

func (rs *RepositoryDynamoDBService[T, I]) Get(ctx context.Context, ownerId string, itemId string) (T, error) {
	pk := PrimaryKey(ownerId, rs.Name)
	shim := rs.Shim(pk, itemId)
	k, err := key(pk, itemId)
	if err != nil {
		return shim, err
	}
	response, err := rs.DynamoDB.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(rs.TableName),
		Key:       k,
	})
	if err != nil {
		return shim, err
	}
	if response.Item == nil {
		return shim, exceptions.NotFound(rs.resource(), itemId)
	}
	err = attributevalue.UnmarshalMap(response.Item, &shim)
	return shim, err
}

// Delete is idempotent: removing a missing document is not an error.
func (rs *RepositoryDynamoDBService[T, I]) Delete(ctx context.Context, ownerId string, itemId string) error {
	k, err := key(PrimaryKey(ownerId, rs.Name), itemId)
	if err != nil {
		return err
	}
	_, err = rs.DynamoDB.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		Key:       k,
		TableName: aws.String(rs.TableName),
	})
	return err
}
