package data

import "context"

const MaxLimit = 100

type QueryParams struct {
	Limit     int    `json:"limit"`
	NextToken []byte `json:"nextToken"`
}

func (q *QueryParams) GetLimit() *int32 {
	limit := int32(q.Limit)
	if limit <= 0 || limit > MaxLimit {
		limit = MaxLimit
	}
	return &limit
}

type QueryResults[T interface{}] struct {
	Items     []T    `json:"items"`
	NextToken []byte `json:"nextToken"`
}

type NextToken map[string]map[string]string

// Repository is the owner-scoped CRUD surface every document type shares.
type Repository[T interface{}, I interface{}] interface {
	List(ctx context.Context, ownerId string, params QueryParams) (QueryResults[T], error)
	Get(ctx context.Context, ownerId string, itemId string) (T, error)
	Create(ctx context.Context, ownerId string, input I) (T, error)
	Update(ctx context.Context, ownerId string, itemId string, input I) (T, error)
	Delete(ctx context.Context, ownerId string, itemId string) error
}
