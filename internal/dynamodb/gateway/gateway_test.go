package gateway_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"philcali.me/groceries/internal/data"
	"philcali.me/groceries/internal/dynamodb/gateway"
	"philcali.me/groceries/internal/dynamodb/products"
	"philcali.me/groceries/internal/dynamodb/purchases"
	"philcali.me/groceries/internal/dynamodb/token"
	"philcali.me/groceries/internal/exceptions"
	"philcali.me/groceries/internal/shopping"
	"philcali.me/groceries/internal/test"
)

// pagedPurchases serves one purchase per page with a plain index cursor.
type pagedPurchases struct {
	data.PurchaseDataService
	items   []data.PurchaseDTO
	listErr error
}

func (p *pagedPurchases) List(ctx context.Context, ownerId string, params data.QueryParams) (data.QueryResults[data.PurchaseDTO], error) {
	if p.listErr != nil {
		return data.QueryResults[data.PurchaseDTO]{}, p.listErr
	}
	index := 0
	if params.NextToken != nil {
		index, _ = strconv.Atoi(string(params.NextToken))
	}
	results := data.QueryResults[data.PurchaseDTO]{Items: p.items[index : index+1]}
	if index+1 < len(p.items) {
		results.NextToken = []byte(strconv.Itoa(index + 1))
	}
	return results, nil
}

func (p *pagedPurchases) Delete(ctx context.Context, ownerId string, itemId string) error {
	return exceptions.NotFound("purchase", itemId)
}

func TestGatewayPaging(t *testing.T) {
	repo := &pagedPurchases{}
	for i, date := range []int64{1000, 3000, 2000} {
		repo.items = append(repo.items, data.PurchaseDTO{
			PK:   "owner:Purchase",
			SK:   fmt.Sprintf("p%d", i),
			Date: date,
			Items: []data.PurchaseItemDTO{
				{Id: "i", Name: "Rice", Price: 5, Quantity: 1, Type: "unit"},
			},
		})
	}
	gw := gateway.NewDynamoDBGateway(repo, nil)

	t.Run("AllPagesNewestFirst", func(t *testing.T) {
		history, err := gw.ListPurchases(context.TODO(), "owner")
		require.NoError(t, err)
		require.Len(t, history, 3)
		assert.Equal(t, []string{"p1", "p2", "p0"}, []string{history[0].ID, history[1].ID, history[2].ID})
		assert.Equal(t, "owner", history[0].OwnerID)
		assert.Equal(t, shopping.Unit, history[0].Items[0].Type)
	})

	t.Run("FailuresAreUnavailable", func(t *testing.T) {
		repo.listErr = errors.New("connection reset")
		defer func() { repo.listErr = nil }()
		_, err := gw.ListPurchases(context.TODO(), "owner")
		var unavailable *exceptions.UnavailableError
		require.True(t, errors.As(err, &unavailable))
		assert.Equal(t, 503, exceptions.AsServiceError(err).StatusCode)
	})

	t.Run("RequestErrorsPassThrough", func(t *testing.T) {
		err := gw.DeletePurchase(context.TODO(), "owner", "nope")
		var notFound *exceptions.NotFoundError
		assert.True(t, errors.As(err, &notFound))
	})
}

func TestGatewayLocal(t *testing.T) {
	client, tableName := test.NewLocalTable(t, test.LOCAL_DDB_PORT)
	marshaler := token.NewGCM()
	gw := gateway.NewDynamoDBGateway(
		purchases.NewPurchaseDynamoDBService(tableName, client, marshaler),
		products.NewProductDynamoDBService(tableName, client, marshaler),
	)
	ctx := context.TODO()

	var saved []string
	for i := 0; i < 3; i++ {
		id, err := gw.SavePurchase(ctx, shopping.Purchase{
			OwnerID:    "owner-1",
			Date:       int64(1000 * (i + 1)),
			Budget:     100,
			TotalSpent: 9,
			Items: []shopping.Item{
				{ID: "milk", Name: "Milk", Price: 4.5, Quantity: 2, Type: shopping.Unit},
			},
		})
		require.NoError(t, err)
		saved = append(saved, id)
	}

	history, err := gw.ListPurchases(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, saved[2], history[0].ID)
	assert.Equal(t, 4.5, history[0].Items[0].Price)

	others, err := gw.ListPurchases(ctx, "owner-2")
	require.NoError(t, err)
	assert.Empty(t, others)

	require.NoError(t, gw.DeletePurchase(ctx, "owner-1", saved[1]))
	require.NoError(t, gw.DeletePurchase(ctx, "owner-1", saved[1]))
	history, err = gw.ListPurchases(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, history, 2)

	_, err = gw.SaveProduct(ctx, "owner-1", "Rice", shopping.Unit)
	require.NoError(t, err)
	catalog, err := gw.ListProducts(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, catalog, 1)
	assert.Equal(t, "Rice", catalog[0].Name)
}
