// Package gateway adapts the DynamoDB repositories to the shopping store's
// persistence contract.
package gateway

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"philcali.me/groceries/internal/data"
	"philcali.me/groceries/internal/exceptions"
	"philcali.me/groceries/internal/shopping"
)

const service = "persistence"

var tracer = otel.Tracer("philcali.me/groceries/gateway")

type DynamoDBGateway struct {
	Purchases data.PurchaseDataService
	Products  data.ProductDataService
}

func NewDynamoDBGateway(purchases data.PurchaseDataService, products data.ProductDataService) *DynamoDBGateway {
	return &DynamoDBGateway{
		Purchases: purchases,
		Products:  products,
	}
}

func start(ctx context.Context, name string, ownerId string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "gateway."+name, trace.WithAttributes(attribute.String("owner.id", ownerId)))
}

// unavailable keeps request errors (not found, conflict, bad cursor) intact and
// reports everything else as the persistence service being unavailable.
func unavailable(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	var re exceptions.RequestError
	if errors.As(err, &re) {
		return err
	}
	return exceptions.ServiceUnavailable(service, err)
}

func OwnerOf(pk string) string {
	owner, _, _ := strings.Cut(pk, ":")
	return owner
}

func PurchaseFromDTO(dto data.PurchaseDTO) shopping.Purchase {
	items := make([]shopping.Item, len(dto.Items))
	for i, item := range dto.Items {
		items[i] = shopping.Item{
			ID:       item.Id,
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
			Type:     shopping.ItemType(item.Type),
		}
	}
	return shopping.Purchase{
		ID:         dto.SK,
		OwnerID:    OwnerOf(dto.PK),
		Date:       dto.Date,
		Budget:     dto.Budget,
		TotalSpent: dto.TotalSpent,
		Items:      items,
	}
}

func PurchaseInput(purchase shopping.Purchase) data.PurchaseInputDTO {
	items := make([]data.PurchaseItemDTO, len(purchase.Items))
	for i, item := range purchase.Items {
		items[i] = data.PurchaseItemDTO{
			Id:       item.ID,
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
			Type:     string(item.Type),
		}
	}
	return data.PurchaseInputDTO{
		Date:       &purchase.Date,
		Budget:     &purchase.Budget,
		TotalSpent: &purchase.TotalSpent,
		Items:      &items,
	}
}

func ProductFromDTO(dto data.ProductDTO) shopping.Product {
	return shopping.Product{
		ID:   dto.SK,
		Name: dto.Name,
		Type: shopping.ItemType(dto.Type),
	}
}

// ListPurchases follows every page and returns the history newest first.
func (g *DynamoDBGateway) ListPurchases(ctx context.Context, ownerId string) ([]shopping.Purchase, error) {
	ctx, span := start(ctx, "ListPurchases", ownerId)
	defer span.End()
	history := []shopping.Purchase{}
	params := data.QueryParams{Limit: data.MaxLimit}
	for {
		page, err := g.Purchases.List(ctx, ownerId, params)
		if err != nil {
			return nil, unavailable(span, err)
		}
		for _, dto := range page.Items {
			history = append(history, PurchaseFromDTO(dto))
		}
		if page.NextToken == nil {
			break
		}
		params.NextToken = page.NextToken
	}
	shopping.SortNewestFirst(history)
	span.SetAttributes(attribute.Int("purchases.count", len(history)))
	return history, nil
}

func (g *DynamoDBGateway) SavePurchase(ctx context.Context, purchase shopping.Purchase) (string, error) {
	ctx, span := start(ctx, "SavePurchase", purchase.OwnerID)
	defer span.End()
	created, err := g.Purchases.Create(ctx, purchase.OwnerID, PurchaseInput(purchase))
	if err != nil {
		return "", unavailable(span, err)
	}
	return created.SK, nil
}

func (g *DynamoDBGateway) DeletePurchase(ctx context.Context, ownerId string, purchaseId string) error {
	ctx, span := start(ctx, "DeletePurchase", ownerId)
	defer span.End()
	if err := g.Purchases.Delete(ctx, ownerId, purchaseId); err != nil {
		return unavailable(span, err)
	}
	return nil
}

func (g *DynamoDBGateway) ListProducts(ctx context.Context, ownerId string) ([]shopping.Product, error) {
	ctx, span := start(ctx, "ListProducts", ownerId)
	defer span.End()
	catalog := []shopping.Product{}
	params := data.QueryParams{Limit: data.MaxLimit}
	for {
		page, err := g.Products.List(ctx, ownerId, params)
		if err != nil {
			return nil, unavailable(span, err)
		}
		for _, dto := range page.Items {
			catalog = append(catalog, ProductFromDTO(dto))
		}
		if page.NextToken == nil {
			break
		}
		params.NextToken = page.NextToken
	}
	return catalog, nil
}

func (g *DynamoDBGateway) SaveProduct(ctx context.Context, ownerId string, name string, itemType shopping.ItemType) (string, error) {
	ctx, span := start(ctx, "SaveProduct", ownerId)
	defer span.End()
	kind := string(itemType)
	created, err := g.Products.Create(ctx, ownerId, data.ProductInputDTO{
		Name: &name,
		Type: &kind,
	})
	if err != nil {
		return "", unavailable(span, err)
	}
	return created.SK, nil
}

func (g *DynamoDBGateway) GetPurchase(ctx context.Context, ownerId string, purchaseId string) (shopping.Purchase, error) {
	ctx, span := start(ctx, "GetPurchase", ownerId)
	defer span.End()
	dto, err := g.Purchases.Get(ctx, ownerId, purchaseId)
	if err != nil {
		return shopping.Purchase{}, unavailable(span, err)
	}
	return PurchaseFromDTO(dto), nil
}
