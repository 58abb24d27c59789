package purchases

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"philcali.me/groceries/internal/exceptions"
	"philcali.me/groceries/internal/routes"
	"philcali.me/groceries/internal/routes/util"
	"philcali.me/groceries/internal/shopping"
)

type PurchaseData interface {
	shopping.Gateway
	GetPurchase(ctx context.Context, ownerId string, purchaseId string) (shopping.Purchase, error)
}

type PurchaseService struct {
	data PurchaseData
	now  func() time.Time
}

func NewRoute(data PurchaseData) routes.Service {
	return &PurchaseService{
		data: data,
		now:  time.Now,
	}
}

func (ps *PurchaseService) GetRoutes() map[string]routes.Route {
	return map[string]routes.Route{
		"GET:/purchases":                        util.AuthorizedRoute(ps.ListPurchases),
		"POST:/purchases":                       util.AuthorizedRoute(ps.CreatePurchase),
		"GET:/purchases/:purchaseId":            util.AuthorizedRoute(ps.GetPurchase),
		"DELETE:/purchases/:purchaseId":         util.AuthorizedRoute(ps.DeletePurchase),
		"GET:/purchases/:purchaseId/comparison": util.AuthorizedRoute(ps.ComparePurchase),
	}
}

func (ps *PurchaseService) ListPurchases(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	history, err := ps.data.ListPurchases(ctx, util.Username(ctx))
	return util.SerializeResponseOK(NewPurchaseList, history, err)
}

func (ps *PurchaseService) GetPurchase(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	purchase, err := ps.data.GetPurchase(ctx, util.Username(ctx), util.RequestParam(ctx, "purchaseId"))
	return util.SerializeResponseOK(NewPurchase, purchase, err)
}

func (ps *PurchaseService) CreatePurchase(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	input, err := util.ParseBody[PurchaseInput](event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	if input.Budget == nil {
		return events.APIGatewayV2HTTPResponse{}, exceptions.InvalidInput("budget is required")
	}
	if err := shopping.ValidateBudget(*input.Budget); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	items := make([]shopping.Item, len(input.Items))
	for i, item := range input.Items {
		if err := shopping.ValidateItem(item); err != nil {
			return events.APIGatewayV2HTTPResponse{}, err
		}
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		items[i] = item
	}
	purchase := shopping.Purchase{
		OwnerID:    util.Username(ctx),
		Date:       ps.now().UnixMilli(),
		Budget:     *input.Budget,
		TotalSpent: shopping.TotalCost(items),
		Items:      items,
	}
	purchase.ID, err = ps.data.SavePurchase(ctx, purchase)
	return util.SerializeResponseCreated(NewPurchase, purchase, err)
}

func (ps *PurchaseService) DeletePurchase(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	err := ps.data.DeletePurchase(ctx, util.Username(ctx), util.RequestParam(ctx, "purchaseId"))
	return util.SerializeResponseNoContent(err)
}

func (ps *PurchaseService) ComparePurchase(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	purchaseId := util.RequestParam(ctx, "purchaseId")
	history, err := ps.data.ListPurchases(ctx, util.Username(ctx))
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	comparisons, ok := shopping.ComparePurchase(history, purchaseId)
	if !ok {
		return events.APIGatewayV2HTTPResponse{}, exceptions.NotFound("purchase", purchaseId)
	}
	comparison := Comparison{
		PurchaseId: purchaseId,
		Items:      comparisons,
	}
	if previous, ok := shopping.PreviousPurchase(history, purchaseId); ok {
		comparison.PreviousPurchaseId = &previous.ID
	}
	return util.SerializeResponseOK(util.Identity[Comparison], comparison, nil)
}
