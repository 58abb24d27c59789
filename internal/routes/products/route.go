package products

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"philcali.me/groceries/internal/identity"
	"philcali.me/groceries/internal/routes"
	"philcali.me/groceries/internal/routes/util"
	"philcali.me/groceries/internal/shopping"
)

type Product struct {
	Id   string `json:"productId"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type ProductInput struct {
	Name string            `json:"name"`
	Type shopping.ItemType `json:"type"`
}

type ProductList struct {
	Items []Product `json:"items"`
}

func NewProduct(p shopping.Product) Product {
	return Product{
		Id:   p.ID,
		Name: p.Name,
		Type: string(p.Type),
	}
}

func NewProductList(products []shopping.Product) ProductList {
	return ProductList{Items: util.MapOnList(products, NewProduct)}
}

type ProductService struct {
	catalog *shopping.Catalog
}

func NewRoute(catalog *shopping.Catalog) routes.Service {
	return &ProductService{
		catalog: catalog,
	}
}

func (ps *ProductService) GetRoutes() map[string]routes.Route {
	return map[string]routes.Route{
		"GET:/products":  util.AuthorizedRoute(ps.ListProducts),
		"POST:/products": util.AuthorizedRoute(ps.CreateProduct),
	}
}

func caller(ctx context.Context) *identity.User {
	return &identity.User{ID: util.Username(ctx)}
}

func (ps *ProductService) ListProducts(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	products, err := ps.catalog.List(ctx, caller(ctx))
	return util.SerializeResponseOK(NewProductList, products, err)
}

func (ps *ProductService) CreateProduct(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	input, err := util.ParseBody[ProductInput](event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	if input.Type == "" {
		input.Type = shopping.Unit
	}
	product, err := ps.catalog.AddProduct(ctx, caller(ctx), shopping.Product{
		Name: input.Name,
		Type: input.Type,
	})
	return util.SerializeResponseCreated(NewProduct, product, err)
}
