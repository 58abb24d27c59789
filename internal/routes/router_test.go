package routes_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"philcali.me/groceries/internal/data"
	"philcali.me/groceries/internal/dynamodb/gateway"
	productData "philcali.me/groceries/internal/dynamodb/products"
	purchaseData "philcali.me/groceries/internal/dynamodb/purchases"
	subscriberData "philcali.me/groceries/internal/dynamodb/subscriptions"
	"philcali.me/groceries/internal/dynamodb/token"
	"philcali.me/groceries/internal/exceptions"
	"philcali.me/groceries/internal/notifications"
	"philcali.me/groceries/internal/routes"
	"philcali.me/groceries/internal/routes/products"
	"philcali.me/groceries/internal/routes/purchases"
	suggestionRoutes "philcali.me/groceries/internal/routes/suggestions"
	"philcali.me/groceries/internal/routes/subscriptions"
	"philcali.me/groceries/internal/shopping"
	"philcali.me/groceries/internal/suggestions"
	"philcali.me/groceries/internal/test"
)

type LocalNotifications struct {
	mu    sync.Mutex
	Cache map[string]notifications.SubscribeInput
}

func (ln *LocalNotifications) Subscribe(ctx context.Context, input notifications.SubscribeInput) (*notifications.SubscribeOutput, error) {
	ln.mu.Lock()
	defer ln.mu.Unlock()
	id := uuid.NewString()
	ln.Cache[id] = input
	return &notifications.SubscribeOutput{SubscriberId: id}, nil
}

func (ln *LocalNotifications) Unsubscribe(ctx context.Context, subscriberId string) error {
	ln.mu.Lock()
	defer ln.mu.Unlock()
	delete(ln.Cache, subscriberId)
	return nil
}

func (ln *LocalNotifications) PublishReceipt(ctx context.Context, receipt notifications.Receipt) error {
	return nil
}

// memoryGateway keeps documents per owner in memory.
type memoryGateway struct {
	mu        sync.Mutex
	purchases map[string][]shopping.Purchase
	products  map[string][]shopping.Product
	fail      error
}

func newMemoryGateway() *memoryGateway {
	return &memoryGateway{
		purchases: make(map[string][]shopping.Purchase),
		products:  make(map[string][]shopping.Product),
	}
}

func (m *memoryGateway) ListPurchases(ctx context.Context, ownerId string) ([]shopping.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	history := append([]shopping.Purchase{}, m.purchases[ownerId]...)
	shopping.SortNewestFirst(history)
	return history, nil
}

func (m *memoryGateway) GetPurchase(ctx context.Context, ownerId string, purchaseId string) (shopping.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.purchases[ownerId] {
		if p.ID == purchaseId {
			return p, nil
		}
	}
	return shopping.Purchase{}, exceptions.NotFound("purchase", purchaseId)
}

func (m *memoryGateway) SavePurchase(ctx context.Context, purchase shopping.Purchase) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return "", m.fail
	}
	purchase.ID = uuid.NewString()
	m.purchases[purchase.OwnerID] = append(m.purchases[purchase.OwnerID], purchase)
	return purchase.ID, nil
}

func (m *memoryGateway) DeletePurchase(ctx context.Context, ownerId string, purchaseId string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := []shopping.Purchase{}
	for _, p := range m.purchases[ownerId] {
		if p.ID != purchaseId {
			kept = append(kept, p)
		}
	}
	m.purchases[ownerId] = kept
	return nil
}

func (m *memoryGateway) ListProducts(ctx context.Context, ownerId string) ([]shopping.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]shopping.Product{}, m.products[ownerId]...), nil
}

func (m *memoryGateway) SaveProduct(ctx context.Context, ownerId string, name string, itemType shopping.ItemType) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.products[ownerId] = append(m.products[ownerId], shopping.Product{ID: id, Name: name, Type: itemType})
	return id, nil
}

// memorySubscriptions is a single page repository.
type memorySubscriptions struct {
	mu    sync.Mutex
	items map[string]data.SubscriptionDTO
}

func (ms *memorySubscriptions) List(ctx context.Context, ownerId string, params data.QueryParams) (data.QueryResults[data.SubscriptionDTO], error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	results := data.QueryResults[data.SubscriptionDTO]{Items: []data.SubscriptionDTO{}}
	for _, item := range ms.items {
		if item.PK == ownerId+":Subscription" {
			results.Items = append(results.Items, item)
		}
	}
	sort.Slice(results.Items, func(i, j int) bool {
		return results.Items[i].SK < results.Items[j].SK
	})
	return results, nil
}

func (ms *memorySubscriptions) Get(ctx context.Context, ownerId string, itemId string) (data.SubscriptionDTO, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	item, ok := ms.items[itemId]
	if !ok || item.PK != ownerId+":Subscription" {
		return data.SubscriptionDTO{}, exceptions.NotFound("subscription", itemId)
	}
	return item, nil
}

func (ms *memorySubscriptions) Create(ctx context.Context, ownerId string, input data.SubscriptionInputDTO) (data.SubscriptionDTO, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	now := time.Now()
	item := data.SubscriptionDTO{
		PK:            ownerId + ":Subscription",
		SK:            uuid.NewString(),
		Endpoint:      *input.Endpoint,
		Protocol:      *input.Protocol,
		SubscriberArn: *input.SubscriberArn,
		CreateTime:    now,
		UpdateTime:    now,
	}
	ms.items[item.SK] = item
	return item, nil
}

func (ms *memorySubscriptions) Update(ctx context.Context, ownerId string, itemId string, input data.SubscriptionInputDTO) (data.SubscriptionDTO, error) {
	return data.SubscriptionDTO{}, exceptions.InvalidInput("subscriptions are immutable")
}

func (ms *memorySubscriptions) Delete(ctx context.Context, ownerId string, itemId string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.items, itemId)
	return nil
}

type fixedSuggestions struct {
	output suggestions.Output
	err    error
	last   suggestions.Input
}

func (f *fixedSuggestions) Suggest(ctx context.Context, input suggestions.Input) (suggestions.Output, error) {
	f.last = input
	return f.output, f.err
}

type LocalServer struct {
	Router        *routes.Router
	Gateway       *memoryGateway
	Notifications *LocalNotifications
	Suggestions   *fixedSuggestions
	Username      string
}

func NewLocalServer(t *testing.T) *LocalServer {
	gw := newMemoryGateway()
	localNotifications := &LocalNotifications{Cache: make(map[string]notifications.SubscribeInput)}
	suggester := &fixedSuggestions{}
	router := routes.NewRouter(
		purchases.NewRoute(gw),
		products.NewRoute(shopping.NewCatalog(gw)),
		suggestionRoutes.NewRoute(suggester),
		subscriptions.NewRoute(&memorySubscriptions{items: make(map[string]data.SubscriptionDTO)}, localNotifications),
	)
	return &LocalServer{
		Router:        router,
		Gateway:       gw,
		Notifications: localNotifications,
		Suggestions:   suggester,
		Username:      "nobody",
	}
}

func (ls *LocalServer) Request(method string, path string, body interface{}) events.APIGatewayV2HTTPRequest {
	path, query, _ := strings.Cut(path, "?")
	event := events.APIGatewayV2HTTPRequest{
		RawPath:        path,
		RawQueryString: query,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method: method,
			},
			Authorizer: &events.APIGatewayV2HTTPRequestContextAuthorizerDescription{
				JWT: &events.APIGatewayV2HTTPRequestContextAuthorizerJWTDescription{
					Claims: map[string]string{
						"username": ls.Username,
					},
				},
			},
		},
	}
	if values, err := url.ParseQuery(query); err == nil && len(values) > 0 {
		event.QueryStringParameters = make(map[string]string, len(values))
		for name := range values {
			event.QueryStringParameters[name] = values.Get(name)
		}
	}
	if body != nil {
		encoded, _ := json.Marshal(body)
		event.Body = string(encoded)
	}
	return event
}

func (ls *LocalServer) Invoke(t *testing.T, method string, path string, body interface{}, expected int, out interface{}) {
	t.Helper()
	resp := ls.Router.Invoke(ls.Request(method, path, body), context.TODO())
	require.Equal(t, expected, resp.StatusCode, resp.Body)
	if out != nil {
		require.NoError(t, json.Unmarshal([]byte(resp.Body), out))
	}
}

func TestRouterFilters(t *testing.T) {
	server := NewLocalServer(t)

	t.Run("Cors", func(t *testing.T) {
		event := server.Request("OPTIONS", "/purchases", nil)
		resp := server.Router.Invoke(event, context.TODO())
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "*", resp.Headers["access-control-allow-origin"])
		assert.Equal(t, "GET, POST, DELETE", resp.Headers["access-control-allow-methods"])
	})

	t.Run("Unauthorized", func(t *testing.T) {
		event := server.Request("GET", "/purchases", nil)
		event.RequestContext.Authorizer = nil
		resp := server.Router.Invoke(event, context.TODO())
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("LambdaAuthorizer", func(t *testing.T) {
		event := server.Request("GET", "/purchases", nil)
		event.RequestContext.Authorizer = &events.APIGatewayV2HTTPRequestContextAuthorizerDescription{
			Lambda: map[string]interface{}{
				"claims": map[string]interface{}{"username": "nobody"},
			},
		}
		resp := server.Router.Invoke(event, context.TODO())
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("NotFound", func(t *testing.T) {
		server.Invoke(t, "GET", "/recipes", nil, http.StatusNotFound, nil)
		server.Invoke(t, "PUT", "/purchases", nil, http.StatusNotFound, nil)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		event := server.Request("POST", "/purchases", nil)
		event.Body = "{"
		resp := server.Router.Invoke(event, context.TODO())
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestPurchaseRoutes(t *testing.T) {
	server := NewLocalServer(t)
	budget := 50.0

	var first purchases.Purchase
	server.Invoke(t, "POST", "/purchases", purchases.PurchaseInput{
		Budget: &budget,
		Items: []shopping.Item{
			{Name: "Rice", Price: 5, Quantity: 2, Type: shopping.Unit},
			{Name: "Apples", Price: 4, Quantity: 0.5, Type: shopping.Weight},
		},
	}, http.StatusCreated, &first)
	assert.NotEmpty(t, first.Id)
	assert.Equal(t, 12.0, first.TotalSpent)
	assert.Equal(t, 38.0, first.Remaining)
	for _, item := range first.Items {
		assert.NotEmpty(t, item.ID)
	}

	// Dates are stamped in milliseconds so two quick posts still order.
	time.Sleep(2 * time.Millisecond)
	var second purchases.Purchase
	server.Invoke(t, "POST", "/purchases", purchases.PurchaseInput{
		Budget: &budget,
		Items: []shopping.Item{
			{Name: "Rice", Price: 6, Quantity: 1, Type: shopping.Unit},
			{Name: "Coffee", Price: 12, Quantity: 1, Type: shopping.Unit},
		},
	}, http.StatusCreated, &second)

	t.Run("List", func(t *testing.T) {
		var list purchases.PurchaseList
		server.Invoke(t, "GET", "/purchases", nil, http.StatusOK, &list)
		require.Len(t, list.Items, 2)
		assert.Equal(t, second.Id, list.Items[0].Id)
		assert.Equal(t, first.Id, list.Items[1].Id)
	})

	t.Run("Get", func(t *testing.T) {
		var fetched purchases.Purchase
		server.Invoke(t, "GET", "/purchases/"+first.Id, nil, http.StatusOK, &fetched)
		assert.Equal(t, first, fetched)
		server.Invoke(t, "GET", "/purchases/missing", nil, http.StatusNotFound, nil)
	})

	t.Run("Comparison", func(t *testing.T) {
		var comparison purchases.Comparison
		server.Invoke(t, "GET", fmt.Sprintf("/purchases/%s/comparison", second.Id), nil, http.StatusOK, &comparison)
		require.NotNil(t, comparison.PreviousPurchaseId)
		assert.Equal(t, first.Id, *comparison.PreviousPurchaseId)
		require.Len(t, comparison.Items, 2)
		assert.Equal(t, shopping.Increased, comparison.Items[0].Trend)
		assert.Equal(t, 20.0, comparison.Items[0].Percentage)
		assert.Equal(t, shopping.FirstTime, comparison.Items[1].Trend)

		server.Invoke(t, "GET", "/purchases/missing/comparison", nil, http.StatusNotFound, nil)
	})

	t.Run("Invalid", func(t *testing.T) {
		server.Invoke(t, "POST", "/purchases", purchases.PurchaseInput{
			Items: []shopping.Item{{Name: "Rice", Price: 5, Quantity: 1, Type: shopping.Unit}},
		}, http.StatusBadRequest, nil)
		server.Invoke(t, "POST", "/purchases", purchases.PurchaseInput{
			Budget: &budget,
			Items:  []shopping.Item{{Name: "Rice", Price: 5, Quantity: 1.5, Type: shopping.Unit}},
		}, http.StatusBadRequest, nil)
	})

	t.Run("OtherOwner", func(t *testing.T) {
		other := *server
		other.Username = "somebody"
		var list purchases.PurchaseList
		other.Invoke(t, "GET", "/purchases", nil, http.StatusOK, &list)
		assert.Empty(t, list.Items)
	})

	t.Run("Delete", func(t *testing.T) {
		server.Invoke(t, "DELETE", "/purchases/"+first.Id, nil, http.StatusNoContent, nil)
		var list purchases.PurchaseList
		server.Invoke(t, "GET", "/purchases", nil, http.StatusOK, &list)
		require.Len(t, list.Items, 1)
		assert.Equal(t, second.Id, list.Items[0].Id)
	})

	t.Run("Unavailable", func(t *testing.T) {
		server.Gateway.fail = exceptions.ServiceUnavailable("persistence", fmt.Errorf("throttled"))
		defer func() { server.Gateway.fail = nil }()
		server.Invoke(t, "GET", "/purchases", nil, http.StatusServiceUnavailable, nil)
	})
}

func TestProductRoutes(t *testing.T) {
	server := NewLocalServer(t)

	var created products.Product
	server.Invoke(t, "POST", "/products", products.ProductInput{Name: " Oat Milk "}, http.StatusCreated, &created)
	assert.Equal(t, "Oat Milk", created.Name)
	assert.Equal(t, "unit", created.Type)

	server.Invoke(t, "POST", "/products", products.ProductInput{Name: "oat milk", Type: shopping.Weight}, http.StatusConflict, nil)
	server.Invoke(t, "POST", "/products", products.ProductInput{Name: "  "}, http.StatusBadRequest, nil)

	var list products.ProductList
	server.Invoke(t, "GET", "/products", nil, http.StatusOK, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, created, list.Items[0])
}

func TestSuggestionRoutes(t *testing.T) {
	server := NewLocalServer(t)
	server.Suggestions.output = suggestions.Output{Suggestions: []string{"Bread", "Eggs"}}

	var output suggestions.Output
	server.Invoke(t, "POST", "/suggestions", suggestionRoutes.SuggestionInput{
		Budget: 20,
		Items:  []shopping.Item{{Name: "Milk", Price: 2, Quantity: 2, Type: shopping.Unit}},
	}, http.StatusOK, &output)
	assert.Equal(t, []string{"Bread", "Eggs"}, output.Suggestions)
	assert.Equal(t, 16.0, server.Suggestions.last.RemainingBudget)

	server.Suggestions.err = suggestions.ErrUnavailable
	server.Invoke(t, "POST", "/suggestions", suggestionRoutes.SuggestionInput{Budget: 20}, http.StatusServiceUnavailable, nil)
}

func TestSubscriptionRoutes(t *testing.T) {
	server := NewLocalServer(t)
	endpoint := "nobody@email.com"
	protocol := "email"

	var created subscriptions.Subscription
	server.Invoke(t, "POST", "/subscriptions", subscriptions.SubscriptionInput{
		Endpoint: &endpoint,
		Protocol: &protocol,
	}, http.StatusCreated, &created)
	assert.Equal(t, endpoint, created.Endpoint)
	require.Len(t, server.Notifications.Cache, 1)
	for _, input := range server.Notifications.Cache {
		assert.Equal(t, "nobody", input.OwnerId)
	}

	var fetched subscriptions.Subscription
	server.Invoke(t, "GET", "/subscriptions/"+created.Id, nil, http.StatusOK, &fetched)
	assert.Equal(t, created.Id, fetched.Id)

	var list data.QueryResults[subscriptions.Subscription]
	server.Invoke(t, "GET", "/subscriptions", nil, http.StatusOK, &list)
	require.Len(t, list.Items, 1)

	server.Invoke(t, "POST", "/subscriptions", subscriptions.SubscriptionInput{Endpoint: &endpoint}, http.StatusBadRequest, nil)
	server.Invoke(t, "GET", "/subscriptions?limit=abc", nil, http.StatusBadRequest, nil)
	server.Invoke(t, "GET", "/subscriptions?nextToken=not-base64!", nil, http.StatusBadRequest, nil)

	server.Invoke(t, "DELETE", "/subscriptions/"+created.Id, nil, http.StatusNoContent, nil)
	server.Invoke(t, "GET", "/subscriptions/"+created.Id, nil, http.StatusNotFound, nil)
}

func TestRouterLocal(t *testing.T) {
	client, tableName := test.NewLocalTable(t, test.LOCAL_DDB_PORT+1)
	marshaler := token.NewGCM()
	gw := gateway.NewDynamoDBGateway(
		purchaseData.NewPurchaseDynamoDBService(tableName, client, marshaler),
		productData.NewProductDynamoDBService(tableName, client, marshaler),
	)
	server := &LocalServer{
		Router: routes.NewRouter(
			purchases.NewRoute(gw),
			products.NewRoute(shopping.NewCatalog(gw)),
			subscriptions.NewRoute(
				subscriberData.NewSubscriptionDynamoDBService(tableName, client, marshaler),
				&LocalNotifications{Cache: make(map[string]notifications.SubscribeInput)},
			),
		),
		Username: "nobody",
	}
	budget := 10.0

	var created purchases.Purchase
	server.Invoke(t, "POST", "/purchases", purchases.PurchaseInput{
		Budget: &budget,
		Items:  []shopping.Item{{Name: "Rice", Price: 5, Quantity: 1, Type: shopping.Unit}},
	}, http.StatusCreated, &created)

	var fetched purchases.Purchase
	server.Invoke(t, "GET", "/purchases/"+created.Id, nil, http.StatusOK, &fetched)
	assert.Equal(t, created.TotalSpent, fetched.TotalSpent)
	assert.Equal(t, created.Date, fetched.Date)

	endpoint, protocol := "nobody@email.com", "email"
	for i := 0; i < 3; i++ {
		server.Invoke(t, "POST", "/subscriptions", subscriptions.SubscriptionInput{
			Endpoint: &endpoint,
			Protocol: &protocol,
		}, http.StatusCreated, nil)
	}
	var page data.QueryResults[subscriptions.Subscription]
	server.Invoke(t, "GET", "/subscriptions?limit=2", nil, http.StatusOK, &page)
	require.Len(t, page.Items, 2)
	require.NotEmpty(t, page.NextToken)

	// The cursor round trips through the query string the way clients send it.
	encoded, _ := json.Marshal(page.NextToken)
	var rest data.QueryResults[subscriptions.Subscription]
	var cursor string
	require.NoError(t, json.Unmarshal(encoded, &cursor))
	server.Invoke(t, "GET", "/subscriptions?nextToken="+url.QueryEscape(cursor), nil, http.StatusOK, &rest)
	assert.Len(t, rest.Items, 1)
}
