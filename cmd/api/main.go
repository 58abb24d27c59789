package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/sirupsen/logrus"
	"philcali.me/groceries/internal/config"
	"philcali.me/groceries/internal/dynamodb/gateway"
	productData "philcali.me/groceries/internal/dynamodb/products"
	purchaseData "philcali.me/groceries/internal/dynamodb/purchases"
	subscriberData "philcali.me/groceries/internal/dynamodb/subscriptions"
	"philcali.me/groceries/internal/dynamodb/token"
	"philcali.me/groceries/internal/routes"
	"philcali.me/groceries/internal/routes/products"
	"philcali.me/groceries/internal/routes/purchases"
	"philcali.me/groceries/internal/routes/subscriptions"
	suggestionRoutes "philcali.me/groceries/internal/routes/suggestions"
	"philcali.me/groceries/internal/shopping"
	"philcali.me/groceries/internal/sns/services"
	"philcali.me/groceries/internal/suggestions"
)

type App struct {
	Router *routes.Router
}

func NewApp(settings config.Config, log *logrus.Logger) App {
	cfg, err := awsConfig.LoadDefaultConfig(context.TODO(), awsConfig.WithRegion(settings.AWS.Region))
	if err != nil {
		log.WithField("funcName", "NewApp").Fatalf("Failed to load AWS config: %v", err)
	}
	client := dynamodb.NewFromConfig(cfg)
	snsClient := sns.NewFromConfig(cfg)
	marshaler := token.NewGCM()
	tableName := settings.AWS.TableName
	gw := gateway.NewDynamoDBGateway(
		purchaseData.NewPurchaseDynamoDBService(tableName, client, marshaler),
		productData.NewProductDynamoDBService(tableName, client, marshaler),
	)
	suggester := suggestions.NewBedrock(bedrockruntime.NewFromConfig(cfg), settings.Suggestions.ModelId, log)
	if settings.Suggestions.Limit > 0 {
		suggester.Limit = settings.Suggestions.Limit
	}
	router := routes.NewRouter(
		purchases.NewRoute(gw),
		products.NewRoute(shopping.NewCatalog(gw)),
		suggestionRoutes.NewRoute(suggester),
		subscriptions.NewRoute(
			subscriberData.NewSubscriptionDynamoDBService(tableName, client, marshaler),
			&services.NotificationSNSService{
				Sns:      snsClient,
				TopicArn: settings.AWS.TopicArn,
			},
		),
	)
	router.Log = log
	return App{
		Router: router,
	}
}

func (app *App) HandleRequest(ctx context.Context, request events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return app.Router.Invoke(request, ctx), nil
}

func main() {
	settings := config.FromEnv()
	app := NewApp(settings, config.NewLogger(settings.Log))
	lambda.Start(app.HandleRequest)
}
