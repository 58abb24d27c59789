package main

import (
	"context"
	"fmt"

	lambdaEvents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"philcali.me/groceries/internal/config"
	"philcali.me/groceries/internal/events"
	"philcali.me/groceries/internal/sns/services"
)

func HandleRequest(ctx context.Context, event lambdaEvents.DynamoDBEvent) error {
	settings := config.FromEnv()
	log := config.NewLogger(settings.Log)
	cfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(settings.AWS.Region))
	if err != nil {
		return err
	}
	notifier := &services.NotificationSNSService{
		Sns:      sns.NewFromConfig(cfg),
		TopicArn: settings.AWS.TopicArn,
	}
	dispatcher := events.NewDispatcher(log,
		events.DefaultReceiptHandler(notifier),
		events.DefaultUnsubscribeHandler(notifier),
	)
	if failures := dispatcher.Dispatch(ctx, event.Records); failures > 0 {
		// Failing the batch lets the stream retry it.
		return fmt.Errorf("%d of %d records failed", failures, len(event.Records))
	}
	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
