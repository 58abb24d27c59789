package events

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"philcali.me/groceries/internal/dynamodb/subscriptions"
	"philcali.me/groceries/internal/notifications"
)

// UnsubscribeHandler removes the SNS subscription once its record is deleted.
type UnsubscribeHandler struct {
	Notifications notifications.NotificationService
}

func DefaultUnsubscribeHandler(service notifications.NotificationService) *UnsubscribeHandler {
	return &UnsubscribeHandler{
		Notifications: service,
	}
}

func (uh *UnsubscribeHandler) Filter(record events.DynamoDBEventRecord) bool {
	if record.EventName != "REMOVE" {
		return false
	}
	_, resource := resourceKey(record)
	return resource == subscriptions.Resource
}

func (uh *UnsubscribeHandler) Apply(ctx context.Context, record events.DynamoDBEventRecord) error {
	arn := str(record.Change.OldImage, "subscriberArn")
	if arn == "" {
		return nil
	}
	return uh.Notifications.Unsubscribe(ctx, arn)
}
