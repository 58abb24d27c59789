package services

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"philcali.me/groceries/internal/notifications"
)

type Client interface {
	Subscribe(ctx context.Context, params *sns.SubscribeInput, optFns ...func(*sns.Options)) (*sns.SubscribeOutput, error)
	Unsubscribe(ctx context.Context, params *sns.UnsubscribeInput, optFns ...func(*sns.Options)) (*sns.UnsubscribeOutput, error)
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type NotificationSNSService struct {
	Sns      Client
	TopicArn string
}

func filterPolicy(ownerId string) (string, error) {
	policy, err := json.Marshal(map[string][]string{
		notifications.OwnerAttribute: {ownerId},
	})
	return string(policy), err
}

func (n *NotificationSNSService) Subscribe(ctx context.Context, input notifications.SubscribeInput) (*notifications.SubscribeOutput, error) {
	policy, err := filterPolicy(input.OwnerId)
	if err != nil {
		return nil, err
	}
	output, err := n.Sns.Subscribe(ctx, &sns.SubscribeInput{
		Endpoint:              input.Endpoint,
		Protocol:              input.Protocol,
		TopicArn:              aws.String(n.TopicArn),
		ReturnSubscriptionArn: true,
		Attributes: map[string]string{
			"FilterPolicy": policy,
		},
	})
	if err != nil {
		return nil, err
	}
	return &notifications.SubscribeOutput{
		SubscriberId: aws.ToString(output.SubscriptionArn),
	}, nil
}

func (n *NotificationSNSService) Unsubscribe(ctx context.Context, subscriberId string) error {
	_, err := n.Sns.Unsubscribe(ctx, &sns.UnsubscribeInput{
		SubscriptionArn: aws.String(subscriberId),
	})
	return err
}

func (n *NotificationSNSService) PublishReceipt(ctx context.Context, receipt notifications.Receipt) error {
	_, err := n.Sns.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.TopicArn),
		Subject:  aws.String(receipt.Subject()),
		Message:  aws.String(receipt.Message()),
		MessageAttributes: map[string]types.MessageAttributeValue{
			notifications.OwnerAttribute: {
				DataType:    aws.String("String"),
				StringValue: aws.String(receipt.OwnerId),
			},
		},
	})
	return err
}
