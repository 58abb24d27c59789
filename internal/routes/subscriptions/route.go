package subscriptions

import (
	"context"
	"errors"

	"github.com/aws/aws-lambda-go/events"
	"philcali.me/groceries/internal/data"
	"philcali.me/groceries/internal/exceptions"
	"philcali.me/groceries/internal/notifications"
	"philcali.me/groceries/internal/routes"
	"philcali.me/groceries/internal/routes/util"
)

type SubscriptionService struct {
	data          data.SubscriptionDataService
	notifications notifications.NotificationService
}

func NewRoute(data data.SubscriptionDataService, notifications notifications.NotificationService) routes.Service {
	return &SubscriptionService{
		data:          data,
		notifications: notifications,
	}
}

func (s *SubscriptionService) GetRoutes() map[string]routes.Route {
	return map[string]routes.Route{
		"GET:/subscriptions":                  util.AuthorizedRoute(s.ListSubscriptions),
		"GET:/subscriptions/:subscriberId":    util.AuthorizedRoute(s.GetSubscription),
		"POST:/subscriptions":                 util.AuthorizedRoute(s.CreateSubscription),
		"DELETE:/subscriptions/:subscriberId": util.AuthorizedRoute(s.DeleteSubscription),
	}
}

func (s *SubscriptionService) ListSubscriptions(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	return util.SerializeList[data.SubscriptionDTO, data.SubscriptionInputDTO](s.data, NewSubscription, event, ctx)
}

func (s *SubscriptionService) GetSubscription(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	item, err := s.data.Get(ctx, util.Username(ctx), util.RequestParam(ctx, "subscriberId"))
	return util.SerializeResponseOK(NewSubscription, item, err)
}

func (s *SubscriptionService) CreateSubscription(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	input, err := util.ParseBody[SubscriptionInput](event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	if input.Endpoint == nil || input.Protocol == nil {
		return events.APIGatewayV2HTTPResponse{}, exceptions.InvalidInput("endpoint and protocol are required")
	}
	subscription, err := s.notifications.Subscribe(ctx, notifications.SubscribeInput{
		OwnerId:  util.Username(ctx),
		Endpoint: input.Endpoint,
		Protocol: input.Protocol,
	})
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, exceptions.ServiceUnavailable("notifications", err)
	}
	created, err := s.data.Create(ctx, util.Username(ctx), input.toData(subscription.SubscriberId))
	return util.SerializeResponseCreated(NewSubscription, created, err)
}

// DeleteSubscription only removes the record; the stream handler drops the
// SNS subscription once the removal lands.
func (s *SubscriptionService) DeleteSubscription(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	err := s.data.Delete(ctx, util.Username(ctx), util.RequestParam(ctx, "subscriberId"))
	var notFound *exceptions.NotFoundError
	if errors.As(err, &notFound) {
		err = nil
	}
	return util.SerializeResponseNoContent(err)
}
