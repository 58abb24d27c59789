package main

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"
	"philcali.me/groceries/internal/config"
	"philcali.me/groceries/internal/identity"
)

type Authorizer struct {
	UserInfo *identity.UserInfoClient
	Log      logrus.FieldLogger
}

func NewAuthorizer() *Authorizer {
	settings := config.FromEnv()
	return &Authorizer{
		UserInfo: identity.NewUserInfoClient(settings.Auth.PoolURL, &http.Client{Timeout: 5 * time.Second}),
		Log:      config.NewLogger(settings.Log).WithField("module", "auth"),
	}
}

// HandleRequest resolves the bearer token to a user and hands the claims to
// the API under "claims". Anything short of a resolved user is a denial.
func (a *Authorizer) HandleRequest(ctx context.Context, event events.APIGatewayV2CustomAuthorizerV2Request) (events.APIGatewayV2CustomAuthorizerSimpleResponse, error) {
	response := events.APIGatewayV2CustomAuthorizerSimpleResponse{
		IsAuthorized: false,
	}
	accessToken, ok := event.Headers["authorization"]
	if !ok || accessToken == "" {
		return response, nil
	}
	user, err := a.UserInfo.User(ctx, accessToken)
	if err != nil {
		config.LogError(a.Log, "auth", "HandleRequest", event.RouteKey, nil, err)
		return response, nil
	}
	claims := map[string]string{
		"username": user.ID,
	}
	if user.Email != "" {
		claims["email"] = user.Email
	}
	return events.APIGatewayV2CustomAuthorizerSimpleResponse{
		IsAuthorized: true,
		Context: map[string]interface{}{
			"claims": claims,
		},
	}, nil
}

func main() {
	lambda.Start(NewAuthorizer().HandleRequest)
}
