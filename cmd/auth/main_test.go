package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"philcali.me/groceries/internal/identity"
)

func TestHandleRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth2/userInfo" || r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sub":"abc","username":"nobody","email":"nobody@email.com"}`))
	}))
	defer server.Close()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	authorizer := &Authorizer{
		UserInfo: identity.NewUserInfoClient(server.URL, server.Client()),
		Log:      logger,
	}

	resp, err := authorizer.HandleRequest(context.TODO(), events.APIGatewayV2CustomAuthorizerV2Request{
		Headers: map[string]string{"authorization": "Bearer good"},
	})
	require.NoError(t, err)
	require.True(t, resp.IsAuthorized)
	claims, ok := resp.Context["claims"].(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "nobody", claims["username"])
	assert.Equal(t, "nobody@email.com", claims["email"])

	for name, headers := range map[string]map[string]string{
		"Missing": {},
		"Invalid": {"authorization": "Bearer bad"},
	} {
		t.Run(name, func(t *testing.T) {
			resp, err := authorizer.HandleRequest(context.TODO(), events.APIGatewayV2CustomAuthorizerV2Request{Headers: headers})
			require.NoError(t, err)
			assert.False(t, resp.IsAuthorized)
		})
	}
}
