package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// UserInfoClient reads the claims of an access token from the Cognito hosted
// UI. It is shared by the Lambda authorizer and the CLI provider.
type UserInfoClient struct {
	PoolURL string
	HTTP    HTTPClient
}

func NewUserInfoClient(poolUrl string, client HTTPClient) *UserInfoClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &UserInfoClient{
		PoolURL: strings.TrimSuffix(poolUrl, "/"),
		HTTP:    client,
	}
}

// Claims accepts either a raw access token or an "Bearer <token>" header value.
func (u *UserInfoClient) Claims(ctx context.Context, accessToken string) (map[string]json.RawMessage, error) {
	if !strings.HasPrefix(accessToken, "Bearer ") {
		accessToken = "Bearer " + accessToken
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.PoolURL+"/oauth2/userInfo", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Add("Authorization", accessToken)
	resp, err := u.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, authError("invalid_token", fmt.Errorf("%s returned %d", req.URL.Path, resp.StatusCode))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	var claims map[string]json.RawMessage
	if err := json.Unmarshal(body, &claims); err != nil {
		return nil, fmt.Errorf("failed to parse claims: %w", err)
	}
	return claims, nil
}

func (u *UserInfoClient) User(ctx context.Context, accessToken string) (*User, error) {
	claims, err := u.Claims(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return UserFromClaims(claims)
}

// UserFromClaims keys the user on "username", falling back to "sub".
func UserFromClaims(claims map[string]json.RawMessage) (*User, error) {
	str := func(name string) string {
		var value string
		if raw, ok := claims[name]; ok {
			json.Unmarshal(raw, &value)
		}
		return value
	}
	user := &User{
		ID:    str("username"),
		Email: str("email"),
		Name:  str("name"),
	}
	if user.ID == "" {
		user.ID = str("sub")
	}
	if user.ID == "" {
		return nil, authError("invalid_claims", fmt.Errorf("claims carry neither username nor sub"))
	}
	return user, nil
}
