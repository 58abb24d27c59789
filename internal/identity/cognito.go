package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/sirupsen/logrus"
	"philcali.me/groceries/internal/exceptions"
)

const service = "identity"

// CognitoClient is the slice of the user pool API used for password sign in.
type CognitoClient interface {
	InitiateAuth(ctx context.Context, params *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error)
	SignUp(ctx context.Context, params *cognitoidentityprovider.SignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error)
	GlobalSignOut(ctx context.Context, params *cognitoidentityprovider.GlobalSignOutInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.GlobalSignOutOutput, error)
}

type CognitoOptions struct {
	ClientId         string
	PoolURL          string
	RedirectURI      string
	IdentityProvider string
}

// Cognito resolves users against a Cognito user pool. Password sign in goes
// through the user pool API; federated sign in goes through the hosted UI.
type Cognito struct {
	*Watcher
	client   CognitoClient
	userInfo *UserInfoClient
	options  CognitoOptions
	log      logrus.FieldLogger
	now      func() time.Time
	mu       sync.Mutex
	tokens   *Tokens
}

func NewCognito(client CognitoClient, httpClient HTTPClient, options CognitoOptions, log logrus.FieldLogger) *Cognito {
	if options.IdentityProvider == "" {
		options.IdentityProvider = "Google"
	}
	return &Cognito{
		Watcher:  NewWatcher(),
		client:   client,
		userInfo: NewUserInfoClient(options.PoolURL, httpClient),
		options:  options,
		log:      log.WithField("module", "identity"),
		now:      time.Now,
	}
}

func (c *Cognito) CurrentIdentity() *User {
	return c.Current()
}

// Tokens returns the tokens of the signed-in user, nil for guests.
func (c *Cognito) Tokens() *Tokens {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tokens == nil {
		return nil
	}
	tokens := *c.tokens
	return &tokens
}

func (c *Cognito) setTokens(tokens *Tokens) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = tokens
}

// classify turns SDK failures into AuthError for credential problems and an
// unavailable error for everything else.
func classify(err error) error {
	var notAuthorized *types.NotAuthorizedException
	var notFound *types.UserNotFoundException
	var notConfirmed *types.UserNotConfirmedException
	var invalidPassword *types.InvalidPasswordException
	var invalidParameter *types.InvalidParameterException
	switch {
	case errors.As(err, &notAuthorized):
		return authError("not_authorized", err)
	case errors.As(err, &notFound):
		return authError("user_not_found", err)
	case errors.As(err, &notConfirmed):
		return authError("user_not_confirmed", err)
	case errors.As(err, &invalidPassword):
		return authError("invalid_password", err)
	case errors.As(err, &invalidParameter):
		return authError("invalid_parameter", err)
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return err
	}
	return exceptions.ServiceUnavailable(service, err)
}

func (c *Cognito) tokensFrom(result *types.AuthenticationResultType, previous *Tokens) (*Tokens, error) {
	if result == nil {
		return nil, authError("challenge_required", fmt.Errorf("sign in needs an interactive challenge"))
	}
	tokens := &Tokens{
		AccessToken:  aws.ToString(result.AccessToken),
		IdToken:      aws.ToString(result.IdToken),
		RefreshToken: aws.ToString(result.RefreshToken),
		ExpiresAt:    c.now().Add(time.Duration(result.ExpiresIn) * time.Second).UnixMilli(),
	}
	if tokens.RefreshToken == "" && previous != nil {
		tokens.RefreshToken = previous.RefreshToken
	}
	return tokens, nil
}

func (c *Cognito) passwordAuth(ctx context.Context, email string, password string) (*cognitoidentityprovider.InitiateAuthOutput, error) {
	return c.client.InitiateAuth(ctx, &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(c.options.ClientId),
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	})
}

// SignIn signs in with email and password. An unknown email is registered
// first and then signed in.
func (c *Cognito) SignIn(ctx context.Context, email string, password string) (*Tokens, error) {
	output, err := c.passwordAuth(ctx, email, password)
	var notFound *types.UserNotFoundException
	if errors.As(err, &notFound) {
		c.log.WithField("funcName", "SignIn").Info("Unknown user, registering")
		_, err = c.client.SignUp(ctx, &cognitoidentityprovider.SignUpInput{
			ClientId: aws.String(c.options.ClientId),
			Username: aws.String(email),
			Password: aws.String(password),
			UserAttributes: []types.AttributeType{
				{Name: aws.String("email"), Value: aws.String(email)},
			},
		})
		if err != nil {
			return nil, classify(err)
		}
		output, err = c.passwordAuth(ctx, email, password)
	}
	if err != nil {
		return nil, classify(err)
	}
	tokens, err := c.tokensFrom(output.AuthenticationResult, nil)
	if err != nil {
		return nil, err
	}
	if _, err := c.resolve(ctx, tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

// FederatedSignInURL is the hosted UI address the user opens in a browser.
// The returned code is exchanged with CompleteFederatedSignIn.
func (c *Cognito) FederatedSignInURL(state string) (string, error) {
	if c.options.PoolURL == "" || c.options.RedirectURI == "" {
		return "", authError("not_configured", fmt.Errorf("federated sign in needs a pool url and redirect uri"))
	}
	query := url.Values{}
	query.Set("response_type", "code")
	query.Set("client_id", c.options.ClientId)
	query.Set("redirect_uri", c.options.RedirectURI)
	query.Set("identity_provider", c.options.IdentityProvider)
	query.Set("scope", "openid email profile")
	if state != "" {
		query.Set("state", state)
	}
	return strings.TrimSuffix(c.options.PoolURL, "/") + "/oauth2/authorize?" + query.Encode(), nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	IdToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Error        string `json:"error"`
}

func (c *Cognito) CompleteFederatedSignIn(ctx context.Context, code string) (*Tokens, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", c.options.ClientId)
	form.Set("redirect_uri", c.options.RedirectURI)
	form.Set("code", code)
	endpoint := strings.TrimSuffix(c.options.PoolURL, "/") + "/oauth2/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.userInfo.HTTP.Do(req)
	if err != nil {
		return nil, exceptions.ServiceUnavailable(service, err)
	}
	defer resp.Body.Close()
	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, exceptions.ServiceUnavailable(service, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, authError(body.Error, fmt.Errorf("token exchange returned %d", resp.StatusCode))
	}
	tokens := &Tokens{
		AccessToken:  body.AccessToken,
		IdToken:      body.IdToken,
		RefreshToken: body.RefreshToken,
		ExpiresAt:    c.now().Add(time.Duration(body.ExpiresIn) * time.Second).UnixMilli(),
	}
	if _, err := c.resolve(ctx, tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

func (c *Cognito) refresh(ctx context.Context, tokens *Tokens) (*Tokens, error) {
	output, err := c.client.InitiateAuth(ctx, &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeRefreshTokenAuth,
		ClientId: aws.String(c.options.ClientId),
		AuthParameters: map[string]string{
			"REFRESH_TOKEN": tokens.RefreshToken,
		},
	})
	if err != nil {
		return nil, classify(err)
	}
	return c.tokensFrom(output.AuthenticationResult, tokens)
}

func (c *Cognito) resolve(ctx context.Context, tokens *Tokens) (*User, error) {
	user, err := c.userInfo.User(ctx, tokens.AccessToken)
	if err != nil {
		return nil, classify(err)
	}
	c.setTokens(tokens)
	c.Publish(user)
	return user, nil
}

// Restore performs the initial resolution from tokens saved by a previous
// launch. Nil tokens resolve to guest. Whatever happens the identity ends up
// resolved, so failures also leave the session as guest.
func (c *Cognito) Restore(ctx context.Context, tokens *Tokens) (*User, error) {
	if tokens == nil || tokens.AccessToken == "" {
		c.Publish(nil)
		return nil, nil
	}
	current := tokens
	if current.ExpiresAt > 0 && c.now().UnixMilli() >= current.ExpiresAt {
		if current.RefreshToken == "" {
			c.Publish(nil)
			return nil, authError("expired", fmt.Errorf("session expired"))
		}
		refreshed, err := c.refresh(ctx, current)
		if err != nil {
			c.Publish(nil)
			return nil, err
		}
		current = refreshed
	}
	user, err := c.resolve(ctx, current)
	if err != nil {
		c.Publish(nil)
		return nil, err
	}
	return user, nil
}

// SignOut always ends the local session. A failed global sign out is only
// logged.
func (c *Cognito) SignOut(ctx context.Context) error {
	tokens := c.Tokens()
	c.setTokens(nil)
	c.Publish(nil)
	if tokens == nil {
		return nil
	}
	_, err := c.client.GlobalSignOut(ctx, &cognitoidentityprovider.GlobalSignOutInput{
		AccessToken: aws.String(tokens.AccessToken),
	})
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"funcName": "SignOut",
		}).Warn(err.Error())
	}
	return nil
}

var _ Provider = (*Cognito)(nil)
