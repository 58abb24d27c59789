// Package identity resolves who is shopping. A nil *User is guest mode and is
// a fully supported state, not an error.
package identity

import (
	"context"
	"fmt"
)

type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Tokens are what a client keeps between launches to resolve the same user
// again without prompting.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	IdToken      string `json:"idToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresAt    int64  `json:"expiresAt,omitempty"`
}

type Listener func(user *User)

type Provider interface {
	CurrentIdentity() *User
	Subscribe(listener Listener) (unsubscribe func())
	Resolved() bool
	Restore(ctx context.Context, tokens *Tokens) (*User, error)
	SignIn(ctx context.Context, email string, password string) (*Tokens, error)
	FederatedSignInURL(state string) (string, error)
	CompleteFederatedSignIn(ctx context.Context, code string) (*Tokens, error)
	SignOut(ctx context.Context) error
}

type AuthError struct {
	Code  string
	Cause error
}

func (ae *AuthError) Error() string {
	if ae.Cause == nil {
		return fmt.Sprintf("authentication failed: %s", ae.Code)
	}
	return fmt.Sprintf("authentication failed: %s: %v", ae.Code, ae.Cause)
}

func (ae *AuthError) Unwrap() error {
	return ae.Cause
}

func authError(code string, cause error) *AuthError {
	return &AuthError{
		Code:  code,
		Cause: cause,
	}
}

func sameUser(a *User, b *User) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID == b.ID
}

func copyUser(user *User) *User {
	if user == nil {
		return nil
	}
	copied := *user
	return &copied
}
