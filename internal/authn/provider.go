// Package authn wraps the identity provider. The rest of the app talks to the
// Provider interface; the Cognito implementation lives in cognito.go.
package authn

import (
	"context"
	"errors"

	"outreach/pkg/types"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountExists      = errors.New("account already exists")
	ErrWeakPassword       = errors.New("password does not meet requirements")
)

// Tokens is the result of a successful sign-in.
type Tokens struct {
	IDToken      string
	RefreshToken string
	ExpiresIn    int
}

// SignUpInput carries everything needed to create an account. Metadata is
// written as provider attributes and read back into sessions on every request.
type SignUpInput struct {
	Email    string
	Password string
	Metadata types.AccountMetadata
}

type Provider interface {
	SignUp(ctx context.Context, input SignUpInput) (accountID string, err error)
	SignIn(ctx context.Context, email, password string) (*Tokens, error)
	SignOut(ctx context.Context, email string) error

	// ListAccounts pages through every account in the pool.
	ListAccounts(ctx context.Context) ([]*types.Account, error)

	// UpdateAccountMetadata merges the given metadata onto the account
	// identified by email.
	UpdateAccountMetadata(ctx context.Context, email string, metadata types.AccountMetadata) error

	// DeleteAccount removes the account permanently.
	DeleteAccount(ctx context.Context, email string) error
}
