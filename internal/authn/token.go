package authn

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"outreach/pkg/types"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

var ErrInvalidToken = errors.New("invalid token")

// Verifier validates Cognito ID tokens against the pool's JWKS and projects
// their claims into a Session. Sessions are re-derived on every request.
type Verifier struct {
	jwksCache *jwk.Cache
	jwksURL   string
}

func NewVerifier(jwksCache *jwk.Cache, jwksURL string) *Verifier {
	return &Verifier{
		jwksCache: jwksCache,
		jwksURL:   jwksURL,
	}
}

func (v *Verifier) VerifySession(ctx context.Context, idToken string) (*types.Session, error) {

	set, err := v.jwksCache.Lookup(ctx, v.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("jwks lookup: %w", err)
	}

	token, err := jwt.Parse(
		[]byte(idToken),
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	accountID, ok := token.Subject()
	if !ok || accountID == "" {
		return nil, ErrInvalidToken
	}

	session := &types.Session{AccountID: accountID}

	// email and name may be absent on older accounts
	_ = token.Get("email", &session.Email)
	_ = token.Get(attrName, &session.FullName)

	var role string
	if err := token.Get(attrRole, &role); err != nil {
		return nil, fmt.Errorf("%w: missing role claim", ErrInvalidToken)
	}
	session.Role = types.Role(role)
	if !session.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, role)
	}

	var isActive string
	if err := token.Get(attrIsActive, &isActive); err == nil {
		session.IsActive, _ = strconv.ParseBool(isActive)
	}

	return session, nil
}
