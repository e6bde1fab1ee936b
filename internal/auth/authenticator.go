package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

// Header names read by the authenticators.
const (
	HeaderAPIKey        = "X-API-Key"
	HeaderWallet        = "X-Wallet"
	HeaderAuthorization = "Authorization"
)

// ErrNoCredentials is returned by an authenticator when the request carries
// none of its credentials, so a Chain can try the next one.
var ErrNoCredentials = errors.New("no credentials presented")

// Authenticator identifies the caller of r. When roles are given the
// principal must hold at least one of them.
type Authenticator interface {
	Authenticate(r *http.Request, roles ...string) (*Principal, error)
}

func authorize(p *Principal, roles []string) (*Principal, error) {
	if len(roles) == 0 {
		return p, nil
	}
	for _, role := range roles {
		if p.HasRole(role) {
			return p, nil
		}
	}
	return nil, model.ErrForbidden
}

// Claims are the JWT claims issued to merchants and integrations.
type Claims struct {
	jwt.RegisteredClaims
	Wallet string   `json:"wallet"`
	Roles  []string `json:"roles"`
}

// JWTAuthenticator accepts HS256 bearer tokens.
type JWTAuthenticator struct {
	secret []byte
	issuer string
}

// NewJWTAuthenticator creates a JWT authenticator. An empty issuer skips the
// issuer check.
func NewJWTAuthenticator(secret, issuer string) *JWTAuthenticator {
	return &JWTAuthenticator{secret: []byte(secret), issuer: issuer}
}

func (a *JWTAuthenticator) Authenticate(r *http.Request, roles ...string) (*Principal, error) {
	header := r.Header.Get(HeaderAuthorization)
	if header == "" {
		return nil, ErrNoCredentials
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, model.ErrUnauthorised.WithDetail("expected 'Bearer <token>'")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, model.ErrUnauthorised.WithDetail("invalid or expired token")
	}

	wallet := claims.Wallet
	if wallet == "" {
		wallet = claims.Subject
	}
	return authorize(&Principal{
		Wallet: NormalizeWallet(wallet),
		Roles:  claims.Roles,
		Source: "jwt",
	}, roles)
}

// IssueToken signs an HS256 token for wallet.
func IssueToken(secret, issuer, wallet string, roles []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   wallet,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Wallet: wallet,
		Roles:  roles,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// APIKeyAuthenticator accepts the shared X-API-Key used by server-side
// integrations. The acting wallet comes from X-Wallet and the key holder is
// trusted as a webhook.
type APIKeyAuthenticator struct {
	key string
}

// NewAPIKeyAuthenticator creates an API key authenticator.
func NewAPIKeyAuthenticator(key string) *APIKeyAuthenticator {
	return &APIKeyAuthenticator{key: key}
}

func (a *APIKeyAuthenticator) Authenticate(r *http.Request, roles ...string) (*Principal, error) {
	provided := r.Header.Get(HeaderAPIKey)
	if provided == "" {
		return nil, ErrNoCredentials
	}
	if a.key == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(a.key)) != 1 {
		return nil, model.ErrUnauthorised.WithDetail("invalid API key")
	}
	return authorize(&Principal{
		Wallet: NormalizeWallet(r.Header.Get(HeaderWallet)),
		Roles:  []string{RoleMerchant, RoleWebhook},
		Source: "api_key",
	}, roles)
}

// Chain tries each authenticator in order. The first one that finds its
// credentials decides.
type Chain []Authenticator

func (c Chain) Authenticate(r *http.Request, roles ...string) (*Principal, error) {
	for _, a := range c {
		p, err := a.Authenticate(r, roles...)
		if errors.Is(err, ErrNoCredentials) {
			continue
		}
		return p, err
	}
	return nil, model.ErrUnauthorised
}
