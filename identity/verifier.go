// api/identity/verifier.go
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	gk_errors "github.com/dev-mohitbeniwal/gatekeeper/api/errors"
	logger "github.com/dev-mohitbeniwal/gatekeeper/api/logging"
	"github.com/dev-mohitbeniwal/gatekeeper/api/model"
)

// TokenVerifier validates a bearer credential against the identity
// issuer and extracts the principal it represents.
type TokenVerifier interface {
	Verify(ctx context.Context, credential string) (*model.Principal, error)
}

// Config holds the issuer settings a verifier is constructed with.
// Passing these explicitly keeps the verifier testable against a fake
// issuer instead of reading ambient global state.
type Config struct {
	Issuer     string
	JwksURL    string
	Audience   string
	HTTPClient *http.Client
}

type cognitoClaims struct {
	jwt.RegisteredClaims
	CognitoGroups   []string `json:"cognito:groups"`
	CognitoUsername string   `json:"cognito:username"`
	EmailVerified   bool     `json:"email_verified"`
	Email           string   `json:"email"`
}

// CognitoVerifier verifies RS256 tokens minted by a Cognito-style user
// pool, resolving signing keys from the pool's JWKS endpoint.
type CognitoVerifier struct {
	issuer   string
	audience string
	keys     *keySet
}

var _ TokenVerifier = &CognitoVerifier{}

func NewCognitoVerifier(cfg Config) *CognitoVerifier {
	return &CognitoVerifier{
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		keys:     newKeySet(cfg.JwksURL, cfg.HTTPClient, 15*time.Minute),
	}
}

// Verify parses and validates the credential. Signature, expiry and
// issuer are always checked; audience is checked when configured.
func (v *CognitoVerifier) Verify(ctx context.Context, credential string) (*model.Principal, error) {
	credential = strings.TrimSpace(strings.TrimPrefix(credential, "Bearer "))
	if credential == "" {
		return nil, gk_errors.ErrTokenMalformed
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.ParseWithClaims(credential, &cognitoClaims{}, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("token header missing kid")
		}
		return v.keys.Key(ctx, kid)
	}, opts...)

	if err != nil {
		return nil, mapVerificationError(err)
	}

	claims, ok := token.Claims.(*cognitoClaims)
	if !ok || !token.Valid {
		return nil, gk_errors.ErrTokenInvalid
	}

	principal := &model.Principal{
		ID:       claims.Subject,
		Username: claims.CognitoUsername,
		Email:    claims.Email,
		Groups:   claims.CognitoGroups,
	}
	if claims.ExpiresAt != nil {
		principal.ExpiresAt = claims.ExpiresAt.Time
	}
	logger.Debug("Token verified",
		zap.String("sub", principal.ID),
		zap.Strings("groups", principal.Groups))
	return principal, nil
}

// mapVerificationError collapses library errors onto the error taxonomy
// so that callers never see (or leak) internal verification detail.
func mapVerificationError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
		return gk_errors.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return gk_errors.ErrTokenMalformed
	default:
		logger.Debug("Token verification failed", zap.Error(err))
		return gk_errors.ErrTokenInvalid
	}
}
