package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/titleforge-backend/internal/platform/ctxutil"
	"github.com/yungbote/titleforge-backend/internal/platform/logger"
)

// AccessClaims mirrors the identity provider's access token.
type AccessClaims struct {
	SessionID string `json:"session_id,omitempty"`
	Role      string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type IdentityConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

type IdentityVerifier interface {
	Verify(tokenString string) (*ctxutil.RequestData, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	Sign(userID, sessionID string, ttl time.Duration) (string, error)
}

type identityVerifier struct {
	log *logger.Logger
	cfg IdentityConfig
}

func NewIdentityVerifier(log *logger.Logger, cfg IdentityConfig) IdentityVerifier {
	return &identityVerifier{log: log.With("service", "IdentityVerifier"), cfg: cfg}
}

func (v *identityVerifier) Verify(tokenString string) (*ctxutil.RequestData, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrUnauthenticated
	}
	if v.cfg.Secret == "" {
		return nil, fmt.Errorf("%w: no signing secret configured", ErrUnauthenticated)
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.cfg.Issuer))
	}
	if v.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.cfg.Audience))
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(v.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid or expired token", ErrUnauthenticated)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}
	return &ctxutil.RequestData{
		UserID:    claims.Subject,
		SessionID: claims.SessionID,
		Role:      claims.Role,
	}, nil
}

func (v *identityVerifier) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	rd, err := v.Verify(tokenString)
	if err != nil {
		return ctx, err
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

// Sign issues a token the verifier accepts. Used by tooling and tests; the
// identity provider issues production tokens.
func (v *identityVerifier) Sign(userID, sessionID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		SessionID: sessionID,
		Role:      "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    v.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if v.cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{v.cfg.Audience}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(v.cfg.Secret))
}
