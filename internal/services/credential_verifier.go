package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nahuelRo/first-plug-api/internal/platform/logger"
)

var ErrInvalidCredential = errors.New("invalid credential")

// TenantClaims are the claims minted by the account service.
type TenantClaims struct {
	TenantName string `json:"tenantName"`
	Email      string `json:"email,omitempty"`
	Name       string `json:"name,omitempty"`
	HolderID   string `json:"_id,omitempty"`
	jwt.RegisteredClaims
}

type CredentialVerifier interface {
	Verify(token string) (*TenantClaims, error)
}

type jwtVerifier struct {
	secret []byte
	leeway time.Duration
	log    *logger.Logger
}

// NewJWTVerifier verifies HS256 tokens signed with secret.
func NewJWTVerifier(secret string, leeway time.Duration, log *logger.Logger) CredentialVerifier {
	return &jwtVerifier{
		secret: []byte(secret),
		leeway: leeway,
		log:    log.With("service", "JWTVerifier"),
	}
}

func (v *jwtVerifier) Verify(token string) (*TenantClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidCredential)
	}
	if len(v.secret) == 0 {
		return nil, fmt.Errorf("%w: verifier has no secret", ErrInvalidCredential)
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
	)
	claims := &TenantClaims{}
	tok, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		v.log.Debug("Credential rejected", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if tok == nil || !tok.Valid {
		return nil, ErrInvalidCredential
	}
	claims.TenantName = strings.TrimSpace(claims.TenantName)
	claims.Email = strings.ToLower(strings.TrimSpace(claims.Email))
	return claims, nil
}
