package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nahuelRo/first-plug-api/internal/observability"
	"github.com/nahuelRo/first-plug-api/internal/platform/ctxutil"
	"github.com/nahuelRo/first-plug-api/internal/platform/logger"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrTenantNotFound  = errors.New("tenant not found")
)

// TenantResolver turns an Authorization header into the request's tenant.
//
// Resolve returns ErrUnauthenticated or ErrTenantNotFound for authorization
// failures. Any other error is an infrastructure fault.
type TenantResolver interface {
	Resolve(ctx context.Context, authorization string) (context.Context, *ctxutil.TenantData, error)
}

type tenantResolver struct {
	verifier  CredentialVerifier
	directory TenantDirectory
	metrics   *observability.Metrics
	log       *logger.Logger
}

func NewTenantResolver(verifier CredentialVerifier, directory TenantDirectory, metrics *observability.Metrics, log *logger.Logger) TenantResolver {
	return &tenantResolver{
		verifier:  verifier,
		directory: directory,
		metrics:   metrics,
		log:       log.With("service", "TenantResolver"),
	}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func (r *tenantResolver) Resolve(ctx context.Context, authorization string) (context.Context, *ctxutil.TenantData, error) {
	token := BearerToken(authorization)
	if token == "" {
		r.metrics.IncTenantResolution("missing_credential")
		return ctx, nil, ErrUnauthenticated
	}
	claims, err := r.verifier.Verify(token)
	if err != nil {
		r.metrics.IncTenantResolution("invalid_credential")
		return ctx, nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if claims.TenantName == "" {
		r.metrics.IncTenantResolution("missing_claim")
		return ctx, nil, fmt.Errorf("%w: empty tenantName claim", ErrUnauthenticated)
	}

	exists, err := r.directory.Exists(ctx, claims.TenantName)
	if err != nil {
		r.metrics.IncTenantResolution("directory_error")
		r.log.Error("Tenant directory lookup failed", "tenant", claims.TenantName, "error", err)
		return ctx, nil, fmt.Errorf("tenant directory: %w", err)
	}
	if !exists {
		r.metrics.IncTenantResolution("not_found")
		return ctx, nil, ErrTenantNotFound
	}

	td := &ctxutil.TenantData{
		TenantName: claims.TenantName,
		HolderID:   claims.HolderID,
		Email:      claims.Email,
	}
	r.metrics.IncTenantResolution("ok")
	return ctxutil.WithTenantData(ctx, td), td, nil
}

// IsAuthFailure reports whether err should be answered with 401.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrTenantNotFound)
}
