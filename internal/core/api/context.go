package api

import (
	"context"

	"github.com/riskgate/riskgate/internal/types"
)

// contextKey is a typed key for context values to avoid collisions.
type contextKey string

const (
	requestIDKey = contextKey("request_id")
	tenantIDKey  = contextKey("tenant_id")
)

// DefaultTenant applies when a request carries no tenant header. Tenant
// resolution from credentials belongs to the excluded auth layer; the engine
// only needs a scoping key.
const DefaultTenant = "default"

// WithRequestID returns a context carrying the request identifier.
func WithRequestID(ctx context.Context, id types.RequestID) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the request identifier, empty if unset.
func RequestIDFromContext(ctx context.Context) types.RequestID {
	id, _ := ctx.Value(requestIDKey).(types.RequestID)
	return id
}

// WithTenantID returns a context carrying the tenant identifier.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantIDKey, tenantID)
}

// TenantIDFromContext extracts the tenant identifier, DefaultTenant if unset.
func TenantIDFromContext(ctx context.Context) string {
	if tenantID, ok := ctx.Value(tenantIDKey).(string); ok && tenantID != "" {
		return tenantID
	}
	return DefaultTenant
}
