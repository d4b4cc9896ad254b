package common

// ContextKey is the typed key for values threaded through request/task contexts.
type ContextKey string

const (
	// TenantIDKey holds the uuid.UUID of the tenant the current request/task acts on behalf of.
	TenantIDKey ContextKey = "tenant_id"

	// RequestIDKey holds a string correlation id, propagated into logs.
	RequestIDKey ContextKey = "x-request-id"
)
