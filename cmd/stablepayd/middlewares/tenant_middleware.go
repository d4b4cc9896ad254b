package middlewares

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	common "github.com/stablepay/gateway/pkg/domain"
	out "github.com/stablepay/gateway/pkg/domain/payment/ports/out"
	"github.com/stablepay/gateway/pkg/infra/crypto"
)

// TenantMiddleware resolves the tenant identity from the X-Api-Key header
// and injects it into the request context. Unlike the teacher's
// resource-ownership middleware, there is no session/JWT layer here: rate
// limiting and transport auth are external concerns (per the HTTP surface
// design), and this is the one piece of identity the core itself needs.
type TenantMiddleware struct {
	storage out.Storage
}

func NewTenantMiddleware(storage out.Storage) *TenantMiddleware {
	return &TenantMiddleware{storage: storage}
}

const apiKeyHeader = "X-Api-Key"

func (m *TenantMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := r.Header.Get(apiKeyHeader)
		if apiKey == "" {
			*r = *r.WithContext(common.SetError(r.Context(), common.ErrUnauthorizedAPI))
			next.ServeHTTP(w, r)
			return
		}

		tenant, err := m.storage.GetTenantByAPIKeyDigest(r.Context(), crypto.APIKeyDigest(apiKey))
		if err != nil {
			*r = *r.WithContext(common.SetError(r.Context(), err))
			next.ServeHTTP(w, r)
			return
		}
		if tenant == nil || !tenant.Active {
			*r = *r.WithContext(common.SetError(r.Context(), common.ErrUnauthorizedAPI))
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), common.TenantIDKey, tenant.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TenantIDFromContext reads the tenant id injected by TenantMiddleware.
func TenantIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(common.TenantIDKey).(uuid.UUID)
	return id, ok
}
