package httpapi

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey int

const tenantKey ctxKey = iota

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// TenantFromContext returns the tenant the request was authenticated as.
func TenantFromContext(ctx context.Context) string {
	tenant, _ := ctx.Value(tenantKey).(string)
	return tenant
}

// ContextWithTenant scopes a context to a tenant. Exposed for tests.
func ContextWithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantKey, tenantID)
}

// BearerAuthMiddleware returns a middleware that validates Bearer tokens and
// scopes the request to the tenant the key belongs to. Every data route
// requires a key; there is no pass-through mode because an unauthenticated
// request has no tenant to read from.
func BearerAuthMiddleware(apiKeys map[string]string) func(http.Handler) http.Handler {
	keyToTenant := make(map[string]string, len(apiKeys))
	for k, tenant := range apiKeys {
		if k != "" && tenant != "" {
			keyToTenant[k] = tenant
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Exempt paths
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, codeBadRequest, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized,
					codeBadRequest, "authorization header must use Bearer scheme")
				return
			}

			token := auth[len(bearerPrefix):]
			tenant, ok := keyToTenant[token]
			if !ok {
				writeError(w, http.StatusUnauthorized, codeBadRequest, "invalid api key")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithTenant(r.Context(), tenant)))
		})
	}
}
