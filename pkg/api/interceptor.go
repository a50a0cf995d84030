package api

import (
	"context"
	"net/http"

	"github.com/crnlicp/chronolock/pkg/types"
)

// principalHeader is the caller-identity header accepted by this
// transport. Production deployments are expected to terminate mTLS (or an
// equivalent gateway) upstream and forward the resolved principal here;
// test harnesses and local development set it directly (spec.md §4.B).
const principalHeader = "X-Principal"

type contextKey int

const callerContextKey contextKey = iota

// PrincipalMiddleware resolves the caller principal for every request and
// stores it on the request context, defaulting to the anonymous principal
// when the header is absent. Handlers read it back with CallerFromContext
// instead of touching the header directly, so the resolution rule lives in
// exactly one place.
func PrincipalMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := types.AnonymousPrincipal()
		if text := r.Header.Get(principalHeader); text != "" {
			caller = types.Principal{Text: text, Bytes: []byte(text)}
		}
		ctx := context.WithValue(r.Context(), callerContextKey, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CallerFromContext returns the principal resolved by PrincipalMiddleware,
// or the anonymous principal if the middleware never ran.
func CallerFromContext(ctx context.Context) types.Principal {
	if p, ok := ctx.Value(callerContextKey).(types.Principal); ok {
		return p
	}
	return types.AnonymousPrincipal()
}
