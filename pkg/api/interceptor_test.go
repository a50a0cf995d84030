package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrincipalMiddlewareDefaultsToAnonymous(t *testing.T) {
	var seen bool
	handler := PrincipalMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = true
		caller := CallerFromContext(r.Context())
		assert.True(t, caller.IsZero())
	}))

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.True(t, seen)
}

func TestPrincipalMiddlewareReadsHeader(t *testing.T) {
	var seen bool
	handler := PrincipalMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = true
		caller := CallerFromContext(r.Context())
		assert.Equal(t, "alice", caller.Text)
		assert.False(t, caller.IsZero())
	}))

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	req.Header.Set(principalHeader, "alice")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.True(t, seen)
}

func TestCallerFromContextWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	assert.True(t, CallerFromContext(req.Context()).IsZero())
}
