package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crnlicp/chronolock/pkg/types"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, NewClient(srv.URL, "alice-principal")
}

func TestBalanceOfDecodesOKEnvelope(t *testing.T) {
	srv, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "alice-principal", r.Header.Get("X-Principal"))
		assert.Equal(t, "/balance_of", r.URL.Path)
		assert.Equal(t, "bob", r.URL.Query().Get("owner"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"ok": "1000000"})
	})
	defer srv.Close()

	balance, err := c.BalanceOf(context.Background(), "bob", "")
	require.NoError(t, err)
	assert.Equal(t, "1000000", balance)
}

func TestTransferDecodesErrEnvelopeAsTypedError(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"err": map[string]interface{}{"kind": "InsufficientBalance", "detail": "not enough funds"},
		})
	})

	_, err := c.Transfer(context.Background(), "bob", "", "1000000")
	require.Error(t, err)
	assert.Equal(t, types.ErrInsufficientBalance, types.KindOf(err))
}

func TestWithPrincipalDoesNotMutateOriginal(t *testing.T) {
	srv, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"ok": nil})
	})
	defer srv.Close()

	bob := c.WithPrincipal("bob-principal")
	assert.Equal(t, "alice-principal", c.principal)
	assert.Equal(t, "bob-principal", bob.principal)
}

func TestMediaGetReadsRawBytes(t *testing.T) {
	srv, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/media/abc123" {
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write([]byte("hello chronolock"))
			return
		}
		http.NotFound(w, r)
	})
	defer srv.Close()

	data, err := c.MediaGet(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "hello chronolock", string(data))
}

func TestMediaGetMissingIDReturnsTokenNotFound(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := c.MediaGet(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, types.ErrTokenNotFound, types.KindOf(err))
}

func TestChronolockCreateSendsJSONBody(t *testing.T) {
	srv, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "capsule", req["title"])
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"ok": map[string]interface{}{"id": "lock-1", "title": "capsule"},
		})
	})
	defer srv.Close()

	lock, err := c.ChronolockCreate(context.Background(), "capsule", 1234567890, nil)
	require.NoError(t, err)
	assert.Equal(t, "lock-1", lock["id"])
}
