// Package api exposes the ledger, chronolock registry, media store, and
// IBE key-derivation client over HTTP+JSON. Every handler returns a
// tagged-union body: {"ok": <value>} on success, {"err": {"kind",
// "detail"}} on failure, mirroring spec.md §7's error taxonomy directly in
// the Kind field rather than relying on the HTTP status alone.
package api

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/crnlicp/chronolock/pkg/ibe"
	"github.com/crnlicp/chronolock/pkg/ledger"
	"github.com/crnlicp/chronolock/pkg/log"
	"github.com/crnlicp/chronolock/pkg/media"
	"github.com/crnlicp/chronolock/pkg/metrics"
	"github.com/crnlicp/chronolock/pkg/registry"
	"github.com/crnlicp/chronolock/pkg/types"
)

// Server wires the four domain services onto one chi.Router.
type Server struct {
	ledger   *ledger.Ledger
	registry *registry.Registry
	media    *media.Store
	ibe      *ibe.Client

	router chi.Router
	http   *http.Server
}

// NewServer builds a Server. Any of the services may be nil; routes that
// depend on a nil service respond with InternalError rather than panic.
func NewServer(l *ledger.Ledger, r *registry.Registry, m *media.Store, k *ibe.Client) *Server {
	s := &Server{ledger: l, registry: r, media: m, ibe: k}
	s.router = s.routes()
	return s
}

// Start begins serving addr. It blocks until the server stops or errors.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	log.Info("api listening on " + addr)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts the server down within ctx's deadline.
func (s *Server) Stop(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Handler exposes the underlying chi router, for embedding in tests or an
// aggregate mux alongside pkg/api's HealthServer.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(PrincipalMiddleware)
	r.Use(requestMetricsMiddleware)

	r.Post("/register_user", s.handleRegisterUser)
	r.Post("/claim_referral", s.handleClaimReferral)
	r.Post("/transfer", s.handleTransfer)
	r.Post("/approve", s.handleApprove)
	r.Post("/transfer_from", s.handleTransferFrom)
	r.Get("/balance_of", s.handleBalanceOf)
	r.Get("/metadata", s.handleMetadata)

	r.Post("/admin_mint", s.handleAdminMint)
	r.Post("/admin_transfer", s.handleAdminTransfer)
	r.Post("/set_transfer_fee", s.handleSetTransferFee)
	r.Post("/set_admin_bypass", s.handleSetAdminBypass)
	r.Post("/add_trusted_principal", s.handleAddTrustedPrincipal)
	r.Post("/remove_trusted_principal", s.handleRemoveTrustedPrincipal)
	r.Post("/admin_reset_stable_storage", s.handleAdminResetStableStorage)

	r.Post("/chronolock_create", s.handleChronolockCreate)
	r.Post("/chronolock_update", s.handleChronolockUpdate)
	r.Post("/chronolock_transfer", s.handleChronolockTransfer)
	r.Post("/chronolock_burn", s.handleChronolockBurn)
	r.Get("/chronolock_get", s.handleChronolockGet)
	r.Get("/chronolock_owner_of", s.handleChronolockOwnerOf)
	r.Get("/chronolock_balance_of", s.handleChronolockBalanceOf)
	r.Post("/chronolock_owner_of_many", s.handleChronolockOwnerOfMany)
	r.Post("/chronolock_balance_of_many", s.handleChronolockBalanceOfMany)
	r.Get("/chronolock_total_supply", s.handleChronolockTotalSupply)
	r.Get("/chronolock_page", s.handleChronolockPage)
	r.Post("/set_max_metadata_size", s.handleSetMaxMetadataSize)
	r.Get("/user_accessible_chronolocks_count", s.handleAccessibleCount)
	r.Get("/user_accessible_chronolocks_page", s.handleAccessiblePage)

	r.Post("/media_start", s.handleMediaStart)
	r.Post("/media_put_chunk", s.handleMediaPutChunk)
	r.Post("/media_finish", s.handleMediaFinish)
	r.Get("/media_get_chunk", s.handleMediaGetChunk)
	r.Get("/media/{id}", s.handleMediaGet)

	r.Post("/ibe_public_key", s.handleIBEPublicKey)
	r.Post("/get_time_decryption_key", s.handleGetTimeDecryptionKey)
	r.Post("/get_user_time_decryption_key", s.handleGetUserTimeDecryptionKey)

	return r
}

// requestMetricsMiddleware feeds APIRequestsTotal/APIRequestDuration for
// every request, labeled by route pattern rather than raw path so the
// label cardinality stays bounded.
func requestMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		timer := metrics.NewTimer()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		method := chi.RouteContext(r.Context()).RoutePattern()
		if method == "" {
			method = r.URL.Path
		}
		metrics.APIRequestsTotal.WithLabelValues(method, strconv.Itoa(ww.Status())).Inc()
		timer.ObserveDurationVec(metrics.APIRequestDuration, method)
	})
}

// --- response envelope -----------------------------------------------

type errBody struct {
	Kind   types.ErrorKind `json:"kind"`
	Detail string          `json:"detail,omitempty"`
}

func writeOK(w http.ResponseWriter, status int, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"ok": value})
}

// errStatus maps an ErrorKind to the HTTP status reported alongside the
// tagged-union body. The Kind string, not this status code, is what
// callers are expected to branch on (spec.md §6).
func errStatus(kind types.ErrorKind) int {
	switch kind {
	case types.ErrTokenNotFound:
		return http.StatusNotFound
	case types.ErrNotAuthenticated:
		return http.StatusUnauthorized
	case types.ErrUnauthorized, types.ErrUnauthorizedCaller, types.ErrAdminRequired:
		return http.StatusForbidden
	case types.ErrInvalidInput, types.ErrInvalidAccount, types.ErrMetadataTooLarge,
		types.ErrInsufficientBalance, types.ErrInsufficientFee, types.ErrInsufficientPoolFunds,
		types.ErrInsufficientAllowance, types.ErrAlreadyRegistered, types.ErrInvalidReferral,
		types.ErrVestingLocked, types.ErrTimeLocked, types.ErrArithmeticError:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeErr(w http.ResponseWriter, err error) {
	kind := types.KindOf(err)
	body := errBody{Kind: kind, Detail: err.Error()}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(errStatus(kind))
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"err": body})
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return types.NewError(types.ErrInvalidInput, "malformed JSON body: "+err.Error())
	}
	return nil
}

// --- wire conversions --------------------------------------------------

func principalFromText(text string) types.Principal {
	if text == "" {
		return types.AnonymousPrincipal()
	}
	return types.Principal{Text: text, Bytes: []byte(text)}
}

func subaccountFromHex(s string) (*types.Subaccount, error) {
	if s == "" {
		return nil, nil
	}
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 32 {
		return nil, types.NewError(types.ErrInvalidInput, "subaccount must be 32 bytes of hex")
	}
	var sub types.Subaccount
	copy(sub[:], raw)
	return &sub, nil
}

func accountFromWire(owner, subaccountHex string) (types.Account, error) {
	sub, err := subaccountFromHex(subaccountHex)
	if err != nil {
		return types.Account{}, err
	}
	return types.Account{Owner: principalFromText(owner), Subaccount: sub}, nil
}

func amountFromString(s string) (types.Amount, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return types.Amount{}, types.NewError(types.ErrInvalidInput, "amount must be a base-10 integer string")
	}
	return types.AmountFromBigInt(v)
}
