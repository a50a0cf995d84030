package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/crnlicp/chronolock/pkg/metrics"
	"github.com/crnlicp/chronolock/pkg/registry"
	"github.com/crnlicp/chronolock/pkg/types"
)

func chronolockToWire(lock types.Chronolock) map[string]interface{} {
	keys := make([]map[string]interface{}, len(lock.UserKeys))
	for i, k := range lock.UserKeys {
		keys[i] = map[string]interface{}{"user_tag": k.UserTag, "wrapped_key": k.WrappedKey}
	}
	return map[string]interface{}{
		"id":                 lock.ID,
		"owner":              lock.Owner.Text,
		"title":              lock.Title,
		"unlock_time":        lock.UnlockTime,
		"created_at":         lock.CreatedAt,
		"user_keys":          keys,
		"encrypted_metadata": lock.EncryptedMetadata,
	}
}

type userKeyWire struct {
	UserTag    string `json:"user_tag"`
	WrappedKey []byte `json:"wrapped_key"`
}

func userKeysFromWire(in []userKeyWire) []types.UserKeyEntry {
	if in == nil {
		return nil
	}
	out := make([]types.UserKeyEntry, len(in))
	for i, k := range in {
		out[i] = types.UserKeyEntry{UserTag: k.UserTag, WrappedKey: k.WrappedKey}
	}
	return out
}

type chronolockCreateRequest struct {
	Title             string        `json:"title"`
	UnlockTime        int64         `json:"unlock_time"`
	UserKeys          []userKeyWire `json:"user_keys"`
	EncryptedMetadata []byte        `json:"encrypted_metadata"`
}

func (s *Server) handleChronolockCreate(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "registry not configured"))
		return
	}
	var req chronolockCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	lock, err := s.registry.Create(registry.CreateArgs{
		Caller:            CallerFromContext(r.Context()),
		Title:             req.Title,
		UnlockTime:        req.UnlockTime,
		UserKeys:          userKeysFromWire(req.UserKeys),
		EncryptedMetadata: req.EncryptedMetadata,
		Now:               time.Now(),
	})
	if err != nil {
		metrics.ChronolockOperationsTotal.WithLabelValues("create", string(types.KindOf(err))).Inc()
		writeErr(w, err)
		return
	}
	metrics.ChronolockOperationsTotal.WithLabelValues("create", "ok").Inc()
	writeOK(w, http.StatusOK, chronolockToWire(lock))
}

type chronolockUpdateRequest struct {
	ID                string        `json:"id"`
	Title             *string       `json:"title,omitempty"`
	UnlockTime        *int64        `json:"unlock_time,omitempty"`
	UserKeys          []userKeyWire `json:"user_keys,omitempty"`
	EncryptedMetadata []byte        `json:"encrypted_metadata,omitempty"`
}

func (s *Server) handleChronolockUpdate(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "registry not configured"))
		return
	}
	var req chronolockUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	err := s.registry.Update(registry.UpdateArgs{
		Caller:            CallerFromContext(r.Context()),
		ID:                req.ID,
		Title:             req.Title,
		UnlockTime:        req.UnlockTime,
		UserKeys:          userKeysFromWire(req.UserKeys),
		EncryptedMetadata: req.EncryptedMetadata,
	})
	if err != nil {
		metrics.ChronolockOperationsTotal.WithLabelValues("update", string(types.KindOf(err))).Inc()
		writeErr(w, err)
		return
	}
	metrics.ChronolockOperationsTotal.WithLabelValues("update", "ok").Inc()
	writeOK(w, http.StatusOK, nil)
}

type chronolockTransferRequest struct {
	ID string `json:"id"`
	To string `json:"to"`
}

func (s *Server) handleChronolockTransfer(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "registry not configured"))
		return
	}
	var req chronolockTransferRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	err := s.registry.Transfer(CallerFromContext(r.Context()), req.ID, principalFromText(req.To))
	if err != nil {
		metrics.ChronolockOperationsTotal.WithLabelValues("transfer", string(types.KindOf(err))).Inc()
		writeErr(w, err)
		return
	}
	metrics.ChronolockOperationsTotal.WithLabelValues("transfer", "ok").Inc()
	writeOK(w, http.StatusOK, nil)
}

type chronolockBurnRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleChronolockBurn(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "registry not configured"))
		return
	}
	var req chronolockBurnRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	err := s.registry.Burn(CallerFromContext(r.Context()), req.ID)
	if err != nil {
		metrics.ChronolockOperationsTotal.WithLabelValues("burn", string(types.KindOf(err))).Inc()
		writeErr(w, err)
		return
	}
	metrics.ChronolockOperationsTotal.WithLabelValues("burn", "ok").Inc()
	writeOK(w, http.StatusOK, nil)
}

func (s *Server) handleChronolockGet(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "registry not configured"))
		return
	}
	lock, err := s.registry.Get(r.URL.Query().Get("id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, http.StatusOK, chronolockToWire(lock))
}

func (s *Server) handleChronolockOwnerOf(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "registry not configured"))
		return
	}
	owner, err := s.registry.OwnerOf(r.URL.Query().Get("id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, http.StatusOK, owner.Text)
}

func (s *Server) handleChronolockBalanceOf(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "registry not configured"))
		return
	}
	n, err := s.registry.BalanceOf(principalFromText(r.URL.Query().Get("owner")))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, http.StatusOK, n)
}

type idsRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) handleChronolockOwnerOfMany(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "registry not configured"))
		return
	}
	var req idsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	owners, err := s.registry.OwnerOfMany(req.IDs)
	if err != nil {
		writeErr(w, err)
		return
	}
	texts := make([]string, len(owners))
	for i, o := range owners {
		texts[i] = o.Text
	}
	writeOK(w, http.StatusOK, texts)
}

type principalsRequest struct {
	Principals []string `json:"principals"`
}

func (s *Server) handleChronolockBalanceOfMany(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "registry not configured"))
		return
	}
	var req principalsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	principals := make([]types.Principal, len(req.Principals))
	for i, p := range req.Principals {
		principals[i] = principalFromText(p)
	}
	balances, err := s.registry.BalanceOfMany(principals)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, http.StatusOK, balances)
}

func (s *Server) handleChronolockTotalSupply(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "registry not configured"))
		return
	}
	total, err := s.registry.TotalSupply()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, http.StatusOK, total)
}

func parsePageParams(r *http.Request) (offset, limit int) {
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 100
	}
	return offset, limit
}

func (s *Server) handleChronolockPage(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "registry not configured"))
		return
	}
	offset, limit := parsePageParams(r)
	page, err := s.registry.Page(offset, limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	wire := make([]map[string]interface{}, len(page))
	for i, lock := range page {
		wire[i] = chronolockToWire(lock)
	}
	writeOK(w, http.StatusOK, wire)
}

type setMaxMetadataSizeRequest struct {
	Size int `json:"size"`
}

func (s *Server) handleSetMaxMetadataSize(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "registry not configured"))
		return
	}
	var req setMaxMetadataSizeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	if err := s.registry.SetMaxMetadataSize(CallerFromContext(r.Context()), req.Size); err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

func (s *Server) handleAccessibleCount(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "registry not configured"))
		return
	}
	user := principalFromText(r.URL.Query().Get("user"))
	count, err := s.registry.AccessibleCount(user, time.Now())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, http.StatusOK, count)
}

func (s *Server) handleAccessiblePage(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "registry not configured"))
		return
	}
	user := principalFromText(r.URL.Query().Get("user"))
	offset, limit := parsePageParams(r)
	page, err := s.registry.AccessiblePage(user, time.Now(), offset, limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	wire := make([]map[string]interface{}, len(page))
	for i, lock := range page {
		wire[i] = chronolockToWire(lock)
	}
	writeOK(w, http.StatusOK, wire)
}
