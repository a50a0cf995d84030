package api

import (
	"net/http"
	"time"

	"github.com/crnlicp/chronolock/pkg/metrics"
	"github.com/crnlicp/chronolock/pkg/types"
)

func (s *Server) handleIBEPublicKey(w http.ResponseWriter, r *http.Request) {
	if s.ibe == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "ibe client not configured"))
		return
	}
	reply, err := s.ibe.PublicKey(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]interface{}{"public_key": reply.PublicKey})
}

type getTimeDecryptionKeyRequest struct {
	UnlockTimeHex      string `json:"unlock_time_hex"`
	TransportPublicKey []byte `json:"transport_public_key"`
}

func (s *Server) handleGetTimeDecryptionKey(w http.ResponseWriter, r *http.Request) {
	if s.ibe == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "ibe client not configured"))
		return
	}
	var req getTimeDecryptionKeyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	timer := metrics.NewTimer()
	reply, err := s.ibe.GetTimeDecryptionKey(r.Context(), req.UnlockTimeHex, req.TransportPublicKey, time.Now())
	timer.ObserveDurationVec(metrics.DerivationDuration, "time")
	if err != nil {
		metrics.DerivationRequestsTotal.WithLabelValues("time", string(types.KindOf(err))).Inc()
		writeErr(w, err)
		return
	}
	metrics.DerivationRequestsTotal.WithLabelValues("time", "ok").Inc()
	writeOK(w, http.StatusOK, map[string]interface{}{"encrypted_key": reply.EncryptedKey})
}

type getUserTimeDecryptionKeyRequest struct {
	UnlockTimeHex      string `json:"unlock_time_hex"`
	UserIDText         string `json:"user_id_text"`
	TransportPublicKey []byte `json:"transport_public_key"`
}

func (s *Server) handleGetUserTimeDecryptionKey(w http.ResponseWriter, r *http.Request) {
	if s.ibe == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "ibe client not configured"))
		return
	}
	var req getUserTimeDecryptionKeyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	caller := CallerFromContext(r.Context())
	timer := metrics.NewTimer()
	reply, err := s.ibe.GetUserTimeDecryptionKey(r.Context(), caller, req.UnlockTimeHex, req.UserIDText, req.TransportPublicKey, time.Now())
	timer.ObserveDurationVec(metrics.DerivationDuration, "user")
	if err != nil {
		metrics.DerivationRequestsTotal.WithLabelValues("user", string(types.KindOf(err))).Inc()
		writeErr(w, err)
		return
	}
	metrics.DerivationRequestsTotal.WithLabelValues("user", "ok").Inc()
	writeOK(w, http.StatusOK, map[string]interface{}{"encrypted_key": reply.EncryptedKey})
}
