package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/crnlicp/chronolock/pkg/types"
)

type mediaStartRequest struct {
	TotalChunks uint32 `json:"total_chunks"`
}

func (s *Server) handleMediaStart(w http.ResponseWriter, r *http.Request) {
	if s.media == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "media not configured"))
		return
	}
	var req mediaStartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	id, err := s.media.Start(req.TotalChunks, time.Now())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]interface{}{"id": id})
}

type mediaPutChunkRequest struct {
	ID    string `json:"id"`
	Index uint32 `json:"index"`
	Data  []byte `json:"data"`
}

func (s *Server) handleMediaPutChunk(w http.ResponseWriter, r *http.Request) {
	if s.media == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "media not configured"))
		return
	}
	var req mediaPutChunkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	if err := s.media.PutChunk(req.ID, req.Index, req.Data); err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

type mediaFinishRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleMediaFinish(w http.ResponseWriter, r *http.Request) {
	if s.media == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "media not configured"))
		return
	}
	var req mediaFinishRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	obj, err := s.media.Finish(req.ID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]interface{}{
		"id":           obj.ID,
		"total_chunks": obj.TotalChunks,
	})
}

func (s *Server) handleMediaGetChunk(w http.ResponseWriter, r *http.Request) {
	if s.media == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "media not configured"))
		return
	}
	id := r.URL.Query().Get("id")
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	length, _ := strconv.Atoi(r.URL.Query().Get("length"))
	chunk, err := s.media.GetChunk(id, offset, length)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, http.StatusOK, chunk)
}

// handleMediaGet implements the GET /media/<id> HTTP surface of spec.md
// §4.F/§6 directly: 200 with the raw object and an octet-stream
// Content-Type, 404 for an unknown or unfinished id, 405 on any method
// other than GET (chi's method-specific route registration already
// enforces that last part).
func (s *Server) handleMediaGet(w http.ResponseWriter, r *http.Request) {
	if s.media == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	id := chi.URLParam(r, "id")
	data, err := s.media.Get(id)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
