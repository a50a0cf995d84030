/*
Package media implements the chunked upload store of spec.md §4.F:
start/put_chunk/finish/get_chunk, with a background reaper for uploads
abandoned before finish.
*/
package media

import (
	"time"

	"github.com/google/uuid"

	"github.com/crnlicp/chronolock/pkg/storage"
	"github.com/crnlicp/chronolock/pkg/types"
)

// MaxObjectSize is the hard cap on a finished object's total size.
const MaxObjectSize = 10 * 1024 * 1024

// Store drives the chunked-upload state machine on top of storage.Store.
type Store struct {
	store storage.Store
}

// New builds a media Store.
func New(store storage.Store) *Store {
	return &Store{store: store}
}

// Start begins a new upload of totalChunks chunks, returning its id.
func (s *Store) Start(totalChunks uint32, now time.Time) (string, error) {
	id := uuid.NewString()
	obj := types.MediaObject{
		ID:          id,
		TotalChunks: totalChunks,
		Chunks:      map[uint32][]byte{},
		CreatedAt:   now,
	}
	err := s.store.WithTx(func(tx storage.Tx) error {
		return tx.PutMediaObject(obj)
	})
	return id, err
}

// PutChunk writes one chunk of an in-progress upload. index must satisfy
// 0 <= index < TotalChunks.
func (s *Store) PutChunk(id string, index uint32, data []byte) error {
	return s.store.WithTx(func(tx storage.Tx) error {
		obj, ok, err := tx.GetMediaObject(id)
		if err != nil {
			return err
		}
		if !ok {
			return types.NewError(types.ErrTokenNotFound, id)
		}
		if obj.Finalized {
			return types.NewError(types.ErrInvalidInput, "upload already finished")
		}
		if index >= obj.TotalChunks {
			return types.NewError(types.ErrInvalidInput, "chunk index out of range")
		}
		if _, dup := obj.Chunks[index]; dup {
			return types.NewError(types.ErrInvalidInput, "chunk already written")
		}
		total := 0
		for idx, chunk := range obj.Chunks {
			if idx != index {
				total += len(chunk)
			}
		}
		if total+len(data) > MaxObjectSize {
			return types.NewError(types.ErrInvalidInput, "object exceeds maximum size")
		}
		obj.Chunks[index] = data
		return tx.PutMediaObject(obj)
	})
}

// Finish requires every chunk index to have been written exactly once,
// concatenates them in index order, and marks the object finalized.
func (s *Store) Finish(id string) (types.MediaObject, error) {
	var finished types.MediaObject
	err := s.store.WithTx(func(tx storage.Tx) error {
		obj, ok, err := tx.GetMediaObject(id)
		if err != nil {
			return err
		}
		if !ok {
			return types.NewError(types.ErrTokenNotFound, id)
		}
		if uint32(len(obj.Chunks)) != obj.TotalChunks {
			return types.NewError(types.ErrInvalidInput, "missing chunks")
		}
		var size int
		for i := uint32(0); i < obj.TotalChunks; i++ {
			chunk, ok := obj.Chunks[i]
			if !ok {
				return types.NewError(types.ErrInvalidInput, "missing chunk")
			}
			size += len(chunk)
		}
		if size > MaxObjectSize {
			return types.NewError(types.ErrInvalidInput, "object exceeds maximum size")
		}
		obj.Finalized = true
		if err := tx.PutMediaObject(obj); err != nil {
			return err
		}
		finished = obj
		return nil
	})
	return finished, err
}

// assembled concatenates a finalized object's chunks in index order.
func assembled(obj types.MediaObject) []byte {
	var out []byte
	for i := uint32(0); i < obj.TotalChunks; i++ {
		out = append(out, obj.Chunks[i]...)
	}
	return out
}

// Get returns the whole assembled object. Reading an unfinished or
// unknown id returns TokenNotFound (spec.md §4.F).
func (s *Store) Get(id string) ([]byte, error) {
	var obj types.MediaObject
	var ok bool
	err := s.store.View(func(tx storage.Tx) error {
		var err error
		obj, ok, err = tx.GetMediaObject(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !ok || !obj.Finalized {
		return nil, types.NewError(types.ErrTokenNotFound, id)
	}
	return assembled(obj), nil
}

// GetChunk returns up to length bytes of the finished object starting at
// offset, or an empty slice when offset >= size (spec.md §4.F get_chunk).
func (s *Store) GetChunk(id string, offset, length int) ([]byte, error) {
	data, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if offset >= len(data) {
		return []byte{}, nil
	}
	end := offset + length
	if end > len(data) {
		end = len(data)
	}
	return data[offset:end], nil
}
