// Package idgen implements the unique-id, referral-code, and
// transaction-id minting rules of spec.md §4.H.
package idgen

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/crnlicp/chronolock/pkg/storage"
	"github.com/crnlicp/chronolock/pkg/types"
)

// RandomSource is the randomness-oracle collaborator of spec.md §6: it
// must return at least 16 uniformly random bytes per call.
type RandomSource interface {
	RandomBytes(n int) ([]byte, error)
}

// CryptoRandSource is the default RandomSource, backed by crypto/rand.
type CryptoRandSource struct{}

func (CryptoRandSource) RandomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return nil, types.NewError(types.ErrInternalError, "randomness oracle unavailable: "+err.Error())
	}
	return buf, nil
}

const referralCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
const referralCodeLength = 12

// Generator mints chronolock/token ids, referral codes, and transaction
// ids, backed by the store's monotonic id counter and a RandomSource.
type Generator struct {
	store  storage.Store
	random RandomSource
}

// New builds a Generator. A nil random defaults to CryptoRandSource.
func New(store storage.Store, random RandomSource) *Generator {
	if random == nil {
		random = CryptoRandSource{}
	}
	return &Generator{store: store, random: random}
}

// UniqueID mints "<timestamp>-<counter>", where counter resets to 0
// whenever the wall-clock timestamp (seconds) advances and otherwise
// increments — monotonic within a timestamp, collision-free because the
// store's counter cell is itself updated atomically.
func (g *Generator) UniqueID(nowUnixSeconds int64) (string, error) {
	var id string
	err := g.store.WithTx(func(tx storage.Tx) error {
		lastTS, counter, err := tx.GetIDCounter()
		if err != nil {
			return err
		}
		if lastTS != nowUnixSeconds {
			counter = 0
		} else {
			counter++
		}
		if err := tx.SetIDCounter(nowUnixSeconds, counter); err != nil {
			return err
		}
		id = fmt.Sprintf("%d-%d", nowUnixSeconds, counter)
		return nil
	})
	return id, err
}

// ReferralCode draws a 12-character [A-Za-z0-9] code, re-drawing on
// collision with an existing code.
func (g *Generator) ReferralCode() (string, error) {
	for attempt := 0; attempt < 64; attempt++ {
		raw, err := g.random.RandomBytes(referralCodeLength)
		if err != nil {
			return "", err
		}
		buf := make([]byte, referralCodeLength)
		for i, b := range raw {
			buf[i] = referralCodeCharset[int(b)%len(referralCodeCharset)]
		}
		code := string(buf)

		var exists bool
		err = g.store.View(func(tx storage.Tx) error {
			var err error
			exists, err = tx.ReferralCodeExists(code)
			return err
		})
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", types.NewError(types.ErrInternalError, "failed to mint a unique referral code")
}

// TransactionID hashes (host_time_le_bytes || random_bytes) with SHA-256.
func (g *Generator) TransactionID(nowUnixNano int64) ([32]byte, error) {
	random, err := g.random.RandomBytes(16)
	if err != nil {
		return [32]byte{}, err
	}
	buf := make([]byte, 8+len(random))
	binary.LittleEndian.PutUint64(buf[:8], uint64(nowUnixNano))
	copy(buf[8:], random)
	return sha256.Sum256(buf), nil
}
