package ibe

import (
	"context"
	"encoding/hex"
	"time"

	bls12381 "github.com/kilic/bls12-381"

	"github.com/crnlicp/chronolock/pkg/types"
)

// KeyID names the threshold key an external service call targets.
type KeyID struct {
	Curve string // "bls12_381_g2"
	Name  string // e.g. "insecure_test_key_1"
}

// PublicKeyRequest asks the external service for the master public key of
// KeyID, optionally scoped to a canister and context.
type PublicKeyRequest struct {
	KeyID      KeyID
	Context    []byte
	CanisterID *string
}

// PublicKeyReply carries the requested master public key.
type PublicKeyReply struct{ PublicKey []byte }

// DeriveKeyRequest asks the external service to derive and transport-wrap
// the private key bound to Input (the derivation id).
type DeriveKeyRequest struct {
	Input              []byte
	Context            []byte
	TransportPublicKey []byte
	KeyID              KeyID
}

// DeriveKeyReply carries the derived key, encrypted under the caller's
// transport public key.
type DeriveKeyReply struct{ EncryptedKey []byte }

// ExternalService is the threshold key-derivation service this client
// talks to. A production deployment backs it with a real chain-key
// subnet; pkg/ibe/mockservice backs it with a local deterministic stand-in
// for tests and development.
type ExternalService interface {
	VetKDPublicKey(ctx context.Context, req PublicKeyRequest) (PublicKeyReply, error)
	VetKDDeriveKey(ctx context.Context, req DeriveKeyRequest) (DeriveKeyReply, error)
}

// unlockTimeHexLen is the fixed width of a hex-encoded big-endian u64
// unlock time, one byte per two hex digits.
const unlockTimeHexLen = 16

// blsTransportKeySize is the expected transport public key length when
// KeyID targets the bls12_381_g2 curve.
const blsTransportKeySize = 48

// Client wraps an ExternalService under one fixed KeyID and implements the
// derivation-id construction and time gate of spec.md §6.
type Client struct {
	service ExternalService
	keyID   KeyID
}

// New binds a Client to service under keyID.
func New(service ExternalService, keyID KeyID) *Client {
	return &Client{service: service, keyID: keyID}
}

// PublicKey returns the master public key for the configured KeyID with
// empty context, for clients that want to IBE-encrypt payloads toward a
// future derivation id.
func (c *Client) PublicKey(ctx context.Context) (PublicKeyReply, error) {
	return c.service.VetKDPublicKey(ctx, PublicKeyRequest{KeyID: c.keyID})
}

func validateDeriveArgs(unlockTimeHex string, transportPublicKey []byte, keyID KeyID) ([]byte, error) {
	if len(unlockTimeHex) != unlockTimeHexLen {
		return nil, types.NewError(types.ErrInvalidInput, "unlock_time_hex must be 16 hex digits")
	}
	for _, r := range unlockTimeHex {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')) {
			return nil, types.NewError(types.ErrInvalidInput, "unlock_time_hex must be lowercase hex")
		}
	}
	if len(transportPublicKey) == 0 {
		return nil, types.NewError(types.ErrInvalidInput, "transport_public_key must not be empty")
	}
	if keyID.Curve == "bls12_381_g2" {
		if len(transportPublicKey) != blsTransportKeySize {
			return nil, types.NewError(types.ErrInvalidInput, "transport_public_key must be 48 bytes for bls12_381_g2")
		}
		// The transport key travels on G1 even though the master key this
		// KeyID names lives on G2 (mirrors the IC vetKD transport scheme);
		// reject anything that doesn't deserialize as a valid compressed G1
		// point before it is ever forwarded to the external service.
		if _, err := bls12381.NewG1().FromCompressed(transportPublicKey); err != nil {
			return nil, types.NewError(types.ErrInvalidInput, "transport_public_key is not a well-formed G1 point: "+err.Error())
		}
	}
	raw, err := hex.DecodeString(unlockTimeHex)
	if err != nil {
		return nil, types.NewError(types.ErrInvalidInput, "unlock_time_hex is not valid hex")
	}
	return raw, nil
}

// unlockTimeFromHex parses the 8 raw bytes of a decoded unlock_time_hex as
// a big-endian u64 of seconds since epoch.
func unlockTimeFromHex(raw []byte) time.Time {
	var seconds uint64
	for _, b := range raw {
		seconds = seconds<<8 | uint64(b)
	}
	return time.Unix(int64(seconds), 0)
}

// GetTimeDecryptionKey implements spec.md §6's get_time_decryption_key: the
// derivation id is the raw bytes of unlock_time_hex, gated on now being at
// or after the encoded unlock time. Returns TimeLocked without calling the
// external service if the gate has not opened.
func (c *Client) GetTimeDecryptionKey(ctx context.Context, unlockTimeHex string, transportPublicKey []byte, now time.Time) (DeriveKeyReply, error) {
	raw, err := validateDeriveArgs(unlockTimeHex, transportPublicKey, c.keyID)
	if err != nil {
		return DeriveKeyReply{}, err
	}
	if now.Before(unlockTimeFromHex(raw)) {
		return DeriveKeyReply{}, types.NewError(types.ErrTimeLocked, unlockTimeHex)
	}
	return c.service.VetKDDeriveKey(ctx, DeriveKeyRequest{
		Input:              raw,
		TransportPublicKey: transportPublicKey,
		KeyID:              c.keyID,
	})
}

// GetUserTimeDecryptionKey implements spec.md §6's
// get_user_time_decryption_key: the derivation id additionally binds the
// caller's identity, and the caller's own principal text must match
// userIDText.
func (c *Client) GetUserTimeDecryptionKey(ctx context.Context, caller types.Principal, unlockTimeHex, userIDText string, transportPublicKey []byte, now time.Time) (DeriveKeyReply, error) {
	raw, err := validateDeriveArgs(unlockTimeHex, transportPublicKey, c.keyID)
	if err != nil {
		return DeriveKeyReply{}, err
	}
	if caller.Text != userIDText {
		return DeriveKeyReply{}, types.NewError(types.ErrUnauthorizedCaller, userIDText)
	}
	if now.Before(unlockTimeFromHex(raw)) {
		return DeriveKeyReply{}, types.NewError(types.ErrTimeLocked, unlockTimeHex)
	}
	derivationID := []byte(unlockTimeHex + ":" + userIDText)
	return c.service.VetKDDeriveKey(ctx, DeriveKeyRequest{
		Input:              derivationID,
		TransportPublicKey: transportPublicKey,
		KeyID:              c.keyID,
	})
}
