package ibe_test

import (
	"context"
	"testing"
	"time"

	"github.com/crnlicp/chronolock/pkg/ibe"
	"github.com/crnlicp/chronolock/pkg/types"
	"github.com/stretchr/testify/require"
)

type recordingService struct {
	publicKeyCalls int
	deriveCalls    int
	lastDerive     ibe.DeriveKeyRequest
}

func (r *recordingService) VetKDPublicKey(_ context.Context, req ibe.PublicKeyRequest) (ibe.PublicKeyReply, error) {
	r.publicKeyCalls++
	return ibe.PublicKeyReply{PublicKey: []byte("mock_public_key_" + req.KeyID.Name)}, nil
}

func (r *recordingService) VetKDDeriveKey(_ context.Context, req ibe.DeriveKeyRequest) (ibe.DeriveKeyReply, error) {
	r.deriveCalls++
	r.lastDerive = req
	return ibe.DeriveKeyReply{EncryptedKey: []byte("encrypted")}, nil
}

const testKeyHex = "0000000068000000" // unlock time 0x68000000 s (mid-April 2025)

// validG1Compressed returns the compressed encoding of the G1 point at
// infinity: the compression and infinity flag bits set, every coordinate
// byte zero, per the IETF BLS12-381 serialization format kilic/bls12-381
// implements.
func validG1Compressed() []byte {
	b := make([]byte, 48)
	b[0] = 0xc0
	return b
}

func TestTimeGateBlocksCallBeforeUnlock(t *testing.T) {
	svc := &recordingService{}
	c := ibe.New(svc, ibe.KeyID{Curve: "bls12_381_g2", Name: "insecure_test_key_1"})

	tpk := validG1Compressed()
	_, err := c.GetTimeDecryptionKey(context.Background(), testKeyHex, tpk, time.Unix(0, 0))
	require.Equal(t, types.ErrTimeLocked, types.KindOf(err))
	require.Zero(t, svc.deriveCalls, "no outbound call before unlock")
}

func TestTimeGateForwardsAfterUnlock(t *testing.T) {
	svc := &recordingService{}
	c := ibe.New(svc, ibe.KeyID{Curve: "bls12_381_g2", Name: "insecure_test_key_1"})

	tpk := validG1Compressed()
	// 0x0000000068000000 seconds since epoch.
	unlock := time.Unix(0x68000000, 0)
	reply, err := c.GetTimeDecryptionKey(context.Background(), testKeyHex, tpk, unlock)
	require.NoError(t, err)
	require.Equal(t, []byte("encrypted"), reply.EncryptedKey)
	require.Equal(t, 1, svc.deriveCalls)
}

func TestGetTimeDecryptionKeyRejectsMalformedInput(t *testing.T) {
	svc := &recordingService{}
	c := ibe.New(svc, ibe.KeyID{Curve: "bls12_381_g2", Name: "insecure_test_key_1"})
	tpk := validG1Compressed()

	_, err := c.GetTimeDecryptionKey(context.Background(), "not-hex-at-all!", tpk, time.Now())
	require.Equal(t, types.ErrInvalidInput, types.KindOf(err))

	_, err = c.GetTimeDecryptionKey(context.Background(), testKeyHex, nil, time.Now())
	require.Equal(t, types.ErrInvalidInput, types.KindOf(err))

	_, err = c.GetTimeDecryptionKey(context.Background(), testKeyHex, make([]byte, 10), time.Now())
	require.Equal(t, types.ErrInvalidInput, types.KindOf(err))
}

func TestGetTimeDecryptionKeyRejectsMalformedG1Point(t *testing.T) {
	svc := &recordingService{}
	c := ibe.New(svc, ibe.KeyID{Curve: "bls12_381_g2", Name: "insecure_test_key_1"})

	// Right length, but the compression flag bit is unset, so this cannot
	// decode as a compressed G1 point.
	notAPoint := make([]byte, 48)

	_, err := c.GetTimeDecryptionKey(context.Background(), testKeyHex, notAPoint, time.Now())
	require.Equal(t, types.ErrInvalidInput, types.KindOf(err))
	require.Zero(t, svc.deriveCalls, "no outbound call with an unparseable transport key")
}

func TestUserAndTimeDerivationIDsAreDistinct(t *testing.T) {
	svc := &recordingService{}
	c := ibe.New(svc, ibe.KeyID{Curve: "bls12_381_g2", Name: "insecure_test_key_1"})
	tpk := validG1Compressed()
	unlock := time.Unix(0x68000000, 0)
	caller := types.Principal{Text: "alice"}

	_, err := c.GetTimeDecryptionKey(context.Background(), testKeyHex, tpk, unlock)
	require.NoError(t, err)
	timeOnlyID := append([]byte{}, svc.lastDerive.Input...)

	_, err = c.GetUserTimeDecryptionKey(context.Background(), caller, testKeyHex, "alice", tpk, unlock)
	require.NoError(t, err)
	userID := svc.lastDerive.Input

	require.NotEqual(t, timeOnlyID, userID)
	require.Equal(t, testKeyHex+":alice", string(userID))
}

func TestGetUserTimeDecryptionKeyRejectsCallerMismatch(t *testing.T) {
	svc := &recordingService{}
	c := ibe.New(svc, ibe.KeyID{Curve: "bls12_381_g2", Name: "insecure_test_key_1"})
	tpk := validG1Compressed()
	unlock := time.Unix(0x68000000, 0)
	caller := types.Principal{Text: "alice"}

	_, err := c.GetUserTimeDecryptionKey(context.Background(), caller, testKeyHex, "bob", tpk, unlock)
	require.Equal(t, types.ErrUnauthorizedCaller, types.KindOf(err))
	require.Zero(t, svc.deriveCalls)
}

func TestPublicKeyPassesThroughKeyID(t *testing.T) {
	svc := &recordingService{}
	c := ibe.New(svc, ibe.KeyID{Curve: "bls12_381_g2", Name: "insecure_test_key_1"})

	reply, err := c.PublicKey(context.Background())
	require.NoError(t, err)
	require.Equal(t, "mock_public_key_insecure_test_key_1", string(reply.PublicKey))
	require.Equal(t, 1, svc.publicKeyCalls)
}
