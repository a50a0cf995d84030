package mockservice_test

import (
	"context"
	"testing"

	"github.com/crnlicp/chronolock/pkg/ibe"
	"github.com/crnlicp/chronolock/pkg/ibe/mockservice"
	"github.com/crnlicp/chronolock/pkg/security"
	"github.com/stretchr/testify/require"
)

func TestVetKDPublicKeyIsDeterministic(t *testing.T) {
	svc, err := mockservice.New(security.DeriveServiceMasterKey("test-seed"))
	require.NoError(t, err)

	reply, err := svc.VetKDPublicKey(context.Background(), ibe.PublicKeyRequest{
		KeyID: ibe.KeyID{Curve: "bls12_381_g2", Name: "insecure_test_key_1"},
	})
	require.NoError(t, err)
	require.Equal(t, "mock_public_key_insecure_test_key_1", string(reply.PublicKey))
}

func TestVetKDDeriveKeyRoundTrips(t *testing.T) {
	key := security.DeriveServiceMasterKey("test-seed")
	svc, err := mockservice.New(key)
	require.NoError(t, err)

	req := ibe.DeriveKeyRequest{
		Input:              []byte("0000000068000000"),
		TransportPublicKey: []byte("transport-key-bytes"),
		KeyID:              ibe.KeyID{Curve: "bls12_381_g2", Name: "insecure_test_key_1"},
	}
	reply, err := svc.VetKDDeriveKey(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, reply.EncryptedKey)

	sm, err := security.NewSecretsManager(key)
	require.NoError(t, err)
	plaintext, err := sm.DecryptSecret(reply.EncryptedKey)
	require.NoError(t, err)
	require.Equal(t, append(append([]byte{}, req.Input...), req.TransportPublicKey...), plaintext)
}

func TestVetKDDeriveKeyDifferentInputsDifferentCiphertext(t *testing.T) {
	svc, err := mockservice.New(security.DeriveServiceMasterKey("test-seed"))
	require.NoError(t, err)

	a, err := svc.VetKDDeriveKey(context.Background(), ibe.DeriveKeyRequest{Input: []byte("a"), TransportPublicKey: []byte("tpk")})
	require.NoError(t, err)
	b, err := svc.VetKDDeriveKey(context.Background(), ibe.DeriveKeyRequest{Input: []byte("b"), TransportPublicKey: []byte("tpk")})
	require.NoError(t, err)
	require.NotEqual(t, a.EncryptedKey, b.EncryptedKey)
}
