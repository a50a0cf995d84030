/*
Package mockservice implements pkg/ibe.ExternalService locally, for tests
and development without a real threshold key-derivation subnet. It is
grounded on original_source's vetkd_mock canister: a deterministic public
key keyed by name, and a derived key that binds the derivation id and the
caller's transport public key.

Unlike the Rust mock (which returns the derivation id and transport key
formatted into a plaintext string), this implementation runs that same
binding through pkg/security.SecretsManager's AES-256-GCM seal, so the
"encrypted key" it returns is actually reversible only by a holder of the
service's master key — closer in shape to what a real chain-key subnet
hands back, while remaining fully deterministic to decrypt in tests.
*/
package mockservice

import (
	"context"
	"fmt"

	"github.com/crnlicp/chronolock/pkg/ibe"
	"github.com/crnlicp/chronolock/pkg/security"
)

// Service is a local stand-in for a threshold key-derivation subnet.
type Service struct {
	secrets *security.SecretsManager
}

// New builds a mock Service. masterKey must be exactly 32 bytes; callers
// typically derive it with security.DeriveServiceMasterKey.
func New(masterKey []byte) (*Service, error) {
	sm, err := security.NewSecretsManager(masterKey)
	if err != nil {
		return nil, err
	}
	return &Service{secrets: sm}, nil
}

// VetKDPublicKey returns a deterministic mock public key keyed by name,
// mirroring the Rust mock's "mock_public_key_<name>" convention.
func (s *Service) VetKDPublicKey(_ context.Context, req ibe.PublicKeyRequest) (ibe.PublicKeyReply, error) {
	return ibe.PublicKeyReply{PublicKey: []byte(fmt.Sprintf("mock_public_key_%s", req.KeyID.Name))}, nil
}

// VetKDDeriveKey seals the derivation id and transport public key under
// the service's master key, standing in for a real threshold-derived,
// transport-encrypted key.
func (s *Service) VetKDDeriveKey(_ context.Context, req ibe.DeriveKeyRequest) (ibe.DeriveKeyReply, error) {
	plaintext := append(append([]byte{}, req.Input...), req.TransportPublicKey...)
	encrypted, err := s.secrets.EncryptSecret(plaintext)
	if err != nil {
		return ibe.DeriveKeyReply{}, err
	}
	return ibe.DeriveKeyReply{EncryptedKey: encrypted}, nil
}
