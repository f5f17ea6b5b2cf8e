package jwtx

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/aussiebroadwan/billybuddy/pkg/cryptox"
)

// KeyManager owns the signing keys of one backend instance together with the
// KeySet and Verifier built from them.
type KeyManager struct {
	Verifier Verifier
	KeySet   *KeySet

	signers []Signer
}

// KeyManagerOptions configures NewEphemeralKeyManager.
type KeyManagerOptions struct {
	Issuer   string
	Audience []string

	// NumKeys is clamped to [1, 10]; zero means 3.
	NumKeys int

	// KeyPrefix is prepended to the random kid of every key.
	KeyPrefix string
}

// NewEphemeralKeyManager generates in-memory Ed25519 keys. Tokens signed by a
// previous process are rejected after a restart, which forces a fresh login.
func NewEphemeralKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, errors.New("jwtx: Issuer is required")
	}

	n := opts.NumKeys
	switch {
	case n <= 0:
		n = 3
	case n > 10:
		n = 10
	}
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = "clinic"
	}

	keyset := NewKeySet()
	signers := make([]Signer, 0, n)
	for i := range n {
		token, err := cryptox.GenerateToken(cryptox.TokenSize128)
		if err != nil {
			return nil, fmt.Errorf("jwtx: key id %d: %w", i+1, err)
		}
		pemKey, err := cryptox.GenerateEd25519Key()
		if err != nil {
			return nil, fmt.Errorf("jwtx: key %d: %w", i+1, err)
		}
		signer, err := NewSigner(prefix+"-"+token, pemKey)
		if err != nil {
			return nil, fmt.Errorf("jwtx: signer %d: %w", i+1, err)
		}
		signers = append(signers, signer)
		keyset.Add(signer.KID(), signer.PublicKey())
	}

	return &KeyManager{
		Verifier: NewVerifier(keyset, opts.Issuer, opts.Audience),
		KeySet:   keyset,
		signers:  signers,
	}, nil
}

// GetSigner returns one of the active signers at random.
func (km *KeyManager) GetSigner() Signer {
	switch len(km.signers) {
	case 0:
		return nil
	case 1:
		return km.signers[0]
	}
	return km.signers[rand.IntN(len(km.signers))]
}

// IsReady reports whether the manager can sign and verify.
func (km *KeyManager) IsReady() bool {
	return len(km.signers) > 0 && km.KeySet.IsReady()
}
