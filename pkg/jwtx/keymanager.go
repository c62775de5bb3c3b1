package jwtx

import (
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/aussiebroadwan/storefront/pkg/cryptox"
)

const (
	AlgorithmHS256 = "HS256"
	AlgorithmEdDSA = "EdDSA"
)

// KeyManager bundles the signer, verifier and, for EdDSA, the published key set.
type KeyManager struct {
	Signer   Signer
	Verifier Verifier

	// KeySet is nil for HS256.
	KeySet *KeySet

	algorithm string
}

type KeyManagerOptions struct {
	// Algorithm is HS256 or EdDSA.
	Algorithm string

	Issuer string
	Leeway time.Duration

	// Secret is the HS256 shared secret.
	Secret []byte

	// PrivateKeyPEM is the EdDSA PKCS8 key. When empty a fresh key is generated
	// and every token becomes invalid on restart.
	PrivateKeyPEM []byte
}

func NewKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, fmt.Errorf("jwtx: Issuer is required")
	}

	verifyOpts := VerifyOptions{Issuer: opts.Issuer, Leeway: opts.Leeway}

	switch opts.Algorithm {
	case AlgorithmHS256:
		signer, err := NewSignerHS256("", opts.Secret)
		if err != nil {
			return nil, err
		}
		return &KeyManager{
			Signer:    signer,
			Verifier:  NewVerifierHS256(opts.Secret, verifyOpts),
			algorithm: AlgorithmHS256,
		}, nil

	case AlgorithmEdDSA:
		pemKey := opts.PrivateKeyPEM
		if len(pemKey) == 0 {
			var err error
			if pemKey, err = cryptox.GenerateEd25519Key(); err != nil {
				return nil, err
			}
		}

		kid, err := keyIDFor(pemKey)
		if err != nil {
			return nil, err
		}

		signer, err := NewSignerEdDSA(kid, pemKey)
		if err != nil {
			return nil, err
		}

		keyset := NewKeySet()
		if err := keyset.AddSigner(signer); err != nil {
			return nil, fmt.Errorf("jwtx: failed to add signer to keyset: %w", err)
		}

		return &KeyManager{
			Signer:    signer,
			Verifier:  NewVerifierEdDSA(keyset, verifyOpts),
			KeySet:    keyset,
			algorithm: AlgorithmEdDSA,
		}, nil

	default:
		return nil, fmt.Errorf("jwtx: unsupported algorithm %q (supported: HS256, EdDSA)", opts.Algorithm)
	}
}

func (km *KeyManager) Algorithm() string { return km.algorithm }

// IsReady reports whether tokens can be signed and verified.
func (km *KeyManager) IsReady() bool {
	if km.Signer == nil || km.Verifier == nil {
		return false
	}
	if km.KeySet != nil {
		return km.KeySet.IsReady()
	}
	return true
}

// JWKS returns the published keys. HS256 publishes nothing.
func (km *KeyManager) JWKS() JWKS {
	if km.KeySet == nil {
		return JWKS{Keys: []JWK{}}
	}
	return km.KeySet.PublicJWKS()
}

// keyIDFor derives a stable kid from the public key, so a key loaded from disk
// keeps its kid across restarts.
func keyIDFor(pemKey []byte) (string, error) {
	priv, err := cryptox.ParseEd25519Key(pemKey)
	if err != nil {
		return "", err
	}
	pub := priv.Public().(ed25519.PublicKey)
	return "storefront-" + cryptox.FingerprintToken(string(pub))[:16], nil
}
