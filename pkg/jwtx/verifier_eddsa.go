package jwtx

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// EdDSAVerifier validates tokens against the Ed25519 keys in a KeySet.
type EdDSAVerifier struct {
	keys *KeySet
	opts VerifyOptions
}

func NewVerifierEdDSA(keys *KeySet, opts VerifyOptions) *EdDSAVerifier {
	return &EdDSAVerifier{keys: keys, opts: opts}
}

func (v *EdDSAVerifier) Verify(tokenStr string) (Claims, error) {
	return parse(tokenStr, jwt.SigningMethodEdDSA.Alg(), v.opts, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, ErrUnknownKID
		}

		pub, err := v.keys.Get(kid)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKID, kid)
		}
		return pub, nil
	})
}
