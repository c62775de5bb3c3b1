package jwtx

// Signer signs identity claims.
type Signer interface {
	Alg() string
	KID() string
	Sign(Claims) (string, error)
}

// PublicSigner is a Signer whose verification key can be published in a JWKS.
type PublicSigner interface {
	Signer
	PublicJWK() JWK
}

// NewSignerEdDSA creates an EdDSA signer from a PKCS8 PEM Ed25519 key.
func NewSignerEdDSA(kid string, pemKey []byte) (PublicSigner, error) {
	return newEdDSASigner(kid, pemKey)
}

// NewSignerHS256 creates an HMAC-SHA256 signer from a shared secret.
func NewSignerHS256(kid string, secret []byte) (Signer, error) {
	return newHS256Signer(kid, secret)
}
