package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte(strings.Repeat("s", jwtx.MinHS256SecretLen))

func TestHS256SignAndVerify(t *testing.T) {
	signer, err := jwtx.NewSignerHS256("", testSecret)
	require.NoError(t, err)
	require.Equal(t, "HS256", signer.Alg())

	claims := jwtx.NewClaims("user-1", "alice", "customer", []string{jwtx.AMRPassword}, time.Hour, exampleIssuer, time.Now().UTC())
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	v := jwtx.NewVerifierHS256(testSecret, jwtx.VerifyOptions{Issuer: exampleIssuer})
	got, err := v.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", got.Subject)
	require.Equal(t, "alice", got.Username)
	require.Equal(t, "customer", got.Role)
	require.Equal(t, []string{jwtx.AMRPassword}, got.AMR)
	require.Equal(t, claims.ID, got.ID)
}

func TestHS256RejectsWeakSecret(t *testing.T) {
	_, err := jwtx.NewSignerHS256("", []byte("short"))
	require.ErrorIs(t, err, jwtx.ErrWeakSecret)
}

func TestHS256VerifyFailures(t *testing.T) {
	signer, err := jwtx.NewSignerHS256("", testSecret)
	require.NoError(t, err)
	now := time.Now().UTC()

	sign := func(c jwtx.Claims) string {
		tok, err := signer.Sign(c)
		require.NoError(t, err)
		return tok
	}
	good := jwtx.NewClaims("user-1", "alice", "customer", nil, time.Hour, exampleIssuer, now)

	t.Run("wrong secret", func(t *testing.T) {
		v := jwtx.NewVerifierHS256([]byte(strings.Repeat("x", 32)), jwtx.VerifyOptions{Issuer: exampleIssuer})
		_, err := v.Verify(sign(good))
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		v := jwtx.NewVerifierHS256(testSecret, jwtx.VerifyOptions{Issuer: "someone-else"})
		_, err := v.Verify(sign(good))
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("expired", func(t *testing.T) {
		expired := jwtx.NewClaims("user-1", "alice", "customer", nil, time.Minute, exampleIssuer, now.Add(-2*time.Hour))
		v := jwtx.NewVerifierHS256(testSecret, jwtx.VerifyOptions{Issuer: exampleIssuer})
		_, err := v.Verify(sign(expired))
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("expired by injected clock", func(t *testing.T) {
		v := jwtx.NewVerifierHS256(testSecret, jwtx.VerifyOptions{
			Issuer: exampleIssuer,
			Now:    func() time.Time { return now.Add(2 * time.Hour) },
		})
		_, err := v.Verify(sign(good))
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("malformed", func(t *testing.T) {
		v := jwtx.NewVerifierHS256(testSecret, jwtx.VerifyOptions{})
		_, err := v.Verify("not.a.jwt")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("tampered payload", func(t *testing.T) {
		tok := sign(good)
		parts := strings.Split(tok, ".")
		other := strings.Split(sign(jwtx.NewClaims("user-2", "mallory", "admin", nil, time.Hour, exampleIssuer, now)), ".")
		forged := parts[0] + "." + other[1] + "." + parts[2]

		v := jwtx.NewVerifierHS256(testSecret, jwtx.VerifyOptions{Issuer: exampleIssuer})
		_, err := v.Verify(forged)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("missing subject", func(t *testing.T) {
		v := jwtx.NewVerifierHS256(testSecret, jwtx.VerifyOptions{Issuer: exampleIssuer})
		_, err := v.Verify(sign(jwtx.NewClaims("", "", "customer", nil, time.Hour, exampleIssuer, now)))
		require.ErrorIs(t, err, jwtx.ErrInvalidClaim)
	})
}
