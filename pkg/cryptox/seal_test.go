package cryptox_test

import (
	"encoding/base64"
	"testing"

	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestSealOpen(t *testing.T) {
	s, err := cryptox.NewSealer([]byte("test-master-key-for-encryption-12345"))
	require.NoError(t, err)

	secret := []byte("JBSWY3DPEHPK3PXP")

	a, err := s.Seal(secret)
	require.NoError(t, err)
	b, err := s.Seal(secret)
	require.NoError(t, err)
	require.NotEqual(t, a, b, "nonce must differ per seal")

	for _, sealed := range []string{a, b} {
		got, err := s.Open(sealed)
		require.NoError(t, err)
		require.Equal(t, secret, got)
	}
}

func TestSealerKeyMismatch(t *testing.T) {
	a, err := cryptox.NewSealer([]byte("key-a"))
	require.NoError(t, err)
	b, err := cryptox.NewSealer([]byte("key-b"))
	require.NoError(t, err)

	sealed, err := a.Seal([]byte("secret"))
	require.NoError(t, err)

	_, err = b.Open(sealed)
	require.Error(t, err)
}

func TestOpenRejectsBadInput(t *testing.T) {
	s, err := cryptox.NewEphemeralSealer()
	require.NoError(t, err)

	_, err = s.Open("not base64 !!")
	require.Error(t, err)

	_, err = s.Open(base64.StdEncoding.EncodeToString([]byte("short")))
	require.ErrorIs(t, err, cryptox.ErrCiphertextTooShort)

	sealed, err := s.Seal([]byte("original"))
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(sealed)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xFF
	_, err = s.Open(base64.StdEncoding.EncodeToString(raw))
	require.Error(t, err)
}

func TestNewSealerRejectsEmptyKey(t *testing.T) {
	_, err := cryptox.NewSealer(nil)
	require.Error(t, err)
}
