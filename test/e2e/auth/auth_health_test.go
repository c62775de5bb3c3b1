package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestHealthEndpoints verifies the probes report the Redis challenge store.
func TestHealthEndpoints(t *testing.T) {
	baseURL := setupAuthService(t)
	client := newClient(t, baseURL)

	live, err := client.GetLiveness(t.Context())
	assertHealthy(t, live, err)

	ready, err := client.GetReadiness(t.Context())
	assertHealthy(t, ready, err)
	require.Equal(t, "ok", ready.Checks["challenges"])
	require.Equal(t, "ok", ready.Checks["database"])
}

// TestJWKSEndpoint verifies the EdDSA key is published.
func TestJWKSEndpoint(t *testing.T) {
	baseURL := setupAuthService(t)

	jwks, err := newClient(t, baseURL).GetJWKS(t.Context())
	require.NoError(t, err)
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "OKP", jwks.Keys[0].Kty)
	require.Equal(t, "EdDSA", jwks.Keys[0].Alg)
}
