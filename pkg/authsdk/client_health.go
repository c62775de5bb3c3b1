package authsdk

import (
	"context"
	"net/http"
)

func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/livez", nil, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/readyz", nil, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

// GetJWKS fetches the published verification keys. An HS256 deployment
// publishes an empty set.
func (c *SDKClient) GetJWKS(ctx context.Context) (*JWKS, error) {
	var jwks JWKS
	if err := c.doJSON(ctx, http.MethodGet, "/.well-known/jwks.json", nil, &jwks, http.StatusOK); err != nil {
		return nil, err
	}
	return &jwks, nil
}
