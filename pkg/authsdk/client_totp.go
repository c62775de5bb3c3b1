package authsdk

import (
	"context"
	"net/http"
)

// SetupTOTP starts enrolment and returns the secret to load into an
// authenticator app.
func (c *SDKClient) SetupTOTP(ctx context.Context) (*TOTPSetupResponse, error) {
	var out TOTPSetupResponse
	if err := c.doJSON(ctx, http.MethodPost, c.APIPrefix+"/totp/setup", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// EnableTOTP confirms enrolment with a code from the pending secret.
func (c *SDKClient) EnableTOTP(ctx context.Context, code string) (*TOTPStatusResponse, error) {
	var out TOTPStatusResponse
	if err := c.doJSON(ctx, http.MethodPost, c.APIPrefix+"/totp/verify", TOTPVerifyRequest{Token: code}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SDKClient) DisableTOTP(ctx context.Context) (*TOTPStatusResponse, error) {
	var out TOTPStatusResponse
	if err := c.doJSON(ctx, http.MethodPost, c.APIPrefix+"/totp/disable", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
