package authsdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// OAuthRedirect starts an OAuth login (or a link when link is true) and
// returns the provider URL the browser would be sent to.
func (c *SDKClient) OAuthRedirect(ctx context.Context, provider string, link bool) (*url.URL, error) {
	path := c.APIPrefix + "/oauth/" + url.PathEscape(provider)
	if link {
		path += "/link"
	}

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		body, _ := io.ReadAll(resp.Body)
		if err := parseErrorResponse(resp, body); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return resp.Location()
}

// OAuthCallback replays the provider's redirect back to the service and
// returns where the service sent the browser next.
func (c *SDKClient) OAuthCallback(ctx context.Context, provider, state, code string) (*url.URL, error) {
	q := url.Values{"state": {state}, "code": {code}}
	path := c.APIPrefix + "/oauth/" + url.PathEscape(provider) + "/callback?" + q.Encode()

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp.Location()
}

func (c *SDKClient) Unlink(ctx context.Context, provider string) (*UnlinkResponse, error) {
	var out UnlinkResponse
	path := c.APIPrefix + "/oauth/" + url.PathEscape(provider) + "/unlink"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
