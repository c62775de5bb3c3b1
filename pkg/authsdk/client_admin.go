package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// SetUserRole changes a user's role. Requires an admin session.
func (c *SDKClient) SetUserRole(ctx context.Context, userID, role string) (*User, error) {
	var out UserResponse
	path := "/api/admin/users/" + url.PathEscape(userID) + "/role"
	if err := c.doJSON(ctx, http.MethodPut, path, SetRoleRequest{Role: role}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// DeleteUser removes a user. Requires an admin session.
func (c *SDKClient) DeleteUser(ctx context.Context, userID string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/api/admin/users/"+url.PathEscape(userID), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
