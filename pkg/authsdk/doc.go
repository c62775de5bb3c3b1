/*
Package authsdk is the client SDK and shared wire types for the storefront
auth service.

The service keeps the identity token in an httpOnly auth_token cookie, so an
SDKClient carries a cookie jar and behaves like a browser session:

	client, err := authsdk.NewSDKClient("https://shop.example.com")
	res, err := client.Login(ctx, "alice", "secret123")
	if res.RequiresTOTP {
		res, err = client.VerifyLogin(ctx, res.UserID, code)
	}
	me, err := client.Me(ctx)

Error responses decode into *APIError, which carries the HTTP status and the
machine-stable error code:

	var apiErr *authsdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == authsdk.ErrorCodeLoginExpired {
		// start over
	}

The server uses the same APIError values to write its responses.
*/
package authsdk
