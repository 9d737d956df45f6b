package keycloak

import "context"

const userInfoPath = "/realms/%s/protocol/openid-connect/userinfo"

// ObtainAccessToken runs the password grant on behalf of an end user. This
// is the credential bootstrap and therefore goes out unauthenticated: public
// clients identify by client_id alone, confidential clients by basic
// credentials. Bad user credentials surface as an *HTTPError with the
// provider's 401.
func (c *AdminClient) ObtainAccessToken(ctx context.Context, username, password string) (*TokenResponse, error) {
	req, err := c.post(tokenPath, c.cfg.Realm)
	if err != nil {
		return nil, err
	}

	req.Form().
		Param("grant_type", "password").
		Param("username", username).
		Param("password", password)

	if c.cfg.PublicClient {
		req.Param("client_id", c.cfg.Resource)
	} else {
		req.BasicAuth(c.cfg.Resource, c.cfg.Credentials.Secret)
	}

	var token TokenResponse
	found, err := req.ExecuteInto(ctx, &token)
	if err != nil || !found {
		return nil, err
	}
	return &token, nil
}

// ObtainUserInfo resolves the identity behind a bearer token via the OIDC
// userinfo endpoint. An invalid or expired token surfaces as an *HTTPError.
func (c *AdminClient) ObtainUserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	req, err := c.get(userInfoPath, c.cfg.Realm)
	if err != nil {
		return nil, err
	}

	var info UserInfo
	found, err := req.BearerAuth(accessToken).ExecuteInto(ctx, &info)
	if err != nil || !found {
		return nil, err
	}
	return &info, nil
}
