package keycloak

import (
	"context"
	"regexp"
)

// emailPattern mirrors the provider's own routing of user searches: a search
// text shaped like an email address queries the email attribute, anything
// else the username.
var emailPattern = regexp.MustCompile("^[a-zA-Z0-9!#$%&'*+/=?^_`{|}~.-]+@[a-zA-Z0-9-]+(\\.[a-zA-Z0-9-]+)*$")

// GetUser resolves a user by exact username or email address.
//
// The provider's user search is fuzzy (substring match), so the results are
// filtered down to the literal username/email afterwards; without that, a
// user whose name merely contains the searched text could impersonate the
// account being looked up. Returns nil when no exact match exists.
func (c *AdminClient) GetUser(ctx context.Context, usernameOrEmail string) (*User, error) {
	if usernameOrEmail == "" {
		return nil, nil
	}

	req, err := c.get("/admin/realms/%s/users", c.cfg.Realm)
	if err != nil {
		return nil, err
	}

	isEmail := emailPattern.MatchString(usernameOrEmail)
	if isEmail {
		req.Param("email", usernameOrEmail)
	} else {
		req.Param("username", usernameOrEmail)
	}

	var users []User
	if _, err := req.Authenticated().ExecuteInto(ctx, &users); err != nil {
		return nil, err
	}

	for _, user := range users {
		if isEmail && user.Email == usernameOrEmail {
			return &user, nil
		}
		if !isEmail && user.Username == usernameOrEmail {
			return &user, nil
		}
	}
	return nil, nil
}

// GetUsers lists every user of the realm.
func (c *AdminClient) GetUsers(ctx context.Context) ([]User, error) {
	req, err := c.get("/admin/realms/%s/users", c.cfg.Realm)
	if err != nil {
		return nil, err
	}

	var users []User
	if _, err := req.Authenticated().ExecuteInto(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// FindUsers runs the provider's fuzzy user search over username, names and
// email. An empty search text returns all users.
func (c *AdminClient) FindUsers(ctx context.Context, searchText string) ([]User, error) {
	req, err := c.get("/admin/realms/%s/users", c.cfg.Realm)
	if err != nil {
		return nil, err
	}

	var users []User
	if _, err := req.Param("search", searchText).Authenticated().ExecuteInto(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
