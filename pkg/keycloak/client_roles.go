package keycloak

import "context"

// GetRealmClient resolves a realm client (OAuth2 client) by its clientId
// attribute. Returns nil when no such client exists.
func (c *AdminClient) GetRealmClient(ctx context.Context, clientID string) (*RealmClient, error) {
	req, err := c.get("/admin/realms/%s/clients", c.cfg.Realm)
	if err != nil {
		return nil, err
	}

	var clients []RealmClient
	if _, err := req.Param("clientId", clientID).Authenticated().ExecuteInto(ctx, &clients); err != nil {
		return nil, err
	}
	if len(clients) == 0 {
		return nil, nil
	}
	return &clients[0], nil
}

// GetRealmClientRole fetches a named role of a realm client. Returns nil
// when either the client or the role does not exist.
func (c *AdminClient) GetRealmClientRole(ctx context.Context, clientID, roleName string) (*Role, error) {
	client, err := c.GetRealmClient(ctx, clientID)
	if err != nil || client == nil {
		return nil, err
	}

	req, err := c.get("/admin/realms/%s/clients/%s/roles/%s", c.cfg.Realm, client.ID, roleName)
	if err != nil {
		return nil, err
	}

	var role Role
	found, err := req.Authenticated().ExecuteInto(ctx, &role)
	if err != nil || !found {
		return nil, err
	}
	return &role, nil
}

// GetRealmClientRoles lists every role of a realm client.
func (c *AdminClient) GetRealmClientRoles(ctx context.Context, clientID string) ([]Role, error) {
	client, err := c.GetRealmClient(ctx, clientID)
	if err != nil || client == nil {
		return nil, err
	}

	req, err := c.get("/admin/realms/%s/clients/%s/roles", c.cfg.Realm, client.ID)
	if err != nil {
		return nil, err
	}

	var roles []Role
	if _, err := req.Authenticated().ExecuteInto(ctx, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// GetRealmRole fetches a realm-scoped role by name. Returns nil when the
// role does not exist.
func (c *AdminClient) GetRealmRole(ctx context.Context, roleName string) (*Role, error) {
	req, err := c.get("/admin/realms/%s/roles/%s", c.cfg.Realm, roleName)
	if err != nil {
		return nil, err
	}

	var role Role
	found, err := req.Authenticated().ExecuteInto(ctx, &role)
	if err != nil || !found {
		return nil, err
	}
	return &role, nil
}

// GetRealmRoles lists every realm-scoped role.
func (c *AdminClient) GetRealmRoles(ctx context.Context) ([]Role, error) {
	req, err := c.get("/admin/realms/%s/roles", c.cfg.Realm)
	if err != nil {
		return nil, err
	}

	var roles []Role
	if _, err := req.Authenticated().ExecuteInto(ctx, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// GetRealmClientRolesOfUser lists a user's effective roles for one realm
// client. The composite variant of the role-mapping endpoint is used so
// roles granted transitively through role composition are included, not just
// directly assigned ones. userID is the provider's internal user id.
func (c *AdminClient) GetRealmClientRolesOfUser(ctx context.Context, clientID, userID string) ([]Role, error) {
	client, err := c.GetRealmClient(ctx, clientID)
	if err != nil || client == nil {
		return nil, err
	}

	req, err := c.get("/admin/realms/%s/users/%s/role-mappings/clients/%s/composite",
		c.cfg.Realm, userID, client.ID)
	if err != nil {
		return nil, err
	}

	var roles []Role
	if _, err := req.Authenticated().ExecuteInto(ctx, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// GetRealmRolesOfUser lists a user's effective realm-scoped roles, composite
// roles included.
func (c *AdminClient) GetRealmRolesOfUser(ctx context.Context, userID string) ([]Role, error) {
	req, err := c.get("/admin/realms/%s/users/%s/role-mappings/realm/composite", c.cfg.Realm, userID)
	if err != nil {
		return nil, err
	}

	var roles []Role
	if _, err := req.Authenticated().ExecuteInto(ctx, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}
