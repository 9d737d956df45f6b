package keycloak

import "context"

// GetRealmGroups returns the realm's group forest flattened to a single
// list, every depth included.
func (c *AdminClient) GetRealmGroups(ctx context.Context) ([]Group, error) {
	req, err := c.get("/admin/realms/%s/groups", c.cfg.Realm)
	if err != nil {
		return nil, err
	}

	var groups []Group
	if _, err := req.Authenticated().ExecuteInto(ctx, &groups); err != nil {
		return nil, err
	}
	return FlattenGroups(groups), nil
}

// GetRealmGroupByGroupPath fetches a group by its full slash-delimited path,
// e.g. "/teams/infra". Returns nil when no group lives at that path.
func (c *AdminClient) GetRealmGroupByGroupPath(ctx context.Context, groupPath string) (*Group, error) {
	req, err := c.get("/admin/realms/%s/group-by-path/%s", c.cfg.Realm, groupPath)
	if err != nil {
		return nil, err
	}

	var group Group
	found, err := req.Authenticated().ExecuteInto(ctx, &group)
	if err != nil || !found {
		return nil, err
	}
	return &group, nil
}

// GetRealmGroupsOfUser lists the groups a user is a member of.
func (c *AdminClient) GetRealmGroupsOfUser(ctx context.Context, userID string) ([]Group, error) {
	req, err := c.get("/admin/realms/%s/users/%s/groups", c.cfg.Realm, userID)
	if err != nil {
		return nil, err
	}

	var groups []Group
	if _, err := req.Authenticated().ExecuteInto(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// FlattenGroups walks a group forest in pre-order and returns every group at
// every depth, each parent before its children. A nil or empty subgroup list
// is a leaf.
func FlattenGroups(groups []Group) []Group {
	var flat []Group

	var walk func([]Group)
	walk = func(groups []Group) {
		for _, group := range groups {
			flat = append(flat, group)
			walk(group.SubGroups)
		}
	}
	walk(groups)

	return flat
}
