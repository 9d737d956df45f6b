package realm

import (
	"context"
	"log/slog"
)

// compositeClient fans a lookup out across an ordered list of connection
// clients.
//
// Authentication is first-match-wins: the credentials are only ever tried
// against the first connection that knows the user id. Connections later in
// the order are not consulted even if the first one rejects the password.
// Trying them all would reveal, through timing and provider logs, which
// connections hold an account of that name. Aggregate reads union all
// connections and deduplicate by value as each result is folded in, keeping
// first-seen precedence; a connection that fails an aggregate read
// contributes nothing instead of failing the whole read.
type compositeClient struct {
	clients []Client
	logger  *slog.Logger
}

// NewCompositeClient combines connection clients in configured order.
func NewCompositeClient(clients []Client, logger *slog.Logger) Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &compositeClient{clients: clients, logger: logger}
}

func (c *compositeClient) Source() string { return DefaultSource }

func (c *compositeClient) Authenticate(ctx context.Context, creds Credentials) (bool, error) {
	for _, client := range c.clients {
		user, err := client.FindUserByUserID(ctx, creds.Principal())
		if err != nil {
			return false, err
		}
		if user != nil {
			return client.Authenticate(ctx, creds)
		}
	}
	return false, nil
}

func (c *compositeClient) FindRoleIDsByUserID(ctx context.Context, userID string) ([]string, error) {
	for _, client := range c.clients {
		user, err := client.FindUserByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if user != nil {
			return client.FindRoleIDsByUserID(ctx, userID)
		}
	}
	return nil, nil
}

func (c *compositeClient) FindUserByUserID(ctx context.Context, userID string) (*User, error) {
	for _, client := range c.clients {
		user, err := client.FindUserByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if user != nil {
			return user, nil
		}
	}
	return nil, nil
}

func (c *compositeClient) FindRoleByRoleID(ctx context.Context, roleID string) (*Role, error) {
	for _, client := range c.clients {
		role, err := client.FindRoleByRoleID(ctx, roleID)
		if err != nil {
			return nil, err
		}
		if role != nil {
			return role, nil
		}
	}
	return nil, nil
}

func (c *compositeClient) FindAllUserIDs(ctx context.Context) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})

	for _, client := range c.clients {
		ids, err := client.FindAllUserIDs(ctx)
		if err != nil {
			c.logger.Warn("listing user ids failed for a connection, skipping it", "error", err)
			continue
		}
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			all = append(all, id)
		}
	}
	return all, nil
}

func (c *compositeClient) FindUsers(ctx context.Context) ([]User, error) {
	fold := newUserFold()
	for _, client := range c.clients {
		users, err := client.FindUsers(ctx)
		if err != nil {
			c.logger.Warn("listing users failed for a connection, skipping it", "error", err)
			continue
		}
		fold.add(users)
	}
	return fold.users, nil
}

func (c *compositeClient) FindUsersByCriteria(ctx context.Context, criteria SearchCriteria) ([]User, error) {
	fold := newUserFold()
	for _, client := range c.clients {
		users, err := client.FindUsersByCriteria(ctx, criteria)
		if err != nil {
			c.logger.Warn("user search failed for a connection, skipping it", "error", err)
			continue
		}
		fold.add(users)
	}
	return fold.users, nil
}

func (c *compositeClient) FindRoles(ctx context.Context) ([]Role, error) {
	var all []Role
	seen := make(map[string]struct{})

	for _, client := range c.clients {
		roles, err := client.FindRoles(ctx)
		if err != nil {
			c.logger.Warn("listing roles failed for a connection, skipping it", "error", err)
			continue
		}
		for _, role := range roles {
			if _, dup := seen[role.RoleID]; dup {
				continue
			}
			seen[role.RoleID] = struct{}{}
			all = append(all, role)
		}
	}
	return all, nil
}

// userFold unions user lists by user id, first-seen wins.
type userFold struct {
	users []User
	seen  map[string]struct{}
}

func newUserFold() *userFold {
	return &userFold{seen: make(map[string]struct{})}
}

func (f *userFold) add(users []User) {
	for _, user := range users {
		if _, dup := f.seen[user.UserID]; dup {
			continue
		}
		f.seen[user.UserID] = struct{}{}
		f.users = append(f.users, user)
	}
}
