package realm

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/keygate/pkg/keycloak"
)

// Client is the single entry point the host's authentication and
// authorization layers use. Three implementations exist: one backed by a
// provider connection, a composite fanning out over several connections, and
// a no-op standing in for an unconfigured connection.
//
// Absence is a nil/empty result, never an error. Bad credentials are
// (false, nil); an error always means the provider could not be consulted,
// and callers at the authentication boundary deny access on it.
type Client interface {
	// Authenticate validates the credentials against the provider.
	Authenticate(ctx context.Context, creds Credentials) (bool, error)

	// FindUserByUserID resolves a user by exact username or email.
	FindUserByUserID(ctx context.Context, userID string) (*User, error)

	// FindRoleIDsByUserID resolves the user's effective role ids, composite
	// roles and group memberships included.
	FindRoleIDsByUserID(ctx context.Context, userID string) ([]string, error)

	// FindRoleByRoleID resolves a canonical or legacy role id.
	FindRoleByRoleID(ctx context.Context, roleID string) (*Role, error)

	// FindAllUserIDs lists every known user id.
	FindAllUserIDs(ctx context.Context) ([]string, error)

	// FindUsers lists every known user.
	FindUsers(ctx context.Context) ([]User, error)

	// FindUsersByCriteria searches users, enabled accounts only.
	FindUsersByCriteria(ctx context.Context, criteria SearchCriteria) ([]User, error)

	// FindRoles lists every client role, realm role and group as host roles.
	FindRoles(ctx context.Context) ([]Role, error)

	// Source returns the security source tag of this client.
	Source() string
}

// connectionClient backs the Client contract with one provider connection.
type connectionClient struct {
	source     string
	sourceCode string
	admin      *keycloak.AdminClient
	logger     *slog.Logger
}

// NewClient builds a single-connection client. The source code, when set in
// the config, prefixes every role id this connection emits; without one the
// connection stays on the legacy-compatible encoding.
func NewClient(cfg keycloak.Config, logger *slog.Logger) (Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	admin, err := keycloak.NewAdminClient(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &connectionClient{
		source:     DefaultSource,
		sourceCode: cfg.SourceCode,
		admin:      admin,
		logger:     logger,
	}, nil
}

// NewClientFromFile builds a single-connection client from a connection
// file.
func NewClientFromFile(path string, logger *slog.Logger) (Client, error) {
	cfg, err := keycloak.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return NewClient(cfg, logger)
}

func (c *connectionClient) Source() string { return c.source }

func (c *connectionClient) Authenticate(ctx context.Context, creds Credentials) (bool, error) {
	switch creds := creds.(type) {
	case PasswordCredentials:
		return c.authenticatePassword(ctx, creds)
	case TokenCredentials:
		return c.authenticateToken(ctx, creds)
	}
	return false, nil
}

func (c *connectionClient) authenticatePassword(ctx context.Context, creds PasswordCredentials) (bool, error) {
	token, err := c.admin.ObtainAccessToken(ctx, creds.Username, creds.Password)
	if err != nil {
		if keycloak.IsAuthFailure(err) {
			return false, nil
		}
		return false, err
	}
	return token != nil && token.AccessToken != "", nil
}

func (c *connectionClient) authenticateToken(ctx context.Context, creds TokenCredentials) (bool, error) {
	info, err := c.admin.ObtainUserInfo(ctx, creds.AccessToken)
	if err != nil {
		if keycloak.IsAuthFailure(err) {
			return false, nil
		}
		return false, err
	}
	return info != nil && info.PreferredUsername == creds.Username, nil
}

func (c *connectionClient) FindUserByUserID(ctx context.Context, userID string) (*User, error) {
	user, err := c.admin.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToUser(c.source, user), nil
}

func (c *connectionClient) FindRoleIDsByUserID(ctx context.Context, userID string) ([]string, error) {
	user, err := c.admin.GetUser(ctx, userID)
	if err != nil || user == nil {
		return nil, err
	}

	resource := c.admin.Config().Resource
	clientRoles, err := c.admin.GetRealmClientRolesOfUser(ctx, resource, user.ID)
	if err != nil {
		return nil, err
	}
	realmRoles, err := c.admin.GetRealmRolesOfUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	groups, err := c.admin.GetRealmGroupsOfUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	// Connections without a source code keep emitting the bare legacy ids so
	// role grants persisted against them continue to resolve.
	if c.sourceCode == "" {
		return ToCompatibleRoleIDs(c.source, clientRoles, realmRoles, groups), nil
	}
	return ToRoleIDs(c.source, c.sourceCode, clientRoles, realmRoles, groups), nil
}

func (c *connectionClient) FindRoleByRoleID(ctx context.Context, roleID string) (*Role, error) {
	kind, name, ok := ParseRoleID(roleID, c.sourceCode)
	if !ok {
		return nil, nil
	}

	switch kind {
	case RealmGroupPrefix:
		group, err := c.admin.GetRealmGroupByGroupPath(ctx, name)
		if err != nil {
			return nil, err
		}
		return ToGroupRole(c.source, c.sourceCode, group), nil
	case RealmRolePrefix:
		role, err := c.admin.GetRealmRole(ctx, name)
		if err != nil {
			return nil, err
		}
		return ToRole(c.source, c.sourceCode, role), nil
	default:
		// Client roles, including bare legacy ids with no kind prefix.
		role, err := c.admin.GetRealmClientRole(ctx, c.admin.Config().Resource, name)
		if err != nil {
			return nil, err
		}
		return ToRole(c.source, c.sourceCode, role), nil
	}
}

func (c *connectionClient) FindAllUserIDs(ctx context.Context) ([]string, error) {
	users, err := c.FindUsers(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(users))
	for i, user := range users {
		ids[i] = user.UserID
	}
	return ids, nil
}

func (c *connectionClient) FindUsers(ctx context.Context) ([]User, error) {
	users, err := c.admin.GetUsers(ctx)
	if err != nil {
		return nil, err
	}
	return ToUsers(c.source, users), nil
}

func (c *connectionClient) FindUsersByCriteria(ctx context.Context, criteria SearchCriteria) ([]User, error) {
	search := criteria.UserID
	if search == "" {
		search = criteria.Email
	}

	users, err := c.admin.FindUsers(ctx, search)
	if err != nil {
		return nil, err
	}

	enabled := make([]keycloak.User, 0, len(users))
	for _, user := range users {
		if user.Enabled {
			enabled = append(enabled, user)
		}
	}
	return ToUsers(c.source, enabled), nil
}

func (c *connectionClient) FindRoles(ctx context.Context) ([]Role, error) {
	resource := c.admin.Config().Resource

	clientRoles, err := c.admin.GetRealmClientRoles(ctx, resource)
	if err != nil {
		return nil, err
	}
	realmRoles, err := c.admin.GetRealmRoles(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := c.admin.GetRealmGroups(ctx)
	if err != nil {
		return nil, err
	}

	return ToRoles(c.source, c.sourceCode, clientRoles, realmRoles, groups), nil
}
