package realm

import "context"

// noopClient stands in for a connection whose configuration is missing or
// broken. Every operation succeeds with an empty result so the connection
// contributes nothing instead of taking the host down.
type noopClient struct{}

// NewNoopClient returns the no-op client.
func NewNoopClient() Client { return noopClient{} }

func (noopClient) Authenticate(context.Context, Credentials) (bool, error) { return false, nil }
func (noopClient) FindUserByUserID(context.Context, string) (*User, error) { return nil, nil }
func (noopClient) FindRoleIDsByUserID(context.Context, string) ([]string, error) {
	return nil, nil
}
func (noopClient) FindRoleByRoleID(context.Context, string) (*Role, error) { return nil, nil }
func (noopClient) FindAllUserIDs(context.Context) ([]string, error)        { return nil, nil }
func (noopClient) FindUsers(context.Context) ([]User, error)               { return nil, nil }
func (noopClient) FindUsersByCriteria(context.Context, SearchCriteria) ([]User, error) {
	return nil, nil
}
func (noopClient) FindRoles(context.Context) ([]Role, error) { return nil, nil }
func (noopClient) Source() string                            { return DefaultSource }
