package realm

// DefaultSource tags users and roles produced by this security source.
const DefaultSource = "Keycloak"

// UserStatus is the host-side account state derived from the provider's
// enabled flag.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// User is the host-shaped view of a provider identity. Users from this
// source are always read-only; account data lives in the provider.
type User struct {
	// UserID is the provider username, which doubles as the host user id.
	UserID    string
	FirstName string
	LastName  string
	Email     string
	Status    UserStatus
	ReadOnly  bool

	// Source identifies which connection produced the user.
	Source string
}

// Role is the host-shaped view of a provider role or group. RoleID follows
// the Kind[:SourceCode]:Name scheme; Name is identical to RoleID so the host
// displays exactly what it persists.
type Role struct {
	RoleID      string
	Name        string
	Description string
	ReadOnly    bool

	// Source identifies which connection produced the role.
	Source string
}

// SearchCriteria narrows a user search. UserID takes precedence over Email
// when both are set; both empty means "all users".
type SearchCriteria struct {
	UserID string
	Email  string
}
