package realm

import (
	"strings"

	"github.com/aussiebroadwan/keygate/pkg/keycloak"
)

// Role-id kind prefixes. The composition order (kind, then optional source
// code, then raw name) is a wire contract with role grants the host has
// already persisted and must not change.
const (
	ClientRolePrefix = "ClientRole"
	RealmRolePrefix  = "RealmRole"
	RealmGroupPrefix = "RealmGroup"
)

// RoleID composes the canonical role identifier. Group paths keep their
// internal slashes; identical inputs always produce the identical id.
func RoleID(kind, sourceCode, name string) string {
	if sourceCode == "" {
		return kind + ":" + name
	}
	return kind + ":" + sourceCode + ":" + name
}

// ParseRoleID splits an id back into kind and name, relative to the source
// code of the connection resolving it. The scheme alone is ambiguous for
// names containing ':' (is "RealmRole:ns:read" a sourced "read" or a
// sourceless "ns:read"?), so the connection's own source code decides: with
// none configured, everything after the kind prefix is the name; with one,
// the id must carry exactly that source code between kind and name. ok is
// false when the id cannot belong to the connection, bare legacy ids (no
// colon at all) included on sourced connections.
func ParseRoleID(id, sourceCode string) (kind, name string, ok bool) {
	kind, rest, prefixed := strings.Cut(id, ":")
	if !prefixed {
		return "", id, sourceCode == ""
	}
	if sourceCode == "" {
		return kind, rest, true
	}

	name, matched := strings.CutPrefix(rest, sourceCode+":")
	if !matched {
		return "", "", false
	}
	return kind, name, true
}

// ToUser maps a provider user into the host shape. Returns nil for nil.
func ToUser(source string, user *keycloak.User) *User {
	if user == nil {
		return nil
	}

	status := UserStatusDisabled
	if user.Enabled {
		status = UserStatusActive
	}

	return &User{
		UserID:    user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Status:    status,
		ReadOnly:  true,
		Source:    source,
	}
}

// ToUsers maps a list of provider users, deduplicating by user id and source
// while preserving first-seen order.
func ToUsers(source string, users []keycloak.User) []User {
	out := make([]User, 0, len(users))
	seen := make(map[string]struct{}, len(users))

	for i := range users {
		user := ToUser(source, &users[i])
		key := user.UserID + "\x00" + user.Source
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, *user)
	}
	return out
}

// ToRole maps a provider role into the host shape under the canonical id
// scheme. A role without a description omits the field entirely.
func ToRole(source, sourceCode string, role *keycloak.Role) *Role {
	if role == nil {
		return nil
	}

	kind := RealmRolePrefix
	if role.ClientRole {
		kind = ClientRolePrefix
	}
	id := RoleID(kind, sourceCode, role.Name)

	out := &Role{
		RoleID:   id,
		Name:     id,
		ReadOnly: true,
		Source:   source,
	}
	if role.Description != "" {
		out.Description = kind + ": " + role.Description
	}
	return out
}

// ToGroupRole maps a provider group into the host role shape, keyed by the
// group's full path.
func ToGroupRole(source, sourceCode string, group *keycloak.Group) *Role {
	if group == nil {
		return nil
	}

	id := RoleID(RealmGroupPrefix, sourceCode, group.Path)
	return &Role{
		RoleID:   id,
		Name:     id,
		ReadOnly: true,
		Source:   source,
	}
}

// toCompatibleRole emits the legacy encoding for a client role: the bare
// name with no prefix, matching ids persisted before the canonical scheme.
func toCompatibleRole(source string, role *keycloak.Role) *Role {
	return &Role{
		RoleID:      role.Name,
		Name:        role.Name,
		Description: role.Description,
		ReadOnly:    true,
		Source:      source,
	}
}

// ToRoles maps client roles, realm roles and groups into one deduplicated
// list of host roles under the canonical id scheme, in that order.
func ToRoles(source, sourceCode string, clientRoles, realmRoles []keycloak.Role, groups []keycloak.Group) []Role {
	return mapRoles(source, sourceCode, clientRoles, realmRoles, groups, false)
}

// ToRoleIDs is ToRoles reduced to the role ids.
func ToRoleIDs(source, sourceCode string, clientRoles, realmRoles []keycloak.Role, groups []keycloak.Group) []string {
	return roleIDs(ToRoles(source, sourceCode, clientRoles, realmRoles, groups))
}

// ToCompatibleRoleIDs returns the canonical ids plus, for every client role
// only, the bare legacy name. Realm roles and groups never get a legacy
// alias. Only meaningful for connections without a source code.
func ToCompatibleRoleIDs(source string, clientRoles, realmRoles []keycloak.Role, groups []keycloak.Group) []string {
	return roleIDs(mapRoles(source, "", clientRoles, realmRoles, groups, true))
}

func mapRoles(source, sourceCode string, clientRoles, realmRoles []keycloak.Role, groups []keycloak.Group, compatible bool) []Role {
	var out []Role
	seen := make(map[string]struct{})

	add := func(role *Role) {
		if _, dup := seen[role.RoleID]; dup {
			return
		}
		seen[role.RoleID] = struct{}{}
		out = append(out, *role)
	}

	for i := range clientRoles {
		if compatible && clientRoles[i].ClientRole {
			add(toCompatibleRole(source, &clientRoles[i]))
		}
		add(ToRole(source, sourceCode, &clientRoles[i]))
	}
	for i := range realmRoles {
		add(ToRole(source, sourceCode, &realmRoles[i]))
	}
	for i := range groups {
		add(ToGroupRole(source, sourceCode, &groups[i]))
	}
	return out
}

func roleIDs(roles []Role) []string {
	ids := make([]string, len(roles))
	for i, role := range roles {
		ids[i] = role.RoleID
	}
	return ids
}
