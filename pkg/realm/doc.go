/*
Package realm is the entry point a host application's authentication and
authorization layers consume. It turns the provider entities served by
pkg/keycloak into host-shaped users and roles with a stable, collision-free
role-identifier scheme, and composes one or many provider connections behind
a single Client interface.

Role identifiers follow the scheme

	<Kind>[:<SourceCode>]:<Name>

where Kind is one of ClientRole, RealmRole or RealmGroup, SourceCode is the
optional tag disambiguating multiple connections, and Name is the role name
or group path as the provider gave it. A connection without a source code
additionally emits the bare role name for client roles, preserving role
grants persisted before the prefix scheme existed.

Use a Registry to build the right Client variant from a config directory:

	reg := realm.NewRegistry("etc", logger)
	client := reg.Client()

	ok, err := client.Authenticate(ctx, realm.PasswordCredentials{
		Username: "alice",
		Password: secret,
	})

A connection whose config file is missing or broken degrades to a no-op
client that contributes nothing, so a misconfigured connection never takes
the host down.
*/
package realm
