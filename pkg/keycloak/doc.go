/*
Package keycloak implements a read-only admin client for a Keycloak-compatible
identity provider.

The package is organized around two main types:

  - AdminClient: typed operations against the provider's admin REST API and
    token endpoint, one connection per client
  - TokenManager: the service-credential lifecycle behind every admin call,
    obtained lazily by the AdminClient

Create an AdminClient from a connection config and call the operations you
need:

	cfg, err := keycloak.LoadConfig("etc/keycloak.json")
	client, err := keycloak.NewAdminClient(cfg, logger)

	// Resolve a user and their effective client roles
	user, err := client.GetUser(ctx, "alice")
	roles, err := client.GetRealmClientRolesOfUser(ctx, cfg.Resource, user.ID)

Admin operations authenticate themselves with a client-credentials token that
is granted on first use, refreshed shortly before it expires and re-granted
when a refresh fails. The connection's service account needs at least the
"view-clients" and "view-users" roles of the realm-management client.

Absence is not an error: operations that look up a single entity return the
zero value and no error when the provider answers 404. Any other non-2xx
answer surfaces as an *HTTPError carrying the original status code.
*/
package keycloak
