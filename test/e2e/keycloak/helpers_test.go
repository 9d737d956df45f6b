package keycloak_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/keygate/pkg/keycloak"
)

/*
 * End-to-end tests against a real Keycloak started in a container. Gated
 * behind KEYGATE_E2E=1 so the unit suite stays docker-free.
 */

const (
	keycloakImage = "quay.io/keycloak/keycloak:24.0"

	adminUsername = "admin"
	adminPassword = "Admin123!"
)

func skipUnlessE2E(t *testing.T) {
	t.Helper()
	if os.Getenv("KEYGATE_E2E") != "1" {
		t.Skip("set KEYGATE_E2E=1 to run container tests")
	}
}

// setupKeycloakContainer starts Keycloak in dev mode and returns its base
// URL. The master realm with the bootstrap admin and the public admin-cli
// client is all these tests need.
func setupKeycloakContainer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        keycloakImage,
		ExposedPorts: []string{"8080/tcp"},
		Cmd:          []string{"start-dev"},
		Env: map[string]string{
			"KEYCLOAK_ADMIN":          adminUsername,
			"KEYCLOAK_ADMIN_PASSWORD": adminPassword,
		},
		WaitingFor: wait.ForHTTP("/realms/master").
			WithPort("8080/tcp").
			WithStartupTimeout(3 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
}

// adminCLIConfig targets the master realm through the built-in public
// admin-cli client.
func adminCLIConfig(baseURL string) keycloak.Config {
	return keycloak.Config{
		AuthServerURL: baseURL,
		Realm:         "master",
		Resource:      "admin-cli",
		PublicClient:  true,
	}
}
