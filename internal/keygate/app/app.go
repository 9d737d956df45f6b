package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aussiebroadwan/keygate/pkg/realm"
	"github.com/aussiebroadwan/keygate/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

const usage = `usage: keygate <command> [args]

commands:
  login <username> <password>   validate credentials against the provider
  user <user-id>                look up a user by username or email
  users [search]                list users, optionally filtered
  roles                         list every role and group
  role <role-id>                resolve one role id
  role-ids <user-id>            list a user's effective role ids
`

// Application wires the connection registry behind a small command-line
// surface, mostly useful for poking at a connection before wiring it into a
// host.
type Application struct {
	cfg    Config
	logger *slog.Logger
	client realm.Client
	out    io.Writer
}

// New creates an Application with its registry loaded from the config
// directory.
func New(cfg Config) *Application {
	logger := slogx.New(slogx.Config{
		Service: "keygate",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	registry := realm.NewRegistry(cfg.ConfigDir, logger)

	return &Application{
		cfg:    cfg,
		logger: logger,
		client: registry.Client(),
		out:    os.Stdout,
	}
}

// Run executes one command. args is os.Args without the program name.
func (app *Application) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("missing command")
	}

	command, args := args[0], args[1:]
	switch command {
	case "login":
		return app.runLogin(ctx, args)
	case "user":
		return app.runUser(ctx, args)
	case "users":
		return app.runUsers(ctx, args)
	case "roles":
		return app.runRoles(ctx)
	case "role":
		return app.runRole(ctx, args)
	case "role-ids":
		return app.runRoleIDs(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (app *Application) runLogin(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("login needs <username> <password>")
	}

	ok, err := app.client.Authenticate(ctx, realm.PasswordCredentials{
		Username: args[0],
		Password: args[1],
	})
	if err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	if !ok {
		return fmt.Errorf("credentials rejected")
	}

	fmt.Fprintln(app.out, "authenticated")
	return nil
}

func (app *Application) runUser(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("user needs <user-id>")
	}

	user, err := app.client.FindUserByUserID(ctx, args[0])
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("no such user %q", args[0])
	}
	return app.print(user)
}

func (app *Application) runUsers(ctx context.Context, args []string) error {
	var (
		users []realm.User
		err   error
	)
	if len(args) > 0 {
		users, err = app.client.FindUsersByCriteria(ctx, realm.SearchCriteria{UserID: args[0]})
	} else {
		users, err = app.client.FindUsers(ctx)
	}
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	return app.print(users)
}

func (app *Application) runRoles(ctx context.Context) error {
	roles, err := app.client.FindRoles(ctx)
	if err != nil {
		return fmt.Errorf("list roles: %w", err)
	}
	return app.print(roles)
}

func (app *Application) runRole(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("role needs <role-id>")
	}

	role, err := app.client.FindRoleByRoleID(ctx, args[0])
	if err != nil {
		return fmt.Errorf("find role: %w", err)
	}
	if role == nil {
		return fmt.Errorf("no such role %q", args[0])
	}
	return app.print(role)
}

func (app *Application) runRoleIDs(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("role-ids needs <user-id>")
	}

	ids, err := app.client.FindRoleIDsByUserID(ctx, args[0])
	if err != nil {
		return fmt.Errorf("find role ids: %w", err)
	}
	return app.print(ids)
}

func (app *Application) print(v any) error {
	enc := json.NewEncoder(app.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
