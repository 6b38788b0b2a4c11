package main

import (
	"fmt"
	"github.com/kotche/notekeeper/internal/auth"
	"github.com/kotche/notekeeper/internal/config"
	"github.com/kotche/notekeeper/internal/database"
	users_repo "github.com/kotche/notekeeper/internal/repository/users"
	users_serv "github.com/kotche/notekeeper/internal/service/users"
	"github.com/spf13/cobra"
)

// env holds what the commands need from the outside world.
type env struct {
	loadConfig func() (*config.Config, error)
	migrate    func(sourceURL, dbURL string) error
	rollback   func(sourceURL, dbURL string, steps int) error
	userStore  func(cfg *config.Config) (users_serv.Service, func(), error)
}

func defaultEnv() env {
	return env{
		loadConfig: config.LoadConfig,
		migrate:    database.Migrate,
		rollback:   database.Rollback,
		userStore:  openUserService,
	}
}

func openUserService(cfg *config.Config) (users_serv.Service, func(), error) {
	db, err := database.Open(cfg.PostgresConfig.DSN())
	if err != nil {
		return nil, nil, err
	}
	hasher, err := auth.NewHasher(cfg.AuthConfig.BcryptCost)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	// Tokens are never issued from the CLI.
	issuer := auth.NewIssuer(cfg.AuthConfig.JWTSecret, cfg.AuthConfig.TokenTTL)
	svc := users_serv.NewDefaultService(users_repo.NewDefaultRepository(db), hasher, issuer)
	return svc, func() { db.Close() }, nil
}

func newRootCmd(e env) *cobra.Command {
	root := &cobra.Command{
		Use:           "notesctl",
		Short:         "Administrative tasks for the notes service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(e), newUserCmd(e))
	return root
}

func newMigrateCmd(e env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := e.loadConfig()
			if err != nil {
				return err
			}
			if err = e.migrate(cfg.PostgresConfig.MigrationsPath, cfg.PostgresConfig.DSN()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := e.loadConfig()
			if err != nil {
				return err
			}
			if err = e.rollback(cfg.PostgresConfig.MigrationsPath, cfg.PostgresConfig.DSN(), steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(up, down)
	return cmd
}

func newUserCmd(e env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var (
		username string
		email    string
		password string
		isAdmin  bool
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := e.loadConfig()
			if err != nil {
				return err
			}
			svc, closeFn, err := e.userStore(cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			user, err := svc.Register(cmd.Context(), username, email, password, isAdmin)
			if err != nil {
				return err
			}
			role := "user"
			if user.IsAdmin {
				role = "admin"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %q with id %d\n", role, user.Username, user.ID)
			return nil
		},
	}
	create.Flags().StringVar(&username, "username", "", "login name")
	create.Flags().StringVar(&email, "email", "", "unique email address")
	create.Flags().StringVar(&password, "password", "", "initial password")
	create.Flags().BoolVar(&isAdmin, "admin", false, "grant admin capability")
	for _, name := range []string{"username", "email", "password"} {
		_ = create.MarkFlagRequired(name)
	}

	cmd.AddCommand(create)
	return cmd
}
