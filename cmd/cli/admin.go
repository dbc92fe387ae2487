package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	postgresRepo "github.com/iho/kakeibo/internal/adapter/repository/postgres"
	"github.com/iho/kakeibo/internal/infrastructure/logger"
	"github.com/iho/kakeibo/internal/infrastructure/postgres"
	"github.com/iho/kakeibo/internal/usecase"
)

var errNoDatabaseURL = errors.New("--database-url or DATABASE_URL is required")

func requireDatabaseURL() error {
	if databaseURL == "" {
		return errNoDatabaseURL
	}
	return nil
}

func cliLogger() zerolog.Logger {
	return logger.NewWithWriter(logger.Config{Level: "info", Format: "console"}, os.Stderr)
}

func newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:               "migrate",
		Short:             "Manage the database schema",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return requireDatabaseURL() },
	}

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return postgres.RunMigrations(databaseURL, cliLogger())
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return postgres.RunMigrationsDown(databaseURL, cliLogger())
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				version, dirty, err := postgres.MigrationVersion(databaseURL)
				if err != nil {
					return err
				}
				if dirty {
					fmt.Fprintf(cmd.OutOrStdout(), "%d (dirty)\n", version)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), version)
				return nil
			},
		},
	)

	return migrateCmd
}

func newUserCmd() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage sign-in users",
	}

	var name, password string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a user and seed the fixed categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireDatabaseURL(); err != nil {
				return err
			}
			ctx := cmd.Context()

			pool, err := postgres.NewPool(ctx, databaseURL, 2, 0)
			if err != nil {
				return err
			}
			defer pool.Close()

			idGen := postgresRepo.NewULIDGenerator()
			categories := usecase.NewCategoryUseCase(
				postgresRepo.NewTxManager(pool),
				postgresRepo.NewCategoryRepository(pool),
				postgresRepo.NewTransactionRepository(pool),
				idGen,
			)
			users := usecase.NewUserUseCase(postgresRepo.NewUserRepository(pool), categories, idGen)

			user, err := users.CreateUser(ctx, usecase.CreateUserInput{Name: name, Password: password})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", user.Name, user.ID)
			return nil
		},
	}
	addCmd.Flags().StringVar(&name, "name", "", "User name")
	addCmd.Flags().StringVar(&password, "password", "", "Password")
	_ = addCmd.MarkFlagRequired("name")
	_ = addCmd.MarkFlagRequired("password")

	userCmd.AddCommand(addCmd)
	return userCmd
}
