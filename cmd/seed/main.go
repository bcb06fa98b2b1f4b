package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hrm-backend-go/internal/config"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-backend-go/internal/fixtures"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/hrm-backend-go/internal/repository/postgresql"
	userService "github.com/cmlabs-hris/hrm-backend-go/internal/service/user"
	"github.com/cmlabs-hris/hrm-backend-go/migrations"
	"github.com/spf13/cobra"
)

var (
	cfg *config.Config
	db  *database.DB

	adminEmail    string
	adminPassword string
	adminName     string

	rootCmd = &cobra.Command{
		Use:           "seed",
		Short:         "Prepare an HRM database: schema, default leave policies and the first admin",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.Load(); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			db, err = database.NewPostgreSQLDB(cmd.Context(), cfg.DatabaseURL(), database.PoolOptions{MaxConns: 2, MinConns: 1})
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if db != nil {
				db.Close()
			}
		},
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE:  runMigrate,
	}

	policiesCmd = &cobra.Command{
		Use:   "policies",
		Short: "Insert or reset the default leave policies",
		RunE:  runPolicies,
	}

	adminCmd = &cobra.Command{
		Use:   "admin",
		Short: "Create an admin account",
		RunE:  runAdmin,
	}
)

func init() {
	adminCmd.Flags().StringVar(&adminEmail, "email", "", "admin email address")
	adminCmd.Flags().StringVar(&adminPassword, "password", "", "admin password (8-72 characters)")
	adminCmd.Flags().StringVar(&adminName, "name", "Administrator", "admin full name")
	_ = adminCmd.MarkFlagRequired("email")
	_ = adminCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(migrateCmd, policiesCmd, adminCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if err := db.Migrate(cmd.Context(), migrations.FS); err != nil {
		return err
	}
	version, err := db.MigrationVersion(cmd.Context(), migrations.FS)
	if err != nil {
		return err
	}
	slog.Info("Migrations applied", "version", version)
	return nil
}

func runPolicies(cmd *cobra.Command, args []string) error {
	policies := postgresql.NewLeavePolicyRepository(db)
	for _, p := range fixtures.DefaultLeavePolicies() {
		saved, err := policies.Upsert(cmd.Context(), p)
		if err != nil {
			return fmt.Errorf("seed %s policy: %w", p.LeaveType, err)
		}
		slog.Info("Leave policy seeded", "type", saved.LeaveType, "max_days_per_year", saved.MaxDaysPerYear)
	}
	return nil
}

func runAdmin(cmd *cobra.Command, args []string) error {
	users := userService.NewUserService(postgresql.NewUserRepository(db), postgresql.NewOrganizationRepository(db), nil)

	created, err := users.Create(cmd.Context(), user.CreateUserRequest{
		FullName: adminName,
		Email:    adminEmail,
		Password: adminPassword,
		Role:     string(user.RoleAdmin),
	})
	if errors.Is(err, user.ErrUserEmailExists) {
		slog.Warn("Admin already exists, nothing to do", "email", adminEmail)
		return nil
	}
	if err != nil {
		return err
	}
	slog.Info("Admin created", "user_id", created.ID, "email", created.Email)
	return nil
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("Seed failed", "error", err)
		os.Exit(1)
	}
}
