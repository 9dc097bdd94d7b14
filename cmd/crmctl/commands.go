package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/HanjuJo/nexo-v1/internal/identity"
	"github.com/HanjuJo/nexo-v1/internal/infra"
	"github.com/HanjuJo/nexo-v1/internal/model"
	"github.com/HanjuJo/nexo-v1/internal/service"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type rootOptions struct {
	DatabaseURL string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "crmctl",
		Short:         "Operator tooling for the CRM backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			_ = godotenv.Load()
			if opts.DatabaseURL == "" {
				opts.DatabaseURL = os.Getenv("DATABASE_URL")
			}
		},
	}
	cmd.PersistentFlags().StringVar(&opts.DatabaseURL, "database-url", "", "Postgres DSN (default $DATABASE_URL)")

	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newSeedAdminCommand(opts))
	cmd.AddCommand(newHashPasswordCommand())
	return cmd
}

func (o *rootOptions) open() (*gorm.DB, error) {
	if o.DatabaseURL == "" {
		return nil, errors.New("no database: pass --database-url or set DATABASE_URL")
	}
	return infra.NewDatabase(o.DatabaseURL)
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update all tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := opts.open()
			if err != nil {
				return err
			}
			if err := infra.RunMigrations(db); err != nil {
				return err
			}
			log.Info().Msg("schema up to date")
			return nil
		},
	}
}

type seedAdminOptions struct {
	Username string
	Email    string
	FullName string
	Password string
}

func newSeedAdminCommand(root *rootOptions) *cobra.Command {
	opts := &seedAdminOptions{}
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create or reset the super administrator account",
		Long:  `Creates a super administrator, or resets the password, role and activation
of an existing account with the same username.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := root.open()
			if err != nil {
				return err
			}
			u, err := seedAdmin(db, *opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "super administrator %q ready (id %s)\n", u.Username, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Username, "username", "admin", "account username")
	cmd.Flags().StringVar(&opts.Email, "email", "admin@localhost", "account email")
	cmd.Flags().StringVar(&opts.FullName, "full-name", "Administrator", "display name")
	cmd.Flags().StringVar(&opts.Password, "password", "", "initial password (required)")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func seedAdmin(db *gorm.DB, opts seedAdminOptions) (*model.User, error) {
	if len(opts.Password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}
	hash, err := service.HashPassword(opts.Password)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Username:     opts.Username,
		Email:        opts.Email,
		FullName:     opts.FullName,
		PasswordHash: hash,
		Role:         string(identity.RoleSuperAdmin),
		IsAdmin:      true,
		IsSuperAdmin: true,
		IsActive:     true,
	}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash", "role", "is_admin", "is_super_admin", "is_active", "updated_at"}),
	}).Create(u).Error
	if err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	var stored model.User
	if err := db.Where("username = ?", opts.Username).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func newHashPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := service.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
