package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cuongbtq/barangay-gigs/internal/api/domain"
	"github.com/cuongbtq/barangay-gigs/internal/api/storage"
	"github.com/cuongbtq/barangay-gigs/shared/logger"
	"github.com/cuongbtq/barangay-gigs/shared/postgresql"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const commandTimeout = 30 * time.Second

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage marketplace accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account in the identity store",
	Args:  cobra.NoArgs,
	RunE:  runUserCreate,
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recently created accounts",
	Args:  cobra.NoArgs,
	RunE:  runUserList,
}

func init() {
	f := userCreateCmd.Flags()
	f.String("first-name", "", "first name")
	f.String("last-name", "", "last name")
	f.String("email", "", "email address (required)")
	f.String("barangay", "", "home barangay (required)")
	f.StringSlice("skills", nil, "comma separated skill tags")
	f.String("type", string(domain.RoleEmployee), "employee, employer, both or admin")
	f.Bool("verified", true, "mark the account as verified")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("barangay")

	userListCmd.Flags().Int("limit", 50, "maximum number of accounts to print")

	userCmd.AddCommand(userCreateCmd, userListCmd)
	rootCmd.AddCommand(userCmd)
}

// openStorage connects to the configured database
func openStorage() (*storage.Storage, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	// stdout carries command output, so logs go to stderr
	log, err := logger.New(&logger.Config{Level: "warn", Output: "stderr"})
	if err != nil {
		return nil, nil, err
	}
	client, err := postgresql.NewClient(cfg.Database.Postgres(), log.Component("postgresql"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return storage.NewStorage(client, log.Component("storage")), func() { client.Close() }, nil
}

func runUserCreate(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	firstName, _ := f.GetString("first-name")
	lastName, _ := f.GetString("last-name")
	email, _ := f.GetString("email")
	barangay, _ := f.GetString("barangay")
	skills, _ := f.GetStringSlice("skills")
	role, _ := f.GetString("type")
	verified, _ := f.GetBool("verified")

	user := &domain.User{
		ID:        uuid.NewString(),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Email:     strings.TrimSpace(email),
		Barangay:  strings.TrimSpace(barangay),
		Skills:    domain.NormalizeSkills(skills),
		Role:      domain.Role(role),
		Verified:  verified,
		CreatedAt: time.Now().UTC(),
	}
	if !user.Role.Valid() {
		return fmt.Errorf("unknown user type %q", role)
	}

	store, closeStore, err := openStorage()
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	if err := store.CreateUser(ctx, user); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), user.ID)
	return nil
}

func runUserList(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		return fmt.Errorf("limit must be positive")
	}

	store, closeStore, err := openStorage()
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	users, err := store.ListUsers(ctx, limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tBARANGAY\tROLE\tVERIFIED\tSKILLS")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%t\t%s\n",
			u.ID, u.FullName(), u.Email, u.Barangay, u.Role, u.Verified, strings.Join(u.Skills, ","))
	}
	return w.Flush()
}
