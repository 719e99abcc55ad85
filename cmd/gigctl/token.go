package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/cuongbtq/barangay-gigs/internal/auth"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage bearer tokens",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a bearer token for an existing account",
	Args:  cobra.NoArgs,
	RunE:  runTokenIssue,
}

func init() {
	tokenIssueCmd.Flags().String("email", "", "email of the account (required)")
	_ = tokenIssueCmd.MarkFlagRequired("email")

	tokenCmd.AddCommand(tokenIssueCmd)
	rootCmd.AddCommand(tokenCmd)
}

func runTokenIssue(cmd *cobra.Command, _ []string) error {
	email, _ := cmd.Flags().GetString("email")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required to issue tokens")
	}

	store, closeStore, err := openStorage()
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	user, err := store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return err
	}

	token, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL).Issue(user)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
