package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ManuelReschke/CreditFox/app/models"
	"github.com/ManuelReschke/CreditFox/app/repository"
	"github.com/ManuelReschke/CreditFox/internal/pkg/database"
	"github.com/ManuelReschke/CreditFox/internal/pkg/logging"
)

const commandTimeout = 30 * time.Second

func newAPIKeyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Issue and revoke API keys for machine clients",
	}

	withRepo := func(fn func(ctx context.Context, repo repository.APIKeyRepository, out io.Writer, arg string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg := database.ConfigFromEnv()
			cfg.AutoMigrate = false
			db, err := database.SetupDatabase(cfg, logging.NewFromEnv())
			if err != nil {
				return err
			}
			defer database.Close(db)

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()
			return fn(ctx, repository.NewAPIKeyRepository(db), cmd.OutOrStdout(), args[0])
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "issue SUBJECT",
			Short: "Create a key for SUBJECT and print it once",
			Args:  cobra.ExactArgs(1),
			RunE:  withRepo(issueAPIKey),
		},
		&cobra.Command{
			Use:   "revoke PREFIX",
			Short: "Revoke every active key with PREFIX",
			Args:  cobra.ExactArgs(1),
			RunE:  withRepo(revokeAPIKey),
		},
	)
	return cmd
}

func issueAPIKey(ctx context.Context, repo repository.APIKeyRepository, out io.Writer, subject string) error {
	key, raw, err := models.NewAPIKey(subject)
	if err != nil {
		return err
	}
	if err := repo.Create(ctx, key); err != nil {
		return fmt.Errorf("store api key: %w", err)
	}
	fmt.Fprintf(out, "subject: %s\nprefix:  %s\nkey:     %s\n", key.SubjectID, key.Prefix, raw)
	fmt.Fprintln(out, "the key is not stored and cannot be shown again")
	return nil
}

func revokeAPIKey(ctx context.Context, repo repository.APIKeyRepository, out io.Writer, prefix string) error {
	n, err := repo.RevokeByPrefix(ctx, prefix)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("no active key with prefix %q", prefix)
	}
	fmt.Fprintf(out, "revoked %d key(s)\n", n)
	return nil
}
