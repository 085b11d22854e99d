package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garrettladley/slackgate/internal/config"
	xredis "github.com/garrettladley/slackgate/internal/redis"
	"github.com/garrettladley/slackgate/internal/secrets"
)

var errNoRedis = errors.New("REDIS_URL must be set to manage tenant secrets")

func secretsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Manage per-tenant signing secrets",
	}
	cmd.AddCommand(secretsPutCmd())
	cmd.AddCommand(secretsDeleteCmd())
	return cmd
}

func secretsPutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put <tenant> <signing-secret>",
		Short: "Store the signing secret for a tenant",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRedisStore(cmd, func(store *secrets.RedisStore) error {
				if err := store.Put(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "stored signing secret for %s\n", args[0])
				return nil
			})
		},
	}
}

func secretsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <tenant>",
		Short: "Remove the signing secret for a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRedisStore(cmd, func(store *secrets.RedisStore) error {
				if err := store.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted signing secret for %s\n", args[0])
				return nil
			})
		},
	}
}

func withRedisStore(cmd *cobra.Command, fn func(*secrets.RedisStore) error) error {
	cfg, err := config.Read()
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if cfg.Redis.URL == "" {
		return errNoRedis
	}

	client, err := xredis.New(cmd.Context(), xredis.Config{URL: cfg.Redis.URL})
	if err != nil {
		return fmt.Errorf("failed to initialize redis client: %w", err)
	}
	defer func() { _ = client.Close() }()

	return fn(secrets.NewRedisStore(client))
}
