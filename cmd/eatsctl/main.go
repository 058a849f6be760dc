package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/eats-api/internal/config"
	"github.com/redmonkez12/eats-api/internal/database"
	"github.com/redmonkez12/eats-api/internal/verification"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "eatsctl",
		Short:        "Operational tasks for the Eats API",
		SilenceUsage: true,
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the users and verifications tables",
		RunE:  runMigrate,
	}
	migrateCmd.Flags().String("sqlite", "", "Run against a SQLite DSN instead of the configured Postgres database")

	keygenCmd := &cobra.Command{
		Use:   "keygen",
		Short: "Print a random 32-byte key, hex encoded, for PASETO_KEY or JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE:  runKeygen,
	}

	codeCmd := &cobra.Command{
		Use:   "code <user-id>",
		Short: "Print the outstanding verification code of a user",
		Args:  cobra.ExactArgs(1),
		RunE:  runCode,
	}
	codeCmd.Flags().String("sqlite", "", "Read from a SQLite DSN instead of the configured Postgres database")

	rootCmd.AddCommand(migrateCmd, keygenCmd, codeCmd)
	return rootCmd
}

func openDB(cmd *cobra.Command) (*bun.DB, error) {
	ctx := cmd.Context()
	if dsn, _ := cmd.Flags().GetString("sqlite"); dsn != "" {
		return database.OpenSQLite(ctx, dsn)
	}

	cfg := config.LoadDatabase()
	return database.OpenPostgres(ctx, cfg.ConnectionString(), database.PoolOptions{MaxOpenConns: 1, MaxIdleConns: 1})
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	db, err := openDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.CreateSchema(cmd.Context(), db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
	return nil
}

func runKeygen(cmd *cobra.Command, _ []string) error {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("read random bytes: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(key))
	return nil
}

func runCode(cmd *cobra.Command, args []string) error {
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user id %q", args[0])
	}

	db, err := openDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	code, err := verification.NewLedger(db).Lookup(cmd.Context(), userID)
	if errors.Is(err, verification.ErrNotFound) {
		return fmt.Errorf("user %d has no outstanding verification code", userID)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), code)
	return nil
}
