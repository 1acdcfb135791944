package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/dooonda/ledger/internal/domain"
	"github.com/dooonda/ledger/internal/infrastructure/logger"
	"github.com/dooonda/ledger/internal/infrastructure/postgres"
)

var bcryptGenerate = bcrypt.GenerateFromPassword

type options struct {
	baseURL string
	token   string
	timeout time.Duration
}

func (o *options) client() *apiClient {
	return newAPIClient(o.baseURL, o.token, o.timeout)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "dooonda-cli",
		Short:         "Dooonda ledger CLI tool",
		Long:          `A command line interface for the Dooonda wallet ledger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", envOr("DOOONDA_URL", "http://localhost:8080"), "Base URL of the ledger API")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("DOOONDA_TOKEN"), "Bearer token (env DOOONDA_TOKEN)")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		loginCmd(opts),
		walletCmd(opts),
		ledgerCmd(opts),
		migrateCmd(),
		hashPasswordCmd(),
	)

	return rootCmd
}

func loginCmd(opts *options) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange credentials for a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				Token     string    `json:"token"`
				ExpiresAt time.Time `json:"expires_at"`
			}

			body := map[string]string{"email": email, "password": password}
			if err := opts.client().do(cmd.Context(), http.MethodPost, "/api/v1/auth/login", body, &resp, nil); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), resp.Token)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func walletCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Wallet operations for the authenticated account",
	}

	var limit int
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show balance and recent transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp json.RawMessage
			path := "/api/v1/wallet?limit=" + strconv.Itoa(limit)
			if err := opts.client().do(cmd.Context(), http.MethodGet, path, nil, &resp, nil); err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	showCmd.Flags().IntVar(&limit, "limit", 10, "Number of recent transactions")

	var (
		kind           string
		amount         string
		description    string
		idempotencyKey string
	)
	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "Record a " + kindList() + " transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := domain.ParseTransactionKind(kind); err != nil {
				return fmt.Errorf("invalid type %q: want one of %s", kind, kindList())
			}

			parsed, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q", amount)
			}
			if err := domain.ValidateAmount(parsed); err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}

			body := map[string]any{
				"type":        kind,
				"amount":      json.Number(amount),
				"description": description,
			}

			var headers map[string]string
			if idempotencyKey != "" {
				headers = map[string]string{"Idempotency-Key": idempotencyKey}
			}

			var resp json.RawMessage
			if err := opts.client().do(cmd.Context(), http.MethodPost, "/api/v1/wallet", body, &resp, headers); err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	recordCmd.Flags().StringVar(&kind, "type", "", "Transaction type")
	recordCmd.Flags().StringVar(&amount, "amount", "", "Amount, e.g. 150.50")
	recordCmd.Flags().StringVar(&description, "description", "", "Free-text description")
	recordCmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency-Key header")
	_ = recordCmd.MarkFlagRequired("type")
	_ = recordCmd.MarkFlagRequired("amount")

	var (
		filterKind string
		search     string
		pageSize   int
		offset     int
	)
	transactionsCmd := &cobra.Command{
		Use:   "transactions",
		Short: "List transactions with filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if filterKind != "" {
				q.Set("kind", filterKind)
			}
			if search != "" {
				q.Set("q", search)
			}
			q.Set("limit", strconv.Itoa(pageSize))
			q.Set("offset", strconv.Itoa(offset))

			var resp json.RawMessage
			if err := opts.client().do(cmd.Context(), http.MethodGet, "/api/v1/wallet/transactions?"+q.Encode(), nil, &resp, nil); err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	transactionsCmd.Flags().StringVar(&filterKind, "kind", "", "Comma-separated transaction types")
	transactionsCmd.Flags().StringVar(&search, "q", "", "Description search text")
	transactionsCmd.Flags().IntVar(&pageSize, "limit", 20, "Page size")
	transactionsCmd.Flags().IntVar(&offset, "offset", 0, "Page offset")

	cmd.AddCommand(showCmd, recordCmd, transactionsCmd)
	return cmd
}

func ledgerCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations (admin)",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				Consistent bool   `json:"consistent"`
				Detail     string `json:"detail"`
			}

			err := opts.client().do(cmd.Context(), http.MethodGet, "/api/v1/ledger/consistency", nil, &resp, nil)

			var apiErr *apiError
			if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
				_ = json.Unmarshal([]byte(apiErr.Body), &resp)
				return fmt.Errorf("consistency check FAILED: %s", resp.Detail)
			}

			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Consistency check PASSED")
			return nil
		},
	}

	reconcileCmd := &cobra.Command{
		Use:   "reconcile [account-id]",
		Short: "Reconcile one account, or every wallet when no ID is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/ledger/reconciliation"
			if len(args) == 1 {
				path = "/api/v1/accounts/" + url.PathEscape(args[0]) + "/reconciliation"
			}

			var resp json.RawMessage
			if err := opts.client().do(cmd.Context(), http.MethodGet, path, nil, &resp, nil); err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.AddCommand(consistencyCmd, reconcileCmd)
	return cmd
}

func migrateCmd() *cobra.Command {
	var databaseURL, migrationsPath string

	newMigrator := func() *postgres.Migrator {
		log := logger.New(logger.Config{Level: "info", Format: "console"})
		return postgres.NewMigrator(databaseURL, migrationsPath, log)
	}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL URL (env DATABASE_URL)")
	cmd.PersistentFlags().StringVar(&migrationsPath, "path", envOr("MIGRATIONS_PATH", "migrations"), "Migrations directory")

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return newMigrator().Up()
		},
	}

	var steps int
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return newMigrator().Down(steps)
		},
	}
	downCmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			version, dirty, err := newMigrator().Version()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %v)\n", version, dirty)
			return nil
		},
	}

	cmd.AddCommand(upCmd, downCmd, versionCmd)
	return cmd
}

// hashPasswordCmd prints a bcrypt hash, used to seed admin accounts.
func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for seeding an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcryptGenerate([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func kindList() string {
	names := make([]string, len(domain.TransactionKinds))
	for i, k := range domain.TransactionKinds {
		names[i] = string(k)
	}

	return strings.Join(names, ", ")
}
