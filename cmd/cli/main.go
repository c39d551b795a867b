package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/campuscoins/coinledger/internal/domain"
	"github.com/campuscoins/coinledger/internal/infrastructure/auth"
	"github.com/campuscoins/coinledger/internal/infrastructure/config"
	"github.com/campuscoins/coinledger/internal/infrastructure/postgres"
)

var (
	baseURL string
	token   string
	timeout time.Duration
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "coinctl",
		Short:         "Campus coin ledger CLI",
		Long:          `A command line interface for operating the coin ledger API and database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the coin ledger API")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("COINCTL_TOKEN"), "Bearer token for authenticated deployments")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}
	ledgerCmd.AddCommand(consistencyCmd(), reconcileCmd())

	rootCmd.AddCommand(ledgerCmd, balanceCmd(), leaderboardCmd(), tokenCmd(), migrateCmd())

	return rootCmd
}

func consistencyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consistency",
		Short: "Check that balances match the sum of ledger entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			var report struct {
				Consistent       bool  `json:"consistent"`
				TotalBalance     int64 `json:"total_balance"`
				TotalEntryAmount int64 `json:"total_entry_amount"`
				Difference       int64 `json:"difference"`
				Discrepancies    []struct {
					AccountID       string `json:"account_id"`
					RecordedBalance int64  `json:"recorded_balance"`
					EntrySum        int64  `json:"entry_sum"`
				} `json:"discrepancies"`
			}

			status, err := getJSON("/api/v1/ledger/consistency", &report)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if status == http.StatusOK && report.Consistent {
				fmt.Fprintf(out, "Consistency check PASSED (balances %d, entries %d)\n", report.TotalBalance, report.TotalEntryAmount)
				return nil
			}

			fmt.Fprintf(out, "Consistency check FAILED (difference %d)\n", report.Difference)
			for _, d := range report.Discrepancies {
				fmt.Fprintf(out, "  %s: recorded %d, entries %d\n", truncate(d.AccountID, 32), d.RecordedBalance, d.EntrySum)
			}

			return fmt.Errorf("ledger inconsistent")
		},
	}
}

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile <account-id>",
		Short: "Recompute one account balance from its entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result map[string]any
			if _, err := getJSON("/api/v1/accounts/"+url.PathEscape(args[0])+"/reconciliation", &result); err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <account-id>",
		Short: "Show an account balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var balance map[string]any
			if _, err := getJSON("/api/v1/accounts/"+url.PathEscape(args[0])+"/balance", &balance); err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), balance)
		},
	}
}

func leaderboardCmd() *cobra.Command {
	var scope string
	var limit int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the top balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if scope != "" {
				q.Set("scope", scope)
			}
			q.Set("limit", fmt.Sprint(limit))

			var page struct {
				Data []struct {
					Rank      int    `json:"rank"`
					AccountID string `json:"account_id"`
					Balance   int64  `json:"balance"`
				} `json:"data"`
			}
			if _, err := getJSON("/api/v1/leaderboard?"+q.Encode(), &page); err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RANK\tACCOUNT\tBALANCE")
			for _, e := range page.Data {
				fmt.Fprintf(w, "%d\t%s\t%d\n", e.Rank, truncate(e.AccountID, 24), e.Balance)
			}

			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "", "Restrict to one campus or group")
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of rows")

	return cmd
}

func tokenCmd() *cobra.Command {
	var secret, role string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <account-id>",
		Short: "Mint a bearer token signed with JWT_SECRET",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret or JWT_SECRET is required")
			}

			r := domain.Role(role)
			if r != domain.RoleMember && r != domain.RoleAdmin {
				return fmt.Errorf("unknown role %q", role)
			}

			signed, err := auth.NewJWTManager(secret, ttl).Generate(args[0], r)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "Signing secret")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleMember), "member or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")

	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect database migrations (reads DATABASE_URL and MIGRATIONS_PATH)",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				return postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				return postgres.RunMigrationsDown(cfg.DatabaseURL, cfg.MigrationsPath)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load()
				if err != nil {
					return err
				}

				version, dirty, err := postgres.MigrationVersion(cfg.DatabaseURL, cfg.MigrationsPath)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %v)\n", version, dirty)
				return nil
			},
		},
	)

	return cmd
}

// getJSON decodes the response into out. Non-2xx responses other than a failed
// consistency check (409) are returned as errors.
func getJSON(path string, out any) (int, error) {
	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	if err != nil {
		return 0, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}

	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusConflict {
		return resp.StatusCode, fmt.Errorf("request failed (status %d): %s", resp.StatusCode, truncate(string(body), 200))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to parse response: %w", err)
	}

	return resp.StatusCode, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
