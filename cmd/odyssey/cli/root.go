// Package cli implements journalctl, the operator command line for the
// journal service.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-journals/internal/app"
	platformdb "github.com/odyssey-erp/odyssey-journals/internal/platform/db"
)

// ExitError carries a process exit code through cobra.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// NewRootCommand builds the journalctl command tree.
func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "journalctl",
		Short:         "Operate the Odyssey journal service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.AddCommand(newValidateCommand(), newJobsCommand(), newMigrateCommand())
	return root
}

func newValidateCommand() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a journal entry file without a database",
		Long: `Validate reads a journal entry in the shape accepted by POST /api/v1/journals
and reports line failures and the balance. Use - to read standard input.

Exit status is 0 for a valid balanced entry, 10 for an invalid or
unbalanced entry and 1 for unreadable input.`,
		Example: `  journalctl validate entry.json
  journalctl validate --json entry.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := ValidateCommand(ValidateOptions{
				Path:       args[0],
				JSONOutput: jsonOutput,
				Stdin:      cmd.InOrStdin(),
				Stdout:     cmd.OutOrStdout(),
				Stderr:     cmd.ErrOrStderr(),
			})
			if code != ExitOK {
				return &ExitError{Code: code}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the result as JSON")
	return cmd
}

func newJobsCommand() *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and trigger background jobs",
	}

	var orgID, periodID string
	trigger := &cobra.Command{
		Use:   "trigger <task>",
		Short: "Enqueue journal:gl_integrity, journal:ledger_refresh or journal:idempotency_purge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := jobsClient()
			if err != nil {
				return err
			}
			defer c.Close()
			info, err := c.Trigger(cmd.Context(), args[0], orgID, periodID)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
			return nil
		},
	}
	trigger.Flags().StringVar(&orgID, "org", "", "organisation for ledger refresh")
	trigger.Flags().StringVar(&periodID, "period", "", "fiscal period for ledger refresh")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Print default queue statistics as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := jobsClient()
			if err != nil {
				return err
			}
			defer c.Close()
			s, err := c.InspectQueue(cmd.Context())
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(s)
		},
	}

	var size int
	scheduled := &cobra.Command{
		Use:   "scheduled",
		Short: "List scheduled tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := jobsClient()
			if err != nil {
				return err
			}
			defer c.Close()
			tasks, err := c.ListScheduled(cmd.Context(), size)
			if err != nil {
				return err
			}
			for _, t := range tasks {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", t.ID, t.Type, t.NextProcessAt.Format("2006-01-02T15:04:05Z07:00"))
			}
			return nil
		},
	}
	scheduled.Flags().IntVar(&size, "size", 10, "page size")

	jobsCmd.AddCommand(trigger, stats, scheduled)
	return jobsCmd
}

func jobsClient() (*JobsCLI, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, err
	}
	return NewJobsCLI(cfg.QueueRedis()), nil
}

func newMigrateCommand() *cobra.Command {
	var source string
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runMigrations(source, 0)
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migrations",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if steps <= 0 {
				return errors.New("--steps must be positive")
			}
			return runMigrations(source, -steps)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	migrateCmd.PersistentFlags().StringVar(&source, "source", "", "migration source URL (default MIGRATIONS_SOURCE)")
	migrateCmd.AddCommand(up, down)
	return migrateCmd
}

func runMigrations(source string, steps int) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	if source == "" {
		source = cfg.MigrationsSource
	}
	return platformdb.Migrate(cfg.PGDSN, source, steps, app.NewLogger(cfg))
}
