// Package cli implements renewalctl, the operator command line for the
// renewals service.  Commands call the application services in-process; the
// binary opens its own database, cache and broker connections through the
// DependencyFactory handed to NewRootCommand.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	appCurrency "github.com/turtacn/KeyIP-Renewals/internal/application/currency"
	appRenewal "github.com/turtacn/KeyIP-Renewals/internal/application/renewal"
	"github.com/turtacn/KeyIP-Renewals/internal/config"
	domainCurrency "github.com/turtacn/KeyIP-Renewals/internal/domain/currency"
	domainPortfolio "github.com/turtacn/KeyIP-Renewals/internal/domain/portfolio"
	domainRenewal "github.com/turtacn/KeyIP-Renewals/internal/domain/renewal"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Renewals/pkg/errors"
)

// Build metadata, injected by cmd/renewalctl.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

type cliContextKey struct{}

// ─────────────────────────────────────────────────────────────────────────────
// Service contracts
// ─────────────────────────────────────────────────────────────────────────────

// RenewalService is the slice of *appRenewal.Service the CLI drives.
type RenewalService interface {
	IngestMatterRenewals(ctx context.Context, req appRenewal.IngestRequest) ([]*domainRenewal.Renewal, error)
	ApplyInstructions(ctx context.Context, userID string, updates []domainRenewal.InstructionUpdate) ([]*domainRenewal.Renewal, error)
	GetPortfolioPayTotal(ctx context.Context, userID string, portfolioID int64) (*appRenewal.PayTotal, error)
	GetRenewalBhipPrice(ctx context.Context, userID string, renewalID int64) (*domainPortfolio.Resolution, error)
	RefreshPrices(ctx context.Context) (*appRenewal.RefreshResult, error)
}

// CurrencyService is the slice of *appCurrency.Service the CLI drives.
type CurrencyService interface {
	List(ctx context.Context) (*domainCurrency.Table, error)
	ImportRates(ctx context.Context, inputs []appCurrency.RateInput) (*domainCurrency.Table, error)
}

// Migrator is satisfied by *postgres.Migrator.
type Migrator interface {
	Up() error
	Down(steps int) error
	Status() (version uint, dirty bool, err error)
	Force(version int) error
}

// CommandDependencies are the services subcommands run against.  A nil field
// makes the commands that need it fail with a clear error.
type CommandDependencies struct {
	Renewals   RenewalService
	Currencies CurrencyService
	Migrator   Migrator
}

// DependencyFactory opens the connections behind CommandDependencies once
// config and logger are known.  The returned cleanup runs after the command.
type DependencyFactory func(ctx context.Context, cfg *config.Config, logger logging.Logger) (*CommandDependencies, func(), error)

// ─────────────────────────────────────────────────────────────────────────────
// Root command
// ─────────────────────────────────────────────────────────────────────────────

// RootOptions holds the persistent flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Verbose      bool
	Timeout      time.Duration
}

// CLIContext is attached to the command context by the root pre-run.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	Deps         *CommandDependencies
	OutputFormat string
	Timeout      time.Duration

	cleanup func()
}

// NewRootCommand builds renewalctl with every subcommand registered.
func NewRootCommand(factory DependencyFactory) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "renewalctl",
		Short:   "Operate the patent renewals service",
		Long:    "renewalctl ingests provider renewals, records instructions, reports pay totals\nand maintains the currency rate table behind renewal pricing.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return persistentPreRun(cmd, opts, factory)
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if cliCtx, err := GetCLIContext(cmd); err == nil && cliCtx.cleanup != nil {
				cliCtx.cleanup()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: KEYIP_* environment)")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json, table)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")
	pf.DurationVar(&opts.Timeout, "timeout", 60*time.Second, "per-command timeout")

	cmd.AddCommand(
		newRenewalCmd(),
		newCurrencyCmd(),
		newMigrateCmd(),
	)
	return cmd
}

func persistentPreRun(cmd *cobra.Command, opts *RootOptions, factory DependencyFactory) error {
	switch strings.ToLower(opts.OutputFormat) {
	case "text", "json", "table":
	default:
		return errors.InvalidParam(fmt.Sprintf("unsupported output format %q", opts.OutputFormat))
	}

	cfg, err := config.LoadOrEnv(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger, err := initLogger(cfg, opts)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		Deps:         &CommandDependencies{},
		OutputFormat: strings.ToLower(opts.OutputFormat),
		Timeout:      opts.Timeout,
	}
	if factory != nil {
		deps, cleanup, err := factory(cmd.Context(), cfg, logger)
		if err != nil {
			return fmt.Errorf("dependency initialization failed: %w", err)
		}
		if deps != nil {
			cliCtx.Deps = deps
		}
		cliCtx.cleanup = cleanup
	}

	cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey{}, cliCtx))
	return nil
}

func initLogger(cfg *config.Config, opts *RootOptions) (logging.Logger, error) {
	level := opts.LogLevel
	if opts.Verbose {
		level = "debug"
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		Service:          cfg.Log.Service,
	})
}

// GetCLIContext returns the context attached by the root pre-run.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New(errors.ErrCodeValidation, "command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.New(errors.ErrCodeValidation, "CLIContext not found in command context")
	}
	return cliCtx, nil
}

// commandContext bounds one command run by --timeout.
func commandContext(cmd *cobra.Command, cliCtx *CLIContext) (context.Context, context.CancelFunc) {
	if cliCtx.Timeout <= 0 {
		return context.WithCancel(cmd.Context())
	}
	return context.WithTimeout(cmd.Context(), cliCtx.Timeout)
}

// Execute runs renewalctl against os.Args.
func Execute(factory DependencyFactory) error {
	rootCmd := NewRootCommand(factory)
	if err := rootCmd.Execute(); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Output
// ─────────────────────────────────────────────────────────────────────────────

type tableProvider interface {
	TableHeaders() []string
	TableRows() [][]string
}

// PrintResult renders data in the selected --output format.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	format := "text"
	if cliCtx, err := GetCLIContext(cmd); err == nil {
		format = cliCtx.OutputFormat
	}
	out := cmd.OutOrStdout()

	switch format {
	case "json":
		return printJSON(out, data)
	case "table":
		if tp, ok := data.(tableProvider); ok {
			_, err := io.WriteString(out, FormatTable(tp.TableHeaders(), tp.TableRows()))
			return err
		}
		return printText(out, data)
	default:
		return printText(out, data)
	}
}

func printJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printText(w io.Writer, data interface{}) error {
	switch v := data.(type) {
	case string:
		_, err := fmt.Fprintln(w, v)
		return err
	case fmt.Stringer:
		_, err := fmt.Fprintln(w, v.String())
		return err
	case tableProvider:
		_, err := io.WriteString(w, FormatTable(v.TableHeaders(), v.TableRows()))
		return err
	default:
		_, err := fmt.Fprintf(w, "%+v\n", v)
		return err
	}
}

// PrintError writes err to stderr.  Application errors show their code.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	if code := errors.GetCode(err); code != errors.CodeUnknown && code != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error [%s]: %s\n", code, err.Error())
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
}

// FormatTable aligns rows under headers with two-space gutters.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = len(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(colWidths); i++ {
			if len(row[i]) > colWidths[i] {
				colWidths[i] = len(row[i])
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i := range headers {
			val := ""
			if i < len(cells) {
				val = cells[i]
			}
			if i == len(headers)-1 {
				sb.WriteString(val)
				break
			}
			sb.WriteString(padRight(val, colWidths[i]))
			sb.WriteString("  ")
		}
		sb.WriteString("\n")
	}

	writeRow(headers)
	seps := make([]string, len(colWidths))
	for i, w := range colWidths {
		seps[i] = strings.Repeat("-", w)
	}
	writeRow(seps)
	for _, row := range rows {
		writeRow(row)
	}
	return sb.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

//Personal.AI order the ending
