package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/KeyIP-Renewals/pkg/errors"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(newMigrateUpCmd(), newMigrateDownCmd(), newMigrateStatusCmd(), newMigrateForceCmd())
	return cmd
}

func migrator(cmd *cobra.Command) (Migrator, error) {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return nil, err
	}
	if cliCtx.Deps == nil || cliCtx.Deps.Migrator == nil {
		return nil, errors.New(errors.ErrCodeServiceUnavailable, "migrator is not configured")
	}
	return cliCtx.Deps.Migrator, nil
}

func newMigrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := migrator(cmd)
			if err != nil {
				return err
			}
			if err := m.Up(); err != nil {
				return err
			}
			return printMigrationStatus(cmd, m)
		},
	}
}

func newMigrateDownCmd() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := migrator(cmd)
			if err != nil {
				return err
			}
			if err := m.Down(steps); err != nil {
				return err
			}
			return printMigrationStatus(cmd, m)
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	return cmd
}

func newMigrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the applied schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := migrator(cmd)
			if err != nil {
				return err
			}
			return printMigrationStatus(cmd, m)
		},
	}
}

func newMigrateForceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "force VERSION",
		Short: "Mark VERSION applied to clear a dirty schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil || version < 0 {
				return errors.InvalidParam(fmt.Sprintf("invalid version %q", args[0]))
			}
			m, err := migrator(cmd)
			if err != nil {
				return err
			}
			if err := m.Force(version); err != nil {
				return err
			}
			return printMigrationStatus(cmd, m)
		},
	}
}

// MigrationStatus is the schema version report.
type MigrationStatus struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

func (s MigrationStatus) String() string {
	if s.Dirty {
		return fmt.Sprintf("schema version %d (dirty)", s.Version)
	}
	return fmt.Sprintf("schema version %d", s.Version)
}

func printMigrationStatus(cmd *cobra.Command, m Migrator) error {
	version, dirty, err := m.Status()
	if err != nil {
		return err
	}
	return PrintResult(cmd, MigrationStatus{Version: version, Dirty: dirty})
}

//Personal.AI order the ending
