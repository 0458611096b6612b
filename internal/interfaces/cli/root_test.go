package cli

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Renewals/internal/config"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Renewals/pkg/errors"
)

func TestNewRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand(nil)
	assert.Equal(t, "renewalctl", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.Contains(t, cmd.Version, Version)

	names := map[string]*cobra.Command{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = sub
	}
	for _, want := range []string{"renewal", "currency", "migrate"} {
		assert.Contains(t, names, want)
	}

	var renewalSubs []string
	for _, sub := range names["renewal"].Commands() {
		renewalSubs = append(renewalSubs, sub.Name())
	}
	assert.ElementsMatch(t, []string{"ingest", "instruct", "pay-total", "bhip", "refresh-prices"}, renewalSubs)

	for _, flag := range []string{"config", "log-level", "output", "verbose", "timeout"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestRoot_RejectsUnknownOutputFormat(t *testing.T) {
	_, err := runCLI(t, &CommandDependencies{}, "", "-o", "yaml", "migrate", "status")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestRoot_FactoryErrorStopsCommand(t *testing.T) {
	root := NewRootCommand(func(context.Context, *config.Config, logging.Logger) (*CommandDependencies, func(), error) {
		return nil, nil, fmt.Errorf("postgres unreachable")
	})
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--log-level", "error", "migrate", "status"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres unreachable")
}

func TestRoot_CleanupRunsAfterCommand(t *testing.T) {
	m := new(mockMigrator)
	m.On("Status").Return(uint(3), false, nil)
	cleaned := false

	root := NewRootCommand(func(context.Context, *config.Config, logging.Logger) (*CommandDependencies, func(), error) {
		return &CommandDependencies{Migrator: m}, func() { cleaned = true }, nil
	})
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--log-level", "error", "migrate", "status"})

	require.NoError(t, root.Execute())
	assert.True(t, cleaned)
}

func TestRoot_MissingServiceIsUnavailable(t *testing.T) {
	_, err := runCLI(t, &CommandDependencies{}, "", "currency", "list")
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))

	_, err = runCLI(t, &CommandDependencies{}, "", "renewal", "refresh-prices")
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))

	_, err = runCLI(t, &CommandDependencies{}, "", "migrate", "up")
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))
}

func TestPrintError_ShowsCode(t *testing.T) {
	cmd := &cobra.Command{}
	var buf bytes.Buffer
	cmd.SetErr(&buf)

	PrintError(cmd, errors.Forbidden("no access"))
	assert.Contains(t, buf.String(), "Error [COMMON_004]")

	buf.Reset()
	PrintError(cmd, fmt.Errorf("plain"))
	assert.Equal(t, "Error: plain\n", buf.String())

	buf.Reset()
	PrintError(cmd, nil)
	assert.Empty(t, buf.String())
}

func TestFormatTable(t *testing.T) {
	out := FormatTable([]string{"A", "LONGER"}, [][]string{{"wide-cell", "x"}, {"y"}})
	assert.Equal(t, "A          LONGER\n---------  ------\nwide-cell  x\ny          \n", out)
	assert.Empty(t, FormatTable(nil, nil))
}

//Personal.AI order the ending
