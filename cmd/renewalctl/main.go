// Command renewalctl is the operator CLI for the renewals service.
package main

import (
	"context"
	"os"

	"github.com/turtacn/KeyIP-Renewals/internal/bootstrap"
	"github.com/turtacn/KeyIP-Renewals/internal/config"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Renewals/internal/interfaces/cli"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

const eventSource = "renewalctl"

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	if err := cli.Execute(openDependencies); err != nil {
		os.Exit(1)
	}
}

// openDependencies connects to the stores named in cfg and builds the
// services the commands drive.
func openDependencies(ctx context.Context, cfg *config.Config, logger logging.Logger) (*cli.CommandDependencies, func(), error) {
	infra, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	services, err := bootstrap.BuildServices(cfg, infra, eventSource, logger)
	if err != nil {
		infra.Close()
		return nil, nil, err
	}
	migrator, err := infra.Migrator(cfg)
	if err != nil {
		infra.Close()
		return nil, nil, err
	}
	return &cli.CommandDependencies{
		Renewals:   services.Renewals,
		Currencies: services.Currencies,
		Migrator:   migrator,
	}, infra.Close, nil
}

//Personal.AI order the ending
