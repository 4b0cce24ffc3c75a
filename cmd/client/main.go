package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/iudanet/cvagent/internal/client/cli"
	"github.com/iudanet/cvagent/internal/client/iocli"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// .env необязателен
	_ = godotenv.Load()

	// Ctrl+C отменяет текущую команду, в том числе прогон оптимизации
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stdio := iocli.NewStdio()
	build := func(ctx context.Context, cfg cli.Config) (*cli.Cli, func() error, error) {
		return cli.Bootstrap(ctx, cfg, stdio)
	}

	version := fmt.Sprintf("%s (built %s, commit %s)", Version, BuildDate, GitCommit)
	cmd := cli.NewRootCommand(cli.NewViper(), build, version)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
