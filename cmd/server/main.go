package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"tetrabet_backend/internal/app"
	"tetrabet_backend/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	envFlag := flag.String("env", ".env", "path to the .env file")
	configFlag := flag.String("config", "config.yaml", "path to the engine YAML config")
	migrateFlag := flag.Bool("migrate", false, "run database migrations before serving (or set PG_RUN_MIGRATIONS=true)")
	verboseFlag := flag.Bool("verbose", false, "enable verbose (debug) logging")
	flag.Parse()

	log := logger.New(*verboseFlag)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.NewApp(log, app.Options{
		EnvPath:    *envFlag,
		ConfigPath: *configFlag,
		Migrate:    *migrateFlag,
	})
	return a.Run(ctx)
}
