package env

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"tetrabet_backend/internal/config"
)

const (
	dsnName           = "PG_DSN"
	runMigrationsName = "PG_RUN_MIGRATIONS"
)

type pgConfig struct {
	dsn           string
	runMigrations bool
}

func NewPGConfig() (config.PGConfig, error) {
	dsn := os.Getenv(dsnName)
	if len(dsn) == 0 {
		return nil, errors.New("pg dsn not found")
	}

	var runMigrations bool
	if v := os.Getenv(runMigrationsName); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", runMigrationsName, err)
		}
		runMigrations = parsed
	}

	return &pgConfig{
		dsn:           dsn,
		runMigrations: runMigrations,
	}, nil
}

func (cfg *pgConfig) DSN() string {
	return cfg.dsn
}

func (cfg *pgConfig) RunMigrations() bool {
	return cfg.runMigrations
}
