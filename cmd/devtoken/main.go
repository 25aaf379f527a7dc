package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"tetrabet_backend/internal/config"
	"tetrabet_backend/internal/config/env"
	"tetrabet_backend/internal/model"
	"tetrabet_backend/pkg/token"
)

// devtoken - выпускает access token игрока для локальной отладки
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	envFlag := flag.String("env", ".env", "path to the .env file")
	userFlag := flag.Int("user", 1, "player id to put into the token")
	flag.Parse()

	if err := config.Load(*envFlag); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	cfg, err := env.NewJWTConfig()
	if err != nil {
		return err
	}

	tok, err := token.GenerateAccessToken(*userFlag, model.RolePlayer, cfg.AccessTokenSecretKey(), cfg.AccessTokenDuration())
	if err != nil {
		return err
	}

	fmt.Println(tok)
	return nil
}
