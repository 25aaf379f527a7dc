package config

import (
	"time"

	"tetrabet_backend/internal/model"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func Load(path string) error {
	err := godotenv.Load(path)
	if err != nil {
		return err
	}
	return nil
}

type HTTPConfig interface {
	Address() string
}

type PGConfig interface {
	DSN() string
	RunMigrations() bool
}

type JWTConfig interface {
	AccessTokenSecretKey() []byte
	AccessTokenDuration() time.Duration
}

type AdminConfig interface {
	// KeyHash - bcrypt-хэш ключа операторской консоли
	KeyHash() []byte
}

// DemoParams - параметры демо-режима
type DemoParams struct {
	ReferenceScore int64
	Multiplier     decimal.Decimal
	// Доля от ставки, которую демо-игрок может выиграть при множителе 1
	GainRate decimal.Decimal
}

// RateLimit - ограничение запросов игрока по IP
type RateLimit struct {
	PerMinute int
	Burst     int
}

type EngineConfig interface {
	// DefaultEconomics - конфигурация, которую сохраняем, если в хранилище пусто
	DefaultEconomics() model.EconomicConfig
	ShareBands() model.ShareBands
	MaxBatchGames() int
	ClaimAttempts() int
	Demo() DemoParams
	RateLimit() RateLimit
}
