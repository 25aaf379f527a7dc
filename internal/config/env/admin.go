package env

import (
	"errors"
	"fmt"
	"os"

	"tetrabet_backend/internal/config"

	"golang.org/x/crypto/bcrypt"
)

const adminKeyHashEnvName = "ADMIN_KEY_HASH"

type adminConfig struct {
	keyHash []byte
}

func NewAdminConfig() (config.AdminConfig, error) {
	hash := os.Getenv(adminKeyHashEnvName)
	if len(hash) == 0 {
		return nil, errors.New("admin key hash not found")
	}

	// проверяем, что это действительно bcrypt-хэш
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", adminKeyHashEnvName, err)
	}

	return &adminConfig{
		keyHash: []byte(hash),
	}, nil
}

func (cfg *adminConfig) KeyHash() []byte {
	return cfg.keyHash
}
