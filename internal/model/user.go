package model

import (
	"github.com/golang-jwt/jwt/v5"
)

const (
	RolePlayer = "player"
)

type UserClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}
