package models

import "github.com/golang-jwt/jwt/v5"

// UserClaims is the JWT payload supplied by the auth collaborator. The
// ledger and report services only ever consume UserID and Role from it.
type UserClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
