package entity

import "github.com/golang-jwt/jwt/v5"

// Claims are the claims carried by legacy locally issued access tokens.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}
