package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role is the operator role carried in the access token.
type Role string

const (
	RoleCashier Role = "cashier"
	RoleManager Role = "manager"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleCashier, RoleManager:
		return true
	}
	return false
}

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	CashierID uuid.UUID
	StoreID   string
	Role      Role
}

// AccessTokenClaims represents the typed JWT issued to a till operator.
type AccessTokenClaims struct {
	CashierID uuid.UUID `json:"cashier_id"`
	StoreID   string    `json:"store_id"`
	Role      Role      `json:"role"`
	jwt.RegisteredClaims
}
