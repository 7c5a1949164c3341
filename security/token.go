package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rodrigoinhaia/DiinPonto/core/models"
)

// Identity is the claim set carried by a session token.
type Identity struct {
	UserID     string      `json:"uid"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	EmployeeID string      `json:"employeeId"`
	Role       models.Role `json:"role"`
}

// IdentityClaims includes Identity and standard JWT claims
type IdentityClaims struct {
	Identity
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid or expired token")

// CreateIdentityToken signs an HS256 session token for the user.
func CreateIdentityToken(identity *Identity, secret []byte, expiresIn time.Duration) (string, error) {
	claims := IdentityClaims{
		Identity: *identity,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "diinponto",
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseIdentityToken validates the signature and expiry and returns the
// embedded identity claims.
func ParseIdentityToken(tokenStr string, secret []byte) (*IdentityClaims, error) {
	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IdentityOf builds the claim set for a user row.
func IdentityOf(user *models.User) *Identity {
	return &Identity{
		UserID:     user.ID,
		Name:       user.Name,
		Email:      user.Email,
		EmployeeID: user.EmployeeID,
		Role:       user.Role,
	}
}
