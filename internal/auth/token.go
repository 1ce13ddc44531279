package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the bearer token lifetime: 100 days from issuance.
const TokenTTL = 100 * 24 * time.Hour

// Claims is the signed claims set carried by every bearer token: subject
// is the account email, scope the list of role labels without the
// authority prefix, and id the numeric account id.
type Claims struct {
	Scope     []string `json:"scope"`
	AccountID uint64   `json:"id"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and parses bearer tokens with a symmetric HS512 key.
type TokenIssuer struct {
	secret []byte
}

func NewTokenIssuer(secret []byte) (*TokenIssuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: empty JWT secret")
	}
	return &TokenIssuer{secret: secret}, nil
}

// Issue builds and signs the claims set for a freshly authenticated
// account.
func (s *TokenIssuer) Issue(email string, accountID uint64, scopes []string) (string, error) {
	now := time.Now()

	c := Claims{
		Scope:     scopes,
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature and expiry of a bearer token and returns
// its claims. Tokens signed with anything but HS512 are rejected.
func (s *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS512"}),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
