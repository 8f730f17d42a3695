package devserver

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWT signs and checks the session cookie.
type JWT struct {
	secret []byte
	exp    time.Duration
}

// Claims carries the principal inside the session cookie.
type Claims struct {
	jwt.RegisteredClaims
	Permissions []string `json:"perms,omitempty"`
}

func NewJWT(secret string, exp time.Duration) *JWT {
	return &JWT{secret: []byte(secret), exp: exp}
}

// Generate creates a signed token for username.
func (j *JWT) Generate(username string, perms []string) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(j.exp)),
		},
		Permissions: perms,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

// Validate parses and validates the token returning its claims.
func (j *JWT) Validate(tok string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tok, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return j.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
