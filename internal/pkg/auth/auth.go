package auth

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/golang-jwt/jwt/v5"

	"github.com/wanpass/wanpass/app/models"
	"github.com/wanpass/wanpass/app/repository"
	"github.com/wanpass/wanpass/internal/pkg/env"
)

// AccessTokenTTL is how long an operator bearer token stays valid.
const AccessTokenTTL = 24 * time.Hour

func secret() []byte {
	return []byte(env.GetEnv("JWT_SECRET", "wanpass-secret-change-in-production"))
}

// CreateAccessToken issues a signed bearer token for an operator.
func CreateAccessToken(username string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   username,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(AccessTokenTTL)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret())
}

// ParseAccessToken validates a bearer token and returns the operator
// username it was issued to.
func ParseAccessToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret(), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return claims.Subject, nil
}

// EnsureInitialAdmin creates the bootstrap operator account when none
// exists. Credentials come from ADMIN_USERNAME / ADMIN_PASSWORD.
func EnsureInitialAdmin(repo repository.AdminRepository) error {
	count, err := repo.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	username := env.GetEnv("ADMIN_USERNAME", "admin")
	password := env.GetEnv("ADMIN_PASSWORD", "admin123")

	admin := &models.Admin{Username: username}
	if err := admin.SetPassword(password); err != nil {
		return err
	}
	if err := repo.Create(admin); err != nil {
		return err
	}

	log.Infof("[Auth] Initial admin account created: %s", username)
	return nil
}
