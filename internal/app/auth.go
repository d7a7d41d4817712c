// internal/app/auth.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/kardemumma/kardemumma/internal/models"
)

const (
	timeFormat        = "2006-01-02 15:04:05"
	defaultSessionTpl = "kdm:session:{jti}"
)

type Claims struct {
	AdminID int64  `json:"aid"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

// AdminContext is the authenticated identity scoring writes are attributed to.
type AdminContext struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Auth signs and verifies admin tokens. When enable_auth is on, every issued
// token also gets a redis session record keyed by its jti, so logout can
// revoke a token before it expires. With it off, tokens are verified by
// signature alone.
type Auth struct {
	secret      []byte
	cookieName  string
	ttl         time.Duration
	redis       *redis.Client
	keyTemplate string
}

func NewAuth(config *Config) (*Auth, error) {
	a := &Auth{
		secret:     []byte(config.Auth.JWTSecret),
		cookieName: config.Auth.CookieName,
		ttl:        time.Duration(config.Auth.TokenTTLHours) * time.Hour,
	}

	if !config.Server.EnableAuth {
		return a, nil
	}

	opt, err := redis.ParseURL(config.Auth.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	a.redis = client
	a.keyTemplate = config.Auth.SessionKeyTemplate
	if a.keyTemplate == "" {
		a.keyTemplate = defaultSessionTpl
	}
	return a, nil
}

func (a *Auth) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

func (a *Auth) CookieName() string { return a.cookieName }
func (a *Auth) TTL() time.Duration { return a.ttl }

func (a *Auth) sessionKey(jti string) string {
	return strings.NewReplacer("{jti}", jti).Replace(a.keyTemplate)
}

// Issue signs a token for the admin and records its session.
func (a *Auth) Issue(ctx context.Context, admin *models.Admin) (string, error) {
	now := time.Now().UTC()
	jti := uuid.NewString()

	claims := Claims{
		AdminID: admin.ID,
		Name:    admin.Name,
		Email:   admin.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	if a.redis != nil {
		key := a.sessionKey(jti)
		pipe := a.redis.Pipeline()
		pipe.HSet(ctx, key, map[string]interface{}{
			"admin_id":         admin.ID,
			"email":            admin.Email,
			"created_dttm_utc": now.Format(timeFormat),
		})
		pipe.Expire(ctx, key, a.ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			return "", fmt.Errorf("failed to record session: %w", err)
		}
	}

	return token, nil
}

// Revoke drops the session record for a token. A no-op when sessions are off
// or the token no longer parses.
func (a *Auth) Revoke(ctx context.Context, rawToken string) error {
	if a.redis == nil || rawToken == "" {
		return nil
	}
	claims, err := a.parse(rawToken)
	if err != nil {
		return nil
	}
	if err := a.redis.Del(ctx, a.sessionKey(claims.ID)).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (a *Auth) parse(rawToken string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(rawToken, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// TokenFromRequest prefers the auth cookie, falling back to a bearer header.
func (a *Auth) TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(a.cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// Authenticate resolves the admin identity for a request, checking the redis
// session record when sessions are enabled.
func (a *Auth) Authenticate(ctx context.Context, r *http.Request) (*AdminContext, error) {
	rawToken := a.TokenFromRequest(r)
	if rawToken == "" {
		return nil, ErrAuthRequired
	}

	claims, err := a.parse(rawToken)
	if err != nil {
		logger.Debug.Printf("Token parse failed: %v", err)
		return nil, ErrAuthRequired
	}

	if a.redis != nil {
		exists, err := a.redis.Exists(ctx, a.sessionKey(claims.ID)).Result()
		if err != nil {
			return nil, fmt.Errorf("redis error: %w", err)
		}
		if exists == 0 {
			logger.Debug.Printf("Session not found for jti %s", claims.ID)
			return nil, ErrAuthRequired
		}
	}

	return &AdminContext{
		ID:    claims.AdminID,
		Name:  claims.Name,
		Email: claims.Email,
	}, nil
}

// HashPassword produces a bcrypt hash for storage on the admin row.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
