// Package auth issues and validates bearer tokens for the quiz API.
//
// Tokens are HS256 JWTs with an 8 hour default lifetime. Every issued token
// is additionally recorded as a session row keyed by the SHA-256 hash of the
// token, so revocation (logout, purge) works without a token denylist.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ai-quizzer/quizzer/internal/app/domain/user"
	"github.com/ai-quizzer/quizzer/internal/app/storage"
	"github.com/ai-quizzer/quizzer/pkg/logger"
)

// ErrInvalidCredentials is returned when a password check fails.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidToken is returned for malformed, expired or revoked tokens.
var ErrInvalidToken = errors.New("invalid token")

// Config carries token issuance parameters.
type Config struct {
	Secret   []byte
	TokenTTL time.Duration
	Issuer   string
}

// Claims is the JWT payload. Subject carries the username, UserID the
// storage identifier.
type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// Token is the response of a successful login.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Service implements registration, login and token validation.
type Service struct {
	users    storage.UserStore
	sessions storage.SessionStore
	cfg      Config
	log      *logger.Logger
	now      func() time.Time
}

// New constructs an auth service.
func New(users storage.UserStore, sessions storage.SessionStore, cfg Config, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("auth")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 8 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "ai-quizzer"
	}
	return &Service{users: users, sessions: sessions, cfg: cfg, log: log, now: time.Now}
}

// Register creates an account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, username, password string) (user.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return user.User{}, fmt.Errorf("username is required")
	}
	if password == "" {
		return user.User{}, fmt.Errorf("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.users.CreateUser(ctx, user.User{Username: username, PasswordHash: string(hash)})
	if err != nil {
		return user.User{}, err
	}
	s.log.Infof("user %s registered", created.ID)
	return created, nil
}

// Login issues a token for the given credentials. Unknown usernames are
// auto-provisioned on first login; accounts that registered with a password
// must present it.
func (s *Service) Login(ctx context.Context, username, password string) (Token, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Token{}, fmt.Errorf("username is required")
	}

	u, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		u, err = s.provision(ctx, username, password)
		if err != nil {
			return Token{}, err
		}
	} else if u.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
			return Token{}, ErrInvalidCredentials
		}
	}

	return s.issue(ctx, u)
}

// Validate checks the token signature, expiry and session liveness, and
// returns the owning user.
func (s *Service) Validate(ctx context.Context, token string) (user.User, error) {
	claims, err := s.parse(token)
	if err != nil {
		return user.User{}, err
	}

	sess, err := s.sessions.GetSessionByTokenHash(ctx, HashToken(token))
	if err != nil {
		return user.User{}, ErrInvalidToken
	}
	if sess.ExpiresAt.Before(s.now()) {
		return user.User{}, ErrInvalidToken
	}

	u, err := s.users.GetUser(ctx, claims.UserID)
	if err != nil {
		return user.User{}, ErrInvalidToken
	}
	return u, nil
}

// Logout revokes the session backing the token. Unknown tokens are not an
// error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.sessions.DeleteSession(ctx, HashToken(token)); err != nil {
		s.log.WithError(err).Debugf("logout for unknown session")
	}
	return nil
}

// PurgeExpired removes sessions whose expiry has passed.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpiredSessions(ctx, s.now())
}

func (s *Service) provision(ctx context.Context, username, password string) (user.User, error) {
	u := user.User{Username: username}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return user.User{}, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = string(hash)
	}
	created, err := s.users.CreateUser(ctx, u)
	if err != nil {
		return user.User{}, fmt.Errorf("provision user: %w", err)
	}
	s.log.Infof("user %s auto-provisioned on login", created.ID)
	return created, nil
}

func (s *Service) issue(ctx context.Context, u user.User) (Token, error) {
	now := s.now()
	expires := now.Add(s.cfg.TokenTTL)

	claims := &Claims{
		UserID: u.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.cfg.Issuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}

	_, err = s.sessions.CreateSession(ctx, user.Session{
		UserID:    u.ID,
		TokenHash: HashToken(signed),
		ExpiresAt: expires,
	})
	if err != nil {
		return Token{}, fmt.Errorf("create session: %w", err)
	}

	return Token{AccessToken: signed, TokenType: "bearer", ExpiresAt: expires}, nil
}

func (s *Service) parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return s.cfg.Secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// HashToken returns the hex SHA-256 digest used as the session key.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
