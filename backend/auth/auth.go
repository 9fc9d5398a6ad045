// Package auth verifies claimed identities against the store. Passwords are
// bcrypt-hashed at rest; the plaintext never leaves the request scope.
package auth

import (
	"context"
	"errors"
	"time"

	"citywatch/api"
	"citywatch/backend/store"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyExists      = errors.New("user already exists")
)

const tokenTTL = 24 * time.Hour

type Service struct {
	store     store.Store
	jwtSecret []byte
}

func NewService(s store.Store, jwtSecret string) *Service {
	return &Service{
		store:     s,
		jwtSecret: []byte(jwtSecret),
	}
}

// SignUp registers a new account and returns its public identity with a
// session token.
func (s *Service) SignUp(ctx context.Context, username, password string) (*api.AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	err = s.store.InsertUser(ctx, store.User{Username: username, PasswordHash: string(hash)})
	if errors.Is(err, store.ErrAlreadyExists) {
		return nil, ErrAlreadyExists
	}
	if err != nil {
		return nil, err
	}

	token, err := s.generateToken(username)
	if err != nil {
		return nil, err
	}
	return &api.AuthResponse{Username: username, Token: token}, nil
}

// LogIn verifies the credentials. Unknown username and wrong password are
// indistinguishable to the caller.
func (s *Service) LogIn(ctx context.Context, username, password string) (*api.AuthResponse, error) {
	u, err := s.store.GetUser(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(username)
	if err != nil {
		return nil, err
	}
	return &api.AuthResponse{Username: username, Token: token}, nil
}

// ValidateToken returns the username a token was issued for.
func (s *Service) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}
	username, ok := claims["username"].(string)
	if !ok || username == "" {
		return "", errors.New("invalid username in token")
	}
	return username, nil
}

func (s *Service) generateToken(username string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"iat":      now.Unix(),
		"exp":      now.Add(tokenTTL).Unix(),
	})
	return token.SignedString(s.jwtSecret)
}
