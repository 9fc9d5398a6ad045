// Package store owns the problem and user collections. Callers get copies;
// the backing containers are never handed out.
package store

import (
	"context"
	"errors"

	"citywatch/api"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// User is the stored form of an account. PasswordHash is a bcrypt hash and
// must never travel back to clients.
type User struct {
	Username     string
	PasswordHash string
}

type Store interface {
	// ListProblems returns all problems, most recently created first.
	ListProblems(ctx context.Context) ([]api.Problem, error)
	GetProblem(ctx context.Context, id string) (*api.Problem, error)
	// InsertProblem puts a fully populated problem at the head of the list.
	InsertProblem(ctx context.Context, p *api.Problem) error
	// UpvoteProblem increments the counter and returns the updated record.
	UpvoteProblem(ctx context.Context, id string) (*api.Problem, error)

	InsertUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, username string) (*User, error)
}
