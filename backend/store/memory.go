package store

import (
	"context"
	"sync"

	"citywatch/api"
)

// Memory keeps everything in process memory. One RWMutex guards both
// collections; every mutation on the host runtime must go through it so a
// pair of near-simultaneous signups cannot both pass the existence check.
// Contents are lost on restart.
type Memory struct {
	mu       sync.RWMutex
	problems []api.Problem
	users    map[string]User
}

func NewMemory() *Memory {
	return &Memory{
		users: make(map[string]User),
	}
}

func (m *Memory) ListProblems(_ context.Context) ([]api.Problem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]api.Problem, len(m.problems))
	copy(out, m.problems)
	return out, nil
}

func (m *Memory) GetProblem(_ context.Context, id string) (*api.Problem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.problems {
		if m.problems[i].ID == id {
			p := m.problems[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) InsertProblem(_ context.Context, p *api.Problem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.problems = append([]api.Problem{*p}, m.problems...)
	return nil
}

func (m *Memory) UpvoteProblem(_ context.Context, id string) (*api.Problem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.problems {
		if m.problems[i].ID == id {
			m.problems[i].Upvotes++
			p := m.problems[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) InsertUser(_ context.Context, u User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[u.Username]; ok {
		return ErrAlreadyExists
	}
	m.users[u.Username] = u
	return nil
}

func (m *Memory) GetUser(_ context.Context, username string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}
