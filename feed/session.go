package feed

import (
	"encoding/json"
	"errors"
	"os"

	"citywatch/api"

	"github.com/apex/log"
)

// session is the single persisted blob of client state: who is signed in.
type session struct {
	User  api.UserPublic `json:"user"`
	Token string         `json:"token,omitempty"`
}

// AttachSession rehydrates the signed-in user from path and keeps the file
// in sync from then on: written on login and signup, removed on logout.
func (f *Controller) AttachSession(path string) {
	f.mu.Lock()
	f.sessionPath = path
	f.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Errorf("Failed to read session file %s: %v", path, err)
		}
		return
	}
	var s session
	if err := json.Unmarshal(data, &s); err != nil {
		log.Errorf("Ignoring corrupt session file %s: %v", path, err)
		return
	}

	f.mu.Lock()
	f.user = &s.User
	f.token = s.Token
	f.mu.Unlock()
}

// saveSession and clearSession expect no locks held.
func (f *Controller) saveSession() {
	f.mu.Lock()
	path := f.sessionPath
	var s *session
	if f.user != nil {
		s = &session{User: *f.user, Token: f.token}
	}
	f.mu.Unlock()

	if path == "" || s == nil {
		return
	}
	data, err := json.Marshal(s)
	if err != nil {
		log.Errorf("Failed to serialize session: %v", err)
		return
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		log.Errorf("Failed to write session file %s: %v", path, err)
	}
}

func (f *Controller) clearSession() {
	f.mu.Lock()
	path := f.sessionPath
	f.mu.Unlock()

	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Errorf("Failed to remove session file %s: %v", path, err)
	}
}
