// Package feed is the client-side mirror of the problem list: it refreshes
// from the server, applies optimistic updates and tracks the signed-in user
// for the session, the way the web page keeps its component state.
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"

	"citywatch/api"

	"github.com/apex/log"
)

var (
	ErrSubmitInFlight   = errors.New("a submission is already in flight")
	ErrNotAuthenticated = errors.New("not authenticated")
)

const contentType = "application/json"

// Controller holds the local problem list. The list it serves is the
// session's view: upvotes are applied locally first and never rolled back,
// submissions are appended from the server response.
type Controller struct {
	baseURL string
	client  *http.Client

	mu          sync.Mutex
	problems    []api.Problem
	submitting  bool
	user        *api.UserPublic
	token       string
	sessionPath string
}

func NewController(baseURL string) *Controller {
	return &Controller{
		baseURL: baseURL,
		client:  http.DefaultClient,
	}
}

// Refresh replaces the local list with the server's.
func (f *Controller) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+api.ProblemsEndpoint, nil)
	if err != nil {
		return err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	var problems []api.Problem
	if err := json.NewDecoder(resp.Body).Decode(&problems); err != nil {
		return err
	}

	f.mu.Lock()
	f.problems = problems
	f.mu.Unlock()
	return nil
}

// Problems returns a copy of the current view.
func (f *Controller) Problems() []api.Problem {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]api.Problem, len(f.problems))
	copy(out, f.problems)
	return out
}

// Upvote bumps the counter locally and re-sorts by upvotes, keeping the
// prior relative order on ties. The server is notified in the background;
// the local view stays authoritative for this session either way.
func (f *Controller) Upvote(id string) {
	f.mu.Lock()
	for i := range f.problems {
		if f.problems[i].ID == id {
			f.problems[i].Upvotes++
			break
		}
	}
	sort.SliceStable(f.problems, func(i, j int) bool {
		return f.problems[i].Upvotes > f.problems[j].Upvotes
	})
	f.mu.Unlock()

	go func() {
		url := f.baseURL + "/api/problems/" + id + "/upvote"
		resp, err := f.client.Post(url, contentType, nil)
		if err != nil {
			log.Errorf("Failed to persist upvote for %s: %v", id, err)
			return
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()
}

// Submit sends the input to the server and prepends the returned problem.
// One submission at a time; the caller is expected to disable its submit
// control while this runs.
func (f *Controller) Submit(ctx context.Context, input *api.ProblemInput) (*api.Problem, error) {
	f.mu.Lock()
	if f.user == nil {
		f.mu.Unlock()
		return nil, ErrNotAuthenticated
	}
	if f.submitting {
		f.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	f.submitting = true
	token := f.token
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	body, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		f.baseURL+api.ProblemsEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var p api.Problem
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.problems = append([]api.Problem{p}, f.problems...)
	f.mu.Unlock()
	return &p, nil
}

// Login authenticates and remembers the identity for the session.
func (f *Controller) Login(ctx context.Context, username, password string) error {
	return f.authenticate(ctx, api.LoginEndpoint, username, password)
}

// Signup registers a new account and signs it in.
func (f *Controller) Signup(ctx context.Context, username, password string) error {
	return f.authenticate(ctx, api.SignupEndpoint, username, password)
}

func (f *Controller) Logout() {
	f.mu.Lock()
	f.user = nil
	f.token = ""
	f.mu.Unlock()
	f.clearSession()
}

// CurrentUser returns the stored identity, nil when signed out.
func (f *Controller) CurrentUser() *api.UserPublic {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.user == nil {
		return nil
	}
	u := *f.user
	return &u
}

func (f *Controller) authenticate(ctx context.Context, endpoint, username, password string) error {
	body, err := json.Marshal(api.Credentials{Username: username, Password: password})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp api.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
			return errors.New(errResp.Error)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	var authResp api.AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		return err
	}

	f.mu.Lock()
	f.user = &api.UserPublic{Username: authResp.Username}
	f.token = authResp.Token
	f.mu.Unlock()
	f.saveSession()
	return nil
}
