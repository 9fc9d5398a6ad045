package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"citywatch/api"
)

// testServer fakes the backend surface the controller talks to.
type testServer struct {
	*httptest.Server

	mu          sync.Mutex
	upvoteCalls []string
	createFail  bool
	createSlow  chan struct{}
}

func newTestServer(t *testing.T, problems []api.Problem) *testServer {
	t.Helper()
	ts := &testServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/problems", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(problems)
		case http.MethodPost:
			ts.mu.Lock()
			fail, slow := ts.createFail, ts.createSlow
			ts.mu.Unlock()
			if slow != nil {
				<-slow
			}
			if fail {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(api.ErrorResponse{Error: "failed to save the problem"})
				return
			}
			var input api.ProblemInput
			json.NewDecoder(r.Body).Decode(&input)
			json.NewEncoder(w).Encode(api.Problem{
				ID:        "server-id",
				Title:     input.Title,
				Category:  input.Category,
				Location:  input.Location,
				Status:    api.StatusOpen,
				CreatedAt: time.Now().UTC().Format(time.RFC3339),
			})
		}
	})
	mux.HandleFunc("/api/problems/", func(w http.ResponseWriter, r *http.Request) {
		ts.mu.Lock()
		ts.upvoteCalls = append(ts.upvoteCalls, r.URL.Path)
		ts.mu.Unlock()
		json.NewEncoder(w).Encode(api.Problem{})
	})
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds api.Credentials
		json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "password123" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(api.ErrorResponse{Error: "invalid credentials"})
			return
		}
		json.NewEncoder(w).Encode(api.AuthResponse{Username: creds.Username, Token: "test-token"})
	})
	ts.Server = httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestUpvoteOptimisticStableSort(t *testing.T) {
	ts := newTestServer(t, []api.Problem{
		{ID: "a", Upvotes: 5},
		{ID: "b", Upvotes: 7},
	})
	f := NewController(ts.URL)
	if err := f.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	// First upvote: a trails at 6 and sorts behind b.
	f.Upvote("a")
	got := f.Problems()
	if got[0].ID != "b" || got[1].ID != "a" || got[1].Upvotes != 6 {
		t.Fatalf("after first upvote: %+v", got)
	}

	// Second upvote ties them at 7. The tie must not move "a": it keeps the
	// relative position it already had.
	f.Upvote("a")
	got = f.Problems()
	if got[0].ID != "b" || got[0].Upvotes != 7 {
		t.Errorf("after second upvote: %+v", got)
	}
	if got[1].ID != "a" || got[1].Upvotes != 7 {
		t.Errorf("a did not reach 7 in place: %+v", got)
	}
}

func TestUpvoteTieKeepsPriorOrder(t *testing.T) {
	ts := newTestServer(t, []api.Problem{
		{ID: "a", Upvotes: 7},
		{ID: "b", Upvotes: 7},
	})
	f := NewController(ts.URL)
	if err := f.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	// A no-op sort must not reorder equal elements.
	f.Upvote("missing")
	got := f.Problems()
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("tie order changed: %+v", got)
	}
}

func TestUpvoteNotifiesServer(t *testing.T) {
	ts := newTestServer(t, []api.Problem{{ID: "a", Upvotes: 1}})
	f := NewController(ts.URL)
	if err := f.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	f.Upvote("a")

	deadline := time.After(2 * time.Second)
	for {
		ts.mu.Lock()
		calls := len(ts.upvoteCalls)
		ts.mu.Unlock()
		if calls == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("server never saw the upvote")
		case <-time.After(10 * time.Millisecond):
		}
	}
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.upvoteCalls[0] != "/api/problems/a/upvote" {
		t.Errorf("upvote path = %q", ts.upvoteCalls[0])
	}
}

func TestSubmitRequiresLogin(t *testing.T) {
	ts := newTestServer(t, nil)
	f := NewController(ts.URL)

	_, err := f.Submit(context.Background(), &api.ProblemInput{Title: "t"})
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Submit while signed out = %v, want ErrNotAuthenticated", err)
	}
}

func TestSubmitPrependsOnSuccess(t *testing.T) {
	ts := newTestServer(t, []api.Problem{{ID: "old"}})
	f := NewController(ts.URL)
	if err := f.Login(context.Background(), "citizen1", "password123"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if err := f.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	p, err := f.Submit(context.Background(), &api.ProblemInput{Title: "Pothole"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if p.ID != "server-id" {
		t.Errorf("submitted id = %q", p.ID)
	}

	got := f.Problems()
	if len(got) != 2 || got[0].ID != "server-id" || got[1].ID != "old" {
		t.Errorf("feed after submit: %+v", got)
	}
}

func TestSubmitFailureLeavesStateUnchanged(t *testing.T) {
	ts := newTestServer(t, []api.Problem{{ID: "old"}})
	ts.createFail = true
	f := NewController(ts.URL)
	if err := f.Login(context.Background(), "citizen1", "password123"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if err := f.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if _, err := f.Submit(context.Background(), &api.ProblemInput{Title: "t"}); err == nil {
		t.Fatal("Submit succeeded against a failing server")
	}
	got := f.Problems()
	if len(got) != 1 || got[0].ID != "old" {
		t.Errorf("feed changed on failure: %+v", got)
	}
}

func TestSubmitRejectsSecondInFlight(t *testing.T) {
	ts := newTestServer(t, nil)
	gate := make(chan struct{})
	ts.createSlow = gate
	f := NewController(ts.URL)
	if err := f.Login(context.Background(), "citizen1", "password123"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	firstDone := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background(), &api.ProblemInput{Title: "first"})
		firstDone <- err
	}()

	// Wait for the first submission to take the flag.
	for {
		f.mu.Lock()
		inFlight := f.submitting
		f.mu.Unlock()
		if inFlight {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := f.Submit(context.Background(), &api.ProblemInput{Title: "second"}); !errors.Is(err, ErrSubmitInFlight) {
		t.Errorf("second Submit = %v, want ErrSubmitInFlight", err)
	}

	close(gate)
	if err := <-firstDone; err != nil {
		t.Errorf("first Submit failed: %v", err)
	}
}

func TestLoginStoresAndLogoutClearsUser(t *testing.T) {
	ts := newTestServer(t, nil)
	f := NewController(ts.URL)

	if err := f.Login(context.Background(), "citizen1", "wrong"); err == nil {
		t.Fatal("Login succeeded with a bad password")
	}
	if f.CurrentUser() != nil {
		t.Error("failed login left a user behind")
	}

	if err := f.Login(context.Background(), "citizen1", "password123"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	u := f.CurrentUser()
	if u == nil || u.Username != "citizen1" {
		t.Errorf("CurrentUser = %+v", u)
	}

	f.Logout()
	if f.CurrentUser() != nil {
		t.Error("Logout did not clear the user")
	}
}
