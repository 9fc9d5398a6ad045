// Dev/test client for dev/test/troubleshooting.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"

	"citywatch/api"
	"citywatch/feed"

	"github.com/apex/log"
)

var (
	serviceURL  = flag.String("service_url", "http://127.0.0.1:8080", "Base URL of the service.")
	sessionFile = flag.String("session_file", "", "Optional file keeping the signed-in identity between runs.")
)

func randomCoord(v, spread float64) float64 {
	return v + rand.Float64()*2*spread - spread
}

func main() {
	flag.Parse()
	ctx := context.Background()

	f := feed.NewController(*serviceURL)
	if *sessionFile != "" {
		f.AttachSession(*sessionFile)
	}
	username := fmt.Sprintf("citizen-%X", rand.Uint32())

	log.Infof("Signing up as %s", username)
	if err := f.Signup(ctx, username, "test-password-123"); err != nil {
		log.Errorf("Signup failed: %v", err)
		return
	}

	log.Info("Logging in again")
	if err := f.Login(ctx, username, "test-password-123"); err != nil {
		log.Errorf("Login failed: %v", err)
		return
	}

	log.Info("Refreshing the feed")
	if err := f.Refresh(ctx); err != nil {
		log.Errorf("Refresh failed: %v", err)
		return
	}
	for _, p := range f.Problems() {
		log.Infof("  [%s] %s (%d upvotes, %s)", p.ID, p.Title, p.Upvotes, p.Status)
	}

	log.Info("Submitting a report")
	p, err := f.Submit(ctx, &api.ProblemInput{
		Title:       "Pothole on the bridge",
		Description: "Deep pothole in the right lane, submitted by the dev client.",
		Category:    api.CategoryInfrastructure,
		Location: api.Location{
			Lat:     randomCoord(51.505, 0.05),
			Lng:     randomCoord(-0.09, 0.05),
			Address: "Dev Client Bridge",
		},
	})
	if err != nil {
		log.Errorf("Submit failed: %v", err)
		return
	}
	log.Infof("Submitted problem %s created at %s", p.ID, p.CreatedAt)

	log.Info("Upvoting it twice")
	f.Upvote(p.ID)
	f.Upvote(p.ID)
	for _, q := range f.Problems() {
		log.Infof("  [%s] %s (%d upvotes)", q.ID, q.Title, q.Upvotes)
	}
}
