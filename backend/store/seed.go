package store

import (
	"context"

	"citywatch/api"

	"github.com/apex/log"
	"golang.org/x/crypto/bcrypt"
)

// Demo fixtures matching the original pilot data set. Inserted oldest first
// so the list comes out newest first.
var seedProblems = []api.Problem{
	{
		ID:          "1",
		Title:       "Broken Street Light",
		Description: "The street light at the corner of Main St and 5th Ave has been out for a week. It's very dark and dangerous at night.",
		Category:    api.CategoryInfrastructure,
		Location:    api.Location{Lat: 51.505, Lng: -0.09, Address: "Main St & 5th Ave"},
		Upvotes:     15,
		Status:      api.StatusOpen,
		CreatedAt:   "2023-10-25T10:00:00Z",
		ImageURL:    "https://images.unsplash.com/photo-1516961642265-531546e84af2?auto=format&fit=crop&q=80&w=1000",
	},
	{
		ID:          "2",
		Title:       "Uncollected Garbage",
		Description: "Garbage hasn't been collected in 2 weeks. The smell is terrible.",
		Category:    api.CategorySanitation,
		Location:    api.Location{Lat: 51.51, Lng: -0.1, Address: "123 Residential Rd"},
		Upvotes:     42,
		Status:      api.StatusOpen,
		CreatedAt:   "2023-10-26T09:30:00Z",
		ImageURL:    "https://images.unsplash.com/photo-1530587191325-3db32d826c18?auto=format&fit=crop&q=80&w=1000",
	},
	{
		ID:          "3",
		Title:       "Pothole on Highway",
		Description: "Large pothole causing tire damage.",
		Category:    api.CategoryInfrastructure,
		Location:    api.Location{Lat: 51.515, Lng: -0.09, Address: "Highway 1"},
		Upvotes:     8,
		Status:      api.StatusInProgress,
		CreatedAt:   "2023-10-27T14:15:00Z",
		ImageURL:    "https://images.unsplash.com/photo-1515162816999-a0c47dc192f7?auto=format&fit=crop&q=80&w=1000",
	},
}

var seedUsers = []api.Credentials{
	{Username: "citizen1", Password: "password123"},
	{Username: "admin", Password: "adminpassword"},
}

// SeedDemoData loads the fixtures into an empty store. Demo passwords are
// hashed on the way in so the stored form is the same as for real signups.
func SeedDemoData(ctx context.Context, s Store) error {
	for i := range seedProblems {
		if err := s.InsertProblem(ctx, &seedProblems[i]); err != nil {
			return err
		}
	}
	for _, cred := range seedUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(cred.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		if err := s.InsertUser(ctx, User{Username: cred.Username, PasswordHash: string(hash)}); err != nil {
			return err
		}
	}
	log.Infof("Seeded %d problems and %d users", len(seedProblems), len(seedUsers))
	return nil
}
