// Package problems implements the report workflow: creation with
// server-assigned fields, newest-first listing, persisted upvotes and map
// clustering.
package problems

import (
	"context"
	"strings"
	"time"

	"citywatch/api"
	"citywatch/backend/mapaggr"
	"citywatch/backend/store"

	"github.com/apex/log"
	"github.com/google/uuid"
)

const (
	defaultTitle       = "Untitled report"
	defaultDescription = "No description provided."
)

// Publisher pushes newly created problems to downstream consumers.
// Satisfied by rabbitmq.Publisher; a nil Publisher disables publishing.
type Publisher interface {
	Publish(message interface{}) error
}

type Service struct {
	store     store.Store
	publisher Publisher
	now       func() time.Time
}

func NewService(s store.Store, pub Publisher) *Service {
	return &Service{
		store:     s,
		publisher: pub,
		now:       time.Now,
	}
}

func (s *Service) List(ctx context.Context) ([]api.Problem, error) {
	return s.store.ListProblems(ctx)
}

// Create assigns identity and defaults, stores the problem at the head of
// the list and returns the full record. Submissions always succeed on valid
// JSON: blank fields are synthesized, unknown categories coerced to "other".
func (s *Service) Create(ctx context.Context, input *api.ProblemInput, reportedBy string) (*api.Problem, error) {
	p := &api.Problem{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Category:    input.Category,
		Location:    input.Location,
		Upvotes:     0,
		Status:      api.StatusOpen,
		CreatedAt:   s.now().UTC().Format(time.RFC3339),
		ReportedBy:  reportedBy,
		ImageURL:    input.ImageURL,
		VideoURL:    input.VideoURL,
		AudioURL:    input.AudioURL,
	}
	if p.Title == "" {
		p.Title = defaultTitle
	}
	if p.Description == "" {
		p.Description = defaultDescription
	}
	switch p.Category {
	case api.CategoryInfrastructure, api.CategorySanitation, api.CategorySafety, api.CategoryOther:
	default:
		p.Category = api.CategoryOther
	}

	if err := s.store.InsertProblem(ctx, p); err != nil {
		return nil, err
	}
	s.publish(p)
	return p, nil
}

// Upvote persists a non-attributed increment and returns the updated record.
func (s *Service) Upvote(ctx context.Context, id string) (*api.Problem, error) {
	return s.store.UpvoteProblem(ctx, id)
}

// Map clusters all problem locations for the given viewport.
func (s *Service) Map(ctx context.Context, args *api.MapArgs) ([]api.MapMarker, error) {
	all, err := s.store.ListProblems(ctx)
	if err != nil {
		return nil, err
	}
	vp := args.VPort
	aggr := mapaggr.New(&vp, &args.Center)
	for i := range all {
		loc := all[i].Location
		if loc.Lat <= vp.LatMin || loc.Lat > vp.LatMax ||
			loc.Lng <= vp.LonMin || loc.Lng > vp.LonMax {
			continue
		}
		aggr.AddProblem(&all[i])
	}
	return aggr.Markers(), nil
}

func (s *Service) publish(p *api.Problem) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(p); err != nil {
		log.Errorf("Failed to publish problem %s: %v", p.ID, err)
		return
	}
	log.Infof("Published problem %s for analysis", p.ID)
}
