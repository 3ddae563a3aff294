package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"studyhub/internal/metrics"
	"studyhub/internal/model"
	"studyhub/internal/repository"
)

// TutorFilter narrows a tutor search. Zero values match everything.
type TutorFilter struct {
	Subject   string
	Day       string
	MinRating float64
	SortBy    string // "rating" (default) or "name"
}

// ProfileService reads user and tutor profiles
type ProfileService struct {
	profileRepo repository.ProfileRepo
}

// NewProfileService creates a new profile service
func NewProfileService(profileRepo repository.ProfileRepo) *ProfileService {
	return &ProfileService{profileRepo: profileRepo}
}

// Me returns the caller's profile.
func (s *ProfileService) Me(ctx context.Context, p *model.Principal) (*model.UserProfile, error) {
	if p == nil {
		return nil, model.ErrUnauthorized
	}
	user, err := s.profileRepo.GetUser(ctx, p.UserID)
	metrics.ObserveCall(metrics.Mongo, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if user == nil {
		return nil, model.ErrNotFound
	}
	return user, nil
}

// SearchTutors filters the tutor directory in memory.
func (s *ProfileService) SearchTutors(ctx context.Context, f TutorFilter) ([]*model.TutorProfile, error) {
	tutors, err := s.profileRepo.ListTutors(ctx)
	metrics.ObserveCall(metrics.Mongo, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list tutors: %w", err)
	}
	return FilterTutors(tutors, f), nil
}

// FilterTutors applies f to tutors and sorts the result. Ties keep store order.
func FilterTutors(tutors []*model.TutorProfile, f TutorFilter) []*model.TutorProfile {
	out := make([]*model.TutorProfile, 0, len(tutors))
	for _, t := range tutors {
		if f.Subject != "" && !t.Teaches(f.Subject) {
			continue
		}
		if f.Day != "" && !t.AvailableOn(f.Day) {
			continue
		}
		if t.Rating < f.MinRating {
			continue
		}
		out = append(out, t)
	}

	if f.SortBy == "name" {
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
	} else {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Rating > out[j].Rating
		})
	}
	return out
}
