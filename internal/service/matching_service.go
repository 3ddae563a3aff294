package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"studyhub/internal/llm"
	"studyhub/internal/metrics"
	"studyhub/internal/model"
)

const (
	selectedTutorPrefix = "SELECTED_TUTOR_NAME:"
	matchReasonPrefix   = "MATCH_REASON:"
)

// Match is the advisor's pick for a student.
type Match struct {
	Tutor     *model.TutorProfile `json:"tutor"`
	Rationale string              `json:"rationale"`
}

// MatchingService asks the language model to pick the best tutor for a student
type MatchingService struct {
	model    llms.Model
	profiles *ProfileService
	log      *zap.Logger
}

// NewMatchingService creates a new matching service
func NewMatchingService(m llms.Model, profiles *ProfileService, log *zap.Logger) *MatchingService {
	return &MatchingService{
		model:    m,
		profiles: profiles,
		log:      log.Named("matching"),
	}
}

// MatchForUser loads the caller's profile and candidate tutors, then asks for the
// best match. subject narrows the candidates when set.
func (s *MatchingService) MatchForUser(ctx context.Context, p *model.Principal, subject string) (*Match, error) {
	student, err := s.profiles.Me(ctx, p)
	if err != nil {
		return nil, err
	}
	candidates, err := s.profiles.SearchTutors(ctx, TutorFilter{Subject: strings.TrimSpace(subject)})
	if err != nil {
		return nil, err
	}
	return s.FindBestMatch(ctx, student, candidates)
}

// FindBestMatch returns the candidate the model names, resolved by exact name.
// It never falls back to an arbitrary candidate.
func (s *MatchingService) FindBestMatch(ctx context.Context, student *model.UserProfile, candidates []*model.TutorProfile) (*Match, error) {
	if len(candidates) == 0 {
		return nil, model.ErrNoMatch
	}

	text, err := llm.Generate(ctx, s.model, BuildMatchPrompt(student, candidates), llms.WithTemperature(0.2))
	metrics.ObserveCall(metrics.Matching, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	name, reason := ParseMatchResponse(text)
	for _, c := range candidates {
		if name != "" && c.Name == name {
			return &Match{Tutor: c, Rationale: reason}, nil
		}
	}

	s.log.Info("advisor named no known tutor",
		zap.String("student", student.ID),
		zap.String("name", name),
		zap.Int("candidates", len(candidates)))
	return nil, model.ErrNoMatch
}

// BuildMatchPrompt embeds the student profile and every candidate in the advisor prompt.
func BuildMatchPrompt(student *model.UserProfile, candidates []*model.TutorProfile) string {
	var b strings.Builder
	b.WriteString("You are matching a student with the best tutor from a list.\n\n")
	b.WriteString("Student profile:\n")
	fmt.Fprintf(&b, "- Name: %s\n", student.Name)
	fmt.Fprintf(&b, "- Subjects needing help: %s\n", joinOrNone(student.Subjects))
	fmt.Fprintf(&b, "- Availability: %s\n", joinOrNone(student.Availability))
	if student.GradeLevel != "" {
		fmt.Fprintf(&b, "- Grade level: %s\n", student.GradeLevel)
	}
	if student.LearningStyle != "" {
		fmt.Fprintf(&b, "- Learning style: %s\n", student.LearningStyle)
	}
	if student.Goals != "" {
		fmt.Fprintf(&b, "- Goals: %s\n", student.Goals)
	}

	b.WriteString("\nAvailable tutors:\n")
	for i, t := range candidates {
		fmt.Fprintf(&b, "%d. Name: %s\n", i+1, t.Name)
		fmt.Fprintf(&b, "   Subjects: %s\n", joinOrNone(t.Subjects))
		fmt.Fprintf(&b, "   Availability: %s\n", joinOrNone(t.Availability))
		fmt.Fprintf(&b, "   Rating: %.1f\n", t.Rating)
		if t.ExperienceYears > 0 {
			fmt.Fprintf(&b, "   Experience: %d years\n", t.ExperienceYears)
		}
		if t.Bio != "" {
			fmt.Fprintf(&b, "   Bio: %s\n", t.Bio)
		}
	}

	b.WriteString("\nPick exactly one tutor from the list. Respond with exactly two lines and nothing else:\n")
	b.WriteString(selectedTutorPrefix + " <the tutor's name exactly as listed>\n")
	b.WriteString(matchReasonPrefix + " <one or two sentences explaining the match>\n")
	return b.String()
}

// ParseMatchResponse extracts the two fields of the advisor format. Missing fields are empty.
func ParseMatchResponse(text string) (name, reason string) {
	for _, line := range strings.Split(llm.StripFences(text), "\n") {
		line = strings.TrimLeft(strings.TrimSpace(line), "*-# ")
		switch {
		case strings.HasPrefix(line, selectedTutorPrefix) && name == "":
			name = strings.Trim(strings.TrimPrefix(line, selectedTutorPrefix), "* \t")
		case strings.HasPrefix(line, matchReasonPrefix) && reason == "":
			reason = strings.Trim(strings.TrimPrefix(line, matchReasonPrefix), "* \t")
		}
	}
	return name, reason
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "none listed"
	}
	return strings.Join(values, ", ")
}
