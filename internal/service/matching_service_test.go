package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"studyhub/internal/model"
)

func matchCandidates() []*model.TutorProfile {
	return []*model.TutorProfile{
		{ID: "t1", Name: "Ada Lovelace", Subjects: []string{"Math"}, Availability: []string{"Monday"}, Rating: 4.9, Bio: "Analytical engines"},
		{ID: "t2", Name: "Alan Turing", Subjects: []string{"Computer Science", "Math"}, Availability: []string{"Tuesday 10"}, Rating: 4.7},
	}
}

func newMatchingService(m *stubModel) *MatchingService {
	return NewMatchingService(m, NewProfileService(newMemProfileRepo()), zap.NewNop())
}

func TestFindBestMatch(t *testing.T) {
	m := &stubModel{responses: []string{"SELECTED_TUTOR_NAME: Alan Turing\nMATCH_REASON: Strong in both requested subjects."}}
	svc := newMatchingService(m)
	st := &model.UserProfile{ID: "stu-1", Name: "Sam", Subjects: []string{"Math"}, LearningStyle: "visual"}

	match, err := svc.FindBestMatch(context.Background(), st, matchCandidates())
	require.NoError(t, err)
	assert.Equal(t, "t2", match.Tutor.ID)
	assert.Equal(t, "Strong in both requested subjects.", match.Rationale)

	require.Len(t, m.prompts, 1)
	assert.Contains(t, m.prompts[0], "Ada Lovelace")
	assert.Contains(t, m.prompts[0], "Alan Turing")
	assert.Contains(t, m.prompts[0], "visual")
	assert.Contains(t, m.prompts[0], "SELECTED_TUTOR_NAME:")
}

func TestFindBestMatchNeverGuesses(t *testing.T) {
	st := &model.UserProfile{ID: "stu-1", Name: "Sam"}
	for name, reply := range map[string]string{
		"unknown name":  "SELECTED_TUTOR_NAME: Grace Hopper\nMATCH_REASON: great",
		"partial name":  "SELECTED_TUTOR_NAME: Alan\nMATCH_REASON: great",
		"wrong case":    "SELECTED_TUTOR_NAME: alan turing\nMATCH_REASON: great",
		"missing field": "MATCH_REASON: great",
		"free text":     "I would pick Ada Lovelace.",
	} {
		t.Run(name, func(t *testing.T) {
			svc := newMatchingService(&stubModel{responses: []string{reply}})
			_, err := svc.FindBestMatch(context.Background(), st, matchCandidates())
			assert.ErrorIs(t, err, model.ErrNoMatch)
		})
	}
}

func TestFindBestMatchTrimsWhitespace(t *testing.T) {
	svc := newMatchingService(&stubModel{responses: []string{"**SELECTED_TUTOR_NAME:**   Ada Lovelace  \n**MATCH_REASON:** Available Mondays."}})
	match, err := svc.FindBestMatch(context.Background(), &model.UserProfile{ID: "stu-1"}, matchCandidates())
	require.NoError(t, err)
	assert.Equal(t, "t1", match.Tutor.ID)
	assert.Equal(t, "Available Mondays.", match.Rationale)
}

func TestFindBestMatchWithoutCandidates(t *testing.T) {
	m := &stubModel{}
	_, err := newMatchingService(m).FindBestMatch(context.Background(), &model.UserProfile{ID: "stu-1"}, nil)
	assert.ErrorIs(t, err, model.ErrNoMatch)
	assert.Zero(t, m.calls())
}

func TestFindBestMatchModelFailure(t *testing.T) {
	boom := &model.ExternalError{Service: "language model", Err: errors.New("503")}
	m := &stubModel{errs: []error{boom}}
	_, err := newMatchingService(m).FindBestMatch(context.Background(), &model.UserProfile{ID: "stu-1"}, matchCandidates())
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, model.ErrNoMatch)
}

func TestMatchForUser(t *testing.T) {
	profiles := newMemProfileRepo()
	profiles.users["stu-1"] = &model.UserProfile{ID: "stu-1", Name: "Sam", Role: model.RoleStudent}
	profiles.tutors = append(matchCandidates(), &model.TutorProfile{ID: "t3", Name: "Marie Curie", Subjects: []string{"Chemistry"}})
	m := &stubModel{responses: []string{"SELECTED_TUTOR_NAME: Marie Curie\nMATCH_REASON: chemistry"}}
	svc := NewMatchingService(m, NewProfileService(profiles), zap.NewNop())

	match, err := svc.MatchForUser(context.Background(), student, "chemistry")
	require.NoError(t, err)
	assert.Equal(t, "t3", match.Tutor.ID)
	assert.NotContains(t, m.prompts[0], "Ada Lovelace")

	_, err = svc.MatchForUser(context.Background(), nil, "")
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestParseMatchResponse(t *testing.T) {
	name, reason := ParseMatchResponse("```\nSELECTED_TUTOR_NAME: Ada\nMATCH_REASON: fits\n```")
	assert.Equal(t, "Ada", name)
	assert.Equal(t, "fits", reason)

	name, reason = ParseMatchResponse("")
	assert.Empty(t, name)
	assert.Empty(t, reason)
}
