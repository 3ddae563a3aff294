package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"studyhub/internal/model"
)

var (
	student = &model.Principal{UserID: "stu-1", Role: model.RoleStudent}
	tutor   = &model.Principal{UserID: "tut-1", Role: model.RoleTutor}
)

type sessionFixture struct {
	repo     *memSessionRepo
	profiles *memProfileRepo
	cache    *memSessionCache
	svc      *SessionService
	now      time.Time
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		repo:     newMemSessionRepo(),
		profiles: newMemProfileRepo(),
		cache:    newMemSessionCache(),
		now:      time.Date(2024, 6, 1, 14, 30, 0, 0, time.UTC),
	}
	f.profiles.tutors = []*model.TutorProfile{{ID: "tut-1", Name: "Ada Lovelace", Subjects: []string{"Math"}, Rating: 4.8}}
	f.svc = NewSessionService(f.repo, f.profiles, f.cache, zap.NewNop())
	f.svc.now = func() time.Time { return f.now }
	return f
}

func TestCreateSession(t *testing.T) {
	f := newSessionFixture(t)
	start := time.Date(2024, 6, 1, 16, 0, 0, 0, time.UTC)

	s, err := f.svc.CreateSession(context.Background(), student, &CreateSessionInput{
		TutorID: "tut-1", Subject: "Math", Topic: "Limits", StartTime: start, DurationMinutes: 60,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, start.Add(time.Hour), s.EndTime)
	assert.ElementsMatch(t, []string{"tut-1", "stu-1"}, s.Participants)
	assert.Equal(t, "stu-1", s.StudentID)
	assert.False(t, s.HasMeeting())
	assert.Equal(t, model.SessionUpcoming, s.StatusAt(f.now))
}

func TestCreateSessionRejections(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	future := f.now.Add(time.Hour)

	cases := map[string]struct {
		principal *model.Principal
		in        CreateSessionInput
		field     string
	}{
		"past start":      {student, CreateSessionInput{TutorID: "tut-1", Subject: "Math", Topic: "x", StartTime: f.now.Add(-time.Minute), DurationMinutes: 30}, "startTime"},
		"zero duration":   {student, CreateSessionInput{TutorID: "tut-1", Subject: "Math", Topic: "x", StartTime: future}, "durationMinutes"},
		"missing subject": {student, CreateSessionInput{TutorID: "tut-1", Topic: "x", StartTime: future, DurationMinutes: 30}, "subject"},
		"unknown tutor":   {student, CreateSessionInput{TutorID: "nobody", Subject: "Math", Topic: "x", StartTime: future, DurationMinutes: 30}, "tutorId"},
		"tutor booking":   {tutor, CreateSessionInput{TutorID: "tut-1", Subject: "Math", Topic: "x", StartTime: future, DurationMinutes: 30}, "role"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.CreateSession(ctx, tc.principal, &tc.in)
			var verr *model.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}

	_, err := f.svc.CreateSession(ctx, nil, &CreateSessionInput{})
	assert.ErrorIs(t, err, model.ErrUnauthorized)
	assert.Empty(t, f.repo.sessions)
}

func TestCreateSessionAtNowIsAccepted(t *testing.T) {
	f := newSessionFixture(t)
	s, err := f.svc.CreateSession(context.Background(), student, &CreateSessionInput{
		TutorID: "tut-1", Subject: "Math", Topic: "Limits", StartTime: f.now, DurationMinutes: 15,
	})
	require.NoError(t, err)
	assert.Equal(t, model.SessionActive, s.StatusAt(f.now))
}

func TestListSessionsAscendingByRole(t *testing.T) {
	f := newSessionFixture(t)
	base := f.now
	f.repo.put(&model.Session{ID: "late", TutorID: "tut-1", StudentID: "stu-1", Participants: []string{"tut-1", "stu-1"}, StartTime: base.Add(48 * time.Hour), EndTime: base.Add(49 * time.Hour)})
	f.repo.put(&model.Session{ID: "early", TutorID: "tut-1", StudentID: "stu-1", Participants: []string{"tut-1", "stu-1"}, StartTime: base.Add(-48 * time.Hour), EndTime: base.Add(-47 * time.Hour)})
	f.repo.put(&model.Session{ID: "other", TutorID: "tut-2", StudentID: "stu-2", Participants: []string{"tut-2", "stu-2"}, StartTime: base, EndTime: base.Add(time.Hour)})

	got, err := f.svc.ListSessions(context.Background(), student)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "early", got[0].ID)
	assert.Equal(t, "late", got[1].ID)

	got, err = f.svc.ListSessions(context.Background(), tutor)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = f.svc.ListSessions(context.Background(), nil)
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestBuckets(t *testing.T) {
	f := newSessionFixture(t)
	add := func(id string, startOffset time.Duration) {
		start := f.now.Add(startOffset)
		f.repo.put(&model.Session{ID: id, TutorID: "tut-1", StudentID: "stu-1", Participants: []string{"tut-1", "stu-1"}, StartTime: start, EndTime: start.Add(time.Hour)})
	}
	add("past", -3*time.Hour)
	add("now", -30*time.Minute)
	add("soon", time.Hour)
	add("later", 5*time.Hour)

	b, err := f.svc.Buckets(context.Background(), student)
	require.NoError(t, err)
	require.Len(t, b.Active, 1)
	assert.Equal(t, "now", b.Active[0].ID)
	require.Len(t, b.Upcoming, 2)
	assert.Equal(t, "soon", b.Upcoming[0].ID)
	assert.Equal(t, "later", b.Upcoming[1].ID)
	require.Len(t, b.Completed, 1)
	assert.Equal(t, model.SessionCompleted, b.Completed[0].Status)
}

func TestGetSession(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	f.repo.put(&model.Session{ID: "s1", TutorID: "tut-1", StudentID: "stu-1", Participants: []string{"tut-1", "stu-1"}, StartTime: f.now, EndTime: f.now.Add(time.Hour)})

	s, err := f.svc.GetSession(ctx, "s1", student)
	require.NoError(t, err)
	assert.Equal(t, "s1", s.ID)

	cached, _ := f.cache.Get(ctx, "s1")
	require.NotNil(t, cached, "read should populate the cache")

	_, err = f.svc.GetSession(ctx, "s1", &model.Principal{UserID: "stranger", Role: model.RoleStudent})
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = f.svc.GetSession(ctx, "missing", student)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = f.svc.GetSession(ctx, "s1", nil)
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestGetSessionKeepsPermissionFailureDistinct(t *testing.T) {
	f := newSessionFixture(t)
	f.repo.err = model.ErrPermissionDenied

	_, err := f.svc.GetSession(context.Background(), "s1", student)
	assert.ErrorIs(t, err, model.ErrPermissionDenied)

	f.repo.err = errors.New("connection reset")
	_, err = f.svc.GetSession(context.Background(), "s1", student)
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrPermissionDenied)
}
