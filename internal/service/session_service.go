package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"studyhub/internal/cache"
	"studyhub/internal/metrics"
	"studyhub/internal/model"
	"studyhub/internal/repository"
	"studyhub/internal/validation"
)

// CreateSessionInput is a booking request from a signed-in student.
type CreateSessionInput struct {
	TutorID         string    `json:"tutorId" validate:"required"`
	Subject         string    `json:"subject" validate:"required"`
	Topic           string    `json:"topic" validate:"required"`
	StartTime       time.Time `json:"startTime" validate:"required"`
	DurationMinutes int       `json:"durationMinutes" validate:"required,gt=0,max=480"`
}

// SessionService handles session scheduling and status
type SessionService struct {
	sessionRepo  repository.SessionRepo
	profileRepo  repository.ProfileRepo
	sessionCache cache.SessionCache
	now          func() time.Time
	log          *zap.Logger
}

// NewSessionService creates a new session service
func NewSessionService(
	sessionRepo repository.SessionRepo,
	profileRepo repository.ProfileRepo,
	sessionCache cache.SessionCache,
	log *zap.Logger,
) *SessionService {
	return &SessionService{
		sessionRepo:  sessionRepo,
		profileRepo:  profileRepo,
		sessionCache: sessionCache,
		now:          time.Now,
		log:          log.Named("sessions"),
	}
}

// Now is the service clock.
func (s *SessionService) Now() time.Time {
	return s.now()
}

// CreateSession books a session between the calling student and a tutor.
// The session ends DurationMinutes after it starts; a start in the past is rejected.
func (s *SessionService) CreateSession(ctx context.Context, p *model.Principal, in *CreateSessionInput) (*model.Session, error) {
	if p == nil {
		return nil, model.ErrUnauthorized
	}
	if p.IsTutor() {
		return nil, model.NewValidationError("role", "only students can book sessions")
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	now := s.now()
	if in.StartTime.Before(now) {
		return nil, model.NewValidationError("startTime", "must not be in the past")
	}
	if in.TutorID == p.UserID {
		return nil, model.NewValidationError("tutorId", "must differ from the student")
	}

	tutor, err := s.profileRepo.GetTutor(ctx, in.TutorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tutor: %w", err)
	}
	if tutor == nil {
		return nil, model.NewValidationError("tutorId", "tutor does not exist")
	}

	start := in.StartTime.UTC()
	session := &model.Session{
		TutorID:      tutor.ID,
		StudentID:    p.UserID,
		Participants: []string{tutor.ID, p.UserID},
		Subject:      in.Subject,
		Topic:        in.Topic,
		StartTime:    start,
		EndTime:      start.Add(time.Duration(in.DurationMinutes) * time.Minute),
		CreatedAt:    now.UTC(),
	}

	id, err := s.sessionRepo.Create(ctx, session)
	metrics.ObserveCall(metrics.Mongo, err)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	session.ID = id

	s.log.Info("session booked",
		zap.String("session", id),
		zap.String("tutor", tutor.ID),
		zap.String("student", p.UserID),
		zap.Time("start", session.StartTime))
	return session, nil
}

// ListSessions returns the caller's sessions, oldest first. Tutors see sessions
// they teach; everyone else sees sessions they participate in.
func (s *SessionService) ListSessions(ctx context.Context, p *model.Principal) ([]*model.Session, error) {
	if p == nil {
		return nil, model.ErrUnauthorized
	}

	var (
		sessions []*model.Session
		err      error
	)
	if p.IsTutor() {
		sessions, err = s.sessionRepo.ListByTutor(ctx, p.UserID)
	} else {
		sessions, err = s.sessionRepo.ListByParticipant(ctx, p.UserID)
	}
	metrics.ObserveCall(metrics.Mongo, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	model.SortByStartAsc(sessions)
	return sessions, nil
}

// Buckets lists the caller's sessions grouped by status at the current time.
func (s *SessionService) Buckets(ctx context.Context, p *model.Principal) (model.SessionBuckets, error) {
	sessions, err := s.ListSessions(ctx, p)
	if err != nil {
		return model.SessionBuckets{}, err
	}
	return model.Partition(sessions, s.now()), nil
}

// GetSession returns a session the caller participates in.
func (s *SessionService) GetSession(ctx context.Context, id string, p *model.Principal) (*model.Session, error) {
	if p == nil {
		return nil, model.ErrUnauthorized
	}
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.IsParticipant(p.UserID) {
		return nil, model.ErrForbidden
	}
	return session, nil
}

// load reads through the cache. Cache failures are logged and fall back to the store.
func (s *SessionService) load(ctx context.Context, id string) (*model.Session, error) {
	cached, err := s.sessionCache.Get(ctx, id)
	if err != nil {
		s.log.Warn("session cache read failed", zap.String("session", id), zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	session, err := s.sessionRepo.GetByID(ctx, id)
	metrics.ObserveCall(metrics.Mongo, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, model.ErrNotFound
	}

	if err := s.sessionCache.Set(ctx, session); err != nil {
		s.log.Warn("session cache write failed", zap.String("session", id), zap.Error(err))
	}
	return session, nil
}

// attachMeeting persists meeting fields on a session and drops its cached copy.
func (s *SessionService) attachMeeting(ctx context.Context, id string, m *model.Meeting) error {
	err := s.sessionRepo.SetMeeting(ctx, id, m)
	metrics.ObserveCall(metrics.Mongo, err)
	if err != nil {
		return fmt.Errorf("failed to save meeting: %w", err)
	}
	if err := s.sessionCache.Delete(ctx, id); err != nil {
		s.log.Warn("session cache invalidation failed", zap.String("session", id), zap.Error(err))
	}
	return nil
}
