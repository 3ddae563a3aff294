package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"studyhub/internal/metrics"
	"studyhub/internal/model"
	"studyhub/internal/validation"
)

// MeetingProvisioner creates meetings with the video provider.
type MeetingProvisioner interface {
	CreateMeeting(ctx context.Context, req *model.MeetingRequest) (*model.Meeting, error)
}

// Signer signs SDK join requests.
type Signer interface {
	Sign(meetingNumber string, role model.MeetingRole) (string, error)
}

// SignatureRequest is the body of a signature request.
type SignatureRequest struct {
	MeetingNumber string `json:"meetingNumber" validate:"required"`
	Role          *int   `json:"role" validate:"required,oneof=0 1"`
}

// MeetingService provisions meetings for sessions and hands out join details
type MeetingService struct {
	sessions    *SessionService
	provisioner MeetingProvisioner
	signer      Signer
	log         *zap.Logger
}

// NewMeetingService creates a new meeting service. signer may be nil when SDK
// credentials are not configured; join responses then carry no signature.
func NewMeetingService(sessions *SessionService, provisioner MeetingProvisioner, signer Signer, log *zap.Logger) *MeetingService {
	return &MeetingService{
		sessions:    sessions,
		provisioner: provisioner,
		signer:      signer,
		log:         log.Named("meetings"),
	}
}

// CreateMeeting relays a meeting request to the provider.
func (s *MeetingService) CreateMeeting(ctx context.Context, req *model.MeetingRequest) (*model.Meeting, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	return s.provisioner.CreateMeeting(ctx, req)
}

// Signature signs a join request for the SDK.
func (s *MeetingService) Signature(req *SignatureRequest) (string, error) {
	if err := validation.Struct(req); err != nil {
		return "", err
	}
	if s.signer == nil {
		return "", fmt.Errorf("meeting SDK signatures are not configured")
	}
	return s.signer.Sign(req.MeetingNumber, model.MeetingRole(*req.Role))
}

// EnsureMeeting returns the session's meeting, creating it on first use.
// Two first callers racing may both create a meeting; the later write wins.
func (s *MeetingService) EnsureMeeting(ctx context.Context, session *model.Session) (*model.Meeting, error) {
	if session.HasMeeting() {
		return session.Meeting(), nil
	}

	req := &model.MeetingRequest{
		Topic:     meetingTopic(session),
		StartTime: session.StartTime.UTC(),
		Duration:  durationMinutes(session),
		Timezone:  "UTC",
	}
	meeting, err := s.provisioner.CreateMeeting(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create meeting for session %s: %w", session.ID, err)
	}
	if err := s.sessions.attachMeeting(ctx, session.ID, meeting); err != nil {
		return nil, err
	}
	session.SetMeeting(meeting)
	metrics.MeetingProvisioned()

	s.log.Info("meeting provisioned",
		zap.String("session", session.ID),
		zap.String("meeting", meeting.MeetingID))
	return meeting, nil
}

// JoinMeeting returns the caller's way into an active session's meeting. The
// session's tutor gets the start URL as host; everyone else, signed in or not,
// gets the join URL as attendee.
func (s *MeetingService) JoinMeeting(ctx context.Context, sessionID string, p *model.Principal) (*model.JoinInfo, error) {
	session, err := s.sessions.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.StatusAt(s.sessions.Now()) != model.SessionActive {
		return nil, model.ErrSessionNotActive
	}

	meeting, err := s.EnsureMeeting(ctx, session)
	if err != nil {
		return nil, err
	}

	info := &model.JoinInfo{SessionID: session.ID, MeetingID: meeting.MeetingID}
	role := model.RoleAttendee
	if p != nil && p.UserID == session.TutorID {
		role = model.RoleHost
		info.URL = meeting.StartURL
	} else {
		info.URL = meeting.JoinURL
	}
	info.Role = role.String()

	if s.signer != nil {
		sig, err := s.signer.Sign(meeting.MeetingID, role)
		if err != nil {
			s.log.Debug("join signature unavailable", zap.String("session", session.ID), zap.Error(err))
		} else {
			info.Signature = sig
		}
	}
	return info, nil
}

func meetingTopic(session *model.Session) string {
	parts := []string{}
	for _, p := range []string{session.Subject, session.Topic} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "Tutoring session"
	}
	return strings.Join(parts, ": ")
}

func durationMinutes(session *model.Session) int {
	m := int(session.EndTime.Sub(session.StartTime).Minutes())
	if m < 1 {
		return 1
	}
	return m
}
