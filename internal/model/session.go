package model

import (
	"sort"
	"time"
)

// SessionStatus is derived from the wall clock, never stored.
type SessionStatus string

const (
	SessionUpcoming  SessionStatus = "upcoming"
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

// Classify places now relative to the [start, end] window. Both boundaries count as active.
func Classify(now, start, end time.Time) SessionStatus {
	switch {
	case now.Before(start):
		return SessionUpcoming
	case now.After(end):
		return SessionCompleted
	default:
		return SessionActive
	}
}

// Session is one scheduled tutor/student meeting.
type Session struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	TutorID      string    `json:"tutorId" bson:"tutorId"`
	StudentID    string    `json:"studentId" bson:"studentId"`
	Participants []string  `json:"participants" bson:"participants"`
	Subject      string    `json:"subject" bson:"subject"`
	Topic        string    `json:"topic" bson:"topic"`
	StartTime    time.Time `json:"startTime" bson:"startTime"`
	EndTime      time.Time `json:"endTime" bson:"endTime"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`

	// Set together, once, by meeting provisioning
	ZoomMeetingID string `json:"zoomMeetingId,omitempty" bson:"zoomMeetingId,omitempty"`
	ZoomJoinURL   string `json:"zoomJoinUrl,omitempty" bson:"zoomJoinUrl,omitempty"`
	ZoomStartURL  string `json:"zoomStartUrl,omitempty" bson:"zoomStartUrl,omitempty"`
}

// StatusAt classifies the session window at now.
func (s *Session) StatusAt(now time.Time) SessionStatus {
	return Classify(now, s.StartTime, s.EndTime)
}

// HasMeeting reports whether a meeting has been provisioned.
func (s *Session) HasMeeting() bool {
	return s.ZoomMeetingID != ""
}

// Meeting returns the provisioned meeting, or nil.
func (s *Session) Meeting() *Meeting {
	if !s.HasMeeting() {
		return nil
	}
	return &Meeting{MeetingID: s.ZoomMeetingID, JoinURL: s.ZoomJoinURL, StartURL: s.ZoomStartURL}
}

// SetMeeting copies all three meeting fields onto the session.
func (s *Session) SetMeeting(m *Meeting) {
	s.ZoomMeetingID = m.MeetingID
	s.ZoomJoinURL = m.JoinURL
	s.ZoomStartURL = m.StartURL
}

// IsParticipant reports whether userID is the tutor or the student.
func (s *Session) IsParticipant(userID string) bool {
	if userID == "" {
		return false
	}
	for _, p := range s.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// SessionView is a session with its status at the time of the response.
type SessionView struct {
	*Session
	Status SessionStatus `json:"status"`
}

// SessionBuckets groups sessions by derived status, each ascending by start time.
type SessionBuckets struct {
	Active    []SessionView `json:"active"`
	Upcoming  []SessionView `json:"upcoming"`
	Completed []SessionView `json:"completed"`
}

// SortByStartAsc orders sessions by start time, oldest first. The sort is stable.
func SortByStartAsc(sessions []*Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartTime.Before(sessions[j].StartTime)
	})
}

// Partition buckets sessions by status at now, preserving input order within a bucket.
func Partition(sessions []*Session, now time.Time) SessionBuckets {
	b := SessionBuckets{
		Active:    []SessionView{},
		Upcoming:  []SessionView{},
		Completed: []SessionView{},
	}
	for _, s := range sessions {
		status := s.StatusAt(now)
		v := SessionView{Session: s, Status: status}
		switch status {
		case SessionActive:
			b.Active = append(b.Active, v)
		case SessionUpcoming:
			b.Upcoming = append(b.Upcoming, v)
		default:
			b.Completed = append(b.Completed, v)
		}
	}
	return b
}
