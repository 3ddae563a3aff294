package model

import "time"

// Meeting is a provisioned video-conference meeting.
type Meeting struct {
	MeetingID string `json:"meetingId"`
	JoinURL   string `json:"joinUrl"`
	StartURL  string `json:"startUrl"`
}

// MeetingRequest describes a meeting to create.
type MeetingRequest struct {
	Topic     string    `json:"topic" validate:"required"`
	StartTime time.Time `json:"start_time" validate:"required"`
	Duration  int       `json:"duration" validate:"required,gt=0"`
	Timezone  string    `json:"timezone" validate:"required"`
}

// MeetingRole is the SDK role number: 1 starts the meeting, 0 joins it.
type MeetingRole int

const (
	RoleAttendee MeetingRole = 0
	RoleHost     MeetingRole = 1
)

func (r MeetingRole) String() string {
	if r == RoleHost {
		return "host"
	}
	return "attendee"
}

// JoinInfo is what a caller needs to enter a session's meeting.
type JoinInfo struct {
	SessionID string `json:"sessionId"`
	MeetingID string `json:"meetingId"`
	URL       string `json:"url"`
	Role      string `json:"role"`
	Signature string `json:"signature,omitempty"`
}
