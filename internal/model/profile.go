package model

import (
	"strings"
	"time"
)

// Role is a plain role string; there is no richer permission model.
type Role string

const (
	RoleStudent Role = "student"
	RoleTutor   Role = "tutor"
)

// UserProfile is a document in the users collection.
type UserProfile struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	Name          string    `json:"name" bson:"name"`
	Email         string    `json:"email" bson:"email"`
	Role          Role      `json:"role" bson:"role"`
	Subjects      []string  `json:"subjects" bson:"subjects"`
	Availability  []string  `json:"availability" bson:"availability"`
	GradeLevel    string    `json:"gradeLevel,omitempty" bson:"gradeLevel,omitempty"`
	LearningStyle string    `json:"learningStyle,omitempty" bson:"learningStyle,omitempty"`
	Goals         string    `json:"goals,omitempty" bson:"goals,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
}

// TutorProfile is a document in the tutors collection.
type TutorProfile struct {
	ID              string    `json:"id" bson:"_id,omitempty"`
	Name            string    `json:"name" bson:"name"`
	Email           string    `json:"email" bson:"email"`
	Subjects        []string  `json:"subjects" bson:"subjects"`
	Availability    []string  `json:"availability" bson:"availability"` // "Monday" or "Monday 14"
	Rating          float64   `json:"rating" bson:"rating"`
	Bio             string    `json:"bio" bson:"bio"`
	HourlyRate      float64   `json:"hourlyRate,omitempty" bson:"hourlyRate,omitempty"`
	ExperienceYears int       `json:"experienceYears,omitempty" bson:"experienceYears,omitempty"`
	CreatedAt       time.Time `json:"createdAt" bson:"createdAt"`
}

// Teaches reports whether the tutor lists subject (case-insensitive).
func (t *TutorProfile) Teaches(subject string) bool {
	return containsFold(t.Subjects, subject)
}

// AvailableOn reports whether any availability entry falls on day.
// Entries are either a day name or a "Day HH" slot.
func (t *TutorProfile) AvailableOn(day string) bool {
	for _, slot := range t.Availability {
		name := slot
		if i := strings.IndexByte(slot, ' '); i >= 0 {
			name = slot[:i]
		}
		if strings.EqualFold(name, day) {
			return true
		}
	}
	return false
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}
