package zoom

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"studyhub/internal/config"
	"studyhub/internal/model"
)

// signatureSkew backdates the timestamp to tolerate client clock drift.
const signatureSkew = 30 * time.Second

// Signer produces Meeting SDK join signatures.
type Signer struct {
	key    string
	secret string
	now    func() time.Time
}

// NewSigner fails when the SDK key or secret is missing.
func NewSigner(cfg config.ZoomConfig) (*Signer, error) {
	if err := cfg.RequireSDK(); err != nil {
		return nil, err
	}
	return &Signer{key: cfg.SDKKey, secret: cfg.SDKSecret, now: time.Now}, nil
}

// Sign returns base64("key.meetingNumber.timestamp.role.hash") where hash is the
// base64 HMAC-SHA256 of base64(key+meetingNumber+timestamp+role).
func (s *Signer) Sign(meetingNumber string, role model.MeetingRole) (string, error) {
	meetingNumber = strings.TrimSpace(meetingNumber)
	if meetingNumber == "" {
		return "", model.NewValidationError("meetingNumber", "this field is required")
	}
	if role != model.RoleHost && role != model.RoleAttendee {
		return "", model.NewValidationError("role", "must be one of: 0 1")
	}

	ts := s.now().Add(-signatureSkew).UnixMilli()
	msg := base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%s%s%d%d", s.key, meetingNumber, ts, role)))

	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write([]byte(msg))
	hash := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	raw := fmt.Sprintf("%s.%s.%d.%d.%s", s.key, meetingNumber, ts, role, hash)
	return base64.StdEncoding.EncodeToString([]byte(raw)), nil
}
