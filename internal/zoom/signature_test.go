package zoom

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyhub/internal/config"
	"studyhub/internal/model"
)

func TestSigner_Sign(t *testing.T) {
	s, err := NewSigner(config.ZoomConfig{SDKKey: "sdkkey", SDKSecret: "sdksecret"})
	require.NoError(t, err)
	fixed := time.UnixMilli(1717250400000)
	s.now = func() time.Time { return fixed }

	sig, err := s.Sign("85746065432", model.RoleHost)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(sig)
	require.NoError(t, err)
	parts := strings.Split(string(raw), ".")
	require.Len(t, parts, 5)
	assert.Equal(t, "sdkkey", parts[0])
	assert.Equal(t, "85746065432", parts[1])
	assert.Equal(t, strconv.FormatInt(1717250400000-30000, 10), parts[2])
	assert.Equal(t, "1", parts[3])

	msg := base64.StdEncoding.EncodeToString([]byte("sdkkey85746065432" + parts[2] + "1"))
	mac := hmac.New(sha256.New, []byte("sdksecret"))
	mac.Write([]byte(msg))
	assert.Equal(t, base64.StdEncoding.EncodeToString(mac.Sum(nil)), parts[4])
}

func TestSigner_RejectsBadInput(t *testing.T) {
	s, err := NewSigner(config.ZoomConfig{SDKKey: "k", SDKSecret: "s"})
	require.NoError(t, err)

	_, err = s.Sign("  ", model.RoleAttendee)
	var verr *model.ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = s.Sign("123", model.MeetingRole(5))
	assert.True(t, errors.As(err, &verr))
}

func TestNewSigner_RequiresCredentials(t *testing.T) {
	_, err := NewSigner(config.ZoomConfig{SDKKey: "k"})

	var missing *config.MissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"ZOOM_SDK_SECRET"}, missing.Keys)
}
