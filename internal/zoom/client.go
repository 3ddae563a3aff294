// Package zoom wraps the Zoom REST API (server-to-server OAuth) and Meeting SDK signing.
package zoom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"studyhub/internal/config"
	"studyhub/internal/metrics"
	"studyhub/internal/model"
)

// zoom scheduled meeting
const meetingTypeScheduled = 2

// Client creates meetings on behalf of the account owner.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient builds an OAuth-authenticated client. ctx scopes token refreshes.
func NewClient(ctx context.Context, cfg config.ZoomConfig, log *zap.Logger) (*Client, error) {
	if err := cfg.RequireMeetings(); err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
		EndpointParams: url.Values{
			"grant_type": {"account_credentials"},
			"account_id": {cfg.AccountID},
		},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: timeout})
	httpClient := cc.Client(ctx)
	httpClient.Timeout = timeout

	return &Client{
		baseURL:    cfg.APIBaseURL,
		httpClient: httpClient,
		log:        log.Named("zoom"),
	}, nil
}

type createMeetingBody struct {
	Topic     string          `json:"topic"`
	Type      int             `json:"type"`
	StartTime string          `json:"start_time"`
	Duration  int             `json:"duration"`
	Timezone  string          `json:"timezone"`
	Settings  meetingSettings `json:"settings"`
}

type meetingSettings struct {
	JoinBeforeHost bool `json:"join_before_host"`
	WaitingRoom    bool `json:"waiting_room"`
}

type meetingResponse struct {
	ID       json.Number `json:"id"`
	JoinURL  string      `json:"join_url"`
	StartURL string      `json:"start_url"`
}

// CreateMeeting schedules a meeting and returns its id and URLs.
func (c *Client) CreateMeeting(ctx context.Context, req *model.MeetingRequest) (*model.Meeting, error) {
	m, err := c.createMeeting(ctx, req)
	metrics.ObserveCall(metrics.Zoom, err)
	if err != nil {
		c.log.Warn("create meeting failed", zap.String("topic", req.Topic), zap.Error(err))
		return nil, &model.ExternalError{Service: "meeting provider", Err: err}
	}
	c.log.Info("meeting created", zap.String("meetingId", m.MeetingID))
	return m, nil
}

func (c *Client) createMeeting(ctx context.Context, req *model.MeetingRequest) (*model.Meeting, error) {
	body := createMeetingBody{
		Topic:     req.Topic,
		Type:      meetingTypeScheduled,
		StartTime: req.StartTime.UTC().Format("2006-01-02T15:04:05Z"),
		Duration:  req.Duration,
		Timezone:  req.Timezone,
		Settings:  meetingSettings{JoinBeforeHost: true},
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/users/me/meetings", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("status %d: %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var mr meetingResponse
	if err := json.Unmarshal(respBody, &mr); err != nil {
		return nil, fmt.Errorf("decode meeting: %w", err)
	}
	if mr.ID.String() == "" || mr.JoinURL == "" || mr.StartURL == "" {
		return nil, fmt.Errorf("incomplete meeting in response")
	}

	return &model.Meeting{
		MeetingID: mr.ID.String(),
		JoinURL:   mr.JoinURL,
		StartURL:  mr.StartURL,
	}, nil
}

// Disabled stands in for the client and signer when credentials are missing.
type Disabled struct {
	Err error
}

func (d Disabled) CreateMeeting(context.Context, *model.MeetingRequest) (*model.Meeting, error) {
	return nil, d.Err
}

func (d Disabled) Sign(string, model.MeetingRole) (string, error) {
	return "", d.Err
}
