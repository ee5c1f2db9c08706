package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"github.com/iliyamo/interview-scheduler/internal/config"
	"github.com/iliyamo/interview-scheduler/internal/utils"
)

// StreamProvider creates calls on Stream's video REST API.  The call id
// is the scheduler's session reference, so the interview record and the
// call share one key.
type StreamProvider struct {
	apiKey    string
	apiSecret string
	baseURL   string
	callType  string
	client    *http.Client
}

// NewStreamProvider builds a provider from cfg.  A nil client gets one
// with cfg.Timeout.
func NewStreamProvider(cfg config.StreamConfig, client *http.Client) *StreamProvider {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &StreamProvider{
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		baseURL:   cfg.BaseURL,
		callType:  cfg.CallType,
		client:    client,
	}
}

type streamCallRequest struct {
	Data streamCallData `json:"data"`
}

type streamCallData struct {
	CreatedByID string           `json:"created_by_id"`
	StartsAt    string           `json:"starts_at"`
	Custom      streamCallCustom `json:"custom"`
	Members     []Member         `json:"members,omitempty"`
}

type streamCallCustom struct {
	Description       string `json:"description"`
	AdditionalDetails string `json:"additionalDetails,omitempty"`
}

// Provision calls get-or-create for the call `callType:req.Ref`.
func (p *StreamProvider) Provision(ctx context.Context, req Request) (Session, error) {
	if req.Ref == "" {
		return Session{}, ErrEmptyRef
	}
	token, err := utils.NewServerToken(p.apiSecret, time.Hour)
	if err != nil {
		return Session{}, err
	}

	body, err := json.Marshal(streamCallRequest{Data: streamCallData{
		CreatedByID: req.CreatedBy,
		StartsAt:    req.StartsAt.UTC().Format(time.RFC3339),
		Custom: streamCallCustom{
			Description:       req.Title,
			AdditionalDetails: req.Description,
		},
		Members: req.Members,
	}})
	if err != nil {
		return Session{}, err
	}

	endpoint := fmt.Sprintf("%s/api/v2/video/call/%s/%s?api_key=%s",
		p.baseURL, url.PathEscape(p.callType), url.PathEscape(req.Ref), url.QueryEscape(p.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Session{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", token)
	httpReq.Header.Set("stream-auth-type", "jwt")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return Session{}, fmt.Errorf("stream: call %s: %w", req.Ref, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Session{}, fmt.Errorf("stream: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := gjson.GetBytes(raw, "message").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return Session{}, fmt.Errorf("stream: status %d: %s", resp.StatusCode, msg)
	}
	if !gjson.ValidBytes(raw) {
		return Session{}, fmt.Errorf("stream: invalid response body")
	}
	cid := gjson.GetBytes(raw, "call.cid").String()
	if cid == "" {
		cid = p.callType + ":" + req.Ref
	}
	return Session{Ref: req.Ref, CID: cid}, nil
}
