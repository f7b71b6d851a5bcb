package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// GatewayTransport posts messages to an HTTP SMS gateway.
type GatewayTransport struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewGatewayTransport(baseURL, apiKey string) *GatewayTransport {
	return &GatewayTransport{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type gatewayRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

type gatewayResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

func (g *GatewayTransport) Send(ctx context.Context, phone, body string) (*Result, error) {
	payload, err := json.Marshal(gatewayRequest{To: phone, Message: body})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.APIKey != "" {
		req.Header.Set("X-API-Key", g.APIKey)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var gw gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&gw); err != nil {
		return nil, fmt.Errorf("gateway returned unreadable response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || gw.Status == "failed" {
		reason := gw.Error
		if reason == "" {
			reason = fmt.Sprintf("gateway returned status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("gateway send failed: %s", reason)
	}

	return &Result{MessageID: gw.MessageID}, nil
}

var _ Transport = (*GatewayTransport)(nil)
