package sms

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/harborlight/outreach-backend/internal/config"
)

// Result is the provider acknowledgement for a single message.
type Result struct {
	MessageID string
}

// Transport sends one SMS per call. Dispatch behavior must be identical
// whichever implementation is wired in.
type Transport interface {
	Send(ctx context.Context, phone, body string) (*Result, error)
}

// MockTransport accepts every message without touching a provider.
type MockTransport struct{}

func (MockTransport) Send(ctx context.Context, phone, body string) (*Result, error) {
	return &Result{MessageID: "mock-" + uuid.NewString()}, nil
}

// FromConfig selects the transport named by SMS_PROVIDER.
func FromConfig(cfg *config.Config) (Transport, error) {
	switch cfg.SMSProvider {
	case config.ProviderMock:
		return MockTransport{}, nil
	case config.ProviderGateway:
		return NewGatewayTransport(cfg.SMSGatewayURL, cfg.SMSGatewayAPIKey), nil
	default:
		return nil, fmt.Errorf("unknown SMS provider %q", cfg.SMSProvider)
	}
}
