package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WhatsAppPayload is one outbound message for the gateway.
type WhatsAppPayload struct {
	To    string `json:"to"`    // phone in international format
	Body  string `json:"body"`  // rendered message text
	Token string `json:"token"` // gateway API token
}

// WhatsAppResponse is the gateway's per-message result.
type WhatsAppResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"` // diagnostic text on failure
}

// WhatsAppClient talks to the external WhatsApp gateway. Message sends
// are client communication only and never participate in financial
// transactions; a failed send is recorded on the Notification row.
type WhatsAppClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewWhatsAppClient(baseURL, token string) *WhatsAppClient {
	return &WhatsAppClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Send posts one message to the gateway and returns its diagnostic.
func (c *WhatsAppClient) Send(ctx context.Context, to, body string) (*WhatsAppResponse, error) {
	payload := WhatsAppPayload{To: to, Body: body, Token: c.token}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("whatsapp: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages/chat", bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("whatsapp: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whatsapp: gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("whatsapp: gateway returned %d", resp.StatusCode)
	}

	var result WhatsAppResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("whatsapp: decode response: %w", err)
	}
	if !result.Sent {
		return &result, fmt.Errorf("whatsapp: send rejected: %s", result.Message)
	}
	return &result, nil
}
