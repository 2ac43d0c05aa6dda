package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/kaiteddy/garage-comms/internal/model"
	"github.com/kaiteddy/garage-comms/pkg/logger"
)

type WhatsAppConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// WhatsAppProvider sends through the WhatsApp business API gateway.
type WhatsAppProvider struct {
	config WhatsAppConfig
	client *fasthttp.Client
}

func NewWhatsAppProvider(config WhatsAppConfig) *WhatsAppProvider {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &WhatsAppProvider{
		config: config,
		client: &fasthttp.Client{
			ReadTimeout:         config.Timeout,
			WriteTimeout:        config.Timeout,
			MaxIdleConnDuration: 60 * time.Second,
		},
	}
}

func (p *WhatsAppProvider) Channel() model.Channel { return model.ChannelWhatsApp }

func (p *WhatsAppProvider) Configured() bool { return p.config.URL != "" }

type whatsappSendRequest struct {
	To                  string `json:"to"`
	Content             string `json:"content"`
	CustomerID          int64  `json:"customer_id"`
	VehicleRegistration string `json:"vehicle_registration,omitempty"`
	MessageType         string `json:"message_type"`
}

type whatsappSendResponse struct {
	Success        bool    `json:"success"`
	ConversationID string  `json:"conversation_id"`
	Cost           float64 `json:"cost"`
	Error          string  `json:"error,omitempty"`
}

func (p *WhatsAppProvider) Send(ctx context.Context, req *SendRequest) (*SendResult, error) {
	if !p.Configured() {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(whatsappSendRequest{
		To:                  req.To,
		Content:             req.Body,
		CustomerID:          req.CustomerID,
		VehicleRegistration: req.VehicleRegistration,
		MessageType:         string(req.MessageType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	respBody, err := doRequest(ctx, p.client, p.config.Timeout, "POST", p.config.URL+"/v1/messages", p.config.APIKey, body)
	if err != nil {
		return nil, err
	}

	var resp whatsappSendResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	cost := resp.Cost
	if cost == 0 && resp.Success {
		cost = model.ChannelWhatsApp.UnitCost()
	}

	logger.Debug("whatsapp send completed", "to", req.To, "success", resp.Success, "conversation_id", resp.ConversationID)

	return &SendResult{
		Success:    resp.Success,
		ProviderID: resp.ConversationID,
		Cost:       cost,
		Error:      resp.Error,
	}, nil
}

// doRequest performs one provider HTTP call with a deadline. Shared by the
// WhatsApp and SMS adapters.
func doRequest(ctx context.Context, client *fasthttp.Client, timeout time.Duration, method, url, apiKey string, body []byte) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	if body != nil {
		req.SetBody(body)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(timeout)
	}

	if err := client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	statusCode := resp.StatusCode()
	if statusCode != fasthttp.StatusOK && statusCode != fasthttp.StatusAccepted {
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", statusCode, resp.Body())
	}

	result := make([]byte, len(resp.Body()))
	copy(result, resp.Body())

	return result, nil
}
