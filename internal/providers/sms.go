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

type SMSConfig struct {
	URL     string
	APIKey  string
	Sender  string
	Timeout time.Duration
}

// SMSProvider sends through the SMS gateway API.
type SMSProvider struct {
	config SMSConfig
	client *fasthttp.Client
}

func NewSMSProvider(config SMSConfig) *SMSProvider {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &SMSProvider{
		config: config,
		client: &fasthttp.Client{
			ReadTimeout:         config.Timeout,
			WriteTimeout:        config.Timeout,
			MaxIdleConnDuration: 60 * time.Second,
		},
	}
}

func (p *SMSProvider) Channel() model.Channel { return model.ChannelSMS }

func (p *SMSProvider) Configured() bool { return p.config.URL != "" }

type smsSendRequest struct {
	To                  string `json:"to"`
	From                string `json:"from"`
	Content             string `json:"content"`
	CustomerID          int64  `json:"customer_id"`
	VehicleRegistration string `json:"vehicle_registration,omitempty"`
	MessageType         string `json:"message_type"`
	Urgency             string `json:"urgency"`
	Channel             string `json:"channel"`
}

type smsSendResponse struct {
	Success   bool    `json:"success"`
	MessageID string  `json:"message_id"`
	Cost      float64 `json:"cost"`
	Error     string  `json:"error,omitempty"`
}

func (p *SMSProvider) Send(ctx context.Context, req *SendRequest) (*SendResult, error) {
	if !p.Configured() {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(smsSendRequest{
		To:                  req.To,
		From:                p.config.Sender,
		Content:             req.Body,
		CustomerID:          req.CustomerID,
		VehicleRegistration: req.VehicleRegistration,
		MessageType:         string(req.MessageType),
		Urgency:             req.Urgency,
		Channel:             string(model.ChannelSMS),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	respBody, err := doRequest(ctx, p.client, p.config.Timeout, "POST", p.config.URL+"/v1/sms/send", p.config.APIKey, body)
	if err != nil {
		return nil, err
	}

	var resp smsSendResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	cost := resp.Cost
	if cost == 0 && resp.Success {
		cost = model.ChannelSMS.UnitCost()
	}

	logger.Debug("sms send completed", "to", req.To, "success", resp.Success, "message_id", resp.MessageID)

	return &SendResult{
		Success:    resp.Success,
		ProviderID: resp.MessageID,
		Cost:       cost,
		Error:      resp.Error,
	}, nil
}
