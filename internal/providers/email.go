package providers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"

	"github.com/kaiteddy/garage-comms/internal/model"
	"github.com/kaiteddy/garage-comms/pkg/logger"
)

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// dialer is satisfied by gomail.Dialer and swapped in tests.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailProvider sends HTML mail over SMTP. The SMTP protocol has no provider
// message id on submit, so the adapter mints one and sets it as the
// Message-ID header.
type EmailProvider struct {
	config EmailConfig
	dialer dialer
}

func NewEmailProvider(config EmailConfig) *EmailProvider {
	p := &EmailProvider{config: config}
	if p.Configured() {
		p.dialer = gomail.NewDialer(config.Host, config.Port, config.User, config.Password)
	}
	return p
}

func (p *EmailProvider) Channel() model.Channel { return model.ChannelEmail }

func (p *EmailProvider) Configured() bool { return p.config.Host != "" && p.config.From != "" }

func (p *EmailProvider) Send(ctx context.Context, req *SendRequest) (*SendResult, error) {
	if !p.Configured() || p.dialer == nil {
		return nil, ErrNotConfigured
	}

	messageID := fmt.Sprintf("<%s@garage-comms>", uuid.New().String())

	m := gomail.NewMessage()
	m.SetHeader("From", p.config.From)
	m.SetHeader("To", req.To)
	m.SetHeader("Subject", req.Subject)
	m.SetHeader("Message-ID", messageID)
	if req.PlainBody != "" {
		m.SetBody("text/plain", req.PlainBody)
		m.AddAlternative("text/html", req.Body)
	} else {
		m.SetBody("text/html", req.Body)
	}

	if err := p.dialer.DialAndSend(m); err != nil {
		return nil, fmt.Errorf("smtp send failed: %w", err)
	}

	logger.Debug("email send completed", "to", req.To, "message_id", messageID)

	return &SendResult{
		Success:    true,
		ProviderID: messageID,
		Cost:       model.ChannelEmail.UnitCost(),
	}, nil
}
