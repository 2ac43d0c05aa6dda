package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaiteddy/garage-comms/internal/model"
)

func TestWhatsAppSend(t *testing.T) {
	var gotAuth, gotPath string
	var gotReq whatsappSendRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(whatsappSendResponse{
			Success:        true,
			ConversationID: "conv-abc",
			Cost:           0.005,
		})
	}))
	defer srv.Close()

	p := NewWhatsAppProvider(WhatsAppConfig{URL: srv.URL, APIKey: "secret"})
	result, err := p.Send(context.Background(), &SendRequest{
		To:                  "+447700900001",
		Body:                "Your MOT expires in 5 days",
		CustomerID:          7,
		VehicleRegistration: "AB12CDE",
		MessageType:         model.MessageTypeMOTReminder,
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "conv-abc", result.ProviderID)
	assert.Equal(t, 0.005, result.Cost)

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "/v1/messages", gotPath)
	assert.Equal(t, "+447700900001", gotReq.To)
	assert.Equal(t, "AB12CDE", gotReq.VehicleRegistration)
}

func TestWhatsAppSend_ProviderReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(whatsappSendResponse{
			Success: false,
			Error:   "recipient not on whatsapp",
		})
	}))
	defer srv.Close()

	p := NewWhatsAppProvider(WhatsAppConfig{URL: srv.URL})
	result, err := p.Send(context.Background(), &SendRequest{To: "+447700900001", Body: "hi"})

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "recipient not on whatsapp", result.Error)
	assert.Zero(t, result.Cost)
}

func TestWhatsAppSend_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewWhatsAppProvider(WhatsAppConfig{URL: srv.URL})
	_, err := p.Send(context.Background(), &SendRequest{To: "+447700900001", Body: "hi"})
	assert.Error(t, err)
}

func TestWhatsAppSend_DefaultCostOnSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(whatsappSendResponse{Success: true, ConversationID: "conv-1"})
	}))
	defer srv.Close()

	p := NewWhatsAppProvider(WhatsAppConfig{URL: srv.URL})
	result, err := p.Send(context.Background(), &SendRequest{To: "+447700900001", Body: "hi"})

	require.NoError(t, err)
	assert.Equal(t, model.ChannelWhatsApp.UnitCost(), result.Cost)
}

func TestWhatsAppSend_NotConfigured(t *testing.T) {
	p := NewWhatsAppProvider(WhatsAppConfig{})
	_, err := p.Send(context.Background(), &SendRequest{To: "+447700900001"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSMSSend(t *testing.T) {
	var gotReq smsSendRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/sms/send", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(smsSendResponse{Success: true, MessageID: "sms-42", Cost: 0.04})
	}))
	defer srv.Close()

	p := NewSMSProvider(SMSConfig{URL: srv.URL, Sender: "EliMotors"})
	result, err := p.Send(context.Background(), &SendRequest{
		To:          "+447700900001",
		Body:        "Your MOT expires in 5 days",
		CustomerID:  7,
		MessageType: model.MessageTypeMOTReminder,
		Urgency:     model.UrgencyNormal,
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "sms-42", result.ProviderID)
	assert.Equal(t, "EliMotors", gotReq.From)
	assert.Equal(t, "sms", gotReq.Channel)
	assert.Equal(t, "normal", gotReq.Urgency)
}

func TestRegistryCapabilities(t *testing.T) {
	registry := NewRegistry(
		NewWhatsAppProvider(WhatsAppConfig{URL: "http://wa.local"}),
		NewSMSProvider(SMSConfig{}),
		NewEmailProvider(EmailConfig{Host: "smtp.local", From: "x@y.com"}),
	)

	caps := registry.Capabilities()
	assert.True(t, caps.WhatsApp)
	assert.False(t, caps.SMS)
	assert.True(t, caps.Email)

	_, ok := registry.Get(model.ChannelSMS)
	assert.True(t, ok)
}
