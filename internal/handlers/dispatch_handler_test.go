package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/kaiteddy/garage-comms/internal/model"
	"github.com/kaiteddy/garage-comms/internal/services"
	xhttp "github.com/kaiteddy/garage-comms/pkg/http"
)

type MockDispatchService struct {
	mock.Mock
}

func (m *MockDispatchService) Dispatch(ctx context.Context, req model.DispatchRequest) (*model.ExecutionReport, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ExecutionReport), args.Error(1)
}

func (m *MockDispatchService) Preview(ctx context.Context, req model.DispatchRequest) (*model.DispatchPreview, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DispatchPreview), args.Error(1)
}

type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) Summary(ctx context.Context) (*model.CorrespondenceStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CorrespondenceStats), args.Error(1)
}

func setupTestContext(method, path string, body []byte) *xhttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if body != nil {
		ctx.Request.SetBody(body)
	}
	return ctx
}

func TestDispatchHandler_Dispatch(t *testing.T) {
	t.Run("successful dispatch", func(t *testing.T) {
		svc := new(MockDispatchService)
		handler := NewDispatchHandler(svc)

		bodyBytes, _ := json.Marshal(dispatchRequest{
			CustomerID:  1,
			MessageType: "mot_reminder",
		})

		report := &model.ExecutionReport{
			RequestID:  "req-1",
			CustomerID: 1,
			FinalResult: model.FinalResult{
				Success: true,
				Channel: model.ChannelWhatsApp,
			},
		}

		svc.On("Dispatch", mock.Anything, mock.MatchedBy(func(r model.DispatchRequest) bool {
			return r.CustomerID == 1 && r.MessageType == model.MessageTypeMOTReminder && r.EnableFallback
		})).Return(report, nil)

		ctx := setupTestContext("POST", "/api/v1/communications/dispatch", bodyBytes)
		handler.Dispatch(ctx)

		assert.Equal(t, xhttp.StatusOK, ctx.Response.StatusCode())

		var got model.ExecutionReport
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &got))
		assert.Equal(t, "req-1", got.RequestID)
		assert.True(t, got.FinalResult.Success)
		svc.AssertExpectations(t)
	})

	t.Run("fallback defaults on when omitted, off when explicit false", func(t *testing.T) {
		svc := new(MockDispatchService)
		handler := NewDispatchHandler(svc)

		off := false
		bodyBytes, _ := json.Marshal(dispatchRequest{
			CustomerID:     1,
			MessageType:    "generic",
			EnableFallback: &off,
		})

		svc.On("Dispatch", mock.Anything, mock.MatchedBy(func(r model.DispatchRequest) bool {
			return !r.EnableFallback
		})).Return(&model.ExecutionReport{}, nil)

		ctx := setupTestContext("POST", "/api/v1/communications/dispatch", bodyBytes)
		handler.Dispatch(ctx)

		assert.Equal(t, xhttp.StatusOK, ctx.Response.StatusCode())
		svc.AssertExpectations(t)
	})

	t.Run("exhausted channels still 200", func(t *testing.T) {
		svc := new(MockDispatchService)
		handler := NewDispatchHandler(svc)

		bodyBytes, _ := json.Marshal(dispatchRequest{CustomerID: 1, MessageType: "mot_reminder"})

		report := &model.ExecutionReport{
			CustomerID: 1,
			FinalResult: model.FinalResult{
				Success:                false,
				RequiresManualFollowUp: true,
			},
		}
		svc.On("Dispatch", mock.Anything, mock.Anything).Return(report, nil)

		ctx := setupTestContext("POST", "/api/v1/communications/dispatch", bodyBytes)
		handler.Dispatch(ctx)

		assert.Equal(t, xhttp.StatusOK, ctx.Response.StatusCode())

		var got model.ExecutionReport
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &got))
		assert.True(t, got.FinalResult.RequiresManualFollowUp)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		handler := NewDispatchHandler(new(MockDispatchService))

		ctx := setupTestContext("POST", "/api/v1/communications/dispatch", []byte("{nope"))
		handler.Dispatch(ctx)

		assert.Equal(t, xhttp.StatusBadRequest, ctx.Response.StatusCode())
	})

	t.Run("missing recipient", func(t *testing.T) {
		svc := new(MockDispatchService)
		handler := NewDispatchHandler(svc)

		bodyBytes, _ := json.Marshal(dispatchRequest{MessageType: "generic"})
		svc.On("Dispatch", mock.Anything, mock.Anything).Return(nil, model.ErrMissingRecipient)

		ctx := setupTestContext("POST", "/api/v1/communications/dispatch", bodyBytes)
		handler.Dispatch(ctx)

		assert.Equal(t, xhttp.StatusBadRequest, ctx.Response.StatusCode())
	})

	t.Run("unknown customer", func(t *testing.T) {
		svc := new(MockDispatchService)
		handler := NewDispatchHandler(svc)

		bodyBytes, _ := json.Marshal(dispatchRequest{CustomerID: 404, MessageType: "generic"})
		svc.On("Dispatch", mock.Anything, mock.Anything).Return(nil, services.ErrProfileNotFound)

		ctx := setupTestContext("POST", "/api/v1/communications/dispatch", bodyBytes)
		handler.Dispatch(ctx)

		assert.Equal(t, xhttp.StatusNotFound, ctx.Response.StatusCode())
	})

	t.Run("invalid force channel", func(t *testing.T) {
		handler := NewDispatchHandler(new(MockDispatchService))

		bodyBytes, _ := json.Marshal(dispatchRequest{CustomerID: 1, MessageType: "generic", ForceChannel: "carrier_pigeon"})

		ctx := setupTestContext("POST", "/api/v1/communications/dispatch", bodyBytes)
		handler.Dispatch(ctx)

		assert.Equal(t, xhttp.StatusBadRequest, ctx.Response.StatusCode())
	})

	t.Run("dry run takes the preview path", func(t *testing.T) {
		svc := new(MockDispatchService)
		handler := NewDispatchHandler(svc)

		bodyBytes, _ := json.Marshal(dispatchRequest{CustomerID: 1, MessageType: "mot_reminder", DryRun: true})

		preview := &model.DispatchPreview{
			Profile:  &model.CommunicationProfile{CustomerID: 1},
			Strategy: &model.CommunicationStrategy{PrimaryChannel: model.ChannelWhatsApp},
			Rendered: map[model.Channel]string{model.ChannelSMS: "hi"},
		}
		svc.On("Preview", mock.Anything, mock.MatchedBy(func(r model.DispatchRequest) bool {
			return r.DryRun
		})).Return(preview, nil)

		ctx := setupTestContext("POST", "/api/v1/communications/dispatch", bodyBytes)
		handler.Dispatch(ctx)

		assert.Equal(t, xhttp.StatusOK, ctx.Response.StatusCode())
		svc.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
	})
}

func TestStatsHandler_GetStats(t *testing.T) {
	t.Run("returns summary", func(t *testing.T) {
		svc := new(MockStatsService)
		handler := NewStatsHandler(svc)

		svc.On("Summary", mock.Anything).Return(&model.CorrespondenceStats{
			WindowDays: 30,
			Total:      42,
			Capabilities: model.ProviderCapabilities{
				WhatsApp: true,
				SMS:      true,
			},
		}, nil)

		ctx := setupTestContext("GET", "/api/v1/communications/stats", nil)
		handler.GetStats(ctx)

		assert.Equal(t, xhttp.StatusOK, ctx.Response.StatusCode())

		var got model.CorrespondenceStats
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &got))
		assert.Equal(t, int64(42), got.Total)
		assert.True(t, got.Capabilities.WhatsApp)
	})

	t.Run("query failure", func(t *testing.T) {
		svc := new(MockStatsService)
		handler := NewStatsHandler(svc)

		svc.On("Summary", mock.Anything).Return(nil, errors.New("db down"))

		ctx := setupTestContext("GET", "/api/v1/communications/stats", nil)
		handler.GetStats(ctx)

		assert.Equal(t, xhttp.StatusInternalServerError, ctx.Response.StatusCode())
	})
}
