package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaiteddy/garage-comms/internal/model"
	"github.com/kaiteddy/garage-comms/internal/providers"
	"github.com/kaiteddy/garage-comms/pkg/redis"
)

func testCooldownGuard(t *testing.T, window time.Duration) *CooldownGuard {
	t.Helper()

	mr := miniredis.RunT(t)
	adapter, err := redis.NewRedisAdapter("cooldown-test-"+t.Name(), "test:", &redis.Options{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	return NewCooldownGuard(adapter, window)
}

func TestCooldown_SecondReserveBlocked(t *testing.T) {
	guard := testCooldownGuard(t, time.Hour)
	ctx := context.Background()

	assert.True(t, guard.Reserve(ctx, 1, "mot_reminder"))
	assert.False(t, guard.Reserve(ctx, 1, "mot_reminder"))
}

func TestCooldown_DifferentCategoryOrCustomerIndependent(t *testing.T) {
	guard := testCooldownGuard(t, time.Hour)
	ctx := context.Background()

	assert.True(t, guard.Reserve(ctx, 1, "mot_reminder"))
	assert.True(t, guard.Reserve(ctx, 1, "service_reminder"))
	assert.True(t, guard.Reserve(ctx, 2, "mot_reminder"))
}

func TestCooldown_ReleaseFreesSlot(t *testing.T) {
	guard := testCooldownGuard(t, time.Hour)
	ctx := context.Background()

	assert.True(t, guard.Reserve(ctx, 1, "mot_reminder"))
	guard.Release(ctx, 1, "mot_reminder")
	assert.True(t, guard.Reserve(ctx, 1, "mot_reminder"))
}

func TestCooldown_DisabledWindowAlwaysAllows(t *testing.T) {
	guard := testCooldownGuard(t, 0)
	ctx := context.Background()

	assert.True(t, guard.Reserve(ctx, 1, "mot_reminder"))
	assert.True(t, guard.Reserve(ctx, 1, "mot_reminder"))
}

func TestCooldown_NilGuardAllows(t *testing.T) {
	var guard *CooldownGuard
	assert.True(t, guard.Reserve(context.Background(), 1, "mot_reminder"))
}

func TestDispatch_SuppressedByCooldown(t *testing.T) {
	guard := testCooldownGuard(t, time.Hour)

	whatsapp := &fakeProvider{channel: model.ChannelWhatsApp, result: &providers.SendResult{Success: true, ProviderID: "conv-1", Cost: 0.005}}
	writer := &recordingWriter{}

	svc := NewDispatchService(
		&stubResolver{profile: dispatchProfile()},
		NewStrategyService(),
		testTemplateService(),
		providers.NewRegistry(whatsapp),
		writer,
		guard,
	)

	req := model.DispatchRequest{CustomerID: 1, MessageType: model.MessageTypeMOTReminder, EnableFallback: true}

	first, err := svc.Dispatch(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, first.FinalResult.Success)

	second, err := svc.Dispatch(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, second.FinalResult.Success)
	assert.Equal(t, "suppressed by cooldown window", second.FinalResult.Reason)
	assert.Empty(t, second.Attempts)
	assert.Equal(t, 1, whatsapp.calls)
	assert.Len(t, writer.records, 1)
}

func TestDispatch_IgnoreCooldownBypassesGuard(t *testing.T) {
	guard := testCooldownGuard(t, time.Hour)

	whatsapp := &fakeProvider{channel: model.ChannelWhatsApp, result: &providers.SendResult{Success: true, ProviderID: "conv-1", Cost: 0.005}}
	writer := &recordingWriter{}

	svc := NewDispatchService(
		&stubResolver{profile: dispatchProfile()},
		NewStrategyService(),
		testTemplateService(),
		providers.NewRegistry(whatsapp),
		writer,
		guard,
	)

	req := model.DispatchRequest{CustomerID: 1, MessageType: model.MessageTypeMOTReminder, EnableFallback: true}

	_, err := svc.Dispatch(context.Background(), req)
	require.NoError(t, err)

	req.IgnoreCooldown = true
	second, err := svc.Dispatch(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.FinalResult.Success)
	assert.Equal(t, 2, whatsapp.calls)
}

func TestDispatch_CooldownReleasedAfterTotalFailure(t *testing.T) {
	guard := testCooldownGuard(t, time.Hour)

	whatsapp := &fakeProvider{channel: model.ChannelWhatsApp, result: &providers.SendResult{Success: false, Error: "down"}}
	sms := &fakeProvider{channel: model.ChannelSMS, result: &providers.SendResult{Success: false, Error: "down"}}
	email := &fakeProvider{channel: model.ChannelEmail, result: &providers.SendResult{Success: false, Error: "down"}}
	writer := &recordingWriter{}

	svc := NewDispatchService(
		&stubResolver{profile: dispatchProfile()},
		NewStrategyService(),
		testTemplateService(),
		providers.NewRegistry(whatsapp, sms, email),
		writer,
		guard,
	)

	req := model.DispatchRequest{CustomerID: 1, MessageType: model.MessageTypeMOTReminder, EnableFallback: true}

	first, err := svc.Dispatch(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.FinalResult.Success)

	// slot was released, the retry reaches the providers again
	whatsapp.result = &providers.SendResult{Success: true, ProviderID: "conv-2", Cost: 0.005}
	second, err := svc.Dispatch(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.FinalResult.Success)
}
