package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaiteddy/garage-comms/internal/model"
)

func seedCorrespondence(t *testing.T, db *testDB, e *CorrespondenceEntity) {
	if e.Direction == "" {
		e.Direction = "outbound"
	}
	require.NoError(t, db.rawDB.Create(e).Error)
}

func TestCorrespondenceRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCorrespondenceRepository(db.DB)
	ctx := context.Background()

	created, err := repo.Create(ctx, &model.CorrespondenceRecord{
		CustomerID:             42,
		VehicleRegistration:    "LX19ABC",
		Channel:                model.ChannelWhatsApp,
		Direction:              "outbound",
		Content:                "Your MOT expires in 5 days",
		ContactMethod:          "phone",
		ContactValue:           "+447700900123",
		Category:               string(model.MessageTypeMOTReminder),
		Urgency:                model.UrgencyNormal,
		Cost:                   0.005,
		Status:                 model.CorrespondenceStatusSent,
		WhatsAppConversationID: "conv-123",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "conv-123", created.WhatsAppConversationID)
	assert.Empty(t, created.SMSLogID)
	assert.Empty(t, created.EmailMessageID)
}

func TestCorrespondenceRepository_LastSentByChannel(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCorrespondenceRepository(db.DB)
	ctx := context.Background()

	older := time.Now().Add(-72 * time.Hour)
	newer := time.Now().Add(-1 * time.Hour)

	seedCorrespondence(t, db, &CorrespondenceEntity{
		CustomerID: 1, Channel: "sms", Status: "sent", CreatedAt: older,
	})
	seedCorrespondence(t, db, &CorrespondenceEntity{
		CustomerID: 1, Channel: "sms", Status: "sent", CreatedAt: newer,
	})
	// failed rows do not count as "last sent"
	seedCorrespondence(t, db, &CorrespondenceEntity{
		CustomerID: 1, Channel: "email", Status: "failed", CreatedAt: newer,
	})
	// other customers are invisible
	seedCorrespondence(t, db, &CorrespondenceEntity{
		CustomerID: 2, Channel: "whatsapp", Status: "sent", CreatedAt: newer,
	})

	lastSent, err := repo.LastSentByChannel(ctx, 1)
	require.NoError(t, err)
	require.Len(t, lastSent, 1)
	assert.WithinDuration(t, newer, lastSent[model.ChannelSMS], 2*time.Second)
}

func TestCorrespondenceRepository_HasPriorWhatsApp(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCorrespondenceRepository(db.DB)
	ctx := context.Background()

	has, err := repo.HasPriorWhatsApp(ctx, 7)
	require.NoError(t, err)
	assert.False(t, has)

	seedCorrespondence(t, db, &CorrespondenceEntity{
		CustomerID: 7, Channel: "whatsapp", Status: "sent", CreatedAt: time.Now(),
	})

	has, err = repo.HasPriorWhatsApp(ctx, 7)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestCorrespondenceRepository_Stats(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCorrespondenceRepository(db.DB)
	ctx := context.Background()

	now := time.Now()

	seedCorrespondence(t, db, &CorrespondenceEntity{
		CustomerID: 1, Channel: "whatsapp", Status: "sent", Category: "mot_reminder",
		Cost: 0.005, CreatedAt: now.Add(-time.Hour),
	})
	seedCorrespondence(t, db, &CorrespondenceEntity{
		CustomerID: 2, Channel: "sms", Status: "sent", Category: "generic",
		Cost: 0.04, CreatedAt: now.Add(-24 * time.Hour),
	})
	seedCorrespondence(t, db, &CorrespondenceEntity{
		CustomerID: 3, Channel: "sms", Status: "failed", Category: "manual_followup",
		RequiresResponse: true, CreatedAt: now.Add(-2 * time.Hour),
	})
	// outside the window, must not be counted
	seedCorrespondence(t, db, &CorrespondenceEntity{
		CustomerID: 4, Channel: "email", Status: "sent", Category: "generic",
		Cost: 0.001, CreatedAt: now.Add(-40 * 24 * time.Hour),
	})

	stats, err := repo.Stats(ctx, 30*24*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 30, stats.WindowDays)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(1), stats.ManualFollowUp)
	assert.InDelta(t, 0.045, stats.TotalCost, 1e-9)
	assert.InDelta(t, 0.015, stats.AvgCost, 1e-9)

	require.Contains(t, stats.ByChannel, model.ChannelWhatsApp)
	assert.Equal(t, int64(1), stats.ByChannel[model.ChannelWhatsApp].Sent)
	assert.Equal(t, 1.0, stats.ByChannel[model.ChannelWhatsApp].SuccessRate)

	// manual follow-up rows are not attributed to a channel slice
	assert.Equal(t, int64(1), stats.ByChannel[model.ChannelSMS].Sent)
	assert.Equal(t, int64(0), stats.ByChannel[model.ChannelSMS].Failed)
	assert.NotContains(t, stats.ByChannel, model.ChannelEmail)
}
