package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaiteddy/garage-comms/internal/model"
)

type stubStatsReader struct {
	stats *model.CorrespondenceStats
	err   error
}

func (s *stubStatsReader) Stats(ctx context.Context, window time.Duration) (*model.CorrespondenceStats, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.stats.WindowDays = int(window.Hours() / 24)
	return s.stats, nil
}

type stubCapabilities struct {
	caps model.ProviderCapabilities
}

func (s *stubCapabilities) Capabilities() model.ProviderCapabilities { return s.caps }

func TestStatsSummary(t *testing.T) {
	reader := &stubStatsReader{stats: &model.CorrespondenceStats{Total: 12, Failed: 2, TotalCost: 0.4}}
	caps := &stubCapabilities{caps: model.ProviderCapabilities{WhatsApp: true, SMS: true}}

	svc := NewStatsService(reader, caps)
	stats, err := svc.Summary(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 30, stats.WindowDays)
	assert.Equal(t, int64(12), stats.Total)
	assert.True(t, stats.Capabilities.WhatsApp)
	assert.False(t, stats.Capabilities.Email)
}

func TestStatsSummary_ReaderError(t *testing.T) {
	svc := NewStatsService(&stubStatsReader{err: errors.New("query failed")}, &stubCapabilities{})

	_, err := svc.Summary(context.Background())
	assert.Error(t, err)
}
