package services

import (
	"context"
	"time"

	"github.com/kaiteddy/garage-comms/internal/model"
)

// statsWindow is the rolling reporting window.
const statsWindow = 30 * 24 * time.Hour

// CorrespondenceReader exposes the aggregate queries the stats endpoint needs.
type CorrespondenceReader interface {
	Stats(ctx context.Context, window time.Duration) (*model.CorrespondenceStats, error)
}

// CapabilityReporter reports which channels currently have a configured provider.
type CapabilityReporter interface {
	Capabilities() model.ProviderCapabilities
}

// StatsService summarizes dispatch activity over the rolling window and
// annotates it with the live provider capabilities.
type StatsService struct {
	correspondence CorrespondenceReader
	capabilities   CapabilityReporter
}

func NewStatsService(correspondence CorrespondenceReader, capabilities CapabilityReporter) *StatsService {
	return &StatsService{correspondence: correspondence, capabilities: capabilities}
}

func (s *StatsService) Summary(ctx context.Context) (*model.CorrespondenceStats, error) {
	stats, err := s.correspondence.Stats(ctx, statsWindow)
	if err != nil {
		return nil, err
	}
	stats.Capabilities = s.capabilities.Capabilities()
	return stats, nil
}
