package repository

import (
	"context"
	"time"

	"github.com/kaiteddy/garage-comms/internal/model"
	"github.com/kaiteddy/garage-comms/pkg/pg"
)

type CorrespondenceRepository struct {
	*pg.DB
}

func NewCorrespondenceRepository(db *pg.DB) *CorrespondenceRepository {
	return &CorrespondenceRepository{
		db,
	}
}

func (r *CorrespondenceRepository) Create(ctx context.Context, rec *model.CorrespondenceRecord) (*model.CorrespondenceRecord, error) {
	entity := toCorrespondenceEntity(rec)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toCorrespondenceModel(entity), nil
}

// LastSentByChannel returns the most recent sent timestamp per channel for a
// customer, from their outbound correspondence history.
func (r *CorrespondenceRepository) LastSentByChannel(ctx context.Context, customerID int64) (map[model.Channel]time.Time, error) {
	type row struct {
		Channel  string    `gorm:"column:channel"`
		LastSent time.Time `gorm:"column:last_sent"`
	}

	var rows []row
	err := r.Read(ctx).WithContext(ctx).
		Model(&CorrespondenceEntity{}).
		Select("channel, MAX(created_at) AS last_sent").
		Where("customer_id = ? AND direction = ? AND status = ?", customerID, "outbound", model.CorrespondenceStatusSent).
		Group("channel").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}

	out := make(map[model.Channel]time.Time, len(rows))
	for _, rw := range rows {
		out[model.Channel(rw.Channel)] = rw.LastSent
	}
	return out, nil
}

// HasPriorWhatsApp reports whether there is evidence of a previous WhatsApp
// conversation or send for the customer.
func (r *CorrespondenceRepository) HasPriorWhatsApp(ctx context.Context, customerID int64) (bool, error) {
	var count int64
	err := r.Read(ctx).WithContext(ctx).
		Model(&CorrespondenceEntity{}).
		Where("customer_id = ? AND channel = ? AND status = ?", customerID, string(model.ChannelWhatsApp), model.CorrespondenceStatusSent).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Stats aggregates the trailing window for the statistics endpoint. Channel
// slices only count real channel rows; manual follow-ups are counted apart.
func (r *CorrespondenceRepository) Stats(ctx context.Context, window time.Duration) (*model.CorrespondenceStats, error) {
	since := time.Now().Add(-window)

	stats := &model.CorrespondenceStats{
		WindowDays: int(window.Hours() / 24),
		ByChannel:  make(map[model.Channel]model.ChannelStats),
	}

	q := r.Read(ctx).WithContext(ctx).
		Model(&CorrespondenceEntity{}).
		Where("created_at >= ?", since)

	if err := q.Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	if err := r.Read(ctx).WithContext(ctx).
		Model(&CorrespondenceEntity{}).
		Where("created_at >= ? AND status = ?", since, model.CorrespondenceStatusFailed).
		Count(&stats.Failed).Error; err != nil {
		return nil, err
	}

	if err := r.Read(ctx).WithContext(ctx).
		Model(&CorrespondenceEntity{}).
		Where("created_at >= ? AND category = ?", since, model.CategoryManualFollowUp).
		Count(&stats.ManualFollowUp).Error; err != nil {
		return nil, err
	}

	type costRow struct {
		TotalCost float64 `gorm:"column:total_cost"`
	}
	var cr costRow
	if err := r.Read(ctx).WithContext(ctx).
		Model(&CorrespondenceEntity{}).
		Select("COALESCE(SUM(cost), 0) AS total_cost").
		Where("created_at >= ?", since).
		Scan(&cr).Error; err != nil {
		return nil, err
	}
	stats.TotalCost = cr.TotalCost
	if stats.Total > 0 {
		stats.AvgCost = stats.TotalCost / float64(stats.Total)
	}

	type channelRow struct {
		Channel   string  `gorm:"column:channel"`
		Status    string  `gorm:"column:status"`
		Count     int64   `gorm:"column:cnt"`
		TotalCost float64 `gorm:"column:total_cost"`
	}
	var channelRows []channelRow
	if err := r.Read(ctx).WithContext(ctx).
		Model(&CorrespondenceEntity{}).
		Select("channel, status, COUNT(*) AS cnt, COALESCE(SUM(cost), 0) AS total_cost").
		Where("created_at >= ? AND category != ?", since, model.CategoryManualFollowUp).
		Group("channel").Group("status").
		Find(&channelRows).Error; err != nil {
		return nil, err
	}

	for _, rw := range channelRows {
		ch := model.Channel(rw.Channel)
		cs := stats.ByChannel[ch]
		switch rw.Status {
		case model.CorrespondenceStatusSent:
			cs.Sent += rw.Count
		case model.CorrespondenceStatusFailed:
			cs.Failed += rw.Count
		}
		cs.TotalCost += rw.TotalCost
		stats.ByChannel[ch] = cs
	}
	for ch, cs := range stats.ByChannel {
		if total := cs.Sent + cs.Failed; total > 0 {
			cs.SuccessRate = float64(cs.Sent) / float64(total)
		}
		stats.ByChannel[ch] = cs
	}

	return stats, nil
}
