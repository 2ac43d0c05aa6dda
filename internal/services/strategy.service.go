package services

import (
	"fmt"

	"github.com/kaiteddy/garage-comms/internal/model"
)

// StrategyService plans the channel execution order for one dispatch. Pure
// computation over an already-resolved profile, no failure modes.
type StrategyService struct{}

func NewStrategyService() *StrategyService {
	return &StrategyService{}
}

// Plan decides primary and fallback channels.
//
// A forced channel becomes the primary even when unavailable; that override
// is deliberate and only flagged in the reasoning trail. Fallbacks are the
// remaining available channels in availability order, and are disabled
// entirely when the caller turned fallback off or forced a channel.
func (s *StrategyService) Plan(profile *model.CommunicationProfile, msgType model.MessageType, forceChannel model.Channel, enableFallback bool) *model.CommunicationStrategy {
	strategy := &model.CommunicationStrategy{
		FallbackChannels: []model.Channel{},
		Reasoning:        []string{},
	}

	if forceChannel != "" {
		strategy.PrimaryChannel = forceChannel
		strategy.Forced = true
		strategy.Reasoning = append(strategy.Reasoning,
			fmt.Sprintf("channel %s forced by caller", forceChannel))
		if !profile.Available(forceChannel) {
			strategy.Reasoning = append(strategy.Reasoning,
				fmt.Sprintf("warning: forced channel %s is not in the customer's available channels", forceChannel))
		}
	} else {
		strategy.PrimaryChannel = profile.PreferredChannel
		if len(profile.AvailableChannels) == 0 {
			strategy.Reasoning = append(strategy.Reasoning,
				fmt.Sprintf("no channels available, defaulting to %s", profile.PreferredChannel))
		} else {
			strategy.Reasoning = append(strategy.Reasoning,
				fmt.Sprintf("primary channel %s from resolved preference", strategy.PrimaryChannel))
		}
	}

	if enableFallback && forceChannel == "" {
		for _, ch := range profile.AvailableChannels {
			if ch == strategy.PrimaryChannel {
				continue
			}
			strategy.FallbackChannels = append(strategy.FallbackChannels, ch)
		}
		if len(strategy.FallbackChannels) > 0 {
			strategy.Reasoning = append(strategy.Reasoning,
				fmt.Sprintf("fallback order: %v", strategy.FallbackChannels))
		}
	} else if !enableFallback {
		strategy.Reasoning = append(strategy.Reasoning, "fallback disabled by caller")
	}

	strategy.EstimatedCost = strategy.PrimaryChannel.UnitCost()
	strategy.EstimatedDelivery = strategy.PrimaryChannel.DeliveryEstimate()

	if msgType == model.MessageTypeMOTReminder {
		strategy.Reasoning = append(strategy.Reasoning, "mot reminder: time-sensitive category")
	}

	return strategy
}
