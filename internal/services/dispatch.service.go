package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/kaiteddy/garage-comms/internal/model"
	"github.com/kaiteddy/garage-comms/internal/providers"
	"github.com/kaiteddy/garage-comms/pkg/logger"
	"github.com/kaiteddy/garage-comms/pkg/prom"
)

// ProfileResolver resolves the communication profile for a dispatch.
type ProfileResolver interface {
	Resolve(ctx context.Context, ref ProfileRef) (*model.CommunicationProfile, error)
}

// ProviderRegistry hands out the channel adapter for each channel.
type ProviderRegistry interface {
	Get(c model.Channel) (providers.Provider, bool)
}

// CorrespondenceWriter persists terminal dispatch outcomes.
type CorrespondenceWriter interface {
	Create(ctx context.Context, rec *model.CorrespondenceRecord) (*model.CorrespondenceRecord, error)
}

// DispatchService runs one outbound message request end to end:
// resolve profile, plan strategy, execute channels in order, log the outcome.
// Execution is strictly sequential; a later channel is never tried once an
// earlier one succeeded.
type DispatchService struct {
	profiles       ProfileResolver
	planner        *StrategyService
	templates      *TemplateService
	registry       ProviderRegistry
	correspondence CorrespondenceWriter
	cooldown       *CooldownGuard
}

func NewDispatchService(
	profiles ProfileResolver,
	planner *StrategyService,
	templates *TemplateService,
	registry ProviderRegistry,
	correspondence CorrespondenceWriter,
	cooldown *CooldownGuard,
) *DispatchService {
	return &DispatchService{
		profiles:       profiles,
		planner:        planner,
		templates:      templates,
		registry:       registry,
		correspondence: correspondence,
		cooldown:       cooldown,
	}
}

// Dispatch executes a live send. The only errors returned are missing input
// and profile-not-found; every other outcome, including total exhaustion of
// channels, is a report the caller must inspect.
func (s *DispatchService) Dispatch(ctx context.Context, req model.DispatchRequest) (*model.ExecutionReport, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()

	profile, err := s.profiles.Resolve(ctx, ProfileRef{
		CustomerID:          req.CustomerID,
		VehicleRegistration: req.VehicleRegistration,
	})
	if err != nil {
		return nil, err
	}

	msgType := model.NormalizeMessageType(string(req.MessageType))
	urgency := req.Urgency
	if urgency == "" {
		urgency = model.UrgencyNormal
	}

	report := &model.ExecutionReport{
		RequestID:    uuid.New().String(),
		CustomerID:   profile.CustomerID,
		CustomerName: profile.CustomerName,
		Attempts:     []model.ExecutionAttempt{},
	}

	if !req.IgnoreCooldown && !s.cooldown.Reserve(ctx, profile.CustomerID, string(msgType)) {
		report.FinalResult = model.FinalResult{
			Success: false,
			Reason:  "suppressed by cooldown window",
		}
		report.Duration = time.Since(start)
		return report, nil
	}

	strategy := s.planner.Plan(profile, msgType, req.ForceChannel, req.EnableFallback)
	report.Strategy = strategy

	subject, content := s.resolveContent(req, msgType, profile)

	s.execute(ctx, req, profile, strategy, report, msgType, urgency, subject, content)

	report.Duration = time.Since(start)
	prom.ObserveDispatchDuration(report.Duration.Seconds(), string(msgType))

	return report, nil
}

// Preview is the dry run: resolved profile, planned strategy and the rendered
// message for every channel. No provider calls, no records, no cooldown.
func (s *DispatchService) Preview(ctx context.Context, req model.DispatchRequest) (*model.DispatchPreview, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	profile, err := s.profiles.Resolve(ctx, ProfileRef{
		CustomerID:          req.CustomerID,
		VehicleRegistration: req.VehicleRegistration,
	})
	if err != nil {
		return nil, err
	}

	msgType := model.NormalizeMessageType(string(req.MessageType))
	strategy := s.planner.Plan(profile, msgType, req.ForceChannel, req.EnableFallback)
	subject, content := s.resolveContent(req, msgType, profile)

	customer := &model.Customer{ID: profile.CustomerID, FirstName: profile.CustomerName}
	rendered := make(map[model.Channel]string, len(model.ChannelEvaluationOrder))
	for _, ch := range model.ChannelEvaluationOrder {
		rendered[ch] = s.templates.RenderForChannel(ch, content, customer)
	}

	return &model.DispatchPreview{
		Profile:  profile,
		Strategy: strategy,
		Rendered: rendered,
		Subject:  subject,
	}, nil
}

func (s *DispatchService) resolveContent(req model.DispatchRequest, msgType model.MessageType, profile *model.CommunicationProfile) (subject, content string) {
	customer := &model.Customer{ID: profile.CustomerID, FirstName: profile.CustomerName}
	genSubject, genContent := s.templates.BuildContent(msgType, customer, profile.Vehicle)

	subject = req.Subject
	if subject == "" {
		subject = genSubject
	}
	content = req.Content
	if content == "" {
		content = genContent
	}
	return subject, content
}

// execute walks the strategy order: primary first, then fallbacks. Stops at
// the first success, or immediately after the first non-success when fallback
// is disabled. Provider panics are not possible here; thrown provider errors
// are recorded as attempts and never abort the request.
func (s *DispatchService) execute(
	ctx context.Context,
	req model.DispatchRequest,
	profile *model.CommunicationProfile,
	strategy *model.CommunicationStrategy,
	report *model.ExecutionReport,
	msgType model.MessageType,
	urgency, subject, content string,
) {
	customer := &model.Customer{ID: profile.CustomerID, FirstName: profile.CustomerName}

	for _, ch := range strategy.Channels() {
		attempt := model.ExecutionAttempt{
			Channel:   ch,
			Timestamp: time.Now(),
		}

		// A forced channel is attempted even when unavailable, that override
		// is deliberate. Everything else unavailable is skipped without a
		// provider call.
		forced := strategy.Forced && ch == strategy.PrimaryChannel
		if !profile.Available(ch) && !forced {
			attempt.Status = model.AttemptSkipped
			attempt.Error = "channel not available for this customer"
			report.Attempts = append(report.Attempts, attempt)
			prom.AddDispatchAttempt(string(ch), string(model.AttemptSkipped))
			continue
		}

		provider, ok := s.registry.Get(ch)
		if !ok {
			attempt.Status = model.AttemptError
			attempt.Error = "no provider registered for channel"
			report.Attempts = append(report.Attempts, attempt)
			prom.AddDispatchAttempt(string(ch), string(model.AttemptError))
			if !req.EnableFallback {
				break
			}
			continue
		}

		sendReq := &providers.SendRequest{
			To:          profile.ContactValue(ch),
			Subject:     subject,
			Body:        s.templates.RenderForChannel(ch, content, customer),
			CustomerID:  profile.CustomerID,
			MessageType: msgType,
			Urgency:     urgency,
		}
		if ch == model.ChannelEmail {
			sendReq.PlainBody = s.templates.PlainTextForEmail(content)
		}
		if profile.Vehicle != nil {
			sendReq.VehicleRegistration = profile.Vehicle.Registration
		}

		result, err := provider.Send(ctx, sendReq)
		if err != nil {
			attempt.Status = model.AttemptError
			attempt.Error = err.Error()
			report.Attempts = append(report.Attempts, attempt)
			prom.AddDispatchAttempt(string(ch), string(model.AttemptError))
			logger.Warn("provider call failed", "channel", ch, "customer_id", profile.CustomerID, "error", err)
			if !req.EnableFallback {
				break
			}
			continue
		}

		if !result.Success {
			attempt.Status = model.AttemptFailed
			attempt.Error = result.Error
			report.Attempts = append(report.Attempts, attempt)
			prom.AddDispatchAttempt(string(ch), string(model.AttemptFailed))
			logger.Warn("provider reported unsuccessful send", "channel", ch, "customer_id", profile.CustomerID, "error", result.Error)
			if !req.EnableFallback {
				break
			}
			continue
		}

		attempt.Status = model.AttemptSuccess
		attempt.ProviderID = result.ProviderID
		attempt.Cost = result.Cost
		report.Attempts = append(report.Attempts, attempt)
		prom.AddDispatchAttempt(string(ch), string(model.AttemptSuccess))
		prom.AddDispatchCost(result.Cost, string(ch))

		report.TotalCost += result.Cost
		report.FinalResult = model.FinalResult{
			Success:    true,
			Channel:    ch,
			ProviderID: result.ProviderID,
			Cost:       result.Cost,
		}

		s.logSuccess(ctx, profile, msgType, urgency, subject, sendReq.Body, ch, result)
		return
	}

	// every channel exhausted without a success
	report.FinalResult = model.FinalResult{
		Success:                false,
		RequiresManualFollowUp: true,
		Reason:                 "all channels failed or unavailable",
	}

	s.logExhaustion(ctx, profile, strategy, report, msgType, urgency)

	if !req.IgnoreCooldown {
		s.cooldown.Release(ctx, profile.CustomerID, string(msgType))
	}
}

// logSuccess writes the durable record for a delivered send. A write failure
// is logged and swallowed: it must not change the result already determined.
func (s *DispatchService) logSuccess(
	ctx context.Context,
	profile *model.CommunicationProfile,
	msgType model.MessageType,
	urgency, subject, body string,
	ch model.Channel,
	result *providers.SendResult,
) {
	rec := &model.CorrespondenceRecord{
		CustomerID:    profile.CustomerID,
		Channel:       ch,
		Direction:     "outbound",
		Subject:       subject,
		Content:       body,
		ContactMethod: contactMethod(ch),
		ContactValue:  profile.ContactValue(ch),
		Category:      string(msgType),
		Urgency:       urgency,
		Cost:          result.Cost,
		Status:        model.CorrespondenceStatusSent,
	}
	if profile.Vehicle != nil {
		rec.VehicleRegistration = profile.Vehicle.Registration
	}

	switch ch {
	case model.ChannelWhatsApp:
		rec.WhatsAppConversationID = result.ProviderID
	case model.ChannelSMS:
		rec.SMSLogID = result.ProviderID
	case model.ChannelEmail:
		rec.EmailMessageID = result.ProviderID
	}

	if _, err := s.correspondence.Create(ctx, rec); err != nil {
		logger.Error("failed to persist correspondence record", "customer_id", profile.CustomerID, "channel", ch, "error", err)
	}
}

// logExhaustion writes the manual-follow-up record with the full attempt list
// serialized, so an operator can audit exactly what was tried.
func (s *DispatchService) logExhaustion(
	ctx context.Context,
	profile *model.CommunicationProfile,
	strategy *model.CommunicationStrategy,
	report *model.ExecutionReport,
	msgType model.MessageType,
	urgency string,
) {
	detail, err := json.Marshal(report.Attempts)
	if err != nil {
		detail = []byte("failed to serialize attempts")
	}

	rec := &model.CorrespondenceRecord{
		CustomerID:       profile.CustomerID,
		Channel:          strategy.PrimaryChannel,
		Direction:        "outbound",
		Subject:          "Automated dispatch failed: " + string(msgType),
		Content:          string(detail),
		ContactMethod:    contactMethod(strategy.PrimaryChannel),
		ContactValue:     profile.ContactValue(strategy.PrimaryChannel),
		Category:         model.CategoryManualFollowUp,
		Urgency:          urgency,
		Status:           model.CorrespondenceStatusFailed,
		RequiresResponse: true,
	}
	if profile.Vehicle != nil {
		rec.VehicleRegistration = profile.Vehicle.Registration
	}

	if _, err := s.correspondence.Create(ctx, rec); err != nil {
		logger.Error("failed to persist manual follow-up record", "customer_id", profile.CustomerID, "error", err)
	}
}

func contactMethod(ch model.Channel) string {
	if ch == model.ChannelEmail {
		return "email"
	}
	return "phone"
}
