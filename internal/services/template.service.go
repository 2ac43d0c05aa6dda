package services

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/kaiteddy/garage-comms/internal/model"
)

var placeholderRegex = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// Render performs moustache-style replacement for {{key}} placeholders.
// Unknown placeholders are left untouched.
func Render(template string, variables map[string]interface{}) string {
	if template == "" || len(variables) == 0 {
		return template
	}

	return placeholderRegex.ReplaceAllStringFunc(template, func(match string) string {
		submatch := placeholderRegex.FindStringSubmatch(match)
		if len(submatch) != 2 {
			return match
		}
		if value, ok := variables[submatch[1]]; ok {
			return fmt.Sprint(value)
		}
		return match
	})
}

// BusinessInfo is the garage identity stamped onto every rendered message.
type BusinessInfo struct {
	Name  string
	Phone string
	Email string
}

type TemplateService struct {
	business BusinessInfo
	now      func() time.Time
}

func NewTemplateService(business BusinessInfo) *TemplateService {
	return &TemplateService{
		business: business,
		now:      time.Now,
	}
}

// BuildContent generates the default message body and email subject for a
// message type from customer and vehicle data. Callers that supplied literal
// content never reach this.
func (s *TemplateService) BuildContent(msgType model.MessageType, customer *model.Customer, vehicle *model.Vehicle) (subject, body string) {
	vars := map[string]interface{}{
		"name":     customer.FullName(),
		"business": s.business.Name,
	}
	if vehicle != nil {
		vars["registration"] = vehicle.Registration
		vars["make"] = vehicle.Make
		vars["model"] = vehicle.Model
	}

	switch msgType {
	case model.MessageTypeMOTReminder:
		return s.motReminder(vars, vehicle)
	case model.MessageTypeServiceReminder:
		subject = Render("Service reminder for {{registration}}", vars)
		body = Render("Hi {{name}}, your {{make}} {{model}} ({{registration}}) is due a service. Call us to book an appointment.", vars)
		return subject, body
	case model.MessageTypeAppointment:
		subject = Render("Your appointment with {{business}}", vars)
		body = Render("Hi {{name}}, this is a confirmation of your upcoming appointment with {{business}}. Reply if you need to reschedule.", vars)
		return subject, body
	}

	subject = Render("A message from {{business}}", vars)
	body = Render("Hi {{name}}, we have an update about your vehicle. Please get in touch with {{business}}.", vars)
	return subject, body
}

func (s *TemplateService) motReminder(vars map[string]interface{}, vehicle *model.Vehicle) (subject, body string) {
	if vehicle == nil || vehicle.MOTExpiry == nil {
		subject = Render("MOT reminder from {{business}}", vars)
		body = Render("Hi {{name}}, our records show your vehicle's MOT is due. Call us to book a test.", vars)
		return subject, body
	}

	days := int(math.Round(vehicle.MOTExpiry.Sub(s.now()).Hours() / 24))

	switch {
	case days < 0:
		vars["days"] = -days
		subject = Render("URGENT: MOT expired for {{registration}}", vars)
		body = Render("URGENT: Hi {{name}}, the MOT for your {{make}} {{model}} ({{registration}}) expired {{days}} days ago. It is illegal to drive without a valid MOT. Call us today to book a test.", vars)
	case days == 0:
		subject = Render("MOT expires today for {{registration}}", vars)
		body = Render("Hi {{name}}, the MOT for your {{make}} {{model}} ({{registration}}) expires today. Call us to book a test.", vars)
	default:
		vars["days"] = days
		subject = Render("MOT reminder for {{registration}}", vars)
		body = Render("Hi {{name}}, the MOT for your {{make}} {{model}} ({{registration}}) expires in {{days}} days. Call us to book a test.", vars)
	}
	return subject, body
}

// RenderForChannel produces the channel-specific message body. WhatsApp and
// SMS get compact branded text with an opt-out footer; email gets an HTML
// document with a contact-details block.
func (s *TemplateService) RenderForChannel(ch model.Channel, content string, customer *model.Customer) string {
	switch ch {
	case model.ChannelWhatsApp, model.ChannelSMS:
		var b strings.Builder
		b.WriteString(content)
		b.WriteString("\n\n")
		b.WriteString(s.business.Name)
		if s.business.Phone != "" {
			b.WriteString(" | ")
			b.WriteString(s.business.Phone)
		}
		b.WriteString("\nReply STOP to opt out")
		return b.String()
	case model.ChannelEmail:
		return s.renderEmailHTML(content)
	}
	return content
}

// PlainTextForEmail is the text/plain alternative body.
func (s *TemplateService) PlainTextForEmail(content string) string {
	return content + "\n\n" + s.contactBlockText()
}

func (s *TemplateService) renderEmailHTML(content string) string {
	vars := map[string]interface{}{
		"business": s.business.Name,
		"phone":    s.business.Phone,
		"email":    s.business.Email,
		"content":  strings.ReplaceAll(content, "\n", "<br>"),
	}
	return Render(`<!DOCTYPE html>
<html>
<body style="font-family:Arial,sans-serif;color:#222;">
<div style="max-width:600px;margin:0 auto;padding:16px;">
<h2 style="color:#1a4d8f;">{{business}}</h2>
<p>{{content}}</p>
<hr style="border:none;border-top:1px solid #ddd;">
<div style="font-size:12px;color:#777;">
<p>{{business}}<br>Phone: {{phone}}<br>Email: {{email}}</p>
</div>
</div>
</body>
</html>`, vars)
}

func (s *TemplateService) contactBlockText() string {
	parts := []string{s.business.Name}
	if s.business.Phone != "" {
		parts = append(parts, "Phone: "+s.business.Phone)
	}
	if s.business.Email != "" {
		parts = append(parts, "Email: "+s.business.Email)
	}
	return strings.Join(parts, "\n")
}
