package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kaiteddy/garage-comms/internal/model"
)

func testTemplateService() *TemplateService {
	svc := NewTemplateService(BusinessInfo{
		Name:  "ELI MOTORS",
		Phone: "0208 203 6449",
		Email: "bookings@elimotors.co.uk",
	})
	svc.now = func() time.Time {
		return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestRender_ReplacesPlaceholders(t *testing.T) {
	out := Render("Hi {{name}}, your {{ make }} is ready", map[string]interface{}{
		"name": "Sarah",
		"make": "Ford",
	})
	assert.Equal(t, "Hi Sarah, your Ford is ready", out)
}

func TestRender_UnknownPlaceholderLeftIntact(t *testing.T) {
	out := Render("Hi {{name}}, ref {{missing}}", map[string]interface{}{"name": "Tom"})
	assert.Equal(t, "Hi Tom, ref {{missing}}", out)
}

func TestBuildContent_MOTExpiringSoon(t *testing.T) {
	svc := testTemplateService()
	expiry := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	vehicle := &model.Vehicle{Registration: "AB12CDE", Make: "Ford", Model: "Focus", MOTExpiry: &expiry}
	customer := &model.Customer{FirstName: "Sarah", LastName: "Jones"}

	subject, body := svc.BuildContent(model.MessageTypeMOTReminder, customer, vehicle)

	assert.Equal(t, "MOT reminder for AB12CDE", subject)
	assert.Contains(t, body, "expires in 5 days")
	assert.Contains(t, body, "Sarah Jones")
	assert.NotContains(t, body, "URGENT")
}

func TestBuildContent_MOTExpired(t *testing.T) {
	svc := testTemplateService()
	expiry := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	vehicle := &model.Vehicle{Registration: "AB12CDE", Make: "Ford", Model: "Focus", MOTExpiry: &expiry}
	customer := &model.Customer{FirstName: "Sarah"}

	subject, body := svc.BuildContent(model.MessageTypeMOTReminder, customer, vehicle)

	assert.Contains(t, subject, "URGENT")
	assert.Contains(t, body, "expired 3 days ago")
	assert.Contains(t, body, "illegal to drive")
}

func TestBuildContent_MOTNoExpiryDate(t *testing.T) {
	svc := testTemplateService()
	customer := &model.Customer{FirstName: "Tom"}

	subject, body := svc.BuildContent(model.MessageTypeMOTReminder, customer, nil)

	assert.Equal(t, "MOT reminder from ELI MOTORS", subject)
	assert.Contains(t, body, "MOT is due")
}

func TestBuildContent_ServiceReminder(t *testing.T) {
	svc := testTemplateService()
	vehicle := &model.Vehicle{Registration: "XY99ZZZ", Make: "Honda", Model: "Civic"}
	customer := &model.Customer{FirstName: "Amy"}

	subject, body := svc.BuildContent(model.MessageTypeServiceReminder, customer, vehicle)

	assert.Equal(t, "Service reminder for XY99ZZZ", subject)
	assert.Contains(t, body, "Honda Civic")
	assert.Contains(t, body, "due a service")
}

func TestRenderForChannel_SMSCarriesOptOutFooter(t *testing.T) {
	svc := testTemplateService()

	out := svc.RenderForChannel(model.ChannelSMS, "Your MOT is due.", &model.Customer{FirstName: "Lee"})

	assert.True(t, strings.HasPrefix(out, "Your MOT is due."))
	assert.Contains(t, out, "ELI MOTORS | 0208 203 6449")
	assert.Contains(t, out, "Reply STOP to opt out")
}

func TestRenderForChannel_EmailIsHTMLDocument(t *testing.T) {
	svc := testTemplateService()

	out := svc.RenderForChannel(model.ChannelEmail, "Line one\nLine two", &model.Customer{FirstName: "Lee"})

	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "Line one<br>Line two")
	assert.Contains(t, out, "ELI MOTORS")
	assert.Contains(t, out, "bookings@elimotors.co.uk")
	assert.NotContains(t, out, "Reply STOP")
}

func TestPlainTextForEmail(t *testing.T) {
	svc := testTemplateService()

	out := svc.PlainTextForEmail("Body text")

	assert.Contains(t, out, "Body text")
	assert.Contains(t, out, "Phone: 0208 203 6449")
}
