package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/fasthttp/router"

	"github.com/kaiteddy/garage-comms/internal/model"
	"github.com/kaiteddy/garage-comms/internal/services"
	xhttp "github.com/kaiteddy/garage-comms/pkg/http"
)

type DispatchService interface {
	Dispatch(ctx context.Context, req model.DispatchRequest) (*model.ExecutionReport, error)
	Preview(ctx context.Context, req model.DispatchRequest) (*model.DispatchPreview, error)
}

type DispatchHandler struct {
	svc DispatchService
}

func RegisterDispatchRoutes(e *router.Group, h *DispatchHandler) {
	e.POST("/communications/dispatch", h.Dispatch)
}

func NewDispatchHandler(svc DispatchService) *DispatchHandler {
	return &DispatchHandler{svc: svc}
}

type dispatchRequest struct {
	CustomerID          int64  `json:"customer_id"`
	VehicleRegistration string `json:"vehicle_registration"`
	MessageType         string `json:"message_type"`
	Urgency             string `json:"urgency"`
	Content             string `json:"content"`
	Subject             string `json:"subject"`
	DryRun              bool   `json:"dry_run"`
	ForceChannel        string `json:"force_channel"`
	EnableFallback      *bool  `json:"enable_fallback"`
	IgnoreCooldown      bool   `json:"ignore_cooldown"`
}

func (r *dispatchRequest) toModel() (model.DispatchRequest, error) {
	req := model.DispatchRequest{
		CustomerID:          r.CustomerID,
		VehicleRegistration: r.VehicleRegistration,
		MessageType:         model.NormalizeMessageType(r.MessageType),
		Urgency:             r.Urgency,
		Content:             r.Content,
		Subject:             r.Subject,
		DryRun:              r.DryRun,
		IgnoreCooldown:      r.IgnoreCooldown,
		EnableFallback:      true, // opt out explicitly
	}
	if r.EnableFallback != nil {
		req.EnableFallback = *r.EnableFallback
	}
	if r.ForceChannel != "" {
		ch, err := model.ParseChannel(r.ForceChannel)
		if err != nil {
			return req, err
		}
		req.ForceChannel = ch
	}
	return req, nil
}

// Dispatch runs one communication request. Exhausted channels are still a
// 200: the report carries the failure, the request itself was serviced.
func (h *DispatchHandler) Dispatch(ctx *xhttp.RequestCtx) {
	var body dispatchRequest
	if err := readJSON(ctx, &body); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	req, err := body.toModel()
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}

	if req.DryRun {
		preview, err := h.svc.Preview(ctx, req)
		if err != nil {
			writeDispatchError(ctx, err)
			return
		}
		writeJSON(ctx, xhttp.StatusOK, preview)
		return
	}

	report, err := h.svc.Dispatch(ctx, req)
	if err != nil {
		writeDispatchError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, report)
}

func writeDispatchError(ctx *xhttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, model.ErrMissingRecipient):
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrProfileNotFound):
		writeError(ctx, xhttp.StatusNotFound, err.Error())
	default:
		writeError(ctx, xhttp.StatusInternalServerError, err.Error())
	}
}

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	return json.Unmarshal(ctx.PostBody(), dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}
