package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// providersim is a local stand-in for the WhatsApp and SMS provider APIs.
// It honours the same request and response shapes the dispatcher speaks, with
// a configurable delivery rate and latency for exercising fallback paths.

type whatsappSendRequest struct {
	To          string `json:"to" binding:"required"`
	Content     string `json:"content" binding:"required"`
	CustomerID  int64  `json:"customer_id"`
	MessageType string `json:"message_type"`
}

type whatsappSendResponse struct {
	Success        bool    `json:"success"`
	ConversationID string  `json:"conversation_id,omitempty"`
	Cost           float64 `json:"cost"`
	Error          string  `json:"error,omitempty"`
}

type smsSendRequest struct {
	To          string `json:"to" binding:"required"`
	From        string `json:"from"`
	Content     string `json:"content" binding:"required"`
	CustomerID  int64  `json:"customer_id"`
	MessageType string `json:"message_type"`
	Urgency     string `json:"urgency"`
}

type smsSendResponse struct {
	Success   bool    `json:"success"`
	MessageID string  `json:"message_id,omitempty"`
	Cost      float64 `json:"cost"`
	Error     string  `json:"error,omitempty"`
}

// Simulator fakes both provider backends with tunable behaviour.
type Simulator struct {
	deliveryRate float64
	minDelay     time.Duration
	maxDelay     time.Duration
	instanceID   string
	rng          *rand.Rand
}

func NewSimulator(deliveryRate float64, minDelay, maxDelay time.Duration) *Simulator {
	return &Simulator{
		deliveryRate: deliveryRate,
		minDelay:     minDelay,
		maxDelay:     maxDelay,
		instanceID:   "SIM_" + uuid.New().String()[:8],
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Simulator) randomDelay() time.Duration {
	if s.maxDelay <= s.minDelay {
		return s.minDelay
	}
	delta := s.maxDelay - s.minDelay
	return s.minDelay + time.Duration(s.rng.Int63n(int64(delta)))
}

func (s *Simulator) shouldSucceed() bool {
	return s.rng.Float64() < s.deliveryRate
}

func (s *Simulator) randomError() string {
	errors := []string{
		"recipient not reachable",
		"network error at provider",
		"delivery timed out",
		"recipient has blocked messages",
		"content rejected by provider",
	}
	return errors[s.rng.Intn(len(errors))]
}

type Handler struct {
	sim *Simulator
}

func NewHandler(sim *Simulator) *Handler {
	return &Handler{sim: sim}
}

func (h *Handler) SendWhatsApp(c *gin.Context) {
	var req whatsappSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	time.Sleep(h.sim.randomDelay())

	if !h.sim.shouldSucceed() {
		errMsg := h.sim.randomError()
		log.Warn().
			Str("to", req.To).
			Str("error", errMsg).
			Msg("WhatsApp delivery failed")
		c.JSON(http.StatusOK, whatsappSendResponse{Success: false, Error: errMsg})
		return
	}

	resp := whatsappSendResponse{
		Success:        true,
		ConversationID: "conv_" + uuid.New().String(),
		Cost:           0.005,
	}

	log.Info().
		Str("to", req.To).
		Str("conversation_id", resp.ConversationID).
		Str("message_type", req.MessageType).
		Msg("WhatsApp message delivered")

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) SendSMS(c *gin.Context) {
	var req smsSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	time.Sleep(h.sim.randomDelay())

	if !h.sim.shouldSucceed() {
		errMsg := h.sim.randomError()
		log.Warn().
			Str("to", req.To).
			Str("error", errMsg).
			Msg("SMS delivery failed")
		c.JSON(http.StatusOK, smsSendResponse{Success: false, Error: errMsg})
		return
	}

	resp := smsSendResponse{
		Success:   true,
		MessageID: "sms_" + uuid.New().String(),
		Cost:      0.04,
	}

	log.Info().
		Str("to", req.To).
		Str("from", req.From).
		Str("message_id", resp.MessageID).
		Str("urgency", req.Urgency).
		Msg("SMS delivered")

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"instance_id":   h.sim.instanceID,
		"timestamp":     time.Now(),
		"delivery_rate": h.sim.deliveryRate,
	})
}

// UpdateConfig changes the simulated delivery rate at runtime, useful when
// driving the dispatcher through failure and fallback scenarios.
func (h *Handler) UpdateConfig(c *gin.Context) {
	var config struct {
		DeliveryRate *float64 `json:"delivery_rate"`
	}

	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if config.DeliveryRate != nil {
		if *config.DeliveryRate >= 0 && *config.DeliveryRate <= 1.0 {
			h.sim.deliveryRate = *config.DeliveryRate
			log.Info().Float64("rate", *config.DeliveryRate).Msg("Updated delivery rate")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Configuration updated",
		"delivery_rate": h.sim.deliveryRate,
	})
}

func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Msg("Request processed")
	})

	v1 := router.Group("/v1")
	{
		v1.POST("/messages", handler.SendWhatsApp)
		v1.POST("/sms/send", handler.SendSMS)
		v1.PUT("/config", handler.UpdateConfig)
	}

	router.GET("/health", handler.HealthCheck)

	return router
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	port := getEnv("PORT", "8081")
	deliveryRate := getEnvFloat("DELIVERY_RATE", 1)
	minDelay := getEnvDuration("MIN_DELAY", 100*time.Millisecond)
	maxDelay := getEnvDuration("MAX_DELAY", 1*time.Second)

	log.Info().
		Str("port", port).
		Float64("delivery_rate", deliveryRate).
		Dur("min_delay", minDelay).
		Dur("max_delay", maxDelay).
		Msg("Starting provider simulator")

	sim := NewSimulator(deliveryRate, minDelay, maxDelay)
	handler := NewHandler(sim)
	router := SetupRouter(handler)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var f float64
		if _, err := fmt.Sscanf(value, "%f", &f); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
