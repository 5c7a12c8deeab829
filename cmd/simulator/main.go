// Standalone dev tool that plays the part of customer and driver phones.
// Notifications posted here land in per-recipient in-memory inboxes with a
// simulated delivery delay and a configurable read rate, so the gateway can
// be exercised end to end without real recipients. Never imported by the
// services.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type DeliverRequest struct {
	MessageID      string `json:"message_id" binding:"required"`
	RecipientID    int64  `json:"recipient_id" binding:"required"`
	RecipientRole  string `json:"recipient_role" binding:"required"`
	Content        string `json:"content" binding:"required"`
	ShipmentNumber string `json:"shipment_number"`
}

type InboxEntry struct {
	MessageID      string     `json:"message_id"`
	RecipientRole  string     `json:"recipient_role"`
	Content        string     `json:"content"`
	ShipmentNumber string     `json:"shipment_number,omitempty"`
	DeliveredAt    time.Time  `json:"delivered_at"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
}

type DeliverResponse struct {
	MessageID   string    `json:"message_id"`
	SimulatorID string    `json:"simulator_id"`
	DeliveredAt time.Time `json:"delivered_at"`
	Read        bool      `json:"read"`
}

type HealthResponse struct {
	Status      string    `json:"status"`
	SimulatorID string    `json:"simulator_id"`
	Timestamp   time.Time `json:"timestamp"`
	ReadRate    float64   `json:"read_rate"`
}

// Simulator keeps every delivered notification in memory, grouped by
// recipient.
type Simulator struct {
	mu          sync.Mutex
	inboxes     map[int64][]InboxEntry
	readRate    float64
	minDelay    time.Duration
	maxDelay    time.Duration
	simulatorID string
	rng         *rand.Rand
}

func NewSimulator(readRate float64, minDelay, maxDelay time.Duration) *Simulator {
	return &Simulator{
		inboxes:     make(map[int64][]InboxEntry),
		readRate:    readRate,
		minDelay:    minDelay,
		maxDelay:    maxDelay,
		simulatorID: "INBOX_SIM_" + uuid.New().String()[:8],
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Simulator) deliver(req *DeliverRequest) *DeliverResponse {
	time.Sleep(s.randomDelay())

	now := time.Now()
	entry := InboxEntry{
		MessageID:      req.MessageID,
		RecipientRole:  req.RecipientRole,
		Content:        req.Content,
		ShipmentNumber: req.ShipmentNumber,
		DeliveredAt:    now,
	}

	read := s.shouldRead()
	if read {
		readAt := now.Add(s.randomDelay())
		entry.ReadAt = &readAt
	}

	s.mu.Lock()
	s.inboxes[req.RecipientID] = append(s.inboxes[req.RecipientID], entry)
	s.mu.Unlock()

	log.Info().
		Str("message_id", req.MessageID).
		Int64("recipient_id", req.RecipientID).
		Str("role", req.RecipientRole).
		Bool("read", read).
		Msg("Notification delivered to inbox")

	return &DeliverResponse{
		MessageID:   req.MessageID,
		SimulatorID: s.simulatorID,
		DeliveredAt: now,
		Read:        read,
	}
}

func (s *Simulator) inbox(recipientID int64) []InboxEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.inboxes[recipientID]
	out := make([]InboxEntry, len(entries))
	copy(out, entries)
	return out
}

func (s *Simulator) randomDelay() time.Duration {
	delta := s.maxDelay - s.minDelay
	if delta <= 0 {
		return s.minDelay
	}
	return s.minDelay + time.Duration(s.rng.Int63n(int64(delta)))
}

func (s *Simulator) shouldRead() bool {
	return s.rng.Float64() < s.readRate
}

type Handler struct {
	sim *Simulator
}

func NewHandler(sim *Simulator) *Handler {
	return &Handler{sim: sim}
}

func (h *Handler) Deliver(c *gin.Context) {
	var req DeliverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, h.sim.deliver(&req))
}

func (h *Handler) Inbox(c *gin.Context) {
	var recipientID int64
	if _, err := fmt.Sscanf(c.Param("recipient_id"), "%d", &recipientID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "recipient_id must be numeric",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"recipient_id": recipientID,
		"entries":      h.sim.inbox(recipientID),
	})
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:      "healthy",
		SimulatorID: h.sim.simulatorID,
		Timestamp:   time.Now(),
		ReadRate:    h.sim.readRate,
	})
}

func (h *Handler) UpdateConfig(c *gin.Context) {
	var config struct {
		ReadRate *float64 `json:"read_rate"`
	}
	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}
	if config.ReadRate != nil && *config.ReadRate >= 0 && *config.ReadRate <= 1.0 {
		h.sim.readRate = *config.ReadRate
		log.Info().Float64("rate", *config.ReadRate).Msg("Updated read rate")
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "Configuration updated",
		"read_rate": h.sim.readRate,
	})
}

func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request processed")
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/inbox/deliver", handler.Deliver)
		v1.GET("/inbox/:recipient_id", handler.Inbox)
		v1.GET("/health", handler.HealthCheck)
		v1.PUT("/config", handler.UpdateConfig)
	}

	router.GET("/health", handler.HealthCheck)

	return router
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	port := getEnv("PORT", "8082")
	readRate := getEnvFloat("READ_RATE", 0.8)
	minDelay := getEnvDuration("MIN_DELAY", 100*time.Millisecond)
	maxDelay := getEnvDuration("MAX_DELAY", 2*time.Second)

	log.Info().
		Str("port", port).
		Float64("read_rate", readRate).
		Dur("min_delay", minDelay).
		Dur("max_delay", maxDelay).
		Msg("Starting Inbox Simulator")

	sim := NewSimulator(readRate, minDelay, maxDelay)
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
