package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/chefhut/storefront/internal/apiclient"
)

type HealthHandler struct {
	api         *apiclient.Client
	redisClient *redis.Client
	amqpConn    *amqp.Connection
}

// NewHealthHandler takes a nil amqpConn when session events stay in-process.
func NewHealthHandler(api *apiclient.Client, redisClient *redis.Client, amqpConn *amqp.Connection) *HealthHandler {
	return &HealthHandler{api: api, redisClient: redisClient, amqpConn: amqpConn}
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz fails while the backend API, Redis or an enabled RabbitMQ link is down.
func (h *HealthHandler) Readyz(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.api.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "api": "unavailable"})
		return
	}
	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "api": "reachable", "redis": "unavailable"})
		return
	}
	rabbit := "disabled"
	if h.amqpConn != nil {
		if h.amqpConn.IsClosed() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "rabbitmq": "unavailable"})
			return
		}
		rabbit = "connected"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"api":      "reachable",
		"redis":    "connected",
		"rabbitmq": rabbit,
	})
}
