package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"auctionrelay/internal/middleware"
	"auctionrelay/internal/relay"
	"auctionrelay/internal/scraper"
	"auctionrelay/internal/validation"
)

// Relayer scrapes a vehicle and forwards it to a chat.
type Relayer interface {
	ScrapeAndSend(ctx context.Context, backend, href, to string) (*relay.Report, error)
}

type RelayHandler struct {
	relay Relayer
}

func NewRelayHandler(r Relayer) *RelayHandler {
	return &RelayHandler{relay: r}
}

type ScrapeAndSendRequest struct {
	Href string `json:"href" binding:"required"`
	To   string `json:"to" binding:"required"`
}

// ViaWhatsApp godoc
// @Summary Scrape a vehicle and send it over WhatsApp
// @Description Sends the formatted text and the vehicle photos as one batch. Photos are cropped and rehosted first when an image host is configured.
// @Tags relay
// @Accept json
// @Produce json
// @Param request body ScrapeAndSendRequest true "Vehicle URL and recipient"
// @Success 200 {object} relay.Report
// @Failure 400 {object} map[string]string "error: href and to are required"
// @Failure 409 {object} map[string]string "error: session not initialized"
// @Failure 500 {object} map[string]string "error and details"
// @Router /scrape-and-send/via-whatsapp [post]
func (h *RelayHandler) ViaWhatsApp(c *gin.Context) {
	h.send(c, relay.BackendWhatsApp, "WhatsApp")
}

// ViaTelegram godoc
// @Summary Scrape a vehicle and send it over Telegram
// @Description Sends the text first and then every photo on its own. Individual failures are reported per message.
// @Tags relay
// @Accept json
// @Produce json
// @Param request body ScrapeAndSendRequest true "Vehicle URL and recipient"
// @Success 200 {object} relay.Report
// @Failure 400 {object} map[string]string "error: href and to are required"
// @Failure 409 {object} map[string]string "error: session not initialized"
// @Failure 500 {object} map[string]string "error and details"
// @Router /scrape-and-send/via-telegram [post]
func (h *RelayHandler) ViaTelegram(c *gin.Context) {
	h.send(c, relay.BackendTelegram, "Telegram")
}

func (h *RelayHandler) send(c *gin.Context, backend relay.Backend, name string) {
	var req ScrapeAndSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "href and to are required"})
		return
	}
	if _, err := validation.ValidateAuctionURL(req.Href); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validation.ValidateRecipient(string(backend), req.To); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.relay.ScrapeAndSend(c.Request.Context(), string(backend), req.Href, req.To)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, report)
	case errors.Is(err, scraper.ErrUnsupportedSite):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, relay.ErrSessionNotReady):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, relay.ErrScrapeFailed):
		middleware.Logger(c).Warn("Relay scrape failed", "href", req.Href, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scrape vehicle data", "details": err.Error()})
	default:
		middleware.Logger(c).Error("Relay failed", "backend", backend, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to scrape and send via " + name,
			"details": err.Error(),
		})
	}
}
