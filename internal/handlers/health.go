package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"auctionrelay/internal/relay"
)

type HealthHandler struct {
	sessions *relay.Registry
}

func NewHealthHandler(sessions *relay.Registry) *HealthHandler {
	return &HealthHandler{sessions: sessions}
}

type serviceInfo struct {
	Name      string   `json:"name"`
	Endpoints []string `json:"endpoints"`
	Status    string   `json:"status"`
}

// Index godoc
// @Summary Describe the running services
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *HealthHandler) Index(c *gin.Context) {
	services := []serviceInfo{{
		Name:      "Web Scraper",
		Endpoints: []string{"/scrape/*"},
		Status:    "Available",
	}}
	for _, st := range h.sessions.Statuses() {
		status := "Not initialized"
		if st.Ready {
			status = "Connected"
		}
		services = append(services, serviceInfo{
			Name:      "Messaging (" + string(st.Backend) + ")",
			Endpoints: []string{"/sessions/" + string(st.Backend) + "/*", "/scrape-and-send/via-" + string(st.Backend)},
			Status:    status,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"message":  "Auction relay API is running",
		"services": services,
	})
}

// Health godoc
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
