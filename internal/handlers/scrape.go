package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"auctionrelay/internal/middleware"
	"auctionrelay/internal/models"
	"auctionrelay/internal/scraper"
	"auctionrelay/internal/util"
	"auctionrelay/internal/validation"
)

// Scraper is the part of scraper.Scraper the HTTP layer uses.
type Scraper interface {
	RunListingScrape(ctx context.Context, rawURL string) *models.ListingResult
	RunDetailScrape(ctx context.Context, rawURL string) (*models.DetailResult, error)
	ScrapeSite(ctx context.Context, site scraper.Site, rawURL string) (*models.DetailResult, error)
}

type ScrapeHandler struct {
	scraper       Scraper
	searchURL     string
	detailBaseURL string
}

func NewScrapeHandler(s Scraper, searchURL, detailBaseURL string) *ScrapeHandler {
	return &ScrapeHandler{scraper: s, searchURL: searchURL, detailBaseURL: detailBaseURL}
}

// ScrapeIAAI godoc
// @Summary Scrape the IAAI search results
// @Description Renders the configured IAAI search page and returns every listing row. Follows pagination only when enabled in configuration.
// @Tags scrape
// @Produce json
// @Success 200 {object} models.ListingResult
// @Failure 429 {object} map[string]string "error: Too Many Requests - Rate limited"
// @Failure 500 {object} map[string]string "error and details"
// @Router /scrape/iaai [get]
func (h *ScrapeHandler) ScrapeIAAI(c *gin.Context) {
	h.writeListing(c, h.scraper.RunListingScrape(c.Request.Context(), h.searchURL))
}

// ScrapeListing godoc
// @Summary Scrape an arbitrary IAAI search URL
// @Tags scrape
// @Produce json
// @Param href query string true "Search page URL"
// @Success 200 {object} models.ListingResult
// @Failure 400 {object} map[string]string "error: invalid href"
// @Failure 500 {object} map[string]string "error and details"
// @Router /scrape/listing [get]
func (h *ScrapeHandler) ScrapeListing(c *gin.Context) {
	u, err := validation.ValidateAuctionURL(c.Query("href"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.writeListing(c, h.scraper.RunListingScrape(c.Request.Context(), u.String()))
}

func (h *ScrapeHandler) writeListing(c *gin.Context, res *models.ListingResult) {
	if !res.Success {
		middleware.Logger(c).Warn("Listing scrape failed", "message", res.Message, "details", res.Details)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   res.Message,
			"details": res.Details,
		})
		return
	}
	c.JSON(http.StatusOK, res)
}

// VehicleByID godoc
// @Summary Scrape an IAAI vehicle by stock id
// @Tags scrape
// @Produce json
// @Param id path string true "Vehicle id, e.g. 42781060~US"
// @Success 200 {object} map[string]interface{} "message, vehicleId and data"
// @Failure 400 {object} map[string]string "error: invalid id"
// @Failure 404 {object} map[string]interface{} "error: vehicle data could not be extracted"
// @Failure 500 {object} map[string]interface{} "error and details"
// @Router /scrape/vehicle/{id} [get]
func (h *ScrapeHandler) VehicleByID(c *gin.Context) {
	id := c.Param("id")
	if err := validation.ValidateVehicleID(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.scraper.ScrapeSite(c.Request.Context(), scraper.SiteIAAIUS, h.detailBaseURL+id)
	if err != nil {
		util.SafeErrorResponse(c, http.StatusInternalServerError, "Failed to scrape vehicle", err)
		return
	}
	if !res.Success {
		c.JSON(detailStatus(res), gin.H{
			"error":     res.Message,
			"vehicleId": id,
			"details":   res.Details,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   res.Message,
		"vehicleId": id,
		"data":      res.Data,
	})
}

// VehicleByURL godoc
// @Summary Scrape a vehicle page on IAAI, IAAI Canada or Copart
// @Description The extractor is chosen from the URL host.
// @Tags scrape
// @Produce json
// @Param href query string true "Vehicle page URL"
// @Success 200 {object} models.DetailResult
// @Failure 400 {object} map[string]string "error: invalid or unsupported href"
// @Failure 404 {object} models.DetailResult
// @Failure 500 {object} models.DetailResult
// @Router /scrape/vehicle [get]
func (h *ScrapeHandler) VehicleByURL(c *gin.Context) {
	u, err := validation.ValidateAuctionURL(c.Query("href"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.scraper.RunDetailScrape(c.Request.Context(), u.String())
	if errors.Is(err, scraper.ErrUnsupportedSite) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		util.SafeErrorResponse(c, http.StatusInternalServerError, "Failed to scrape vehicle", err)
		return
	}
	if !res.Success {
		c.JSON(detailStatus(res), res)
		return
	}
	c.JSON(http.StatusOK, res)
}

// detailStatus maps a failed detail envelope to 404 when the page rendered
// without a title and 500 otherwise.
func detailStatus(res *models.DetailResult) int {
	if res.PageStructure != nil {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
