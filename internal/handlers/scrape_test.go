package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"

	"auctionrelay/internal/models"
	"auctionrelay/internal/scraper"
)

func scrapeRouter(s Scraper) *gin.Engine {
	h := NewScrapeHandler(s, "https://www.iaai.com/Search?q=x", "https://www.iaai.com/VehicleDetail/")
	r := gin.New()
	r.GET("/scrape/iaai", h.ScrapeIAAI)
	r.GET("/scrape/listing", h.ScrapeListing)
	r.GET("/scrape/vehicle/:id", h.VehicleByID)
	r.GET("/scrape/vehicle", h.VehicleByURL)
	return r
}

func TestScrapeIAAIUsesConfiguredSearch(t *testing.T) {
	fs := &fakeScraper{listing: &models.ListingResult{
		Success:    true,
		Message:    "Successfully scraped 1 items",
		TotalItems: 1,
		Data:       []models.ListingItem{{Title: models.StringPtr("2019 TOYOTA CAMRY")}},
	}}
	rec := performJSONRequest(scrapeRouter(fs), http.MethodGet, "/scrape/iaai", nil, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if fs.lastURL != "https://www.iaai.com/Search?q=x" {
		t.Fatalf("unexpected search url %q", fs.lastURL)
	}
	body := decodeBody(t, rec)
	if body["success"] != true || body["totalItems"].(float64) != 1 {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestScrapeListingFailure(t *testing.T) {
	fs := &fakeScraper{listing: &models.ListingResult{
		Message: "Failed to scrape IAAI",
		Details: "navigation timeout",
	}}
	rec := performJSONRequest(scrapeRouter(fs), http.MethodGet, "/scrape/listing?href=https://www.iaai.com/Search", nil, nil)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "Failed to scrape IAAI" || body["details"] != "navigation timeout" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestScrapeListingRejectsBadHref(t *testing.T) {
	fs := &fakeScraper{}
	for _, href := range []string{"", "ftp://www.iaai.com/Search", "not a url", "http://127.0.0.1/", "https://example.com/Search"} {
		rec := performJSONRequest(scrapeRouter(fs), http.MethodGet, "/scrape/listing?href="+url.QueryEscape(href), nil, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("href %q: expected 400, got %d", href, rec.Code)
		}
	}
	if fs.lastURL != "" {
		t.Fatalf("scraper should not run, got %q", fs.lastURL)
	}
}

func TestVehicleByID(t *testing.T) {
	fs := &fakeScraper{detail: &models.DetailResult{
		Success: true,
		Message: "Vehicle data scraped successfully",
		Data:    sampleRecord(),
	}}
	rec := performJSONRequest(scrapeRouter(fs), http.MethodGet, "/scrape/vehicle/42781060~US", nil, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if fs.lastSite != scraper.SiteIAAIUS || fs.lastURL != "https://www.iaai.com/VehicleDetail/42781060~US" {
		t.Fatalf("unexpected scrape target %s %s", fs.lastSite, fs.lastURL)
	}
	body := decodeBody(t, rec)
	if body["vehicleId"] != "42781060~US" {
		t.Fatalf("unexpected vehicleId %v", body["vehicleId"])
	}
	data := body["data"].(map[string]interface{})
	if data["vin"] != "4T1B11HK5KU000000" {
		t.Fatalf("unexpected data %v", data)
	}
}

func TestVehicleByIDFailureStatus(t *testing.T) {
	tests := []struct {
		name   string
		result *models.DetailResult
		want   int
	}{
		{
			name: "missing title",
			result: &models.DetailResult{
				Message:       "Could not extract vehicle data",
				Data:          models.NewVehicleRecord(),
				PageStructure: &models.PageStructure{Title: "Access denied"},
			},
			want: http.StatusNotFound,
		},
		{
			name:   "unexpected error",
			result: &models.DetailResult{Message: "Failed to scrape vehicle", Details: "browser crashed"},
			want:   http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := &fakeScraper{detail: tt.result}
			rec := performJSONRequest(scrapeRouter(fs), http.MethodGet, "/scrape/vehicle/123", nil, nil)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
			body := decodeBody(t, rec)
			if body["vehicleId"] != "123" || body["error"] != tt.result.Message {
				t.Fatalf("unexpected body %v", body)
			}
		})
	}
}

func TestVehicleByIDRejectsInvalidID(t *testing.T) {
	fs := &fakeScraper{}
	rec := performJSONRequest(scrapeRouter(fs), http.MethodGet, "/scrape/vehicle/abc$def", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestVehicleByURL(t *testing.T) {
	fs := &fakeScraper{detail: &models.DetailResult{Success: true, Data: sampleRecord()}}
	rec := performJSONRequest(scrapeRouter(fs), http.MethodGet, "/scrape/vehicle?href=https://www.copart.com/lot/123", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if fs.lastURL != "https://www.copart.com/lot/123" {
		t.Fatalf("unexpected url %q", fs.lastURL)
	}
}

func TestVehicleByURLUnsupportedSite(t *testing.T) {
	fs := &fakeScraper{err: fmt.Errorf("%w: example.com", scraper.ErrUnsupportedSite)}
	for _, href := range []string{"https://example.com/car", "http://10.0.0.1/lot/1"} {
		rec := performJSONRequest(scrapeRouter(fs), http.MethodGet, "/scrape/vehicle?href="+url.QueryEscape(href), nil, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("href %q: expected 400, got %d", href, rec.Code)
		}
	}
	if fs.lastURL != "" {
		t.Fatalf("scraper should not run, got %q", fs.lastURL)
	}
}

func TestVehicleByURLMissingTitle(t *testing.T) {
	fs := &fakeScraper{detail: &models.DetailResult{
		Message:       "Could not extract vehicle data",
		PageStructure: &models.PageStructure{},
	}}
	rec := performJSONRequest(scrapeRouter(fs), http.MethodGet, "/scrape/vehicle?href=https://ca.iaai.com/vehicle/1", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["pageStructure"] == nil {
		t.Fatalf("expected pageStructure in body %v", body)
	}
}
