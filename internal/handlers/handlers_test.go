package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"auctionrelay/internal/models"
	"auctionrelay/internal/relay"
	"auctionrelay/internal/scraper"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performJSONRequest(router *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

type fakeScraper struct {
	listing  *models.ListingResult
	detail   *models.DetailResult
	err      error
	lastURL  string
	lastSite scraper.Site
}

func (f *fakeScraper) RunListingScrape(_ context.Context, rawURL string) *models.ListingResult {
	f.lastURL = rawURL
	return f.listing
}

func (f *fakeScraper) RunDetailScrape(_ context.Context, rawURL string) (*models.DetailResult, error) {
	f.lastURL = rawURL
	return f.detail, f.err
}

func (f *fakeScraper) ScrapeSite(_ context.Context, site scraper.Site, rawURL string) (*models.DetailResult, error) {
	f.lastSite = site
	f.lastURL = rawURL
	return f.detail, f.err
}

var errBridge = errors.New("bridge unavailable")

type fakeBridge struct {
	failStart bool
}

func (f *fakeBridge) StartInit(context.Context, relay.Credential) (string, error) {
	if f.failStart {
		return "", errBridge
	}
	return "code-hash", nil
}

func (f *fakeBridge) CompleteInit(_ context.Context, cred relay.Credential, _, _ string) (string, error) {
	return "session-" + cred.Phone, nil
}

func (f *fakeBridge) InitSession(_ context.Context, token string) error {
	if token == "" {
		return errBridge
	}
	return nil
}

func (f *fakeBridge) Logout(context.Context) error { return nil }

func (f *fakeBridge) SendBatch(context.Context, string, []relay.Message) (json.RawMessage, error) {
	return json.RawMessage(`{"status":"success"}`), nil
}

func (f *fakeBridge) SendText(context.Context, string, string) (json.RawMessage, error) {
	return json.RawMessage(`{"status":"success"}`), nil
}

func (f *fakeBridge) SendMedia(context.Context, string, string) (json.RawMessage, error) {
	return json.RawMessage(`{"status":"success"}`), nil
}

func newRegistry(bridge relay.Bridge) *relay.Registry {
	return relay.NewRegistry(
		relay.NewSession(relay.BackendWhatsApp, bridge, nil),
		relay.NewSession(relay.BackendTelegram, bridge, nil),
	)
}

func sampleRecord() *models.VehicleRecord {
	r := models.NewVehicleRecord()
	r.Set("title", "2019 TOYOTA CAMRY SE")
	r.Set("vin", "4T1B11HK5KU000000")
	return r
}
