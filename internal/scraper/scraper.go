package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"auctionrelay/internal/browser"
	"auctionrelay/internal/models"
)

var tracer = otel.Tracer("auctionrelay/internal/scraper")

// ErrUnsupportedSite is returned for detail URLs on hosts without an extractor.
var ErrUnsupportedSite = errors.New("unsupported auction site")

// Site identifies an auction site with its own detail extractor.
type Site string

const (
	SiteIAAIUS Site = "iaai-us"
	SiteIAAICA Site = "iaai-ca"
	SiteCopart Site = "copart"
)

var siteHosts = map[string]Site{
	"www.iaai.com":   SiteIAAIUS,
	"iaai.com":       SiteIAAIUS,
	"ca.iaai.com":    SiteIAAICA,
	"www.copart.com": SiteCopart,
	"copart.com":     SiteCopart,
}

// Envelope messages.
const (
	MsgListingSuccess     = "Scraping successful"
	MsgListingEmpty       = "Scraping completed, but no items found matching the criteria."
	MsgListingNoContainer = "Scraping failed: Main content container not found on the initial page."
	MsgListingUnexpected  = "Failed to scrape the website due to an unexpected error."
	MsgDetailSuccess      = "Vehicle details scraped successfully."
	MsgDetailMissingTitle = "Could not extract any vehicle data or title was missing."
	MsgDetailUnexpected   = "Failed to scrape vehicle details due to an unexpected error."
)

type detailMessages struct {
	success      string
	missingTitle string
	unexpected   string
}

// Each site words its detail envelopes differently.
var siteDetailMessages = map[Site]detailMessages{
	SiteIAAIUS: {
		success:      MsgDetailSuccess,
		missingTitle: MsgDetailMissingTitle,
		unexpected:   MsgDetailUnexpected,
	},
	SiteIAAICA: {
		success:      "Vehicle details scraped successfully from ca.iaai.com.",
		missingTitle: "Could not extract any vehicle data or title was missing from ca.iaai.com.",
		unexpected:   "Failed to scrape vehicle details from ca.iaai.com due to an unexpected error.",
	},
	SiteCopart: {
		success:      "Vehicle details scraped successfully from Copart.",
		missingTitle: "Could not extract core vehicle data or title was missing from Copart.",
		unexpected:   "Failed to scrape vehicle details from Copart due to an unexpected error.",
	},
}

func messagesFor(site Site) detailMessages {
	if m, ok := siteDetailMessages[site]; ok {
		return m
	}
	return siteDetailMessages[SiteIAAIUS]
}

// DetailExtractor turns a rendered vehicle page into a record.
type DetailExtractor interface {
	Site() Site
	Extract(ctx context.Context, page browser.Page, doc *goquery.Document) (*models.VehicleRecord, error)
}

// Delays holds every wait used while scraping. Zero values disable a wait.
type Delays struct {
	SelectorTimeout time.Duration
	NavTimeout      time.Duration
	ScrollSettle    time.Duration
	ItemSettle      time.Duration
	DetailSettle    map[Site]time.Duration
}

func DefaultDelays() Delays {
	return Delays{
		SelectorTimeout: 20 * time.Second,
		NavTimeout:      60 * time.Second,
		ScrollSettle:    700 * time.Millisecond,
		ItemSettle:      200 * time.Millisecond,
		DetailSettle: map[Site]time.Duration{
			SiteIAAIUS: 2 * time.Second,
			SiteIAAICA: 3 * time.Second,
			SiteCopart: 3 * time.Second,
		},
	}
}

// Options configures a Scraper.
type Options struct {
	CookiePath       string
	FollowPagination bool
	MaxPages         int
	Selectors        ListingSelectors
	Delays           Delays
}

// Scraper runs listing and detail scrapes, each in its own browser session.
// It holds no per-run state and is safe for concurrent use.
type Scraper struct {
	launcher   browser.Launcher
	opts       Options
	extractors map[Site]DetailExtractor
}

func New(launcher browser.Launcher, opts Options) *Scraper {
	if opts.Selectors == (ListingSelectors{}) {
		opts.Selectors = IAAIListingSelectors
	}
	if opts.MaxPages <= 0 || opts.MaxPages > MaxPages {
		opts.MaxPages = MaxPages
	}
	return &Scraper{
		launcher: launcher,
		opts:     opts,
		extractors: map[Site]DetailExtractor{
			SiteIAAIUS: NewIAAIUSExtractor(),
			SiteIAAICA: NewIAAICAExtractor(),
			SiteCopart: NewCopartExtractor(),
		},
	}
}

// ExtractorFor picks the detail extractor for a URL by its hostname.
func (s *Scraper) ExtractorFor(rawURL string) (DetailExtractor, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	site, ok := siteHosts[strings.ToLower(u.Hostname())]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSite, u.Hostname())
	}
	return s.extractors[site], nil
}

// RunListingScrape collects listing items starting at rawURL.
func (s *Scraper) RunListingScrape(ctx context.Context, rawURL string) (result *models.ListingResult) {
	ctx, span := tracer.Start(ctx, "RunListingScrape", trace.WithAttributes(attribute.String("url", rawURL)))
	defer func() {
		span.SetAttributes(attribute.Bool("success", result.Success))
		span.End()
	}()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			span.RecordError(err)
			slog.Error("❌ listing scrape panicked", "url", rawURL, "err", err)
			result = &models.ListingResult{Success: false, Message: MsgListingUnexpected, Details: err.Error()}
		}
	}()

	session, err := s.launcher.Launch(ctx)
	if err != nil {
		return s.listingFailure(span, rawURL, err)
	}
	defer closeSession(session)
	page := session.Page

	browser.ApplyCookieFile(page, s.opts.CookiePath)

	slog.Info("🔍 navigating to listing", "url", rawURL)
	if err := page.Navigate(ctx, rawURL); err != nil {
		return s.listingFailure(span, rawURL, err)
	}

	extractor := NewListingExtractor(s.opts.Selectors, s.opts.Delays)
	paginator := &Paginator{
		MaxPages:     s.opts.MaxPages,
		FollowNext:   s.opts.FollowPagination,
		NextSelector: s.opts.Selectors.NextButton,
		NavTimeout:   s.opts.Delays.NavTimeout,
	}

	items, pages, err := paginator.Run(ctx, page, func(ctx context.Context, _ int) ([]models.ListingItem, error) {
		return extractor.ExtractPage(ctx, page)
	})
	if errors.Is(err, ErrContainerNotFound) {
		s.logStructure(page)
		span.SetStatus(codes.Error, "container not found")
		return &models.ListingResult{
			Success: false,
			Message: MsgListingNoContainer,
			Details: fmt.Sprintf("Selector '%s' not found at %s. Site structure may have changed or URL is incorrect.",
				s.opts.Selectors.Container, rawURL),
			Data: []models.ListingItem{},
		}
	}
	if err != nil {
		return s.listingFailure(span, rawURL, err)
	}

	if len(items) == 0 {
		return &models.ListingResult{
			Success:      true,
			Message:      MsgListingEmpty,
			Details:      fmt.Sprintf("Checked %d page(s). Verify selectors or the search URL.", pages),
			PagesScraped: pages,
			Data:         []models.ListingItem{},
		}
	}

	slog.Info("✅ listing scrape finished", "items", len(items), "pages", pages)
	return &models.ListingResult{
		Success:      true,
		Message:      MsgListingSuccess,
		TotalItems:   len(items),
		PagesScraped: pages,
		Data:         items,
	}
}

func (s *Scraper) listingFailure(span trace.Span, rawURL string, err error) *models.ListingResult {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	slog.Error("❌ listing scrape failed", "url", rawURL, "err", err)
	return &models.ListingResult{Success: false, Message: MsgListingUnexpected, Details: err.Error()}
}

// RunDetailScrape dispatches rawURL to the extractor for its host.
func (s *Scraper) RunDetailScrape(ctx context.Context, rawURL string) (*models.DetailResult, error) {
	ex, err := s.ExtractorFor(rawURL)
	if err != nil {
		return nil, err
	}
	return s.ScrapeDetail(ctx, ex, rawURL), nil
}

// ScrapeSite runs the extractor of a named site regardless of the URL host.
func (s *Scraper) ScrapeSite(ctx context.Context, site Site, rawURL string) (*models.DetailResult, error) {
	ex, ok := s.extractors[site]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSite, site)
	}
	return s.ScrapeDetail(ctx, ex, rawURL), nil
}

// ScrapeDetail renders rawURL and runs ex over it. It always returns an
// envelope and always releases the browser.
func (s *Scraper) ScrapeDetail(ctx context.Context, ex DetailExtractor, rawURL string) (result *models.DetailResult) {
	site := ex.Site()
	ctx, span := tracer.Start(ctx, "ScrapeDetail", trace.WithAttributes(
		attribute.String("site", string(site)),
		attribute.String("url", rawURL),
	))
	defer func() {
		span.SetAttributes(attribute.Bool("success", result.Success))
		span.End()
	}()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			result = s.detailFailure(span, site, rawURL, err)
		}
	}()

	session, err := s.launcher.Launch(ctx)
	if err != nil {
		return s.detailFailure(span, site, rawURL, err)
	}
	defer closeSession(session)
	page := session.Page

	browser.ApplyCookieFile(page, s.opts.CookiePath)

	slog.Info("🔍 navigating to vehicle", "site", site, "url", rawURL)
	if err := page.Navigate(ctx, rawURL); err != nil {
		return s.detailFailure(span, site, rawURL, err)
	}
	if err := sleep(ctx, s.opts.Delays.DetailSettle[site]); err != nil {
		return s.detailFailure(span, site, rawURL, err)
	}

	html, err := page.HTML()
	if err != nil {
		return s.detailFailure(span, site, rawURL, fmt.Errorf("read page html: %w", err))
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return s.detailFailure(span, site, rawURL, fmt.Errorf("parse page html: %w", err))
	}

	structure := InspectStructure(doc)
	slog.Debug("page structure", "site", site, "structure", structure)

	record, err := ex.Extract(ctx, page, doc)
	if err != nil {
		return s.detailFailure(span, site, rawURL, err)
	}

	if record.Title() == "" {
		span.SetStatus(codes.Error, "title missing")
		slog.Warn("⚠️  vehicle title missing", "site", site, "url", rawURL)
		return &models.DetailResult{
			Success:       false,
			Message:       messagesFor(site).missingTitle,
			Data:          record,
			PageStructure: structure,
		}
	}

	slog.Info("✅ vehicle scraped", "site", site, "title", record.Title(), "images", len(record.Images))
	return &models.DetailResult{
		Success: true,
		Message: messagesFor(site).success,
		Data:    record,
	}
}

func (s *Scraper) detailFailure(span trace.Span, site Site, rawURL string, err error) *models.DetailResult {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	slog.Error("❌ vehicle scrape failed", "site", site, "url", rawURL, "err", err)
	return &models.DetailResult{
		Success: false,
		Message: messagesFor(site).unexpected,
		Details: err.Error(),
	}
}

func (s *Scraper) logStructure(page browser.Page) {
	html, err := page.HTML()
	if err != nil {
		return
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return
	}
	slog.Debug("page structure", "structure", InspectStructure(doc))
}

func closeSession(session *browser.Session) {
	if err := session.Close(); err != nil {
		slog.Warn("⚠️  browser close failed", "err", err)
	}
}
