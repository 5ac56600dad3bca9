package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"auctionrelay/internal/browser"
	"auctionrelay/internal/models"
)

// ErrContainerNotFound means the results container never appeared.
var ErrContainerNotFound = errors.New("results container not found")

// ListingSelectors locate the parts of a search-results page.
type ListingSelectors struct {
	Container  string
	Item       string
	Title      string
	Price      string
	Image      string
	NextButton string
}

// IAAIListingSelectors matches the IAAI search results table.
var IAAIListingSelectors = ListingSelectors{
	Container:  ".table--custom-view > .table-body",
	Item:       ".table--custom-view > .table-body > div",
	Title:      "h4 a",
	Price:      "div:nth-child(4) > ul > li:nth-child(8) > span.data-list__value",
	Image:      "img",
	NextButton: ".btn-next",
}

// ListingExtractor pulls listing items out of one results page, scrolling
// as it goes so lazily loaded images get a real source.
type ListingExtractor struct {
	Selectors       ListingSelectors
	SelectorTimeout time.Duration
	// ScrollEvery items, the item is scrolled into view and given ScrollSettle.
	ScrollEvery  int
	ScrollSettle time.Duration
	ItemSettle   time.Duration
}

func NewListingExtractor(sel ListingSelectors, d Delays) *ListingExtractor {
	return &ListingExtractor{
		Selectors:       sel,
		SelectorTimeout: d.SelectorTimeout,
		ScrollEvery:     5,
		ScrollSettle:    d.ScrollSettle,
		ItemSettle:      d.ItemSettle,
	}
}

// ExtractPage returns every non-empty item on the current page.
func (e *ListingExtractor) ExtractPage(ctx context.Context, page browser.Page) ([]models.ListingItem, error) {
	if err := page.WaitElement(e.Selectors.Container, e.SelectorTimeout); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrContainerNotFound, e.Selectors.Container, err)
	}

	count, err := page.Count(e.Selectors.Item)
	if err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}
	slog.Info("📋 listing items found", "count", count)

	base := page.URL()
	items := []models.ListingItem{}
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return items, err
		}

		every := e.ScrollEvery
		if every <= 0 {
			every = 5
		}
		if i%every == 0 {
			if err := page.ScrollIntoView(e.Selectors.Item, i); err != nil {
				slog.Debug("scroll failed", "index", i, "err", err)
			}
			if err := sleep(ctx, e.ScrollSettle); err != nil {
				return items, err
			}
		} else if err := sleep(ctx, e.ItemSettle); err != nil {
			return items, err
		}

		item, err := e.extractItem(page, i, base)
		if err != nil {
			slog.Warn("⚠️  skipping listing item", "index", i, "err", err)
			continue
		}
		if item.IsEmpty() {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (e *ListingExtractor) extractItem(page browser.Page, index int, base string) (item models.ListingItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic extracting item: %v", r)
		}
	}()

	html, err := page.OuterHTML(e.Selectors.Item, index)
	if err != nil {
		return item, err
	}
	root, err := parseFragment(html)
	if err != nil {
		return item, fmt.Errorf("parse item: %w", err)
	}
	return ParseListingItem(root, e.Selectors, base), nil
}

// ParseListingItem reads title, link, price and image from one item element.
func ParseListingItem(root *goquery.Selection, sel ListingSelectors, base string) models.ListingItem {
	var item models.ListingItem

	if a := root.Find(sel.Title).First(); a.Length() > 0 {
		item.Title = models.StringPtr(cleanText(a))
		item.Link = models.StringPtr(absoluteURL(base, attr(a, "href")))
	}

	if p := root.Find(sel.Price).First(); p.Length() > 0 {
		item.Price = models.StringPtr(cleanText(p))
	}

	if img := root.Find(sel.Image).First(); img.Length() > 0 {
		src := attr(img, "src")
		if dataSrc := attr(img, "data-src"); dataSrc != "" &&
			(src == "" || strings.HasPrefix(src, "data:image/") || strings.Contains(src, "placeholder")) {
			src = dataSrc
		}
		item.Image = models.StringPtr(absoluteURL(base, src))
	}
	return item
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
