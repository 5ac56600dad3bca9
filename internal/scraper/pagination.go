package scraper

import (
	"context"
	"log/slog"
	"time"

	"auctionrelay/internal/browser"
	"auctionrelay/internal/models"
)

// MaxPages is the hard ceiling on pages visited by one listing scrape.
const MaxPages = 5

type pageState int

const (
	stateScrape pageState = iota
	stateAdvance
	stateDone
)

// Paginator walks result pages. With FollowNext unset it stops after the
// first page.
type Paginator struct {
	MaxPages     int
	FollowNext   bool
	NextSelector string
	NavTimeout   time.Duration
}

// PageFunc scrapes the page currently loaded in the browser.
type PageFunc func(ctx context.Context, pageIndex int) ([]models.ListingItem, error)

// Run accumulates items across pages. An error is returned only when the
// first page fails; later failures end the walk with what was collected.
func (p *Paginator) Run(ctx context.Context, page browser.Page, scrape PageFunc) ([]models.ListingItem, int, error) {
	limit := p.MaxPages
	if limit <= 0 || limit > MaxPages {
		limit = MaxPages
	}

	items := []models.ListingItem{}
	pages := 0
	state := stateScrape

	for state != stateDone {
		switch state {
		case stateScrape:
			got, err := scrape(ctx, pages)
			if err != nil {
				if pages == 0 {
					return items, 0, err
				}
				slog.Warn("⚠️  stopping pagination after page error", "page", pages+1, "err", err)
				state = stateDone
				continue
			}
			items = append(items, got...)
			pages++
			slog.Info("📄 page scraped", "page", pages, "items", len(got), "total", len(items))
			state = stateAdvance

		case stateAdvance:
			state = stateDone
			if pages >= limit {
				slog.Info("reached page limit", "limit", limit)
				break
			}
			if !p.FollowNext {
				slog.Info("Navigation to next page is disabled")
				break
			}
			if ctx.Err() != nil {
				break
			}
			prev := page.URL()
			next, err := page.ClickAndWaitNavigation(p.NextSelector, p.NavTimeout)
			if err != nil {
				slog.Info("no further pages", "err", err)
				break
			}
			if next == prev {
				slog.Info("no further pages", "url", next)
				break
			}
			slog.Info("➡️  moved to next page", "url", next)
			state = stateScrape
		}
	}
	return items, pages, nil
}
