package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"auctionrelay/internal/models"
)

func newTestScraper(l *fakeLauncher, follow bool) *Scraper {
	return New(l, Options{FollowPagination: follow, Delays: Delays{}})
}

func TestRunListingScrapeContainerMissing(t *testing.T) {
	l := &fakeLauncher{page: newFakePage(searchURL, `<html><body><p>captcha</p></body></html>`)}

	res := newTestScraper(l, false).RunListingScrape(context.Background(), searchURL)
	require.False(t, res.Success)
	require.Equal(t, MsgListingNoContainer, res.Message)
	require.Contains(t, res.Details, IAAIListingSelectors.Container)
	require.NotNil(t, res.Data)
	require.Empty(t, res.Data)
	require.Equal(t, 1, l.closes)

	body, err := json.Marshal(res)
	require.NoError(t, err)
	require.Contains(t, string(body), `"data":[]`)
}

func TestRunListingScrapeSuccess(t *testing.T) {
	l := &fakeLauncher{page: newFakePage(searchURL, listingPage(listingItemHTML(1), listingItemHTML(2)))}

	res := newTestScraper(l, false).RunListingScrape(context.Background(), searchURL)
	require.True(t, res.Success)
	require.Equal(t, MsgListingSuccess, res.Message)
	require.Equal(t, 2, res.TotalItems)
	require.Equal(t, 1, res.PagesScraped)
	require.Equal(t, 1, l.closes)
}

func TestRunListingScrapeFollowsPagesWhenEnabled(t *testing.T) {
	page := newFakePage(searchURL,
		listingPage(listingItemHTML(1)),
		listingPage(listingItemHTML(2), listingItemHTML(3)),
	)
	l := &fakeLauncher{page: page}

	res := newTestScraper(l, true).RunListingScrape(context.Background(), searchURL)
	require.True(t, res.Success)
	require.Equal(t, 2, res.PagesScraped)
	require.Equal(t, 3, res.TotalItems)
}

func TestRunListingScrapeNoItems(t *testing.T) {
	l := &fakeLauncher{page: newFakePage(searchURL, listingPage())}

	res := newTestScraper(l, false).RunListingScrape(context.Background(), searchURL)
	require.True(t, res.Success)
	require.Equal(t, MsgListingEmpty, res.Message)
	require.Equal(t, 1, res.PagesScraped)
	require.Empty(t, res.Data)
}

func TestRunListingScrapeLaunchFailure(t *testing.T) {
	l := &fakeLauncher{err: errBoom}

	res := newTestScraper(l, false).RunListingScrape(context.Background(), searchURL)
	require.False(t, res.Success)
	require.Equal(t, MsgListingUnexpected, res.Message)
	require.Equal(t, "boom", res.Details)
	require.Nil(t, res.Data)
}

func TestRunListingScrapeNavigationFailureClosesBrowser(t *testing.T) {
	page := newFakePage(searchURL, listingPage())
	page.navErr = errBoom
	l := &fakeLauncher{page: page}

	res := newTestScraper(l, false).RunListingScrape(context.Background(), searchURL)
	require.False(t, res.Success)
	require.Equal(t, 1, l.closes)
}

func TestRunDetailScrapeDispatchesByHost(t *testing.T) {
	tests := []struct {
		url  string
		site Site
	}{
		{"https://www.iaai.com/VehicleDetail/1~US", SiteIAAIUS},
		{"https://ca.iaai.com/Vehicles/VehicleDetails?itemid=2", SiteIAAICA},
		{"https://www.copart.com/lot/3", SiteCopart},
	}
	s := newTestScraper(&fakeLauncher{}, false)
	for _, tt := range tests {
		ex, err := s.ExtractorFor(tt.url)
		require.NoError(t, err)
		require.Equal(t, tt.site, ex.Site())
	}
}

func TestRunDetailScrapeUnsupportedHost(t *testing.T) {
	l := &fakeLauncher{}
	res, err := newTestScraper(l, false).RunDetailScrape(context.Background(), "https://www.example.com/lot/1")
	require.ErrorIs(t, err, ErrUnsupportedSite)
	require.Nil(t, res)
	require.Zero(t, l.launches)
}

func TestRunDetailScrapeSuccess(t *testing.T) {
	url := "https://www.iaai.com/VehicleDetail/41234567~US"
	l := &fakeLauncher{page: newFakePage(url, iaaiUSDetailHTML)}

	res, err := newTestScraper(l, false).RunDetailScrape(context.Background(), url)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, MsgDetailSuccess, res.Message)
	require.Equal(t, "2019 TOYOTA CAMRY SE", res.Data.Title())
	require.Nil(t, res.PageStructure)
	require.Equal(t, 1, l.closes)
}

func TestRunDetailScrapeMissingTitle(t *testing.T) {
	url := "https://www.iaai.com/VehicleDetail/1~US"
	l := &fakeLauncher{page: newFakePage(url, `<html><head><title>Blocked</title></head><body><div class="vehicle-details"></div></body></html>`)}

	res, err := newTestScraper(l, false).RunDetailScrape(context.Background(), url)
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, MsgDetailMissingTitle, res.Message)
	require.NotNil(t, res.PageStructure)
	require.Equal(t, "Blocked", res.PageStructure.Title)
	require.Equal(t, 1, l.closes)
}

func TestRunDetailScrapeMissingTitleReportsNull(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.iaai.com/VehicleDetail/2~US", MsgDetailMissingTitle},
		{"https://ca.iaai.com/Vehicles/VehicleDetails?itemid=2", "Could not extract any vehicle data or title was missing from ca.iaai.com."},
	}
	for _, tc := range cases {
		t.Run(tc.url, func(t *testing.T) {
			l := &fakeLauncher{page: newFakePage(tc.url, `<html><body><p>nothing</p></body></html>`)}

			res, err := newTestScraper(l, false).RunDetailScrape(context.Background(), tc.url)
			require.NoError(t, err)
			require.False(t, res.Success)
			require.Equal(t, tc.want, res.Message)
			require.Equal(t, models.FieldTitle, res.Data.Fields()[0])

			body, err := json.Marshal(res.Data)
			require.NoError(t, err)
			require.Contains(t, string(body), `"title":null`)
		})
	}
}

func TestRunDetailScrapeSiteMessages(t *testing.T) {
	cases := []struct {
		url  string
		html string
		want string
	}{
		{"https://ca.iaai.com/Vehicles/VehicleDetails?itemid=1", iaaiCADetailHTML, "Vehicle details scraped successfully from ca.iaai.com."},
		{"https://www.copart.com/lot/12345678", copartDetailHTML, "Vehicle details scraped successfully from Copart."},
	}
	for _, tc := range cases {
		t.Run(tc.url, func(t *testing.T) {
			l := &fakeLauncher{page: newFakePage(tc.url, tc.html)}

			res, err := newTestScraper(l, false).RunDetailScrape(context.Background(), tc.url)
			require.NoError(t, err)
			require.True(t, res.Success)
			require.Equal(t, tc.want, res.Message)
		})
	}
}

func TestRunDetailScrapeCopartFailureMessage(t *testing.T) {
	url := "https://www.copart.com/lot/2"
	page := newFakePage(url, copartDetailHTML)
	page.panicOnHTML = true
	l := &fakeLauncher{page: page}

	res, err := newTestScraper(l, false).RunDetailScrape(context.Background(), url)
	require.NoError(t, err)
	require.Equal(t, "Failed to scrape vehicle details from Copart due to an unexpected error.", res.Message)
}

func TestRunDetailScrapeCopartMessages(t *testing.T) {
	url := "https://www.copart.com/lot/1"
	l := &fakeLauncher{page: newFakePage(url, `<html><body><p>nothing</p></body></html>`)}

	res, err := newTestScraper(l, false).RunDetailScrape(context.Background(), url)
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, "Could not extract core vehicle data or title was missing from Copart.", res.Message)

	body, err := json.Marshal(res)
	require.NoError(t, err)
	require.Contains(t, string(body), `"title":null`)
}

func TestScrapeDetailRecoversPanicAndCloses(t *testing.T) {
	url := "https://ca.iaai.com/Vehicles/VehicleDetails?itemid=9"
	page := newFakePage(url, iaaiCADetailHTML)
	page.panicOnHTML = true
	l := &fakeLauncher{page: page}

	res, err := newTestScraper(l, false).RunDetailScrape(context.Background(), url)
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, "Failed to scrape vehicle details from ca.iaai.com due to an unexpected error.", res.Message)
	require.Contains(t, res.Details, "target closed")
	require.Nil(t, res.Data)
	require.Equal(t, 1, l.closes)
}

func TestScrapeSiteForcesExtractor(t *testing.T) {
	url := "http://127.0.0.1:9999/VehicleDetail/1"
	l := &fakeLauncher{page: newFakePage(url, iaaiUSDetailHTML)}

	res, err := newTestScraper(l, false).ScrapeSite(context.Background(), SiteIAAIUS, url)
	require.NoError(t, err)
	require.True(t, res.Success)

	_, err = newTestScraper(l, false).ScrapeSite(context.Background(), Site("nope"), url)
	require.True(t, errors.Is(err, ErrUnsupportedSite))
}

func TestConcurrentDetailScrapesAreIsolated(t *testing.T) {
	s := newTestScraper(&fakeLauncher{}, false)
	results := make(chan *models.DetailResult, 2)

	for _, html := range []string{iaaiUSDetailHTML, `<html><body></body></html>`} {
		html := html
		go func() {
			url := "https://www.iaai.com/VehicleDetail/1~US"
			l := &fakeLauncher{page: newFakePage(url, html)}
			results <- New(l, s.opts).ScrapeDetail(context.Background(), NewIAAIUSExtractor(), url)
		}()
	}

	var ok, failed int
	for i := 0; i < 2; i++ {
		if (<-results).Success {
			ok++
		} else {
			failed++
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, 1, failed)
}
