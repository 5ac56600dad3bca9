package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"auctionrelay/internal/browser"
)

// fakePage serves static HTML through the browser.Page interface.
type fakePage struct {
	mu          sync.Mutex
	pages       []string
	current     int
	url         string
	navErr      error
	endless     bool
	stuck       bool
	backgrounds []string
	panicOnHTML bool

	scrolls    []int
	navigated  []string
	nextClicks int
}

func newFakePage(url string, pages ...string) *fakePage {
	return &fakePage{url: url, pages: pages}
}

func (p *fakePage) doc() *goquery.Document {
	html := ""
	if len(p.pages) > 0 {
		html = p.pages[p.current]
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		panic(err)
	}
	return doc
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.navigated = append(p.navigated, url)
	return p.navErr
}

func (p *fakePage) URL() string { return p.url }

func (p *fakePage) HTML() (string, error) {
	if p.panicOnHTML {
		panic("target closed")
	}
	return p.pages[p.current], nil
}

func (p *fakePage) WaitElement(selector string, _ time.Duration) error {
	if p.doc().Find(selector).Length() == 0 {
		return fmt.Errorf("%w: %s", browser.ErrNoElement, selector)
	}
	return nil
}

func (p *fakePage) Count(selector string) (int, error) {
	return p.doc().Find(selector).Length(), nil
}

func (p *fakePage) ScrollIntoView(_ string, index int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scrolls = append(p.scrolls, index)
	return nil
}

func (p *fakePage) OuterHTML(selector string, index int) (string, error) {
	sel := p.doc().Find(selector)
	if index >= sel.Length() {
		return "", browser.ErrNoElement
	}
	return goquery.OuterHtml(sel.Eq(index))
}

func (p *fakePage) BackgroundImages([]string) ([]string, error) {
	return p.backgrounds, nil
}

func (p *fakePage) ClickAndWaitNavigation(string, time.Duration) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextClicks++
	if p.stuck {
		return p.url, nil
	}
	if p.endless {
		return fmt.Sprintf("%s?page=%d", p.url, p.nextClicks+1), nil
	}
	if p.current+1 >= len(p.pages) {
		return "", browser.ErrNoElement
	}
	p.current++
	return fmt.Sprintf("%s?page=%d", p.url, p.current+1), nil
}

func (p *fakePage) SetCookies([]browser.Cookie) error { return nil }

type fakeLauncher struct {
	page     *fakePage
	err      error
	launches int
	closes   int
}

func (l *fakeLauncher) Launch(context.Context) (*browser.Session, error) {
	l.launches++
	if l.err != nil {
		return nil, l.err
	}
	return browser.NewSession(l.page, func() error {
		l.closes++
		return nil
	}), nil
}

var errBoom = errors.New("boom")

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}
