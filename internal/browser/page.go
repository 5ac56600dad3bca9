package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

type rodPage struct {
	page       *rod.Page
	navTimeout time.Duration
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	page := p.page.Context(ctx).Timeout(p.navTimeout)
	waitIdle := page.WaitRequestIdle(500*time.Millisecond, nil, nil, nil)

	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", url, err)
	}
	waitIdle()
	return nil
}

func (p *rodPage) URL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (p *rodPage) HTML() (string, error) {
	return p.page.HTML()
}

func (p *rodPage) WaitElement(selector string, timeout time.Duration) error {
	if _, err := p.page.Timeout(timeout).Element(selector); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNoElement, selector, err)
	}
	return nil
}

func (p *rodPage) Count(selector string) (int, error) {
	els, err := p.page.Elements(selector)
	if err != nil {
		return 0, err
	}
	return len(els), nil
}

func (p *rodPage) nth(selector string, index int) (*rod.Element, error) {
	els, err := p.page.Elements(selector)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(els) {
		return nil, fmt.Errorf("%w: %s[%d]", ErrNoElement, selector, index)
	}
	return els[index], nil
}

func (p *rodPage) ScrollIntoView(selector string, index int) error {
	el, err := p.nth(selector, index)
	if err != nil {
		return err
	}
	return el.ScrollIntoView()
}

func (p *rodPage) OuterHTML(selector string, index int) (string, error) {
	el, err := p.nth(selector, index)
	if err != nil {
		return "", err
	}
	return el.HTML()
}

func (p *rodPage) BackgroundImages(selectors []string) ([]string, error) {
	var out []string
	for _, sel := range selectors {
		els, err := p.page.Elements(sel)
		if err != nil {
			return out, err
		}
		for _, el := range els {
			res, err := el.Eval(`() => getComputedStyle(this).backgroundImage`)
			if err != nil {
				continue
			}
			if v := res.Value.Str(); v != "" && v != "none" {
				out = append(out, v)
			}
		}
	}
	return out, nil
}

func (p *rodPage) ClickAndWaitNavigation(selector string, timeout time.Duration) (string, error) {
	has, el, err := p.page.Has(selector)
	if err != nil {
		return "", err
	}
	if !has {
		return "", fmt.Errorf("%w: %s", ErrNoElement, selector)
	}

	tp := p.page.Timeout(timeout)
	defer tp.CancelTimeout()

	wait := tp.WaitNavigation(proto.PageLifecycleEventNameNetworkAlmostIdle)
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return "", fmt.Errorf("click %s: %w", selector, err)
	}
	wait()
	// WaitNavigation gives up silently when the timeout expires.
	if err := tp.GetContext().Err(); err != nil {
		return "", fmt.Errorf("no navigation after clicking %s: %w", selector, err)
	}
	return p.URL(), nil
}

func (p *rodPage) SetCookies(cookies []Cookie) error {
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, c.param())
	}
	return p.page.SetCookies(params)
}
