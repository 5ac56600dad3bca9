package browser

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-rod/rod/lib/proto"
)

// Cookie mirrors the JSON shape exported by common browser cookie tools.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain,omitempty"`
	Path     string  `json:"path,omitempty"`
	URL      string  `json:"url,omitempty"`
	Expires  float64 `json:"expires,omitempty"`
	HTTPOnly bool    `json:"httpOnly,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
	SameSite string  `json:"sameSite,omitempty"`
}

func (c Cookie) param() *proto.NetworkCookieParam {
	p := &proto.NetworkCookieParam{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		URL:      c.URL,
		Secure:   c.Secure,
		HTTPOnly: c.HTTPOnly,
	}
	if c.Expires > 0 {
		p.Expires = proto.TimeSinceEpoch(c.Expires)
	}
	switch c.SameSite {
	case "Strict", "strict":
		p.SameSite = proto.NetworkCookieSameSiteStrict
	case "Lax", "lax":
		p.SameSite = proto.NetworkCookieSameSiteLax
	case "None", "none", "no_restriction":
		p.SameSite = proto.NetworkCookieSameSiteNone
	}
	return p
}

// LoadCookies reads a JSON array of cookies. A missing file yields no
// cookies and no error.
func LoadCookies(path string) ([]Cookie, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cookies: %w", err)
	}

	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("parse cookies %s: %w", path, err)
	}

	valid := cookies[:0]
	for _, c := range cookies {
		if c.Name == "" {
			continue
		}
		valid = append(valid, c)
	}
	return valid, nil
}

// ApplyCookieFile loads cookies into the page if the file exists. Every
// failure is logged and swallowed; scraping continues without cookies.
func ApplyCookieFile(page Page, path string) int {
	if path == "" {
		return 0
	}
	cookies, err := LoadCookies(path)
	if err != nil {
		slog.Warn("⚠️  could not load cookies, continuing without them", "path", path, "err", err)
		return 0
	}
	if len(cookies) == 0 {
		slog.Debug("no cookies to apply", "path", path)
		return 0
	}
	if err := page.SetCookies(cookies); err != nil {
		slog.Warn("⚠️  could not apply cookies, continuing without them", "err", err)
		return 0
	}
	slog.Info("🍪 cookies applied", "count", len(cookies))
	return len(cookies)
}
