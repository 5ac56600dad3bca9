package scraper

import (
	"log/slog"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"auctionrelay/internal/browser"
)

// ImageScale is the factor applied to dimension hints in image URLs.
const ImageScale = 5

// ImageStrategy collects raw image URLs from one kind of markup.
type ImageStrategy interface {
	Name() string
	Collect(doc *goquery.Selection, page browser.Page) []string
}

// ImageResolver merges strategy results into an ordered, deduplicated list
// of absolute, enhanced URLs.
type ImageResolver struct {
	strategies []ImageStrategy
}

func NewImageResolver(strategies ...ImageStrategy) *ImageResolver {
	return &ImageResolver{strategies: strategies}
}

func (r *ImageResolver) Resolve(doc *goquery.Selection, page browser.Page, baseURL string) []string {
	images := []string{}
	seen := make(map[string]bool)
	for _, s := range r.strategies {
		found := s.Collect(doc, page)
		slog.Debug("image strategy", "strategy", s.Name(), "found", len(found))
		for _, raw := range found {
			abs := absoluteURL(baseURL, raw)
			if abs == "" || strings.HasPrefix(abs, "data:") {
				continue
			}
			enhanced := EnhanceImageURL(abs)
			if seen[enhanced] {
				continue
			}
			seen[enhanced] = true
			images = append(images, enhanced)
		}
	}
	return images
}

// DefaultImageStrategies is the generic gallery search used for IAAI-US and Copart.
func DefaultImageStrategies() []ImageStrategy {
	return []ImageStrategy{
		SelectorImages{
			Label:     "gallery",
			Container: ".gallery, .image-gallery, .vehicle-images",
			Images:    "img",
			Attrs:     []string{"src"},
		},
		SelectorImages{
			Label:  "flagged",
			Images: "img[data-src], img.vehicle-img, .thumbnail img",
			Attrs:  []string{"data-src", "src"},
		},
		SelectorImages{
			Label:  "thumbnails",
			Images: ".vehicle-image__thumb-container img",
			Attrs:  []string{"data-high-res", "data-full", "data-original", "data-src", "src"},
		},
		BackgroundImages{Selectors: []string{".image-container", ".thumbnail", ".vehicle-image"}},
	}
}

// SelectorImages reads the first non-empty attribute of every matching
// image. With a Container set, only the first container is searched.
type SelectorImages struct {
	Label     string
	Container string
	Images    string
	Attrs     []string
}

func (s SelectorImages) Name() string { return s.Label }

func (s SelectorImages) Collect(doc *goquery.Selection, _ browser.Page) []string {
	scope := doc
	if s.Container != "" {
		scope = doc.Find(s.Container).First()
	}
	var out []string
	scope.Find(s.Images).Each(func(_ int, img *goquery.Selection) {
		if v := firstAttr(img, s.Attrs...); v != "" {
			out = append(out, v)
		}
	})
	return out
}

// FallbackImages uses Fallback only when Primary finds nothing.
type FallbackImages struct {
	Primary  ImageStrategy
	Fallback ImageStrategy
}

func (f FallbackImages) Name() string { return f.Primary.Name() }

func (f FallbackImages) Collect(doc *goquery.Selection, page browser.Page) []string {
	if out := f.Primary.Collect(doc, page); len(out) > 0 {
		return out
	}
	return f.Fallback.Collect(doc, page)
}

var cssURLPattern = regexp.MustCompile(`url\(['"]?(.*?)['"]?\)`)

// BackgroundImages asks the live page for computed CSS backgrounds.
type BackgroundImages struct {
	Selectors []string
}

func (BackgroundImages) Name() string { return "background" }

func (b BackgroundImages) Collect(_ *goquery.Selection, page browser.Page) []string {
	if page == nil {
		return nil
	}
	values, err := page.BackgroundImages(b.Selectors)
	if err != nil {
		slog.Debug("background image lookup failed", "err", err)
	}
	var out []string
	for _, v := range values {
		if m := cssURLPattern.FindStringSubmatch(v); m != nil && m[1] != "" {
			out = append(out, m[1])
		}
	}
	return out
}

var (
	resizePattern = regexp.MustCompile(`/resize/(.+_)(\d+)x(\d+)(\.[a-zA-Z]+)$`)
	pathPatterns  = []*regexp.Regexp{
		regexp.MustCompile(`/(\d+)x(\d+)/`),
		regexp.MustCompile(`/w_(\d+),h_(\d+)/`),
		regexp.MustCompile(`/(\d+)/(\d+)/`),
		regexp.MustCompile(`/-(\d+)x(\d+)/`),
	}
	dimensionParams = map[string]bool{
		"width": true, "height": true, "w": true, "h": true, "size": true,
		"maxwidth": true, "maxheight": true, "imgwidth": true, "imgheight": true,
		"thumb": true, "scale": true, "zoom": true, "format": true,
	}
)

// EnhanceImageURL rewrites size hints in an image URL to request a larger
// asset. URLs it does not recognize come back unchanged.
func EnhanceImageURL(raw string) string {
	if m := resizePattern.FindStringSubmatchIndex(raw); m != nil {
		w, wok := scaleDimension(raw[m[4]:m[5]])
		h, hok := scaleDimension(raw[m[6]:m[7]])
		if !wok || !hok {
			return raw
		}
		return raw[:m[0]] + "/resize/" + raw[m[2]:m[3]] + w + "x" + h + raw[m[8]:m[9]]
	}

	for _, p := range pathPatterns {
		if !p.MatchString(raw) {
			continue
		}
		return p.ReplaceAllStringFunc(raw, func(match string) string {
			return scaleDigits(match)
		})
	}

	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.RawQuery == "" {
		return raw
	}

	pairs := strings.Split(u.RawQuery, "&")
	changed := false
	for i, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		name, err := url.QueryUnescape(key)
		if err != nil {
			continue
		}
		switch lower := strings.ToLower(name); {
		case lower == "quality":
			value = "100"
		case lower == "version":
			value = "highres"
		case dimensionParams[lower]:
			scaled, ok := scaleDimension(value)
			if !ok {
				continue
			}
			value = scaled
		default:
			continue
		}
		pairs[i] = key + "=" + value
		changed = true
	}
	if !changed {
		return raw
	}
	u.RawQuery = strings.Join(pairs, "&")
	return u.String()
}

var digitsPattern = regexp.MustCompile(`\d+`)

func scaleDigits(s string) string {
	return digitsPattern.ReplaceAllStringFunc(s, func(d string) string {
		if scaled, ok := scaleDimension(d); ok {
			return scaled
		}
		return d
	})
}

// scaleDimension multiplies a decimal size by ImageScale. It fails on
// non-numeric input and on sizes whose product would overflow an int.
func scaleDimension(s string) (string, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > math.MaxInt/ImageScale {
		return "", false
	}
	return strconv.Itoa(n * ImageScale), true
}
