package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// cleanText returns the element text with whitespace runs collapsed.
func cleanText(s *goquery.Selection) string {
	return collapse(s.Text())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// parseFragment parses an element's outer HTML and returns that element.
func parseFragment(html string) (*goquery.Selection, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return doc.Find("body").Children().First(), nil
}

// absoluteURL resolves ref against base. Unresolvable input is returned as-is.
func absoluteURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if r.IsAbs() {
		return r.String()
	}
	b, err := url.Parse(base)
	if err != nil || !b.IsAbs() {
		return ref
	}
	return b.ResolveReference(r).String()
}

func attr(s *goquery.Selection, name string) string {
	v, _ := s.Attr(name)
	return strings.TrimSpace(v)
}

// firstAttr returns the first non-empty attribute among names.
func firstAttr(s *goquery.Selection, names ...string) string {
	for _, n := range names {
		if v := attr(s, n); v != "" {
			return v
		}
	}
	return ""
}
