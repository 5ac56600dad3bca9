package scraper

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FieldStrategy tries to find the value shown next to a label.
type FieldStrategy interface {
	Name() string
	Attempt(root *goquery.Selection, label string) (string, bool)
}

// FieldResolver runs its strategies in order and stops at the first
// non-empty value.
type FieldResolver struct {
	root       *goquery.Selection
	strategies []FieldStrategy
}

func NewFieldResolver(root *goquery.Selection, strategies ...FieldStrategy) *FieldResolver {
	return &FieldResolver{root: root, strategies: strategies}
}

// Resolve returns the value for label, or false when no strategy finds one.
func (r *FieldResolver) Resolve(label string) (string, bool) {
	for _, s := range r.strategies {
		if v, ok := s.Attempt(r.root, label); ok && v != "" {
			slog.Debug("field resolved", "label", label, "strategy", s.Name())
			return v, true
		}
	}
	return "", false
}

// DefaultFieldStrategies is the tiered label search used for IAAI detail pages.
func DefaultFieldStrategies() []FieldStrategy {
	return []FieldStrategy{
		DefinitionListStrategy{},
		DataSectionStrategy{
			Container: `.data-list, .vehicle-details, .details-data, [data-uname="vehicleDetailsSection"]`,
			Items:     "li, .data-list__item, .detail-item",
		},
		ListContainerStrategy{Lists: "ul.data-list, .details-list, .vehicle-data"},
		LeafTextStrategy{},
	}
}

// DefinitionListStrategy matches a <dt> containing the label and reads the <dd> after it.
type DefinitionListStrategy struct{}

func (DefinitionListStrategy) Name() string { return "definition-list" }

func (DefinitionListStrategy) Attempt(root *goquery.Selection, label string) (string, bool) {
	var value string
	root.Find("dt").EachWithBreak(func(_ int, dt *goquery.Selection) bool {
		if !containsFold(cleanText(dt), label) {
			return true
		}
		dd := dt.Next()
		if goquery.NodeName(dd) != "dd" {
			return true
		}
		value = cleanText(dd)
		return value == ""
	})
	return value, value != ""
}

// DataSectionStrategy scopes the search to the first detail container on
// the page: colon-separated item text first, then label/value span pairs.
type DataSectionStrategy struct {
	Container string
	Items     string
}

func (DataSectionStrategy) Name() string { return "data-section" }

func (s DataSectionStrategy) Attempt(root *goquery.Selection, label string) (string, bool) {
	section := root.Find(s.Container).First()
	if section.Length() == 0 {
		return "", false
	}

	var value string
	section.Find(s.Items).EachWithBreak(func(_ int, item *goquery.Selection) bool {
		text := cleanText(item)
		if !containsFold(text, label) {
			return true
		}
		if i := strings.Index(text, ":"); i > -1 && i < len(text)-1 {
			value = strings.TrimSpace(text[i+1:])
		}
		return value == ""
	})
	if value != "" {
		return value, true
	}

	spans := section.Find("span")
	spans.EachWithBreak(func(i int, span *goquery.Selection) bool {
		if !strings.EqualFold(cleanText(span), label) || i+1 >= spans.Length() {
			return true
		}
		value = cleanText(spans.Eq(i + 1))
		return value == ""
	})
	return value, value != ""
}

// ListContainerStrategy searches list items of known detail lists.
type ListContainerStrategy struct {
	Lists string
}

func (ListContainerStrategy) Name() string { return "list-container" }

func (s ListContainerStrategy) Attempt(root *goquery.Selection, label string) (string, bool) {
	var value string
	root.Find(s.Lists).EachWithBreak(func(_ int, list *goquery.Selection) bool {
		list.Find("li").EachWithBreak(func(_ int, li *goquery.Selection) bool {
			value = listItemValue(li, label)
			return value == ""
		})
		return value == ""
	})
	return value, value != ""
}

func listItemValue(li *goquery.Selection, label string) string {
	text := cleanText(li)
	if containsFold(text, label) {
		if parts := strings.Split(text, ":"); len(parts) > 1 {
			if v := strings.TrimSpace(strings.Join(parts[1:], ":")); v != "" {
				return v
			}
		}
	}

	spans := li.Find("span")
	var value string
	spans.EachWithBreak(func(i int, span *goquery.Selection) bool {
		st := cleanText(span)
		if !strings.EqualFold(st, label) && !containsFold(st, label+":") {
			return true
		}
		if i+1 < spans.Length() {
			value = cleanText(spans.Eq(i + 1))
		}
		if value == "" {
			value = cleanText(span.Next())
		}
		return value == ""
	})
	return value
}

// LeafTextStrategy finds an element with no children whose entire text is
// the label and reads the nearest following sibling: its own, its parent's,
// then its grandparent's.
type LeafTextStrategy struct{}

func (LeafTextStrategy) Name() string { return "leaf-text" }

func (LeafTextStrategy) Attempt(root *goquery.Selection, label string) (string, bool) {
	var value string
	root.Find("body *").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		switch goquery.NodeName(el) {
		case "script", "style", "noscript":
			return true
		}
		if el.Children().Length() > 0 || !strings.EqualFold(cleanText(el), label) {
			return true
		}
		for _, candidate := range []*goquery.Selection{el.Next(), el.Parent().Next(), el.Parent().Parent().Next()} {
			if candidate.Length() == 0 {
				continue
			}
			if v := cleanText(candidate); v != "" {
				value = v
				return false
			}
		}
		return true
	})
	return value, value != ""
}

// PropertyMapping maps lower-cased site labels to canonical field names.
type PropertyMapping map[string]string

// Canonical returns the canonical field for label, falling back to the
// lower-cased label itself.
func (m PropertyMapping) Canonical(label string) string {
	key := strings.ToLower(strings.TrimSpace(label))
	if f, ok := m[key]; ok {
		return f
	}
	return key
}
