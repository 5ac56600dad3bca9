package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"auctionrelay/internal/models"
)

var structureHints = []string{"data", "details", "vehicle", "info", "specs"}

// InspectStructure summarizes the markup of a rendered page for diagnostics.
func InspectStructure(doc *goquery.Document) *models.PageStructure {
	ps := &models.PageStructure{
		Title:          collapse(doc.Find("title").First().Text()),
		H1Count:        doc.Find("h1").Length(),
		ULCount:        doc.Find("ul").Length(),
		LICount:        doc.Find("li").Length(),
		DTCount:        doc.Find("dt").Length(),
		DDCount:        doc.Find("dd").Length(),
		DataAttributes: []string{},
		Classes:        []string{},
	}

	seenData := make(map[string]bool)
	doc.Find("[data-uname]").Each(func(_ int, s *goquery.Selection) {
		if v := attr(s, "data-uname"); v != "" && !seenData[v] {
			seenData[v] = true
			ps.DataAttributes = append(ps.DataAttributes, v)
		}
	})

	seenClass := make(map[string]bool)
	doc.Find("div[class], section[class], ul[class]").Each(func(_ int, s *goquery.Selection) {
		for _, class := range strings.Fields(attr(s, "class")) {
			if seenClass[class] || !hasStructureHint(class) {
				continue
			}
			seenClass[class] = true
			ps.Classes = append(ps.Classes, class)
		}
	})
	return ps
}

func hasStructureHint(class string) bool {
	lower := strings.ToLower(class)
	for _, h := range structureHints {
		if strings.Contains(lower, h) {
			return true
		}
	}
	return false
}
