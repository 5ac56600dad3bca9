package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"auctionrelay/internal/browser"
	"auctionrelay/internal/models"
)

var (
	copartYearPattern = regexp.MustCompile(`(19|20)\d{2}`)
	lotDetailsPattern = regexp.MustCompile(`cachedSolrLotDetailsStr:\s*"((?:\\.|[^"\\])*)"`)
)

var copartCoreFields = []string{
	models.FieldTitle, models.FieldYear, models.FieldMake, models.FieldModel, models.FieldVIN,
	models.FieldOdometer, models.FieldEngine, models.FieldDriveType, models.FieldFuelType,
	models.FieldKeys, models.FieldLotNumber,
}

// copartLabels lists the on-page labels tried for each field, in order.
var copartLabels = []struct {
	field  string
	labels []string
}{
	{models.FieldVIN, []string{"vin"}},
	{models.FieldOdometer, []string{"odometer"}},
	{models.FieldEngine, []string{"engine"}},
	{models.FieldDriveType, []string{"drive"}},
	{models.FieldFuelType, []string{"fuel"}},
	{models.FieldKeys, []string{"keys"}},
	{models.FieldLotNumber, []string{"lot number", "lot #", "lot"}},
}

// CopartExtractor reads www.copart.com lot pages.
type CopartExtractor struct {
	images *ImageResolver
}

func NewCopartExtractor() *CopartExtractor {
	return &CopartExtractor{images: NewImageResolver(DefaultImageStrategies()...)}
}

func (e *CopartExtractor) Site() Site { return SiteCopart }

func (e *CopartExtractor) Extract(_ context.Context, page browser.Page, doc *goquery.Document) (*models.VehicleRecord, error) {
	record := models.NewVehicleRecord()

	title := cleanText(doc.Find("h1").First())
	record.Set(models.FieldTitle, title)
	if year := copartYearPattern.FindString(title); year != "" {
		record.Set(models.FieldYear, year)
	}
	if parts := strings.Fields(title); len(parts) >= 3 {
		record.Set(models.FieldMake, parts[1])
		record.Set(models.FieldModel, strings.Join(parts[2:], " "))
	}

	for _, entry := range copartLabels {
		for _, label := range entry.labels {
			if v, ok := copartValueByLabel(doc.Selection, label); ok {
				record.SetIfAbsent(entry.field, v)
				break
			}
		}
	}

	if details, err := ParseLotDetails(doc); err != nil {
		slog.Warn("⚠️  embedded lot details unusable", "err", err)
	} else if details != nil {
		applyLotDetails(record, details)
	}

	record.Images = e.images.Resolve(doc.Selection, page, pageURL(page))
	record.Declare(copartCoreFields...)
	return record, nil
}

// copartValueByLabel checks labelled detail blocks first, then the innermost
// label/span/div mentioning the label.
func copartValueByLabel(root *goquery.Selection, label string) (string, bool) {
	var value string
	root.Find(".lot-details-info").EachWithBreak(func(_ int, block *goquery.Selection) bool {
		if !containsFold(cleanText(block.Find(".lot-details-label").First()), label) {
			return true
		}
		value = cleanText(block.Find(".lot-details-value").First())
		return value == ""
	})
	if value != "" {
		return value, true
	}

	const candidates = "label, span, div"
	mentions := func(s *goquery.Selection) bool { return containsFold(cleanText(s), label) }

	root.Find(candidates).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if !mentions(el) || el.Find(candidates).FilterFunction(func(_ int, s *goquery.Selection) bool { return mentions(s) }).Length() > 0 {
			return true
		}
		if next := cleanText(el.Next()); next != "" {
			value = next
			return false
		}
		el.Parent().Children().EachWithBreak(func(_ int, sib *goquery.Selection) bool {
			if sib.IsSelection(el) {
				return true
			}
			value = cleanText(sib)
			return value == ""
		})
		return value == ""
	})
	return value, value != ""
}

// ParseLotDetails decodes the lot JSON embedded in the page bootstrap
// script. It returns nil, nil when the page carries no such script.
func ParseLotDetails(doc *goquery.Document) (map[string]any, error) {
	var script string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if strings.Contains(text, "var appInit = {") && strings.Contains(text, "cachedSolrLotDetailsStr:") {
			script = text
			return false
		}
		return true
	})
	if script == "" {
		return nil, nil
	}

	m := lotDetailsPattern.FindStringSubmatch(script)
	if m == nil {
		return nil, fmt.Errorf("lot details string not found in bootstrap script")
	}

	// The payload is a JSON document stored inside a quoted script string.
	var payload string
	if err := json.Unmarshal([]byte(`"`+m[1]+`"`), &payload); err != nil {
		payload = m[1]
	}

	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()
	var details map[string]any
	if err := dec.Decode(&details); err != nil {
		return nil, fmt.Errorf("decode lot details: %w", err)
	}
	return details, nil
}

func applyLotDetails(record *models.VehicleRecord, d map[string]any) {
	str := func(key string) string { return jsonString(d[key]) }

	record.SetIfAbsent(models.FieldTitle, str("ld"))
	record.SetIfAbsent(models.FieldYear, str("lcy"))
	record.SetIfAbsent(models.FieldMake, str("mkn"))
	record.SetIfAbsent(models.FieldModel, str("lm"))
	record.SetIfAbsent(models.FieldVIN, str("fv"))
	if orr := str("orr"); orr != "" {
		record.SetIfAbsent(models.FieldOdometer, strings.TrimSpace(orr+" "+str("ord")))
	}
	record.SetIfAbsent(models.FieldPrimaryDamage, str("dd"))
	if color := str("clr"); color != "" {
		record.SetIfAbsent(models.FieldExteriorColor, color)
	} else {
		record.SetIfAbsent(models.FieldExteriorColor, str("ext_color"))
	}
	record.SetIfAbsent(models.FieldEngine, str("egn"))
	record.SetIfAbsent(models.FieldDriveType, str("drv"))
	record.SetIfAbsent(models.FieldFuelType, str("ft"))
	record.SetIfAbsent(models.FieldKeys, str("hk"))
	record.SetIfAbsent(models.FieldLotNumber, str("ln"))
}

func jsonString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	default:
		return fmt.Sprint(t)
	}
}
