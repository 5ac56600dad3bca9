package scraper

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"auctionrelay/internal/browser"
	"auctionrelay/internal/models"
)

var (
	caStockPattern     = regexp.MustCompile(`(?i)Stock #\s*([\w\d]+)`)
	caYearPattern      = regexp.MustCompile(`(\d{4})`)
	caMakeModelPattern = regexp.MustCompile(`\d{4}\s+([\w\s]+?)\s+([\w\s\d]+)`)
	actualSuffix       = regexp.MustCompile(`(?i)\s*\(actual\)\s*$`)
)

var iaaiCAMapping = PropertyMapping{
	"vin":              models.FieldVIN,
	"odometer":         models.FieldOdometer,
	"primary damage":   models.FieldPrimaryDamage,
	"secd. damage":     models.FieldSecondaryDamage,
	"secondary damage": models.FieldSecondaryDamage,
	"body style":       models.FieldBodyStyle,
	"engine":           models.FieldEngine,
	"transmission":     models.FieldTransmission,
	"drive line type":  models.FieldDriveType,
	"fuel type":        models.FieldFuelType,
	"cylinders":        models.FieldCylinders,
	"keys present":     models.FieldKeys,
	"exterior colour":  models.FieldExteriorColor,
	"exterior color":   models.FieldExteriorColor,
	"acv":              models.FieldActualCashValue,
	"damage estimate":  models.FieldEstimatedRepairCost,
}

var iaaiCACoreFields = []string{
	models.FieldVIN, models.FieldOdometer, models.FieldPrimaryDamage, models.FieldSecondaryDamage,
	models.FieldBodyStyle, models.FieldEngine, models.FieldTransmission, models.FieldDriveType,
	models.FieldFuelType, models.FieldCylinders, models.FieldKeys, models.FieldExteriorColor,
	models.FieldActualCashValue, models.FieldEstimatedRepairCost,
}

// caSection is one labelled block of the ca.iaai.com detail page.
type caSection struct {
	rows  string
	label string
	value string
	// match compares a normalized label against mapping keys by substring
	// instead of equality.
	match bool
}

var iaaiCASections = []caSection{
	{rows: "#divVINInfo .conditTableRow", label: ".conditTableCell.conditLabel", value: ".conditTableCell span[aria-label]"},
	{rows: ".conditionCheck .conditTableRow", label: ".conditTableCell.conditLabel", value: ".conditTableCell span[aria-label]"},
	{rows: "#VehicleOverviewSection .detailOverview li", label: "label", value: "span[aria-label]", match: true},
}

// IAAICAExtractor reads ca.iaai.com vehicle detail pages.
type IAAICAExtractor struct {
	images *ImageResolver
}

func NewIAAICAExtractor() *IAAICAExtractor {
	return &IAAICAExtractor{
		images: NewImageResolver(FallbackImages{
			Primary: SelectorImages{
				Label:  "ca-thumbnails",
				Images: "#imageThunbnailContainer img.imageThunbnailItem:not(.engineVideoMenu)",
				Attrs:  []string{"data-picture", "src"},
			},
			Fallback: SelectorImages{
				Label:  "ca-main-image",
				Images: "#imageRegViewElement",
				Attrs:  []string{"src"},
			},
		}),
	}
}

func (e *IAAICAExtractor) Site() Site { return SiteIAAICA }

func (e *IAAICAExtractor) Extract(_ context.Context, page browser.Page, doc *goquery.Document) (*models.VehicleRecord, error) {
	record := models.NewVehicleRecord()

	title := cleanText(doc.Find("h1").First())
	record.Declare(models.FieldTitle)
	record.Set(models.FieldTitle, title)
	parseCATitle(record, title)

	record.Images = e.images.Resolve(doc.Selection, page, pageURL(page))

	for _, sec := range iaaiCASections {
		doc.Find(sec.rows).Each(func(_ int, row *goquery.Selection) {
			label := normalizeCALabel(cleanText(row.Find(sec.label).First()))
			value := cleanText(row.Find(sec.value).First())
			if label == "" || value == "" {
				return
			}
			field, ok := caFieldFor(label, sec.match)
			if !ok {
				return
			}
			record.SetIfAbsent(field, normalizeCAValue(field, value))
		})
	}

	record.Declare(iaaiCACoreFields...)
	return record, nil
}

func parseCATitle(record *models.VehicleRecord, title string) {
	if m := caStockPattern.FindStringSubmatch(title); m != nil {
		record.Set(models.FieldLotNumber, m[1])
	}
	if m := caYearPattern.FindStringSubmatch(title); m != nil {
		record.Set(models.FieldYear, m[1])
	}
	if m := caMakeModelPattern.FindStringSubmatch(caStockPattern.ReplaceAllString(title, "")); m != nil {
		record.Set(models.FieldMake, strings.TrimSpace(m[1]))
		record.Set(models.FieldModel, strings.TrimSpace(m[2]))
	}
}

func normalizeCALabel(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.Replace(s, ":", "", 1)))
}

func caFieldFor(label string, substring bool) (string, bool) {
	if f, ok := iaaiCAMapping[label]; ok {
		return f, true
	}
	if !substring {
		return "", false
	}
	for _, key := range []string{"acv", "damage estimate"} {
		if strings.Contains(label, key) {
			return iaaiCAMapping[key], true
		}
	}
	return "", false
}

func normalizeCAValue(field, value string) string {
	switch field {
	case models.FieldOdometer:
		return strings.TrimSpace(actualSuffix.ReplaceAllString(value, ""))
	case models.FieldKeys:
		if strings.EqualFold(value, "yes") {
			return "Yes"
		}
		return "No"
	}
	return value
}
