package scraper

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"auctionrelay/internal/browser"
	"auctionrelay/internal/models"
)

// iaaiUSLabels is searched in order; earlier labels win for a shared field.
var iaaiUSLabels = []string{
	"Actual Cash Value", "Vehicle", "Lot #", "Stock #", "Item #",
	"VIN", "Vehicle Identification Number",
	"Title", "Title Code", "Title Status", "Title State",
	"Odometer", "Miles", "Mileage",
	"Damage", "Primary Damage", "Main Damage", "Secondary Damage", "Additional Damage",
	"Est. Retail Value", "Estimated Value", "Retail Value", "Value",
	"Cylinders", "Engine Cylinders",
	"Color", "Exterior Color", "Interior Color",
	"Engine", "Engine Type", "Motor",
	"Transmission", "Trans", "Gearbox",
	"Drive", "Drive Type", "Drive Line Type", "Drivetrain",
	"Body", "Body Style", "Body Type", "Vehicle Type",
	"Fuel", "Fuel Type",
	"Keys", "Key",
	"Highlights", "Special Notes", "Comments", "Description",
}

var iaaiUSMapping = PropertyMapping{
	"actual cash value":             models.FieldActualCashValue,
	"lot #":                         models.FieldLotNumber,
	"stock #":                       models.FieldLotNumber,
	"item #":                        models.FieldLotNumber,
	"vin":                           models.FieldVIN,
	"vehicle identification number": models.FieldVIN,
	"title":                         models.FieldTitleCode,
	"title code":                    models.FieldTitleCode,
	"title status":                  models.FieldTitleCode,
	"title state":                   models.FieldTitleState,
	"odometer":                      models.FieldOdometer,
	"miles":                         models.FieldOdometer,
	"mileage":                       models.FieldOdometer,
	"damage":                        models.FieldPrimaryDamage,
	"primary damage":                models.FieldPrimaryDamage,
	"main damage":                   models.FieldPrimaryDamage,
	"secondary damage":              models.FieldSecondaryDamage,
	"additional damage":             models.FieldSecondaryDamage,
	"est. retail value":             models.FieldRetailValue,
	"estimated value":               models.FieldRetailValue,
	"retail value":                  models.FieldRetailValue,
	"value":                         models.FieldRetailValue,
	"cylinders":                     models.FieldCylinders,
	"engine cylinders":              models.FieldCylinders,
	"color":                         models.FieldColor,
	"exterior color":                models.FieldExteriorColor,
	"interior color":                models.FieldInteriorColor,
	"engine":                        models.FieldEngine,
	"engine type":                   models.FieldEngine,
	"motor":                         models.FieldEngine,
	"transmission":                  models.FieldTransmission,
	"trans":                         models.FieldTransmission,
	"gearbox":                       models.FieldTransmission,
	"drive":                         models.FieldDriveType,
	"drive type":                    models.FieldDriveType,
	"drive line type":               models.FieldDriveType,
	"drivetrain":                    models.FieldDriveType,
	"body":                          models.FieldBodyStyle,
	"body style":                    models.FieldBodyStyle,
	"body type":                     models.FieldBodyStyle,
	"vehicle type":                  models.FieldBodyStyle,
	"fuel":                          models.FieldFuelType,
	"fuel type":                     models.FieldFuelType,
	"keys":                          models.FieldKeys,
	"key":                           models.FieldKeys,
	"highlights":                    models.FieldHighlights,
	"special notes":                 models.FieldHighlights,
	"comments":                      models.FieldHighlights,
	"description":                   models.FieldHighlights,
}

// IAAIUSExtractor reads www.iaai.com vehicle detail pages.
type IAAIUSExtractor struct {
	fields []FieldStrategy
	images *ImageResolver
}

func NewIAAIUSExtractor() *IAAIUSExtractor {
	return &IAAIUSExtractor{
		fields: DefaultFieldStrategies(),
		images: NewImageResolver(DefaultImageStrategies()...),
	}
}

func (e *IAAIUSExtractor) Site() Site { return SiteIAAIUS }

func (e *IAAIUSExtractor) Extract(_ context.Context, page browser.Page, doc *goquery.Document) (*models.VehicleRecord, error) {
	record := models.NewVehicleRecord()
	record.Declare(models.FieldTitle)
	record.Set(models.FieldTitle, cleanText(doc.Find("h1").First()))
	record.Images = e.images.Resolve(doc.Selection, page, pageURL(page))

	resolver := NewFieldResolver(doc.Selection, e.fields...)
	for _, label := range iaaiUSLabels {
		field := iaaiUSMapping.Canonical(label)
		if record.Has(field) {
			continue
		}
		if v, ok := resolver.Resolve(label); ok {
			record.SetIfAbsent(field, v)
		}
	}
	return record, nil
}

func pageURL(page browser.Page) string {
	if page == nil {
		return ""
	}
	return page.URL()
}
