package scraper

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"auctionrelay/internal/models"
)

const iaaiUSDetailHTML = `<html><head><title>2019 Toyota Camry | IAAI</title></head><body>
<h1> 2019 TOYOTA CAMRY SE </h1>
<div class="vehicle-images">
	<img src="/photos/a.jpg">
	<img src="https://vis.iaai.com/resize/abc_100x100.jpg">
</div>
<dl>
	<dt>VIN:</dt><dd>4T1B11HK5KU123456</dd>
	<dt>Odometer</dt><dd>45,210 mi (Actual)</dd>
</dl>
<ul class="data-list" data-uname="vehicleDetailsSection">
	<li class="data-list__item"><span class="data-list__label">Primary Damage:</span> <span class="data-list__value">FRONT END</span></li>
	<li class="data-list__item"><span class="data-list__label">Secondary Damage:</span> <span class="data-list__value">REAR END</span></li>
	<li class="data-list__item"><span>Engine:</span> <span>2.5L I4</span></li>
</ul>
<div class="specs"><div><span>Fuel Type</span></div><div>Gasoline</div></div>
</body></html>`

func TestIAAIUSExtractor(t *testing.T) {
	page := newFakePage("https://www.iaai.com/VehicleDetail/41234567~US", iaaiUSDetailHTML)

	record, err := NewIAAIUSExtractor().Extract(context.Background(), page, mustDoc(t, iaaiUSDetailHTML))
	require.NoError(t, err)

	want := map[string]string{
		models.FieldTitle:           "2019 TOYOTA CAMRY SE",
		models.FieldVIN:             "4T1B11HK5KU123456",
		models.FieldOdometer:        "45,210 mi (Actual)",
		models.FieldPrimaryDamage:   "FRONT END",
		models.FieldSecondaryDamage: "REAR END",
		models.FieldEngine:          "2.5L I4",
		models.FieldFuelType:        "Gasoline",
	}
	if diff := cmp.Diff(want, record.Values()); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []string{
		"https://www.iaai.com/photos/a.jpg",
		"https://vis.iaai.com/resize/abc_500x500.jpg",
	}, record.Images)
}

func TestIAAIUSExtractorMissingTitle(t *testing.T) {
	html := `<html><body><dl><dt>VIN</dt><dd>123</dd></dl></body></html>`
	record, err := NewIAAIUSExtractor().Extract(context.Background(), newFakePage("https://www.iaai.com/x", html), mustDoc(t, html))
	require.NoError(t, err)
	require.Empty(t, record.Title())
	require.NotNil(t, record.Images)
}

const iaaiCADetailHTML = `<html><body>
<h1>2018 HONDA CIVIC LX - Stock # 31337</h1>
<div id="imageThunbnailContainer">
	<img class="imageThunbnailItem" data-picture="https://vis.iaai.com/resize?imageKeys=1&amp;width=161&amp;height=120" src="x.jpg">
	<img class="imageThunbnailItem engineVideoMenu" src="video.jpg">
</div>
<div id="divVINInfo">
	<div class="conditTableRow"><div class="conditTableCell conditLabel">VIN:</div><div class="conditTableCell"><span aria-label="VIN">2HGFC2F59JH000001</span></div></div>
	<div class="conditTableRow"><div class="conditTableCell conditLabel">Body Style:</div><div class="conditTableCell"><span aria-label="Body Style">SEDAN 4D</span></div></div>
</div>
<div class="conditionCheck">
	<div class="conditTableRow"><div class="conditTableCell conditLabel">Odometer:</div><div class="conditTableCell"><span aria-label="Odometer">84,000 km (Actual)</span></div></div>
	<div class="conditTableRow"><div class="conditTableCell conditLabel">Keys Present:</div><div class="conditTableCell"><span aria-label="Keys">YES</span></div></div>
	<div class="conditTableRow"><div class="conditTableCell conditLabel">VIN:</div><div class="conditTableCell"><span aria-label="VIN">SHOULD-NOT-WIN</span></div></div>
</div>
<div id="VehicleOverviewSection"><ul class="detailOverview">
	<li><label>ACV (CAD):</label><span aria-label="ACV">$12,500</span></li>
	<li><label>Damage Estimate:</label><span aria-label="Damage Estimate">$3,000</span></li>
</ul></div>
</body></html>`

func TestIAAICAExtractor(t *testing.T) {
	page := newFakePage("https://ca.iaai.com/Vehicles/VehicleDetails?itemid=1", iaaiCADetailHTML)

	record, err := NewIAAICAExtractor().Extract(context.Background(), page, mustDoc(t, iaaiCADetailHTML))
	require.NoError(t, err)

	want := map[string]string{
		models.FieldTitle:               "2018 HONDA CIVIC LX - Stock # 31337",
		models.FieldLotNumber:           "31337",
		models.FieldYear:                "2018",
		models.FieldMake:                "HONDA",
		models.FieldModel:               "CIVIC LX",
		models.FieldVIN:                 "2HGFC2F59JH000001",
		models.FieldBodyStyle:           "SEDAN 4D",
		models.FieldOdometer:            "84,000 km",
		models.FieldKeys:                "Yes",
		models.FieldActualCashValue:     "$12,500",
		models.FieldEstimatedRepairCost: "$3,000",
	}
	if diff := cmp.Diff(want, record.Values()); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []string{"https://vis.iaai.com/resize?imageKeys=1&width=805&height=600"}, record.Images)

	// Unresolved core fields are still reported, as null.
	require.Contains(t, record.Fields(), models.FieldPrimaryDamage)
	require.False(t, record.Has(models.FieldPrimaryDamage))
}

const copartDetailHTML = `<html><head>
<script>var appInit = { lang: "en", cachedSolrLotDetailsStr: "{\"fv\":\"1G1JC5444\",\"ln\":54321,\"orr\":88000,\"ord\":\"ACTUAL\",\"dd\":\"FRONT END\",\"clr\":\"BLUE\",\"lcy\":2017}" };</script>
</head><body>
<h1>2017 CHEVROLET CRUZE LT</h1>
<div class="lot-details-info"><label class="lot-details-label">Odometer:</label><span class="lot-details-value">87,950 mi</span></div>
<div class="panel"><div><span>Engine Type:</span><span>1.4L 4</span></div></div>
</body></html>`

func TestCopartExtractorUsesEmbeddedLotDetails(t *testing.T) {
	page := newFakePage("https://www.copart.com/lot/54321", copartDetailHTML)

	record, err := NewCopartExtractor().Extract(context.Background(), page, mustDoc(t, copartDetailHTML))
	require.NoError(t, err)

	want := map[string]string{
		models.FieldTitle:         "2017 CHEVROLET CRUZE LT",
		models.FieldYear:          "2017",
		models.FieldMake:          "CHEVROLET",
		models.FieldModel:         "CRUZE LT",
		models.FieldVIN:           "1G1JC5444",
		models.FieldOdometer:      "87,950 mi",
		models.FieldEngine:        "1.4L 4",
		models.FieldLotNumber:     "54321",
		models.FieldPrimaryDamage: "FRONT END",
		models.FieldExteriorColor: "BLUE",
	}
	if diff := cmp.Diff(want, record.Values()); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
	for _, f := range []string{models.FieldDriveType, models.FieldFuelType, models.FieldKeys} {
		require.Contains(t, record.Fields(), f)
		require.False(t, record.Has(f))
	}
}

func TestCopartExtractorSurvivesBrokenLotDetails(t *testing.T) {
	html := `<html><head><script>var appInit = { cachedSolrLotDetailsStr: "{not json" };</script></head>
		<body><h1>2012 FORD FOCUS SE</h1></body></html>`

	record, err := NewCopartExtractor().Extract(context.Background(), newFakePage("https://www.copart.com/lot/1", html), mustDoc(t, html))
	require.NoError(t, err)
	require.Equal(t, "2012 FORD FOCUS SE", record.Title())
	require.False(t, record.Has(models.FieldVIN))
}

func TestParseLotDetailsWithoutScript(t *testing.T) {
	details, err := ParseLotDetails(mustDoc(t, `<html><body><h1>x</h1></body></html>`))
	require.NoError(t, err)
	require.Nil(t, details)
}

func TestInspectStructure(t *testing.T) {
	ps := InspectStructure(mustDoc(t, iaaiUSDetailHTML))
	require.Equal(t, "2019 Toyota Camry | IAAI", ps.Title)
	require.Equal(t, 1, ps.H1Count)
	require.Equal(t, 1, ps.ULCount)
	require.Equal(t, 3, ps.LICount)
	require.Equal(t, 2, ps.DTCount)
	require.Equal(t, 2, ps.DDCount)
	require.Equal(t, []string{"vehicleDetailsSection"}, ps.DataAttributes)
	require.Equal(t, []string{"vehicle-images", "data-list", "specs"}, ps.Classes)
}
