package scraper

import (
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestDefinitionListStrategy(t *testing.T) {
	doc := mustDoc(t, `<dl><dt>Odometer:</dt><dd> 12,345 mi </dd><dt>Empty</dt><dd></dd></dl>`)

	v, ok := DefinitionListStrategy{}.Attempt(doc.Selection, "odometer")
	require.True(t, ok)
	require.Equal(t, "12,345 mi", v)

	_, ok = DefinitionListStrategy{}.Attempt(doc.Selection, "Empty")
	require.False(t, ok)
}

func TestDataSectionStrategy(t *testing.T) {
	doc := mustDoc(t, `
		<div class="vehicle-details">
			<div class="detail-item">Primary Damage: FRONT END</div>
			<div><span>Keys</span><span>Present</span></div>
		</div>
		<div class="details-data"><div class="detail-item">Keys: ignored second section</div></div>`)
	s := DefaultFieldStrategies()[1]

	v, ok := s.Attempt(doc.Selection, "Primary Damage")
	require.True(t, ok)
	require.Equal(t, "FRONT END", v)

	v, ok = s.Attempt(doc.Selection, "keys")
	require.True(t, ok)
	require.Equal(t, "Present", v)
}

func TestListContainerStrategyRejoinsColons(t *testing.T) {
	doc := mustDoc(t, `
		<ul class="details-list">
			<li>Sale Time: 10:30 AM</li>
			<li><span>Drive Type:</span><span>AWD</span></li>
		</ul>`)
	s := ListContainerStrategy{Lists: "ul.data-list, .details-list, .vehicle-data"}

	v, ok := s.Attempt(doc.Selection, "Sale Time")
	require.True(t, ok)
	require.Equal(t, "10:30 AM", v)

	v, ok = s.Attempt(doc.Selection, "Drive Type")
	require.True(t, ok)
	require.Equal(t, "AWD", v)
}

func TestLeafTextStrategy(t *testing.T) {
	doc := mustDoc(t, `
		<div class="row"><div><span>Cylinders</span></div><div>4</div></div>
		<p><b>Color</b><i>Silver</i></p>`)

	v, ok := LeafTextStrategy{}.Attempt(doc.Selection, "cylinders")
	require.True(t, ok)
	require.Equal(t, "4", v)

	v, ok = LeafTextStrategy{}.Attempt(doc.Selection, "Color")
	require.True(t, ok)
	require.Equal(t, "Silver", v)

	_, ok = LeafTextStrategy{}.Attempt(doc.Selection, "Missing")
	require.False(t, ok)
}

type stubStrategy struct {
	name  string
	value string
	calls *int
}

func (s stubStrategy) Name() string { return s.name }

func (s stubStrategy) Attempt(*goquery.Selection, string) (string, bool) {
	*s.calls++
	return s.value, s.value != ""
}

func TestFieldResolverShortCircuits(t *testing.T) {
	var first, second, third int
	r := NewFieldResolver(mustDoc(t, ``).Selection,
		stubStrategy{name: "empty", calls: &first},
		stubStrategy{name: "hit", value: "found", calls: &second},
		stubStrategy{name: "never", value: "late", calls: &third},
	)

	v, ok := r.Resolve("anything")
	require.True(t, ok)
	require.Equal(t, "found", v)
	require.Equal(t, 1, first)
	require.Equal(t, 1, second)
	require.Zero(t, third)
}

func TestFieldResolverAbsentIsNotError(t *testing.T) {
	r := NewFieldResolver(mustDoc(t, `<p>nothing here</p>`).Selection, DefaultFieldStrategies()...)
	_, ok := r.Resolve("VIN")
	require.False(t, ok)
}

func TestPropertyMappingCanonical(t *testing.T) {
	require.Equal(t, "vin", iaaiUSMapping.Canonical("Vehicle Identification Number"))
	require.Equal(t, "primaryDamage", iaaiUSMapping.Canonical(" Main Damage "))
	require.Equal(t, "vehicle", iaaiUSMapping.Canonical("Vehicle"))
}
