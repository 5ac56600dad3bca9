package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Canonical vehicle field names shared by every site extractor.
const (
	FieldTitle               = "title"
	FieldYear                = "year"
	FieldMake                = "make"
	FieldModel               = "model"
	FieldVIN                 = "vin"
	FieldLotNumber           = "lotNumber"
	FieldOdometer            = "odometer"
	FieldPrimaryDamage       = "primaryDamage"
	FieldSecondaryDamage     = "secondaryDamage"
	FieldEngine              = "engine"
	FieldCylinders           = "cylinders"
	FieldTransmission        = "transmission"
	FieldDriveType           = "driveType"
	FieldFuelType            = "fuelType"
	FieldBodyStyle           = "bodyStyle"
	FieldColor               = "color"
	FieldExteriorColor       = "exteriorColor"
	FieldInteriorColor       = "interiorColor"
	FieldKeys                = "keys"
	FieldRetailValue         = "retailValue"
	FieldActualCashValue     = "actualCashValue"
	FieldEstimatedRepairCost = "estimatedRepairCost"
	FieldTitleCode           = "titleCode"
	FieldTitleState          = "titleState"
	FieldHighlights          = "highlights"
	FieldPrice               = "price"
	FieldImages              = "images"
)

// VehicleRecord is an ordered set of canonical fields plus an image list.
// A field is either present with a string value or absent. Declared fields
// that are still absent serialize as null.
type VehicleRecord struct {
	keys   []string
	values map[string]string
	Images []string
}

func NewVehicleRecord() *VehicleRecord {
	return &VehicleRecord{
		values: make(map[string]string),
		Images: []string{},
	}
}

func (r *VehicleRecord) ensure() {
	if r.values == nil {
		r.values = make(map[string]string)
	}
}

func (r *VehicleRecord) track(field string) {
	for _, k := range r.keys {
		if k == field {
			return
		}
	}
	r.keys = append(r.keys, field)
}

// Get returns the field value and whether it is present.
func (r *VehicleRecord) Get(field string) (string, bool) {
	if r == nil || r.values == nil {
		return "", false
	}
	v, ok := r.values[field]
	return v, ok
}

// Has reports whether the field holds a value.
func (r *VehicleRecord) Has(field string) bool {
	_, ok := r.Get(field)
	return ok
}

// Set stores a value, replacing any previous one. Empty values are ignored.
func (r *VehicleRecord) Set(field, value string) {
	if field == "" || field == FieldImages || value == "" {
		return
	}
	r.ensure()
	r.track(field)
	r.values[field] = value
}

// SetIfAbsent stores the value only when the field is still unresolved.
// It reports whether the value was stored.
func (r *VehicleRecord) SetIfAbsent(field, value string) bool {
	if r.Has(field) || value == "" {
		return false
	}
	r.Set(field, value)
	return r.Has(field)
}

// Declare reserves fields so they appear (as null) even when unresolved.
func (r *VehicleRecord) Declare(fields ...string) {
	r.ensure()
	for _, f := range fields {
		if f == "" || f == FieldImages {
			continue
		}
		r.track(f)
	}
}

// Title returns the vehicle title, or "" when it is missing.
func (r *VehicleRecord) Title() string {
	v, _ := r.Get(FieldTitle)
	return v
}

// Fields returns the tracked field names in insertion order.
func (r *VehicleRecord) Fields() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Values returns a copy of the present fields.
func (r *VehicleRecord) Values() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

func (r *VehicleRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if v, ok := r.values[k]; ok {
			val, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			buf.Write(val)
		} else {
			buf.WriteString("null")
		}
	}
	if len(r.keys) > 0 {
		buf.WriteByte(',')
	}
	images := r.Images
	if images == nil {
		images = []string{}
	}
	imgs, err := json.Marshal(images)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`"images":`)
	buf.Write(imgs)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *VehicleRecord) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("vehicle record: expected object, got %v", tok)
	}

	*r = VehicleRecord{values: make(map[string]string), Images: []string{}}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		if key == FieldImages {
			if err := dec.Decode(&r.Images); err != nil {
				return fmt.Errorf("vehicle record images: %w", err)
			}
			if r.Images == nil {
				r.Images = []string{}
			}
			continue
		}
		var value *string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("vehicle record field %q: %w", key, err)
		}
		r.track(key)
		if value != nil && *value != "" {
			r.values[key] = *value
		}
	}
	_, err = dec.Token()
	return err
}
