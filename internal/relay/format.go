package relay

import (
	"regexp"
	"strings"

	"auctionrelay/internal/models"
)

// Message is one outbound chat message.
type Message struct {
	Type string `json:"type"`
	Body string `json:"body,omitempty"`
	Href string `json:"href,omitempty"`
}

const (
	MessageText  = "text"
	MessageImage = "image"
)

type label struct {
	field  string
	arabic string
	emoji  string
}

// displayLabels is rendered in this order. Aliases cover raw keys carried by
// records from older extractors.
var displayLabels = []label{
	{models.FieldActualCashValue, "القيمة النقدية الفعلية", "💰"},
	{"vehicle", "المركبة", "🚗"},
	{models.FieldLotNumber, "رقم القطعة", "🔢"},
	{"itemNumber", "رقم العنصر", "🔢"},
	{models.FieldVIN, "رقم الهيكل", "🆔"},
	{models.FieldTitleCode, "رمز سند الملكية", "🔣"},
	{"titleStatus", "حالة سند الملكية", "📋"},
	{models.FieldTitleState, "ولاية سند الملكية", "🏛️"},
	{models.FieldOdometer, "عداد المسافات", "🧮"},
	{"miles", "الأميال", "🧮"},
	{"mileage", "المسافة المقطوعة", "🧮"},
	{"damage", "الضرر", "💥"},
	{models.FieldPrimaryDamage, "الضرر الأساسي", "💥"},
	{"mainDamage", "الضرر الرئيسي", "💥"},
	{models.FieldSecondaryDamage, "الضرر الثانوي", "💥"},
	{"additionalDamage", "ضرر إضافي", "💥"},
	{models.FieldEstimatedRepairCost, "تكلفة الإصلاح المقدرة", "🛠️"},
	{"estRetailValue", "القيمة التجارية المقدرة", "💰"},
	{"estimatedValue", "القيمة المقدرة", "💰"},
	{models.FieldRetailValue, "القيمة التجارية", "💰"},
	{"value", "القيمة", "💰"},
	{models.FieldCylinders, "عدد الأسطوانات", "⚙️"},
	{"engineCylinders", "أسطوانات المحرك", "⚙️"},
	{models.FieldColor, "اللون", "🎨"},
	{models.FieldExteriorColor, "اللون الخارجي", "🎨"},
	{models.FieldInteriorColor, "اللون الداخلي", "🎨"},
	{models.FieldEngine, "المحرك", "⚙️"},
	{"engineType", "نوع المحرك", "⚙️"},
	{"motor", "المحرك", "⚙️"},
	{models.FieldTransmission, "ناقل الحركة", "🔄"},
	{"trans", "ناقل الحركة", "🔄"},
	{"gearbox", "علبة التروس", "🔄"},
	{"drive", "نظام الدفع", "🚗"},
	{models.FieldDriveType, "نوع الدفع", "🚗"},
	{"driveLineType", "نوع خط الدفع", "🚗"},
	{"drivetrain", "نظام الدفع", "🚗"},
	{"body", "الهيكل", "🚘"},
	{models.FieldBodyStyle, "نوع الهيكل", "🚘"},
	{"bodyType", "نوع الهيكل", "🚘"},
	{"vehicleType", "نوع المركبة", "🚘"},
	{"fuel", "الوقود", "⛽"},
	{models.FieldFuelType, "نوع الوقود", "⛽"},
	{models.FieldKeys, "المفاتيح", "🔑"},
	{"key", "المفتاح", "🔑"},
	{models.FieldHighlights, "النقاط البارزة", "✨"},
	{"specialNotes", "ملاحظات خاصة", "📝"},
	{"comments", "التعليقات", "💬"},
	{"description", "الوصف", "📋"},
}

// trailingImages is the number of gallery frames never relayed.
const trailingImages = 2

var upperRun = regexp.MustCompile(`([A-Z])`)

// VehicleMessages renders a record as one text message followed by one
// image message per picture, leaving out the last two pictures.
func VehicleMessages(record *models.VehicleRecord) []Message {
	var b strings.Builder
	b.WriteString("*" + record.Title() + "*\n")

	if price, ok := record.Get(models.FieldPrice); ok && !zeroPrice(price) {
		b.WriteString("💵 *السعر:* " + price + "\n")
	}

	done := map[string]bool{
		strings.ToLower(models.FieldTitle): true,
		strings.ToLower(models.FieldPrice): true,
	}
	for _, l := range displayLabels {
		v, ok := record.Get(l.field)
		if !ok {
			continue
		}
		b.WriteString(l.emoji + " *" + l.arabic + ":* " + v + "\n")
		done[strings.ToLower(l.field)] = true
	}
	for _, f := range record.Fields() {
		v, ok := record.Get(f)
		if !ok || done[strings.ToLower(f)] {
			continue
		}
		b.WriteString("ℹ️ *" + splitKey(f) + ":* " + v + "\n")
	}

	messages := []Message{{Type: MessageText, Body: b.String()}}
	if n := len(record.Images) - trailingImages; n > 0 {
		for _, img := range record.Images[:n] {
			if img != "" {
				messages = append(messages, Message{Type: MessageImage, Href: img})
			}
		}
	}
	return messages
}

// SplitMessages separates text from image messages, keeping order.
func SplitMessages(messages []Message) (text, images []Message) {
	for _, m := range messages {
		switch m.Type {
		case MessageText:
			text = append(text, m)
		case MessageImage:
			images = append(images, m)
		}
	}
	return text, images
}

func zeroPrice(p string) bool {
	switch strings.TrimSpace(p) {
	case "", "$0", "0", "$0.00":
		return true
	}
	return false
}

func splitKey(key string) string {
	spaced := upperRun.ReplaceAllString(key, " $1")
	return strings.ReplaceAll(strings.TrimSpace(spaced), "_", " ")
}
