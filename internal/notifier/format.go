package notifier

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/almaluz/backend/pkg/sanitizer"
)

var arPrinter = message.NewPrinter(language.MustParse("es-AR"))

// FormatARS renders an amount as Argentine pesos: "$15.000" for whole
// amounts, "$15.000,50" when cents are present. Whole amounts carry no
// forced decimals, matching how prices are shown elsewhere in the shop.
func FormatARS(amount float64) string {
	if amount == math.Trunc(amount) {
		return "$" + arPrinter.Sprint(number.Decimal(amount, number.MaxFractionDigits(0)))
	}
	return "$" + arPrinter.Sprint(number.Decimal(amount,
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// FormatLongDate renders a date in Spanish long form, e.g.
// "lunes, 2 de marzo de 2026".
func FormatLongDate(t time.Time) string {
	return monday.Format(t, "Monday, 2 de January de 2006", monday.LocaleEsES)
}

// itemsHTML renders an order's line items as an HTML list block ready
// for raw insertion into a template. Product names are stripped of any
// markup before insertion.
func itemsHTML(items []OrderItem) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<ul style="padding-left: 16px;">`)
	for _, item := range items {
		fmt.Fprintf(&b, `<li>%d x %s (%s c/u)</li>`,
			item.Quantity, sanitizer.StripHTML(item.Name), FormatARS(item.Price))
	}
	b.WriteString(`</ul>`)
	return b.String()
}

// deliveryEstimate picks the explicit estimate when present, otherwise
// adds a fixed offset to the ship time (or to now, before shipping).
func deliveryEstimate(explicit *time.Time, shippedAt *time.Time) time.Time {
	if explicit != nil {
		return *explicit
	}
	base := time.Now()
	if shippedAt != nil {
		base = *shippedAt
	}
	return base.Add(deliveryOffset)
}
