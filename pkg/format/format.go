// Package format renders stored values for display.
package format

import (
	"fmt"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders money with locale-aware digit grouping. The currency is
// the one used in the locale's region; amounts always carry two decimals.
type Formatter struct {
	printer *message.Printer
	symbol  string
}

// New returns a Formatter for a BCP 47 locale such as "en-US" or "de-DE".
// Locales with no known region fall back to US dollars.
func New(locale string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	return forTag(tag), nil
}

func forTag(tag language.Tag) *Formatter {
	unit, conf := currency.FromTag(tag)
	if conf == language.No {
		unit = currency.USD
	}
	p := message.NewPrinter(tag)
	return &Formatter{printer: p, symbol: p.Sprint(currency.Symbol(unit))}
}

// Default is the en-US formatter.
var Default = forTag(language.AmericanEnglish)


// Currency converts minor units to a display string: 123456 -> "$1,234.56".
func (f *Formatter) Currency(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + f.symbol + f.printer.Sprintf("%v", number.Decimal(float64(cents)/100, number.Scale(2)))
}

// Major formats an amount already in major units, as the revenue history
// returns them.
func (f *Formatter) Major(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + f.symbol + f.printer.Sprintf("%v", number.Decimal(amount, number.Scale(2)))
}

// DateLayout is the short display form, e.g. "Oct 18, 2026".
const DateLayout = "Jan 2, 2006"

// Date renders t in loc using DateLayout. A nil loc means time.Local.
func Date(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}

// DateTime renders t with its clock time, for appointment slots.
func DateTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("Jan 2, 2006 3:04 PM")
}
