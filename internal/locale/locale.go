// Package locale resolves the display language and formats amounts and times.
package locale

import (
	"math"
	"strings"
	"time"

	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Supported lists the display languages, default first.
var Supported = []language.Tag{language.French, language.English}

var matcher = language.NewMatcher(Supported)

// Resolve maps a stored preference such as "en", "en-GB" or "fr_FR" onto a
// supported language. Unknown preferences fall back to French.
func Resolve(pref string) language.Tag {
	pref = strings.ReplaceAll(strings.TrimSpace(pref), "_", "-")
	if pref == "" {
		return Supported[0]
	}
	_, idx := language.MatchStrings(matcher, pref)
	return Supported[idx]
}

// Code returns the two-letter code stored in the session.
func Code(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}

// Next cycles to the following supported language.
func Next(tag language.Tag) language.Tag {
	for i, t := range Supported {
		if t == tag {
			return Supported[(i+1)%len(Supported)]
		}
	}
	return Supported[0]
}

// Name is the language's own name.
func Name(tag language.Tag) string {
	if tag == language.English {
		return "English"
	}
	return "Français"
}

// FormatAmount renders an amount with locale grouping followed by the
// currency code, e.g. "5,000 KES". Whole amounts drop the decimals.
func FormatAmount(tag language.Tag, amount float64, currency string) string {
	p := message.NewPrinter(tag)
	var s string
	if amount == math.Trunc(amount) && math.Abs(amount) < 1e15 {
		s = p.Sprintf("%d", int64(amount))
	} else {
		s = p.Sprintf("%.2f", amount)
	}
	if currency = strings.TrimSpace(currency); currency != "" {
		s += " " + currency
	}
	return s
}

// FormatCount renders an integer with locale grouping.
func FormatCount(tag language.Tag, n int) string {
	return message.NewPrinter(tag).Sprintf("%d", n)
}

// Relative renders t relative to now ("2 hours ago", "in 3 days").
func Relative(tag language.Tag, t time.Time) string {
	return relativeConfig(tag).Format(t)
}

func relativeConfig(tag language.Tag) timeago.Config {
	if tag == language.English {
		return timeago.English
	}
	return timeago.French
}
