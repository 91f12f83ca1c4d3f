package interpret

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	millionForms = []string{"milhão", "milhao", "milhões", "milhoes"}
	thousandRe   = regexp.MustCompile(`\bmil\b`)
	numberRe     = regexp.MustCompile(`(\d+(?:\.\d{3})+(?:,\d+)?|\d+(?:[.,]\d+)?)\s*(k\b)?`)
)

func mentionsMillion(lower string) bool {
	for _, form := range millionForms {
		if strings.Contains(lower, form) {
			return true
		}
	}
	return false
}

// ParseAmount extracts a monetary amount from free text, recognizing the
// multiplier suffixes "k" and "mil" (×1000) and "milhão" (×1 000 000) plus
// Brazilian number formatting ("1.500,50").
func ParseAmount(text string) (float64, bool) {
	lower := strings.ToLower(text)

	mult := 1.0
	switch {
	case mentionsMillion(lower):
		mult = 1_000_000
	case thousandRe.MatchString(lower):
		mult = 1_000
	}

	m := numberRe.FindStringSubmatch(lower)
	if m == nil {
		return 0, false
	}
	if m[2] != "" && mult == 1.0 {
		mult = 1_000
	}

	value, ok := parseBrazilianNumber(m[1])
	if !ok {
		return 0, false
	}
	return value * mult, true
}

func parseBrazilianNumber(s string) (float64, bool) {
	// "1.500.000" and "1.500,50" use dot as thousands separator; a lone dot
	// with fewer than three trailing digits is a decimal point.
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else if thousandsGrouped.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

var thousandsGrouped = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)
