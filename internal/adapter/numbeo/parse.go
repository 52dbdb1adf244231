package numbeo

import (
	"regexp"
	"strconv"
	"strings"
)

// numberRe matches the first numeric token of a price string.
var numberRe = regexp.MustCompile(`[-+]?\d*\.?\d+`)

// parsePrice extracts the first numeric token from text like "$1,234.56"
// and returns it as a float. Thousands separators are stripped first. Nil
// when nothing parseable is present.
func parsePrice(s string) *float64 {
	s = strings.ReplaceAll(s, ",", "")
	match := numberRe.FindString(s)
	if match == "" {
		return nil
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	return &v
}
