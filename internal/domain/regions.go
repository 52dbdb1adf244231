package domain

import "strings"

// countryAliases maps a canonical country name to spellings used by the
// scraped sources. Matching is case-insensitive on top of this table.
var countryAliases = map[string][]string{
	"United States":        {"United States of America", "USA", "US", "U.S."},
	"Czech Republic":       {"Czechia"},
	"South Korea":          {"Korea, South", "Republic of Korea", "Korea (Rep.)"},
	"United Arab Emirates": {"UAE"},
	"United Kingdom":       {"UK", "Great Britain"},
	"Hong Kong":            {"Hong Kong (SAR China)", "Hong Kong SAR"},
}

var aliasToCanonical = func() map[string]string {
	m := make(map[string]string, len(countryAliases)*3)
	for canonical, aliases := range countryAliases {
		m[strings.ToLower(canonical)] = canonical
		for _, a := range aliases {
			m[strings.ToLower(a)] = canonical
		}
	}
	return m
}()

// CanonicalCountry collapses source-specific spellings onto one name so the
// three sources join cleanly. Unrecognized names pass through trimmed.
func CanonicalCountry(name string) string {
	trimmed := strings.TrimSpace(name)
	if canonical, ok := aliasToCanonical[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return trimmed
}

// SameCountry reports whether two country names refer to the same country
// after alias resolution. Used for the home-country visa override.
func SameCountry(a, b string) bool {
	return strings.EqualFold(CanonicalCountry(a), CanonicalCountry(b))
}

// regionByCountry classifies the countries of the default city list. The
// map is deliberately small; unknown countries fall back to "Other".
var regionByCountry = map[string]string{
	"Switzerland":          "Europe",
	"France":               "Europe",
	"Germany":              "Europe",
	"Netherlands":          "Europe",
	"United Kingdom":       "Europe",
	"Spain":                "Europe",
	"Czech Republic":       "Europe",
	"Portugal":             "Europe",
	"Australia":            "Oceania",
	"New Zealand":          "Oceania",
	"South Korea":          "Asia",
	"United Arab Emirates": "Asia",
	"Japan":                "Asia",
	"Hong Kong":            "Asia",
	"Singapore":            "Asia",
	"Thailand":             "Asia",
	"Canada":               "Americas",
	"United States":        "Americas",
	"Mexico":               "Americas",
	"South Africa":         "Africa",
}

// RegionForCountry returns the canonical region for a country, or "Other"
// when the country is not classified. Unknown region is permitted.
func RegionForCountry(country string) string {
	if region, ok := regionByCountry[CanonicalCountry(country)]; ok {
		return region
	}
	return "Other"
}

// CanonicalRegion folds free-text region spellings onto the five canonical
// names, so cached data written with variants still filters correctly.
func CanonicalRegion(s string) string {
	t := strings.ToLower(strings.TrimSpace(s))
	switch {
	case t == "":
		return "Other"
	case strings.Contains(t, "amer"):
		return "Americas"
	case strings.Contains(t, "euro"):
		return "Europe"
	case strings.Contains(t, "asia"):
		return "Asia"
	case strings.Contains(t, "afri"):
		return "Africa"
	case strings.Contains(t, "ocea") || strings.Contains(t, "austral"):
		return "Oceania"
	default:
		return strings.TrimSpace(s)
	}
}
