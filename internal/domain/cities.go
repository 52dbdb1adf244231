package domain

// DefaultCities is the city list scraped when the caller does not supply
// one.
var DefaultCities = []string{
	"Zurich",
	"Paris",
	"Berlin",
	"Sydney",
	"Amsterdam",
	"Seoul",
	"Dubai",
	"Toronto",
	"Tokyo",
	"London",
	"New York",
	"Hong Kong",
	"Barcelona",
	"Johannesburg",
	"Singapore",
	"Prague",
	"Lisbon",
	"Bangkok",
	"Mexico City",
}

// countryByCity resolves the cost-of-living spine (per-city) to the country
// identity the other two sources join on.
var countryByCity = map[string]string{
	"Zurich":       "Switzerland",
	"Paris":        "France",
	"Berlin":       "Germany",
	"Sydney":       "Australia",
	"Amsterdam":    "Netherlands",
	"Seoul":        "South Korea",
	"Dubai":        "United Arab Emirates",
	"Toronto":      "Canada",
	"Tokyo":        "Japan",
	"London":       "United Kingdom",
	"New York":     "United States",
	"Hong Kong":    "Hong Kong",
	"Barcelona":    "Spain",
	"Johannesburg": "South Africa",
	"Singapore":    "Singapore",
	"Prague":       "Czech Republic",
	"Lisbon":       "Portugal",
	"Bangkok":      "Thailand",
	"Mexico City":  "Mexico",
}

// CountryForCity returns the country a city belongs to, or "" when the city
// is not in the built-in table. A city without a country has no join
// identity and is dropped during fusion.
func CountryForCity(city string) string {
	return countryByCity[city]
}

type cityCoord struct {
	lat, lon float64
}

// cityCoords is a small display gazetteer; coordinates are approximate city
// centres, sufficient for map markers.
var cityCoords = map[string]cityCoord{
	"Zurich":       {47.3769, 8.5417},
	"Paris":        {48.8566, 2.3522},
	"Berlin":       {52.5200, 13.4050},
	"Sydney":       {-33.8688, 151.2093},
	"Amsterdam":    {52.3676, 4.9041},
	"Seoul":        {37.5665, 126.9780},
	"Dubai":        {25.2048, 55.2708},
	"Toronto":      {43.6532, -79.3832},
	"Tokyo":        {35.6762, 139.6503},
	"London":       {51.5074, -0.1278},
	"New York":     {40.7128, -74.0060},
	"Hong Kong":    {22.3193, 114.1694},
	"Barcelona":    {41.3874, 2.1686},
	"Johannesburg": {-26.2041, 28.0473},
	"Singapore":    {1.3521, 103.8198},
	"Prague":       {50.0755, 14.4378},
	"Lisbon":       {38.7223, -9.1393},
	"Bangkok":      {13.7563, 100.5018},
	"Mexico City":  {19.4326, -99.1332},
}

// CityCoordinates returns display coordinates for a city when known.
func CityCoordinates(city string) (lat, lon float64, ok bool) {
	c, ok := cityCoords[city]
	return c.lat, c.lon, ok
}
