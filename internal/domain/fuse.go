package domain

// Fuse joins the three source tables into one snapshot of scoreable city
// records.
//
// The cost table is the spine: it is the only per-city source, so every
// output record starts from one of its rows. Speed and visa data are
// country-level and broadcast to each city in the country. Rows that end up
// without a monthly cost or an average speed are dropped rather than scored
// with a partial value; individual missing fields never raise.
//
// Fuse returns a StructuralError only for structurally invalid input: a
// cost table carrying no city identities at all.
func Fuse(visa VisaTable, cost CostTable, speed SpeedTable, homeCountry string, weights ScoreWeights) (Snapshot, error) {
	spine := make([]CostRow, 0, len(cost.Rows))
	for _, row := range cost.Rows {
		if row.City != "" {
			spine = append(spine, row)
		}
	}
	if len(spine) == 0 {
		return Snapshot{}, &StructuralError{Reason: "cost table has no city identities"}
	}

	seen := make(map[string]bool, len(spine))
	records := make([]CityRecord, 0, len(spine))
	for _, row := range spine {
		country := CountryForCity(row.City)
		if country == "" {
			continue // no join identity
		}
		if key := row.City + "|" + country; seen[key] {
			continue
		} else {
			seen[key] = true
		}

		monthly := row.MonthlyCost()
		mobile, fixed, avg := lookupSpeeds(speed, country)
		if monthly == nil || avg == nil {
			continue // unscoreable, excluded rather than surfaced with a placeholder
		}

		rec := CityRecord{
			City:            row.City,
			Country:         country,
			Region:          RegionForCountry(country),
			VisaFree:        visaStatus(visa, country, homeCountry),
			MonthlyCost:     *monthly,
			AvgInternetMbps: *avg,
			RentUSD:         row.RentUSD,
			UtilitiesUSD:    row.UtilitiesUSD,
			InternetUSD:     row.InternetUSD,
			TransportUSD:    row.TransportUSD,
			FoodUSD:         row.FoodUSD,
			MobileMbps:      mobile,
			FixedMbps:       fixed,
		}
		if lat, lon, ok := CityCoordinates(row.City); ok {
			rec.Lat, rec.Lon = &lat, &lon
		}
		records = append(records, rec)
	}

	ScoreRecords(records, weights)
	return Snapshot{Records: records}, nil
}

// lookupSpeeds resolves a country against both speed tables and averages
// whatever is available. One present reading stands alone; none yields nil.
func lookupSpeeds(speed SpeedTable, country string) (mobile, fixed, avg *float64) {
	if m, ok := lookupByCountry(speed.Mobile, country); ok {
		v := m.Mbps
		mobile = &v
	}
	if f, ok := lookupByCountry(speed.Fixed, country); ok {
		v := f.Mbps
		fixed = &v
	}

	switch {
	case mobile != nil && fixed != nil:
		v := (*mobile + *fixed) / 2
		avg = &v
	case mobile != nil:
		v := *mobile
		avg = &v
	case fixed != nil:
		v := *fixed
		avg = &v
	}
	return mobile, fixed, avg
}

func lookupByCountry(table map[string]SpeedMetric, country string) (SpeedMetric, bool) {
	if m, ok := table[country]; ok {
		return m, true
	}
	canonical := CanonicalCountry(country)
	for name, m := range table {
		if CanonicalCountry(name) == canonical {
			return m, true
		}
	}
	return SpeedMetric{}, false
}

// visaStatus derives the tri-state flag for a destination country. The home
// country is always visa-free relative to itself, regardless of what the
// visa source claims; a country absent from the source is unknown, never
// visa-required.
func visaStatus(visa VisaTable, country, homeCountry string) TriState {
	if homeCountry != "" && SameCountry(country, homeCountry) {
		return VisaYes
	}

	canonical := CanonicalCountry(country)
	for name, category := range visa.Categories {
		if CanonicalCountry(name) != canonical {
			continue
		}
		if category == VisaCategoryFree {
			return VisaYes
		}
		return VisaNo
	}
	return VisaUnknown
}
