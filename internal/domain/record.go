package domain

// TriState is a three-valued visa-access flag. A destination missing from
// the visa source is Unknown, which is distinct from a known visa
// requirement.
type TriState string

const (
	VisaYes     TriState = "yes"
	VisaNo      TriState = "no"
	VisaUnknown TriState = "unknown"
)

// ParseTriState maps serialized flags (including legacy booleans from older
// cache files) onto a TriState. Anything unrecognized is Unknown.
func ParseTriState(s string) TriState {
	switch s {
	case "yes", "true", "True":
		return VisaYes
	case "no", "false", "False":
		return VisaNo
	default:
		return VisaUnknown
	}
}

// CityRecord is one fused row of a dataset snapshot.
//
// MonthlyCost, AvgInternetMbps and NomadScore are always defined: fusion
// drops rows that cannot be scored instead of emitting partial values. The
// pointer fields are per-source detail that may be absent for any given
// city.
type CityRecord struct {
	City    string
	Country string
	Region  string

	VisaFree        TriState
	MonthlyCost     float64
	AvgInternetMbps float64
	NomadScore      float64

	// Cost-of-living detail, USD per month.
	RentUSD      *float64
	UtilitiesUSD *float64
	InternetUSD  *float64
	TransportUSD *float64
	FoodUSD      *float64

	// Connectivity detail, Mbps.
	MobileMbps *float64
	FixedMbps  *float64

	// Display coordinates (WGS-84), when the gazetteer knows the city.
	Lat *float64
	Lon *float64
}

// Snapshot is the fused dataset for one calendar day under a logical key.
// Immutable once written to the cache store; superseded by the next day's
// snapshot rather than overwritten.
type Snapshot struct {
	Key     string
	Tag     string // YYYYMMDD
	Records []CityRecord
}

// Validate reports a StructuralError when the snapshot cannot be trusted:
// no records, or no record carrying both halves of its identity. The cache
// store treats an invalid snapshot as absent.
func (s Snapshot) Validate() error {
	if len(s.Records) == 0 {
		return &StructuralError{Reason: "snapshot has no records"}
	}
	for _, r := range s.Records {
		if r.City != "" && r.Country != "" {
			return nil
		}
	}
	return &StructuralError{Reason: "snapshot has no record with city and country identity"}
}
