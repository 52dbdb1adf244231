package domain

import "strings"

// FetchStatus classifies the outcome of one adapter invocation, replacing
// the ambiguous "empty result might mean failure" convention: callers branch
// on the status instead of reasoning from empty collections.
type FetchStatus int

const (
	StatusOK FetchStatus = iota
	StatusPartial
	StatusFailed
)

func (s FetchStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusPartial:
		return "partial"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// VisaCategory is the normalized visa requirement class for a destination.
type VisaCategory string

const (
	VisaCategoryFree      VisaCategory = "visa-free"
	VisaCategoryOnArrival VisaCategory = "visa-on-arrival"
	VisaCategoryETA       VisaCategory = "eta"
	VisaCategoryEVisa     VisaCategory = "e-visa"
	VisaCategoryRequired  VisaCategory = "visa-required"
	VisaCategoryUnknown   VisaCategory = "unknown"
)

// ClassifyVisaSection maps a scraped section heading ("Visa-free countries
// for United States passport holders") to a VisaCategory by keyword.
func ClassifyVisaSection(title string) VisaCategory {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "visa-free") || strings.Contains(t, "visa free"):
		return VisaCategoryFree
	case strings.Contains(t, "visa on arrival") || strings.Contains(t, "visa-on-arrival"):
		return VisaCategoryOnArrival
	case strings.Contains(t, "eta") || strings.Contains(t, "electronic travel"):
		return VisaCategoryETA
	case strings.Contains(t, "e-visa") || strings.Contains(t, "evisa"):
		return VisaCategoryEVisa
	case strings.Contains(t, "requiring visas") || strings.Contains(t, "visa required") || strings.Contains(t, "visa-required"):
		return VisaCategoryRequired
	default:
		return VisaCategoryUnknown
	}
}

// VisaTable maps destination country to visa category for one passport.
// Produced fresh on each adapter invocation; never persisted on its own.
type VisaTable struct {
	Categories map[string]VisaCategory
	Status     FetchStatus
	Problems   []string
}

// EmptyVisaTable is the graceful-degradation result for a total visa source
// failure: every destination reads as VisaUnknown downstream.
func EmptyVisaTable(problems ...string) VisaTable {
	return VisaTable{
		Categories: map[string]VisaCategory{},
		Status:     StatusFailed,
		Problems:   problems,
	}
}

// CostRow holds the scraped price metrics for one city. Metrics that failed
// to parse stay nil; Source records the page URL on success or an
// "ERROR: <reason> @ <url>" annotation on failure.
type CostRow struct {
	City         string
	RentUSD      *float64
	UtilitiesUSD *float64
	InternetUSD  *float64
	TransportUSD *float64
	FoodUSD      *float64
	Source       string
}

// MonthlyCost sums the metrics that are present. Missing metrics are
// excluded, not zero-filled; nil means no metric parsed at all.
func (r CostRow) MonthlyCost() *float64 {
	var total float64
	found := false
	for _, v := range []*float64{r.RentUSD, r.UtilitiesUSD, r.InternetUSD, r.TransportUSD, r.FoodUSD} {
		if v != nil {
			total += *v
			found = true
		}
	}
	if !found {
		return nil
	}
	return &total
}

// CostTable is the cost-of-living adapter output: one row per requested
// city, in request order, including rows for cities that failed.
type CostTable struct {
	Rows     []CostRow
	Status   FetchStatus
	Problems []string
}

// SpeedMetric is one country's average speed reading.
type SpeedMetric struct {
	Mbps       float64
	RankChange int // period-over-period rank delta, 0 when unreported
}

// SpeedTable holds the country-level mobile and fixed broadband tables,
// indexed by country name as published by the source.
type SpeedTable struct {
	Mobile   map[string]SpeedMetric
	Fixed    map[string]SpeedMetric
	Status   FetchStatus
	Problems []string
}

// EmptySpeedTable is the graceful-degradation result for a total
// connectivity source failure.
func EmptySpeedTable(problems ...string) SpeedTable {
	return SpeedTable{
		Mobile:   map[string]SpeedMetric{},
		Fixed:    map[string]SpeedMetric{},
		Status:   StatusFailed,
		Problems: problems,
	}
}
