package domain

import (
	"sort"
	"strings"
)

// Filter is the caller-owned constraint set for one ranking request. Zero
// values disable the corresponding constraint.
type Filter struct {
	MaxBudget    float64 // USD per month; 0 = no budget cap
	MinSpeedMbps float64
	Region       string // "" or "Global" = any region
	VisaFreeOnly bool
	TopN         int // 0 = unlimited
}

// Rank applies the filter to a snapshot and returns the surviving records
// ordered by descending NomadScore, ties broken by ascending MonthlyCost,
// then city name A-Z. An empty result is a valid outcome, not an error.
func Rank(snap Snapshot, f Filter) []CityRecord {
	region := strings.TrimSpace(f.Region)
	anyRegion := region == "" || strings.EqualFold(region, "global")

	out := make([]CityRecord, 0, len(snap.Records))
	for _, r := range snap.Records {
		if !anyRegion && !strings.EqualFold(CanonicalRegion(r.Region), CanonicalRegion(region)) {
			continue
		}
		if f.MaxBudget > 0 && r.MonthlyCost > f.MaxBudget {
			continue
		}
		if f.MinSpeedMbps > 0 && r.AvgInternetMbps < f.MinSpeedMbps {
			continue
		}
		if f.VisaFreeOnly && r.VisaFree != VisaYes {
			continue
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].NomadScore != out[j].NomadScore {
			return out[i].NomadScore > out[j].NomadScore
		}
		if out[i].MonthlyCost != out[j].MonthlyCost {
			return out[i].MonthlyCost < out[j].MonthlyCost
		}
		return out[i].City < out[j].City
	})

	if f.TopN > 0 && len(out) > f.TopN {
		out = out[:f.TopN]
	}
	return out
}
