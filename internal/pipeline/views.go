package pipeline

import (
	"context"
	"sort"
	"strings"

	"github.com/arturoarias12/Digital-Nomad-Recommendation-System/internal/domain"
)

// BuildRecommendations ensures the daily dataset and returns the ranked
// records matching the filter. An empty result is valid and displayable;
// only orchestrator-level failures (no cache in cache-only mode, total
// source failure) return an error.
func (e *Engine) BuildRecommendations(ctx context.Context, f domain.Filter) ([]domain.CityRecord, error) {
	snap, err := e.EnsureDataset(ctx, nil)
	if err != nil {
		return nil, err
	}
	return domain.Rank(snap, f), nil
}

// VisaData returns the destination-country visa categories. Cache-first:
// the table from this process's fresh fetch is reused when present; a fresh
// fetch happens only in normal mode, never in cache-only mode (an empty map
// then simply means "unknown").
func (e *Engine) VisaData(ctx context.Context) (map[string]domain.VisaCategory, error) {
	if _, err := e.EnsureDataset(ctx, nil); err != nil {
		return nil, err
	}

	e.mu.Lock()
	have, table := e.haveVisa, e.visaTable
	e.mu.Unlock()
	if have {
		return table.Categories, nil
	}
	if e.cacheOnly.Load() {
		return map[string]domain.VisaCategory{}, nil
	}

	fresh, err := e.visa.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.visaTable = fresh
	e.haveVisa = true
	e.mu.Unlock()
	return fresh.Categories, nil
}

// CostOfLivingData returns the cost-of-living rows of the combined dataset,
// optionally narrowed to cities containing query (case-insensitive). It
// never scrapes directly; a missing daily cache triggers at most one build
// through EnsureDataset.
func (e *Engine) CostOfLivingData(ctx context.Context, query string) ([]domain.CityRecord, error) {
	snap, err := e.EnsureDataset(ctx, nil)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.CityRecord, 0, len(snap.Records))
	for _, r := range snap.Records {
		if q != "" && !strings.Contains(strings.ToLower(r.City), q) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// CountrySpeed is one country's connectivity reading aggregated from the
// combined dataset. Nil fields mean the dataset carries no reading of that
// kind for the country.
type CountrySpeed struct {
	Country    string
	MobileMbps *float64
	FixedMbps  *float64
}

// InternetSpeedData aggregates country-level mobile and fixed speeds from
// the combined dataset (mean across the country's cities, nils skipped),
// optionally narrowed to countries containing query, sorted by country.
func (e *Engine) InternetSpeedData(ctx context.Context, query string) ([]CountrySpeed, error) {
	snap, err := e.EnsureDataset(ctx, nil)
	if err != nil {
		return nil, err
	}

	type agg struct {
		mobileSum, fixedSum     float64
		mobileCount, fixedCount int
	}
	byCountry := map[string]*agg{}
	for _, r := range snap.Records {
		a := byCountry[r.Country]
		if a == nil {
			a = &agg{}
			byCountry[r.Country] = a
		}
		if r.MobileMbps != nil {
			a.mobileSum += *r.MobileMbps
			a.mobileCount++
		}
		if r.FixedMbps != nil {
			a.fixedSum += *r.FixedMbps
			a.fixedCount++
		}
	}

	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]CountrySpeed, 0, len(byCountry))
	for country, a := range byCountry {
		if q != "" && !strings.Contains(strings.ToLower(country), q) {
			continue
		}
		cs := CountrySpeed{Country: country}
		if a.mobileCount > 0 {
			v := a.mobileSum / float64(a.mobileCount)
			cs.MobileMbps = &v
		}
		if a.fixedCount > 0 {
			v := a.fixedSum / float64(a.fixedCount)
			cs.FixedMbps = &v
		}
		out = append(out, cs)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Country < out[j].Country })
	return out, nil
}
