package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rankFixture() Snapshot {
	return Snapshot{
		Key: "default",
		Tag: "20260823",
		Records: []CityRecord{
			{City: "Lisbon", Country: "Portugal", Region: "Europe", VisaFree: VisaYes, MonthlyCost: 1200, AvgInternetMbps: 120, NomadScore: 82.5},
			{City: "Berlin", Country: "Germany", Region: "Europe", VisaFree: VisaNo, MonthlyCost: 1800, AvgInternetMbps: 90, NomadScore: 61.0},
			{City: "Bangkok", Country: "Thailand", Region: "Asia", VisaFree: VisaUnknown, MonthlyCost: 900, AvgInternetMbps: 60, NomadScore: 70.0},
			{City: "Prague", Country: "Czech Republic", Region: "Europe", VisaFree: VisaYes, MonthlyCost: 1100, AvgInternetMbps: 80, NomadScore: 70.0},
		},
	}
}

func TestRankOrdering(t *testing.T) {
	out := Rank(rankFixture(), Filter{})
	require.Len(t, out, 4)

	// Descending score; the 70.0 tie breaks by lower monthly cost.
	assert.Equal(t, "Lisbon", out[0].City)
	assert.Equal(t, "Bangkok", out[1].City)
	assert.Equal(t, "Prague", out[2].City)
	assert.Equal(t, "Berlin", out[3].City)
}

func TestRankTieBreaksByCityName(t *testing.T) {
	snap := Snapshot{Records: []CityRecord{
		{City: "Porto", MonthlyCost: 1000, NomadScore: 75},
		{City: "Athens", MonthlyCost: 1000, NomadScore: 75},
	}}
	out := Rank(snap, Filter{})
	require.Len(t, out, 2)
	assert.Equal(t, "Athens", out[0].City)
}

func TestRankBudgetFilter(t *testing.T) {
	out := Rank(rankFixture(), Filter{MaxBudget: 1500})
	require.Len(t, out, 3)
	for _, r := range out {
		assert.LessOrEqual(t, r.MonthlyCost, 1500.0)
	}
	// A city at exactly the budget stays in.
	out = Rank(rankFixture(), Filter{MaxBudget: 1800})
	assert.Len(t, out, 4)
}

func TestRankSpeedFilter(t *testing.T) {
	out := Rank(rankFixture(), Filter{MinSpeedMbps: 85})
	require.Len(t, out, 2)
	assert.Equal(t, "Lisbon", out[0].City)
	assert.Equal(t, "Berlin", out[1].City)
}

func TestRankRegionFilter(t *testing.T) {
	out := Rank(rankFixture(), Filter{Region: "Europe"})
	assert.Len(t, out, 3)

	// Variant spellings fold onto the canonical region.
	out = Rank(rankFixture(), Filter{Region: "european"})
	assert.Len(t, out, 3)

	out = Rank(rankFixture(), Filter{Region: "Global"})
	assert.Len(t, out, 4)

	out = Rank(rankFixture(), Filter{Region: "Antarctica"})
	assert.Empty(t, out)
}

func TestRankVisaFreeOnlyExcludesUnknown(t *testing.T) {
	out := Rank(rankFixture(), Filter{VisaFreeOnly: true})
	require.Len(t, out, 2)
	for _, r := range out {
		assert.Equal(t, VisaYes, r.VisaFree)
	}
}

func TestRankTopN(t *testing.T) {
	out := Rank(rankFixture(), Filter{TopN: 2})
	require.Len(t, out, 2)
	assert.Equal(t, "Lisbon", out[0].City)

	out = Rank(rankFixture(), Filter{TopN: 100})
	assert.Len(t, out, 4)
}

func TestRankEmptyResultIsValid(t *testing.T) {
	out := Rank(rankFixture(), Filter{MaxBudget: 100})
	assert.NotNil(t, out)
	assert.Empty(t, out)
}
