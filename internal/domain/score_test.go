package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreRecordsMinMax(t *testing.T) {
	records := []CityRecord{
		{City: "Cheap", VisaFree: VisaYes, MonthlyCost: 1000, AvgInternetMbps: 50},
		{City: "Mid", VisaFree: VisaNo, MonthlyCost: 2000, AvgInternetMbps: 100},
		{City: "Pricey", VisaFree: VisaUnknown, MonthlyCost: 3000, AvgInternetMbps: 25},
	}
	ScoreRecords(records, DefaultScoreWeights)

	// Cheapest city: full cost component, half the speed maximum, visa-free.
	assert.InDelta(t, 0.25*100+0.40*100+0.35*50, records[0].NomadScore, 1e-9)
	// Fastest city: half the cost span, full speed component, not visa-free.
	assert.InDelta(t, 0.25*50+0.40*50+0.35*100, records[1].NomadScore, 1e-9)
	// Most expensive: zero cost component; unknown visa scores like "no".
	assert.InDelta(t, 0.25*50+0.40*0+0.35*25, records[2].NomadScore, 1e-9)
}

func TestScoreRecordsCheaperIsBetter(t *testing.T) {
	records := []CityRecord{
		{City: "A", VisaFree: VisaYes, MonthlyCost: 1200, AvgInternetMbps: 80},
		{City: "B", VisaFree: VisaYes, MonthlyCost: 1800, AvgInternetMbps: 80},
	}
	ScoreRecords(records, DefaultScoreWeights)
	assert.Greater(t, records[0].NomadScore, records[1].NomadScore)
}

func TestScoreRecordsDegenerateSpans(t *testing.T) {
	records := []CityRecord{
		{City: "A", VisaFree: VisaYes, MonthlyCost: 1500, AvgInternetMbps: 0},
		{City: "B", VisaFree: VisaYes, MonthlyCost: 1500, AvgInternetMbps: 0},
	}
	ScoreRecords(records, DefaultScoreWeights)

	// Identical costs and zero speeds must not divide by zero; both cities
	// collapse to the visa component alone.
	for _, r := range records {
		assert.InDelta(t, 0.25*100, r.NomadScore, 1e-9)
	}
}

func TestScoreRecordsEmptySlice(t *testing.T) {
	assert.NotPanics(t, func() {
		ScoreRecords(nil, DefaultScoreWeights)
	})
}

func TestScoreWeightsValidate(t *testing.T) {
	assert.NoError(t, DefaultScoreWeights.Validate())
	assert.NoError(t, ScoreWeights{Visa: 0, Cost: 0.5, Speed: 0.5}.Validate())

	assert.Error(t, ScoreWeights{Visa: 0.5, Cost: 0.5, Speed: 0.5}.Validate())
	assert.Error(t, ScoreWeights{Visa: -0.1, Cost: 0.6, Speed: 0.5}.Validate())
	assert.Error(t, ScoreWeights{Visa: 1.2, Cost: -0.1, Speed: -0.1}.Validate())
}
