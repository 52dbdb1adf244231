package domain

import (
	"errors"
	"math"
)

// ScoreWeights are the tunable coefficients of the composite score. They
// live in configuration, not in fusion logic, so re-weighting never touches
// the join code.
type ScoreWeights struct {
	Visa  float64
	Cost  float64
	Speed float64
}

// DefaultScoreWeights match the documented defaults: cost dominates, then
// speed, then visa access.
var DefaultScoreWeights = ScoreWeights{Visa: 0.25, Cost: 0.40, Speed: 0.35}

// Validate rejects weights outside [0,1] or not summing to 1.
func (w ScoreWeights) Validate() error {
	for _, v := range []float64{w.Visa, w.Cost, w.Speed} {
		if v < 0 || v > 1 {
			return errors.New("score weights must be within [0,1]")
		}
	}
	if math.Abs(w.Visa+w.Cost+w.Speed-1.0) > 1e-6 {
		return errors.New("score weights must sum to 1")
	}
	return nil
}

// ScoreRecords computes NomadScore in place for every record.
//
// Components, each 0-100:
//   - visa: 100 when visa-free, 50 otherwise (unknown scores like "no";
//     the tri-state flag itself is preserved for filtering).
//   - cost: min-max inverse across the slice, so the cheapest city scores
//     100 and the most expensive 0. Degenerate span (all equal) scores 0
//     with denominator 1.
//   - speed: fraction of the slice maximum.
//
// Each component is monotonic in its input holding the others fixed. The
// caller guarantees MonthlyCost and AvgInternetMbps are defined; records
// that cannot satisfy that are dropped before scoring.
func ScoreRecords(records []CityRecord, w ScoreWeights) {
	if len(records) == 0 {
		return
	}

	minCost, maxCost := records[0].MonthlyCost, records[0].MonthlyCost
	maxSpeed := 0.0
	for _, r := range records {
		minCost = math.Min(minCost, r.MonthlyCost)
		maxCost = math.Max(maxCost, r.MonthlyCost)
		maxSpeed = math.Max(maxSpeed, r.AvgInternetMbps)
	}

	costSpan := maxCost - minCost
	if costSpan == 0 {
		costSpan = 1
	}
	speedDenom := maxSpeed
	if speedDenom == 0 {
		speedDenom = 1
	}

	for i := range records {
		r := &records[i]

		visaScore := 50.0
		if r.VisaFree == VisaYes {
			visaScore = 100.0
		}
		costScore := (maxCost - r.MonthlyCost) / costSpan * 100
		speedScore := r.AvgInternetMbps / speedDenom * 100

		r.NomadScore = w.Visa*visaScore + w.Cost*costScore + w.Speed*speedScore
	}
}
