package cache

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/arturoarias12/Digital-Nomad-Recommendation-System/internal/domain"
)

// Column layout of a snapshot file. The first six are required; a file
// missing any of them fails validation and reads as absent.
var columns = []string{
	"city", "country", "region", "visa_free",
	"monthly_cost", "avg_internet_mbps", "nomad_score",
	"rent_usd", "utilities_usd", "internet_usd", "transport_usd", "food_usd",
	"mobile_mbps", "fixed_mbps",
	"lat", "lon",
}

var requiredColumns = []string{
	"city", "country", "visa_free", "monthly_cost", "avg_internet_mbps", "nomad_score",
}

func encodeSnapshot(w io.Writer, snap domain.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}

	for _, r := range snap.Records {
		row := []string{
			r.City,
			r.Country,
			r.Region,
			string(r.VisaFree),
			formatFloat(r.MonthlyCost),
			formatFloat(r.AvgInternetMbps),
			formatFloat(r.NomadScore),
			formatOptional(r.RentUSD),
			formatOptional(r.UtilitiesUSD),
			formatOptional(r.InternetUSD),
			formatOptional(r.TransportUSD),
			formatOptional(r.FoodUSD),
			formatOptional(r.MobileMbps),
			formatOptional(r.FixedMbps),
			formatOptional(r.Lat),
			formatOptional(r.Lon),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func decodeSnapshot(r io.Reader, key, tag string) (domain.Snapshot, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // header decides; tolerate older files with fewer columns

	header, err := cr.Read()
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			return domain.Snapshot{}, &domain.StructuralError{Reason: "missing required column " + name}
		}
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	snap := domain.Snapshot{Key: key, Tag: tag}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("read row: %w", err)
		}

		monthly, err := strconv.ParseFloat(field(row, "monthly_cost"), 64)
		if err != nil {
			return domain.Snapshot{}, &domain.StructuralError{Reason: "unparseable monthly_cost"}
		}
		speed, err := strconv.ParseFloat(field(row, "avg_internet_mbps"), 64)
		if err != nil {
			return domain.Snapshot{}, &domain.StructuralError{Reason: "unparseable avg_internet_mbps"}
		}
		score, err := strconv.ParseFloat(field(row, "nomad_score"), 64)
		if err != nil {
			return domain.Snapshot{}, &domain.StructuralError{Reason: "unparseable nomad_score"}
		}

		snap.Records = append(snap.Records, domain.CityRecord{
			City:            field(row, "city"),
			Country:         field(row, "country"),
			Region:          field(row, "region"),
			VisaFree:        domain.ParseTriState(field(row, "visa_free")),
			MonthlyCost:     monthly,
			AvgInternetMbps: speed,
			NomadScore:      score,
			RentUSD:         parseOptional(field(row, "rent_usd")),
			UtilitiesUSD:    parseOptional(field(row, "utilities_usd")),
			InternetUSD:     parseOptional(field(row, "internet_usd")),
			TransportUSD:    parseOptional(field(row, "transport_usd")),
			FoodUSD:         parseOptional(field(row, "food_usd")),
			MobileMbps:      parseOptional(field(row, "mobile_mbps")),
			FixedMbps:       parseOptional(field(row, "fixed_mbps")),
			Lat:             parseOptional(field(row, "lat")),
			Lon:             parseOptional(field(row, "lon")),
		})
	}
	return snap, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func parseOptional(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
