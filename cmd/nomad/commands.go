package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/arturoarias12/Digital-Nomad-Recommendation-System/internal/domain"
)

func newRecommendCmd() *cobra.Command {
	var (
		budget   float64
		minSpeed float64
		region   string
		visaFree bool
		top      int
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank cities matching your budget, speed, region and visa constraints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, _, stop, err := setup(cmd)
			if err != nil {
				return err
			}
			defer stop()

			ctx, cancel := signalContext()
			defer cancel()

			records, err := engine.BuildRecommendations(ctx, domain.Filter{
				MaxBudget:    budget,
				MinSpeedMbps: minSpeed,
				Region:       region,
				VisaFreeOnly: visaFree,
				TopN:         top,
			})
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No cities match those constraints. Try a higher budget or a lower minimum speed.")
				return nil
			}
			renderRecords(cmd.OutOrStdout(), records, true)
			return nil
		},
	}

	cmd.Flags().Float64Var(&budget, "budget", 0, "maximum monthly cost in USD (0 = no limit)")
	cmd.Flags().Float64Var(&minSpeed, "min-speed", 0, "minimum average internet speed in Mbps")
	cmd.Flags().StringVar(&region, "region", "", "restrict to a region (e.g. Europe, Asia; empty or 'global' = anywhere)")
	cmd.Flags().BoolVar(&visaFree, "visa-free", false, "only cities whose country is confirmed visa-free")
	cmd.Flags().IntVar(&top, "top", 10, "number of cities to show (0 = all)")
	return cmd
}

func newDatasetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dataset",
		Short: "Build or load today's combined dataset and print it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, _, stop, err := setup(cmd)
			if err != nil {
				return err
			}
			defer stop()

			ctx, cancel := signalContext()
			defer cancel()

			snap, err := engine.EnsureDataset(ctx, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Dataset %s (%s): %d cities\n", snap.Key, snap.Tag, len(snap.Records))
			renderRecords(cmd.OutOrStdout(), snap.Records, false)
			return nil
		},
	}
}

func newVisaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "visa",
		Short: "Show visa access categories by destination country",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, _, stop, err := setup(cmd)
			if err != nil {
				return err
			}
			defer stop()

			ctx, cancel := signalContext()
			defer cancel()

			categories, err := engine.VisaData(ctx)
			if err != nil {
				return err
			}
			if len(categories) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No visa data available in this mode.")
				return nil
			}

			countries := make([]string, 0, len(categories))
			for c := range categories {
				countries = append(countries, c)
			}
			sort.Strings(countries)

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Country", "Access"})
			for _, c := range countries {
				table.Append([]string{c, string(categories[c])})
			}
			table.Render()
			return nil
		},
	}
}

func newCostCmd() *cobra.Command {
	var city string

	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Show cost-of-living breakdowns from the combined dataset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, _, stop, err := setup(cmd)
			if err != nil {
				return err
			}
			defer stop()

			ctx, cancel := signalContext()
			defer cancel()

			records, err := engine.CostOfLivingData(ctx, city)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matching cities in the dataset.")
				return nil
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"City", "Country", "Rent", "Utilities", "Internet", "Transport", "Food", "Monthly Total"})
			for _, r := range records {
				table.Append([]string{
					r.City,
					r.Country,
					formatOptUSD(r.RentUSD),
					formatOptUSD(r.UtilitiesUSD),
					formatOptUSD(r.InternetUSD),
					formatOptUSD(r.TransportUSD),
					formatOptUSD(r.FoodUSD),
					formatUSD(r.MonthlyCost),
				})
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&city, "city", "", "filter by city name substring")
	return cmd
}

func newSpeedCmd() *cobra.Command {
	var country string

	cmd := &cobra.Command{
		Use:   "speed",
		Short: "Show country-level internet speeds from the combined dataset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, _, stop, err := setup(cmd)
			if err != nil {
				return err
			}
			defer stop()

			ctx, cancel := signalContext()
			defer cancel()

			speeds, err := engine.InternetSpeedData(ctx, country)
			if err != nil {
				return err
			}
			if len(speeds) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matching countries in the dataset.")
				return nil
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Country", "Mobile Mbps", "Fixed Mbps"})
			for _, s := range speeds {
				table.Append([]string{s.Country, formatOptMbps(s.MobileMbps), formatOptMbps(s.FixedMbps)})
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&country, "country", "", "filter by country name substring")
	return cmd
}

// renderRecords prints the main city table. Ranked output numbers the rows;
// the raw dataset view leaves them unnumbered.
func renderRecords(w io.Writer, records []domain.CityRecord, ranked bool) {
	table := tablewriter.NewWriter(w)
	header := []string{"City", "Country", "Region", "Score", "Monthly Cost", "Avg Mbps", "Visa Free"}
	if ranked {
		header = append([]string{"#"}, header...)
	}
	table.SetHeader(header)

	for i, r := range records {
		row := []string{
			r.City,
			r.Country,
			r.Region,
			strconv.FormatFloat(r.NomadScore, 'f', 2, 64),
			formatUSD(r.MonthlyCost),
			strconv.FormatFloat(r.AvgInternetMbps, 'f', 1, 64),
			string(r.VisaFree),
		}
		if ranked {
			row = append([]string{strconv.Itoa(i + 1)}, row...)
		}
		table.Append(row)
	}
	table.Render()
}

func formatUSD(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}

func formatOptUSD(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatUSD(*v)
}

func formatOptMbps(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}
