// Package speedtest fetches the country-level mobile and fixed broadband
// tables from the Speedtest Global Index page.
package speedtest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/arturoarias12/Digital-Nomad-Recommendation-System/internal/domain"
	"github.com/arturoarias12/Digital-Nomad-Recommendation-System/internal/observability"
)

// DefaultPageURL is the Speedtest Global Index page carrying the rendered
// country tables.
const DefaultPageURL = "https://www.speedtest.net/global-index"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36"

// Table positions on the page, established empirically: index 2 is the
// mobile country table, index 4 the fixed broadband one. A layout change
// upstream will surface as a parse failure, not wrong data, because rows
// that do not normalize are skipped.
const (
	mobileTableIndex = 2
	fixedTableIndex  = 4
)

// Client fetches and parses the global index page.
type Client struct {
	pageURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a Speedtest Global Index client.
func NewClient(pageURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	if pageURL == "" {
		pageURL = DefaultPageURL
	}
	return &Client{
		pageURL:    pageURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    metrics,
	}
}

// Fetch downloads the page and returns both country tables indexed by
// country name. Total failure degrades to an empty table plus a FetchError
// for the orchestrator to absorb; it never aborts the other adapters.
func (c *Client) Fetch(ctx context.Context) (domain.SpeedTable, error) {
	start := time.Now()
	defer func() {
		c.metrics.FetchDuration.WithLabelValues("speedtest").Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL, nil)
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("speedtest", "error").Inc()
		return domain.EmptySpeedTable(err.Error()), &domain.FetchError{Source: "speedtest", Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("speedtest", "error").Inc()
		return domain.EmptySpeedTable(err.Error()), &domain.FetchError{Source: "speedtest", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("global index page: HTTP %d", resp.StatusCode)
		c.metrics.FetchRequests.WithLabelValues("speedtest", "error").Inc()
		return domain.EmptySpeedTable(err.Error()), &domain.FetchError{Source: "speedtest", Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		err = fmt.Errorf("parse html: %w", err)
		c.metrics.FetchRequests.WithLabelValues("speedtest", "error").Inc()
		return domain.EmptySpeedTable(err.Error()), &domain.FetchError{Source: "speedtest", Err: err}
	}

	tables := doc.Find("table")
	if tables.Length() <= fixedTableIndex {
		err = fmt.Errorf("expected at least %d tables, found %d; page layout may have changed", fixedTableIndex+1, tables.Length())
		c.metrics.FetchRequests.WithLabelValues("speedtest", "error").Inc()
		return domain.EmptySpeedTable(err.Error()), &domain.FetchError{Source: "speedtest", Err: err}
	}

	table := domain.SpeedTable{
		Mobile: parseCountryTable(tables.Eq(mobileTableIndex)),
		Fixed:  parseCountryTable(tables.Eq(fixedTableIndex)),
		Status: domain.StatusOK,
	}
	if len(table.Mobile) == 0 && len(table.Fixed) == 0 {
		err = fmt.Errorf("no country rows parsed from global index page")
		c.metrics.FetchRequests.WithLabelValues("speedtest", "error").Inc()
		return domain.EmptySpeedTable(err.Error()), &domain.FetchError{Source: "speedtest", Err: err}
	}
	if len(table.Mobile) == 0 || len(table.Fixed) == 0 {
		table.Status = domain.StatusPartial
		table.Problems = append(table.Problems, "one of the two country tables parsed empty")
	}

	c.metrics.FetchRequests.WithLabelValues("speedtest", table.Status.String()).Inc()
	c.logger.Info("speed data fetched", "mobile_countries", len(table.Mobile), "fixed_countries", len(table.Fixed))
	return table, nil
}

// parseCountryTable reads a rank / rank-change / country / Mbps table into
// a country-indexed map. Rows whose speed cell does not normalize to a
// number (headers, separators, trailing empties) are skipped.
func parseCountryTable(table *goquery.Selection) map[string]domain.SpeedMetric {
	out := map[string]domain.SpeedMetric{}
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		tds := tr.Find("td")
		if tds.Length() < 4 {
			return
		}
		country := strings.TrimSpace(tds.Eq(2).Text())
		if country == "" {
			return
		}
		mbps, ok := parseNumeric(tds.Eq(3).Text())
		if !ok {
			return
		}
		out[country] = domain.SpeedMetric{
			Mbps:       mbps,
			RankChange: parseRankChange(tds.Eq(1).Text()),
		}
	})
	return out
}

var numericRe = regexp.MustCompile(`[-+]?\d*\.?\d+`)

// parseNumeric strips formatting (commas, units) and parses the first
// numeric token of a cell.
func parseNumeric(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ",", "")
	match := numericRe.FindString(s)
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseRankChange reads the period-over-period rank delta; cells use arrow
// glyphs around the digits and may be empty for unchanged ranks.
func parseRankChange(s string) int {
	cleaned := strings.Map(func(r rune) rune {
		if r == '-' || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, s)
	if cleaned == "" || cleaned == "-" {
		return 0
	}
	v, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0
	}
	if strings.ContainsAny(s, "↓▼") && v > 0 {
		return -v
	}
	return v
}
