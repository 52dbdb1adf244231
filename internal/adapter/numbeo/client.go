// Package numbeo scrapes selected cost-of-living metrics per city from
// Numbeo city pages, with polite pacing and a bounded retry budget so the
// batch survives the site's aggressive rate limiting.
package numbeo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"

	"github.com/arturoarias12/Digital-Nomad-Recommendation-System/internal/domain"
	"github.com/arturoarias12/Digital-Nomad-Recommendation-System/internal/observability"
)

// DefaultBaseURL is the Numbeo site root. City pages are requested with
// USD display currency to simplify numeric parsing.
const DefaultBaseURL = "https://www.numbeo.com"

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0 Safari/537.36"

// errRateLimited marks an HTTP 429 so batch-level classification can tell
// throttling apart from generic fetch failure.
var errRateLimited = errors.New("rate limited: HTTP 429")

// Client scrapes city pages one at a time.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	delay       time.Duration // polite pause after each successful request
	maxAttempts int           // HTTP attempts per city
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// NewClient creates a Numbeo client. delay is the pause after each
// successful per-city request; maxAttempts bounds retries per city.
func NewClient(baseURL string, timeout, delay time.Duration, maxAttempts int, logger *slog.Logger, metrics *observability.Metrics) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: timeout},
		delay:       delay,
		maxAttempts: maxAttempts,
		logger:      logger,
		metrics:     metrics,
	}
}

// FetchCities scrapes each city in order, pacing requests against the one
// host. A failed city produces a row with nil metrics and an error
// annotation; the batch continues. FetchCities returns a typed error only
// when every city failed: RateLimitError when throttling was seen, else
// FetchError.
func (c *Client) FetchCities(ctx context.Context, cities []string) (domain.CostTable, error) {
	start := time.Now()
	defer func() {
		c.metrics.FetchDuration.WithLabelValues("numbeo").Observe(time.Since(start).Seconds())
	}()

	table := domain.CostTable{Rows: make([]domain.CostRow, 0, len(cities))}
	failed := 0
	rateLimited := false

	for _, city := range cities {
		row, err := c.fetchCity(ctx, city)
		if err != nil {
			failed++
			if errors.Is(err, errRateLimited) {
				rateLimited = true
				c.metrics.CityScrapes.WithLabelValues("rate_limited").Inc()
			} else {
				c.metrics.CityScrapes.WithLabelValues("error").Inc()
			}
			c.logger.Warn("city scrape failed", "city", city, "error", err)
			table.Problems = append(table.Problems, fmt.Sprintf("%s: %v", city, err))
		} else {
			c.metrics.CityScrapes.WithLabelValues("success").Inc()
			c.logger.Debug("city scraped", "city", city)
		}
		table.Rows = append(table.Rows, row)

		if err := ctx.Err(); err != nil {
			return table, &domain.FetchError{Source: "numbeo", Err: err}
		}
	}

	switch {
	case failed == 0:
		table.Status = domain.StatusOK
		c.metrics.FetchRequests.WithLabelValues("numbeo", "success").Inc()
	case failed < len(cities):
		table.Status = domain.StatusPartial
		c.metrics.FetchRequests.WithLabelValues("numbeo", "partial").Inc()
	default:
		table.Status = domain.StatusFailed
		if rateLimited {
			c.metrics.FetchRequests.WithLabelValues("numbeo", "rate_limited").Inc()
			return table, &domain.RateLimitError{Source: "numbeo"}
		}
		c.metrics.FetchRequests.WithLabelValues("numbeo", "error").Inc()
		return table, &domain.FetchError{Source: "numbeo", Err: errors.New("all cities failed")}
	}
	return table, nil
}

// cityURL builds the page URL; Numbeo uses hyphenated city names.
func (c *Client) cityURL(city string) string {
	return c.baseURL + "/cost-of-living/in/" + strings.ReplaceAll(city, " ", "-") + "?displayCurrency=USD"
}

// fetchCity retrieves one city page with retries. The returned row always
// carries the city identity; on failure its metrics are nil and Source
// holds the failure annotation.
func (c *Client) fetchCity(ctx context.Context, city string) (domain.CostRow, error) {
	url := c.cityURL(city)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.Multiplier = 2
	bo.RandomizationFactor = 0

	var row domain.CostRow
	attempt := func() error {
		var err error
		row, err = c.scrapeOnce(ctx, city, url)
		return err
	}

	err := backoff.Retry(attempt, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.maxAttempts-1)), ctx))
	if err != nil {
		return domain.CostRow{
			City:   city,
			Source: fmt.Sprintf("ERROR: %v @ %s", err, url),
		}, err
	}

	// Polite fixed delay after a successful request.
	sleepCtx(ctx, c.delay)
	return row, nil
}

func (c *Client) scrapeOnce(ctx context.Context, city, url string) (domain.CostRow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.CostRow{}, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.CostRow{}, fmt.Errorf("fetch city page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return domain.CostRow{}, errRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return domain.CostRow{}, fmt.Errorf("city page: HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return domain.CostRow{}, fmt.Errorf("parse html: %w", err)
	}

	return domain.CostRow{
		City:         city,
		RentUSD:      findRowValue(doc, "apartment", "1 bedroom", "city"),
		UtilitiesUSD: findRowValue(doc, "utilities", "85"),
		InternetUSD:  findRowValue(doc, "internet", "60"),
		TransportUSD: findRowValue(doc, "monthly", "pass"),
		FoodUSD:      foodBasket(doc),
		Source:       url,
	}, nil
}

// findRowValue scans the page's table rows for one whose left cell contains
// all keywords (case-insensitive) and parses the price from the second
// cell. Numbeo pages hold several tables; the first matching row wins.
func findRowValue(doc *goquery.Document, needles ...string) *float64 {
	var value *float64
	doc.Find("table tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		tds := tr.Find("td")
		if tds.Length() < 2 {
			return true
		}
		label := strings.ToLower(strings.TrimSpace(tds.Eq(0).Text()))
		for _, kw := range needles {
			if !strings.Contains(label, strings.ToLower(kw)) {
				return true
			}
		}
		if v := parsePrice(tds.Eq(1).Text()); v != nil {
			value = v
			return false
		}
		return true
	})
	return value
}

// basketItem pairs a grocery row lookup with its assumed monthly quantity.
type basketItem struct {
	needles  []string
	quantity float64
}

var basketItems = []basketItem{
	{[]string{"milk", "1 liter"}, 8},
	{[]string{"bread", "500"}, 8},
	{[]string{"rice", "1kg"}, 3},
	{[]string{"eggs", "12"}, 2},
	{[]string{"chicken", "1kg"}, 3},
	{[]string{"apples", "1kg"}, 4},
}

// foodBasket estimates a monthly grocery spend from the items that parsed.
// With at least 3 of the 6 items available, the quantity-weighted subtotal
// is scaled to a full 6-item basket and rounded to cents; with fewer the
// estimate is too sparse to trust and stays nil.
func foodBasket(doc *goquery.Document) *float64 {
	used := 0
	subtotal := 0.0
	for _, item := range basketItems {
		if price := findRowValue(doc, item.needles...); price != nil {
			used++
			subtotal += *price * item.quantity
		}
	}
	if used < 3 {
		return nil
	}
	estimate := math.Round(subtotal*(6/float64(used))*100) / 100
	return &estimate
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
