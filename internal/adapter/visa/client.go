// Package visa scrapes the country lists grouped by visa category from a
// visaindex.com passport page.
package visa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/arturoarias12/Digital-Nomad-Recommendation-System/internal/domain"
	"github.com/arturoarias12/Digital-Nomad-Recommendation-System/internal/observability"
)

// DefaultPageURL is the United States passport page.
const DefaultPageURL = "https://visaindex.com/visa-requirement/united-states-of-america-passport-visa-free-countries-list/"

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36"

// errBlocked marks an anti-scraping 403 so Fetch can distinguish it from
// other HTTP failures and try the browser-profile fallback.
var errBlocked = errors.New("blocked by upstream: HTTP 403")

// Client fetches and parses one passport page.
type Client struct {
	pageURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a visa page client.
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

// Fetch retrieves the destination-country -> visa-category mapping.
//
// The site sits behind anti-scraping protection; a 403 triggers one retry
// through a browser-profile client (cookie jar plus a fuller header set).
// Total failure degrades to an empty table so the rest of the run can
// proceed: a destination missing from visa data reads as "unknown"
// downstream, never as "visa-required".
func (c *Client) Fetch(ctx context.Context) (domain.VisaTable, error) {
	start := time.Now()
	defer func() {
		c.metrics.FetchDuration.WithLabelValues("visa").Observe(time.Since(start).Seconds())
	}()

	body, err := c.get(ctx, c.httpClient, false)
	if errors.Is(err, errBlocked) {
		c.logger.Info("visa page returned 403, retrying with browser profile", "url", c.pageURL)
		var fallback *http.Client
		fallback, err = browserProfileClient(c.httpClient.Timeout)
		if err == nil {
			body, err = c.get(ctx, fallback, true)
		}
	}
	if err != nil {
		c.logger.Warn("visa page fetch failed", "url", c.pageURL, "error", err)
		c.metrics.FetchRequests.WithLabelValues("visa", "error").Inc()
		return domain.EmptyVisaTable(err.Error()), nil
	}
	defer body.Close()

	table, err := parsePage(body)
	if err != nil {
		c.logger.Warn("visa page parse failed", "url", c.pageURL, "error", err)
		c.metrics.FetchRequests.WithLabelValues("visa", "error").Inc()
		return domain.EmptyVisaTable(err.Error()), nil
	}

	c.metrics.FetchRequests.WithLabelValues("visa", "success").Inc()
	c.logger.Info("visa data fetched", "countries", len(table.Categories))
	return table, nil
}

func (c *Client) get(ctx context.Context, client *http.Client, fullProfile bool) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Referer", "https://google.com")
	if fullProfile {
		req.Header.Set("Sec-Fetch-Dest", "document")
		req.Header.Set("Sec-Fetch-Mode", "navigate")
		req.Header.Set("Sec-Fetch-Site", "cross-site")
		req.Header.Set("Upgrade-Insecure-Requests", "1")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch visa page: %w", err)
	}
	if resp.StatusCode == http.StatusForbidden {
		resp.Body.Close()
		return nil, errBlocked
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("visa page: HTTP %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// browserProfileClient mimics browser characteristics the plain client
// lacks, chiefly cookie persistence across the redirect chain.
func browserProfileClient(timeout time.Duration) (*http.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	return &http.Client{Timeout: timeout, Jar: jar}, nil
}

// parsePage extracts section headings and their country lists. Layout:
// <h2 class="pb-4"> (sometimes "pt-5 pb-4") section titles, each followed by
// a sibling <div class="countriesList"> whose <span class="country-name">
// children name the countries. Some layouts wrap the heading, so the
// parent's siblings are checked as a fallback.
func parsePage(body io.Reader) (domain.VisaTable, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return domain.VisaTable{}, fmt.Errorf("parse html: %w", err)
	}

	headings := doc.Find("h2.pb-4")
	if headings.Length() == 0 {
		return domain.VisaTable{}, errors.New("no visa section headings found; site structure may have changed")
	}

	table := domain.VisaTable{
		Categories: map[string]domain.VisaCategory{},
		Status:     domain.StatusOK,
	}

	headings.Each(func(_ int, h *goquery.Selection) {
		title := strings.TrimSpace(h.Text())
		category := domain.ClassifyVisaSection(title)
		if category == domain.VisaCategoryUnknown {
			table.Problems = append(table.Problems, "unrecognized section: "+title)
			return
		}

		container := h.NextAllFiltered("div.countriesList").First()
		if container.Length() == 0 {
			container = h.Parent().NextAllFiltered("div.countriesList").First()
		}
		container.Find("span.country-name").Each(func(_ int, s *goquery.Selection) {
			name := strings.TrimSpace(s.Text())
			if name == "" {
				return
			}
			// First section wins on duplicates; pages list a country once.
			if _, exists := table.Categories[name]; !exists {
				table.Categories[name] = category
			}
		})
	})

	if len(table.Categories) == 0 {
		return domain.VisaTable{}, errors.New("no countries parsed from visa page")
	}
	return table, nil
}
