package numbeo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arturoarias12/Digital-Nomad-Recommendation-System/internal/domain"
	"github.com/arturoarias12/Digital-Nomad-Recommendation-System/internal/observability"
)

const lisbonPage = `<html><body><table>
<tr><td>Apartment (1 bedroom) in City Centre</td><td>1,200.00 $</td></tr>
<tr><td>Basic Utilities (Electricity, Heating, Cooling, Water, Garbage) for 85m2 Apartment</td><td>150.00 $</td></tr>
<tr><td>Internet (60 Mbps or More, Unlimited Data, Cable/ADSL)</td><td>40.00 $</td></tr>
<tr><td>Monthly Pass (Regular Price)</td><td>48.00 $</td></tr>
<tr><td>Milk (Regular), (1 liter)</td><td>1.00 $</td></tr>
<tr><td>Loaf of Fresh White Bread (500g)</td><td>2.00 $</td></tr>
<tr><td>Rice (White), (1kg)</td><td>1.50 $</td></tr>
<tr><td>Eggs (Regular) (12)</td><td>3.00 $</td></tr>
<tr><td>Chicken Fillets (1kg)</td><td>8.00 $</td></tr>
<tr><td>Apples (1kg)</td><td>2.00 $</td></tr>
</table></body></html>`

// Only two grocery items parse here, below the food-basket threshold.
const sparsePage = `<html><body><table>
<tr><td>Apartment (1 bedroom) in City Centre</td><td>900.00 $</td></tr>
<tr><td>Milk (Regular), (1 liter)</td><td>1.00 $</td></tr>
<tr><td>Eggs (Regular) (12)</td><td>3.00 $</td></tr>
</table></body></html>`

func newTestClient(baseURL string, maxAttempts int) *Client {
	return NewClient(baseURL, 5*time.Second, 0, maxAttempts, observability.NewTestLogger(), observability.NewMetricsForTesting())
}

func TestFetchCitiesParsesMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "displayCurrency=USD")
		w.Write([]byte(lisbonPage))
	}))
	defer srv.Close()

	table, err := newTestClient(srv.URL, 1).FetchCities(context.Background(), []string{"Lisbon"})
	require.NoError(t, err)
	require.Equal(t, domain.StatusOK, table.Status)
	require.Len(t, table.Rows, 1)

	row := table.Rows[0]
	assert.Equal(t, "Lisbon", row.City)
	require.NotNil(t, row.RentUSD)
	assert.Equal(t, 1200.0, *row.RentUSD)
	require.NotNil(t, row.UtilitiesUSD)
	assert.Equal(t, 150.0, *row.UtilitiesUSD)
	require.NotNil(t, row.InternetUSD)
	assert.Equal(t, 40.0, *row.InternetUSD)
	require.NotNil(t, row.TransportUSD)
	assert.Equal(t, 48.0, *row.TransportUSD)

	// 8*1 + 8*2 + 3*1.5 + 2*3 + 3*8 + 4*2 with all six items present.
	require.NotNil(t, row.FoodUSD)
	assert.Equal(t, 66.5, *row.FoodUSD)

	assert.Contains(t, row.Source, "/cost-of-living/in/Lisbon")
}

func TestFetchCitiesSparseGroceriesYieldNoFoodEstimate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(sparsePage))
	}))
	defer srv.Close()

	table, err := newTestClient(srv.URL, 1).FetchCities(context.Background(), []string{"Prague"})
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)

	assert.Nil(t, table.Rows[0].FoodUSD)
	require.NotNil(t, table.Rows[0].RentUSD)
}

func TestFetchCitiesOneFailureDoesNotAbortBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "Berlin") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(lisbonPage))
	}))
	defer srv.Close()

	table, err := newTestClient(srv.URL, 1).FetchCities(context.Background(), []string{"Lisbon", "Berlin"})
	require.NoError(t, err, "a single failed city must not fail the batch")

	assert.Equal(t, domain.StatusPartial, table.Status)
	require.Len(t, table.Rows, 2)

	// The failed city keeps its row, annotated, with nil metrics.
	berlin := table.Rows[1]
	assert.Equal(t, "Berlin", berlin.City)
	assert.Nil(t, berlin.RentUSD)
	assert.Contains(t, berlin.Source, "ERROR:")
	require.Len(t, table.Problems, 1)
	assert.Contains(t, table.Problems[0], "Berlin")
}

func TestFetchCitiesAllRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	table, err := newTestClient(srv.URL, 1).FetchCities(context.Background(), []string{"Lisbon", "Berlin"})

	var rateLimited *domain.RateLimitError
	require.ErrorAs(t, err, &rateLimited)
	assert.Equal(t, "numbeo", rateLimited.Source)
	assert.Equal(t, domain.StatusFailed, table.Status)
	assert.Len(t, table.Rows, 2, "failed rows are still reported")
}

func TestFetchCitiesAllFailedWithoutThrottling(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 1).FetchCities(context.Background(), []string{"Lisbon"})

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "numbeo", fetchErr.Source)
}

func TestFetchCityRetriesTransientFailure(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		if requests == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(lisbonPage))
	}))
	defer srv.Close()

	table, err := newTestClient(srv.URL, 3).FetchCities(context.Background(), []string{"Lisbon"})
	require.NoError(t, err)

	assert.Equal(t, 2, requests)
	assert.Equal(t, domain.StatusOK, table.Status)
}

func TestParsePrice(t *testing.T) {
	require.NotNil(t, parsePrice("1,234.56 $"))
	assert.Equal(t, 1234.56, *parsePrice("1,234.56 $"))

	require.NotNil(t, parsePrice("$ 75.20"))
	assert.Equal(t, 75.2, *parsePrice("$ 75.20"))

	require.NotNil(t, parsePrice("48"))
	assert.Equal(t, 48.0, *parsePrice("48"))

	assert.Nil(t, parsePrice("—"))
	assert.Nil(t, parsePrice(""))
}
