package alphavantage

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ctrlaltdad/TakeStock/internal/domain/provider"
	"github.com/ctrlaltdad/TakeStock/pkg/logger"
)

// queryHandler routes by the function query parameter, the way the real API
// multiplexes everything over /query.
func queryHandler(t *testing.T, responses map[string]string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fn := r.URL.Query().Get("function")
		if body, ok := responses[fn]; ok {
			w.Write([]byte(body))
			return
		}
		w.Write([]byte(`{}`))
	})
}

func newTestClient(t *testing.T, responses map[string]string) *Client {
	t.Helper()
	srv := httptest.NewServer(queryHandler(t, responses))
	t.Cleanup(srv.Close)
	return New(logger.Nop(), nil, WithBaseURL(srv.URL))
}

const dailySeries = `{"Time Series (Daily)":{
	"2026-08-28":{"1. open":"149.0","2. high":"151.0","3. low":"148.0","4. close":"150.0","5. volume":"1000"},
	"2026-08-27":{"1. open":"146.0","2. high":"149.5","3. low":"145.5","4. close":"149.0","5. volume":"900"},
	"2026-08-26":{"1. open":"145.0","2. high":"147.0","3. low":"144.0","4. close":"146.0","5. volume":"800"}}}`

func TestFetchDailySeries(t *testing.T) {
	c := newTestClient(t, map[string]string{"TIME_SERIES_DAILY": dailySeries})
	bundle, err := c.Fetch(context.Background(), "AAPL", "key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bundle.Historical) != 3 {
		t.Fatalf("bars = %d, want 3", len(bundle.Historical))
	}
	// Newest first, as returned by the wire.
	if bundle.Historical[0].Date != "2026-08-28" {
		t.Fatalf("first bar = %q", bundle.Historical[0].Date)
	}
	if bundle.Historical[0].Close != 150 || bundle.Historical[0].Volume != 1000 {
		t.Fatalf("bar not parsed: %+v", bundle.Historical[0])
	}
}

func TestFetchRateLimitedNote(t *testing.T) {
	c := newTestClient(t, map[string]string{
		"TIME_SERIES_DAILY": `{"Note":"Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`,
	})
	_, err := c.Fetch(context.Background(), "AAPL", "key")
	if provider.KindOf(err) != provider.KindRateLimited {
		t.Fatalf("kind = %q, want rate_limited", provider.KindOf(err))
	}
}

func TestFetchUnknownSymbol(t *testing.T) {
	c := newTestClient(t, map[string]string{
		"TIME_SERIES_DAILY": `{"Error Message":"Invalid API call."}`,
	})
	_, err := c.Fetch(context.Background(), "NOPE", "key")
	if provider.KindOf(err) != provider.KindUnknownSymbol {
		t.Fatalf("kind = %q, want unknown_symbol", provider.KindOf(err))
	}
}

func TestFetchEmptySeries(t *testing.T) {
	c := newTestClient(t, map[string]string{"TIME_SERIES_DAILY": `{}`})
	_, err := c.Fetch(context.Background(), "AAPL", "key")
	if provider.KindOf(err) != provider.KindNoHistoricalData {
		t.Fatalf("kind = %q, want no_historical_data", provider.KindOf(err))
	}
}

func TestFetchDropsMalformedBarOnly(t *testing.T) {
	series := `{"Time Series (Daily)":{
		"2026-08-28":{"1. open":"149.0","2. high":"151.0","3. low":"148.0","4. close":"150.0","5. volume":"1000"},
		"2026-08-27":{"1. open":"not-a-number","2. high":"149.5","3. low":"145.5","4. close":"149.0","5. volume":"900"}}}`
	c := newTestClient(t, map[string]string{"TIME_SERIES_DAILY": series})
	bundle, err := c.Fetch(context.Background(), "AAPL", "key")
	if err != nil {
		t.Fatalf("one bad bar must not fail the series: %v", err)
	}
	if len(bundle.Historical) != 1 {
		t.Fatalf("bars = %d, want 1", len(bundle.Historical))
	}
	if bundle.Historical[0].Date != "2026-08-28" {
		t.Fatalf("kept the wrong bar: %q", bundle.Historical[0].Date)
	}
}

func TestFetchCapsSeries(t *testing.T) {
	series := `{"Time Series (Daily)":{`
	for i := 0; i < 120; i++ {
		if i > 0 {
			series += ","
		}
		series += fmt.Sprintf(`"2026-%02d-%02d":{"1. open":"1","2. high":"1","3. low":"1","4. close":"1","5. volume":"1"}`,
			1+i/28, 1+i%28)
	}
	series += `}}`
	c := newTestClient(t, map[string]string{"TIME_SERIES_DAILY": series})
	bundle, err := c.Fetch(context.Background(), "AAPL", "key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bundle.Historical) != seriesCap {
		t.Fatalf("bars = %d, want %d", len(bundle.Historical), seriesCap)
	}
}

func TestFetchOverviewAndTechnicals(t *testing.T) {
	c := newTestClient(t, map[string]string{
		"TIME_SERIES_DAILY": dailySeries,
		"OVERVIEW":          `{"Name":"Apple Inc","Sector":"Technology","PERatio":"28.5","52WeekHigh":"198.23","52WeekLow":"124.17","DividendYield":"None"}`,
		"SMA":               `{"Technical Analysis: SMA":{"2026-08-28":{"SMA":"145.2"},"2026-08-27":{"SMA":"144.8"}}}`,
		"RSI":               `{"Technical Analysis: RSI":{"2026-08-28":{"RSI":"61.3"}}}`,
		"GLOBAL_QUOTE":      `{"Global Quote":{"02. open":"149.0","05. price":"150.0","06. volume":"1000","08. previous close":"145.0"}}`,
	})
	bundle, err := c.Fetch(context.Background(), "AAPL", "key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bundle.Overview == nil || bundle.Overview.Sector != "Technology" {
		t.Fatalf("overview not converted: %+v", bundle.Overview)
	}
	f := bundle.Fundamentals
	if f == nil || f.PERatio == nil || *f.PERatio != 28.5 {
		t.Fatalf("fundamentals not parsed: %+v", f)
	}
	if f.DividendYield != nil {
		t.Fatalf(`"None" must parse as absent, got %v`, *f.DividendYield)
	}
	if bundle.Technicals == nil || bundle.Technicals.RSI14 == nil || *bundle.Technicals.RSI14 != 61.3 {
		t.Fatalf("technicals not parsed: %+v", bundle.Technicals)
	}
	// Latest date wins for indicator maps.
	if bundle.Technicals.SMA50 == nil || *bundle.Technicals.SMA50 != 145.2 {
		t.Fatalf("sma = %+v", bundle.Technicals.SMA50)
	}
	if bundle.Quote == nil || bundle.Quote.PreviousClose != 145 {
		t.Fatalf("global quote not converted: %+v", bundle.Quote)
	}
	if bundle.Quote.Volume == nil || *bundle.Quote.Volume != 1000 {
		t.Fatalf("volume not parsed: %+v", bundle.Quote.Volume)
	}
}
