package usecase

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/ctrlaltdad/TakeStock/internal/domain/models"
	"github.com/ctrlaltdad/TakeStock/internal/domain/provider"
)

func quoteProfileBundle() *provider.QuoteProfileBundle {
	return &provider.QuoteProfileBundle{
		Quote: &models.Quote{
			Symbol:        "AAPL",
			Open:          149,
			High:          151,
			Low:           148,
			Close:         150,
			PreviousClose: 145,
		},
		Profile: &models.Profile{
			Symbol: "AAPL",
			Name:   "Apple Inc",
			Sector: "Technology",
		},
	}
}

func historicalBundle() *provider.HistoricalBundle {
	return &provider.HistoricalBundle{
		Historical: []models.Bar{
			{Date: "2026-08-28", Close: 150, Volume: 100},
			{Date: "2026-08-27", Close: 149, Volume: 90},
		},
	}
}

func aggregatesBundle() *provider.AggregatesBundle {
	return &provider.AggregatesBundle{
		Historical: []models.Bar{
			{Date: "2026-08-27", Close: 148, Volume: 80},
			{Date: "2026-08-28", Close: 150, Volume: 110},
		},
		PreviousClose: &models.Quote{
			Symbol:        "AAPL",
			Close:         150,
			PreviousClose: 150,
		},
		TickerDetails: &models.Profile{Symbol: "AAPL", Name: "Apple Inc."},
	}
}

func success[T any](b *T) provider.Outcome[T] {
	return provider.Outcome[T]{State: provider.StateSuccess, Bundle: b}
}

func failed[T any](kind provider.Kind) provider.Outcome[T] {
	return provider.Outcome[T]{
		State: provider.StateFailed,
		Err:   provider.NewError("x", kind, "boom"),
	}
}

func TestReconcileChangeFigures(t *testing.T) {
	res := Results{
		QuoteProfile: success(quoteProfileBundle()),
		Historical:   provider.NotAttempted[provider.HistoricalBundle](),
		Aggregates:   provider.NotAttempted[provider.AggregatesBundle](),
	}
	rec, err := Reconcile("AAPL", res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Quote.Change != 5 {
		t.Fatalf("change = %v, want 5", rec.Quote.Change)
	}
	if rec.Quote.ChangePercent != "3.45%" {
		t.Fatalf("changePercent = %q, want 3.45%%", rec.Quote.ChangePercent)
	}
	if rec.Quote.ChangePercentRaw == 0 {
		t.Fatalf("raw ratio must be kept")
	}
}

func TestReconcileAttribution(t *testing.T) {
	res := Results{
		QuoteProfile: success(quoteProfileBundle()),
		Historical:   success(historicalBundle()),
		Aggregates:   success(aggregatesBundle()),
	}
	rec, err := Reconcile("AAPL", res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Sources.Quote != provider.NameFinnhub {
		t.Fatalf("quote source = %q", rec.Sources.Quote)
	}
	if rec.Sources.Profile != provider.NameFinnhub {
		t.Fatalf("profile source = %q", rec.Sources.Profile)
	}
	if rec.Sources.Historical != provider.NameAlphaVantage {
		t.Fatalf("historical source = %q", rec.Sources.Historical)
	}
}

func TestReconcileQuoteFallbackOrder(t *testing.T) {
	// Quote/profile provider down: the historical provider's quote and
	// overview take over.
	hb := historicalBundle()
	hb.Quote = &models.Quote{Symbol: "AAPL", Close: 150, PreviousClose: 145}
	hb.Overview = &models.Profile{Symbol: "AAPL", Name: "Apple Inc"}

	res := Results{
		QuoteProfile: failed[provider.QuoteProfileBundle](provider.KindRateLimited),
		Historical:   success(hb),
		Aggregates:   success(aggregatesBundle()),
	}
	rec, err := Reconcile("AAPL", res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Sources.Quote != provider.NameAlphaVantage {
		t.Fatalf("quote source = %q, want Alpha Vantage", rec.Sources.Quote)
	}
	if rec.ProviderErrors[provider.NameFinnhub] == "" {
		t.Fatalf("expected a contained Finnhub error")
	}
}

func TestReconcileDegradedPolygonQuote(t *testing.T) {
	// Only Polygon left standing: previous-close promotion yields zero change.
	ab := aggregatesBundle()
	res := Results{
		QuoteProfile: failed[provider.QuoteProfileBundle](provider.KindInvalidCredential),
		Historical:   failed[provider.HistoricalBundle](provider.KindRateLimited),
		Aggregates:   success(ab),
	}
	rec, err := Reconcile("AAPL", res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Sources.Quote != provider.NamePolygon {
		t.Fatalf("quote source = %q, want Polygon", rec.Sources.Quote)
	}
	if rec.Quote.Change != 0 {
		t.Fatalf("degraded quote change = %v, want 0", rec.Quote.Change)
	}
	if rec.Quote.PreviousClose != rec.Quote.Close {
		t.Fatalf("degraded quote must mirror close into previousClose")
	}
}

func TestReconcileViabilityGate(t *testing.T) {
	// Historical succeeded, but nobody produced a quote or profile.
	hb := &provider.HistoricalBundle{Historical: historicalBundle().Historical}
	res := Results{
		QuoteProfile: failed[provider.QuoteProfileBundle](provider.KindNoQuoteData),
		Historical:   success(hb),
		Aggregates:   failed[provider.AggregatesBundle](provider.KindNoHistoricalData),
	}
	_, err := Reconcile("AAPL", res)
	if err == nil {
		t.Fatalf("expected InsufficientData")
	}
	if provider.KindOf(err) != provider.KindInsufficientData {
		t.Fatalf("kind = %q", provider.KindOf(err))
	}
}

func TestReconcileHistoricalFallbackSortedDeduped(t *testing.T) {
	ab := aggregatesBundle()
	ab.Historical = []models.Bar{
		{Date: "2026-08-28", Close: 150},
		{Date: "2026-08-26", Close: 147},
		{Date: "2026-08-28", Close: 999}, // duplicate session, must lose
		{Date: "2026-08-27", Close: 148},
	}
	res := Results{
		QuoteProfile: success(quoteProfileBundle()),
		Historical:   failed[provider.HistoricalBundle](provider.KindRateLimited),
		Aggregates:   success(ab),
	}
	rec, err := Reconcile("AAPL", res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Sources.Historical != provider.NamePolygon {
		t.Fatalf("historical source = %q, want Polygon", rec.Sources.Historical)
	}
	want := []string{"2026-08-26", "2026-08-27", "2026-08-28"}
	if len(rec.Historical) != len(want) {
		t.Fatalf("series length = %d, want %d", len(rec.Historical), len(want))
	}
	for i, d := range want {
		if rec.Historical[i].Date != d {
			t.Fatalf("series[%d] = %q, want %q", i, rec.Historical[i].Date, d)
		}
	}
	if rec.Historical[2].Close != 150 {
		t.Fatalf("dedupe must keep the first bar for a date")
	}
}

func TestReconcileWeek52Position(t *testing.T) {
	qp := quoteProfileBundle()
	qp.Quote.Close = 100
	qp.Quote.PreviousClose = 100
	low, high := 80.0, 120.0
	hb := historicalBundle()
	hb.Fundamentals = &models.Fundamentals{Week52Low: &low, Week52High: &high}

	res := Results{
		QuoteProfile: success(qp),
		Historical:   success(hb),
		Aggregates:   provider.NotAttempted[provider.AggregatesBundle](),
	}
	rec, err := Reconcile("AAPL", res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pos := rec.Fundamentals.Week52RangePosition
	if pos == nil || *pos != 50 {
		t.Fatalf("position = %v, want 50", pos)
	}
}

func TestReconcileWeek52PositionUnclamped(t *testing.T) {
	qp := quoteProfileBundle()
	qp.Quote.Close = 130 // stale bounds, above the 52-week high
	low, high := 80.0, 120.0
	hb := historicalBundle()
	hb.Fundamentals = &models.Fundamentals{Week52Low: &low, Week52High: &high}

	res := Results{
		QuoteProfile: success(qp),
		Historical:   success(hb),
		Aggregates:   provider.NotAttempted[provider.AggregatesBundle](),
	}
	rec, err := Reconcile("AAPL", res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pos := rec.Fundamentals.Week52RangePosition
	if pos == nil || *pos <= 100 {
		t.Fatalf("position = %v, want >100 (unclamped)", pos)
	}
}

func TestReconcileIdempotent(t *testing.T) {
	res := Results{
		QuoteProfile: success(quoteProfileBundle()),
		Historical:   success(historicalBundle()),
		Aggregates:   success(aggregatesBundle()),
	}
	a, err := Reconcile("AAPL", res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Reconcile("AAPL", res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	aj, _ := json.Marshal(a)
	bj, _ := json.Marshal(b)
	if string(aj) != string(bj) {
		t.Fatalf("records differ across identical calls")
	}
}

func TestHistoricalRoundTrip(t *testing.T) {
	// An ascending series mapped into a date-keyed table and re-extracted
	// must reproduce the same ordered sequence.
	bars := []models.Bar{
		{Date: "2026-08-26", Close: 147},
		{Date: "2026-08-27", Close: 148},
		{Date: "2026-08-28", Close: 150},
	}
	table := make(map[string]models.Bar, len(bars))
	for _, b := range bars {
		table[b.Date] = b
	}
	extracted := make([]models.Bar, 0, len(table))
	for d := range table {
		extracted = append(extracted, table[d])
	}
	got := normalizeSeries(extracted)
	if !reflect.DeepEqual(got, bars) {
		t.Fatalf("round trip mismatch: %v", got)
	}
}
