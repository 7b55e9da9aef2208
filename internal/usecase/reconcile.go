package usecase

import (
	"sort"
	"strings"

	"github.com/ctrlaltdad/TakeStock/internal/domain/models"
	"github.com/ctrlaltdad/TakeStock/internal/domain/provider"
	"github.com/ctrlaltdad/TakeStock/pkg/util"
)

// Results is the settled three-provider join handed to Reconcile.
type Results struct {
	QuoteProfile provider.Outcome[provider.QuoteProfileBundle]
	Historical   provider.Outcome[provider.HistoricalBundle]
	Aggregates   provider.Outcome[provider.AggregatesBundle]
}

// Reconcile merges the settled provider results into one unified record.
// Field-group precedence is fixed: the quote/profile provider outranks the
// historical provider, which outranks the aggregates provider. The single
// hard gate is quote AND profile; every other absence degrades to "not
// available".
//
// Reconcile is pure: identical inputs yield identical records.
func Reconcile(symbol string, res Results) (*models.UnifiedStockRecord, error) {
	rec := &models.UnifiedStockRecord{
		Symbol:         symbol,
		ProviderErrors: collectErrors(res),
	}

	qp := res.QuoteProfile.Bundle
	hb := res.Historical.Bundle
	ab := res.Aggregates.Bundle

	// Quote precedence: Finnhub, then Alpha Vantage's global quote, then
	// Polygon's previous-close bar (degraded: previousClose equals close).
	var quote *models.Quote
	switch {
	case qp != nil && qp.Quote != nil:
		quote = qp.Quote
		rec.Sources.Quote = provider.NameFinnhub
	case hb != nil && hb.Quote != nil:
		quote = hb.Quote
		rec.Sources.Quote = provider.NameAlphaVantage
	case ab != nil && ab.PreviousClose != nil:
		quote = ab.PreviousClose
		rec.Sources.Quote = provider.NamePolygon
	}

	// Profile precedence mirrors the quote's.
	var profile *models.Profile
	switch {
	case qp != nil && qp.Profile != nil:
		profile = qp.Profile
		rec.Sources.Profile = provider.NameFinnhub
	case hb != nil && hb.Overview != nil:
		profile = hb.Overview
		rec.Sources.Profile = provider.NameAlphaVantage
	case ab != nil && ab.TickerDetails != nil:
		profile = ab.TickerDetails
		rec.Sources.Profile = provider.NamePolygon
	}

	if quote == nil || profile == nil {
		return nil, insufficientData(symbol, quote, profile)
	}

	// Historical precedence: the historical provider's series, else the
	// aggregates provider's. Either way the canonical form is ascending by
	// date with duplicate sessions removed.
	switch {
	case hb != nil && len(hb.Historical) > 0:
		rec.Historical = normalizeSeries(hb.Historical)
		rec.Sources.Historical = provider.NameAlphaVantage
	case ab != nil && len(ab.Historical) > 0:
		rec.Historical = normalizeSeries(ab.Historical)
		rec.Sources.Historical = provider.NamePolygon
	}

	rec.Quote = finalizeQuote(*quote, rec.Historical)
	rec.Profile = *profile

	// Fundamentals and technicals have a single possible source.
	if hb != nil && hb.Fundamentals != nil {
		f := *hb.Fundamentals
		f.Week52RangePosition = week52Position(f, rec.Quote.Close)
		rec.Fundamentals = &f
		rec.Sources.Fundamentals = provider.NameAlphaVantage
	}
	if hb != nil && hb.Technicals != nil {
		rec.Technicals = hb.Technicals
		rec.Sources.Technicals = provider.NameAlphaVantage
	}

	// News: quote/profile provider first, aggregates only when the first
	// supplied none.
	switch {
	case qp != nil && len(qp.News) > 0:
		rec.News = qp.News
		rec.Sources.News = provider.NameFinnhub
	case ab != nil && len(ab.News) > 0:
		rec.News = ab.News
		rec.Sources.News = provider.NamePolygon
	}

	// Single-source extras, no cross-provider merge.
	if qp != nil {
		rec.Sentiment = qp.Sentiment
		rec.Recommendations = qp.Recommendations
		rec.PriceTarget = qp.PriceTarget
		rec.InsiderTransactions = qp.InsiderTransactions
		rec.Peers = qp.Peers
		rec.Metrics = qp.Metrics
	}
	if hb != nil {
		rec.Earnings = hb.Earnings
		rec.IncomeStatements = hb.Income
		rec.BalanceSheets = hb.Balance
		rec.CashFlows = hb.CashFlow
	}
	if ab != nil {
		rec.RelatedCompanies = ab.RelatedCompanies
		rec.MarketStatus = ab.MarketStatus
		rec.Financials = ab.Financials
	}

	return rec, nil
}

// finalizeQuote applies 2-decimal monetary normalization and derives the
// change figures. The raw ratio is kept alongside the display string so later
// computation never parses a formatted percent back out.
func finalizeQuote(q models.Quote, historical []models.Bar) models.Quote {
	q.Open = util.Round2(q.Open)
	q.High = util.Round2(q.High)
	q.Low = util.Round2(q.Low)
	q.Close = util.Round2(q.Close)
	q.PreviousClose = util.Round2(q.PreviousClose)

	q.Change = util.Round2(q.Close - q.PreviousClose)
	if q.PreviousClose != 0 {
		q.ChangePercentRaw = (q.Close - q.PreviousClose) / q.PreviousClose * 100
	} else {
		q.ChangePercentRaw = 0
	}
	q.ChangePercent = util.FormatPercent(q.ChangePercentRaw)

	// The quote/profile provider's quote carries no volume; borrow the most
	// recent session's when a series is available.
	if q.Volume == nil && len(historical) > 0 {
		v := historical[len(historical)-1].Volume
		q.Volume = &v
	}
	return q
}

// week52Position is (close-low)/(high-low)*100 from raw bounds. Not clamped:
// a stale quote outside the 52-week range lands below 0 or above 100, and the
// presentation layer decides what to do with that.
func week52Position(f models.Fundamentals, close float64) *float64 {
	if f.Week52High == nil || f.Week52Low == nil {
		return nil
	}
	span := *f.Week52High - *f.Week52Low
	if span == 0 {
		return nil
	}
	pos := (close - *f.Week52Low) / span * 100
	return &pos
}

// normalizeSeries sorts ascending by date and drops duplicate sessions,
// keeping the first bar seen for each date.
func normalizeSeries(bars []models.Bar) []models.Bar {
	out := make([]models.Bar, len(bars))
	copy(out, bars)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })

	dedup := out[:0]
	for _, b := range out {
		if len(dedup) > 0 && dedup[len(dedup)-1].Date == b.Date {
			continue
		}
		dedup = append(dedup, b)
	}
	return dedup
}

func collectErrors(res Results) map[string]string {
	out := make(map[string]string)
	record := func(name string, err *provider.Error) {
		if err != nil {
			out[name] = string(err.Kind) + ": " + err.Message
		}
	}
	record(provider.NameFinnhub, res.QuoteProfile.Err)
	record(provider.NameAlphaVantage, res.Historical.Err)
	record(provider.NamePolygon, res.Aggregates.Err)
	if len(out) == 0 {
		return nil
	}
	return out
}

// insufficientData builds the fatal gate error with guidance naming the
// missing group(s).
func insufficientData(symbol string, quote *models.Quote, profile *models.Profile) error {
	missing := make([]string, 0, 2)
	if quote == nil {
		missing = append(missing, "quote")
	}
	if profile == nil {
		missing = append(missing, "profile")
	}
	return provider.NewError("", provider.KindInsufficientData,
		"no provider supplied a "+strings.Join(missing, " or ")+" for "+symbol+
			"; configure a quote/profile provider key or try again later")
}
