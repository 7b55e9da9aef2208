package provider

import (
	"context"
	"errors"

	"github.com/ctrlaltdad/TakeStock/internal/domain/models"
)

// Canonical provider identifiers, used for credential slots and attribution.
const (
	NameFinnhub      = "Finnhub"
	NameAlphaVantage = "Alpha Vantage"
	NamePolygon      = "Polygon"

	IDFinnhub      = "finnhub"
	IDAlphaVantage = "alphavantage"
	IDPolygon      = "polygon"
)

// QuoteProfileBundle is the normalized output of the quote/profile provider.
// Quote and Profile come from the two mandatory calls; the rest are optional
// enrichments that may independently be nil.
type QuoteProfileBundle struct {
	Quote               *models.Quote
	Profile             *models.Profile
	News                []models.NewsItem
	Sentiment           *models.NewsSentiment
	Recommendations     []models.Recommendation
	PriceTarget         *models.PriceTarget
	InsiderTransactions []models.InsiderTransaction
	Peers               []string
	Metrics             map[string]float64
}

// HistoricalBundle is the normalized output of the historical/fundamentals
// provider. Historical comes from the mandatory call; everything else is
// optional.
type HistoricalBundle struct {
	Historical   []models.Bar
	Overview     *models.Profile
	Fundamentals *models.Fundamentals
	Quote        *models.Quote
	Earnings     []models.EarningsQuarter
	Income       []models.StatementPeriod
	Balance      []models.StatementPeriod
	CashFlow     []models.StatementPeriod
	Technicals   *models.Technicals
}

// AggregatesBundle is the normalized output of the aggregates/news provider.
// Historical comes from the mandatory call; everything else is optional.
// PreviousClose carries no genuine previous close: when promoted to a quote
// the engine sets previousClose equal to close (accepted degradation).
type AggregatesBundle struct {
	Historical       []models.Bar
	TickerDetails    *models.Profile
	PreviousClose    *models.Quote
	RelatedCompanies []string
	MarketStatus     *models.MarketStatus
	Financials       []models.StatementPeriod
	News             []models.NewsItem
}

// QuoteProfileSource fetches quote, profile, and enrichments for a symbol.
// A nil bundle with a typed *Error means the provider's mandatory calls
// failed; optional-call failures never surface here.
type QuoteProfileSource interface {
	Name() string
	Fetch(ctx context.Context, symbol, apiKey string) (*QuoteProfileBundle, error)
}

// HistoricalSource fetches the daily series, fundamentals, and technicals.
type HistoricalSource interface {
	Name() string
	Fetch(ctx context.Context, symbol, apiKey string) (*HistoricalBundle, error)
}

// AggregatesSource fetches daily aggregate bars and reference enrichments.
type AggregatesSource interface {
	Name() string
	Fetch(ctx context.Context, symbol, apiKey string) (*AggregatesBundle, error)
}

// State discriminates a per-provider outcome for one analysis request.
type State string

const (
	StateSuccess      State = "success"
	StateFailed       State = "failed"
	StateNotAttempted State = "not_attempted"
)

// Outcome is one provider's settled result: exactly one of Bundle or Err is
// meaningful for the Success and Failed states; both are nil when the
// provider had no configured credential.
type Outcome[T any] struct {
	State  State
	Bundle *T
	Err    *Error
}

// Settled builds an Outcome from a fetch return pair.
func Settled[T any](bundle *T, err error) Outcome[T] {
	if err != nil {
		var pe *Error
		if !errors.As(err, &pe) {
			pe = &Error{Kind: KindMalformedResponse, Message: err.Error(), Err: err}
		}
		return Outcome[T]{State: StateFailed, Err: pe}
	}
	return Outcome[T]{State: StateSuccess, Bundle: bundle}
}

// NotAttempted marks a provider skipped for lack of a credential.
func NotAttempted[T any]() Outcome[T] {
	return Outcome[T]{State: StateNotAttempted}
}
