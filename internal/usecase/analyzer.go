// Package usecase contains the analysis pipeline: credential preflight,
// concurrent three-provider fan-out, join, and reconciliation into one
// unified record.
package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/ctrlaltdad/TakeStock/internal/domain/models"
	"github.com/ctrlaltdad/TakeStock/internal/domain/provider"
	"github.com/ctrlaltdad/TakeStock/pkg/cache"
	"github.com/ctrlaltdad/TakeStock/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// CredentialSource answers per-provider key lookups. Implemented by the
// keystore.
type CredentialSource interface {
	Get(providerID string) (string, bool)
}

// Recorder is the subset of the metrics recorder the analyzer reports to.
type Recorder interface {
	RecordProviderError(provider, kind string)
	RecordAnalyzeDuration(outcome string, seconds float64)
	RecordCacheEvent(event string)
}

type nopRecorder struct{}

func (nopRecorder) RecordProviderError(string, string)    {}
func (nopRecorder) RecordAnalyzeDuration(string, float64) {}
func (nopRecorder) RecordCacheEvent(string)               {}

// Analyzer is the single entry point for symbol analysis.
type Analyzer struct {
	quoteProfile provider.QuoteProfileSource
	historical   provider.HistoricalSource
	aggregates   provider.AggregatesSource
	creds        CredentialSource
	cache        cache.Service
	cacheTTL     time.Duration
	logger       *logger.Logger
	metrics      Recorder
	now          func() time.Time
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithCache enables unified-record caching with the given TTL.
func WithCache(c cache.Service, ttl time.Duration) AnalyzerOption {
	return func(a *Analyzer) {
		a.cache = c
		a.cacheTTL = ttl
	}
}

// WithRecorder wires the metrics recorder.
func WithRecorder(r Recorder) AnalyzerOption {
	return func(a *Analyzer) { a.metrics = r }
}

// NewAnalyzer builds the analysis pipeline over the three provider adapters.
func NewAnalyzer(
	qp provider.QuoteProfileSource,
	hist provider.HistoricalSource,
	aggs provider.AggregatesSource,
	creds CredentialSource,
	l *logger.Logger,
	opts ...AnalyzerOption,
) *Analyzer {
	a := &Analyzer{
		quoteProfile: qp,
		historical:   hist,
		aggregates:   aggs,
		creds:        creds,
		logger:       l,
		metrics:      nopRecorder{},
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze fetches, joins, and reconciles one symbol. The credential
// preflight runs before any network call: with no provider configured at
// all it fails fast with NoCredentialsConfigured.
func (a *Analyzer) Analyze(ctx context.Context, symbol string) (*models.UnifiedStockRecord, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	start := a.now()

	qpKey, qpOK := a.creds.Get(provider.IDFinnhub)
	avKey, avOK := a.creds.Get(provider.IDAlphaVantage)
	pgKey, pgOK := a.creds.Get(provider.IDPolygon)
	if !qpOK && !avOK && !pgOK {
		a.metrics.RecordAnalyzeDuration("no_credentials", a.now().Sub(start).Seconds())
		return nil, provider.NewError("", provider.KindNoCredentials,
			"no provider API keys configured; add at least one key in settings")
	}

	if rec, ok := a.cached(ctx, symbol); ok {
		a.metrics.RecordAnalyzeDuration("cache_hit", a.now().Sub(start).Seconds())
		return rec, nil
	}

	// Fan out. Each goroutine settles exactly one Results slot and never
	// returns an error, so the join waits for all three regardless of
	// individual failure.
	var res Results
	var g errgroup.Group

	g.Go(func() error {
		if !qpOK {
			res.QuoteProfile = provider.NotAttempted[provider.QuoteProfileBundle]()
			return nil
		}
		res.QuoteProfile = provider.Settled(a.quoteProfile.Fetch(ctx, symbol, qpKey))
		return nil
	})
	g.Go(func() error {
		if !avOK {
			res.Historical = provider.NotAttempted[provider.HistoricalBundle]()
			return nil
		}
		res.Historical = provider.Settled(a.historical.Fetch(ctx, symbol, avKey))
		return nil
	})
	g.Go(func() error {
		if !pgOK {
			res.Aggregates = provider.NotAttempted[provider.AggregatesBundle]()
			return nil
		}
		res.Aggregates = provider.Settled(a.aggregates.Fetch(ctx, symbol, pgKey))
		return nil
	})
	_ = g.Wait()

	a.logOutcomes(symbol, res)

	rec, err := Reconcile(symbol, res)
	if err != nil {
		a.metrics.RecordAnalyzeDuration("insufficient_data", a.now().Sub(start).Seconds())
		return nil, err
	}

	a.store(ctx, symbol, rec)
	a.metrics.RecordAnalyzeDuration("success", a.now().Sub(start).Seconds())
	return rec, nil
}

func (a *Analyzer) cached(ctx context.Context, symbol string) (*models.UnifiedStockRecord, bool) {
	if a.cache == nil {
		return nil, false
	}
	var rec models.UnifiedStockRecord
	if err := a.cache.Get(ctx, cacheKey(symbol), &rec); err != nil {
		if err != cache.ErrCacheMiss {
			a.logger.Warn("cache read failed", logger.String("symbol", symbol), logger.Error(err))
		}
		a.metrics.RecordCacheEvent("miss")
		return nil, false
	}
	a.metrics.RecordCacheEvent("hit")
	return &rec, true
}

func (a *Analyzer) store(ctx context.Context, symbol string, rec *models.UnifiedStockRecord) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Set(ctx, cacheKey(symbol), rec, a.cacheTTL); err != nil {
		a.logger.Warn("cache write failed", logger.String("symbol", symbol), logger.Error(err))
	}
}

func (a *Analyzer) logOutcomes(symbol string, res Results) {
	log := func(name string, state provider.State, perr *provider.Error) {
		switch state {
		case provider.StateFailed:
			a.metrics.RecordProviderError(name, string(perr.Kind))
			a.logger.Warn("provider demoted",
				logger.String("symbol", symbol),
				logger.String("provider", name),
				logger.String("kind", string(perr.Kind)),
				logger.Error(perr))
		case provider.StateNotAttempted:
			a.logger.Debug("provider skipped, no credential",
				logger.String("symbol", symbol),
				logger.String("provider", name))
		}
	}
	log(provider.NameFinnhub, res.QuoteProfile.State, res.QuoteProfile.Err)
	log(provider.NameAlphaVantage, res.Historical.State, res.Historical.Err)
	log(provider.NamePolygon, res.Aggregates.State, res.Aggregates.Err)
}

func cacheKey(symbol string) string {
	return "stocks:unified:" + symbol
}
