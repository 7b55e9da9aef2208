package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/ctrlaltdad/TakeStock/internal/domain/provider"
	"github.com/ctrlaltdad/TakeStock/pkg/cache"
	"github.com/ctrlaltdad/TakeStock/pkg/logger"
)

type stubCreds map[string]string

func (s stubCreds) Get(id string) (string, bool) {
	k, ok := s[id]
	return k, ok
}

type stubQuoteProfile struct {
	calls  int
	bundle *provider.QuoteProfileBundle
	err    error
}

func (s *stubQuoteProfile) Name() string { return provider.NameFinnhub }
func (s *stubQuoteProfile) Fetch(context.Context, string, string) (*provider.QuoteProfileBundle, error) {
	s.calls++
	return s.bundle, s.err
}

type stubHistorical struct {
	calls  int
	bundle *provider.HistoricalBundle
	err    error
}

func (s *stubHistorical) Name() string { return provider.NameAlphaVantage }
func (s *stubHistorical) Fetch(context.Context, string, string) (*provider.HistoricalBundle, error) {
	s.calls++
	return s.bundle, s.err
}

type stubAggregates struct {
	calls  int
	bundle *provider.AggregatesBundle
	err    error
}

func (s *stubAggregates) Name() string { return provider.NamePolygon }
func (s *stubAggregates) Fetch(context.Context, string, string) (*provider.AggregatesBundle, error) {
	s.calls++
	return s.bundle, s.err
}

func TestAnalyzeNoCredentialsPreflight(t *testing.T) {
	qp := &stubQuoteProfile{bundle: quoteProfileBundle()}
	a := NewAnalyzer(qp, &stubHistorical{}, &stubAggregates{}, stubCreds{}, logger.Nop())

	_, err := a.Analyze(context.Background(), "AAPL")
	if provider.KindOf(err) != provider.KindNoCredentials {
		t.Fatalf("kind = %q, want no_credentials_configured", provider.KindOf(err))
	}
	if qp.calls != 0 {
		t.Fatalf("preflight must run before any network call, got %d calls", qp.calls)
	}
}

func TestAnalyzeJoinsAllProviders(t *testing.T) {
	qp := &stubQuoteProfile{bundle: quoteProfileBundle()}
	hist := &stubHistorical{bundle: historicalBundle()}
	aggs := &stubAggregates{err: provider.NewError(provider.NamePolygon, provider.KindRateLimited, "slow down")}
	creds := stubCreds{
		provider.IDFinnhub:      "k1",
		provider.IDAlphaVantage: "k2",
		provider.IDPolygon:      "k3",
	}
	a := NewAnalyzer(qp, hist, aggs, creds, logger.Nop())

	rec, err := a.Analyze(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Symbol != "AAPL" {
		t.Fatalf("symbol not normalized: %q", rec.Symbol)
	}
	if qp.calls != 1 || hist.calls != 1 || aggs.calls != 1 {
		t.Fatalf("expected one call per provider, got %d/%d/%d", qp.calls, hist.calls, aggs.calls)
	}
	if rec.ProviderErrors[provider.NamePolygon] == "" {
		t.Fatalf("failed provider must be reported in providerErrors")
	}
}

func TestAnalyzeSkipsUnconfiguredProviders(t *testing.T) {
	qp := &stubQuoteProfile{bundle: quoteProfileBundle()}
	hist := &stubHistorical{}
	aggs := &stubAggregates{}
	a := NewAnalyzer(qp, hist, aggs, stubCreds{provider.IDFinnhub: "k1"}, logger.Nop())

	rec, err := a.Analyze(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hist.calls != 0 || aggs.calls != 0 {
		t.Fatalf("unconfigured providers must not be called")
	}
	if len(rec.ProviderErrors) != 0 {
		t.Fatalf("not-attempted providers are not errors: %v", rec.ProviderErrors)
	}
}

func TestAnalyzeCacheHitSkipsDispatch(t *testing.T) {
	qp := &stubQuoteProfile{bundle: quoteProfileBundle()}
	creds := stubCreds{provider.IDFinnhub: "k1"}
	a := NewAnalyzer(qp, &stubHistorical{}, &stubAggregates{}, creds, logger.Nop(),
		WithCache(cache.NewMemoryCache(), time.Minute))

	first, err := a.Analyze(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := a.Analyze(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if qp.calls != 1 {
		t.Fatalf("cache hit must not re-dispatch, got %d calls", qp.calls)
	}
	if first.Quote.Close != second.Quote.Close {
		t.Fatalf("cached record differs")
	}
}
