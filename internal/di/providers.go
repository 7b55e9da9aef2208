package di

import (
	"fmt"

	"github.com/ctrlaltdad/TakeStock/internal/domain/provider"
	"github.com/ctrlaltdad/TakeStock/internal/handler/api"
	"github.com/ctrlaltdad/TakeStock/internal/service/alphavantage"
	"github.com/ctrlaltdad/TakeStock/internal/service/finnhub"
	"github.com/ctrlaltdad/TakeStock/internal/service/keystore"
	"github.com/ctrlaltdad/TakeStock/internal/service/polygon"
	"github.com/ctrlaltdad/TakeStock/internal/usecase"
	"github.com/ctrlaltdad/TakeStock/pkg/cache"
	"github.com/ctrlaltdad/TakeStock/pkg/config"
	xhttp "github.com/ctrlaltdad/TakeStock/pkg/http"
	"github.com/ctrlaltdad/TakeStock/pkg/logger"
	"github.com/ctrlaltdad/TakeStock/pkg/metrics"
	"github.com/ctrlaltdad/TakeStock/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvideRESTClient creates the shared vendor REST client.
func ProvideRESTClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(xhttp.WithTimeout(cfg.Providers.Timeout))
}

// ProvideKeystore creates the credential store, seeded with config/env keys
// as fallback.
func ProvideKeystore(cfg *config.Config) (*keystore.Store, error) {
	fallback := map[string]string{
		provider.IDFinnhub:      cfg.Providers.Finnhub.APIKey,
		provider.IDAlphaVantage: cfg.Providers.AlphaVantage.APIKey,
		provider.IDPolygon:      cfg.Providers.Polygon.APIKey,
	}
	store, err := keystore.New(cfg.Keystore.Path, fallback)
	if err != nil {
		return nil, fmt.Errorf("keystore: %w", err)
	}
	return store, nil
}

// ProvideCache creates the unified-record cache: Redis when enabled, memory
// otherwise, nil when caching is off.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	if cfg.Cache.Redis.Enabled {
		c, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Prefix:   cfg.Cache.Redis.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return c, nil
	}
	return cache.NewMemoryCache(), nil
}

// ProvideQuoteProfileSource creates the Finnhub adapter.
func ProvideQuoteProfileSource(cfg *config.Config, l *logger.Logger, m *metrics.Recorder, hc *xhttp.Client) provider.QuoteProfileSource {
	return finnhub.New(l, m,
		finnhub.WithBaseURL(cfg.Providers.Finnhub.BaseURL),
		finnhub.WithHTTPClient(hc),
	)
}

// ProvideHistoricalSource creates the Alpha Vantage adapter.
func ProvideHistoricalSource(cfg *config.Config, l *logger.Logger, m *metrics.Recorder, hc *xhttp.Client) provider.HistoricalSource {
	return alphavantage.New(l, m,
		alphavantage.WithBaseURL(cfg.Providers.AlphaVantage.BaseURL),
		alphavantage.WithHTTPClient(hc),
	)
}

// ProvideAggregatesSource creates the Polygon adapter.
func ProvideAggregatesSource(cfg *config.Config, l *logger.Logger, m *metrics.Recorder, hc *xhttp.Client) provider.AggregatesSource {
	return polygon.New(l, m,
		polygon.WithBaseURL(cfg.Providers.Polygon.BaseURL),
		polygon.WithHTTPClient(hc),
	)
}

// ProvideAnalyzer creates the analysis pipeline.
func ProvideAnalyzer(
	qp provider.QuoteProfileSource,
	hist provider.HistoricalSource,
	aggs provider.AggregatesSource,
	keys *keystore.Store,
	c cache.Service,
	m *metrics.Recorder,
	l *logger.Logger,
	cfg *config.Config,
) *usecase.Analyzer {
	opts := []usecase.AnalyzerOption{usecase.WithRecorder(m)}
	if c != nil {
		opts = append(opts, usecase.WithCache(c, cfg.Cache.TTL))
	}
	return usecase.NewAnalyzer(qp, hist, aggs, keys, l, opts...)
}

// ProvideAPIHandler creates the REST handler.
func ProvideAPIHandler(analyzer *usecase.Analyzer, keys *keystore.Store, l *logger.Logger) *api.Handler {
	return api.New(analyzer, keys, l)
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, h *api.Handler, c cache.Service, l *logger.Logger) *server.App {
	return server.New(cfg, h, c, l)
}
