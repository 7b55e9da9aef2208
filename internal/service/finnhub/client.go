// Package finnhub implements the quote/profile provider adapter. Two
// mandatory calls (company profile, real-time quote) gate the provider's
// contribution; seven enrichment calls are individually fault-tolerant.
package finnhub

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ctrlaltdad/TakeStock/internal/domain/models"
	"github.com/ctrlaltdad/TakeStock/internal/domain/provider"
	xhttp "github.com/ctrlaltdad/TakeStock/pkg/http"
	"github.com/ctrlaltdad/TakeStock/pkg/logger"
	"github.com/ctrlaltdad/TakeStock/pkg/util"

	"golang.org/x/sync/errgroup"
)

// Client talks to the Finnhub REST API.
type Client struct {
	baseURL string
	http    *xhttp.Client
	logger  *logger.Logger
	metrics provider.Metrics
	now     func() time.Time
}

// Option configures Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient injects the shared REST client.
func WithHTTPClient(hc *xhttp.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithClock overrides the news-window clock (tests).
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a Finnhub adapter.
func New(l *logger.Logger, m provider.Metrics, opts ...Option) *Client {
	c := &Client{
		baseURL: "https://finnhub.io/api/v1",
		logger:  l,
		metrics: m,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = xhttp.NewClient()
	}
	if c.metrics == nil {
		c.metrics = provider.NopMetrics{}
	}
	return c
}

func (c *Client) Name() string { return provider.NameFinnhub }

// --- raw wire shapes ---

type profileResponse struct {
	Ticker               string  `json:"ticker"`
	Name                 string  `json:"name"`
	Exchange             string  `json:"exchange"`
	FinnhubIndustry      string  `json:"finnhubIndustry"`
	Description          string  `json:"description"`
	MarketCapitalization float64 `json:"marketCapitalization"` // millions
	Country              string  `json:"country"`
	Currency             string  `json:"currency"`
	IPO                  string  `json:"ipo"`
	ShareOutstanding     float64 `json:"shareOutstanding"`
	Logo                 string  `json:"logo"`
}

type quoteResponse struct {
	Open          float64 `json:"o"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Current       float64 `json:"c"`
	PreviousClose float64 `json:"pc"`
}

type newsArticle struct {
	Headline string `json:"headline"`
	Datetime int64  `json:"datetime"` // unix seconds
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

type sentimentResponse struct {
	CompanyNewsScore *float64 `json:"companyNewsScore"`
	Sentiment        struct {
		BullishPercent *float64 `json:"bullishPercent"`
		BearishPercent *float64 `json:"bearishPercent"`
	} `json:"sentiment"`
}

type recommendationEntry struct {
	Period     string `json:"period"`
	StrongBuy  int    `json:"strongBuy"`
	Buy        int    `json:"buy"`
	Hold       int    `json:"hold"`
	Sell       int    `json:"sell"`
	StrongSell int    `json:"strongSell"`
}

type priceTargetResponse struct {
	TargetHigh   *float64 `json:"targetHigh"`
	TargetMedian *float64 `json:"targetMedian"`
	TargetLow    *float64 `json:"targetLow"`
}

type insiderResponse struct {
	Data []struct {
		Name            string `json:"name"`
		Share           int64  `json:"share"`
		Change          int64  `json:"change"`
		TransactionDate string `json:"transactionDate"`
		TransactionCode string `json:"transactionCode"`
	} `json:"data"`
}

type metricResponse struct {
	Metric map[string]interface{} `json:"metric"`
}

// Fetch runs the mandatory profile+quote calls, then the enrichments
// concurrently. Enrichment failures are logged and dropped.
func (c *Client) Fetch(ctx context.Context, symbol, apiKey string) (*provider.QuoteProfileBundle, error) {
	var prof profileResponse
	if err := c.get(ctx, "/stock/profile2", symbol, apiKey, nil, &prof); err != nil {
		return nil, c.mapMandatoryErr("profile", err)
	}
	if prof.Ticker == "" {
		return nil, provider.NewError(c.Name(), provider.KindUnknownSymbol, "profile has no ticker for "+symbol)
	}

	var quote quoteResponse
	if err := c.get(ctx, "/quote", symbol, apiKey, nil, &quote); err != nil {
		return nil, c.mapMandatoryErr("quote", err)
	}
	if quote.Current == 0 {
		return nil, provider.NewError(c.Name(), provider.KindNoQuoteData, "quote price is zero for "+symbol)
	}

	bundle := &provider.QuoteProfileBundle{
		Quote:   convertQuote(symbol, quote),
		Profile: convertProfile(symbol, prof),
	}

	// Enrichments: independent, concurrent, individually fault-tolerant.
	// Each writes its own bundle slot, so no two goroutines share a field.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		from, to := util.DayWindow(c.now(), 7)
		var articles []newsArticle
		if err := c.get(gctx, "/company-news", symbol, apiKey, map[string]string{"from": from, "to": to}, &articles); err != nil {
			c.warnOptional("company-news", err)
			return nil
		}
		bundle.News = convertNews(articles)
		return nil
	})

	g.Go(func() error {
		var sent sentimentResponse
		if err := c.get(gctx, "/news-sentiment", symbol, apiKey, nil, &sent); err != nil {
			c.warnOptional("news-sentiment", err)
			return nil
		}
		bundle.Sentiment = &models.NewsSentiment{
			CompanyNewsScore: sent.CompanyNewsScore,
			BullishPercent:   sent.Sentiment.BullishPercent,
			BearishPercent:   sent.Sentiment.BearishPercent,
		}
		return nil
	})

	g.Go(func() error {
		var recs []recommendationEntry
		if err := c.get(gctx, "/stock/recommendation", symbol, apiKey, nil, &recs); err != nil {
			c.warnOptional("recommendation", err)
			return nil
		}
		out := make([]models.Recommendation, 0, len(recs))
		for _, r := range recs {
			out = append(out, models.Recommendation{
				Period:     r.Period,
				StrongBuy:  r.StrongBuy,
				Buy:        r.Buy,
				Hold:       r.Hold,
				Sell:       r.Sell,
				StrongSell: r.StrongSell,
			})
		}
		bundle.Recommendations = out
		return nil
	})

	g.Go(func() error {
		var target priceTargetResponse
		if err := c.get(gctx, "/stock/price-target", symbol, apiKey, nil, &target); err != nil {
			c.warnOptional("price-target", err)
			return nil
		}
		if target.TargetHigh != nil || target.TargetMedian != nil || target.TargetLow != nil {
			bundle.PriceTarget = &models.PriceTarget{
				High:   target.TargetHigh,
				Median: target.TargetMedian,
				Low:    target.TargetLow,
			}
		}
		return nil
	})

	g.Go(func() error {
		var ins insiderResponse
		if err := c.get(gctx, "/stock/insider-transactions", symbol, apiKey, nil, &ins); err != nil {
			c.warnOptional("insider-transactions", err)
			return nil
		}
		out := make([]models.InsiderTransaction, 0, len(ins.Data))
		for _, tx := range ins.Data {
			out = append(out, models.InsiderTransaction{
				Name:            tx.Name,
				Shares:          tx.Share,
				Change:          tx.Change,
				TransactionDate: tx.TransactionDate,
				TransactionCode: tx.TransactionCode,
			})
		}
		bundle.InsiderTransactions = out
		return nil
	})

	g.Go(func() error {
		var peers []string
		if err := c.get(gctx, "/stock/peers", symbol, apiKey, nil, &peers); err != nil {
			c.warnOptional("peers", err)
			return nil
		}
		bundle.Peers = peers
		return nil
	})

	g.Go(func() error {
		var mr metricResponse
		if err := c.get(gctx, "/stock/metric", symbol, apiKey, map[string]string{"metric": "all"}, &mr); err != nil {
			c.warnOptional("metric", err)
			return nil
		}
		if len(mr.Metric) == 0 {
			return nil
		}
		out := make(map[string]float64, len(mr.Metric))
		for k, v := range mr.Metric {
			if f, ok := v.(float64); ok {
				out[k] = f
			}
		}
		bundle.Metrics = out
		return nil
	})

	_ = g.Wait() // enrichment goroutines never return errors

	return bundle, nil
}

func (c *Client) get(ctx context.Context, path, symbol, apiKey string, extra map[string]string, dest interface{}) error {
	c.metrics.RecordProviderRequest(c.Name(), path)
	params := map[string]string{"symbol": symbol, "token": apiKey}
	for k, v := range extra {
		params[k] = v
	}
	return c.http.GetJSON(ctx, &xhttp.RequestOptions{
		URL:         c.baseURL + path,
		QueryParams: params,
	}, dest)
}

func (c *Client) mapMandatoryErr(call string, err error) error {
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return provider.WrapError(c.Name(), provider.KindInvalidCredential, "API key rejected", err)
		case http.StatusTooManyRequests:
			return provider.WrapError(c.Name(), provider.KindRateLimited, "rate limit exceeded", err)
		}
	}
	return fmt.Errorf("%s %s: %w", c.Name(), call, err)
}

func (c *Client) warnOptional(call string, err error) {
	c.metrics.RecordProviderError(c.Name(), "optional_call")
	c.logger.Warn("finnhub enrichment failed", logger.String("call", call), logger.Error(err))
}

func convertQuote(symbol string, q quoteResponse) *models.Quote {
	return &models.Quote{
		Symbol:        symbol,
		Open:          q.Open,
		High:          q.High,
		Low:           q.Low,
		Close:         q.Current,
		PreviousClose: q.PreviousClose,
	}
}

func convertProfile(symbol string, p profileResponse) *models.Profile {
	prof := &models.Profile{
		Symbol:            symbol,
		Name:              orDefault(p.Name, symbol),
		Exchange:          orNA(p.Exchange),
		Sector:            orNA(p.FinnhubIndustry),
		Industry:          orNA(p.FinnhubIndustry),
		Description:       p.Description,
		MarketCap:         models.NotAvailable,
		Country:           orNA(p.Country),
		Currency:          orDefault(p.Currency, "USD"),
		IPODate:           orNA(p.IPO),
		SharesOutstanding: models.NotAvailable,
		LogoURL:           p.Logo,
	}
	// Finnhub reports market cap in millions; normalize to absolute units.
	if p.MarketCapitalization > 0 {
		prof.MarketCap = strconv.FormatFloat(p.MarketCapitalization*1e6, 'f', 0, 64)
	}
	if p.ShareOutstanding > 0 {
		prof.SharesOutstanding = strconv.FormatFloat(p.ShareOutstanding, 'f', -1, 64)
	}
	return prof
}

func convertNews(articles []newsArticle) []models.NewsItem {
	out := make([]models.NewsItem, 0, len(articles))
	for _, a := range articles {
		if a.Headline == "" {
			continue
		}
		out = append(out, models.NewsItem{
			Headline:    a.Headline,
			Source:      a.Source,
			Summary:     a.Summary,
			URL:         a.URL,
			PublishedAt: time.Unix(a.Datetime, 0).UTC(),
		})
	}
	return out
}

func orNA(s string) string {
	if s == "" {
		return models.NotAvailable
	}
	return s
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
