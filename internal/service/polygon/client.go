// Package polygon implements the aggregates/news provider adapter. The daily
// aggregates range is the one mandatory call; ticker details, previous close,
// related companies, market status, financials, and news are optional
// enrichments.
package polygon

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

const rangeDays = 90 // calendar window for the daily aggregates request

// Client talks to the Polygon REST API.
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

// WithClock overrides the range-window clock (tests).
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a Polygon adapter.
func New(l *logger.Logger, m provider.Metrics, opts ...Option) *Client {
	c := &Client{
		baseURL: "https://api.polygon.io",
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

func (c *Client) Name() string { return provider.NamePolygon }

// --- raw wire shapes ---

type aggsResponse struct {
	Status  string   `json:"status"`
	Results []aggBar `json:"results"`
}

type aggBar struct {
	Timestamp int64   `json:"t"` // unix milliseconds
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Volume    float64 `json:"v"`
}

type tickerDetailsResponse struct {
	Results struct {
		Ticker                string  `json:"ticker"`
		Name                  string  `json:"name"`
		PrimaryExchange       string  `json:"primary_exchange"`
		SICDescription        string  `json:"sic_description"`
		Description           string  `json:"description"`
		MarketCap             float64 `json:"market_cap"`
		Locale                string  `json:"locale"`
		CurrencyName          string  `json:"currency_name"`
		ListDate              string  `json:"list_date"`
		ShareClassSharesOutst float64 `json:"share_class_shares_outstanding"`
		Branding              struct {
			LogoURL string `json:"logo_url"`
		} `json:"branding"`
	} `json:"results"`
}

type marketStatusResponse struct {
	Market     string `json:"market"`
	ServerTime string `json:"serverTime"`
	Exchanges  struct {
		NYSE   string `json:"nyse"`
		Nasdaq string `json:"nasdaq"`
	} `json:"exchanges"`
}

type relatedResponse struct {
	Results []struct {
		Ticker string `json:"ticker"`
	} `json:"results"`
}

type financialsResponse struct {
	Results []struct {
		FiscalPeriod string `json:"fiscal_period"`
		FiscalYear   string `json:"fiscal_year"`
		EndDate      string `json:"end_date"`
		Financials   struct {
			IncomeStatement struct {
				Revenues     wireValue `json:"revenues"`
				NetIncomeLos wireValue `json:"net_income_loss"`
			} `json:"income_statement"`
			BalanceSheet struct {
				Assets      wireValue `json:"assets"`
				Liabilities wireValue `json:"liabilities"`
			} `json:"balance_sheet"`
			CashFlowStatement struct {
				NetCashFlowFromOperating wireValue `json:"net_cash_flow_from_operating_activities"`
			} `json:"cash_flow_statement"`
		} `json:"financials"`
	} `json:"results"`
}

type wireValue struct {
	Value *float64 `json:"value"`
}

type newsResponse struct {
	Results []struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		ArticleURL   string `json:"article_url"`
		PublishedUTC string `json:"published_utc"` // RFC 3339
		Publisher    struct {
			Name string `json:"name"`
		} `json:"publisher"`
	} `json:"results"`
}

// Fetch runs the mandatory aggregates-range call, then the enrichments
// concurrently. Enrichment failures are logged and dropped.
func (c *Client) Fetch(ctx context.Context, symbol, apiKey string) (*provider.AggregatesBundle, error) {
	from, to := util.DayWindow(c.now(), rangeDays)
	path := fmt.Sprintf("/v2/aggs/ticker/%s/range/1/day/%s/%s", symbol, from, to)
	params := map[string]string{"adjusted": "true", "sort": "asc", "limit": "120"}

	var aggs aggsResponse
	if err := c.get(ctx, path, apiKey, params, &aggs); err != nil {
		return nil, c.mapMandatoryErr("aggregates", err)
	}
	if aggs.Status == "ERROR" {
		return nil, provider.NewError(c.Name(), provider.KindNoHistoricalData, "aggregates query rejected for "+symbol)
	}
	if len(aggs.Results) == 0 {
		return nil, provider.NewError(c.Name(), provider.KindNoHistoricalData, "no aggregate bars for "+symbol)
	}

	bundle := &provider.AggregatesBundle{
		Historical: convertAggs(aggs.Results),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var det tickerDetailsResponse
		if err := c.get(gctx, "/v3/reference/tickers/"+symbol, apiKey, nil, &det); err != nil {
			c.warnOptional("ticker-details", err)
			return nil
		}
		if det.Results.Ticker == "" {
			return nil
		}
		bundle.TickerDetails = convertDetails(symbol, det)
		return nil
	})

	g.Go(func() error {
		var prev aggsResponse
		if err := c.get(gctx, "/v2/aggs/ticker/"+symbol+"/prev", apiKey, map[string]string{"adjusted": "true"}, &prev); err != nil {
			c.warnOptional("prev-close", err)
			return nil
		}
		if len(prev.Results) == 0 {
			return nil
		}
		bundle.PreviousClose = convertPrevClose(symbol, prev.Results[0])
		return nil
	})

	g.Go(func() error {
		var rel relatedResponse
		if err := c.get(gctx, "/v1/related-companies/"+symbol, apiKey, nil, &rel); err != nil {
			c.warnOptional("related-companies", err)
			return nil
		}
		out := make([]string, 0, len(rel.Results))
		for _, r := range rel.Results {
			out = append(out, r.Ticker)
		}
		bundle.RelatedCompanies = out
		return nil
	})

	g.Go(func() error {
		var ms marketStatusResponse
		if err := c.get(gctx, "/v1/marketstatus/now", apiKey, nil, &ms); err != nil {
			c.warnOptional("market-status", err)
			return nil
		}
		bundle.MarketStatus = &models.MarketStatus{
			Market:     ms.Market,
			ServerTime: ms.ServerTime,
			NYSE:       ms.Exchanges.NYSE,
			Nasdaq:     ms.Exchanges.Nasdaq,
		}
		return nil
	})

	g.Go(func() error {
		var fin financialsResponse
		if err := c.get(gctx, "/vX/reference/financials", apiKey, map[string]string{"ticker": symbol, "limit": "4"}, &fin); err != nil {
			c.warnOptional("financials", err)
			return nil
		}
		out := make([]models.StatementPeriod, 0, len(fin.Results))
		for _, r := range fin.Results {
			out = append(out, models.StatementPeriod{
				FiscalDateEnding:  r.EndDate,
				TotalRevenue:      r.Financials.IncomeStatement.Revenues.Value,
				NetIncome:         r.Financials.IncomeStatement.NetIncomeLos.Value,
				TotalAssets:       r.Financials.BalanceSheet.Assets.Value,
				TotalLiabilities:  r.Financials.BalanceSheet.Liabilities.Value,
				OperatingCashflow: r.Financials.CashFlowStatement.NetCashFlowFromOperating.Value,
			})
		}
		bundle.Financials = out
		return nil
	})

	g.Go(func() error {
		var news newsResponse
		if err := c.get(gctx, "/v2/reference/news", apiKey, map[string]string{"ticker": symbol, "limit": "10"}, &news); err != nil {
			c.warnOptional("news", err)
			return nil
		}
		bundle.News = convertNews(news)
		return nil
	})

	_ = g.Wait() // enrichment goroutines never return errors

	return bundle, nil
}

func (c *Client) get(ctx context.Context, path, apiKey string, extra map[string]string, dest interface{}) error {
	c.metrics.RecordProviderRequest(c.Name(), path)
	params := map[string]string{"apiKey": apiKey}
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
	c.logger.Warn("polygon enrichment failed", logger.String("call", call), logger.Error(err))
}

func convertAggs(results []aggBar) []models.Bar {
	out := make([]models.Bar, 0, len(results))
	for _, b := range results {
		out = append(out, models.Bar{
			Date:   util.UnixToDay(b.Timestamp),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: int64(b.Volume),
		})
	}
	return out
}

// convertPrevClose promotes the previous-session bar into a degraded quote.
// There is no earlier session to diff against, so previousClose mirrors close
// and the change comes out as zero.
func convertPrevClose(symbol string, b aggBar) *models.Quote {
	v := int64(b.Volume)
	return &models.Quote{
		Symbol:        symbol,
		Open:          b.Open,
		High:          b.High,
		Low:           b.Low,
		Close:         b.Close,
		PreviousClose: b.Close,
		Volume:        &v,
	}
}

func convertDetails(symbol string, det tickerDetailsResponse) *models.Profile {
	r := det.Results
	prof := &models.Profile{
		Symbol:            symbol,
		Name:              orDefault(r.Name, symbol),
		Exchange:          orNA(r.PrimaryExchange),
		Sector:            orNA(r.SICDescription),
		Industry:          orNA(r.SICDescription),
		Description:       r.Description,
		MarketCap:         models.NotAvailable,
		Country:           orNA(r.Locale),
		Currency:          orDefault(r.CurrencyName, "USD"),
		IPODate:           orNA(r.ListDate),
		SharesOutstanding: models.NotAvailable,
		LogoURL:           r.Branding.LogoURL,
	}
	if r.MarketCap > 0 {
		prof.MarketCap = strconv.FormatFloat(r.MarketCap, 'f', 0, 64)
	}
	if r.ShareClassSharesOutst > 0 {
		prof.SharesOutstanding = strconv.FormatFloat(r.ShareClassSharesOutst, 'f', -1, 64)
	}
	return prof
}

func convertNews(news newsResponse) []models.NewsItem {
	out := make([]models.NewsItem, 0, len(news.Results))
	for _, r := range news.Results {
		if r.Title == "" {
			continue
		}
		item := models.NewsItem{
			Headline: r.Title,
			Source:   r.Publisher.Name,
			Summary:  r.Description,
			URL:      r.ArticleURL,
		}
		if t, err := time.Parse(time.RFC3339, r.PublishedUTC); err == nil {
			item.PublishedAt = t.UTC()
		}
		out = append(out, item)
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
