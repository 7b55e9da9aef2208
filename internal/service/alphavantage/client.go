// Package alphavantage implements the historical/fundamentals provider
// adapter. The daily time series is the one mandatory call; overview, quote,
// earnings, statements, and technical indicators are optional enrichments.
//
// Alpha Vantage encodes numbers as strings and signals throttling with a
// "Note" field on an otherwise-200 response; both quirks are contained here.
package alphavantage

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/ctrlaltdad/TakeStock/internal/domain/models"
	"github.com/ctrlaltdad/TakeStock/internal/domain/provider"
	xhttp "github.com/ctrlaltdad/TakeStock/pkg/http"
	"github.com/ctrlaltdad/TakeStock/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const seriesCap = 90 // most recent sessions kept from the daily series

// Client talks to the Alpha Vantage REST API.
type Client struct {
	baseURL string
	http    *xhttp.Client
	logger  *logger.Logger
	metrics provider.Metrics
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

// New creates an Alpha Vantage adapter.
func New(l *logger.Logger, m provider.Metrics, opts ...Option) *Client {
	c := &Client{
		baseURL: "https://www.alphavantage.co",
		logger:  l,
		metrics: m,
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

func (c *Client) Name() string { return provider.NameAlphaVantage }

// --- raw wire shapes ---

// apiStatus carries the out-of-band error fields Alpha Vantage mixes into
// every response body.
type apiStatus struct {
	Note         string `json:"Note"`
	ErrorMessage string `json:"Error Message"`
}

type timeSeriesResponse struct {
	apiStatus
	Series map[string]map[string]string `json:"Time Series (Daily)"`
}

type overviewResponse struct {
	apiStatus
	Name                       string `json:"Name"`
	Exchange                   string `json:"Exchange"`
	Sector                     string `json:"Sector"`
	Industry                   string `json:"Industry"`
	Description                string `json:"Description"`
	MarketCapitalization       string `json:"MarketCapitalization"`
	Country                    string `json:"Country"`
	Currency                   string `json:"Currency"`
	IPODate                    string `json:"IPODate"`
	SharesOutstanding          string `json:"SharesOutstanding"`
	PERatio                    string `json:"PERatio"`
	PEGRatio                   string `json:"PEGRatio"`
	DividendYield              string `json:"DividendYield"`
	EPS                        string `json:"EPS"`
	Beta                       string `json:"Beta"`
	Week52High                 string `json:"52WeekHigh"`
	Week52Low                  string `json:"52WeekLow"`
	ProfitMargin               string `json:"ProfitMargin"`
	OperatingMarginTTM         string `json:"OperatingMarginTTM"`
	ReturnOnEquityTTM          string `json:"ReturnOnEquityTTM"`
	ReturnOnAssetsTTM          string `json:"ReturnOnAssetsTTM"`
	RevenuePerShareTTM         string `json:"RevenuePerShareTTM"`
	QuarterlyRevenueGrowthYOY  string `json:"QuarterlyRevenueGrowthYOY"`
	QuarterlyEarningsGrowthYOY string `json:"QuarterlyEarningsGrowthYOY"`
	AnalystTargetPrice         string `json:"AnalystTargetPrice"`
}

type globalQuoteResponse struct {
	apiStatus
	Quote struct {
		Open          string `json:"02. open"`
		High          string `json:"03. high"`
		Low           string `json:"04. low"`
		Price         string `json:"05. price"`
		Volume        string `json:"06. volume"`
		PreviousClose string `json:"08. previous close"`
	} `json:"Global Quote"`
}

type earningsResponse struct {
	apiStatus
	QuarterlyEarnings []struct {
		FiscalDateEnding string `json:"fiscalDateEnding"`
		ReportedEPS      string `json:"reportedEPS"`
		EstimatedEPS     string `json:"estimatedEPS"`
	} `json:"quarterlyEarnings"`
}

type incomeResponse struct {
	apiStatus
	QuarterlyReports []struct {
		FiscalDateEnding string `json:"fiscalDateEnding"`
		TotalRevenue     string `json:"totalRevenue"`
		NetIncome        string `json:"netIncome"`
	} `json:"quarterlyReports"`
}

type balanceResponse struct {
	apiStatus
	QuarterlyReports []struct {
		FiscalDateEnding string `json:"fiscalDateEnding"`
		TotalAssets      string `json:"totalAssets"`
		TotalLiabilities string `json:"totalLiabilities"`
	} `json:"quarterlyReports"`
}

type cashFlowResponse struct {
	apiStatus
	QuarterlyReports []struct {
		FiscalDateEnding  string `json:"fiscalDateEnding"`
		OperatingCashflow string `json:"operatingCashflow"`
		NetIncome         string `json:"netIncome"`
	} `json:"quarterlyReports"`
}

type smaResponse struct {
	apiStatus
	Analysis map[string]struct {
		SMA string `json:"SMA"`
	} `json:"Technical Analysis: SMA"`
}

type rsiResponse struct {
	apiStatus
	Analysis map[string]struct {
		RSI string `json:"RSI"`
	} `json:"Technical Analysis: RSI"`
}

type macdResponse struct {
	apiStatus
	Analysis map[string]struct {
		MACD       string `json:"MACD"`
		MACDSignal string `json:"MACD_Signal"`
	} `json:"Technical Analysis: MACD"`
}

func (s *apiStatus) statusErr() error {
	if s.Note != "" {
		return fmt.Errorf("throttled: %s", s.Note)
	}
	if s.ErrorMessage != "" {
		return fmt.Errorf("api error: %s", s.ErrorMessage)
	}
	return nil
}

// Fetch runs the mandatory daily-series call, then the enrichments
// concurrently. Enrichment failures are logged and dropped.
func (c *Client) Fetch(ctx context.Context, symbol, apiKey string) (*provider.HistoricalBundle, error) {
	var ts timeSeriesResponse
	if err := c.get(ctx, "TIME_SERIES_DAILY", symbol, apiKey, map[string]string{"outputsize": "compact"}, &ts); err != nil {
		return nil, fmt.Errorf("%s daily series: %w", c.Name(), err)
	}
	if ts.Note != "" {
		return nil, provider.NewError(c.Name(), provider.KindRateLimited, ts.Note)
	}
	if ts.ErrorMessage != "" {
		return nil, provider.NewError(c.Name(), provider.KindUnknownSymbol, ts.ErrorMessage)
	}
	if len(ts.Series) == 0 {
		return nil, provider.NewError(c.Name(), provider.KindNoHistoricalData, "empty daily series for "+symbol)
	}

	bundle := &provider.HistoricalBundle{
		Historical: c.convertSeries(ts.Series),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var ov overviewResponse
		if err := c.getChecked(gctx, "OVERVIEW", symbol, apiKey, nil, &ov); err != nil {
			c.warnOptional("OVERVIEW", err)
			return nil
		}
		// An unknown symbol yields an empty object rather than an error.
		if ov.Name == "" {
			return nil
		}
		bundle.Overview = convertOverviewProfile(symbol, ov)
		bundle.Fundamentals = convertOverviewFundamentals(ov)
		return nil
	})

	g.Go(func() error {
		var gq globalQuoteResponse
		if err := c.getChecked(gctx, "GLOBAL_QUOTE", symbol, apiKey, nil, &gq); err != nil {
			c.warnOptional("GLOBAL_QUOTE", err)
			return nil
		}
		bundle.Quote = convertGlobalQuote(symbol, gq)
		return nil
	})

	g.Go(func() error {
		var er earningsResponse
		if err := c.getChecked(gctx, "EARNINGS", symbol, apiKey, nil, &er); err != nil {
			c.warnOptional("EARNINGS", err)
			return nil
		}
		out := make([]models.EarningsQuarter, 0, len(er.QuarterlyEarnings))
		for _, q := range er.QuarterlyEarnings {
			out = append(out, models.EarningsQuarter{
				FiscalDateEnding: q.FiscalDateEnding,
				ReportedEPS:      parseOptFloat(q.ReportedEPS),
				EstimatedEPS:     parseOptFloat(q.EstimatedEPS),
			})
		}
		bundle.Earnings = out
		return nil
	})

	g.Go(func() error {
		var ir incomeResponse
		if err := c.getChecked(gctx, "INCOME_STATEMENT", symbol, apiKey, nil, &ir); err != nil {
			c.warnOptional("INCOME_STATEMENT", err)
			return nil
		}
		out := make([]models.StatementPeriod, 0, len(ir.QuarterlyReports))
		for _, r := range ir.QuarterlyReports {
			out = append(out, models.StatementPeriod{
				FiscalDateEnding: r.FiscalDateEnding,
				TotalRevenue:     parseOptFloat(r.TotalRevenue),
				NetIncome:        parseOptFloat(r.NetIncome),
			})
		}
		bundle.Income = out
		return nil
	})

	g.Go(func() error {
		var br balanceResponse
		if err := c.getChecked(gctx, "BALANCE_SHEET", symbol, apiKey, nil, &br); err != nil {
			c.warnOptional("BALANCE_SHEET", err)
			return nil
		}
		out := make([]models.StatementPeriod, 0, len(br.QuarterlyReports))
		for _, r := range br.QuarterlyReports {
			out = append(out, models.StatementPeriod{
				FiscalDateEnding: r.FiscalDateEnding,
				TotalAssets:      parseOptFloat(r.TotalAssets),
				TotalLiabilities: parseOptFloat(r.TotalLiabilities),
			})
		}
		bundle.Balance = out
		return nil
	})

	g.Go(func() error {
		var cr cashFlowResponse
		if err := c.getChecked(gctx, "CASH_FLOW", symbol, apiKey, nil, &cr); err != nil {
			c.warnOptional("CASH_FLOW", err)
			return nil
		}
		out := make([]models.StatementPeriod, 0, len(cr.QuarterlyReports))
		for _, r := range cr.QuarterlyReports {
			out = append(out, models.StatementPeriod{
				FiscalDateEnding:  r.FiscalDateEnding,
				OperatingCashflow: parseOptFloat(r.OperatingCashflow),
				NetIncome:         parseOptFloat(r.NetIncome),
			})
		}
		bundle.CashFlow = out
		return nil
	})

	// Technical indicators fill one shared struct, but each goroutine
	// writes a distinct field.
	tech := &models.Technicals{}
	g.Go(func() error {
		tech.SMA50 = c.fetchSMA(gctx, symbol, apiKey, "50")
		return nil
	})
	g.Go(func() error {
		tech.SMA200 = c.fetchSMA(gctx, symbol, apiKey, "200")
		return nil
	})
	g.Go(func() error {
		var rr rsiResponse
		params := map[string]string{"interval": "daily", "time_period": "14", "series_type": "close"}
		if err := c.getChecked(gctx, "RSI", symbol, apiKey, params, &rr); err != nil {
			c.warnOptional("RSI", err)
			return nil
		}
		if d, ok := latestKey(rr.Analysis); ok {
			tech.RSI14 = parseOptFloat(rr.Analysis[d].RSI)
		}
		return nil
	})
	g.Go(func() error {
		var mr macdResponse
		params := map[string]string{"interval": "daily", "series_type": "close"}
		if err := c.getChecked(gctx, "MACD", symbol, apiKey, params, &mr); err != nil {
			c.warnOptional("MACD", err)
			return nil
		}
		if d, ok := latestKey(mr.Analysis); ok {
			tech.MACD = parseOptFloat(mr.Analysis[d].MACD)
			tech.MACDSignal = parseOptFloat(mr.Analysis[d].MACDSignal)
		}
		return nil
	})

	_ = g.Wait() // enrichment goroutines never return errors

	if tech.SMA50 != nil || tech.SMA200 != nil || tech.RSI14 != nil || tech.MACD != nil {
		bundle.Technicals = tech
	}

	return bundle, nil
}

func (c *Client) fetchSMA(ctx context.Context, symbol, apiKey, period string) *float64 {
	var sr smaResponse
	params := map[string]string{"interval": "daily", "time_period": period, "series_type": "close"}
	if err := c.getChecked(ctx, "SMA", symbol, apiKey, params, &sr); err != nil {
		c.warnOptional("SMA"+period, err)
		return nil
	}
	if d, ok := latestKey(sr.Analysis); ok {
		return parseOptFloat(sr.Analysis[d].SMA)
	}
	return nil
}

func (c *Client) get(ctx context.Context, function, symbol, apiKey string, extra map[string]string, dest interface{}) error {
	c.metrics.RecordProviderRequest(c.Name(), function)
	params := map[string]string{"function": function, "symbol": symbol, "apikey": apiKey}
	for k, v := range extra {
		params[k] = v
	}
	return c.http.GetJSON(ctx, &xhttp.RequestOptions{
		URL:         c.baseURL + "/query",
		QueryParams: params,
	}, dest)
}

// getChecked issues the call and then applies the response's own out-of-band
// error fields, which every wire shape promotes from apiStatus.
func (c *Client) getChecked(ctx context.Context, function, symbol, apiKey string, extra map[string]string, dest interface{}) error {
	if err := c.get(ctx, function, symbol, apiKey, extra, dest); err != nil {
		return err
	}
	if s, ok := dest.(interface{ statusErr() error }); ok {
		return s.statusErr()
	}
	return nil
}

func (c *Client) warnOptional(call string, err error) {
	c.metrics.RecordProviderError(c.Name(), "optional_call")
	c.logger.Warn("alphavantage enrichment failed", logger.String("call", call), logger.Error(err))
}

// convertSeries parses the date-keyed table into bars, newest first, capped
// at seriesCap sessions. A bar whose values fail to parse is dropped alone;
// the rest of the series survives.
func (c *Client) convertSeries(series map[string]map[string]string) []models.Bar {
	dates := make([]string, 0, len(series))
	for d := range series {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	if len(dates) > seriesCap {
		dates = dates[:seriesCap]
	}

	bars := make([]models.Bar, 0, len(dates))
	for _, d := range dates {
		row := series[d]
		bar, err := parseBar(d, row)
		if err != nil {
			c.metrics.RecordProviderError(c.Name(), string(provider.KindMalformedResponse))
			c.logger.Warn("alphavantage bar dropped", logger.String("date", d), logger.Error(err))
			continue
		}
		bars = append(bars, bar)
	}
	return bars
}

func parseBar(date string, row map[string]string) (models.Bar, error) {
	open, err := strconv.ParseFloat(row["1. open"], 64)
	if err != nil {
		return models.Bar{}, provider.WrapError(provider.NameAlphaVantage, provider.KindMalformedResponse, "open", err)
	}
	high, err := strconv.ParseFloat(row["2. high"], 64)
	if err != nil {
		return models.Bar{}, provider.WrapError(provider.NameAlphaVantage, provider.KindMalformedResponse, "high", err)
	}
	low, err := strconv.ParseFloat(row["3. low"], 64)
	if err != nil {
		return models.Bar{}, provider.WrapError(provider.NameAlphaVantage, provider.KindMalformedResponse, "low", err)
	}
	closePx, err := strconv.ParseFloat(row["4. close"], 64)
	if err != nil {
		return models.Bar{}, provider.WrapError(provider.NameAlphaVantage, provider.KindMalformedResponse, "close", err)
	}
	volume, err := strconv.ParseInt(row["5. volume"], 10, 64)
	if err != nil {
		return models.Bar{}, provider.WrapError(provider.NameAlphaVantage, provider.KindMalformedResponse, "volume", err)
	}
	return models.Bar{Date: date, Open: open, High: high, Low: low, Close: closePx, Volume: volume}, nil
}

func convertOverviewProfile(symbol string, ov overviewResponse) *models.Profile {
	return &models.Profile{
		Symbol:            symbol,
		Name:              orDefault(ov.Name, symbol),
		Exchange:          orNA(ov.Exchange),
		Sector:            orNA(ov.Sector),
		Industry:          orNA(ov.Industry),
		Description:       ov.Description,
		MarketCap:         orNA(ov.MarketCapitalization),
		Country:           orNA(ov.Country),
		Currency:          orDefault(ov.Currency, "USD"),
		IPODate:           orNA(ov.IPODate),
		SharesOutstanding: orNA(ov.SharesOutstanding),
	}
}

func convertOverviewFundamentals(ov overviewResponse) *models.Fundamentals {
	return &models.Fundamentals{
		PERatio:                 parseOptFloat(ov.PERatio),
		PEGRatio:                parseOptFloat(ov.PEGRatio),
		DividendYield:           parseOptFloat(ov.DividendYield),
		EPS:                     parseOptFloat(ov.EPS),
		Beta:                    parseOptFloat(ov.Beta),
		Week52High:              parseOptFloat(ov.Week52High),
		Week52Low:               parseOptFloat(ov.Week52Low),
		ProfitMargin:            parseOptFloat(ov.ProfitMargin),
		OperatingMargin:         parseOptFloat(ov.OperatingMarginTTM),
		ReturnOnEquity:          parseOptFloat(ov.ReturnOnEquityTTM),
		ReturnOnAssets:          parseOptFloat(ov.ReturnOnAssetsTTM),
		RevenuePerShare:         parseOptFloat(ov.RevenuePerShareTTM),
		QuarterlyRevenueGrowth:  parseOptFloat(ov.QuarterlyRevenueGrowthYOY),
		QuarterlyEarningsGrowth: parseOptFloat(ov.QuarterlyEarningsGrowthYOY),
		AnalystTargetPrice:      parseOptFloat(ov.AnalystTargetPrice),
	}
}

func convertGlobalQuote(symbol string, gq globalQuoteResponse) *models.Quote {
	price := parseOptFloat(gq.Quote.Price)
	if price == nil || *price == 0 {
		return nil
	}
	q := &models.Quote{
		Symbol:        symbol,
		Close:         *price,
		Open:          floatOrZero(parseOptFloat(gq.Quote.Open)),
		High:          floatOrZero(parseOptFloat(gq.Quote.High)),
		Low:           floatOrZero(parseOptFloat(gq.Quote.Low)),
		PreviousClose: floatOrZero(parseOptFloat(gq.Quote.PreviousClose)),
	}
	if v, err := strconv.ParseInt(gq.Quote.Volume, 10, 64); err == nil {
		q.Volume = &v
	}
	return q
}

// parseOptFloat parses an Alpha Vantage decimal string. "None", "N/A", "-",
// and empty all mean absent, never zero.
func parseOptFloat(s string) *float64 {
	switch s {
	case "", "None", "N/A", "-":
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func floatOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func latestKey[V any](m map[string]V) (string, bool) {
	best := ""
	for k := range m {
		if k > best {
			best = k
		}
	}
	return best, best != ""
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
