package models

import "time"

// NotAvailable is the sentinel for text fields no provider supplied.
// Distinct from empty string so the presentation layer can render it directly.
const NotAvailable = "N/A"

// Quote is a point-in-time price snapshot. Volume is optional: the
// quote/profile provider does not include it in its quote payload.
type Quote struct {
	Symbol           string  `json:"symbol"`
	Open             float64 `json:"open"`
	High             float64 `json:"high"`
	Low              float64 `json:"low"`
	Close            float64 `json:"close"`
	PreviousClose    float64 `json:"previousClose"`
	Volume           *int64  `json:"volume,omitempty"`
	Change           float64 `json:"change"`
	ChangePercent    string  `json:"changePercent"`
	ChangePercentRaw float64 `json:"changePercentRaw"`
}

// Profile holds company reference data. Every field is independently
// optional; missing values carry the NotAvailable sentinel, never "".
// MarketCap is a decimal string in absolute currency units (not millions).
type Profile struct {
	Symbol            string `json:"symbol"`
	Name              string `json:"name"`
	Exchange          string `json:"exchange"`
	Sector            string `json:"sector"`
	Industry          string `json:"industry"`
	Description       string `json:"description"`
	MarketCap         string `json:"marketCap"`
	Country           string `json:"country"`
	Currency          string `json:"currency"`
	IPODate           string `json:"ipoDate"`
	SharesOutstanding string `json:"sharesOutstanding"`
	LogoURL           string `json:"logoUrl"`
}

// Bar is one daily OHLCV session. Date is formatted as 2006-01-02.
type Bar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// Fundamentals are named ratios. nil means "not reported"; zero is a
// legitimate value for several of these and must not collide with missing.
type Fundamentals struct {
	PERatio                 *float64 `json:"peRatio,omitempty"`
	PEGRatio                *float64 `json:"pegRatio,omitempty"`
	DividendYield           *float64 `json:"dividendYield,omitempty"`
	EPS                     *float64 `json:"eps,omitempty"`
	Beta                    *float64 `json:"beta,omitempty"`
	Week52High              *float64 `json:"week52High,omitempty"`
	Week52Low               *float64 `json:"week52Low,omitempty"`
	ProfitMargin            *float64 `json:"profitMargin,omitempty"`
	OperatingMargin         *float64 `json:"operatingMargin,omitempty"`
	ReturnOnEquity          *float64 `json:"returnOnEquity,omitempty"`
	ReturnOnAssets          *float64 `json:"returnOnAssets,omitempty"`
	RevenuePerShare         *float64 `json:"revenuePerShare,omitempty"`
	QuarterlyRevenueGrowth  *float64 `json:"quarterlyRevenueGrowth,omitempty"`
	QuarterlyEarningsGrowth *float64 `json:"quarterlyEarningsGrowth,omitempty"`
	AnalystTargetPrice      *float64 `json:"analystTargetPrice,omitempty"`

	// Week52RangePosition is (close-low)/(high-low)*100, computed at
	// unification from raw bounds. Not clamped: stale quotes outside the
	// 52-week range produce values below 0 or above 100.
	Week52RangePosition *float64 `json:"week52RangePosition,omitempty"`
}

// Technicals are single point-in-time indicator values, each independently
// optional.
type Technicals struct {
	SMA50      *float64 `json:"sma50,omitempty"`
	SMA200     *float64 `json:"sma200,omitempty"`
	RSI14      *float64 `json:"rsi14,omitempty"`
	MACD       *float64 `json:"macd,omitempty"`
	MACDSignal *float64 `json:"macdSignal,omitempty"`
}

// NewsItem is one article, normalized across providers.
type NewsItem struct {
	Headline    string    `json:"headline"`
	Source      string    `json:"source"`
	Summary     string    `json:"summary,omitempty"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Recommendation is one month's analyst recommendation counts.
type Recommendation struct {
	Period     string `json:"period"`
	StrongBuy  int    `json:"strongBuy"`
	Buy        int    `json:"buy"`
	Hold       int    `json:"hold"`
	Sell       int    `json:"sell"`
	StrongSell int    `json:"strongSell"`
}

// PriceTarget holds analyst price targets.
type PriceTarget struct {
	High   *float64 `json:"high,omitempty"`
	Median *float64 `json:"median,omitempty"`
	Low    *float64 `json:"low,omitempty"`
}

// EarningsQuarter is one reported quarter.
type EarningsQuarter struct {
	FiscalDateEnding string   `json:"fiscalDateEnding"`
	ReportedEPS      *float64 `json:"reportedEps,omitempty"`
	EstimatedEPS     *float64 `json:"estimatedEps,omitempty"`
}

// StatementPeriod is a slim view of one financial-statement period.
type StatementPeriod struct {
	FiscalDateEnding  string   `json:"fiscalDateEnding"`
	TotalRevenue      *float64 `json:"totalRevenue,omitempty"`
	NetIncome         *float64 `json:"netIncome,omitempty"`
	TotalAssets       *float64 `json:"totalAssets,omitempty"`
	TotalLiabilities  *float64 `json:"totalLiabilities,omitempty"`
	OperatingCashflow *float64 `json:"operatingCashflow,omitempty"`
}

// NewsSentiment is aggregate article sentiment for a symbol.
type NewsSentiment struct {
	CompanyNewsScore *float64 `json:"companyNewsScore,omitempty"`
	BullishPercent   *float64 `json:"bullishPercent,omitempty"`
	BearishPercent   *float64 `json:"bearishPercent,omitempty"`
}

// InsiderTransaction is one reported insider trade.
type InsiderTransaction struct {
	Name            string `json:"name"`
	Shares          int64  `json:"shares"`
	Change          int64  `json:"change"`
	TransactionDate string `json:"transactionDate"`
	TransactionCode string `json:"transactionCode"`
}

// MarketStatus reports whether the market is currently open.
type MarketStatus struct {
	Market     string `json:"market"`
	ServerTime string `json:"serverTime"`
	NYSE       string `json:"nyse,omitempty"`
	Nasdaq     string `json:"nasdaq,omitempty"`
}

// SourceAttribution records, per field group, which provider supplied the
// data. Empty string means the group is absent from the unified record.
type SourceAttribution struct {
	Quote        string `json:"quote,omitempty"`
	Profile      string `json:"profile,omitempty"`
	Historical   string `json:"historical,omitempty"`
	Fundamentals string `json:"fundamentals,omitempty"`
	Technicals   string `json:"technicals,omitempty"`
	News         string `json:"news,omitempty"`
}

// UnifiedStockRecord is the reconciliation output: one consistent view of a
// symbol assembled from up to three providers. Quote and Profile are always
// populated (the viability gate guarantees it); everything else is optional
// and degrades to absent.
type UnifiedStockRecord struct {
	Symbol              string               `json:"symbol"`
	Quote               Quote                `json:"quote"`
	Profile             Profile              `json:"profile"`
	Historical          []Bar                `json:"historical,omitempty"`
	Fundamentals        *Fundamentals        `json:"fundamentals,omitempty"`
	Technicals          *Technicals          `json:"technicals,omitempty"`
	News                []NewsItem           `json:"news,omitempty"`
	Sentiment           *NewsSentiment       `json:"sentiment,omitempty"`
	Recommendations     []Recommendation     `json:"recommendations,omitempty"`
	PriceTarget         *PriceTarget         `json:"priceTarget,omitempty"`
	InsiderTransactions []InsiderTransaction `json:"insiderTransactions,omitempty"`
	Peers               []string             `json:"peers,omitempty"`
	Metrics             map[string]float64   `json:"metrics,omitempty"`
	Earnings            []EarningsQuarter    `json:"earnings,omitempty"`
	IncomeStatements    []StatementPeriod    `json:"incomeStatements,omitempty"`
	BalanceSheets       []StatementPeriod    `json:"balanceSheets,omitempty"`
	CashFlows           []StatementPeriod    `json:"cashFlows,omitempty"`
	RelatedCompanies    []string             `json:"relatedCompanies,omitempty"`
	MarketStatus        *MarketStatus        `json:"marketStatus,omitempty"`
	Financials          []StatementPeriod    `json:"financials,omitempty"`
	Sources             SourceAttribution    `json:"sources"`

	// ProviderErrors maps a provider name to the contained mandatory-call
	// failure that demoted it, for actionable guidance in the UI.
	ProviderErrors map[string]string `json:"providerErrors,omitempty"`
}
