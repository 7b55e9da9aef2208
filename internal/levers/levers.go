// Package levers holds the curated sector driver catalog and the weighted
// what-if simulation over it. The catalog is static reference data, not
// provider output.
package levers

import (
	"fmt"

	"github.com/ctrlaltdad/TakeStock/pkg/util"
)

// Impact labels for a lever's qualitative influence.
const (
	ImpactHigh   = "High"
	ImpactMedium = "Medium"
)

// DefaultSector keys the fallback table used when a company's sector has no
// curated entry.
const DefaultSector = "default"

// Lever is one business driver with its simulation weight.
type Lever struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Impact      string  `json:"impact"`
	Weight      float64 `json:"weight"`
}

var catalog = map[string][]Lever{
	DefaultSector: {
		{
			Name:        "Revenue Growth",
			Description: "Quarter-over-quarter and year-over-year revenue growth indicating market share gains and business expansion.",
			Impact:      ImpactHigh,
			Weight:      0.25,
		},
		{
			Name:        "Profit Margins",
			Description: "Operating and net profit margins showing operational efficiency and pricing power.",
			Impact:      ImpactHigh,
			Weight:      0.2,
		},
		{
			Name:        "Market Conditions",
			Description: "Overall economic conditions, industry trends, and competitive landscape.",
			Impact:      ImpactMedium,
			Weight:      0.15,
		},
		{
			Name:        "Innovation & R&D",
			Description: "Investment in research and development, new product launches, and technological advancement.",
			Impact:      ImpactMedium,
			Weight:      0.15,
		},
		{
			Name:        "Regulatory Environment",
			Description: "Government regulations, compliance requirements, and policy changes affecting the industry.",
			Impact:      ImpactMedium,
			Weight:      0.1,
		},
	},
	"Consumer Defensive": {
		{
			Name:        "Brand Marketing & New Products",
			Description: "Marketing campaigns, brand recognition, and new product introductions that drive consumer demand and market share.",
			Impact:      ImpactHigh,
			Weight:      0.25,
		},
		{
			Name:        "Supply Chain Efficiency",
			Description: "Distribution network optimization, inventory management, and supply chain resilience against disruptions.",
			Impact:      ImpactHigh,
			Weight:      0.25,
		},
		{
			Name:        "Commodity Prices",
			Description: "Raw material costs (sugar, corn, packaging) that directly impact profit margins.",
			Impact:      ImpactHigh,
			Weight:      0.2,
		},
		{
			Name:        "Consumer Trends",
			Description: "Shifts in consumer preferences (health consciousness, sustainability) affecting product demand.",
			Impact:      ImpactMedium,
			Weight:      0.15,
		},
		{
			Name:        "International Expansion",
			Description: "Growth in emerging markets and geographic diversification of revenue streams.",
			Impact:      ImpactMedium,
			Weight:      0.15,
		},
	},
	"Technology": {
		{
			Name:        "Product Innovation",
			Description: "New product launches, feature updates, and technological breakthroughs that drive user adoption.",
			Impact:      ImpactHigh,
			Weight:      0.3,
		},
		{
			Name:        "User Growth & Engagement",
			Description: "Active user base growth, user retention, and platform engagement metrics.",
			Impact:      ImpactHigh,
			Weight:      0.25,
		},
		{
			Name:        "R&D Investment",
			Description: "Research and development spending to maintain competitive advantage and future product pipeline.",
			Impact:      ImpactHigh,
			Weight:      0.2,
		},
		{
			Name:        "Market Competition",
			Description: "Competitive landscape, market share battles, and potential disruption from new entrants.",
			Impact:      ImpactMedium,
			Weight:      0.15,
		},
		{
			Name:        "Regulatory Risk",
			Description: "Data privacy regulations, antitrust concerns, and government intervention in the tech sector.",
			Impact:      ImpactMedium,
			Weight:      0.1,
		},
	},
	"Healthcare": {
		{
			Name:        "Drug Pipeline & Approvals",
			Description: "Clinical trial results, FDA approvals, and new drug launches that drive revenue growth.",
			Impact:      ImpactHigh,
			Weight:      0.3,
		},
		{
			Name:        "Patent Expirations",
			Description: "Loss of patent protection leading to generic competition and revenue decline.",
			Impact:      ImpactHigh,
			Weight:      0.25,
		},
		{
			Name:        "R&D Success Rate",
			Description: "Effectiveness of research programs and probability of successful drug development.",
			Impact:      ImpactHigh,
			Weight:      0.2,
		},
		{
			Name:        "Healthcare Policy",
			Description: "Government healthcare policies, drug pricing regulations, and reimbursement rates.",
			Impact:      ImpactMedium,
			Weight:      0.15,
		},
		{
			Name:        "M&A Activity",
			Description: "Strategic acquisitions to expand product portfolio and market reach.",
			Impact:      ImpactMedium,
			Weight:      0.1,
		},
	},
	"Financial Services": {
		{
			Name:        "Interest Rate Environment",
			Description: "Central bank policy rates affecting lending margins and investment returns.",
			Impact:      ImpactHigh,
			Weight:      0.3,
		},
		{
			Name:        "Credit Quality",
			Description: "Loan default rates, credit loss provisions, and overall asset quality.",
			Impact:      ImpactHigh,
			Weight:      0.25,
		},
		{
			Name:        "Digital Transformation",
			Description: "Investment in fintech, mobile banking, and operational efficiency improvements.",
			Impact:      ImpactMedium,
			Weight:      0.2,
		},
		{
			Name:        "Regulatory Compliance",
			Description: "Banking regulations, capital requirements, and compliance costs.",
			Impact:      ImpactMedium,
			Weight:      0.15,
		},
		{
			Name:        "Economic Conditions",
			Description: "Overall economic growth, unemployment rates, and consumer confidence.",
			Impact:      ImpactMedium,
			Weight:      0.1,
		},
	},
}

// Lookup returns the lever table for a sector. The match is exact; any
// unknown, empty, or near-miss sector name falls back to the default table.
// The second return value names the table actually used.
func Lookup(sector string) ([]Lever, string) {
	if lv, ok := catalog[sector]; ok && sector != DefaultSector {
		return clone(lv), sector
	}
	return clone(catalog[DefaultSector]), DefaultSector
}

// Sectors lists the curated sector names, default excluded.
func Sectors() []string {
	out := make([]string, 0, len(catalog)-1)
	for k := range catalog {
		if k != DefaultSector {
			out = append(out, k)
		}
	}
	return out
}

// Simulate computes the weighted net impact of per-lever adjustments, in
// percentage points. Adjustments are positional against the sector's table.
func Simulate(sector string, adjustments []float64) (float64, []Lever, error) {
	lv, matched := Lookup(sector)
	if len(adjustments) != len(lv) {
		return 0, nil, fmt.Errorf("sector %q has %d levers, got %d adjustments", matched, len(lv), len(adjustments))
	}
	total := 0.0
	for i, adj := range adjustments {
		total += adj * lv[i].Weight
	}
	return total, lv, nil
}

// FormatImpact renders a simulated impact the way the dashboard shows it,
// one decimal with an explicit plus sign for gains.
func FormatImpact(total float64) string {
	return util.FormatSignedPercent(total)
}

func clone(lv []Lever) []Lever {
	out := make([]Lever, len(lv))
	copy(out, lv)
	return out
}
