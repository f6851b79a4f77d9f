// Package sectors holds the static sector/sub-industry taxonomy used to seed
// and extend the company population.
package sectors

// Table maps each sector to its sub-industries, in declaration order. The
// order matters for nothing algorithmic; it only keeps iteration
// deterministic when a seed is supplied.
var Table = map[string][]string{
	"Technology":    {"Cloud", "Semiconductors", "AI Hardware", "SaaS", "Cybersecurity"},
	"Healthcare":    {"Biotech", "Pharmaceuticals", "Medical Devices", "Payors"},
	"Energy":        {"E&P", "Renewables", "Midstream", "Services"},
	"Financials":    {"Banks", "Fintech", "Asset Management", "Insurance"},
	"Consumer":      {"Retail", "Luxury", "Staples", "E-commerce"},
	"Industrials":   {"Aerospace", "Logistics", "Infrastructure", "Manufacturing"},
	"Communication": {"Telco", "Social Media", "Streaming", "Advertising"},
	"Materials":     {"Mining", "Chemicals", "Forestry", "Steel"},
}

// Names lists sector names in a fixed order, so callers that need to pick a
// sector uniformly can index into a slice rather than range over a map.
var Names = []string{
	"Technology", "Healthcare", "Energy", "Financials",
	"Consumer", "Industrials", "Communication", "Materials",
}

// CompanySuffixes are used when synthesizing a seeded company's display name.
var CompanySuffixes = []string{"Corp", "Systems", "Global"}

// IPOSuffixes are used when synthesizing a newly admitted IPO's display name.
var IPOSuffixes = []string{"Inc", "Corp", "Group", "Holdings"}
