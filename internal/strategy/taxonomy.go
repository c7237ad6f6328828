package strategy

// Tier is a proficiency level in the strategy taxonomy.
type Tier string

const (
	TierNovice       Tier = "novice"
	TierIntermediate Tier = "intermediate"
	TierAdvanced     Tier = "advanced"
	TierExpert       Tier = "expert"
)

// Tiers lists the proficiency levels from easiest to hardest.
var Tiers = []Tier{TierNovice, TierIntermediate, TierAdvanced, TierExpert}

// Entry is one strategy in the catalog listing.
type Entry struct {
	Name      string `json:"name" yaml:"name"`
	Supported bool   `json:"supported" yaml:"supported"`
}

// TierListing groups entries under one tier.
type TierListing struct {
	Tier       Tier    `json:"tier" yaml:"tier"`
	Strategies []Entry `json:"strategies" yaml:"strategies"`
}

var taxonomy = map[Tier][]string{
	TierNovice: {
		string(LongCall), string(LongPut), string(CoveredCall), string(CashSecuredPut),
		"Protective Put",
	},
	TierIntermediate: {
		string(BullCallSpread), string(BearPutSpread), string(LongStraddle),
		"Bull Put Spread", "Bear Call Spread", "Long Strangle", "Collar",
	},
	TierAdvanced: {
		string(IronCondor),
		"Iron Butterfly", "Butterfly Spread", "Calendar Spread", "Diagonal Spread",
		"Short Straddle", "Short Strangle",
	},
	TierExpert: {
		"Jade Lizard", "Broken Wing Butterfly", "Double Diagonal",
		"Ratio Spread", "Christmas Tree", "Box Spread",
	},
}

// Catalog returns the four-tier strategy taxonomy. Supported marks the
// entries BuildByName accepts. No pricing is performed.
func Catalog() []TierListing {
	listing := make([]TierListing, 0, len(Tiers))
	for _, tier := range Tiers {
		names := taxonomy[tier]
		entries := make([]Entry, len(names))
		for i, name := range names {
			entries[i] = Entry{Name: name, Supported: IsSupported(name)}
		}
		listing = append(listing, TierListing{Tier: tier, Strategies: entries})
	}
	return listing
}
