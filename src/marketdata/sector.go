package marketdata

// FallbackETF is used for unknown sectors and failed lookups.
const FallbackETF = "SPY"

var sectorETFMap = map[string]string{
	"Technology":             "XLK",
	"Financial Services":     "XLF",
	"Energy":                 "XLE",
	"Healthcare":             "XLV",
	"Health Care":            "XLV",
	"Industrials":            "XLI",
	"Consumer Cyclical":      "XLY",
	"Consumer Defensive":     "XLP",
	"Utilities":              "XLU",
	"Real Estate":            "XLRE",
	"Basic Materials":        "XLB",
	"Communication Services": "XLC",
}

// SectorToETF maps a sector name to its SPDR sector ETF. ok is false for unmapped sectors.
func SectorToETF(sector string) (etf string, ok bool) {
	etf, ok = sectorETFMap[sector]
	if !ok {
		return FallbackETF, false
	}
	return etf, true
}
