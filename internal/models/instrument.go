package models

import "strings"

// instrumentOverrides maps symbols whose provider code does not follow the
// base/quote split convention.
var instrumentOverrides = map[string]string{
	"XAUUSD": "XAU_USD",
	"XAGUSD": "XAG_USD",
}

// NormalizeSymbol canonicalizes a user-facing symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// ResolveInstrument converts a user-facing symbol to the quote-provider
// instrument code. The mapping is a pure function of the symbol so that
// alerts created before a restart resolve to the same quote key:
// already-delimited codes pass through, overrides take precedence, and
// everything else splits into base/quote at the last three characters.
func ResolveInstrument(symbol string) string {
	s := NormalizeSymbol(symbol)
	if code, ok := instrumentOverrides[s]; ok {
		return code
	}
	if strings.Contains(s, "_") {
		return s
	}
	if len(s) <= 3 {
		return s
	}
	return s[:len(s)-3] + "_" + s[len(s)-3:]
}

// DefaultSymbols is the symbol list offered to the UI when no custom list is
// configured.
var DefaultSymbols = []string{
	"XAUUSD", "EURUSD", "GBPUSD", "USDCHF", "USDCAD",
	"AUDUSD", "AUDNZD", "AUDCAD", "AUDCHF", "NZDUSD",
	"CADNZD", "CADCHF", "EURJPY", "GBPJPY", "CADJPY",
	"EURGBP", "EURCAD", "EURCHF", "GBPCHF", "GBPCAD",
}
