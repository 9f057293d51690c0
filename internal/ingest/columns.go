package ingest

import (
	"bytes"
	"strings"
)

const (
	colDate          = "date"
	colSpend         = "spend"
	colImpressions   = "impressions"
	colReach         = "reach"
	colWebsiteClicks = "website clicks"
	colSearches      = "searches"
	colViewContent   = "view content"
	colAddToCart     = "add to cart"
	colCheckout      = "checkout"
	colPurchases     = "purchases"
)

// Schema is the fixed input layout, in file order.
var Schema = []string{
	colDate, colSpend, colImpressions, colReach, colWebsiteClicks,
	colSearches, colViewContent, colAddToCart, colCheckout, colPurchases,
}

// optional columns default to zero when absent
var optional = map[string]bool{colCheckout: true}

var aliases = map[string]string{
	"spend usd": colSpend,
	"clicks":    colWebsiteClicks,
	"purchase":  colPurchases,
}

// NormalizeColumn maps a raw header ("# of Website Clicks", "Spend [USD]", "Add_to_Cart")
// to its schema name.
func NormalizeColumn(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "[usd]", "")
	s = strings.NewReplacer("_", " ", "#", " ").Replace(s)
	f := strings.Fields(s)
	if len(f) > 1 && f[0] == "of" {
		f = f[1:]
	}
	s = strings.Join(f, " ")
	if a, ok := aliases[s]; ok {
		return a
	}
	return s
}

// sniffDelimiter picks the most frequent of ';', ',' and tab in the header line.
func sniffDelimiter(raw []byte) rune {
	line := raw
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		line = raw[:i]
	}
	best, bestN := ';', 0
	for _, c := range []rune{';', ',', '\t'} {
		if n := bytes.Count(line, []byte(string(c))); n > bestN {
			best, bestN = c, n
		}
	}
	return best
}
