package models

// Counter is a per-day numeric column that can be compared between variants.
type Counter string

const (
	CounterSpend         Counter = "spend"
	CounterImpressions   Counter = "impressions"
	CounterReach         Counter = "reach"
	CounterWebsiteClicks Counter = "website_clicks"
	CounterSearches      Counter = "searches"
	CounterViewContent   Counter = "view_content"
	CounterAddToCart     Counter = "add_to_cart"
	CounterCheckout      Counter = "checkout"
	CounterPurchases     Counter = "purchases"
)

var counterLabels = map[Counter]string{
	CounterSpend:         "Daily Spend",
	CounterImpressions:   "Daily Impressions",
	CounterReach:         "Daily Reach",
	CounterWebsiteClicks: "Daily Website Clicks",
	CounterSearches:      "Daily Searches",
	CounterViewContent:   "Daily View Content",
	CounterAddToCart:     "Daily Add to Cart",
	CounterCheckout:      "Daily Checkout",
	CounterPurchases:     "Daily Purchases",
}

func ParseCounter(s string) (Counter, bool) {
	c := Counter(s)
	if c == "clicks" {
		c = CounterWebsiteClicks
	}
	_, ok := counterLabels[c]
	return c, ok
}

func (c Counter) Label() string {
	if l, ok := counterLabels[c]; ok {
		return l
	}
	return string(c)
}

func (c Counter) Value(r CampaignRecord) float64 {
	switch c {
	case CounterSpend:
		return r.Spend.InexactFloat64()
	case CounterImpressions:
		return float64(r.Impressions)
	case CounterReach:
		return float64(r.Reach)
	case CounterWebsiteClicks:
		return float64(r.WebsiteClicks)
	case CounterSearches:
		return float64(r.Searches)
	case CounterViewContent:
		return float64(r.ViewContent)
	case CounterAddToCart:
		return float64(r.AddToCart)
	case CounterCheckout:
		return float64(r.Checkout)
	case CounterPurchases:
		return float64(r.Purchases)
	}
	return 0
}
