package domain

// PackageItem is one shippable line of a rate request. Dimensions are zero when unknown.
type PackageItem struct {
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Weight    float64 `json:"weight"`
	Height    float64 `json:"height"`
	Length    float64 `json:"length"`
	Width     float64 `json:"width"`
}

// ShippingRatesRequest is the checkout rate request body.
type ShippingRatesRequest struct {
	Contents    []PackageItem  `json:"contents"`
	Destination map[string]any `json:"destination"`
	Services    []any          `json:"services"`
	Boxes       []any          `json:"boxes"`
}

// Shippable drops items with a non-positive quantity.
func (r ShippingRatesRequest) Shippable() []PackageItem {
	items := make([]PackageItem, 0, len(r.Contents))
	for _, it := range r.Contents {
		if it.Quantity > 0 {
			items = append(items, it)
		}
	}
	return items
}

// Unweighted returns the first shippable item without a weight.
func (r ShippingRatesRequest) Unweighted() (PackageItem, bool) {
	for _, it := range r.Shippable() {
		if it.Weight <= 0 {
			return it, true
		}
	}
	return PackageItem{}, false
}
