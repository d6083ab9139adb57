package catalog

import (
	"encoding/json"
	"strconv"
)

// Product is the canonical product shape used everywhere past the API
// boundary. Backend responses vary by endpoint (sale_price vs selling_price vs
// price, numeric vs string ids); normalization happens here, once, and the raw
// shape never propagates further.
type Product struct {
	ID      string
	SKUCode string
	Name    string
	Unit    string
	Image   string
	Price   float64
	MRP     float64
	InStock bool
}

type rawProduct struct {
	ID           any      `json:"id"`
	SKUCode      string   `json:"sku_code"`
	Name         string   `json:"name"`
	Unit         string   `json:"unit"`
	Image        string   `json:"image"`
	SalePrice    *float64 `json:"sale_price"`
	SellingPrice *float64 `json:"selling_price"`
	Price        *float64 `json:"price"`
	MRP          float64  `json:"mrp"`
	InStock      *bool    `json:"in_stock"`
}

// UnmarshalJSON normalizes the backend product variants into the canonical
// type. The effective price is the first present of sale_price, selling_price,
// price; stock defaults to available when the field is absent.
func (p *Product) UnmarshalJSON(data []byte) error {
	var raw rawProduct
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = Product{
		ID:      stringID(raw.ID),
		SKUCode: raw.SKUCode,
		Name:    raw.Name,
		Unit:    raw.Unit,
		Image:   raw.Image,
		MRP:     raw.MRP,
		InStock: raw.InStock == nil || *raw.InStock,
	}

	switch {
	case raw.SalePrice != nil:
		p.Price = *raw.SalePrice
	case raw.SellingPrice != nil:
		p.Price = *raw.SellingPrice
	case raw.Price != nil:
		p.Price = *raw.Price
	}
	return nil
}

func stringID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatInt(int64(id), 10)
	default:
		return ""
	}
}

// Category is a storefront category with its product rail.
type Category struct {
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	Icon     string    `json:"icon"`
	Products []Product `json:"products"`
}

// StorefrontPage is one page of the location-keyed storefront feed.
type StorefrontPage struct {
	Serviceable *bool      `json:"serviceable"`
	Categories  []Category `json:"categories"`
	HasNext     bool       `json:"has_next"`
}

// IsServiceable reports whether the backend can deliver to the queried
// location. An absent field means serviceable.
func (p *StorefrontPage) IsServiceable() bool {
	return p.Serviceable == nil || *p.Serviceable
}

// FeedSection is one section of the generic (location-less) home feed.
type FeedSection struct {
	Title    string    `json:"title"`
	Products []Product `json:"products"`
}

// FeedPage is one page of the generic home feed.
type FeedPage struct {
	Sections []FeedSection `json:"sections"`
	HasNext  bool          `json:"has_next"`
}

// ProductPage is one page of a paginated product listing.
type ProductPage struct {
	Results []Product `json:"results"`
	Count   int       `json:"count"`
	Next    string    `json:"next"`
}

// Suggestion is one search-suggest hit.
type Suggestion struct {
	Name    string   `json:"name"`
	SKUCode string   `json:"sku_code"`
	Price   *float64 `json:"price"`
}
