package cart

// Item is one cart line as rendered by the client. The server response is the
// source of truth; no client-side merge of lines ever happens.
type Item struct {
	SKUCode    string  `json:"sku_code"`
	SKUName    string  `json:"sku_name"`
	Unit       string  `json:"unit"`
	Image      string  `json:"image"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"total_price"`
}

// Cart is the last fetched server snapshot.
type Cart struct {
	Items       []Item  `json:"items"`
	TotalAmount float64 `json:"total_amount"`
}

// Snapshot is the derived badge cache: item count and order total.
type Snapshot struct {
	Count int
	Total float64
}

// validation is the response of the cart validation endpoint, reporting lines
// that cannot be fulfilled from the warehouse serving the current location.
type validation struct {
	IsValid          bool `json:"is_valid"`
	UnavailableItems []struct {
		ProductName string `json:"product_name"`
	} `json:"unavailable_items"`
}
