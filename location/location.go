package location

// ServiceContext is the L1 browsing context: where the user is shopping from
// without commitment to a delivery address. Set from GPS or a dropped map pin.
type ServiceContext struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	City      string  `json:"city"`
	AreaName  string  `json:"area_name"`
	Timestamp int64   `json:"timestamp"`
}

// DeliveryContext is the L2 context: a concrete backend-known address selected
// for delivery. It outranks the service context for every location-dependent
// request.
type DeliveryContext struct {
	ID          string  `json:"id"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	City        string  `json:"city"`
	Label       string  `json:"label"`
	AddressLine string  `json:"address_line"`
	Timestamp   int64   `json:"timestamp"`
}

// ContextType identifies which stored context resolved as authoritative.
type ContextType string

const (
	ContextNone ContextType = "NONE"
	ContextL1   ContextType = "L1"
	ContextL2   ContextType = "L2"
)

// Context is the derived, read-only location context attached to API requests.
// Exactly one of L1/L2 contributes; AddressID is set only for L2.
type Context struct {
	Type      ContextType
	AddressID string
	Lat       float64
	Lng       float64
}

// HasCoordinates reports whether the context resolved usable coordinates.
func (c Context) HasCoordinates() bool {
	return c.Type != ContextNone && (c.Lat != 0 || c.Lng != 0)
}

// DisplayType identifies the UI-facing flavour of the active location.
type DisplayType string

const (
	DisplayDelivery DisplayType = "DELIVERY"
	DisplayService  DisplayType = "SERVICE"
	DisplayNone     DisplayType = "NONE"
)

// Display is the label/subtext/flag triple shown in navigation chrome.
type Display struct {
	Type    DisplayType
	Label   string
	Subtext string
	Active  bool
}

// ServiceInput is the caller-supplied payload for SetServiceLocation.
// FormattedAddress backstops AreaName when reverse geocoding only returned a
// formatted string.
type ServiceInput struct {
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	City             string  `json:"city"`
	AreaName         string  `json:"area_name"`
	FormattedAddress string  `json:"formatted_address"`
}

// DeliveryInput is the caller-supplied payload for SetDeliveryAddress. Backend
// address records spell coordinates "latitude"/"longitude"; locally picked ones
// use "lat"/"lng". Both variants are accepted and normalized.
type DeliveryInput struct {
	ID          string  `json:"id"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	City        string  `json:"city"`
	Label       string  `json:"label"`
	AddressLine string  `json:"address_line"`
}
