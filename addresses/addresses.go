package addresses

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/Mdhelaluddin3391/quickdash-go/api"
	"github.com/Mdhelaluddin3391/quickdash-go/location"
)

const (
	addressesEndpoint   = "/auth/customer/addresses/"
	serviceableEndpoint = "/warehouse/find-serviceable/"
)

// Address is a saved, backend-known delivery address.
type Address struct {
	ID            string  `json:"id"`
	Label         string  `json:"label"`
	HouseNo       string  `json:"house_no"`
	ApartmentName string  `json:"apartment_name"`
	FloorNo       string  `json:"floor_no"`
	Landmark      string  `json:"landmark"`
	AddressText   string  `json:"google_address_text"`
	City          string  `json:"city"`
	Pincode       string  `json:"pincode"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	ReceiverName  string  `json:"receiver_name"`
	ReceiverPhone string  `json:"receiver_phone"`
	IsDefault     bool    `json:"is_default"`
}

// Serviceability is the result of the warehouse coverage check.
type Serviceability struct {
	Serviceable bool   `json:"serviceable"`
	WarehouseID string `json:"warehouse_id"`
}

// Service manages saved addresses and the L2 delivery selection.
type Service struct {
	api       *api.Client
	locations *location.Manager
}

// NewService creates the addresses service.
func NewService(apiClient *api.Client, locations *location.Manager) (*Service, error) {
	if apiClient == nil {
		return nil, errors.New("[NewService] api client is required")
	}
	if locations == nil {
		return nil, errors.New("[NewService] locations is required")
	}
	return &Service{api: apiClient, locations: locations}, nil
}

// List fetches the saved addresses. The endpoint returns either a bare array
// or a paginated envelope; both are accepted.
func (s *Service) List(ctx context.Context) ([]Address, error) {
	var raw json.RawMessage
	if err := s.api.Get(ctx, addressesEndpoint, nil, &raw); err != nil {
		return nil, errors.Wrap(err, "[Service.List]")
	}

	var list []Address
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var envelope struct {
		Results []Address `json:"results"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, errors.Wrap(err, "[Service.List] decode")
	}
	return envelope.Results, nil
}

// Create saves a new address. Serviceability is checked first, but an
// unserviceable or failed check never blocks the save; the result is reported
// back so the caller can warn.
func (s *Service) Create(ctx context.Context, addr Address) (*Serviceability, error) {
	check, err := s.CheckServiceable(ctx, addr.Latitude, addr.Longitude, addr.City)
	if err != nil {
		check = nil
	}
	if err := s.api.Post(ctx, addressesEndpoint, addr, nil); err != nil {
		return check, errors.Wrap(err, "[Service.Create]")
	}
	return check, nil
}

// Update replaces a saved address. Updating the currently selected delivery
// address refreshes the L2 context so headers and display stay in sync.
func (s *Service) Update(ctx context.Context, addr Address) error {
	if addr.ID == "" {
		return errors.New("[Service.Update] id is required")
	}
	if err := s.api.Put(ctx, fmt.Sprintf("%s%s/", addressesEndpoint, addr.ID), addr, nil); err != nil {
		return errors.Wrap(err, "[Service.Update]")
	}
	if s.locations.Context().AddressID == addr.ID {
		if err := s.Select(addr); err != nil {
			return errors.Wrap(err, "[Service.Update] refresh selection")
		}
	}
	return nil
}

// Delete removes a saved address. Deleting the currently selected delivery
// address also drops the L2 context.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("[Service.Delete] id is required")
	}
	if err := s.api.Delete(ctx, fmt.Sprintf("%s%s/", addressesEndpoint, id), nil); err != nil {
		return errors.Wrap(err, "[Service.Delete]")
	}
	if s.locations.Context().AddressID == id {
		if err := s.locations.Clear(); err != nil {
			return errors.Wrap(err, "[Service.Delete] clear selection")
		}
	}
	return nil
}

// Select makes addr the active L2 delivery context. Subscribers of the
// location manager (cart validation among them) react to the change.
func (s *Service) Select(addr Address) error {
	err := s.locations.SetDeliveryAddress(location.DeliveryInput{
		ID:          addr.ID,
		Latitude:    addr.Latitude,
		Longitude:   addr.Longitude,
		City:        addr.City,
		Label:       addr.Label,
		AddressLine: addr.AddressText,
	})
	if err != nil {
		return errors.Wrap(err, "[Service.Select]")
	}
	return nil
}

// CheckServiceable asks whether a warehouse covers the given coordinates.
func (s *Service) CheckServiceable(ctx context.Context, lat, lng float64, city string) (*Serviceability, error) {
	body := map[string]any{
		"latitude":  lat,
		"longitude": lng,
	}
	if city != "" {
		body["city"] = city
	}
	var result Serviceability
	if err := s.api.Post(ctx, serviceableEndpoint, body, &result); err != nil {
		return nil, errors.Wrap(err, "[Service.CheckServiceable]")
	}
	return &result, nil
}
