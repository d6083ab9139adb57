package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"github.com/Mdhelaluddin3391/quickdash-go/api"
)

// Service wraps the catalog browsing endpoints.
type Service struct {
	api *api.Client
}

// NewService creates the catalog service.
func NewService(apiClient *api.Client) (*Service, error) {
	if apiClient == nil {
		return nil, errors.New("[NewService] api client is required")
	}
	return &Service{api: apiClient}, nil
}

// Storefront fetches one page of the location-keyed feed. The location
// headers are injected by the API client; the coordinates also travel as query
// parameters for cache keying.
func (s *Service) Storefront(ctx context.Context, lat, lng float64, city string, page int) (*StorefrontPage, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	params.Set("city", city)
	params.Set("page", strconv.Itoa(page))

	var result StorefrontPage
	if err := s.api.Get(ctx, "/catalog/storefront/", params, &result); err != nil {
		return nil, errors.Wrap(err, "[Service.Storefront]")
	}
	return &result, nil
}

// Feed fetches one page of the generic feed used when no location is set.
func (s *Service) Feed(ctx context.Context, page int) (*FeedPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))

	var result FeedPage
	if err := s.api.Get(ctx, "/catalog/home/feed/", params, &result); err != nil {
		return nil, errors.Wrap(err, "[Service.Feed]")
	}
	return &result, nil
}

// Products fetches a paginated product listing, optionally filtered by
// category slug and free-text search.
func (s *Service) Products(ctx context.Context, slug, search string, page int) (*ProductPage, error) {
	params := url.Values{}
	if slug != "" {
		params.Set("category", slug)
	}
	if search != "" {
		params.Set("search", search)
	}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}

	var result ProductPage
	if err := s.api.Get(ctx, "/catalog/products/", params, &result); err != nil {
		return nil, errors.Wrap(err, "[Service.Products]")
	}
	return &result, nil
}

// Product fetches a single product by SKU code.
func (s *Service) Product(ctx context.Context, skuCode string) (*Product, error) {
	if skuCode == "" {
		return nil, errors.New("[Service.Product] skuCode is required")
	}
	var result Product
	if err := s.api.Get(ctx, fmt.Sprintf("/catalog/products/%s/", skuCode), nil, &result); err != nil {
		return nil, errors.Wrap(err, "[Service.Product]")
	}
	return &result, nil
}

// Categories fetches the category list.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	var result []Category
	if err := s.api.Get(ctx, "/catalog/categories/", nil, &result); err != nil {
		return nil, errors.Wrap(err, "[Service.Categories]")
	}
	return result, nil
}

// SearchSuggest fetches typeahead suggestions for a query.
func (s *Service) SearchSuggest(ctx context.Context, query string) ([]Suggestion, error) {
	params := url.Values{}
	params.Set("q", query)

	var result []Suggestion
	if err := s.api.Get(ctx, "/catalog/search/suggest/", params, &result); err != nil {
		return nil, errors.Wrap(err, "[Service.SearchSuggest]")
	}
	return result, nil
}
