package catalog_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Mdhelaluddin3391/quickdash-go/catalog"
)

func TestProductNormalization(t *testing.T) {
	tests := []struct {
		name string
		body string
		want catalog.Product
	}{
		{
			name: "sale price wins",
			body: `{"id":42,"sku_code":"MILK-1L","name":"Milk","sale_price":48.5,"selling_price":52,"price":55,"mrp":60}`,
			want: catalog.Product{ID: "42", SKUCode: "MILK-1L", Name: "Milk", Price: 48.5, MRP: 60, InStock: true},
		},
		{
			name: "selling price fallback",
			body: `{"id":"sku-9","name":"Bread","selling_price":35,"price":40}`,
			want: catalog.Product{ID: "sku-9", Name: "Bread", Price: 35, InStock: true},
		},
		{
			name: "plain price fallback",
			body: `{"name":"Eggs","price":72}`,
			want: catalog.Product{Name: "Eggs", Price: 72, InStock: true},
		},
		{
			name: "no price fields",
			body: `{"name":"Promo"}`,
			want: catalog.Product{Name: "Promo", InStock: true},
		},
		{
			name: "explicit out of stock",
			body: `{"name":"Butter","price":120,"in_stock":false}`,
			want: catalog.Product{Name: "Butter", Price: 120, InStock: false},
		},
		{
			name: "explicit zero sale price beats fallbacks",
			body: `{"name":"Sample","sale_price":0,"price":10}`,
			want: catalog.Product{Name: "Sample", Price: 0, InStock: true},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got catalog.Product
			require.NoError(t, json.Unmarshal([]byte(tc.body), &got))
			require.Equal(t, tc.want, got)
		})
	}
}

func TestStorefrontServiceability(t *testing.T) {
	var page catalog.StorefrontPage
	require.NoError(t, json.Unmarshal([]byte(`{"categories":[]}`), &page))
	require.True(t, page.IsServiceable(), "an absent flag means serviceable")

	require.NoError(t, json.Unmarshal([]byte(`{"serviceable":false}`), &page))
	require.False(t, page.IsServiceable())
}
