package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/felixroth/cableplan/pkg/catalog"
)

func newTestPlugin(t *testing.T) *Plugin {
	t.Helper()
	p := New(catalog.NewCatalog())
	if err := p.Init(viper.New(), zap.NewNop()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return p
}

func TestListProducts(t *testing.T) {
	p := newTestPlugin(t)

	w := httptest.NewRecorder()
	p.handleListProducts(w, httptest.NewRequest(http.MethodGet, "/products", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var products []catalog.Product
	if err := json.NewDecoder(w.Body).Decode(&products); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(products) == 0 {
		t.Fatal("expected embedded catalog to contain products")
	}
}

func TestListProductsCategoryFilter(t *testing.T) {
	p := newTestPlugin(t)

	w := httptest.NewRecorder()
	p.handleListProducts(w, httptest.NewRequest(http.MethodGet, "/products?category=fiber", nil))

	var products []catalog.Product
	if err := json.NewDecoder(w.Body).Decode(&products); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(products) == 0 {
		t.Fatal("expected fiber products")
	}
	for _, prod := range products {
		if prod.Category != "fiber" {
			t.Errorf("product %q category = %q, want fiber", prod.ID, prod.Category)
		}
	}
}

func TestListServicesSearch(t *testing.T) {
	p := newTestPlugin(t)

	w := httptest.NewRecorder()
	p.handleListServices(w, httptest.NewRequest(http.MethodGet, "/services?q=splice", nil))

	var services []catalog.Service
	if err := json.NewDecoder(w.Body).Decode(&services); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(services) != 1 {
		t.Fatalf("services = %d, want 1 match for 'splice'", len(services))
	}
}

func TestGetProduct(t *testing.T) {
	p := newTestPlugin(t)

	r := httptest.NewRequest(http.MethodGet, "/products/prod-cat6-utp-305", nil)
	r.SetPathValue("id", "prod-cat6-utp-305")
	w := httptest.NewRecorder()
	p.handleGetProduct(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var prod catalog.Product
	if err := json.NewDecoder(w.Body).Decode(&prod); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if prod.ID != "prod-cat6-utp-305" {
		t.Errorf("ID = %q, want prod-cat6-utp-305", prod.ID)
	}
	if prod.Price <= 0 {
		t.Errorf("Price = %v, want positive", prod.Price)
	}
}

func TestGetProductNotFound(t *testing.T) {
	p := newTestPlugin(t)

	r := httptest.NewRequest(http.MethodGet, "/products/nope", nil)
	r.SetPathValue("id", "nope")
	w := httptest.NewRecorder()
	p.handleGetProduct(w, r)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
