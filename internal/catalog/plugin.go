// Package catalog exposes the embedded product and service catalog over
// HTTP. The catalog is read-only; pricing overrides happen on BOM lines.
package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/felixroth/cableplan/internal/plugin"
	"github.com/felixroth/cableplan/internal/server"
	"github.com/felixroth/cableplan/pkg/catalog"
)

// Plugin implements the catalog module.
type Plugin struct {
	logger  *zap.Logger
	config  *viper.Viper
	catalog *catalog.Catalog
}

// New creates the catalog plugin.
func New(cat *catalog.Catalog) *Plugin {
	return &Plugin{catalog: cat}
}

func (p *Plugin) Name() string    { return "catalog" }
func (p *Plugin) Version() string { return "0.1.0" }

func (p *Plugin) Init(config *viper.Viper, logger *zap.Logger) error {
	p.config = config
	p.logger = logger

	// Fail startup on a broken embedded catalog rather than on first request.
	products, err := p.catalog.Products()
	if err != nil {
		return err
	}
	services, err := p.catalog.Services()
	if err != nil {
		return err
	}

	p.logger.Info("catalog module initialized",
		zap.Int("products", len(products)),
		zap.Int("services", len(services)),
	)
	return nil
}

func (p *Plugin) Start(ctx context.Context) error { return nil }
func (p *Plugin) Stop() error                     { return nil }

func (p *Plugin) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "GET", Path: "/products", Handler: p.handleListProducts},
		{Method: "GET", Path: "/products/{id}", Handler: p.handleGetProduct},
		{Method: "GET", Path: "/services", Handler: p.handleListServices},
		{Method: "GET", Path: "/services/{id}", Handler: p.handleGetService},
	}
}

// handleListProducts returns catalog products, optionally filtered by
// category or name substring.
//
//	@Summary	List catalog products
//	@Tags		catalog
//	@Produce	json
//	@Router		/catalog/products [get]
func (p *Plugin) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := p.catalog.Products()
	if err != nil {
		p.logger.Error("load catalog products", zap.Error(err))
		server.InternalError(w, "catalog unavailable", r.URL.Path)
		return
	}

	q := r.URL.Query()
	category, search := q.Get("category"), strings.ToLower(q.Get("q"))
	out := products[:0]
	for _, prod := range products {
		if category != "" && prod.Category != category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(prod.Name), search) {
			continue
		}
		out = append(out, prod)
	}
	writeJSON(w, http.StatusOK, out)
}

func (p *Plugin) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	prod, ok, err := p.catalog.FindProduct(r.PathValue("id"))
	if err != nil {
		server.InternalError(w, "catalog unavailable", r.URL.Path)
		return
	}
	if !ok {
		server.NotFound(w, "product not found", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, prod)
}

// handleListServices returns catalog services, optionally filtered.
func (p *Plugin) handleListServices(w http.ResponseWriter, r *http.Request) {
	services, err := p.catalog.Services()
	if err != nil {
		p.logger.Error("load catalog services", zap.Error(err))
		server.InternalError(w, "catalog unavailable", r.URL.Path)
		return
	}

	q := r.URL.Query()
	category, search := q.Get("category"), strings.ToLower(q.Get("q"))
	out := services[:0]
	for _, svc := range services {
		if category != "" && svc.Category != category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(svc.Name), search) {
			continue
		}
		out = append(out, svc)
	}
	writeJSON(w, http.StatusOK, out)
}

func (p *Plugin) handleGetService(w http.ResponseWriter, r *http.Request) {
	svc, ok, err := p.catalog.FindService(r.PathValue("id"))
	if err != nil {
		server.InternalError(w, "catalog unavailable", r.URL.Path)
		return
	}
	if !ok {
		server.NotFound(w, "service not found", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
