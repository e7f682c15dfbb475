package bom

import (
	"context"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/felixroth/cableplan/internal/plugin"
	"github.com/felixroth/cableplan/internal/services"
	"github.com/felixroth/cableplan/pkg/catalog"
)

// Plugin implements the BOM module: the equipment ledger of a survey and its
// monetary rollups. The ledger lives inside the survey document, so the
// plugin shares the survey repository rather than owning tables.
type Plugin struct {
	logger  *zap.Logger
	config  *viper.Viper
	repo    services.SurveyRepository
	catalog *catalog.Catalog
	bus     plugin.EventBus
	resolve NodeResolver
}

// New creates the BOM plugin.
func New(repo services.SurveyRepository, cat *catalog.Catalog, bus plugin.EventBus) *Plugin {
	return &Plugin{repo: repo, catalog: cat, bus: bus}
}

func (p *Plugin) Name() string    { return "bom" }
func (p *Plugin) Version() string { return "0.1.0" }

func (p *Plugin) Init(config *viper.Viper, logger *zap.Logger) error {
	p.config = config
	p.logger = logger
	p.logger.Info("bom module initialized")
	return nil
}

func (p *Plugin) Start(ctx context.Context) error {
	p.logger.Info("bom module started")
	return nil
}

func (p *Plugin) Stop() error {
	p.logger.Info("bom module stopped")
	return nil
}

func (p *Plugin) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "GET", Path: "/surveys/{id}/items", Handler: p.handleListItems},
		{Method: "POST", Path: "/surveys/{id}/items", Handler: p.handleAddItem},
		{Method: "POST", Path: "/surveys/{id}/items/manual", Handler: p.handleAddManualItem},
		{Method: "PUT", Path: "/surveys/{id}/items/{itemID}/quantity", Handler: p.handleUpdateQuantity},
		{Method: "PUT", Path: "/surveys/{id}/items/{itemID}/price", Handler: p.handleUpdatePrice},
		{Method: "PUT", Path: "/surveys/{id}/items/{itemID}/margin", Handler: p.handleUpdateMargin},
		{Method: "PUT", Path: "/surveys/{id}/items/{itemID}/notes", Handler: p.handleUpdateNotes},
		{Method: "PUT", Path: "/surveys/{id}/items/{itemID}/assignment", Handler: p.handleAssign},
		{Method: "DELETE", Path: "/surveys/{id}/items/{itemID}", Handler: p.handleRemoveItem},
		{Method: "GET", Path: "/surveys/{id}/totals", Handler: p.handleTotals},
		{Method: "GET", Path: "/surveys/{id}/grouped", Handler: p.handleGrouped},
	}
}
