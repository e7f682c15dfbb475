package survey

import (
	"context"
	"database/sql"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/felixroth/cableplan/internal/plugin"
	"github.com/felixroth/cableplan/internal/services"
)

// Plugin implements the site survey module: survey documents and the
// infrastructure tree inside them.
type Plugin struct {
	logger *zap.Logger
	config *viper.Viper
	repo   services.SurveyRepository
	bus    plugin.EventBus

	allowDuplicateLinks bool
}

// New creates the survey plugin.
func New(repo services.SurveyRepository, bus plugin.EventBus) *Plugin {
	return &Plugin{repo: repo, bus: bus, allowDuplicateLinks: true}
}

func (p *Plugin) Name() string    { return "survey" }
func (p *Plugin) Version() string { return "0.1.0" }

func (p *Plugin) Init(config *viper.Viper, logger *zap.Logger) error {
	p.config = config
	p.logger = logger
	if config.IsSet("allow_duplicate_links") {
		p.allowDuplicateLinks = config.GetBool("allow_duplicate_links")
	}
	p.logger.Info("survey module initialized",
		zap.Bool("allow_duplicate_links", p.allowDuplicateLinks))
	return nil
}

func (p *Plugin) Start(ctx context.Context) error {
	p.logger.Info("survey module started")
	return nil
}

func (p *Plugin) Stop() error {
	p.logger.Info("survey module stopped")
	return nil
}

// Migrations implements plugin.Migrator.
func (p *Plugin) Migrations() []plugin.Migration {
	return []plugin.Migration{
		{
			Version:     1,
			Description: "create survey_documents",
			Up: func(tx *sql.Tx) error {
				stmts := []string{
					`CREATE TABLE IF NOT EXISTS survey_documents (
						id              TEXT PRIMARY KEY,
						name            TEXT NOT NULL DEFAULT '',
						data            TEXT NOT NULL DEFAULT '{}',
						buildings_count INTEGER NOT NULL DEFAULT 0,
						equipment_count INTEGER NOT NULL DEFAULT 0,
						created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
						updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,
					`CREATE INDEX IF NOT EXISTS idx_survey_documents_name ON survey_documents(name)`,
					`CREATE INDEX IF NOT EXISTS idx_survey_documents_updated ON survey_documents(updated_at)`,
				}
				for _, stmt := range stmts {
					if _, err := tx.Exec(stmt); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
}

func (p *Plugin) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "GET", Path: "/surveys", Handler: p.handleListSurveys},
		{Method: "POST", Path: "/surveys", Handler: p.handleCreateSurvey},
		{Method: "GET", Path: "/surveys/{id}", Handler: p.handleGetSurvey},
		{Method: "PUT", Path: "/surveys/{id}", Handler: p.handleRenameSurvey},
		{Method: "DELETE", Path: "/surveys/{id}", Handler: p.handleDeleteSurvey},
		{Method: "GET", Path: "/surveys/{id}/stats", Handler: p.handleSurveyStats},

		{Method: "POST", Path: "/surveys/{id}/buildings", Handler: p.handleAddBuilding},
		{Method: "PUT", Path: "/surveys/{id}/buildings/{buildingID}/central-rack", Handler: p.handleSetCentralRack},
		{Method: "POST", Path: "/surveys/{id}/buildings/{buildingID}/floors", Handler: p.handleAddFloor},
		{Method: "POST", Path: "/surveys/{id}/floors/{floorID}/racks", Handler: p.handleAddFloorRack},
		{Method: "POST", Path: "/surveys/{id}/floors/{floorID}/rooms", Handler: p.handleAddRoom},
		{Method: "POST", Path: "/surveys/{id}/nodes/{kind}/{nodeID}/devices", Handler: p.handleAddDevice},
		{Method: "POST", Path: "/surveys/{id}/connections", Handler: p.handleAddConnection},

		{Method: "PUT", Path: "/surveys/{id}/nodes/{kind}/{nodeID}", Handler: p.handleUpdateNode},
		{Method: "DELETE", Path: "/surveys/{id}/nodes/{kind}/{nodeID}", Handler: p.handleRemoveNode},
		{Method: "PUT", Path: "/surveys/{id}/devices/{deviceID}", Handler: p.handleUpdateDevice},
		{Method: "DELETE", Path: "/surveys/{id}/devices/{deviceID}", Handler: p.handleRemoveDevice},
	}
}
