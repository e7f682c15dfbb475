package plugin

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Route represents an HTTP route exposed by a plugin. Routes are mounted
// under /api/v1/<plugin-name> by the server.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

// Plugin defines the interface that all CablePlan modules must implement.
type Plugin interface {
	// Name returns the plugin's unique identifier (e.g., "survey", "bom").
	Name() string

	// Version returns the plugin's semantic version.
	Version() string

	// Init initializes the plugin with configuration and logger.
	Init(config *viper.Viper, logger *zap.Logger) error

	// Start begins the plugin's background operations.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the plugin.
	Stop() error

	// Routes returns the HTTP routes this plugin exposes.
	Routes() []Route
}

// Migration is one schema step owned by a plugin. Applied migrations are
// tracked per plugin in the shared store.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// Migrator is implemented by plugins that own database schema.
type Migrator interface {
	Migrations() []Migration
}

// Store is the persistence contract plugins receive.
type Store interface {
	DB() *sql.DB
	Tx(ctx context.Context, fn func(tx *sql.Tx) error) error
	Migrate(ctx context.Context, pluginName string, migrations []Migration) error
	Close() error
}
