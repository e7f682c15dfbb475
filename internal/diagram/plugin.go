package diagram

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/felixroth/cableplan/internal/plugin"
	"github.com/felixroth/cableplan/internal/server"
	"github.com/felixroth/cableplan/internal/services"
)

// Plugin implements the diagram module: read-only graph projections of a
// survey for rendering clients.
type Plugin struct {
	logger *zap.Logger
	config *viper.Viper
	repo   services.SurveyRepository
}

// New creates the diagram plugin.
func New(repo services.SurveyRepository) *Plugin {
	return &Plugin{repo: repo}
}

func (p *Plugin) Name() string    { return "diagram" }
func (p *Plugin) Version() string { return "0.1.0" }

func (p *Plugin) Init(config *viper.Viper, logger *zap.Logger) error {
	p.config = config
	p.logger = logger
	p.logger.Info("diagram module initialized")
	return nil
}

func (p *Plugin) Start(ctx context.Context) error { return nil }
func (p *Plugin) Stop() error                     { return nil }

func (p *Plugin) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "GET", Path: "/surveys/{id}/graph", Handler: p.handleGraph},
		{Method: "GET", Path: "/surveys/{id}/dot", Handler: p.handleDOT},
	}
}

// handleGraph returns the projected node/edge graph as JSON.
//
//	@Summary	Survey graph projection
//	@Tags		diagram
//	@Produce	json
//	@Router		/diagram/surveys/{id}/graph [get]
func (p *Plugin) handleGraph(w http.ResponseWriter, r *http.Request) {
	s, err := p.repo.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		server.FromError(w, err, r.URL.Path)
		return
	}

	g := Project(s)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(g)
}

// handleDOT returns the projection rendered as Graphviz DOT text.
func (p *Plugin) handleDOT(w http.ResponseWriter, r *http.Request) {
	s, err := p.repo.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		server.FromError(w, err, r.URL.Path)
		return
	}

	w.Header().Set("Content-Type", "text/vnd.graphviz")
	_, _ = w.Write([]byte(WriteDOT(Project(s))))
}
