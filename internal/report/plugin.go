package report

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/felixroth/cableplan/internal/plugin"
	"github.com/felixroth/cableplan/internal/server"
	"github.com/felixroth/cableplan/internal/services"
)

// Plugin implements the report module: BOM exports as XLSX and PDF.
type Plugin struct {
	logger *zap.Logger
	config *viper.Viper
	repo   services.SurveyRepository
}

// New creates the report plugin.
func New(repo services.SurveyRepository) *Plugin {
	return &Plugin{repo: repo}
}

func (p *Plugin) Name() string    { return "report" }
func (p *Plugin) Version() string { return "0.1.0" }

func (p *Plugin) Init(config *viper.Viper, logger *zap.Logger) error {
	p.config = config
	p.logger = logger
	p.logger.Info("report module initialized")
	return nil
}

func (p *Plugin) Start(ctx context.Context) error { return nil }
func (p *Plugin) Stop() error                     { return nil }

func (p *Plugin) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "GET", Path: "/surveys/{id}/bom.xlsx", Handler: p.handleXLSX},
		{Method: "GET", Path: "/surveys/{id}/bom.pdf", Handler: p.handlePDF},
	}
}

// handleXLSX streams the BOM workbook.
//
//	@Summary	Download BOM as XLSX
//	@Tags		report
//	@Produce	application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Router		/report/surveys/{id}/bom.xlsx [get]
func (p *Plugin) handleXLSX(w http.ResponseWriter, r *http.Request) {
	s, err := p.repo.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		server.FromError(w, err, r.URL.Path)
		return
	}

	m := Build(s)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.Name+"-bom.xlsx"))
	if err := WriteXLSX(m, w); err != nil {
		p.logger.Error("write xlsx report", zap.String("survey_id", s.ID), zap.Error(err))
	}
}

// handlePDF streams the BOM document.
func (p *Plugin) handlePDF(w http.ResponseWriter, r *http.Request) {
	s, err := p.repo.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		server.FromError(w, err, r.URL.Path)
		return
	}

	m := Build(s)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.Name+"-bom.pdf"))
	if err := WritePDF(m, w); err != nil {
		p.logger.Error("write pdf report", zap.String("survey_id", s.ID), zap.Error(err))
	}
}
