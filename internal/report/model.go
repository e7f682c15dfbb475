// Package report renders survey and BOM data into downloadable documents
// (XLSX and PDF). Rendering works from a flattened model so the writers
// never touch the survey document directly.
package report

import (
	"time"

	"github.com/felixroth/cableplan/internal/bom"
	"github.com/felixroth/cableplan/internal/survey"
	"github.com/felixroth/cableplan/pkg/models"
)

// Model is the flattened input for the report writers.
type Model struct {
	SurveyName  string
	GeneratedAt time.Time

	Stats     survey.Stats
	Buildings []BuildingSection

	Products []models.EquipmentItem
	Services []models.EquipmentItem

	ProductTotals bom.Totals
	ServiceTotals bom.Totals
	Overall       bom.Totals
}

// BuildingSection is the per-building rollup shown on the summary page.
type BuildingSection struct {
	Name  string
	Stats survey.Stats
}

// Build flattens a survey document into a report model.
func Build(s *models.Survey) Model {
	grouped := bom.GroupByType(s.Equipment)

	m := Model{
		SurveyName:    s.Name,
		GeneratedAt:   time.Now().UTC(),
		Stats:         survey.AggregateTotals(s),
		Buildings:     make([]BuildingSection, 0, len(s.Buildings)),
		Products:      grouped.Products,
		Services:      grouped.Services,
		ProductTotals: bom.TotalsFor(grouped.Products),
		ServiceTotals: bom.TotalsFor(grouped.Services),
		Overall:       bom.TotalsFor(s.Equipment),
	}

	for i := range s.Buildings {
		b := &s.Buildings[i]
		m.Buildings = append(m.Buildings, BuildingSection{
			Name:  b.Name,
			Stats: survey.BuildingTotals(b),
		})
	}
	return m
}
