package bom

import (
	"github.com/shopspring/decimal"

	"github.com/felixroth/cableplan/pkg/models"
)

// Totals is the monetary rollup over a set of BOM lines.
type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	TotalMargin decimal.Decimal `json:"total_margin"`
	Total       decimal.Decimal `json:"total"`
}

// TotalsFor computes subtotal, margin, and total over the given lines.
// Total always equals the sum of the lines' TotalPrice fields; a divergence
// would mean a stale TotalPrice slipped past a mutation. An empty input
// yields zero totals.
func TotalsFor(items []models.EquipmentItem) Totals {
	t := Totals{
		Subtotal:    decimal.Zero,
		TotalMargin: decimal.Zero,
		Total:       decimal.Zero,
	}
	for i := range items {
		t.Subtotal = t.Subtotal.Add(items[i].BasePrice())
		t.TotalMargin = t.TotalMargin.Add(items[i].MarginAmount())
	}
	t.Total = t.Subtotal.Add(t.TotalMargin)
	return t
}

// Grouped partitions a ledger into products and services.
type Grouped struct {
	Products []models.EquipmentItem `json:"products"`
	Services []models.EquipmentItem `json:"services"`
}

// GroupByType partitions the lines by item type.
func GroupByType(items []models.EquipmentItem) Grouped {
	g := Grouped{
		Products: []models.EquipmentItem{},
		Services: []models.EquipmentItem{},
	}
	for _, it := range items {
		switch it.Type {
		case models.ItemTypeService:
			g.Services = append(g.Services, it)
		default:
			g.Products = append(g.Products, it)
		}
	}
	return g
}

// GroupByAddress buckets the lines by the node they are bound to. Unbound
// lines are grouped under the zero address.
func GroupByAddress(items []models.EquipmentItem) map[models.Address][]models.EquipmentItem {
	out := make(map[models.Address][]models.EquipmentItem)
	for _, it := range items {
		out[it.InfrastructureRef] = append(out[it.InfrastructureRef], it)
	}
	return out
}
