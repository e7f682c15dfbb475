package models

import "github.com/shopspring/decimal"

// ItemType distinguishes catalog products from services on the BOM.
type ItemType string

const (
	ItemTypeProduct ItemType = "product"
	ItemTypeService ItemType = "service"
)

// EquipmentItem is one priced BOM line. It lives in the flat equipment
// ledger and may be bound to a node of the infrastructure tree through
// InfrastructureRef; the tree never owns equipment.
type EquipmentItem struct {
	ID                string          `json:"id"`
	Type              ItemType        `json:"type"`
	ItemID            string          `json:"item_id,omitempty"`
	Name              string          `json:"name"`
	Brand             string          `json:"brand,omitempty"`
	Category          string          `json:"category,omitempty"`
	Unit              string          `json:"unit,omitempty"`
	Quantity          int             `json:"quantity"`
	Price             decimal.Decimal `json:"price"`
	Margin            decimal.Decimal `json:"margin"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	Notes             string          `json:"notes,omitempty"`
	InfrastructureRef Address         `json:"infrastructure_element,omitzero"`
}

// BasePrice returns price * quantity, before margin.
func (e *EquipmentItem) BasePrice() decimal.Decimal {
	return e.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// MarginAmount returns the absolute margin on the line.
func (e *EquipmentItem) MarginAmount() decimal.Decimal {
	return e.BasePrice().Mul(e.Margin).Div(decimal.NewFromInt(100))
}

// Recalculate rewrites TotalPrice from price, quantity, and margin. Every
// mutation of those fields must call this before the item is observed; a
// stale TotalPrice is a correctness bug.
func (e *EquipmentItem) Recalculate() {
	e.TotalPrice = e.BasePrice().Add(e.MarginAmount())
}

// DeduplicateEquipment keeps the first occurrence of every ledger ID and
// drops later duplicates. Optimistic updates racing a server refresh can
// produce a ledger with duplicate entries, so loaders run this on every
// external document. Idempotent.
func DeduplicateEquipment(items []EquipmentItem) []EquipmentItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]EquipmentItem, 0, len(items))
	for _, it := range items {
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out
}
