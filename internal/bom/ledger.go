// Package bom owns the equipment ledger of a survey: the flat list of priced
// BOM lines, the pricing invariant, and the monetary rollups. Operations are
// copy-on-write over a caller-owned slice; the infrastructure tree references
// ledger items only by address and never owns them.
package bom

import (
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/felixroth/cableplan/pkg/models"
)

// ItemRef carries the catalog fields needed to open a BOM line. The catalog
// itself is an external collaborator; the ledger only copies its values.
type ItemRef struct {
	Type     models.ItemType
	ItemID   string
	Name     string
	Brand    string
	Category string
	Unit     string
	Price    decimal.Decimal
}

// ManualItem is a user-entered BOM line with no catalog backing.
type ManualItem struct {
	Type     models.ItemType
	Name     string
	Brand    string
	Category string
	Unit     string
	Quantity int
	Price    decimal.Decimal
	Margin   decimal.Decimal
	Notes    string
	Ref      models.Address
}

// AddItem opens a BOM line from a catalog reference. Quantity defaults to 1.
// The generated ID is unique within the ledger; a collision would be a bug
// in ID generation, not a recoverable condition.
func AddItem(items []models.EquipmentItem, ref ItemRef, quantity int, nodeRef models.Address) ([]models.EquipmentItem, *models.EquipmentItem, error) {
	if ref.Name == "" {
		return items, nil, models.Validationf("name", "catalog item has no name")
	}
	if ref.Price.IsNegative() {
		return items, nil, models.Validationf("price", "price must not be negative")
	}
	if quantity <= 0 {
		quantity = 1
	}

	item := models.EquipmentItem{
		ID:                uuid.New().String(),
		Type:              ref.Type,
		ItemID:            ref.ItemID,
		Name:              ref.Name,
		Brand:             ref.Brand,
		Category:          ref.Category,
		Unit:              ref.Unit,
		Quantity:          quantity,
		Price:             ref.Price,
		Margin:            decimal.Zero,
		InfrastructureRef: nodeRef,
	}
	item.Recalculate()

	out := append(slices.Clone(items), item)
	return out, &out[len(out)-1], nil
}

// AddManualItem opens a BOM line from user-supplied fields.
func AddManualItem(items []models.EquipmentItem, form ManualItem) ([]models.EquipmentItem, *models.EquipmentItem, error) {
	if form.Name == "" {
		return items, nil, models.Validationf("name", "item name is required")
	}
	if form.Price.IsNegative() {
		return items, nil, models.Validationf("price", "price must not be negative")
	}
	if err := validateMargin(form.Margin); err != nil {
		return items, nil, err
	}
	if form.Quantity <= 0 {
		form.Quantity = 1
	}
	if form.Type == "" {
		form.Type = models.ItemTypeProduct
	}

	item := models.EquipmentItem{
		ID:                uuid.New().String(),
		Type:              form.Type,
		Name:              form.Name,
		Brand:             form.Brand,
		Category:          form.Category,
		Unit:              form.Unit,
		Quantity:          form.Quantity,
		Price:             form.Price,
		Margin:            form.Margin,
		Notes:             form.Notes,
		InfrastructureRef: form.Ref,
	}
	item.Recalculate()

	out := append(slices.Clone(items), item)
	return out, &out[len(out)-1], nil
}

// UpdateQuantity sets the quantity of a line and recomputes its total.
// A quantity of zero or less removes the line, mirroring the UI's behavior.
func UpdateQuantity(items []models.EquipmentItem, id string, quantity int) ([]models.EquipmentItem, error) {
	if quantity <= 0 {
		return RemoveItem(items, id), nil
	}
	return mutate(items, id, func(e *models.EquipmentItem) error {
		e.Quantity = quantity
		return nil
	})
}

// UpdatePrice sets the unit price of a line and recomputes its total.
func UpdatePrice(items []models.EquipmentItem, id string, price decimal.Decimal) ([]models.EquipmentItem, error) {
	if price.IsNegative() {
		return items, models.Validationf("price", "price must not be negative")
	}
	return mutate(items, id, func(e *models.EquipmentItem) error {
		e.Price = price
		return nil
	})
}

// UpdateMargin sets the margin percentage (0-100) of a line and recomputes
// its total.
func UpdateMargin(items []models.EquipmentItem, id string, margin decimal.Decimal) ([]models.EquipmentItem, error) {
	if err := validateMargin(margin); err != nil {
		return items, err
	}
	return mutate(items, id, func(e *models.EquipmentItem) error {
		e.Margin = margin
		return nil
	})
}

// UpdateNotes replaces the notes of a line.
func UpdateNotes(items []models.EquipmentItem, id, notes string) ([]models.EquipmentItem, error) {
	return mutate(items, id, func(e *models.EquipmentItem) error {
		e.Notes = notes
		return nil
	})
}

// Assign binds a line to an infrastructure node; a zero address unbinds it.
func Assign(items []models.EquipmentItem, id string, ref models.Address) ([]models.EquipmentItem, error) {
	return mutate(items, id, func(e *models.EquipmentItem) error {
		e.InfrastructureRef = ref
		return nil
	})
}

// RemoveItem drops a line. Removing an ID that is not present is a no-op,
// not an error.
func RemoveItem(items []models.EquipmentItem, id string) []models.EquipmentItem {
	out := make([]models.EquipmentItem, 0, len(items))
	for _, it := range items {
		if it.ID == id {
			continue
		}
		out = append(out, it)
	}
	return out
}

// FilterByAddress returns the lines bound to the given node. Equality is
// structural (kind + id), never object identity.
func FilterByAddress(items []models.EquipmentItem, ref models.Address) []models.EquipmentItem {
	out := []models.EquipmentItem{}
	for _, it := range items {
		if it.InfrastructureRef == ref {
			out = append(out, it)
		}
	}
	return out
}

// FilterByType returns the lines of one item type.
func FilterByType(items []models.EquipmentItem, t models.ItemType) []models.EquipmentItem {
	out := []models.EquipmentItem{}
	for _, it := range items {
		if it.Type == t {
			out = append(out, it)
		}
	}
	return out
}

// DeduplicateByID keeps the first occurrence of every ID and drops later
// duplicates. The logic lives on the models package so the repository can
// apply it on load without importing the ledger.
func DeduplicateByID(items []models.EquipmentItem) []models.EquipmentItem {
	return models.DeduplicateEquipment(items)
}

// mutate clones the ledger, applies fn to the addressed line, and recomputes
// its total price atomically with the change.
func mutate(items []models.EquipmentItem, id string, fn func(*models.EquipmentItem) error) ([]models.EquipmentItem, error) {
	for i := range items {
		if items[i].ID != id {
			continue
		}
		out := slices.Clone(items)
		if err := fn(&out[i]); err != nil {
			return items, err
		}
		out[i].Recalculate()
		return out, nil
	}
	return items, models.ErrNotFound
}

func validateMargin(margin decimal.Decimal) error {
	if margin.IsNegative() || margin.GreaterThan(decimal.NewFromInt(100)) {
		return models.Validationf("margin", "margin must be between 0 and 100 percent")
	}
	return nil
}
