package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/felixroth/cableplan/pkg/models"
)

// NewSurvey returns a survey with one building (central rack, one floor with
// a floor rack and a room), suitable as a baseline fixture. Override fields
// through options or after creation.
func NewSurvey(opts ...func(*models.Survey)) models.Survey {
	now := time.Now().UTC()
	s := models.Survey{
		ID:        uuid.New().String(),
		Name:      "test-survey",
		Buildings: []models.Building{NewBuilding()},
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithName sets the survey name.
func WithName(name string) func(*models.Survey) {
	return func(s *models.Survey) { s.Name = name }
}

// WithBuildings replaces the survey's building list.
func WithBuildings(bs ...models.Building) func(*models.Survey) {
	return func(s *models.Survey) { s.Buildings = bs }
}

// WithEquipment replaces the survey's equipment ledger.
func WithEquipment(items ...models.EquipmentItem) func(*models.Survey) {
	return func(s *models.Survey) { s.Equipment = items }
}

// NewBuilding returns a building with a central rack and one floor holding a
// floor rack and a room.
func NewBuilding(opts ...func(*models.Building)) models.Building {
	b := models.Building{
		ID:   uuid.New().String(),
		Name: "Building A",
		CentralRack: &models.Rack{
			ID:   uuid.New().String(),
			Name: "MDF",
		},
		Floors: []models.Floor{
			{
				ID:    uuid.New().String(),
				Name:  "Floor 1",
				Racks: []models.Rack{{ID: uuid.New().String(), Name: "IDF-1"}},
				Rooms: []models.Room{NewRoom()},
			},
		},
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// WithBuildingName sets the building name.
func WithBuildingName(name string) func(*models.Building) {
	return func(b *models.Building) { b.Name = name }
}

// WithoutCentralRack clears the building's central rack.
func WithoutCentralRack() func(*models.Building) {
	return func(b *models.Building) { b.CentralRack = nil }
}

// NewRoom returns a plain office room with two outlets.
func NewRoom(opts ...func(*models.Room)) models.Room {
	r := models.Room{
		ID:             uuid.New().String(),
		Name:           "Room 101",
		Type:           models.RoomTypeOffice,
		ConnectionType: models.RoomConnectionFloorRack,
		Outlets:        2,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// WithOutlets sets the room's outlet count.
func WithOutlets(n int) func(*models.Room) {
	return func(r *models.Room) { r.Outlets = n }
}

// AsTypical marks the room as a typical room standing for n identical rooms.
func AsTypical(n int) func(*models.Room) {
	return func(r *models.Room) {
		r.IsTypicalRoom = true
		r.IdenticalRoomsCount = n
	}
}

// NewEquipmentItem returns a priced product line with TotalPrice already
// recalculated.
func NewEquipmentItem(opts ...func(*models.EquipmentItem)) models.EquipmentItem {
	e := models.EquipmentItem{
		ID:       uuid.New().String(),
		Type:     models.ItemTypeProduct,
		Name:     "Cat6 keystone jack",
		Unit:     "pcs",
		Quantity: 1,
		Price:    decimal.NewFromFloat(6.20),
	}
	for _, opt := range opts {
		opt(&e)
	}
	e.Recalculate()
	return e
}

// WithItemType sets the line's item type.
func WithItemType(t models.ItemType) func(*models.EquipmentItem) {
	return func(e *models.EquipmentItem) { e.Type = t }
}

// WithQuantity sets the line quantity.
func WithQuantity(q int) func(*models.EquipmentItem) {
	return func(e *models.EquipmentItem) { e.Quantity = q }
}

// WithPrice sets the unit price.
func WithPrice(p float64) func(*models.EquipmentItem) {
	return func(e *models.EquipmentItem) { e.Price = decimal.NewFromFloat(p) }
}

// WithMargin sets the margin percentage.
func WithMargin(m float64) func(*models.EquipmentItem) {
	return func(e *models.EquipmentItem) { e.Margin = decimal.NewFromFloat(m) }
}

// BoundTo binds the line to an infrastructure node.
func BoundTo(addr models.Address) func(*models.EquipmentItem) {
	return func(e *models.EquipmentItem) { e.InfrastructureRef = addr }
}
