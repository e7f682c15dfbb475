package models

import "fmt"

// AddressKind identifies which level of the infrastructure tree an
// Address points at.
type AddressKind string

const (
	AddressKindBuilding           AddressKind = "building"
	AddressKindCentralRack        AddressKind = "central_rack"
	AddressKindFloor              AddressKind = "floor"
	AddressKindFloorRack          AddressKind = "floor_rack"
	AddressKindRoom               AddressKind = "room"
	AddressKindBuildingConnection AddressKind = "building_connection"
)

// Address locates an entity in the infrastructure tree. Every entity carries
// a durable client-generated UUID, so an Address is a kind plus that ID and
// stays valid across sibling insertions and removals.
//
// Two addresses are equal iff kind and ID both match; the type is comparable
// and safe to use as a map key.
type Address struct {
	Kind AddressKind `json:"kind"`
	ID   string      `json:"id"`
}

// IsZero reports whether the address is unset (no binding).
func (a Address) IsZero() bool {
	return a.Kind == "" && a.ID == ""
}

// String returns a compact "kind/id" form for logs and diagnostics.
func (a Address) String() string {
	if a.IsZero() {
		return "<unassigned>"
	}
	return fmt.Sprintf("%s/%s", a.Kind, a.ID)
}

// BuildingAddress returns the address of a building.
func BuildingAddress(id string) Address {
	return Address{Kind: AddressKindBuilding, ID: id}
}

// CentralRackAddress returns the address of a building's central rack.
func CentralRackAddress(id string) Address {
	return Address{Kind: AddressKindCentralRack, ID: id}
}

// FloorAddress returns the address of a floor.
func FloorAddress(id string) Address {
	return Address{Kind: AddressKindFloor, ID: id}
}

// FloorRackAddress returns the address of a floor rack.
func FloorRackAddress(id string) Address {
	return Address{Kind: AddressKindFloorRack, ID: id}
}

// RoomAddress returns the address of a room.
func RoomAddress(id string) Address {
	return Address{Kind: AddressKindRoom, ID: id}
}

// ConnectionAddress returns the address of a building connection.
func ConnectionAddress(id string) Address {
	return Address{Kind: AddressKindBuildingConnection, ID: id}
}
