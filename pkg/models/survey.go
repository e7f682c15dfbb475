package models

import "time"

// RoomType categorizes a surveyed room.
type RoomType string

const (
	RoomTypeRoom        RoomType = "room"
	RoomTypeCloset      RoomType = "closet"
	RoomTypeCorridor    RoomType = "corridor"
	RoomTypeLobby       RoomType = "lobby"
	RoomTypeOutdoor     RoomType = "outdoor"
	RoomTypeOffice      RoomType = "office"
	RoomTypeMeetingRoom RoomType = "meeting_room"
	RoomTypeOther       RoomType = "other"
)

// RoomConnection designates which rack a room's outlets terminate at.
type RoomConnection string

const (
	RoomConnectionFloorRack   RoomConnection = "floor_rack"
	RoomConnectionCentralRack RoomConnection = "central_rack"
)

// DeviceType categorizes an infrastructure device.
type DeviceType string

const (
	DeviceTypeRouter      DeviceType = "router"
	DeviceTypeSwitch      DeviceType = "switch"
	DeviceTypeAccessPoint DeviceType = "access_point"
	DeviceTypePhone       DeviceType = "phone"
	DeviceTypeTV          DeviceType = "tv"
	DeviceTypeOther       DeviceType = "other"
)

// Device represents a device placed in a room or mounted in a rack.
//
// ItemType is empty for pure infrastructure devices. Devices created from a
// BOM line carry the originating item type (product/service) and are excluded
// from infrastructure device counts.
type Device struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Type        DeviceType `json:"type"`
	Brand       string     `json:"brand,omitempty"`
	Model       string     `json:"model,omitempty"`
	IPAddress   string     `json:"ip_address,omitempty"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	ItemType    ItemType   `json:"item_type,omitempty"`
}

// IsInfrastructure reports whether the device counts toward infrastructure
// device rollups (i.e. it was not derived from an equipment line).
func (d *Device) IsInfrastructure() bool {
	return d.ItemType == ""
}

// CableTermination is a count of terminated copper cable ends of one type
// (e.g. "cat6") at a rack.
type CableTermination struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// FiberTermination tracks fiber strand counts of one type at a rack.
type FiberTermination struct {
	Type              string `json:"type"`
	TotalStrands      int    `json:"total_strands"`
	TerminatedStrands int    `json:"terminated_strands"`
}

// PercentTerminated returns the terminated share as a 0-100 percentage.
// A termination with zero total strands reports 0.
func (f FiberTermination) PercentTerminated() float64 {
	if f.TotalStrands <= 0 {
		return 0
	}
	return float64(f.TerminatedStrands) / float64(f.TotalStrands) * 100
}

// Rack is a distribution rack. The same structure serves both the building
// central rack and per-floor racks; tree position distinguishes them.
type Rack struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Code              string             `json:"code,omitempty"`
	Location          string             `json:"location,omitempty"`
	Units             int                `json:"units,omitempty"`
	CableTerminations []CableTermination `json:"cable_terminations,omitempty"`
	FiberTerminations []FiberTermination `json:"fiber_terminations,omitempty"`
	Devices           []Device           `json:"devices,omitempty"`
}

// Room is a surveyed room on a floor.
type Room struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	Type                RoomType       `json:"type"`
	ConnectionType      RoomConnection `json:"connection_type"`
	Outlets             int            `json:"outlets"`
	IsTypicalRoom       bool           `json:"is_typical_room"`
	IdenticalRoomsCount int            `json:"identical_rooms_count"`
	Devices             []Device       `json:"devices,omitempty"`
}

// Multiplier returns the rollup multiplier for count-derived aggregates.
// A typical room stands for IdenticalRoomsCount identical rooms; a
// non-typical room always contributes once, whatever the stored count says.
func (r *Room) Multiplier() int {
	if r.IsTypicalRoom && r.IdenticalRoomsCount > 0 {
		return r.IdenticalRoomsCount
	}
	return 1
}

// Floor is a building level holding racks and rooms. A floor may legally
// have no racks.
type Floor struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Level        *int   `json:"level,omitempty"`
	BlueprintURL string `json:"blueprint_url,omitempty"`
	Racks        []Rack `json:"racks,omitempty"`
	Rooms        []Room `json:"rooms,omitempty"`
}

// Building is the top-level unit of a survey. Duplicate building names are
// allowed; identity is the ID.
type Building struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Code        string   `json:"code,omitempty"`
	Address     string   `json:"address,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	CentralRack *Rack    `json:"central_rack,omitempty"`
	Floors      []Floor  `json:"floors,omitempty"`
	Images      []string `json:"images,omitempty"`
}

// ConnectionMedium is the physical medium of an inter-building link.
type ConnectionMedium string

const (
	ConnectionWireless  ConnectionMedium = "wireless"
	ConnectionFiber     ConnectionMedium = "fiber"
	ConnectionCoaxial   ConnectionMedium = "coaxial"
	ConnectionEthernet  ConnectionMedium = "ethernet"
	ConnectionPowerline ConnectionMedium = "powerline"
)

// BuildingConnection is a physical link between two buildings. Stored
// directionally but symmetric in meaning; multiple links between the same
// pair are distinct entries.
type BuildingConnection struct {
	ID             string           `json:"id"`
	FromBuildingID string           `json:"from_building_id"`
	ToBuildingID   string           `json:"to_building_id"`
	Type           ConnectionMedium `json:"type"`
	Description    string           `json:"description,omitempty"`
	DistanceMeters *float64         `json:"distance_meters,omitempty"`
	Notes          string           `json:"notes,omitempty"`
}

// SamePair reports whether the connection links the same unordered pair of
// buildings as (a, b).
func (c *BuildingConnection) SamePair(a, b string) bool {
	return (c.FromBuildingID == a && c.ToBuildingID == b) ||
		(c.FromBuildingID == b && c.ToBuildingID == a)
}

// Survey is the persisted document for one site survey: the infrastructure
// tree, inter-building connections, and the equipment ledger. The shape is
// what the persistence service exchanges, so it is directly serializable.
type Survey struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Buildings   []Building           `json:"buildings"`
	Connections []BuildingConnection `json:"building_connections"`
	Equipment   []EquipmentItem      `json:"equipment"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}
