// Package survey owns the infrastructure tree of a site survey: the nested
// Building → Floor → Rack/Room → Device hierarchy, address resolution, and
// structural edits. All operations work on a caller-owned Survey snapshot
// (load, mutate, save); nothing here touches persistence.
package survey

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/felixroth/cableplan/pkg/models"
)

// Resolve walks the tree and returns the entity the address denotes.
// The returned value is one of *models.Building, *models.Rack, *models.Floor,
// *models.Room, or *models.BuildingConnection, pointing into the survey.
// Returns models.ErrNotFound when the ID is absent or the kind does not
// match where the ID actually lives.
func Resolve(s *models.Survey, addr models.Address) (any, error) {
	switch addr.Kind {
	case models.AddressKindBuilding:
		return FindBuilding(s, addr.ID)
	case models.AddressKindCentralRack:
		for i := range s.Buildings {
			if cr := s.Buildings[i].CentralRack; cr != nil && cr.ID == addr.ID {
				return cr, nil
			}
		}
		return nil, models.ErrNotFound
	case models.AddressKindFloor:
		return FindFloor(s, addr.ID)
	case models.AddressKindFloorRack:
		for i := range s.Buildings {
			for j := range s.Buildings[i].Floors {
				racks := s.Buildings[i].Floors[j].Racks
				for k := range racks {
					if racks[k].ID == addr.ID {
						return &racks[k], nil
					}
				}
			}
		}
		return nil, models.ErrNotFound
	case models.AddressKindRoom:
		return FindRoom(s, addr.ID)
	case models.AddressKindBuildingConnection:
		return FindConnection(s, addr.ID)
	default:
		return nil, models.ErrNotFound
	}
}

// FindBuilding returns the building with the given ID.
func FindBuilding(s *models.Survey, id string) (*models.Building, error) {
	for i := range s.Buildings {
		if s.Buildings[i].ID == id {
			return &s.Buildings[i], nil
		}
	}
	return nil, models.ErrNotFound
}

// FindFloor returns the floor with the given ID.
func FindFloor(s *models.Survey, id string) (*models.Floor, error) {
	for i := range s.Buildings {
		floors := s.Buildings[i].Floors
		for j := range floors {
			if floors[j].ID == id {
				return &floors[j], nil
			}
		}
	}
	return nil, models.ErrNotFound
}

// FindRoom returns the room with the given ID.
func FindRoom(s *models.Survey, id string) (*models.Room, error) {
	for i := range s.Buildings {
		floors := s.Buildings[i].Floors
		for j := range floors {
			rooms := floors[j].Rooms
			for k := range rooms {
				if rooms[k].ID == id {
					return &rooms[k], nil
				}
			}
		}
	}
	return nil, models.ErrNotFound
}

// FindRack returns the rack with the given ID, searching central racks and
// floor racks, along with the address kind it was found under.
func FindRack(s *models.Survey, id string) (*models.Rack, models.AddressKind, error) {
	for i := range s.Buildings {
		b := &s.Buildings[i]
		if b.CentralRack != nil && b.CentralRack.ID == id {
			return b.CentralRack, models.AddressKindCentralRack, nil
		}
		for j := range b.Floors {
			racks := b.Floors[j].Racks
			for k := range racks {
				if racks[k].ID == id {
					return &racks[k], models.AddressKindFloorRack, nil
				}
			}
		}
	}
	return nil, "", models.ErrNotFound
}

// FindConnection returns the building connection with the given ID.
func FindConnection(s *models.Survey, id string) (*models.BuildingConnection, error) {
	for i := range s.Connections {
		if s.Connections[i].ID == id {
			return &s.Connections[i], nil
		}
	}
	return nil, models.ErrNotFound
}

// AddressOf returns the canonical address for an entity already in the tree.
// It mirrors Resolve: for every reachable entity, Resolve(s, AddressOf(e))
// yields that entity.
func AddressOf(s *models.Survey, id string) (models.Address, error) {
	if _, err := FindBuilding(s, id); err == nil {
		return models.BuildingAddress(id), nil
	}
	if _, kind, err := FindRack(s, id); err == nil {
		if kind == models.AddressKindCentralRack {
			return models.CentralRackAddress(id), nil
		}
		return models.FloorRackAddress(id), nil
	}
	if _, err := FindFloor(s, id); err == nil {
		return models.FloorAddress(id), nil
	}
	if _, err := FindRoom(s, id); err == nil {
		return models.RoomAddress(id), nil
	}
	if _, err := FindConnection(s, id); err == nil {
		return models.ConnectionAddress(id), nil
	}
	return models.Address{}, models.ErrNotFound
}

// AddBuilding appends a building to the survey. An empty ID is assigned a
// fresh UUID. Duplicate names are allowed; the ID is the identity.
func AddBuilding(s *models.Survey, b models.Building) (*models.Building, error) {
	if err := validateBuilding(&b); err != nil {
		return nil, err
	}
	ensureID(&b.ID)
	s.Buildings = append(s.Buildings, b)
	return &s.Buildings[len(s.Buildings)-1], nil
}

// SetCentralRack attaches (or replaces) the central rack of a building.
// The parent must address a building.
func SetCentralRack(s *models.Survey, parent models.Address, r models.Rack) (*models.Rack, error) {
	if parent.Kind != models.AddressKindBuilding {
		return nil, fmt.Errorf("%w: central rack under %s", models.ErrInvalidParent, parent.Kind)
	}
	b, err := FindBuilding(s, parent.ID)
	if err != nil {
		return nil, err
	}
	if err := validateRack(&r); err != nil {
		return nil, err
	}
	ensureID(&r.ID)
	b.CentralRack = &r
	return b.CentralRack, nil
}

// AddFloor appends a floor to a building.
func AddFloor(s *models.Survey, parent models.Address, f models.Floor) (*models.Floor, error) {
	if parent.Kind != models.AddressKindBuilding {
		return nil, fmt.Errorf("%w: floor under %s", models.ErrInvalidParent, parent.Kind)
	}
	b, err := FindBuilding(s, parent.ID)
	if err != nil {
		return nil, err
	}
	if err := validateFloor(&f); err != nil {
		return nil, err
	}
	ensureID(&f.ID)
	b.Floors = append(b.Floors, f)
	return &b.Floors[len(b.Floors)-1], nil
}

// AddFloorRack appends a rack to a floor.
func AddFloorRack(s *models.Survey, parent models.Address, r models.Rack) (*models.Rack, error) {
	if parent.Kind != models.AddressKindFloor {
		return nil, fmt.Errorf("%w: floor rack under %s", models.ErrInvalidParent, parent.Kind)
	}
	f, err := FindFloor(s, parent.ID)
	if err != nil {
		return nil, err
	}
	if err := validateRack(&r); err != nil {
		return nil, err
	}
	ensureID(&r.ID)
	f.Racks = append(f.Racks, r)
	return &f.Racks[len(f.Racks)-1], nil
}

// AddRoom appends a room to a floor.
func AddRoom(s *models.Survey, parent models.Address, r models.Room) (*models.Room, error) {
	if parent.Kind != models.AddressKindFloor {
		return nil, fmt.Errorf("%w: room under %s", models.ErrInvalidParent, parent.Kind)
	}
	f, err := FindFloor(s, parent.ID)
	if err != nil {
		return nil, err
	}
	applyRoomDefaults(&r)
	if err := validateRoom(&r); err != nil {
		return nil, err
	}
	ensureID(&r.ID)
	f.Rooms = append(f.Rooms, r)
	return &f.Rooms[len(f.Rooms)-1], nil
}

// AddDevice appends a device to a room or rack. The parent must address a
// room, a floor rack, or a central rack.
func AddDevice(s *models.Survey, parent models.Address, d models.Device) (*models.Device, error) {
	if err := validateDevice(&d); err != nil {
		return nil, err
	}

	switch parent.Kind {
	case models.AddressKindRoom:
		room, err := FindRoom(s, parent.ID)
		if err != nil {
			return nil, err
		}
		ensureID(&d.ID)
		room.Devices = append(room.Devices, d)
		return &room.Devices[len(room.Devices)-1], nil

	case models.AddressKindFloorRack, models.AddressKindCentralRack:
		rack, kind, err := FindRack(s, parent.ID)
		if err != nil {
			return nil, err
		}
		if kind != parent.Kind {
			return nil, models.ErrNotFound
		}
		ensureID(&d.ID)
		rack.Devices = append(rack.Devices, d)
		return &rack.Devices[len(rack.Devices)-1], nil

	default:
		return nil, fmt.Errorf("%w: device under %s", models.ErrInvalidParent, parent.Kind)
	}
}

// AddConnection appends an inter-building link. Both endpoints must exist.
// When allowDuplicates is false, a second link between the same unordered
// pair of buildings is rejected.
func AddConnection(s *models.Survey, c models.BuildingConnection, allowDuplicates bool) (*models.BuildingConnection, error) {
	if err := validateConnection(s, &c); err != nil {
		return nil, err
	}
	if !allowDuplicates {
		for i := range s.Connections {
			if s.Connections[i].SamePair(c.FromBuildingID, c.ToBuildingID) {
				return nil, models.Validationf("to_building_id",
					"a link between these buildings already exists")
			}
		}
	}
	ensureID(&c.ID)
	s.Connections = append(s.Connections, c)
	return &s.Connections[len(s.Connections)-1], nil
}

// UpdateBuilding applies fn to a copy of the addressed building and commits
// it if both fn and validation succeed. The ID is immutable.
func UpdateBuilding(s *models.Survey, id string, fn func(*models.Building) error) error {
	b, err := FindBuilding(s, id)
	if err != nil {
		return err
	}
	cp := cloneBuilding(*b)
	if err := fn(&cp); err != nil {
		return err
	}
	cp.ID = b.ID
	if err := validateBuilding(&cp); err != nil {
		return err
	}
	*b = cp
	return nil
}

// UpdateFloor applies fn to a copy of the addressed floor and commits it if
// both fn and validation succeed.
func UpdateFloor(s *models.Survey, id string, fn func(*models.Floor) error) error {
	f, err := FindFloor(s, id)
	if err != nil {
		return err
	}
	cp := cloneFloor(*f)
	if err := fn(&cp); err != nil {
		return err
	}
	cp.ID = f.ID
	if err := validateFloor(&cp); err != nil {
		return err
	}
	*f = cp
	return nil
}

// UpdateRack applies fn to a copy of the addressed rack (central or floor)
// and commits it if both fn and validation succeed.
func UpdateRack(s *models.Survey, id string, fn func(*models.Rack) error) error {
	r, _, err := FindRack(s, id)
	if err != nil {
		return err
	}
	cp := cloneRack(*r)
	if err := fn(&cp); err != nil {
		return err
	}
	cp.ID = r.ID
	if err := validateRack(&cp); err != nil {
		return err
	}
	*r = cp
	return nil
}

// UpdateRoom applies fn to a copy of the addressed room and commits it if
// both fn and validation succeed.
func UpdateRoom(s *models.Survey, id string, fn func(*models.Room) error) error {
	r, err := FindRoom(s, id)
	if err != nil {
		return err
	}
	cp := cloneRoom(*r)
	if err := fn(&cp); err != nil {
		return err
	}
	cp.ID = r.ID
	applyRoomDefaults(&cp)
	if err := validateRoom(&cp); err != nil {
		return err
	}
	*r = cp
	return nil
}

// UpdateConnection applies fn to a copy of the addressed connection and
// commits it if both fn and validation succeed.
func UpdateConnection(s *models.Survey, id string, fn func(*models.BuildingConnection) error) error {
	c, err := FindConnection(s, id)
	if err != nil {
		return err
	}
	cp := *c
	if err := fn(&cp); err != nil {
		return err
	}
	cp.ID = c.ID
	if err := validateConnection(s, &cp); err != nil {
		return err
	}
	*c = cp
	return nil
}

// UpdateDevice applies fn to a copy of the device with the given ID,
// wherever it lives, and commits it if both fn and validation succeed.
func UpdateDevice(s *models.Survey, id string, fn func(*models.Device) error) error {
	d := findDevice(s, id)
	if d == nil {
		return models.ErrNotFound
	}
	cp := *d
	if err := fn(&cp); err != nil {
		return err
	}
	cp.ID = d.ID
	if err := validateDevice(&cp); err != nil {
		return err
	}
	*d = cp
	return nil
}

func findDevice(s *models.Survey, id string) *models.Device {
	find := func(devices []models.Device) *models.Device {
		for i := range devices {
			if devices[i].ID == id {
				return &devices[i]
			}
		}
		return nil
	}
	for i := range s.Buildings {
		b := &s.Buildings[i]
		if b.CentralRack != nil {
			if d := find(b.CentralRack.Devices); d != nil {
				return d
			}
		}
		for j := range b.Floors {
			f := &b.Floors[j]
			for k := range f.Racks {
				if d := find(f.Racks[k].Devices); d != nil {
					return d
				}
			}
			for k := range f.Rooms {
				if d := find(f.Rooms[k].Devices); d != nil {
					return d
				}
			}
		}
	}
	return nil
}

// Remove deletes the addressed entity and everything under it. Equipment
// bound to the removed node or any of its descendants is detached (its
// infrastructure reference cleared, the line itself kept); bindings to
// surviving nodes are untouched because IDs are durable.
//
// Returns the addresses that were removed from the tree.
func Remove(s *models.Survey, addr models.Address) ([]models.Address, error) {
	var removed []models.Address

	switch addr.Kind {
	case models.AddressKindBuilding:
		idx := -1
		for i := range s.Buildings {
			if s.Buildings[i].ID == addr.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, models.ErrNotFound
		}
		removed = buildingAddresses(&s.Buildings[idx])
		s.Buildings = append(s.Buildings[:idx], s.Buildings[idx+1:]...)

		// Links to a removed building are meaningless; drop them too.
		kept := s.Connections[:0]
		for _, c := range s.Connections {
			if c.FromBuildingID == addr.ID || c.ToBuildingID == addr.ID {
				removed = append(removed, models.ConnectionAddress(c.ID))
				continue
			}
			kept = append(kept, c)
		}
		s.Connections = kept

	case models.AddressKindCentralRack:
		found := false
		for i := range s.Buildings {
			b := &s.Buildings[i]
			if b.CentralRack != nil && b.CentralRack.ID == addr.ID {
				removed = rackAddresses(b.CentralRack, models.AddressKindCentralRack)
				b.CentralRack = nil
				found = true
				break
			}
		}
		if !found {
			return nil, models.ErrNotFound
		}

	case models.AddressKindFloor:
		found := false
		for i := range s.Buildings {
			b := &s.Buildings[i]
			for j := range b.Floors {
				if b.Floors[j].ID == addr.ID {
					removed = floorAddresses(&b.Floors[j])
					b.Floors = append(b.Floors[:j], b.Floors[j+1:]...)
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if !found {
			return nil, models.ErrNotFound
		}

	case models.AddressKindFloorRack:
		found := false
		for i := range s.Buildings {
			for j := range s.Buildings[i].Floors {
				f := &s.Buildings[i].Floors[j]
				for k := range f.Racks {
					if f.Racks[k].ID == addr.ID {
						removed = rackAddresses(&f.Racks[k], models.AddressKindFloorRack)
						f.Racks = append(f.Racks[:k], f.Racks[k+1:]...)
						found = true
						break
					}
				}
				if found {
					break
				}
			}
			if found {
				break
			}
		}
		if !found {
			return nil, models.ErrNotFound
		}

	case models.AddressKindRoom:
		found := false
		for i := range s.Buildings {
			for j := range s.Buildings[i].Floors {
				f := &s.Buildings[i].Floors[j]
				for k := range f.Rooms {
					if f.Rooms[k].ID == addr.ID {
						removed = []models.Address{addr}
						f.Rooms = append(f.Rooms[:k], f.Rooms[k+1:]...)
						found = true
						break
					}
				}
				if found {
					break
				}
			}
			if found {
				break
			}
		}
		if !found {
			return nil, models.ErrNotFound
		}

	case models.AddressKindBuildingConnection:
		idx := -1
		for i := range s.Connections {
			if s.Connections[i].ID == addr.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, models.ErrNotFound
		}
		removed = []models.Address{addr}
		s.Connections = append(s.Connections[:idx], s.Connections[idx+1:]...)

	default:
		return nil, models.ErrNotFound
	}

	detachEquipment(s, removed)
	return removed, nil
}

// RemoveDevice deletes a device from whichever room or rack holds it.
func RemoveDevice(s *models.Survey, deviceID string) error {
	for i := range s.Buildings {
		b := &s.Buildings[i]
		if b.CentralRack != nil && removeDeviceFrom(&b.CentralRack.Devices, deviceID) {
			return nil
		}
		for j := range b.Floors {
			f := &b.Floors[j]
			for k := range f.Racks {
				if removeDeviceFrom(&f.Racks[k].Devices, deviceID) {
					return nil
				}
			}
			for k := range f.Rooms {
				if removeDeviceFrom(&f.Rooms[k].Devices, deviceID) {
					return nil
				}
			}
		}
	}
	return models.ErrNotFound
}

func removeDeviceFrom(devices *[]models.Device, id string) bool {
	for i := range *devices {
		if (*devices)[i].ID == id {
			*devices = append((*devices)[:i], (*devices)[i+1:]...)
			return true
		}
	}
	return false
}

// detachEquipment clears the infrastructure binding of every ledger item
// whose reference is in the removed set.
func detachEquipment(s *models.Survey, removed []models.Address) {
	if len(removed) == 0 {
		return
	}
	set := make(map[models.Address]struct{}, len(removed))
	for _, a := range removed {
		set[a] = struct{}{}
	}
	for i := range s.Equipment {
		ref := s.Equipment[i].InfrastructureRef
		if ref.IsZero() {
			continue
		}
		if _, gone := set[ref]; gone {
			s.Equipment[i].InfrastructureRef = models.Address{}
		}
	}
}

// buildingAddresses collects the addresses of a building and all its
// descendants.
func buildingAddresses(b *models.Building) []models.Address {
	out := []models.Address{models.BuildingAddress(b.ID)}
	if b.CentralRack != nil {
		out = append(out, rackAddresses(b.CentralRack, models.AddressKindCentralRack)...)
	}
	for i := range b.Floors {
		out = append(out, floorAddresses(&b.Floors[i])...)
	}
	return out
}

func floorAddresses(f *models.Floor) []models.Address {
	out := []models.Address{models.FloorAddress(f.ID)}
	for i := range f.Racks {
		out = append(out, rackAddresses(&f.Racks[i], models.AddressKindFloorRack)...)
	}
	for i := range f.Rooms {
		out = append(out, models.RoomAddress(f.Rooms[i].ID))
	}
	return out
}

func rackAddresses(r *models.Rack, kind models.AddressKind) []models.Address {
	return []models.Address{{Kind: kind, ID: r.ID}}
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.New().String()
	}
}
