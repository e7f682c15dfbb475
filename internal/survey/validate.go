package survey

import (
	"slices"

	"github.com/felixroth/cableplan/pkg/models"
)

// Mutation validators. Bounds that the original UI only hinted at
// (terminated strands vs total, margin cap) are hard-enforced here; a
// rejected mutation leaves the snapshot untouched.

func validateBuilding(b *models.Building) error {
	if b.Name == "" {
		return models.Validationf("name", "building name is required")
	}
	return nil
}

func validateFloor(f *models.Floor) error {
	if f.Name == "" {
		return models.Validationf("name", "floor name is required")
	}
	return nil
}

func validateRack(r *models.Rack) error {
	if r.Name == "" {
		return models.Validationf("name", "rack name is required")
	}
	if r.Units < 0 {
		return models.Validationf("units", "rack units must not be negative")
	}
	for _, ct := range r.CableTerminations {
		if ct.Count < 0 {
			return models.Validationf("cable_terminations",
				"termination count must not be negative (%s)", ct.Type)
		}
	}
	for _, ft := range r.FiberTerminations {
		if ft.TotalStrands < 0 || ft.TerminatedStrands < 0 {
			return models.Validationf("fiber_terminations",
				"strand counts must not be negative (%s)", ft.Type)
		}
		if ft.TerminatedStrands > ft.TotalStrands {
			return models.Validationf("fiber_terminations",
				"terminated strands (%d) exceed total strands (%d) for %s",
				ft.TerminatedStrands, ft.TotalStrands, ft.Type)
		}
	}
	return nil
}

func validateRoom(r *models.Room) error {
	if r.Name == "" {
		return models.Validationf("name", "room name is required")
	}
	if r.Outlets < 0 {
		return models.Validationf("outlets", "outlet count must not be negative")
	}
	if r.IsTypicalRoom && r.IdenticalRoomsCount < 1 {
		return models.Validationf("identical_rooms_count",
			"a typical room must stand for at least one room")
	}
	return nil
}

func validateDevice(d *models.Device) error {
	if d.Name == "" {
		return models.Validationf("name", "device name is required")
	}
	return nil
}

func validateConnection(s *models.Survey, c *models.BuildingConnection) error {
	if c.FromBuildingID == c.ToBuildingID {
		return models.Validationf("to_building_id", "a building cannot link to itself")
	}
	if _, err := FindBuilding(s, c.FromBuildingID); err != nil {
		return models.Validationf("from_building_id", "building %q does not exist", c.FromBuildingID)
	}
	if _, err := FindBuilding(s, c.ToBuildingID); err != nil {
		return models.Validationf("to_building_id", "building %q does not exist", c.ToBuildingID)
	}
	if c.DistanceMeters != nil && *c.DistanceMeters < 0 {
		return models.Validationf("distance_meters", "distance must not be negative")
	}
	return nil
}

// applyRoomDefaults normalizes stored values that have UI defaults.
func applyRoomDefaults(r *models.Room) {
	if r.IdenticalRoomsCount == 0 {
		r.IdenticalRoomsCount = 1
	}
	if r.Type == "" {
		r.Type = models.RoomTypeRoom
	}
	if r.ConnectionType == "" {
		r.ConnectionType = models.RoomConnectionFloorRack
	}
}

// Deep-copy helpers so update closures operate on a detached copy and a
// failed validation cannot leak partial edits into the snapshot.

func cloneBuilding(b models.Building) models.Building {
	cp := b
	cp.Images = slices.Clone(b.Images)
	if b.CentralRack != nil {
		cr := cloneRack(*b.CentralRack)
		cp.CentralRack = &cr
	}
	cp.Floors = make([]models.Floor, len(b.Floors))
	for i := range b.Floors {
		cp.Floors[i] = cloneFloor(b.Floors[i])
	}
	return cp
}

func cloneFloor(f models.Floor) models.Floor {
	cp := f
	cp.Racks = make([]models.Rack, len(f.Racks))
	for i := range f.Racks {
		cp.Racks[i] = cloneRack(f.Racks[i])
	}
	cp.Rooms = make([]models.Room, len(f.Rooms))
	for i := range f.Rooms {
		cp.Rooms[i] = cloneRoom(f.Rooms[i])
	}
	return cp
}

func cloneRack(r models.Rack) models.Rack {
	cp := r
	cp.CableTerminations = slices.Clone(r.CableTerminations)
	cp.FiberTerminations = slices.Clone(r.FiberTerminations)
	cp.Devices = slices.Clone(r.Devices)
	return cp
}

func cloneRoom(r models.Room) models.Room {
	cp := r
	cp.Devices = slices.Clone(r.Devices)
	return cp
}
