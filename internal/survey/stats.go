package survey

import "github.com/felixroth/cableplan/pkg/models"

// Stats holds the count rollups for a survey, a building, or a floor.
// Count-derived values from a typical room (outlets, devices) are multiplied
// by the room's identical-rooms count.
type Stats struct {
	TotalBuildings              int `json:"total_buildings"`
	TotalFloors                 int `json:"total_floors"`
	TotalRooms                  int `json:"total_rooms"`
	TotalOutlets                int `json:"total_outlets"`
	TotalRacks                  int `json:"total_racks"`
	TotalDevices                int `json:"total_devices"`
	TotalCableTerminations      int `json:"total_cable_terminations"`
	TotalFiberStrands           int `json:"total_fiber_strands"`
	TotalTerminatedFiberStrands int `json:"total_terminated_fiber_strands"`
}

// AggregateTotals computes the survey-wide rollup in a single pass.
func AggregateTotals(s *models.Survey) Stats {
	var st Stats
	for i := range s.Buildings {
		st.add(buildingStats(&s.Buildings[i]))
	}
	return st
}

// BuildingTotals computes the rollup for one building.
func BuildingTotals(b *models.Building) Stats {
	return buildingStats(b)
}

// FloorTotals computes the rollup for one floor.
func FloorTotals(f *models.Floor) Stats {
	return floorStats(f)
}

func buildingStats(b *models.Building) Stats {
	var st Stats
	st.TotalBuildings = 1
	if b.CentralRack != nil {
		st.add(rackStats(b.CentralRack))
	}
	for i := range b.Floors {
		st.add(floorStats(&b.Floors[i]))
	}
	return st
}

func floorStats(f *models.Floor) Stats {
	var st Stats
	st.TotalFloors = 1
	for i := range f.Racks {
		st.add(rackStats(&f.Racks[i]))
	}
	for i := range f.Rooms {
		st.add(roomStats(&f.Rooms[i]))
	}
	return st
}

func rackStats(r *models.Rack) Stats {
	var st Stats
	st.TotalRacks = 1
	for _, ct := range r.CableTerminations {
		st.TotalCableTerminations += ct.Count
	}
	for _, ft := range r.FiberTerminations {
		st.TotalFiberStrands += ft.TotalStrands
		st.TotalTerminatedFiberStrands += ft.TerminatedStrands
	}
	st.TotalDevices = infrastructureDevices(r.Devices)
	return st
}

func roomStats(r *models.Room) Stats {
	mult := r.Multiplier()
	return Stats{
		TotalRooms:   1,
		TotalOutlets: r.Outlets * mult,
		TotalDevices: infrastructureDevices(r.Devices) * mult,
	}
}

// infrastructureDevices counts devices that are not equipment-derived.
func infrastructureDevices(devices []models.Device) int {
	n := 0
	for i := range devices {
		if devices[i].IsInfrastructure() {
			n++
		}
	}
	return n
}

func (st *Stats) add(o Stats) {
	st.TotalBuildings += o.TotalBuildings
	st.TotalFloors += o.TotalFloors
	st.TotalRooms += o.TotalRooms
	st.TotalOutlets += o.TotalOutlets
	st.TotalRacks += o.TotalRacks
	st.TotalDevices += o.TotalDevices
	st.TotalCableTerminations += o.TotalCableTerminations
	st.TotalFiberStrands += o.TotalFiberStrands
	st.TotalTerminatedFiberStrands += o.TotalTerminatedFiberStrands
}
