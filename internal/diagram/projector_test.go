package diagram

import (
	"reflect"
	"testing"

	"github.com/felixroth/cableplan/internal/testutil"
	"github.com/felixroth/cableplan/pkg/models"
)

func findNode(g Graph, id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

func countEdges(g Graph, kind EdgeKind) int {
	n := 0
	for _, e := range g.Edges {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func TestProjectHierarchy(t *testing.T) {
	s := testutil.NewSurvey()
	b := &s.Buildings[0]

	g := Project(&s)

	// Survey root, building, central rack, floor, floor rack, room.
	if len(g.Nodes) != 6 {
		t.Fatalf("nodes = %d, want 6", len(g.Nodes))
	}

	root, ok := findNode(g, "survey:"+s.ID)
	if !ok {
		t.Fatal("missing survey root node")
	}
	if root.Label != s.Name {
		t.Errorf("root label = %q, want %q", root.Label, s.Name)
	}
	if root.Meta["total_rooms"] != 1 {
		t.Errorf("root meta total_rooms = %v, want 1", root.Meta["total_rooms"])
	}

	for _, id := range []string{
		"building:" + b.ID,
		"central_rack:" + b.CentralRack.ID,
		"floor:" + b.Floors[0].ID,
		"floor_rack:" + b.Floors[0].Racks[0].ID,
		"room:" + b.Floors[0].Rooms[0].ID,
	} {
		if _, ok := findNode(g, id); !ok {
			t.Errorf("missing node %s", id)
		}
	}

	if n := countEdges(g, EdgeKindHierarchy); n != 5 {
		t.Errorf("hierarchy edges = %d, want 5", n)
	}
}

func TestProjectDeterministic(t *testing.T) {
	a := testutil.NewBuilding()
	b := testutil.NewBuilding(testutil.WithBuildingName("Building B"))
	s := testutil.NewSurvey(testutil.WithBuildings(a, b))
	s.Connections = []models.BuildingConnection{
		{ID: "c1", FromBuildingID: a.ID, ToBuildingID: b.ID, Type: models.ConnectionFiber},
	}

	first := Project(&s)
	second := Project(&s)
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated projections of the same survey differ")
	}
}

func TestProjectTypicalRoomLabel(t *testing.T) {
	b := testutil.NewBuilding()
	b.Floors[0].Rooms = []models.Room{testutil.NewRoom(testutil.AsTypical(3))}
	s := testutil.NewSurvey(testutil.WithBuildings(b))

	g := Project(&s)
	n, ok := findNode(g, "room:"+b.Floors[0].Rooms[0].ID)
	if !ok {
		t.Fatal("missing room node")
	}
	if n.Label != "Room 101 (x3)" {
		t.Errorf("label = %q, want %q", n.Label, "Room 101 (x3)")
	}
}

func TestProjectRoomUplinkFloorRack(t *testing.T) {
	s := testutil.NewSurvey()
	b := &s.Buildings[0]
	rackID := "floor_rack:" + b.Floors[0].Racks[0].ID
	roomID := "room:" + b.Floors[0].Rooms[0].ID

	g := Project(&s)
	found := false
	for _, e := range g.Edges {
		if e.Kind == EdgeKindUplink && e.From == rackID && e.To == roomID {
			found = true
		}
	}
	if !found {
		t.Errorf("missing uplink edge %s -> %s", rackID, roomID)
	}
}

func TestProjectRoomUplinkCentralRack(t *testing.T) {
	b := testutil.NewBuilding()
	room := testutil.NewRoom()
	room.ConnectionType = models.RoomConnectionCentralRack
	b.Floors[0].Rooms = []models.Room{room}
	s := testutil.NewSurvey(testutil.WithBuildings(b))

	g := Project(&s)
	centralID := "central_rack:" + b.CentralRack.ID
	roomID := "room:" + room.ID
	found := false
	for _, e := range g.Edges {
		if e.Kind == EdgeKindUplink && e.From == centralID && e.To == roomID {
			found = true
		}
	}
	if !found {
		t.Errorf("missing uplink edge %s -> %s", centralID, roomID)
	}
}

func TestProjectOmitsUplinkWithoutCentralRack(t *testing.T) {
	b := testutil.NewBuilding(testutil.WithoutCentralRack())
	room := testutil.NewRoom()
	room.ConnectionType = models.RoomConnectionCentralRack
	b.Floors[0].Rooms = []models.Room{room}
	s := testutil.NewSurvey(testutil.WithBuildings(b))

	g := Project(&s)
	if n := countEdges(g, EdgeKindUplink); n != 0 {
		t.Errorf("uplink edges = %d, want 0 when the designated rack is absent", n)
	}
}

func TestProjectConnections(t *testing.T) {
	a := testutil.NewBuilding()
	b := testutil.NewBuilding(testutil.WithBuildingName("Building B"))
	s := testutil.NewSurvey(testutil.WithBuildings(a, b))
	s.Connections = []models.BuildingConnection{
		{ID: "c1", FromBuildingID: a.ID, ToBuildingID: b.ID, Type: models.ConnectionFiber},
	}

	g := Project(&s)
	found := false
	for _, e := range g.Edges {
		if e.Kind == EdgeKindConnection {
			found = true
			if e.From != "building:"+a.ID || e.To != "building:"+b.ID {
				t.Errorf("connection edge %s -> %s, want buildings", e.From, e.To)
			}
			if e.Label != "fiber" {
				t.Errorf("connection label = %q, want fiber", e.Label)
			}
		}
	}
	if !found {
		t.Error("missing connection edge")
	}
}

func TestProjectDevices(t *testing.T) {
	b := testutil.NewBuilding()
	b.Floors[0].Rooms[0].Devices = []models.Device{
		{ID: "d1", Name: "AP-1", Type: models.DeviceTypeAccessPoint},
	}
	s := testutil.NewSurvey(testutil.WithBuildings(b))

	g := Project(&s)
	n, ok := findNode(g, "device:d1")
	if !ok {
		t.Fatal("missing device node")
	}
	if n.Label != "AP-1" {
		t.Errorf("device label = %q, want AP-1", n.Label)
	}
}
