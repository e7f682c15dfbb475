// Package diagram projects a survey's infrastructure tree and inter-building
// links into a generic node/edge graph for an external layout engine. The
// projection is read-only and deterministic: the same survey always yields
// the same graph, byte for byte, so downstream layout is reproducible.
package diagram

import (
	"fmt"

	"github.com/felixroth/cableplan/internal/survey"
	"github.com/felixroth/cableplan/pkg/models"
)

// NodeKind tags the tree level a graph node came from.
type NodeKind string

const (
	NodeKindSurvey      NodeKind = "survey"
	NodeKindBuilding    NodeKind = "building"
	NodeKindCentralRack NodeKind = "central_rack"
	NodeKindFloor       NodeKind = "floor"
	NodeKindFloorRack   NodeKind = "floor_rack"
	NodeKindRoom        NodeKind = "room"
	NodeKindDevice      NodeKind = "device"
)

// EdgeKind distinguishes hierarchy edges from room-to-rack uplinks and
// inter-building links.
type EdgeKind string

const (
	EdgeKindHierarchy  EdgeKind = "hierarchy"
	EdgeKindUplink     EdgeKind = "uplink"
	EdgeKindConnection EdgeKind = "connection"
)

// Node is one vertex of the projected graph. IDs are derived from the
// underlying entity UUIDs and are stable across projections.
type Node struct {
	ID    string         `json:"id"`
	Kind  NodeKind       `json:"kind"`
	Label string         `json:"label"`
	Meta  map[string]any `json:"meta,omitempty"`
}

// Edge is one link of the projected graph.
type Edge struct {
	From  string   `json:"from"`
	To    string   `json:"to"`
	Kind  EdgeKind `json:"kind"`
	Label string   `json:"label,omitempty"`
}

// Graph is the layout-agnostic projection output.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Project builds the graph for a survey: one root node carrying the
// aggregate stats, the building/floor/rack/room hierarchy, device leaves,
// and one edge per building connection.
//
// A room always gets an edge from its floor, plus an uplink edge from the
// rack its connection type designates: the floor's first rack, or the
// building's central rack. When the room designates the central rack but
// the building has none, the uplink is silently omitted.
func Project(s *models.Survey) Graph {
	g := Graph{Nodes: []Node{}, Edges: []Edge{}}

	rootID := nodeID(NodeKindSurvey, s.ID)
	stats := survey.AggregateTotals(s)
	g.Nodes = append(g.Nodes, Node{
		ID:    rootID,
		Kind:  NodeKindSurvey,
		Label: s.Name,
		Meta: map[string]any{
			"total_buildings": stats.TotalBuildings,
			"total_floors":    stats.TotalFloors,
			"total_rooms":     stats.TotalRooms,
			"total_outlets":   stats.TotalOutlets,
			"total_racks":     stats.TotalRacks,
			"total_devices":   stats.TotalDevices,
		},
	})

	for i := range s.Buildings {
		projectBuilding(&g, rootID, &s.Buildings[i])
	}

	for i := range s.Connections {
		c := &s.Connections[i]
		g.Edges = append(g.Edges, Edge{
			From:  nodeID(NodeKindBuilding, c.FromBuildingID),
			To:    nodeID(NodeKindBuilding, c.ToBuildingID),
			Kind:  EdgeKindConnection,
			Label: string(c.Type),
		})
	}

	return g
}

func projectBuilding(g *Graph, rootID string, b *models.Building) {
	bID := nodeID(NodeKindBuilding, b.ID)
	g.Nodes = append(g.Nodes, Node{ID: bID, Kind: NodeKindBuilding, Label: b.Name})
	g.Edges = append(g.Edges, Edge{From: rootID, To: bID, Kind: EdgeKindHierarchy})

	var centralID string
	if b.CentralRack != nil {
		centralID = nodeID(NodeKindCentralRack, b.CentralRack.ID)
		g.Nodes = append(g.Nodes, Node{ID: centralID, Kind: NodeKindCentralRack, Label: b.CentralRack.Name})
		g.Edges = append(g.Edges, Edge{From: bID, To: centralID, Kind: EdgeKindHierarchy})
		projectDevices(g, centralID, b.CentralRack.Devices)
	}

	for i := range b.Floors {
		projectFloor(g, bID, centralID, &b.Floors[i])
	}
}

func projectFloor(g *Graph, buildingID, centralID string, f *models.Floor) {
	fID := nodeID(NodeKindFloor, f.ID)
	g.Nodes = append(g.Nodes, Node{ID: fID, Kind: NodeKindFloor, Label: f.Name})
	g.Edges = append(g.Edges, Edge{From: buildingID, To: fID, Kind: EdgeKindHierarchy})

	var firstRackID string
	for i := range f.Racks {
		r := &f.Racks[i]
		rID := nodeID(NodeKindFloorRack, r.ID)
		if firstRackID == "" {
			firstRackID = rID
		}
		g.Nodes = append(g.Nodes, Node{ID: rID, Kind: NodeKindFloorRack, Label: r.Name})
		g.Edges = append(g.Edges, Edge{From: fID, To: rID, Kind: EdgeKindHierarchy})
		projectDevices(g, rID, r.Devices)
	}

	for i := range f.Rooms {
		room := &f.Rooms[i]
		roomID := nodeID(NodeKindRoom, room.ID)
		label := room.Name
		if room.IsTypicalRoom && room.IdenticalRoomsCount > 1 {
			label = fmt.Sprintf("%s (x%d)", room.Name, room.IdenticalRoomsCount)
		}
		g.Nodes = append(g.Nodes, Node{ID: roomID, Kind: NodeKindRoom, Label: label})
		g.Edges = append(g.Edges, Edge{From: fID, To: roomID, Kind: EdgeKindHierarchy})

		// Uplink from the designated rack, when one exists.
		switch room.ConnectionType {
		case models.RoomConnectionCentralRack:
			if centralID != "" {
				g.Edges = append(g.Edges, Edge{From: centralID, To: roomID, Kind: EdgeKindUplink})
			}
		default:
			if firstRackID != "" {
				g.Edges = append(g.Edges, Edge{From: firstRackID, To: roomID, Kind: EdgeKindUplink})
			}
		}

		projectDevices(g, roomID, room.Devices)
	}
}

func projectDevices(g *Graph, parentID string, devices []models.Device) {
	for i := range devices {
		d := &devices[i]
		dID := nodeID(NodeKindDevice, d.ID)
		g.Nodes = append(g.Nodes, Node{ID: dID, Kind: NodeKindDevice, Label: d.Name})
		g.Edges = append(g.Edges, Edge{From: parentID, To: dID, Kind: EdgeKindHierarchy})
	}
}

func nodeID(kind NodeKind, id string) string {
	return string(kind) + ":" + id
}
