package survey

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/felixroth/cableplan/internal/plugin"
	"github.com/felixroth/cableplan/internal/server"
	"github.com/felixroth/cableplan/internal/services"
	"github.com/felixroth/cableplan/pkg/models"
)

// createSurveyRequest is the JSON body for POST /surveys.
type createSurveyRequest struct {
	Name string `json:"name"`
}

// renameSurveyRequest is the JSON body for PUT /surveys/{id}.
type renameSurveyRequest struct {
	Name string `json:"name"`
}

// statsResponse is the rollup payload for GET /surveys/{id}/stats.
type statsResponse struct {
	Totals    Stats            `json:"totals"`
	Buildings []buildingRollup `json:"buildings"`
}

type buildingRollup struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Stats Stats  `json:"stats"`
}

// handleListSurveys returns survey summaries.
//
//	@Summary	List surveys
//	@Tags		survey
//	@Produce	json
//	@Router		/survey/surveys [get]
func (p *Plugin) handleListSurveys(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := services.ListOptions{
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("order"),
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		opts.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil {
		opts.Offset = v
	}

	res, err := p.repo.List(r.Context(), services.SurveyFilter{Search: q.Get("q")}, opts)
	if err != nil {
		p.logger.Error("list surveys", zap.Error(err))
		server.FromError(w, err, r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleCreateSurvey creates an empty survey document.
//
//	@Summary	Create survey
//	@Tags		survey
//	@Accept		json
//	@Produce	json
//	@Router		/survey/surveys [post]
func (p *Plugin) handleCreateSurvey(w http.ResponseWriter, r *http.Request) {
	var req createSurveyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid JSON body", r.URL.Path)
		return
	}
	if req.Name == "" {
		server.Unprocessable(w, "name is required", r.URL.Path)
		return
	}

	s := models.Survey{Name: req.Name}
	if err := p.repo.Create(r.Context(), &s); err != nil {
		p.logger.Error("create survey", zap.Error(err))
		server.FromError(w, err, r.URL.Path)
		return
	}

	p.publish(r, plugin.TopicSurveyCreated, s.ID)
	writeJSON(w, http.StatusCreated, s)
}

// handleGetSurvey returns the full survey document.
func (p *Plugin) handleGetSurvey(w http.ResponseWriter, r *http.Request) {
	s, err := p.repo.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		server.FromError(w, err, r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// handleRenameSurvey updates the survey name.
func (p *Plugin) handleRenameSurvey(w http.ResponseWriter, r *http.Request) {
	var req renameSurveyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid JSON body", r.URL.Path)
		return
	}
	if req.Name == "" {
		server.Unprocessable(w, "name is required", r.URL.Path)
		return
	}

	p.mutate(w, r, http.StatusOK, func(s *models.Survey) (any, error) {
		s.Name = req.Name
		return s, nil
	})
}

// handleDeleteSurvey removes the survey document.
func (p *Plugin) handleDeleteSurvey(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := p.repo.Delete(r.Context(), id); err != nil {
		server.FromError(w, err, r.URL.Path)
		return
	}
	p.publish(r, plugin.TopicSurveyDeleted, id)
	w.WriteHeader(http.StatusNoContent)
}

// handleSurveyStats returns aggregate and per-building rollups.
//
//	@Summary	Survey statistics
//	@Tags		survey
//	@Produce	json
//	@Router		/survey/surveys/{id}/stats [get]
func (p *Plugin) handleSurveyStats(w http.ResponseWriter, r *http.Request) {
	s, err := p.repo.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		server.FromError(w, err, r.URL.Path)
		return
	}

	resp := statsResponse{
		Totals:    AggregateTotals(s),
		Buildings: make([]buildingRollup, 0, len(s.Buildings)),
	}
	for i := range s.Buildings {
		b := &s.Buildings[i]
		resp.Buildings = append(resp.Buildings, buildingRollup{
			ID:    b.ID,
			Name:  b.Name,
			Stats: BuildingTotals(b),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleAddBuilding appends a building to the survey.
func (p *Plugin) handleAddBuilding(w http.ResponseWriter, r *http.Request) {
	var b models.Building
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		server.BadRequest(w, "invalid JSON body", r.URL.Path)
		return
	}
	p.mutate(w, r, http.StatusCreated, func(s *models.Survey) (any, error) {
		return AddBuilding(s, b)
	})
}

// handleSetCentralRack creates or replaces a building's central rack.
func (p *Plugin) handleSetCentralRack(w http.ResponseWriter, r *http.Request) {
	var rack models.Rack
	if err := json.NewDecoder(r.Body).Decode(&rack); err != nil {
		server.BadRequest(w, "invalid JSON body", r.URL.Path)
		return
	}
	parent := models.BuildingAddress(r.PathValue("buildingID"))
	p.mutate(w, r, http.StatusOK, func(s *models.Survey) (any, error) {
		return SetCentralRack(s, parent, rack)
	})
}

// handleAddFloor appends a floor to a building.
func (p *Plugin) handleAddFloor(w http.ResponseWriter, r *http.Request) {
	var f models.Floor
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		server.BadRequest(w, "invalid JSON body", r.URL.Path)
		return
	}
	parent := models.BuildingAddress(r.PathValue("buildingID"))
	p.mutate(w, r, http.StatusCreated, func(s *models.Survey) (any, error) {
		return AddFloor(s, parent, f)
	})
}

// handleAddFloorRack appends a rack to a floor.
func (p *Plugin) handleAddFloorRack(w http.ResponseWriter, r *http.Request) {
	var rack models.Rack
	if err := json.NewDecoder(r.Body).Decode(&rack); err != nil {
		server.BadRequest(w, "invalid JSON body", r.URL.Path)
		return
	}
	parent := models.FloorAddress(r.PathValue("floorID"))
	p.mutate(w, r, http.StatusCreated, func(s *models.Survey) (any, error) {
		return AddFloorRack(s, parent, rack)
	})
}

// handleAddRoom appends a room to a floor.
func (p *Plugin) handleAddRoom(w http.ResponseWriter, r *http.Request) {
	var room models.Room
	if err := json.NewDecoder(r.Body).Decode(&room); err != nil {
		server.BadRequest(w, "invalid JSON body", r.URL.Path)
		return
	}
	parent := models.FloorAddress(r.PathValue("floorID"))
	p.mutate(w, r, http.StatusCreated, func(s *models.Survey) (any, error) {
		return AddRoom(s, parent, room)
	})
}

// handleAddDevice places a device in a rack or room.
func (p *Plugin) handleAddDevice(w http.ResponseWriter, r *http.Request) {
	parent, ok := parseAddress(r.PathValue("kind"), r.PathValue("nodeID"))
	if !ok {
		server.BadRequest(w, "unknown node kind", r.URL.Path)
		return
	}
	var d models.Device
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		server.BadRequest(w, "invalid JSON body", r.URL.Path)
		return
	}
	p.mutate(w, r, http.StatusCreated, func(s *models.Survey) (any, error) {
		return AddDevice(s, parent, d)
	})
}

// handleAddConnection links two buildings.
func (p *Plugin) handleAddConnection(w http.ResponseWriter, r *http.Request) {
	var c models.BuildingConnection
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		server.BadRequest(w, "invalid JSON body", r.URL.Path)
		return
	}
	p.mutate(w, r, http.StatusCreated, func(s *models.Survey) (any, error) {
		return AddConnection(s, c, p.allowDuplicateLinks)
	})
}

// handleUpdateNode replaces the mutable fields of a tree node. Children are
// never touched through this endpoint.
func (p *Plugin) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	addr, ok := parseAddress(r.PathValue("kind"), r.PathValue("nodeID"))
	if !ok {
		server.BadRequest(w, "unknown node kind", r.URL.Path)
		return
	}

	body, err := decodeRawBody(r)
	if err != nil {
		server.BadRequest(w, "invalid JSON body", r.URL.Path)
		return
	}

	p.mutate(w, r, http.StatusOK, func(s *models.Survey) (any, error) {
		if err := applyNodeUpdate(s, addr, body); err != nil {
			return nil, err
		}
		node, err := Resolve(s, addr)
		if err != nil {
			return nil, err
		}
		return node, nil
	})
}

// handleRemoveNode removes a node and its subtree, detaching any equipment
// bound inside it.
func (p *Plugin) handleRemoveNode(w http.ResponseWriter, r *http.Request) {
	addr, ok := parseAddress(r.PathValue("kind"), r.PathValue("nodeID"))
	if !ok {
		server.BadRequest(w, "unknown node kind", r.URL.Path)
		return
	}

	p.mutate(w, r, http.StatusOK, func(s *models.Survey) (any, error) {
		removed, err := Remove(s, addr)
		if err != nil {
			return nil, err
		}
		p.publish(r, plugin.TopicNodeRemoved, s.ID)
		return map[string]any{"removed": removed}, nil
	})
}

// handleUpdateDevice replaces a device's mutable fields.
func (p *Plugin) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	var in models.Device
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		server.BadRequest(w, "invalid JSON body", r.URL.Path)
		return
	}

	id := r.PathValue("deviceID")
	p.mutate(w, r, http.StatusOK, func(s *models.Survey) (any, error) {
		err := UpdateDevice(s, id, func(d *models.Device) error {
			d.Name = in.Name
			d.Type = in.Type
			d.Brand = in.Brand
			d.Model = in.Model
			d.IPAddress = in.IPAddress
			d.PhoneNumber = in.PhoneNumber
			d.Notes = in.Notes
			return nil
		})
		if err != nil {
			return nil, err
		}
		return map[string]string{"id": id}, nil
	})
}

// handleRemoveDevice deletes a single device.
func (p *Plugin) handleRemoveDevice(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("deviceID")
	p.mutate(w, r, http.StatusOK, func(s *models.Survey) (any, error) {
		if err := RemoveDevice(s, id); err != nil {
			return nil, err
		}
		return map[string]string{"removed": id}, nil
	})
}

// mutate loads the survey from the path {id}, applies fn, and persists the
// result. Nothing is saved when fn fails, so a rejected mutation leaves the
// stored document untouched.
func (p *Plugin) mutate(w http.ResponseWriter, r *http.Request, status int, fn func(s *models.Survey) (any, error)) {
	s, err := p.repo.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		server.FromError(w, err, r.URL.Path)
		return
	}

	out, err := fn(s)
	if err != nil {
		server.FromError(w, err, r.URL.Path)
		return
	}

	if err := p.repo.Update(r.Context(), s); err != nil {
		p.logger.Error("persist survey", zap.String("survey_id", s.ID), zap.Error(err))
		server.FromError(w, err, r.URL.Path)
		return
	}

	p.publish(r, plugin.TopicSurveyUpdated, s.ID)
	writeJSON(w, status, out)
}

// publish emits a fire-and-forget event. The request context is deliberately
/// not used: it is cancelled as soon as the handler returns, which would kill
// the event for any subscriber honoring cancellation.
func (p *Plugin) publish(_ *http.Request, topic, surveyID string) {
	if p.bus == nil {
		return
	}
	p.bus.PublishAsync(context.Background(), plugin.Event{
		Topic:     topic,
		Source:    p.Name(),
		Timestamp: time.Now().UTC(),
		Payload:   map[string]string{"survey_id": surveyID},
	})
}

// parseAddress maps path segments onto a tree address.
func parseAddress(kind, id string) (models.Address, bool) {
	k := models.AddressKind(kind)
	switch k {
	case models.AddressKindBuilding,
		models.AddressKindCentralRack,
		models.AddressKindFloor,
		models.AddressKindFloorRack,
		models.AddressKindRoom,
		models.AddressKindBuildingConnection:
		return models.Address{Kind: k, ID: id}, true
	}
	return models.Address{}, false
}

func decodeRawBody(r *http.Request) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// applyNodeUpdate decodes body into the node type for addr and copies the
// mutable fields onto the stored node.
func applyNodeUpdate(s *models.Survey, addr models.Address, body json.RawMessage) error {
	switch addr.Kind {
	case models.AddressKindBuilding:
		var in models.Building
		if err := json.Unmarshal(body, &in); err != nil {
			return models.Validationf("body", "invalid building payload")
		}
		return UpdateBuilding(s, addr.ID, func(b *models.Building) error {
			b.Name = in.Name
			b.Code = in.Code
			b.Address = in.Address
			b.Notes = in.Notes
			b.Images = in.Images
			return nil
		})
	case models.AddressKindFloor:
		var in models.Floor
		if err := json.Unmarshal(body, &in); err != nil {
			return models.Validationf("body", "invalid floor payload")
		}
		return UpdateFloor(s, addr.ID, func(f *models.Floor) error {
			f.Name = in.Name
			f.Level = in.Level
			f.BlueprintURL = in.BlueprintURL
			return nil
		})
	case models.AddressKindCentralRack, models.AddressKindFloorRack:
		var in models.Rack
		if err := json.Unmarshal(body, &in); err != nil {
			return models.Validationf("body", "invalid rack payload")
		}
		return UpdateRack(s, addr.ID, func(rk *models.Rack) error {
			rk.Name = in.Name
			rk.Code = in.Code
			rk.Location = in.Location
			rk.Units = in.Units
			rk.CableTerminations = in.CableTerminations
			rk.FiberTerminations = in.FiberTerminations
			return nil
		})
	case models.AddressKindRoom:
		var in models.Room
		if err := json.Unmarshal(body, &in); err != nil {
			return models.Validationf("body", "invalid room payload")
		}
		return UpdateRoom(s, addr.ID, func(rm *models.Room) error {
			rm.Name = in.Name
			rm.Type = in.Type
			rm.ConnectionType = in.ConnectionType
			rm.Outlets = in.Outlets
			rm.IsTypicalRoom = in.IsTypicalRoom
			rm.IdenticalRoomsCount = in.IdenticalRoomsCount
			return nil
		})
	case models.AddressKindBuildingConnection:
		var in models.BuildingConnection
		if err := json.Unmarshal(body, &in); err != nil {
			return models.Validationf("body", "invalid connection payload")
		}
		return UpdateConnection(s, addr.ID, func(c *models.BuildingConnection) error {
			c.Type = in.Type
			c.Description = in.Description
			c.DistanceMeters = in.DistanceMeters
			c.Notes = in.Notes
			return nil
		})
	}
	return models.ErrNotFound
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
