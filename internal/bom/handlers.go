package bom

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/felixroth/cableplan/internal/plugin"
	"github.com/felixroth/cableplan/internal/server"
	"github.com/felixroth/cableplan/pkg/models"
)

// NodeResolver checks that an address resolves inside a survey's tree. The
// survey plugin supplies the implementation; keeping it injected avoids a
// package cycle between the ledger and the tree.
type NodeResolver func(s *models.Survey, addr models.Address) error

// WithResolver installs the tree resolver used to validate bindings.
func (p *Plugin) WithResolver(r NodeResolver) *Plugin {
	p.resolve = r
	return p
}

// addItemRequest is the JSON body for POST /surveys/{id}/items.
type addItemRequest struct {
	Type     models.ItemType `json:"type"`
	ItemID   string          `json:"item_id"`
	Quantity int             `json:"quantity"`
	Ref      models.Address  `json:"infrastructure_element"`
}

// manualItemRequest is the JSON body for POST /surveys/{id}/items/manual.
type manualItemRequest struct {
	Type     models.ItemType `json:"type"`
	Name     string          `json:"name"`
	Brand    string          `json:"brand"`
	Category string          `json:"category"`
	Unit     string          `json:"unit"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Margin   decimal.Decimal `json:"margin"`
	Notes    string          `json:"notes"`
	Ref      models.Address  `json:"infrastructure_element"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type priceRequest struct {
	Price decimal.Decimal `json:"price"`
}

type marginRequest struct {
	Margin decimal.Decimal `json:"margin"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

// addressGroup is one bucket of GET /surveys/{id}/grouped output.
type addressGroup struct {
	Node  models.Address         `json:"node"`
	Items []models.EquipmentItem `json:"items"`
	Total Totals                 `json:"totals"`
}

// handleListItems returns the ledger, optionally filtered by item type or by
// bound node.
//
//	@Summary	List BOM lines
//	@Tags		bom
//	@Produce	json
//	@Router		/bom/surveys/{id}/items [get]
func (p *Plugin) handleListItems(w http.ResponseWriter, r *http.Request) {
	s, err := p.repo.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		server.FromError(w, err, r.URL.Path)
		return
	}

	items := s.Equipment
	q := r.URL.Query()
	if t := q.Get("type"); t != "" {
		items = FilterByType(items, models.ItemType(t))
	}
	if kind := q.Get("node_kind"); kind != "" {
		items = FilterByAddress(items, models.Address{
			Kind: models.AddressKind(kind),
			ID:   q.Get("node_id"),
		})
	}
	if items == nil {
		items = []models.EquipmentItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// handleAddItem opens a BOM line from a catalog product or service.
//
//	@Summary	Add BOM line from catalog
//	@Tags		bom
//	@Accept		json
//	@Produce	json
//	@Router		/bom/surveys/{id}/items [post]
func (p *Plugin) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid JSON body", r.URL.Path)
		return
	}

	ref, err := p.lookupCatalog(req.Type, req.ItemID)
	if err != nil {
		server.FromError(w, err, r.URL.Path)
		return
	}

	p.mutate(w, r, http.StatusCreated, func(s *models.Survey) (any, error) {
		if err := p.checkRef(s, req.Ref); err != nil {
			return nil, err
		}
		items, created, err := AddItem(s.Equipment, ref, req.Quantity, req.Ref)
		if err != nil {
			return nil, err
		}
		s.Equipment = items
		return created, nil
	})
}

// handleAddManualItem opens a BOM line with user-supplied fields.
func (p *Plugin) handleAddManualItem(w http.ResponseWriter, r *http.Request) {
	var req manualItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid JSON body", r.URL.Path)
		return
	}

	p.mutate(w, r, http.StatusCreated, func(s *models.Survey) (any, error) {
		if err := p.checkRef(s, req.Ref); err != nil {
			return nil, err
		}
		items, created, err := AddManualItem(s.Equipment, ManualItem{
			Type:     req.Type,
			Name:     req.Name,
			Brand:    req.Brand,
			Category: req.Category,
			Unit:     req.Unit,
			Quantity: req.Quantity,
			Price:    req.Price,
			Margin:   req.Margin,
			Notes:    req.Notes,
			Ref:      req.Ref,
		})
		if err != nil {
			return nil, err
		}
		s.Equipment = items
		return created, nil
	})
}

// handleUpdateQuantity sets a line's quantity; zero or less removes the line.
func (p *Plugin) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid JSON body", r.URL.Path)
		return
	}

	id := r.PathValue("itemID")
	p.mutate(w, r, http.StatusOK, func(s *models.Survey) (any, error) {
		items, err := UpdateQuantity(s.Equipment, id, req.Quantity)
		if err != nil {
			return nil, err
		}
		s.Equipment = items
		return map[string]string{"id": id}, nil
	})
}

// handleUpdatePrice sets a line's unit price.
func (p *Plugin) handleUpdatePrice(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid JSON body", r.URL.Path)
		return
	}

	id := r.PathValue("itemID")
	p.mutate(w, r, http.StatusOK, func(s *models.Survey) (any, error) {
		items, err := UpdatePrice(s.Equipment, id, req.Price)
		if err != nil {
			return nil, err
		}
		s.Equipment = items
		return map[string]string{"id": id}, nil
	})
}

// handleUpdateMargin sets a line's margin percentage.
func (p *Plugin) handleUpdateMargin(w http.ResponseWriter, r *http.Request) {
	var req marginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid JSON body", r.URL.Path)
		return
	}

	id := r.PathValue("itemID")
	p.mutate(w, r, http.StatusOK, func(s *models.Survey) (any, error) {
		items, err := UpdateMargin(s.Equipment, id, req.Margin)
		if err != nil {
			return nil, err
		}
		s.Equipment = items
		return map[string]string{"id": id}, nil
	})
}

// handleUpdateNotes replaces a line's notes.
func (p *Plugin) handleUpdateNotes(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid JSON body", r.URL.Path)
		return
	}

	id := r.PathValue("itemID")
	p.mutate(w, r, http.StatusOK, func(s *models.Survey) (any, error) {
		items, err := UpdateNotes(s.Equipment, id, req.Notes)
		if err != nil {
			return nil, err
		}
		s.Equipment = items
		return map[string]string{"id": id}, nil
	})
}

// handleAssign binds a line to a tree node; a zero address unbinds.
func (p *Plugin) handleAssign(w http.ResponseWriter, r *http.Request) {
	var ref models.Address
	if err := json.NewDecoder(r.Body).Decode(&ref); err != nil {
		server.BadRequest(w, "invalid JSON body", r.URL.Path)
		return
	}

	id := r.PathValue("itemID")
	p.mutate(w, r, http.StatusOK, func(s *models.Survey) (any, error) {
		if err := p.checkRef(s, ref); err != nil {
			return nil, err
		}
		items, err := Assign(s.Equipment, id, ref)
		if err != nil {
			return nil, err
		}
		s.Equipment = items
		return map[string]string{"id": id}, nil
	})
}

// handleRemoveItem drops a line from the ledger.
func (p *Plugin) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("itemID")
	p.mutate(w, r, http.StatusOK, func(s *models.Survey) (any, error) {
		s.Equipment = RemoveItem(s.Equipment, id)
		return map[string]string{"removed": id}, nil
	})
}

// handleTotals returns the monetary rollup, overall and per item type.
//
//	@Summary	BOM totals
//	@Tags		bom
//	@Produce	json
//	@Router		/bom/surveys/{id}/totals [get]
func (p *Plugin) handleTotals(w http.ResponseWriter, r *http.Request) {
	s, err := p.repo.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		server.FromError(w, err, r.URL.Path)
		return
	}

	g := GroupByType(s.Equipment)
	writeJSON(w, http.StatusOK, map[string]Totals{
		"overall":  TotalsFor(s.Equipment),
		"products": TotalsFor(g.Products),
		"services": TotalsFor(g.Services),
	})
}

// handleGrouped returns the ledger bucketed by bound node, each bucket with
// its own subtotal. Unbound lines appear under the zero address.
func (p *Plugin) handleGrouped(w http.ResponseWriter, r *http.Request) {
	s, err := p.repo.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		server.FromError(w, err, r.URL.Path)
		return
	}

	byAddr := GroupByAddress(s.Equipment)
	groups := make([]addressGroup, 0, len(byAddr))
	// Walk the ledger once more so group order follows first appearance,
	// keeping the response deterministic.
	seen := make(map[models.Address]bool, len(byAddr))
	for _, it := range s.Equipment {
		if seen[it.InfrastructureRef] {
			continue
		}
		seen[it.InfrastructureRef] = true
		items := byAddr[it.InfrastructureRef]
		groups = append(groups, addressGroup{
			Node:  it.InfrastructureRef,
			Items: items,
			Total: TotalsFor(items),
		})
	}
	writeJSON(w, http.StatusOK, groups)
}

// lookupCatalog converts a catalog entry into a ledger item reference.
func (p *Plugin) lookupCatalog(t models.ItemType, itemID string) (ItemRef, error) {
	switch t {
	case models.ItemTypeService:
		svc, ok, err := p.catalog.FindService(itemID)
		if err != nil {
			return ItemRef{}, err
		}
		if !ok {
			return ItemRef{}, models.ErrNotFound
		}
		return ItemRef{
			Type:     models.ItemTypeService,
			ItemID:   svc.ID,
			Name:     svc.Name,
			Category: svc.Category,
			Unit:     svc.Unit,
			Price:    decimal.NewFromFloat(svc.Price),
		}, nil
	default:
		prod, ok, err := p.catalog.FindProduct(itemID)
		if err != nil {
			return ItemRef{}, err
		}
		if !ok {
			return ItemRef{}, models.ErrNotFound
		}
		return ItemRef{
			Type:     models.ItemTypeProduct,
			ItemID:   prod.ID,
			Name:     prod.Name,
			Brand:    prod.Brand,
			Category: prod.Category,
			Unit:     prod.Unit,
			Price:    decimal.NewFromFloat(prod.Price),
		}, nil
	}
}

// checkRef validates a non-zero binding against the tree when a resolver is
// installed.
func (p *Plugin) checkRef(s *models.Survey, ref models.Address) error {
	if ref.IsZero() || p.resolve == nil {
		return nil
	}
	return p.resolve(s, ref)
}

// mutate loads the survey, applies fn, and persists the result. Nothing is
// saved when fn fails.
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

	if p.bus != nil {
		// Detached from the request context so cancellation at handler
		// return cannot drop the event.
		p.bus.PublishAsync(context.Background(), plugin.Event{
			Topic:     plugin.TopicSurveyUpdated,
			Source:    p.Name(),
			Timestamp: time.Now().UTC(),
			Payload:   map[string]string{"survey_id": s.ID},
		})
	}
	writeJSON(w, status, out)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
