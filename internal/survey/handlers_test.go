package survey

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/felixroth/cableplan/internal/plugin"
	"github.com/felixroth/cableplan/internal/services"
	"github.com/felixroth/cableplan/internal/testutil"
	"github.com/felixroth/cableplan/pkg/models"
)

// captureBus records the context each publish carries.
type captureBus struct {
	ctxs []context.Context
}

func (b *captureBus) Publish(ctx context.Context, _ plugin.Event) error {
	b.ctxs = append(b.ctxs, ctx)
	return nil
}

func (b *captureBus) PublishAsync(ctx context.Context, _ plugin.Event) {
	b.ctxs = append(b.ctxs, ctx)
}

func (b *captureBus) Subscribe(_ string, _ plugin.EventHandler) func() { return func() {} }
func (b *captureBus) SubscribeAll(_ plugin.EventHandler) func()        { return func() {} }

// fakeRepo keeps survey documents as JSON, mirroring how the SQLite
// repository round-trips them.
type fakeRepo struct {
	docs map[string]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{docs: map[string]string{}}
}

func (r *fakeRepo) put(s models.Survey) {
	raw, _ := json.Marshal(s)
	r.docs[s.ID] = string(raw)
}

func (r *fakeRepo) Get(_ context.Context, id string) (*models.Survey, error) {
	raw, ok := r.docs[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	var s models.Survey
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *fakeRepo) List(_ context.Context, _ services.SurveyFilter, _ services.ListOptions) (*services.ListResult[services.SurveySummary], error) {
	res := &services.ListResult[services.SurveySummary]{Items: []services.SurveySummary{}}
	for id := range r.docs {
		res.Items = append(res.Items, services.SurveySummary{ID: id})
	}
	res.Total = len(res.Items)
	return res, nil
}

func (r *fakeRepo) Create(_ context.Context, s *models.Survey) error {
	if s.ID == "" {
		s.ID = "generated"
	}
	r.put(*s)
	return nil
}

func (r *fakeRepo) Update(_ context.Context, s *models.Survey) error {
	if _, ok := r.docs[s.ID]; !ok {
		return services.ErrNotFound
	}
	r.put(*s)
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.docs[id]; !ok {
		return services.ErrNotFound
	}
	delete(r.docs, id)
	return nil
}

func newHandlerHarness(t *testing.T) (*Plugin, *fakeRepo, *testutil.MockBus) {
	t.Helper()
	repo := newFakeRepo()
	bus := testutil.NewMockBus()
	p := New(repo, bus)
	if err := p.Init(viper.New(), zap.NewNop()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return p, repo, bus
}

func doRequest(h http.HandlerFunc, method, target, body string, pathValues map[string]string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	for k, v := range pathValues {
		r.SetPathValue(k, v)
	}
	w := httptest.NewRecorder()
	h(w, r)
	return w
}

func TestHandleCreateSurvey(t *testing.T) {
	p, repo, bus := newHandlerHarness(t)

	w := doRequest(p.handleCreateSurvey, http.MethodPost, "/surveys", `{"name":"HQ rollout"}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body)
	}

	var s models.Survey
	if err := json.NewDecoder(w.Body).Decode(&s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.ID == "" || s.Name != "HQ rollout" {
		t.Errorf("survey = %+v, want generated ID and name", s)
	}
	if _, ok := repo.docs[s.ID]; !ok {
		t.Error("survey not persisted")
	}
	if !slices.Contains(bus.Topics(), "survey.created") {
		t.Errorf("bus topics = %v, want survey.created", bus.Topics())
	}
}

func TestHandleCreateSurveyMissingName(t *testing.T) {
	p, _, _ := newHandlerHarness(t)

	w := doRequest(p.handleCreateSurvey, http.MethodPost, "/surveys", `{}`, nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}
}

func TestHandleGetSurveyNotFound(t *testing.T) {
	p, _, _ := newHandlerHarness(t)

	w := doRequest(p.handleGetSurvey, http.MethodGet, "/surveys/nope", "", map[string]string{"id": "nope"})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q, want problem+json", ct)
	}
}

func TestHandleAddBuilding(t *testing.T) {
	p, repo, bus := newHandlerHarness(t)
	s := testutil.NewSurvey()
	repo.put(s)

	w := doRequest(p.handleAddBuilding, http.MethodPost, "/surveys/"+s.ID+"/buildings",
		`{"name":"Annex"}`, map[string]string{"id": s.ID})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body)
	}

	stored, err := repo.Get(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(stored.Buildings) != 2 {
		t.Errorf("buildings = %d, want 2", len(stored.Buildings))
	}
	if !slices.Contains(bus.Topics(), "survey.updated") {
		t.Errorf("bus topics = %v, want survey.updated", bus.Topics())
	}
}

func TestHandleAddFloorRackMissingFloor(t *testing.T) {
	p, repo, _ := newHandlerHarness(t)
	s := testutil.NewSurvey()
	repo.put(s)

	w := doRequest(p.handleAddFloorRack, http.MethodPost, "/surveys/"+s.ID+"/floors/nope/racks",
		`{"name":"IDF-9"}`, map[string]string{"id": s.ID, "floorID": "nope"})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestHandleUpdateNodeRoom(t *testing.T) {
	p, repo, _ := newHandlerHarness(t)
	s := testutil.NewSurvey()
	s.Buildings[0].Floors[0].Rooms[0].Devices = []models.Device{
		{ID: "d1", Name: "AP", Type: models.DeviceTypeAccessPoint},
	}
	repo.put(s)
	roomID := s.Buildings[0].Floors[0].Rooms[0].ID

	body := `{"name":"Room 101","type":"office","connection_type":"floor_rack","outlets":6,"is_typical_room":true,"identical_rooms_count":4}`
	w := doRequest(p.handleUpdateNode, http.MethodPut, "/surveys/"+s.ID+"/nodes/room/"+roomID,
		body, map[string]string{"id": s.ID, "kind": "room", "nodeID": roomID})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body)
	}

	stored, _ := repo.Get(context.Background(), s.ID)
	room := stored.Buildings[0].Floors[0].Rooms[0]
	if room.Outlets != 6 || !room.IsTypicalRoom || room.IdenticalRoomsCount != 4 {
		t.Errorf("room = %+v, want outlets 6, typical x4", room)
	}
	// Children survive a node update.
	if len(room.Devices) != 1 {
		t.Errorf("devices = %d, want 1", len(room.Devices))
	}
}

func TestHandleUpdateNodeRejectedNotPersisted(t *testing.T) {
	p, repo, _ := newHandlerHarness(t)
	s := testutil.NewSurvey()
	repo.put(s)
	roomID := s.Buildings[0].Floors[0].Rooms[0].ID

	w := doRequest(p.handleUpdateNode, http.MethodPut, "/surveys/"+s.ID+"/nodes/room/"+roomID,
		`{"name":"Room 101","outlets":-3}`, map[string]string{"id": s.ID, "kind": "room", "nodeID": roomID})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", w.Code, w.Body)
	}

	stored, _ := repo.Get(context.Background(), s.ID)
	if got := stored.Buildings[0].Floors[0].Rooms[0].Outlets; got != 2 {
		t.Errorf("outlets = %d, want stored document untouched at 2", got)
	}
}

func TestHandleUpdateNodeUnknownKind(t *testing.T) {
	p, repo, _ := newHandlerHarness(t)
	s := testutil.NewSurvey()
	repo.put(s)

	w := doRequest(p.handleUpdateNode, http.MethodPut, "/surveys/"+s.ID+"/nodes/teapot/x",
		`{}`, map[string]string{"id": s.ID, "kind": "teapot", "nodeID": "x"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleRemoveNodeDetachesEquipment(t *testing.T) {
	p, repo, bus := newHandlerHarness(t)

	b := testutil.NewBuilding()
	roomID := b.Floors[0].Rooms[0].ID
	s := testutil.NewSurvey(
		testutil.WithBuildings(b),
		testutil.WithEquipment(testutil.NewEquipmentItem(testutil.BoundTo(models.RoomAddress(roomID)))),
	)
	repo.put(s)

	w := doRequest(p.handleRemoveNode, http.MethodDelete, "/surveys/"+s.ID+"/nodes/room/"+roomID,
		"", map[string]string{"id": s.ID, "kind": "room", "nodeID": roomID})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body)
	}

	var resp struct {
		Removed []models.Address `json:"removed"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Removed) != 1 || resp.Removed[0] != models.RoomAddress(roomID) {
		t.Errorf("removed = %v, want [room/%s]", resp.Removed, roomID)
	}

	stored, _ := repo.Get(context.Background(), s.ID)
	if n := len(stored.Buildings[0].Floors[0].Rooms); n != 0 {
		t.Errorf("rooms = %d, want 0", n)
	}
	if len(stored.Equipment) != 1 {
		t.Fatalf("equipment = %d, want the line kept", len(stored.Equipment))
	}
	if !stored.Equipment[0].InfrastructureRef.IsZero() {
		t.Errorf("equipment ref = %s, want detached", stored.Equipment[0].InfrastructureRef)
	}
	if !slices.Contains(bus.Topics(), "survey.node.removed") {
		t.Errorf("bus topics = %v, want survey.node.removed", bus.Topics())
	}
}

func TestHandleAddConnectionDuplicateBlocked(t *testing.T) {
	repo := newFakeRepo()
	p := New(repo, testutil.NewMockBus())

	cfg := viper.New()
	cfg.Set("allow_duplicate_links", false)
	if err := p.Init(cfg, zap.NewNop()); err != nil {
		t.Fatalf("Init: %v", err)
	}

	a := testutil.NewBuilding()
	b := testutil.NewBuilding(testutil.WithBuildingName("Building B"))
	s := testutil.NewSurvey(testutil.WithBuildings(a, b))
	repo.put(s)

	body := `{"from_building_id":"` + a.ID + `","to_building_id":"` + b.ID + `","type":"fiber"}`
	pv := map[string]string{"id": s.ID}

	if w := doRequest(p.handleAddConnection, http.MethodPost, "/surveys/"+s.ID+"/connections", body, pv); w.Code != http.StatusCreated {
		t.Fatalf("first link status = %d, want 201: %s", w.Code, w.Body)
	}
	if w := doRequest(p.handleAddConnection, http.MethodPost, "/surveys/"+s.ID+"/connections", body, pv); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("duplicate link status = %d, want 422: %s", w.Code, w.Body)
	}
}

func TestPublishOutlivesRequestContext(t *testing.T) {
	repo := newFakeRepo()
	bus := &captureBus{}
	p := New(repo, bus)
	if err := p.Init(viper.New(), zap.NewNop()); err != nil {
		t.Fatalf("Init: %v", err)
	}

	s := testutil.NewSurvey()
	repo.put(s)

	ctx, cancel := context.WithCancel(context.Background())
	r := httptest.NewRequest(http.MethodPost, "/surveys/"+s.ID+"/buildings",
		strings.NewReader(`{"name":"Annex"}`)).WithContext(ctx)
	r.SetPathValue("id", s.ID)
	w := httptest.NewRecorder()
	p.handleAddBuilding(w, r)

	// The request context dies the moment the handler returns; the event
	// must not die with it.
	cancel()

	if len(bus.ctxs) == 0 {
		t.Fatal("no event published")
	}
	for _, c := range bus.ctxs {
		if c.Err() != nil {
			t.Error("published event context cancelled with the request")
		}
	}
}

func TestHandleSurveyStats(t *testing.T) {
	p, repo, _ := newHandlerHarness(t)
	s := testutil.NewSurvey()
	repo.put(s)

	w := doRequest(p.handleSurveyStats, http.MethodGet, "/surveys/"+s.ID+"/stats",
		"", map[string]string{"id": s.ID})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp statsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Totals.TotalBuildings != 1 || len(resp.Buildings) != 1 {
		t.Errorf("stats = %+v, want one building rollup", resp)
	}
}

func TestHandleDeleteSurvey(t *testing.T) {
	p, repo, bus := newHandlerHarness(t)
	s := testutil.NewSurvey()
	repo.put(s)

	w := doRequest(p.handleDeleteSurvey, http.MethodDelete, "/surveys/"+s.ID,
		"", map[string]string{"id": s.ID})
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if len(repo.docs) != 0 {
		t.Error("survey still stored")
	}
	if !slices.Contains(bus.Topics(), "survey.deleted") {
		t.Errorf("bus topics = %v, want survey.deleted", bus.Topics())
	}
}
