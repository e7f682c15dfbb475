package testutil

import (
	"context"
	"testing"

	"github.com/felixroth/cableplan/internal/plugin"
	"github.com/felixroth/cableplan/pkg/models"
)

func TestLogger_NotNil(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewStore_Usable(t *testing.T) {
	db := NewStore(t)
	if db == nil {
		t.Fatal("expected non-nil store")
	}
	if err := db.DB().PingContext(context.Background()); err != nil {
		t.Fatalf("PingContext: %v", err)
	}
}

func TestMockBus_RecordsEvents(t *testing.T) {
	bus := NewMockBus()

	ev := plugin.Event{Topic: plugin.TopicSurveyCreated, Source: "test"}
	if err := bus.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	bus.PublishAsync(context.Background(), plugin.Event{Topic: plugin.TopicSurveyUpdated, Source: "test"})

	events := bus.Events()
	if len(events) != 2 {
		t.Fatalf("Events len = %d, want 2", len(events))
	}
	if events[0].Topic != plugin.TopicSurveyCreated {
		t.Errorf("events[0].Topic = %q, want %q", events[0].Topic, plugin.TopicSurveyCreated)
	}
	if events[1].Topic != plugin.TopicSurveyUpdated {
		t.Errorf("events[1].Topic = %q, want %q", events[1].Topic, plugin.TopicSurveyUpdated)
	}
}

func TestMockBus_Reset(t *testing.T) {
	bus := NewMockBus()
	_ = bus.Publish(context.Background(), plugin.Event{Topic: "a"})
	bus.Reset()
	if len(bus.Events()) != 0 {
		t.Error("expected empty events after Reset")
	}
}

func TestNewSurvey_Defaults(t *testing.T) {
	s := NewSurvey()
	if s.ID == "" {
		t.Error("expected non-empty ID")
	}
	if len(s.Buildings) != 1 {
		t.Fatalf("Buildings len = %d, want 1", len(s.Buildings))
	}
	b := s.Buildings[0]
	if b.CentralRack == nil {
		t.Error("expected a central rack")
	}
	if len(b.Floors) != 1 || len(b.Floors[0].Rooms) != 1 {
		t.Error("expected one floor with one room")
	}
}

func TestNewSurvey_WithOptions(t *testing.T) {
	s := NewSurvey(
		WithName("office campus"),
		WithBuildings(NewBuilding(WithoutCentralRack())),
	)
	if s.Name != "office campus" {
		t.Errorf("Name = %q, want office campus", s.Name)
	}
	if s.Buildings[0].CentralRack != nil {
		t.Error("expected no central rack")
	}
}

func TestNewEquipmentItem_Recalculates(t *testing.T) {
	e := NewEquipmentItem(WithPrice(100), WithQuantity(2), WithMargin(10))
	if got := e.TotalPrice.String(); got != "220" {
		t.Errorf("TotalPrice = %s, want 220", got)
	}
	if e.Type != models.ItemTypeProduct {
		t.Errorf("Type = %q, want product", e.Type)
	}
}
