package report

import (
	"testing"

	"github.com/felixroth/cableplan/internal/testutil"
	"github.com/felixroth/cableplan/pkg/models"
)

func reportSurvey() models.Survey {
	return testutil.NewSurvey(
		testutil.WithName("Office campus"),
		testutil.WithEquipment(
			testutil.NewEquipmentItem(
				testutil.WithPrice(100),
				testutil.WithQuantity(2),
				testutil.WithMargin(10),
			),
			testutil.NewEquipmentItem(
				testutil.WithItemType(models.ItemTypeService),
				testutil.WithPrice(50),
				testutil.WithQuantity(1),
			),
		),
	)
}

func TestBuild(t *testing.T) {
	s := reportSurvey()
	m := Build(&s)

	if m.SurveyName != "Office campus" {
		t.Errorf("SurveyName = %q, want Office campus", m.SurveyName)
	}
	if m.GeneratedAt.IsZero() {
		t.Error("GeneratedAt is zero")
	}
	if len(m.Buildings) != 1 {
		t.Fatalf("buildings = %d, want 1", len(m.Buildings))
	}
	if m.Buildings[0].Name != "Building A" {
		t.Errorf("building name = %q, want Building A", m.Buildings[0].Name)
	}
	if m.Stats.TotalRooms != 1 {
		t.Errorf("total rooms = %d, want 1", m.Stats.TotalRooms)
	}

	if len(m.Products) != 1 || len(m.Services) != 1 {
		t.Fatalf("products/services = %d/%d, want 1/1", len(m.Products), len(m.Services))
	}
	if m.ProductTotals.Total.String() != "220" {
		t.Errorf("product total = %s, want 220", m.ProductTotals.Total)
	}
	if m.ServiceTotals.Total.String() != "50" {
		t.Errorf("service total = %s, want 50", m.ServiceTotals.Total)
	}
	if m.Overall.Total.String() != "270" {
		t.Errorf("overall total = %s, want 270", m.Overall.Total)
	}
}

func TestBuildEmptyLedger(t *testing.T) {
	s := testutil.NewSurvey()
	m := Build(&s)

	if len(m.Products) != 0 || len(m.Services) != 0 {
		t.Errorf("products/services = %d/%d, want empty", len(m.Products), len(m.Services))
	}
	if !m.Overall.Total.IsZero() {
		t.Errorf("overall total = %s, want 0", m.Overall.Total)
	}
}
