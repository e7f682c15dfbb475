package bom

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixroth/cableplan/internal/testutil"
	"github.com/felixroth/cableplan/pkg/models"
)

func catRef() ItemRef {
	return ItemRef{
		Type:     models.ItemTypeProduct,
		ItemID:   "prod-cat6-utp-305",
		Name:     "Cat6 UTP cable, 305m box",
		Brand:    "CommScope",
		Category: "cabling",
		Unit:     "box",
		Price:    decimal.NewFromFloat(189.00),
	}
}

func TestAddItem(t *testing.T) {
	items, item, err := AddItem(nil, catRef(), 2, models.Address{})
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, models.ItemTypeProduct, item.Type)
	assert.Equal(t, "prod-cat6-utp-305", item.ItemID)
	assert.Equal(t, 2, item.Quantity)
	assert.True(t, item.Margin.IsZero())
	assert.Equal(t, "378", item.TotalPrice.String())
}

func TestAddItemDefaultsQuantity(t *testing.T) {
	_, item, err := AddItem(nil, catRef(), 0, models.Address{})
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
}

func TestAddItemRejectsBadRef(t *testing.T) {
	_, _, err := AddItem(nil, ItemRef{Price: decimal.NewFromInt(5)}, 1, models.Address{})
	assert.True(t, models.IsValidation(err), "unnamed ref: %v", err)

	ref := catRef()
	ref.Price = decimal.NewFromInt(-1)
	_, _, err = AddItem(nil, ref, 1, models.Address{})
	assert.True(t, models.IsValidation(err), "negative price: %v", err)
}

func TestAddItemDoesNotMutateInput(t *testing.T) {
	orig := []models.EquipmentItem{testutil.NewEquipmentItem()}
	out, _, err := AddItem(orig, catRef(), 1, models.Address{})
	require.NoError(t, err)

	assert.Len(t, orig, 1)
	assert.Len(t, out, 2)
}

func TestAddManualItem(t *testing.T) {
	ref := models.RoomAddress("room-1")
	items, item, err := AddManualItem(nil, ManualItem{
		Name:     "Custom wall plate",
		Quantity: 4,
		Price:    decimal.NewFromFloat(3.50),
		Margin:   decimal.NewFromInt(20),
		Ref:      ref,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)

	// 3.50 * 4 = 14, +20% = 16.8
	assert.Equal(t, "16.8", item.TotalPrice.String())
	assert.Equal(t, models.ItemTypeProduct, item.Type, "type defaults to product")
	assert.Equal(t, ref, item.InfrastructureRef)
}

func TestAddManualItemValidation(t *testing.T) {
	_, _, err := AddManualItem(nil, ManualItem{Price: decimal.NewFromInt(1)})
	assert.True(t, models.IsValidation(err), "missing name: %v", err)

	_, _, err = AddManualItem(nil, ManualItem{Name: "x", Margin: decimal.NewFromInt(101)})
	assert.True(t, models.IsValidation(err), "margin above 100: %v", err)

	_, _, err = AddManualItem(nil, ManualItem{Name: "x", Margin: decimal.NewFromInt(-1)})
	assert.True(t, models.IsValidation(err), "negative margin: %v", err)
}

func TestUpdateQuantityRecalculates(t *testing.T) {
	item := testutil.NewEquipmentItem(
		testutil.WithPrice(100),
		testutil.WithQuantity(1),
		testutil.WithMargin(10),
	)
	items := []models.EquipmentItem{item}

	out, err := UpdateQuantity(items, item.ID, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, out[0].Quantity)
	assert.Equal(t, "220", out[0].TotalPrice.String())
	// Copy-on-write: the input slice stays untouched.
	assert.Equal(t, 1, items[0].Quantity)
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	item := testutil.NewEquipmentItem()
	out, err := UpdateQuantity([]models.EquipmentItem{item}, item.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestUpdatePrice(t *testing.T) {
	item := testutil.NewEquipmentItem(testutil.WithQuantity(3))
	items := []models.EquipmentItem{item}

	out, err := UpdatePrice(items, item.ID, decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.Equal(t, "30", out[0].TotalPrice.String())

	_, err = UpdatePrice(items, item.ID, decimal.NewFromInt(-10))
	assert.True(t, models.IsValidation(err), "negative price: %v", err)
}

func TestUpdateMarginBounds(t *testing.T) {
	item := testutil.NewEquipmentItem(testutil.WithPrice(100), testutil.WithQuantity(1))
	items := []models.EquipmentItem{item}

	out, err := UpdateMargin(items, item.ID, decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Equal(t, "200", out[0].TotalPrice.String())

	_, err = UpdateMargin(items, item.ID, decimal.NewFromFloat(100.5))
	assert.True(t, models.IsValidation(err))
}

func TestUpdateNotesNotFound(t *testing.T) {
	_, err := UpdateNotes([]models.EquipmentItem{testutil.NewEquipmentItem()}, "missing", "n")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAssignAndUnassign(t *testing.T) {
	item := testutil.NewEquipmentItem()
	ref := models.FloorRackAddress("rack-1")

	out, err := Assign([]models.EquipmentItem{item}, item.ID, ref)
	require.NoError(t, err)
	assert.Equal(t, ref, out[0].InfrastructureRef)

	out, err = Assign(out, item.ID, models.Address{})
	require.NoError(t, err)
	assert.True(t, out[0].InfrastructureRef.IsZero())
}

func TestRemoveItemMissingIsNoop(t *testing.T) {
	items := []models.EquipmentItem{testutil.NewEquipmentItem()}
	out := RemoveItem(items, "missing")
	assert.Len(t, out, 1)
}

func TestFilterByAddressStructuralEquality(t *testing.T) {
	// The filter address is constructed independently of the one stored on
	// the item; kind+ID equality must be enough.
	bound := testutil.NewEquipmentItem(testutil.BoundTo(models.RoomAddress("room-1")))
	other := testutil.NewEquipmentItem(testutil.BoundTo(models.RoomAddress("room-2")))
	unbound := testutil.NewEquipmentItem()
	items := []models.EquipmentItem{bound, other, unbound}

	got := FilterByAddress(items, models.RoomAddress("room-1"))
	require.Len(t, got, 1)
	assert.Equal(t, bound.ID, got[0].ID)

	// The zero address selects unbound lines.
	got = FilterByAddress(items, models.Address{})
	require.Len(t, got, 1)
	assert.Equal(t, unbound.ID, got[0].ID)
}

func TestFilterByType(t *testing.T) {
	items := []models.EquipmentItem{
		testutil.NewEquipmentItem(),
		testutil.NewEquipmentItem(testutil.WithItemType(models.ItemTypeService)),
	}

	assert.Len(t, FilterByType(items, models.ItemTypeProduct), 1)
	assert.Len(t, FilterByType(items, models.ItemTypeService), 1)
}

func TestDeduplicateByID(t *testing.T) {
	a := testutil.NewEquipmentItem()
	b := testutil.NewEquipmentItem()
	items := []models.EquipmentItem{a, a, b}

	out := DeduplicateByID(items)
	require.Len(t, out, 2)
	assert.Equal(t, a.ID, out[0].ID, "first occurrence wins")
	assert.Equal(t, b.ID, out[1].ID)

	// Idempotent.
	assert.Equal(t, out, DeduplicateByID(out))
}
