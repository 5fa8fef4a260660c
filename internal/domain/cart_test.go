package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	gb128 = StorageOption{Size: "128GB", PriceIncrement: 0}
	gb256 = StorageOption{Size: "256GB", PriceIncrement: 100}
)

// ============================================================================
// AddItem
// ============================================================================

func TestAddItem_DuplicateKeyIncrementsQuantity(t *testing.T) {
	c := NewCart()
	p := samplePhone()

	c.AddItem(p, "Black", gb256)
	c.AddItem(p, "Black", gb256)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 1798.0, c.TotalPrice())
	assert.Equal(t, 2, c.ItemCount())
}

func TestAddItem_ManyCallsSameKey(t *testing.T) {
	c := NewCart()
	p := samplePhone()
	for i := 0; i < 7; i++ {
		c.AddItem(p, "White", gb128)
	}
	require.Equal(t, 1, c.Len())
	assert.Equal(t, 7, c.Items()[0].Quantity)
}

func TestAddItemN(t *testing.T) {
	c := NewCart()
	p := samplePhone()

	c.AddItemN(p, "Black", gb256, 1001)
	c.AddItemN(p, "Black", gb256, 2)
	c.AddItemN(p, "White", gb128, 0)

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 1003, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity, "n below 1 adds one unit")
	assert.Equal(t, 1004, c.ItemCount())
}

func TestAddItem_DifferentColorIsNewLine(t *testing.T) {
	c := NewCart()
	p := samplePhone()

	c.AddItem(p, "Black", gb128)
	c.AddItem(p, "White", gb128)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 2, c.ItemCount())
}

func TestAddItem_DifferentStorageIsNewLine(t *testing.T) {
	c := NewCart()
	p := samplePhone()

	c.AddItem(p, "Black", gb128)
	c.AddItem(p, "Black", gb256)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 799.0+899.0, c.TotalPrice())
}

func TestAddItem_IdentityIsPhoneIDOnly(t *testing.T) {
	c := NewCart()
	first := samplePhone()
	renamed := NewPhone("1", "Apple", "iPhone 13 (refurb)", 500, "", nil, nil)

	c.AddItem(first, "Black", gb128)
	c.AddItem(renamed, "Black", StorageOption{Size: "128GB", PriceIncrement: 42})

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	// the first phone and storage are kept, only quantity changes
	assert.Equal(t, "iPhone 13", items[0].Phone.Name())
	assert.Equal(t, 0.0, items[0].SelectedStorage.PriceIncrement)
}

func TestAddItem_AcceptsEmptyVariant(t *testing.T) {
	c := NewCart()
	c.AddItem(samplePhone(), "", StorageOption{})
	require.Equal(t, 1, c.Len())
	assert.Equal(t, 799.0, c.TotalPrice())
}

func TestAddItem_PreservesInsertionOrder(t *testing.T) {
	c := NewCart()
	a := samplePhone()
	b := NewPhone("2", "Samsung", "Galaxy S21", 699, "", nil, nil)

	c.AddItem(a, "Black", gb128)
	c.AddItem(b, "Gray", gb128)
	c.AddItem(a, "Black", gb128)

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].Phone.ID())
	assert.Equal(t, "2", items[1].Phone.ID())
}

// ============================================================================
// RemoveItem
// ============================================================================

func TestRemoveItem(t *testing.T) {
	c := NewCart()
	p := samplePhone()
	c.AddItem(p, "Black", gb128)
	c.AddItem(p, "White", gb128)

	c.RemoveItem("1", "Black", "128GB")

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "White", items[0].SelectedColor)
}

func TestRemoveItem_DropsWholeLine(t *testing.T) {
	c := NewCart()
	p := samplePhone()
	c.AddItem(p, "Black", gb128)
	c.AddItem(p, "Black", gb128)

	c.RemoveItem("1", "Black", "128GB")
	assert.Equal(t, 0, c.Len())
}

func TestRemoveItem_AbsentKeyIsIdempotent(t *testing.T) {
	c := NewCart()
	c.AddItem(samplePhone(), "Black", gb128)
	before := c.Items()

	c.RemoveItem("1", "Black", "256GB")
	once := c.Items()
	c.RemoveItem("1", "Black", "256GB")

	assert.Equal(t, before, once)
	assert.Equal(t, once, c.Items())
}

func TestRemoveItem_EmptyCart(t *testing.T) {
	c := NewCart()
	c.RemoveItem("nope", "", "")
	assert.Empty(t, c.Items())
}

// ============================================================================
// Items / totals / Clear
// ============================================================================

func TestItems_ReturnsCopy(t *testing.T) {
	c := NewCart()
	c.AddItem(samplePhone(), "Black", gb128)

	items := c.Items()
	items[0].Quantity = 99
	items[0].SelectedColor = "Pink"

	got := c.Items()
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Quantity)
	assert.Equal(t, "Black", got[0].SelectedColor)
}

func TestTotals_MatchSumsOverItems(t *testing.T) {
	c := NewCart()
	a := samplePhone()
	b := NewPhone("2", "Samsung", "Galaxy S21", 699, "", nil, nil)
	c.AddItem(a, "Black", gb256)
	c.AddItem(a, "Black", gb256)
	c.AddItem(b, "Gray", gb128)
	c.AddItem(a, "White", gb128)

	var count int
	var total float64
	for _, it := range c.Items() {
		count += it.Quantity
		total += (it.Phone.Price() + it.SelectedStorage.PriceIncrement) * float64(it.Quantity)
	}
	assert.Equal(t, count, c.ItemCount())
	assert.Equal(t, total, c.TotalPrice())
	assert.Equal(t, 4, c.ItemCount())
	assert.Equal(t, 2*899.0+699.0+799.0, c.TotalPrice())
}

func TestEmptyCartTotals(t *testing.T) {
	var c Cart
	assert.Empty(t, c.Items())
	assert.Equal(t, 0.0, c.TotalPrice())
	assert.Equal(t, 0, c.ItemCount())
}

func TestClear(t *testing.T) {
	c := NewCart()
	c.AddItem(samplePhone(), "Black", gb128)
	c.AddItem(samplePhone(), "White", gb256)

	c.Clear()

	assert.Empty(t, c.Items())
	assert.Equal(t, 0.0, c.TotalPrice())
	assert.Equal(t, 0, c.ItemCount())
}
