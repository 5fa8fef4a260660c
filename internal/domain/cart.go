package domain

// CartItem is one line item: a phone variant and how many of it.
type CartItem struct {
	Phone           Phone
	SelectedColor   string
	SelectedStorage StorageOption
	Quantity        int
}

// Matches reports whether the item has the identity key (phoneID, color, storageSize).
func (it CartItem) Matches(phoneID, color, storageSize string) bool {
	return it.Phone.ID() == phoneID && it.SelectedColor == color && it.SelectedStorage.Size == storageSize
}

// Subtotal is the full price of the variant times the quantity.
func (it CartItem) Subtotal() float64 {
	return it.Phone.FullPrice(it.SelectedStorage) * float64(it.Quantity)
}

// Cart holds line items in insertion order, at most one per
// (phone id, color, storage size). The zero value is an empty cart.
// A Cart is not safe for concurrent use.
type Cart struct {
	items []CartItem
}

func NewCart() *Cart { return &Cart{} }

// AddItem increments the quantity of the matching line item, or appends a new
// one with quantity 1. Color and storage are not checked against the phone.
func (c *Cart) AddItem(phone Phone, color string, storage StorageOption) {
	c.AddItemN(phone, color, storage, 1)
}

// AddItemN is AddItem repeated n times. n < 1 is treated as 1.
func (c *Cart) AddItemN(phone Phone, color string, storage StorageOption, n int) {
	if n < 1 {
		n = 1
	}
	if i := c.indexOf(phone.ID(), color, storage.Size); i >= 0 {
		c.items[i].Quantity += n
		return
	}
	c.items = append(c.items, CartItem{
		Phone:           phone,
		SelectedColor:   color,
		SelectedStorage: storage,
		Quantity:        n,
	})
}

// RemoveItem drops the matching line item. Missing keys are ignored.
func (c *Cart) RemoveItem(phoneID, color, storageSize string) {
	if i := c.indexOf(phoneID, color, storageSize); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

// Items returns a copy of the line items in insertion order.
func (c *Cart) Items() []CartItem {
	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Len is the number of line items.
func (c *Cart) Len() int { return len(c.items) }

func (c *Cart) TotalPrice() float64 {
	var total float64
	for _, it := range c.items {
		total += it.Subtotal()
	}
	return total
}

// ItemCount is the sum of quantities, not the number of line items.
func (c *Cart) ItemCount() int {
	var n int
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) Clear() { c.items = nil }

func (c *Cart) indexOf(phoneID, color, storageSize string) int {
	for i := range c.items {
		if c.items[i].Matches(phoneID, color, storageSize) {
			return i
		}
	}
	return -1
}
