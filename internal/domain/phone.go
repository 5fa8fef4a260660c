package domain

// StorageOption is a purchasable storage variant. Size identifies the variant.
type StorageOption struct {
	Size           string  `json:"size"`
	PriceIncrement float64 `json:"priceIncrement"`
}

// PhoneModel is the plain record a Phone is built from and serialized back to.
type PhoneModel struct {
	ID             string          `json:"id"`
	Brand          string          `json:"brand"`
	Model          string          `json:"model"`
	Price          float64         `json:"price"`
	Image          string          `json:"image"`
	Colors         []string        `json:"colors"`
	StorageOptions []StorageOption `json:"storageOptions"`
}

// Phone is an immutable catalog entry. Two phones are the same product iff
// their IDs are equal.
type Phone struct {
	id      string
	brand   string
	model   string
	price   float64
	image   string
	colors  []string
	storage []StorageOption
}

// NewPhone builds a Phone. Input is not validated.
func NewPhone(id, brand, model string, price float64, image string, colors []string, storage []StorageOption) Phone {
	return Phone{
		id:      id,
		brand:   brand,
		model:   model,
		price:   price,
		image:   image,
		colors:  append([]string(nil), colors...),
		storage: append([]StorageOption(nil), storage...),
	}
}

// FromModel builds a Phone from its plain record.
func FromModel(m PhoneModel) Phone {
	return NewPhone(m.ID, m.Brand, m.Model, m.Price, m.Image, m.Colors, m.StorageOptions)
}

func (p Phone) ID() string     { return p.id }
func (p Phone) Brand() string  { return p.brand }
func (p Phone) Name() string   { return p.model }
func (p Phone) Price() float64 { return p.price }
func (p Phone) Image() string  { return p.image }

// Colors returns a copy of the available colors in catalog order.
func (p Phone) Colors() []string { return append([]string(nil), p.colors...) }

// StorageOptions returns a copy of the storage variants in catalog order.
func (p Phone) StorageOptions() []StorageOption {
	return append([]StorageOption(nil), p.storage...)
}

// FullPrice is the sell price of the phone with the given storage variant.
// The option does not have to belong to the phone.
func (p Phone) FullPrice(opt StorageOption) float64 {
	return p.price + opt.PriceIncrement
}

// HasColor reports whether color is one of the phone's colors.
func (p Phone) HasColor(color string) bool {
	for _, c := range p.colors {
		if c == color {
			return true
		}
	}
	return false
}

// StorageOption looks up a storage variant by size.
func (p Phone) StorageOption(size string) (StorageOption, bool) {
	for _, s := range p.storage {
		if s.Size == size {
			return s, true
		}
	}
	return StorageOption{}, false
}

// Model returns the plain record for the phone.
func (p Phone) Model() PhoneModel {
	return PhoneModel{
		ID:             p.id,
		Brand:          p.brand,
		Model:          p.model,
		Price:          p.price,
		Image:          p.image,
		Colors:         p.Colors(),
		StorageOptions: p.StorageOptions(),
	}
}
