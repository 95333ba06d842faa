package entity

// Option is a named axis of variation on a product ("Size") with its values
// in declaration order.
type Option struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Image is a product image reference.
type Image struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// Variant is one purchasable configuration of a product. SelectedOptions
// holds exactly one value per product option; a product's variants are
// pairwise distinct in that combination.
type Variant struct {
	ID                string            `json:"id"`
	Title             string            `json:"title"`
	SelectedOptions   map[string]string `json:"selectedOptions"`
	Price             Money             `json:"price"`
	CompareAtPrice    *Money            `json:"compareAtPrice,omitempty"`
	QuantityAvailable int               `json:"quantityAvailable"`
	AvailableForSale  bool              `json:"availableForSale"`
}

// OnSale reports whether the variant carries a compare-at price strictly
// above its current price.
func (v *Variant) OnSale() bool {
	return v.CompareAtPrice != nil && v.CompareAtPrice.GreaterThan(v.Price)
}

// Product is a catalog product with its options, variants and images.
type Product struct {
	ID          string    `json:"id"`
	Handle      string    `json:"handle"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Options     []Option  `json:"options"`
	Variants    []Variant `json:"variants"`
	Images      []Image   `json:"images"`
}

// DefaultSelections builds the initial selection set: for each option in
// declaration order, its first listed value. Resolved once at product load
// to seed the initially selected variant.
func (p *Product) DefaultSelections() map[string]string {
	selections := make(map[string]string, len(p.Options))
	for _, opt := range p.Options {
		if len(opt.Values) == 0 {
			continue
		}
		selections[opt.Name] = opt.Values[0]
	}
	return selections
}

// ResolveVariant maps a full selection set to the single matching variant.
// Every product option must have a selection; a missing entry means no
// variant can match. Sparse variant sets (combinations the catalog never
// enumerated) legally resolve to nil, which callers treat as "not currently
// purchasable" rather than an error. The resolution always runs over the
// full selection set, never incrementally.
func (p *Product) ResolveVariant(selections map[string]string) *Variant {
	for _, opt := range p.Options {
		if _, ok := selections[opt.Name]; !ok {
			return nil
		}
	}
	for i := range p.Variants {
		v := &p.Variants[i]
		matches := true
		for _, opt := range p.Options {
			if v.SelectedOptions[opt.Name] != selections[opt.Name] {
				matches = false
				break
			}
		}
		if matches {
			return v
		}
	}
	return nil
}

// FeaturedImage returns the first image, or a zero Image when the product
// has none.
func (p *Product) FeaturedImage() Image {
	if len(p.Images) == 0 {
		return Image{}
	}
	return p.Images[0]
}
