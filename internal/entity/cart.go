package entity

// CartItem is one cart line, keyed by variant identity. Price, compare-at
// price and the availability ceiling are snapshots taken when the item was
// added; they are deliberately not refreshed by later adds of the same
// variant.
type CartItem struct {
	VariantID         string `json:"variantId"`
	ProductID         string `json:"productId"`
	Handle            string `json:"handle"`
	Title             string `json:"title"`
	VariantTitle      string `json:"variantTitle,omitempty"`
	Image             string `json:"image,omitempty"`
	Price             Money  `json:"price"`
	CompareAtPrice    *Money `json:"compareAtPrice,omitempty"`
	Quantity          int    `json:"quantity"`
	QuantityAvailable int    `json:"quantityAvailable"`
}

// LineTotal is price times quantity.
func (i CartItem) LineTotal() Money {
	return i.Price.Mul(i.Quantity)
}

// Cart holds the ordered item list, most-recently-touched first, plus the
// observable open flag the UI watches. A Cart has a single owner; callers
// only ever see copies of its items.
type Cart struct {
	items []CartItem
	open  bool
}

// NewCart creates an empty cart.
func NewCart() *Cart {
	return &Cart{}
}

// RestoreCart rebuilds a cart from a persisted item list.
func RestoreCart(items []CartItem) *Cart {
	c := &Cart{}
	c.items = append(c.items, items...)
	return c
}

// Add merges the item into the cart and opens it. An existing entry keeps
// its recorded snapshot (price, availability ceiling) and only gains
// quantity, clamped to that recorded ceiling; it moves to the front. A new
// entry is inserted at the front with its quantity clamped to its own
// ceiling. A clamped quantity below one leaves no entry at all, keeping the
// quantity >= 1 invariant.
func (c *Cart) Add(item CartItem) {
	for idx, existing := range c.items {
		if existing.VariantID != item.VariantID {
			continue
		}
		merged := existing
		merged.Quantity = existing.Quantity + item.Quantity
		if merged.Quantity > existing.QuantityAvailable {
			merged.Quantity = existing.QuantityAvailable
		}
		c.items = append(c.items[:idx], c.items[idx+1:]...)
		if merged.Quantity >= 1 {
			c.items = append([]CartItem{merged}, c.items...)
		}
		c.open = true
		return
	}
	if item.Quantity > item.QuantityAvailable {
		item.Quantity = item.QuantityAvailable
	}
	if item.Quantity >= 1 {
		c.items = append([]CartItem{item}, c.items...)
	}
	c.open = true
}

// UpdateQuantity sets the exact quantity for a variant; zero or below
// removes it. Unlike Add this does not clamp to the recorded availability
// ceiling; callers pre-clamp against the stored ceiling themselves.
func (c *Cart) UpdateQuantity(variantID string, quantity int) {
	if quantity <= 0 {
		c.Remove(variantID)
		return
	}
	for idx := range c.items {
		if c.items[idx].VariantID == variantID {
			c.items[idx].Quantity = quantity
			return
		}
	}
}

// Remove deletes the entry; removing the last item also closes the cart.
func (c *Cart) Remove(variantID string) {
	for idx := range c.items {
		if c.items[idx].VariantID == variantID {
			c.items = append(c.items[:idx], c.items[idx+1:]...)
			break
		}
	}
	if len(c.items) == 0 {
		c.open = false
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = nil
	c.open = false
}

// Items returns a copy of the item list, most-recently-touched first.
func (c *Cart) Items() []CartItem {
	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// QuantityOf sums quantities across entries matching the variant. Variant
// keys are unique, so this is the single entry's quantity or zero.
func (c *Cart) QuantityOf(variantID string) int {
	total := 0
	for _, item := range c.items {
		if item.VariantID == variantID {
			total += item.Quantity
		}
	}
	return total
}

// Total recomputes the cart total on every call; it is never cached.
func (c *Cart) Total() Money {
	var total Money
	for _, item := range c.items {
		total = total.Add(item.LineTotal())
	}
	return total.Round2()
}

// ItemCount recomputes the summed quantity on every call.
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}

func (c *Cart) IsEmpty() bool { return len(c.items) == 0 }

// IsOpen reports the transient UI flag: set by Add, cleared when the cart
// empties.
func (c *Cart) IsOpen() bool { return c.open }

// Close clears the open flag without touching the items.
func (c *Cart) Close() { c.open = false }
