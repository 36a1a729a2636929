// Package cart holds the shopping cart aggregate: the ordered line items of a
// single shopping session, the totals derived from them and the persistence
// of that state to a key-value store after every mutation.
package cart

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidQuantity is returned by AddItem when the quantity is not positive.
	ErrInvalidQuantity = errors.New("cart: quantity must be greater than zero")
	// ErrOutOfStock is returned by AddItem and SetQuantity when stock limits are
	// enforced and the product has none left.
	ErrOutOfStock = errors.New("cart: product is out of stock")
	// ErrQuantityTooLarge is returned when a line would exceed the configured
	// maximum quantity or the range of int.
	ErrQuantityTooLarge = errors.New("cart: quantity is too large")
	// ErrInvalidTaxRate is returned by Load when the configured tax rate is negative.
	ErrInvalidTaxRate = errors.New("cart: tax rate must not be negative")
	// ErrCorruptRecord describes a persisted record that could not be restored.
	// It is only ever handed to the corruption hook, never returned.
	ErrCorruptRecord = errors.New("cart: persisted record is corrupt")
)

// Product is the snapshot of a catalog product captured when it is added to
// the cart. Later catalog changes are not reflected in it.
type Product struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Price    int64  `json:"price"`
	ImageRef string `json:"imageRef"`
	Stock    int    `json:"stock"`
}

// LineItem pairs a product snapshot with a quantity of at least one.
type LineItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal returns price times quantity for the line.
func (li LineItem) Subtotal() int64 {
	return li.Product.Price * int64(li.Quantity)
}

// Summary is a point-in-time view of the derived cart figures.
type Summary struct {
	Count    int             `json:"count"`
	Subtotal int64           `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Cart is the aggregate for one session. It is not safe for concurrent use;
// callers load one per unit of work.
type Cart struct {
	store Store
	key   string

	taxRate      decimal.Decimal
	enforceStock bool
	maxQuantity  int
	onCorrupt    func(error)

	items []LineItem
}

// Option configures a Cart.
type Option func(*Cart)

// WithTaxRate sets the rate applied by Tax. Without it the rate is zero.
func WithTaxRate(rate decimal.Decimal) Option {
	return func(c *Cart) {
		c.taxRate = rate
	}
}

// WithStockLimit makes the cart keep every quantity within the stock of the
// product snapshot and refuse products that have no stock.
func WithStockLimit() Option {
	return func(c *Cart) {
		c.enforceStock = true
	}
}

// WithMaxLineQuantity caps the quantity of a single line. Mutations that would
// go past n fail with ErrQuantityTooLarge. A non-positive n means no cap.
func WithMaxLineQuantity(n int) Option {
	return func(c *Cart) {
		c.maxQuantity = n
	}
}

// WithCorruptionHook registers fn to be told about discarded records.
func WithCorruptionHook(fn func(error)) Option {
	return func(c *Cart) {
		c.onCorrupt = fn
	}
}

// Load restores the cart stored under key, or starts an empty one when
// nothing is stored. A record that cannot be decoded is deleted and the cart
// starts empty; only a failing store read is reported as an error.
func Load(ctx context.Context, store Store, key string, opts ...Option) (*Cart, error) {
	if store == nil {
		return nil, errors.New("cart: store is required")
	}
	if key == "" {
		return nil, errors.New("cart: key is empty")
	}

	c := &Cart{store: store, key: key, taxRate: decimal.Zero}
	for _, opt := range opts {
		opt(c)
	}
	if c.taxRate.IsNegative() {
		return nil, ErrInvalidTaxRate
	}

	data, found, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("store.Get %s: %w", key, err)
	}
	if !found {
		return c, nil
	}

	items, err := decodeItems(data)
	if err != nil {
		if delErr := store.Delete(ctx, key); delErr != nil {
			err = errors.Join(err, fmt.Errorf("store.Delete %s: %w", key, delErr))
		}
		c.reportCorrupt(err)
		return c, nil
	}
	c.items = items
	return c, nil
}

// Key returns the store key the cart persists under.
func (c *Cart) Key() string {
	return c.key
}

// Add adds a single unit of p.
func (c *Cart) Add(ctx context.Context, p Product) error {
	return c.AddItem(ctx, p, 1)
}

// AddItem increments the line for p.ID by quantity, or appends a new line
// holding a snapshot of p when there is none. With a stock limit the line is
// raised at most to p.Stock and is never lowered by an add.
func (c *Cart) AddItem(ctx context.Context, p Product, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if c.exceedsMax(quantity) {
		return ErrQuantityTooLarge
	}
	if c.enforceStock && p.Stock <= 0 {
		return ErrOutOfStock
	}

	next := c.cloneItems()
	idx := indexOf(next, p.ID)
	current := 0
	if idx >= 0 {
		current = next[idx].Quantity
	}
	if c.enforceStock {
		quantity = min(quantity, max(p.Stock-current, 0))
	}
	if quantity > math.MaxInt-current || c.exceedsMax(current+quantity) {
		return ErrQuantityTooLarge
	}

	if idx >= 0 {
		next[idx].Quantity = current + quantity
	} else {
		next = append(next, LineItem{Product: p, Quantity: quantity})
	}
	return c.commit(ctx, next)
}

// RemoveItem drops the line for productID. Unknown ids are ignored.
func (c *Cart) RemoveItem(ctx context.Context, productID string) error {
	idx := indexOf(c.items, productID)
	if idx < 0 {
		return nil
	}

	next := make([]LineItem, 0, len(c.items)-1)
	next = append(next, c.items[:idx]...)
	next = append(next, c.items[idx+1:]...)
	return c.commit(ctx, next)
}

// SetQuantity replaces the quantity of the line for productID in place.
// A quantity of zero or less removes the line. Unknown ids are ignored.
// With a stock limit the quantity is clamped to the snapshot's stock, and a
// line whose snapshot has no stock cannot be raised or lowered.
func (c *Cart) SetQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return c.RemoveItem(ctx, productID)
	}

	idx := indexOf(c.items, productID)
	if idx < 0 {
		return nil
	}

	if c.exceedsMax(quantity) {
		return ErrQuantityTooLarge
	}

	next := c.cloneItems()
	if c.enforceStock {
		if next[idx].Product.Stock <= 0 {
			return ErrOutOfStock
		}
		quantity = min(quantity, next[idx].Product.Stock)
	}
	next[idx].Quantity = quantity
	return c.commit(ctx, next)
}

// Clear empties the cart and deletes its stored record.
func (c *Cart) Clear(ctx context.Context) error {
	return c.commit(ctx, nil)
}

// Items returns a copy of the line items in insertion order.
func (c *Cart) Items() []LineItem {
	return c.cloneItems()
}

// Line returns the line for productID.
func (c *Cart) Line(productID string) (LineItem, bool) {
	idx := indexOf(c.items, productID)
	if idx < 0 {
		return LineItem{}, false
	}
	return c.items[idx], true
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Count returns the number of units in the cart, not the number of lines.
func (c *Cart) Count() int {
	total := 0
	for _, li := range c.items {
		total += li.Quantity
	}
	return total
}

// Subtotal returns the sum of price times quantity over all lines, using the
// prices captured when each product was added.
func (c *Cart) Subtotal() int64 {
	var total int64
	for _, li := range c.items {
		total += li.Subtotal()
	}
	return total
}

// Tax returns Subtotal multiplied by the configured tax rate.
func (c *Cart) Tax() decimal.Decimal {
	return decimal.NewFromInt(c.Subtotal()).Mul(c.taxRate)
}

// Total returns Subtotal plus Tax.
func (c *Cart) Total() decimal.Decimal {
	return decimal.NewFromInt(c.Subtotal()).Add(c.Tax())
}

// TaxRate returns the rate applied by Tax.
func (c *Cart) TaxRate() decimal.Decimal {
	return c.taxRate
}

// Summary collects Count, Subtotal, Tax and Total.
func (c *Cart) Summary() Summary {
	return Summary{
		Count:    c.Count(),
		Subtotal: c.Subtotal(),
		Tax:      c.Tax(),
		Total:    c.Total(),
	}
}

// commit persists next and only then makes it the current state, so a failed
// write leaves the cart as it was.
func (c *Cart) commit(ctx context.Context, next []LineItem) error {
	if err := c.persist(ctx, next); err != nil {
		return err
	}
	c.items = next
	return nil
}

func (c *Cart) persist(ctx context.Context, items []LineItem) error {
	if len(items) == 0 {
		if err := c.store.Delete(ctx, c.key); err != nil {
			return fmt.Errorf("store.Delete %s: %w", c.key, err)
		}
		return nil
	}

	data, err := encodeItems(items)
	if err != nil {
		return err
	}
	if err := c.store.Set(ctx, c.key, data); err != nil {
		return fmt.Errorf("store.Set %s: %w", c.key, err)
	}
	return nil
}

func (c *Cart) exceedsMax(quantity int) bool {
	return c.maxQuantity > 0 && quantity > c.maxQuantity
}

func (c *Cart) reportCorrupt(err error) {
	if c.onCorrupt != nil {
		c.onCorrupt(err)
	}
}

func (c *Cart) cloneItems() []LineItem {
	if len(c.items) == 0 {
		return nil
	}
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

func indexOf(items []LineItem, productID string) int {
	for i, li := range items {
		if li.Product.ID == productID {
			return i
		}
	}
	return -1
}
