package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/runwayshop/runway/store"
	"github.com/sirupsen/logrus"
)

// Command is one cart state transition. Commands are applied by the pure
// reducer in Apply; they never touch storage themselves.
type Command interface {
	transition(s State, now time.Time, newID func() string) State
}

type AddItem struct {
	Product  Product
	Quantity int
	Variant  *string
}

type RemoveItem struct {
	ProductID string
	Variant   *string
}

type UpdateQuantity struct {
	ProductID string
	Quantity  int
	Variant   *string
}

// ClearItems empties the active cart. Saved items, the coupon and shipping
// survive a clear.
type ClearItems struct{}

type ApplyCoupon struct {
	Code     string
	Discount float64
	Type     CouponType
}

type RemoveCoupon struct{}

// ShippingPatch merges the set fields into the shipping config; nil fields
// are left untouched.
type ShippingPatch struct {
	Method            *string
	Cost              *float64
	Address           *Address
	EstimatedDelivery *time.Time
}

type UpdateShipping struct {
	Patch ShippingPatch
}

type SaveForLater struct {
	ProductID string
	Variant   *string
}

type MoveToCart struct {
	ProductID string
	Variant   *string
}

type RemoveSavedItem struct {
	ProductID string
	Variant   *string
}

// Apply is the reducer: it returns the state produced by cmd without
// mutating s. Lookup misses are no-ops, quantities clamp silently, and every
// effective transition refreshes LastUpdated.
func Apply(s State, cmd Command, now time.Time, newID func() string) State {
	return cmd.transition(s, now, newID)
}

func (c AddItem) transition(s State, now time.Time, newID func() string) State {
	qty := c.Quantity
	if qty < 1 {
		qty = 1
	}

	items := cloneItems(s.Items)
	if i := findItem(items, c.Product.ID, c.Variant); i >= 0 {
		items[i].Quantity = clampQty(items[i].Quantity+qty, items[i].MaxQuantity)
		items[i].LastUpdated = now
		s.Items = items
		s.LastUpdated = now
		return s
	}

	it := LineItem{
		ProductID:       c.Product.ID,
		SelectedVariant: c.Variant,
		CartItemID:      newID(),
		Name:            c.Product.Name,
		Image:           c.Product.Image,
		UnitPrice:       c.Product.Price,
		Quantity:        clampQty(qty, c.Product.MaxQuantity),
		MaxQuantity:     itemCap(c.Product.MaxQuantity),
		AddedAt:         now,
		LastUpdated:     now,
	}

	s.Items = append(items, it)
	s.LastUpdated = now
	return s
}

func (c RemoveItem) transition(s State, now time.Time, _ func() string) State {
	i := findItem(s.Items, c.ProductID, c.Variant)
	if i < 0 {
		return s
	}

	items := cloneItems(s.Items)
	s.Items = append(items[:i], items[i+1:]...)
	s.LastUpdated = now
	return s
}

func (c UpdateQuantity) transition(s State, now time.Time, newID func() string) State {
	// A non-positive quantity is removal, by definition.
	if c.Quantity <= 0 {
		return RemoveItem{ProductID: c.ProductID, Variant: c.Variant}.transition(s, now, newID)
	}

	i := findItem(s.Items, c.ProductID, c.Variant)
	if i < 0 {
		return s
	}

	items := cloneItems(s.Items)
	items[i].Quantity = clampQty(c.Quantity, items[i].MaxQuantity)
	items[i].LastUpdated = now
	s.Items = items
	s.LastUpdated = now
	return s
}

func (ClearItems) transition(s State, now time.Time, _ func() string) State {
	s.Items = []LineItem{}
	s.LastUpdated = now
	return s
}

func (c ApplyCoupon) transition(s State, now time.Time, _ func() string) State {
	s.Coupon = &Coupon{
		Code:      c.Code,
		Discount:  c.Discount,
		Type:      c.Type,
		AppliedAt: now,
	}
	s.LastUpdated = now
	return s
}

func (RemoveCoupon) transition(s State, now time.Time, _ func() string) State {
	s.Coupon = nil
	s.LastUpdated = now
	return s
}

func (c UpdateShipping) transition(s State, now time.Time, _ func() string) State {
	sh := s.Shipping
	if c.Patch.Method != nil {
		sh.Method = *c.Patch.Method
	}
	if c.Patch.Cost != nil {
		sh.Cost = *c.Patch.Cost
	}
	if c.Patch.Address != nil {
		addr := *c.Patch.Address
		sh.Address = &addr
	}
	if c.Patch.EstimatedDelivery != nil {
		d := *c.Patch.EstimatedDelivery
		sh.EstimatedDelivery = &d
	}
	sh.UpdatedAt = now

	s.Shipping = sh
	s.LastUpdated = now
	return s
}

func (c SaveForLater) transition(s State, now time.Time, _ func() string) State {
	i := findItem(s.Items, c.ProductID, c.Variant)
	if i < 0 {
		return s
	}

	items := cloneItems(s.Items)
	it := items[i]
	savedAt := now
	it.SavedAt = &savedAt

	s.Items = append(items[:i], items[i+1:]...)
	s.SavedItems = append(cloneItems(s.SavedItems), it)
	s.LastUpdated = now
	return s
}

func (c MoveToCart) transition(s State, now time.Time, _ func() string) State {
	i := findItem(s.SavedItems, c.ProductID, c.Variant)
	if i < 0 {
		return s
	}

	saved := cloneItems(s.SavedItems)
	it := saved[i]
	it.SavedAt = nil
	it.AddedAt = now
	it.LastUpdated = now

	s.SavedItems = append(saved[:i], saved[i+1:]...)

	// If the key re-entered the active cart while this item sat saved,
	// merge quantities instead of appending a duplicate line.
	items := cloneItems(s.Items)
	if j := findItem(items, c.ProductID, c.Variant); j >= 0 {
		items[j].Quantity = clampQty(items[j].Quantity+it.Quantity, items[j].MaxQuantity)
		items[j].LastUpdated = now
		s.Items = items
	} else {
		s.Items = append(items, it)
	}

	s.LastUpdated = now
	return s
}

func (c RemoveSavedItem) transition(s State, now time.Time, _ func() string) State {
	i := findItem(s.SavedItems, c.ProductID, c.Variant)
	if i < 0 {
		return s
	}

	saved := cloneItems(s.SavedItems)
	s.SavedItems = append(saved[:i], saved[i+1:]...)
	s.LastUpdated = now
	return s
}

// Engine owns one cart. It restores the state from the snapshot store,
// funnels every command through the reducer, and writes the new snapshot
// back after each mutation. A failed write is a warning, never an error:
// the in-memory state stays authoritative for the session.
type Engine struct {
	log    logrus.FieldLogger
	store  store.Store
	key    string
	runner Runner
	meta   Meta
	now    func() time.Time
	newID  func() string
	state  State
}

// Runner schedules fire-and-forget persistence writes. A nil Runner makes
// the engine write synchronously, which the HTTP handlers and tests rely on.
type Runner interface {
	Add(task func(ctx context.Context))
}

type EngineConfig struct {
	Log    logrus.FieldLogger
	Store  store.Store
	Key    string
	Runner Runner
	Meta   Meta

	// Now and NewID exist for tests; both default to the real thing.
	Now   func() time.Time
	NewID func() string
}

func NewEngine(cfg EngineConfig) *Engine {
	e := &Engine{
		log:    cfg.Log,
		store:  cfg.Store,
		key:    cfg.Key,
		runner: cfg.Runner,
		meta:   cfg.Meta,
		now:    cfg.Now,
		newID:  cfg.NewID,
	}
	if e.now == nil {
		e.now = func() time.Time { return time.Now().UTC() }
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	return e
}

// Init loads the persisted snapshot, if any. Expired, corrupt or unreadable
// snapshots are logged and replaced with a fresh cart, and the fresh cart is
// written through so the cartId is stable from first contact. Init itself
// only fails if it can't even reach the store, and even then the engine
// remains usable in memory.
func (e *Engine) Init(ctx context.Context) error {
	raw, ok, err := e.store.Load(ctx, e.key)
	if err != nil {
		e.state = NewState(e.newID(), e.meta, e.now())
		return err
	}

	if !ok {
		e.state = NewState(e.newID(), e.meta, e.now())
		e.persist(ctx)
		return nil
	}

	s, err := Restore(raw, e.now())
	if err != nil {
		e.log.WithFields(logrus.Fields{
			"key":     e.key,
			"message": err,
		}).Info("discarding cart snapshot")
		e.state = NewState(e.newID(), e.meta, e.now())
		e.persist(ctx)
		return nil
	}

	e.state = s
	return nil
}

// State returns the current cart state.
func (e *Engine) State() State {
	return e.state
}

// Dispatch runs cmd through the reducer and schedules the write-through.
func (e *Engine) Dispatch(ctx context.Context, cmd Command) State {
	e.state = Apply(e.state, cmd, e.now(), e.newID)
	e.persist(ctx)
	return e.state
}

func (e *Engine) persist(ctx context.Context) {
	raw, err := Snapshot(e.state)
	if err != nil {
		e.warn(err)
		return
	}

	key := e.key
	if e.runner == nil {
		if err := e.store.Save(ctx, key, raw); err != nil {
			e.warn(err)
		}
		return
	}

	e.runner.Add(func(ctx context.Context) {
		if err := e.store.Save(ctx, key, raw); err != nil {
			e.warn(err)
		}
	})
}

func (e *Engine) warn(err error) {
	e.log.WithFields(logrus.Fields{
		"key":     e.key,
		"message": err,
	}).Warn("cart snapshot not persisted")
}
