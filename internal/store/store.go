// Package store owns a cart's state, applies commands to it in dispatch order
// and mirrors the item list into a port.Storage slot.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nikolayk812/storefront-cart/internal/domain"
	"github.com/nikolayk812/storefront-cart/internal/port"
	"github.com/nikolayk812/storefront-cart/internal/snapshot"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultKey     = "cart"
	DefaultTimeout = 2 * time.Second
)

type options struct {
	key     string
	logger  *zap.Logger
	timeout time.Duration
}

type Option func(*options)

// WithKey sets the storage key the item list is persisted under.
func WithKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.key = key
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTimeout bounds every storage call.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// Store is a cart state container. It starts loading; Hydrate loads the
// persisted items once. Every change of the item list is published to
// subscribers and written to storage.
//
// Subscribers run while the store is locked and must not call back into
// mutating methods.
type Store[P any] struct {
	storage port.Storage
	opts    options

	mu          sync.Mutex
	state       domain.CartState[P]
	hydrated    bool
	dirty       bool
	subscribers []subscriber[P]
	nextSubID   int
}

type subscriber[P any] struct {
	id int
	fn func(domain.CartState[P])
}

func New[P any](storage port.Storage, opts ...Option) *Store[P] {
	o := options{
		key:     DefaultKey,
		logger:  zap.NewNop(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Store[P]{
		storage: storage,
		opts:    o,
		state:   domain.NewLoadingState[P](),
	}
}

// Hydrate loads the persisted items and ends the loading phase. A missing,
// unreadable or corrupt snapshot leaves the cart empty. If the cart was
// changed while loading, those changes win over the snapshot and are
// written back. Only the first call has an effect.
func (s *Store[P]) Hydrate(ctx context.Context) {
	s.mu.Lock()
	if s.hydrated {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	items := s.load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hydrated {
		return
	}
	s.hydrated = true

	next := s.state
	next.IsLoading = false

	if s.dirty {
		s.opts.logger.Info("cart changed while loading, discarding persisted snapshot",
			zap.Int("persisted_lines", len(items)),
			zap.Int("current_lines", len(next.Items)))
		s.dirty = false
		s.state = next
		s.persist(ctx, next.Items)
	} else {
		s.state = next.WithItems(items)
	}

	s.opts.logger.Debug("cart hydrated",
		zap.Int("lines", len(s.state.Items)),
		zap.Int("total_items", s.state.TotalItems))

	s.notify()
}

func (s *Store[P]) load(ctx context.Context) []domain.CartLine[P] {
	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()

	value, found, err := s.storage.Read(ctx, s.opts.key)
	if err != nil {
		s.opts.logger.Error("read cart snapshot", zap.String("key", s.opts.key), zap.Error(err))
		return []domain.CartLine[P]{}
	}
	if !found {
		return []domain.CartLine[P]{}
	}

	items, err := snapshot.Decode[P]([]byte(value))
	if err != nil {
		s.opts.logger.Warn("discarding saved cart", zap.String("key", s.opts.key), zap.Error(err))
		return []domain.CartLine[P]{}
	}

	return items
}

// Dispatch applies cmd and returns the resulting state.
func (s *Store[P]) Dispatch(ctx context.Context, cmd domain.Command) domain.CartState[P] {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := domain.Reduce(s.state, cmd)
	if !changed {
		return s.state.Clone()
	}

	s.logClamp(cmd, next)
	s.state = next
	s.notify()

	if s.state.IsLoading {
		s.dirty = true
	} else {
		s.persist(ctx, s.state.Items)
	}

	return s.state.Clone()
}

func (s *Store[P]) AddItem(ctx context.Context, line domain.CartLine[P], quantity int) domain.CartState[P] {
	return s.Dispatch(ctx, domain.AddItem[P]{Line: line, Quantity: quantity})
}

func (s *Store[P]) RemoveItem(ctx context.Context, productID string) domain.CartState[P] {
	return s.Dispatch(ctx, domain.RemoveItem{ProductID: productID})
}

func (s *Store[P]) UpdateQuantity(ctx context.Context, productID string, quantity int) domain.CartState[P] {
	return s.Dispatch(ctx, domain.UpdateQuantity{ProductID: productID, Quantity: quantity})
}

func (s *Store[P]) ClearCart(ctx context.Context) domain.CartState[P] {
	return s.Dispatch(ctx, domain.ClearCart{})
}

// State returns a copy of the current state.
func (s *Store[P]) State() domain.CartState[P] {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.Clone()
}

func (s *Store[P]) IsItemInCart(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.IsItemInCart(productID)
}

func (s *Store[P]) GetItemQuantity(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.GetItemQuantity(productID)
}

// Line returns the cart line for productID, if present.
func (s *Store[P]) Line(productID string) (domain.CartLine[P], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.Line(productID)
}

func (s *Store[P]) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.TotalItems
}

func (s *Store[P]) TotalAmount() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.TotalAmount
}

func (s *Store[P]) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.IsLoading
}

// Subscribe registers fn to receive every new state, in registration order.
// The returned function removes the subscription.
func (s *Store[P]) Subscribe(fn func(domain.CartState[P])) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers = append(s.subscribers, subscriber[P]{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

func (s *Store[P]) notify() {
	for _, sub := range s.subscribers {
		sub.fn(s.state.Clone())
	}
}

// persist writes items to storage. Failures are logged and dropped: the
// in-memory state stays authoritative.
func (s *Store[P]) persist(ctx context.Context, items []domain.CartLine[P]) {
	data, err := snapshot.Encode(items)
	if err != nil {
		s.opts.logger.Error("encode cart snapshot", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.timeout)
	defer cancel()

	if err := s.storage.Write(ctx, s.opts.key, string(data)); err != nil {
		level := zap.ErrorLevel
		if errors.Is(err, context.DeadlineExceeded) {
			level = zap.WarnLevel
		}
		s.opts.logger.Log(level, "write cart snapshot", zap.String("key", s.opts.key), zap.Error(err))
	}
}

func (s *Store[P]) logClamp(cmd domain.Command, next domain.CartState[P]) {
	var productID string
	var requested int

	switch c := cmd.(type) {
	case domain.AddItem[P]:
		productID = c.Line.ProductID
		requested = s.state.GetItemQuantity(productID) + max(c.Quantity, 1)
	case domain.UpdateQuantity:
		productID, requested = c.ProductID, c.Quantity
	default:
		return
	}

	if got := next.GetItemQuantity(productID); got > 0 && got < requested {
		s.opts.logger.Debug("quantity clamped",
			zap.String("product_id", productID),
			zap.Int("requested", requested),
			zap.Int("quantity", got))
	}
}
