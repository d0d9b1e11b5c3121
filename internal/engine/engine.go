// Package engine implements the multi-product continuous limit order book
// matching engine: price-time priority matching, residual insertion, and
// cancellation by id. Adapted from the teacher's internal/engine package
// (engine.go's stub Engine/Trade, orderbook.go's Match/handleLimit),
// generalised from a single-asset book into the catalog-driven, multi-ticker
// engine the specification requires.
package engine

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/QFinUWA/QFinProject2/internal/catalog"
	"github.com/QFinUWA/QFinProject2/internal/common"
)

var (
	// ErrDuplicateOrderID is returned when order_id has been submitted
	// before; the order is not processed and the book is unchanged.
	ErrDuplicateOrderID = errors.New("engine: duplicate order id")
	// ErrUnknownTicker is returned when the order's ticker is not in the
	// engine's catalog; no state change occurs.
	ErrUnknownTicker = errors.New("engine: unknown ticker")
)

// idLocation is the engine index entry recorded when a residual is added:
// order_id -> (ticker, side, price level). Entries persist even after the
// rest is fully consumed, so an id that has once rested is never accepted
// again (spec §3 "Engine index"). An order filled in full on submission
// never rests and leaves no entry.
type idLocation struct {
	ticker string
	side   common.Side
	ticks  int64
}

// Option configures optional Engine behavior.
type Option func(*Engine)

// WithRemovalWarnings enables a logged warning when Cancel misses (unknown
// or already-dead order id). The default is silent, matching spec §4.C.
func WithRemovalWarnings() Option {
	return func(e *Engine) { e.removalWarnings = true }
}

// Engine is the multi-product matching engine. One tickerBook is built per
// catalog product at construction; the catalog itself never changes after
// New returns (component A, §4.A).
type Engine struct {
	catalog         *catalog.Catalog
	books           map[string]*tickerBook
	seen            map[int64]idLocation
	removalWarnings bool
}

// New builds an Engine over the given catalog.
func New(products *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog: products,
		books:   make(map[string]*tickerBook),
		seen:    make(map[int64]idLocation),
	}
	for _, p := range products.All() {
		e.books[p.Ticker] = newTickerBook(p.MPV)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Submit matches order against the opposing side of its ticker's book under
// price-time priority, returning every Trade generated. Any unfilled
// residual is inserted onto order's own side. Fails with ErrDuplicateOrderID
// if order.OrderID has ever rested before, or ErrUnknownTicker if the
// ticker isn't in the catalog. See spec §4.C "Matching algorithm".
func (e *Engine) Submit(order common.Order, loopNum int64) ([]common.Trade, error) {
	if _, seen := e.seen[order.OrderID]; seen {
		return nil, fmt.Errorf("%w: %d", ErrDuplicateOrderID, order.OrderID)
	}

	book, ok := e.books[order.Ticker]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTicker, order.Ticker)
	}

	trades := book.match(&order, loopNum)

	if order.Size > 0 {
		ticks := book.ticksOf(order.Price)
		book.insertResidual(order)
		e.seen[order.OrderID] = idLocation{ticker: order.Ticker, side: order.Dir, ticks: ticks}
	}

	return trades, nil
}

// Cancel removes the Rest identified by orderID from its book, if present.
// Returns false if the id is unknown or already fully filled/cancelled. If
// the engine was built WithRemovalWarnings, a miss is logged; by default
// it is silent.
func (e *Engine) Cancel(orderID int64) bool {
	loc, ok := e.seen[orderID]
	if !ok {
		e.warnCancelMiss(orderID, "order id never submitted")
		return false
	}

	book := e.books[loc.ticker]
	removed := book.cancel(loc.side, loc.ticks, orderID)
	if !removed {
		e.warnCancelMiss(orderID, "order already filled or cancelled")
	}
	return removed
}

func (e *Engine) warnCancelMiss(orderID int64, reason string) {
	if !e.removalWarnings {
		return
	}
	log.Warn().Int64("order_id", orderID).Str("reason", reason).Msg("cancel miss")
}

// TickerView is the read-only view of one product's book handed to agents:
// both sides as Rest sequences in priority order, most aggressive first.
type TickerView struct {
	Bids []common.Rest
	Asks []common.Rest
}

// BookView is the full per-ticker snapshot handed to agents each tick.
type BookView map[string]TickerView

// Snapshot returns a shallow, point-in-time view of every product's book.
func (e *Engine) Snapshot() BookView {
	view := make(BookView, len(e.books))
	for ticker, book := range e.books {
		bids, asks := book.snapshot()
		view[ticker] = TickerView{Bids: bids, Asks: asks}
	}
	return view
}

// ExecuteConversion applies the out-of-band basket decomposition described
// in spec §6: a composite product is exchanged for fixed integer quantities
// of its constituents. This default implementation derives the position
// changes directly from the product's configured Conversions ratios; it is
// a documented extension point, not a guarantee of market-accurate pricing.
func (e *Engine) ExecuteConversion(req common.ConversionRequest) (common.ConversionResult, error) {
	product, ok := e.catalog.Lookup(req.Ticker)
	if !ok {
		return common.ConversionResult{}, fmt.Errorf("%w: %s", ErrUnknownTicker, req.Ticker)
	}

	sign := int64(req.Dir.Sign())
	changes := make(map[string]int64, len(product.Conversions)+1)
	changes[req.Ticker] = sign * req.Size
	for component, multiplier := range product.Conversions {
		changes[component] += -sign * multiplier * req.Size
	}

	return common.ConversionResult{PosChanges: changes}, nil
}
