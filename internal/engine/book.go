package engine

import (
	"math"

	"github.com/tidwall/btree"

	"github.com/QFinUWA/QFinProject2/internal/common"
)

// priceLevel is one price-time-ordered FIFO queue of Rests at a single
// price. Adapted from the teacher's engine.PriceLevel
// (internal/engine/orderbook.go), keyed by integer tick count instead of a
// raw float64 so level comparison and the crossing test are exact (see
// Design Notes in SPEC_FULL.md on dropping the epsilon tolerance).
type priceLevel struct {
	ticks int64
	price float64
	rests []*common.Rest
}

// tickerBook is the dual-sided book for a single product: a sorted map of
// price (by tick count) to FIFO queue of Rests, per the two-level structure
// Design Notes explicitly permits in place of a single linear scan. Bids
// are ordered most-aggressive (highest price) first; Asks are ordered
// most-aggressive (lowest price) first.
type tickerBook struct {
	bids *btree.BTreeG[*priceLevel]
	asks *btree.BTreeG[*priceLevel]
	mpv  float64
}

func newTickerBook(mpv float64) *tickerBook {
	bids := btree.NewBTreeG(func(a, b *priceLevel) bool { return a.ticks > b.ticks })
	asks := btree.NewBTreeG(func(a, b *priceLevel) bool { return a.ticks < b.ticks })
	return &tickerBook{bids: bids, asks: asks, mpv: mpv}
}

func (b *tickerBook) ticksOf(price float64) int64 {
	if b.mpv <= 0 {
		return int64(math.Round(price))
	}
	return int64(math.Round(price / b.mpv))
}

func (b *tickerBook) treeFor(dir common.Side) *btree.BTreeG[*priceLevel] {
	if dir == common.Buy {
		return b.bids
	}
	return b.asks
}

// match consumes crossing levels on the opposing side for the incoming
// order, mutating order.Size down to its unfilled residual and returning
// every Trade generated. See spec §4.C "Matching algorithm".
func (b *tickerBook) match(order *common.Order, loopNum int64) []common.Trade {
	var trades []common.Trade
	opposite := b.treeFor(order.Dir.Opposite())
	orderTicks := b.ticksOf(order.Price)

	for order.Size > 0 {
		level, ok := opposite.MinMut()
		if !ok {
			break
		}

		var crossing bool
		if order.Dir == common.Buy {
			crossing = level.ticks <= orderTicks
		} else {
			crossing = level.ticks >= orderTicks
		}
		if !crossing {
			break
		}

		for len(level.rests) > 0 && order.Size > 0 {
			rest := level.rests[0]
			tradeSize := order.Size
			if rest.Size < tradeSize {
				tradeSize = rest.Size
			}

			trades = append(trades, common.Trade{
				Ticker:      order.Ticker,
				Price:       rest.Price,
				Size:        tradeSize,
				AggOrderID:  order.OrderID,
				RestOrderID: rest.OrderID,
				AggDir:      order.Dir,
				AggBot:      order.BotName,
				RestBot:     rest.BotName,
				LoopNum:     loopNum,
			})

			order.Size -= tradeSize
			rest.Size -= tradeSize
			if rest.Size == 0 {
				level.rests = level.rests[1:]
			}
		}

		if len(level.rests) == 0 {
			opposite.Delete(level)
		}
	}

	return trades
}

// insertResidual places the unfilled remainder of order onto its own side
// of the book, preserving price-time priority: an existing level at the
// same tick count gets the new Rest appended to the back of its FIFO queue.
func (b *tickerBook) insertResidual(order common.Order) {
	tree := b.treeFor(order.Dir)
	ticks := b.ticksOf(order.Price)

	rest := &common.Rest{
		Size:    order.Size,
		Price:   order.Price,
		Dir:     order.Dir,
		OrderID: order.OrderID,
		Ticker:  order.Ticker,
		Aggness: order.Aggness(),
		BotName: order.BotName,
	}

	if level, ok := tree.GetMut(&priceLevel{ticks: ticks}); ok {
		level.rests = append(level.rests, rest)
		return
	}

	tree.Set(&priceLevel{ticks: ticks, price: order.Price, rests: []*common.Rest{rest}})
}

// cancel removes the Rest identified by orderID from the given side at the
// given tick count, returning whether it was found.
func (b *tickerBook) cancel(dir common.Side, ticks int64, orderID int64) bool {
	tree := b.treeFor(dir)
	level, ok := tree.GetMut(&priceLevel{ticks: ticks})
	if !ok {
		return false
	}
	for i, r := range level.rests {
		if r.OrderID == orderID {
			level.rests = append(level.rests[:i], level.rests[i+1:]...)
			if len(level.rests) == 0 {
				tree.Delete(level)
			}
			return true
		}
	}
	return false
}

// snapshot returns both sides as read-only Rest slices in priority order
// (most aggressive first). The tree's ascending scan order already matches
// that requirement for both sides given their respective comparators.
func (b *tickerBook) snapshot() (bids, asks []common.Rest) {
	b.bids.Scan(func(level *priceLevel) bool {
		for _, r := range level.rests {
			bids = append(bids, *r)
		}
		return true
	})
	b.asks.Scan(func(level *priceLevel) bool {
		for _, r := range level.rests {
			asks = append(asks, *r)
		}
		return true
	})
	return bids, asks
}
