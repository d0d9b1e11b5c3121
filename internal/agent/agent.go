// Package agent implements the accounting core shared by every trading
// participant: position and cash ledgers, fine application, mid-price
// estimation with last-known fallback, and order-management utilities.
// Grounded on original_source/bin/linux_version/base_algo.py
// (PlayerAlgorithm), rewritten as composition over inheritance per
// SPEC_FULL.md's Design Notes: a concrete BaseAgent holds the shared
// bookkeeping, and strategies embed it and supply their own OnBook instead
// of subclassing and overriding send_messages.
package agent

import (
	"math"

	rbt "github.com/emirpasic/gods/v2/trees/redblacktree"

	"github.com/QFinUWA/QFinProject2/internal/catalog"
	"github.com/QFinUWA/QFinProject2/internal/common"
	"github.com/QFinUWA/QFinProject2/internal/engine"
)

// defaultMid is the starting mid-price estimate for every ticker before any
// two-sided book has ever been observed.
const defaultMid = 1000.0

// Agent is the polymorphic capability the game loop drives each tick: a
// value that can see the book and decide messages, absorb trade fills, and
// run its own per-tick bookkeeping. BaseAgent implements OnTrades and
// TickHook; a concrete strategy embeds BaseAgent and supplies OnBook.
type Agent interface {
	Name() string
	OnBook(view engine.BookView, loopNum int64) []common.Message
	OnTrades(trades []common.Trade)
	TickHook(view engine.BookView)
}

// BaseAgent is the shared accounting core: position ledger, cash ledger,
// outstanding-order tracking and mid-price memory. Embed it in a concrete
// strategy type.
type BaseAgent struct {
	name    string
	catalog *catalog.Catalog

	positions map[string]int64
	cash      float64

	// sentOrders tracks outstanding order ids per ticker as an ordered set
	// (ascending by id, which is also arrival order since ids are assigned
	// monotonically). Grounded on
	// ccyyhlg-lightning-exchange/orderbook/price_tree_sharded.go's use of
	// github.com/emirpasic/gods/v2/trees/redblacktree.
	sentOrders map[string]*rbt.Tree[int64, struct{}]
	nextID     int64

	lastMids map[string]float64
}

// NewBaseAgent constructs a BaseAgent with zeroed positions/cash and
// last_mids defaulted to 1000.0 for every catalog product.
func NewBaseAgent(name string, products *catalog.Catalog) *BaseAgent {
	a := &BaseAgent{
		name:       name,
		catalog:    products,
		positions:  make(map[string]int64),
		sentOrders: make(map[string]*rbt.Tree[int64, struct{}]),
		lastMids:   make(map[string]float64),
	}
	for _, ticker := range products.Tickers() {
		a.positions[ticker] = 0
		a.lastMids[ticker] = defaultMid
		a.sentOrders[ticker] = rbt.New[int64, struct{}]()
	}
	return a
}

// Name returns the agent's bot name, used to attribute fills and to drive
// the export anonymization rule (spec §6).
func (a *BaseAgent) Name() string { return a.name }

// Position returns the current signed position for ticker.
func (a *BaseAgent) Position(ticker string) int64 { return a.positions[ticker] }

// Cash returns the current cash balance.
func (a *BaseAgent) Cash() float64 { return a.cash }

// CreateOrder allocates a fresh order id, records it for later
// cancellation, and returns the ORDER message wrapping it.
func (a *BaseAgent) CreateOrder(ticker string, price float64, size int64, dir common.Side) (common.Message, error) {
	order, err := common.NewOrder(ticker, price, size, a.nextID, dir, a.name)
	if err != nil {
		return common.Message{}, err
	}
	a.trackOrder(ticker, a.nextID)
	a.nextID++
	return common.NewOrderMessage(order), nil
}

// CancelOrder returns a REMOVE message for orderID and stops tracking it.
// Per spec §4.D, behavior is undefined if the id isn't currently tracked;
// this implementation treats that case as a no-op removal.
func (a *BaseAgent) CancelOrder(ticker string, orderID int64) common.Message {
	if tree, ok := a.sentOrders[ticker]; ok {
		tree.Remove(orderID)
	}
	return common.NewRemoveMessage(orderID)
}

// CancelAll emits a REMOVE for every tracked outstanding id, iterating a
// copy of each ticker's tracked ids so that CancelOrder can remove each id
// from the set while the loop runs, per spec §4.D. The set itself is not
// safe for concurrent use.
func (a *BaseAgent) CancelAll() []common.Message {
	var msgs []common.Message
	for ticker, tree := range a.sentOrders {
		ids := tree.Keys()
		for _, id := range ids {
			msgs = append(msgs, a.CancelOrder(ticker, id))
		}
	}
	return msgs
}

func (a *BaseAgent) trackOrder(ticker string, orderID int64) {
	tree, ok := a.sentOrders[ticker]
	if !ok {
		tree = rbt.New[int64, struct{}]()
		a.sentOrders[ticker] = tree
	}
	tree.Put(orderID, struct{}{})
}

// NextOrderID previews the id the next CreateOrder call will allocate.
func (a *BaseAgent) NextOrderID() int64 { return a.nextID }

// SetNextOrderID overrides the order-id counter, mirroring the original's
// set_idx (used when resuming a run with a known id watermark).
func (a *BaseAgent) SetNextOrderID(id int64) { a.nextID = id }

// OnTrades ingests a tick's trade list, adjusting positions and cash for
// every trade in which this agent was either party. See spec §4.D "Trade
// ingestion" table.
func (a *BaseAgent) OnTrades(trades []common.Trade) {
	for _, t := range trades {
		switch {
		case t.AggBot == a.name:
			a.applyFill(t.Ticker, t.AggDir, t.Size, t.Price, true)
		case t.RestBot == a.name:
			a.applyFill(t.Ticker, t.AggDir, t.Size, t.Price, false)
		}
		a.applyTradeFee(t)
	}
}

func (a *BaseAgent) applyFill(ticker string, aggDir common.Side, size int64, price float64, wasAggressor bool) {
	direction := aggDir.Sign()
	if !wasAggressor {
		direction = -direction
	}
	a.positions[ticker] += int64(direction) * size
	a.cash -= direction * price * float64(size)
}

func (a *BaseAgent) applyTradeFee(t common.Trade) {
	if t.AggBot != a.name && t.RestBot != a.name {
		return
	}
	product, ok := a.catalog.Lookup(t.Ticker)
	if !ok || product.TradeFee == nil {
		return
	}
	switch product.FeeType {
	case common.SetFee:
		a.cash -= *product.TradeFee
	case common.PercentageFee:
		a.cash -= *product.TradeFee * t.Price * float64(t.Size)
	}
}

// ApplyFines debits cash once per tick, per ticker whose absolute position
// exceeds its configured position limit: fine * (|position| - pos_limit).
func (a *BaseAgent) ApplyFines() {
	for ticker, pos := range a.positions {
		product, ok := a.catalog.Lookup(ticker)
		if !ok || product.PosLimit == nil {
			continue
		}
		overrun := int64(math.Abs(float64(pos))) - *product.PosLimit
		if overrun > 0 {
			a.cash -= product.Fine * float64(overrun)
		}
	}
}

// PnL is cash plus the mark-to-market value of every open position.
func (a *BaseAgent) PnL(view engine.BookView) float64 {
	pnl := a.cash
	for ticker, pos := range a.positions {
		if pos == 0 {
			continue
		}
		pnl += float64(pos) * a.MidPrice(view, ticker, 1)
	}
	return pnl
}

// ApplyConversion applies an engine-derived ConversionResult directly to
// this agent's position ledger, bypassing the book entirely (spec §4.E
// step 3, CONVERSION messages).
func (a *BaseAgent) ApplyConversion(result common.ConversionResult) {
	for ticker, delta := range result.PosChanges {
		a.positions[ticker] += delta
	}
}

// Snapshot is one agent's accounting ledger at a point in time: cash,
// per-ticker position, per-ticker mid-price estimate and mark-to-market
// PnL. Unlike Cash/Position/PnL, which always read the agent's *current*
// ledger, a Snapshot value is a detached copy a caller can hold onto (e.g.
// one per tick) without it changing underfoot as later trades settle.
type Snapshot struct {
	Cash      float64
	Positions map[string]int64
	Mids      map[string]float64
	PnL       float64
}

// TakeSnapshot copies the agent's current cash and positions and computes
// each ticker's MidPrice estimate and the PnL against view (falling back to
// mid-price memory where a side is empty), for recording a tick's accounting
// state. Grounded on the original's per-timestamp position_history and
// pnl_history recording (original_source/bin/linux_version/base_algo.py).
func (a *BaseAgent) TakeSnapshot(view engine.BookView) Snapshot {
	positions := make(map[string]int64, len(a.positions))
	for ticker, pos := range a.positions {
		positions[ticker] = pos
	}
	mids := make(map[string]float64, len(a.lastMids))
	for ticker := range a.lastMids {
		mids[ticker] = a.MidPrice(view, ticker, 1)
	}
	return Snapshot{
		Cash:      a.cash,
		Positions: positions,
		Mids:      mids,
		PnL:       a.PnL(view),
	}
}

// TickHook runs the default per-tick bookkeeping: fine application and
// mid-price memory update. A strategy embedding BaseAgent that needs
// additional per-tick work should call this and then do its own.
func (a *BaseAgent) TickHook(view engine.BookView) {
	a.ApplyFines()
	a.UpdateMemory(view)
}

// OnBook is BaseAgent's default participation: it sends nothing. Concrete
// strategy logic (what to quote, when to cancel) is layered on top by
// embedding BaseAgent and shadowing this method; BaseAgent alone already
// satisfies Agent, so it can stand in directly wherever a passive
// participant is wanted.
func (a *BaseAgent) OnBook(_ engine.BookView, _ int64) []common.Message {
	return nil
}
