package game

import (
	"github.com/QFinUWA/QFinProject2/internal/agent"
	"github.com/QFinUWA/QFinProject2/internal/common"
	"github.com/QFinUWA/QFinProject2/internal/engine"
)

// Observation is one tick's recorded state: a deep copy of every ticker's
// book (so later mutation of the live book cannot corrupt history), the
// trades that occurred that tick, and every participant's accounting
// Snapshot as of that tick's end, keyed by agent name. This is a pure sink —
// it never feeds back into matching (spec §4.F).
type Observation struct {
	LoopNum     int64
	Book        engine.BookView
	Trades      []common.Trade
	AgentStates map[string]agent.Snapshot
}

// newObservation deep-copies view's Rest slices so the Observation is
// immune to later in-place mutation of the live book. agentStates is taken
// as-is: each Snapshot is already a detached copy built by TakeSnapshot.
func newObservation(loopNum int64, view engine.BookView, trades []common.Trade, agentStates map[string]agent.Snapshot) Observation {
	book := make(engine.BookView, len(view))
	for ticker, tv := range view {
		book[ticker] = engine.TickerView{
			Bids: append([]common.Rest(nil), tv.Bids...),
			Asks: append([]common.Rest(nil), tv.Asks...),
		}
	}
	tradesCopy := append([]common.Trade(nil), trades...)
	return Observation{LoopNum: loopNum, Book: book, Trades: tradesCopy, AgentStates: agentStates}
}
