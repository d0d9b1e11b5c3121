// Package game drives the deterministic tick loop that ties the matching
// engine to the agent accounting core: per tick it snapshots the book,
// collects each agent's message batch, submits to the engine in agent
// order, fans trades back out, and records an Observation for export.
// Grounded on original_source/bin/mac_version/base.py's Game/Exchange
// wiring and original_source/play_game.py's run_game entry point; the
// teacher repo never had a simulation loop of its own (its internal/worker.go
// and internal/server.go were a TCP broker, not a tick scheduler), so the
// control-flow shape here follows the original directly, expressed with the
// teacher's logging and error idioms.
package game

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/QFinUWA/QFinProject2/internal/agent"
	"github.com/QFinUWA/QFinProject2/internal/common"
	"github.com/QFinUWA/QFinProject2/internal/engine"
)

// Participant pairs an Agent with the BaseAgent accounting it feeds trades
// and fines into. Most concrete strategies embed BaseAgent directly, so
// Acct is typically the same value as Agent underneath an interface;
// keeping them separate lets the loop always reach the accounting surface
// (PnL, Position) without a type assertion on Agent.
type Participant struct {
	Agent agent.Agent
	Acct  *agent.BaseAgent
}

// Game runs the tick loop over a fixed, ordered set of participants against
// one Engine, recording an Observation per tick.
type Game struct {
	engine       *engine.Engine
	participants []Participant

	Observations []Observation
	AllTrades    []common.Trade
}

// New builds a Game. Participant order is fixed at construction and is the
// agent-order used for message submission every tick (spec §4.E: the
// implementation must document and stabilize agent order across runs).
func New(e *engine.Engine, participants []Participant) *Game {
	return &Game{
		engine:       e,
		participants: participants,
	}
}

// Run executes ticks 0..ticks-1, returning the final per-participant PnL
// keyed by agent name.
func (g *Game) Run(ticks int64) map[string]float64 {
	for t := int64(0); t < ticks; t++ {
		g.step(t)
	}

	pnl := make(map[string]float64, len(g.participants))
	view := g.engine.Snapshot()
	for _, p := range g.participants {
		pnl[p.Agent.Name()] = p.Acct.PnL(view)
	}
	return pnl
}

func (g *Game) step(loopNum int64) {
	view := g.engine.Snapshot()

	// Every participant sees the same pre-tick snapshot (step 1-2): message
	// batches are collected in full before any of them are submitted.
	batches := make([][]common.Message, len(g.participants))
	for i, p := range g.participants {
		batches[i] = p.Agent.OnBook(view, loopNum)
	}

	var tickTrades []common.Trade
	for i, p := range g.participants {
		trades := g.dispatch(p, batches[i], loopNum)
		tickTrades = append(tickTrades, trades...)
	}

	for _, p := range g.participants {
		p.Agent.OnTrades(tickTrades)
	}
	postTick := g.engine.Snapshot()
	for _, p := range g.participants {
		p.Agent.TickHook(postTick)
	}

	agentStates := make(map[string]agent.Snapshot, len(g.participants))
	for _, p := range g.participants {
		agentStates[p.Agent.Name()] = p.Acct.TakeSnapshot(postTick)
	}

	g.AllTrades = append(g.AllTrades, tickTrades...)
	g.Observations = append(g.Observations, newObservation(loopNum, postTick, tickTrades, agentStates))
}

// dispatch submits one participant's message batch to the engine in the
// order returned, per spec §4.E step 3. ORDER submits, REMOVE cancels,
// CONVERSION applies the out-of-band position adjustment directly to the
// requesting participant's ledger, bypassing the book entirely.
func (g *Game) dispatch(p Participant, messages []common.Message, loopNum int64) []common.Trade {
	var trades []common.Trade
	for _, msg := range messages {
		switch msg.Kind {
		case common.OrderMessage:
			t, err := g.engine.Submit(msg.Order, loopNum)
			if err != nil {
				g.logMessageError(p, err)
				continue
			}
			trades = append(trades, t...)
		case common.RemoveMessage:
			g.engine.Cancel(msg.OrderID)
		case common.ConversionMessage:
			result, err := g.engine.ExecuteConversion(msg.Conversion)
			if err != nil {
				g.logMessageError(p, err)
				continue
			}
			p.Acct.ApplyConversion(result)
		default:
			g.logMessageError(p, fmt.Errorf("game: unrecognized message kind %d", msg.Kind))
		}
	}
	return trades
}

// logMessageError reports a per-message failure to the log and continues
// the tick, per spec §4's error propagation policy: per-message errors
// never abort a tick.
func (g *Game) logMessageError(p Participant, err error) {
	log.Error().Err(err).Str("bot", p.Agent.Name()).Msg("message rejected")
}
