package agent

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/QFinUWA/QFinProject2/internal/common"
	"github.com/QFinUWA/QFinProject2/internal/engine"
)

// MidPrice estimates ticker's current mid-price from its book view.
//
//   - Both sides non-empty: walk up to `weights` units deep from each side's
//     head, size-weighted, and return the average of the two side prices.
//   - One side empty: clamp last_mid to the observable bound — min(last_mid,
//     best_bid) with bids only, max(last_mid, best_ask) with asks only. A
//     one-sided book bounds the true mid but doesn't pin a point estimate.
//   - Both empty: return last_mid unchanged.
func (a *BaseAgent) MidPrice(view engine.BookView, ticker string, weights int64) float64 {
	lastMid := a.lastMids[ticker]
	book := view[ticker]

	switch {
	case len(book.Bids) > 0 && len(book.Asks) > 0:
		bidPrice := weightedPrice(book.Bids, weights)
		askPrice := weightedPrice(book.Asks, weights)
		return (bidPrice + askPrice) / 2
	case len(book.Bids) > 0:
		return math.Min(lastMid, book.Bids[0].Price)
	case len(book.Asks) > 0:
		return math.Max(lastMid, book.Asks[0].Price)
	default:
		return lastMid
	}
}

// weightedPrice walks up to `weights` units of size from the head of a
// priority-ordered Rest slice, consuming min(level.size, remaining) units
// per level, and returns the size-weighted average price over those units.
func weightedPrice(rests []common.Rest, weights int64) float64 {
	if weights <= 0 {
		weights = 1
	}

	var consumed int64
	var weighted float64
	for _, r := range rests {
		if consumed >= weights {
			break
		}
		units := r.Size
		if remaining := weights - consumed; units > remaining {
			units = remaining
		}
		consumed += units
		weighted += r.Price * float64(units)
	}
	if consumed == 0 {
		return rests[0].Price
	}
	return weighted / float64(consumed)
}

// UpdateMemory refreshes last_mids for every ticker that currently has a
// two-sided book, leaving the previous estimate in place for any ticker
// whose book is one-sided or empty this tick. Call once per tick, before
// relying on MidPrice's fallback for an empty side.
func (a *BaseAgent) UpdateMemory(view engine.BookView) {
	for ticker, book := range view {
		if len(book.Bids) == 0 || len(book.Asks) == 0 {
			continue
		}
		a.lastMids[ticker] = a.MidPrice(view, ticker, 1)
	}
}

// RoundToMPV snaps price to the nearest tradable price for a product whose
// minimum price variation is mpv, in the given mode: "nearest" (banker's
// rounding to the nearest tick), "up" (ceiling), or "down" (floor). The
// result is further rounded to 4 decimal places, matching the original's
// float-precision cleanup after the tick conversion.
func RoundToMPV(price, mpv float64, mode string) float64 {
	if mpv == 0 {
		return price
	}
	d := decimal.NewFromFloat(price)
	step := decimal.NewFromFloat(mpv)
	ratio := d.Div(step)

	var ticks decimal.Decimal
	switch mode {
	case "up":
		ticks = ratio.Ceil()
	case "down":
		ticks = ratio.Floor()
	default:
		ticks = ratio.RoundBank(0)
	}

	result := ticks.Mul(step).Round(4)
	f, _ := result.Float64()
	return f
}
