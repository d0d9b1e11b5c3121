package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QFinUWA/QFinProject2/internal/common"
)

func restOrder(ticker string, price float64, size int64, id int64, dir common.Side, bot string) common.Order {
	return common.Order{Ticker: ticker, Price: price, Size: size, OrderID: id, Dir: dir, BotName: bot}
}

// Invariant 1 & 2: aggressiveness is non-increasing head to tail, and FIFO
// is preserved within an equal-aggressiveness run.
func TestTickerBook_OrderingAndFIFO(t *testing.T) {
	book := newTickerBook(0.1)

	book.insertResidual(restOrder("X", 99.0, 10, 1, common.Buy, "botA"))
	book.insertResidual(restOrder("X", 100.0, 10, 2, common.Buy, "botB"))
	book.insertResidual(restOrder("X", 100.0, 10, 3, common.Buy, "botC"))
	book.insertResidual(restOrder("X", 98.0, 10, 4, common.Buy, "botD"))

	bids, _ := book.snapshot()
	require.Len(t, bids, 4)
	assert.Equal(t, int64(2), bids[0].OrderID) // 100.0, first in
	assert.Equal(t, int64(3), bids[1].OrderID) // 100.0, second in (FIFO)
	assert.Equal(t, int64(1), bids[2].OrderID) // 99.0
	assert.Equal(t, int64(4), bids[3].OrderID) // 98.0

	for i := 1; i < len(bids); i++ {
		assert.GreaterOrEqual(t, bids[i-1].Price, bids[i].Price)
	}
}

func TestTickerBook_AsksAscendingPrice(t *testing.T) {
	book := newTickerBook(0.1)

	book.insertResidual(restOrder("X", 101.0, 5, 1, common.Sell, "botA"))
	book.insertResidual(restOrder("X", 100.0, 5, 2, common.Sell, "botB"))
	book.insertResidual(restOrder("X", 100.5, 5, 3, common.Sell, "botC"))

	_, asks := book.snapshot()
	require.Len(t, asks, 3)
	assert.Equal(t, 100.0, asks[0].Price)
	assert.Equal(t, 100.5, asks[1].Price)
	assert.Equal(t, 101.0, asks[2].Price)
}

func TestTickerBook_CancelRemovesFromLevel(t *testing.T) {
	book := newTickerBook(0.1)
	book.insertResidual(restOrder("X", 100.0, 5, 1, common.Buy, "botA"))
	book.insertResidual(restOrder("X", 100.0, 5, 2, common.Buy, "botB"))

	ticks := book.ticksOf(100.0)
	assert.True(t, book.cancel(common.Buy, ticks, 1))
	assert.False(t, book.cancel(common.Buy, ticks, 1))

	bids, _ := book.snapshot()
	require.Len(t, bids, 1)
	assert.Equal(t, int64(2), bids[0].OrderID)
}
