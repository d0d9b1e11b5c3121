package exportcsv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QFinUWA/QFinProject2/internal/common"
	"github.com/QFinUWA/QFinProject2/internal/engine"
	"github.com/QFinUWA/QFinProject2/internal/game"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	return lines
}

func TestWriteGameRecord_PlayerPrefixedColumns(t *testing.T) {
	dir := t.TempDir()
	rows := []GameRecordRow{
		{Loop: 0, Positions: map[string]int64{"UEC": 5}, Cash: 100, PnL: 150, Mids: map[string]float64{"UEC": 101.5}},
	}
	require.NoError(t, WriteGameRecord(dir, "botA", []string{"UEC"}, rows))

	lines := readLines(t, filepath.Join(dir, "log_game_record.csv"))
	require.Len(t, lines, 2)
	assert.Equal(t, "timestamp,Loop,botA_UEC,botA_Cash,botA_PnL,UEC", lines[0])
	assert.Equal(t, "0,0,5,100,150,101.5", lines[1])
}

func TestWriteOrderbookHistory_AnonymizesNonPlayer(t *testing.T) {
	dir := t.TempDir()
	observations := []game.Observation{
		{
			LoopNum: 3,
			Book: engine.BookView{
				"UEC": engine.TickerView{
					Bids: []common.Rest{{Price: 100.0, Size: 5, BotName: "botA"}},
					Asks: []common.Rest{{Price: 101.0, Size: 2, BotName: "botB"}},
				},
			},
		},
	}
	require.NoError(t, WriteOrderbookHistory(dir, "botA", []string{"UEC"}, observations))

	lines := readLines(t, filepath.Join(dir, "log_orderbook_data.csv"))
	require.Len(t, lines, 3)
	assert.Equal(t, "timestamp,ticker,side,price,size,bot_name", lines[0])
	assert.Contains(t, lines[1:], "3,UEC,bid,100,5,botA")
	assert.Contains(t, lines[1:], "3,UEC,ask,101,2,ANONYMOUS")
}

func TestWriteOrderbookHistory_RowsFollowGivenTickerOrderNotMapOrder(t *testing.T) {
	dir := t.TempDir()
	observations := []game.Observation{
		{
			LoopNum: 0,
			Book: engine.BookView{
				"ZZZ": engine.TickerView{Bids: []common.Rest{{Price: 1, Size: 1, BotName: "botA"}}},
				"AAA": engine.TickerView{Bids: []common.Rest{{Price: 2, Size: 1, BotName: "botA"}}},
				"MMM": engine.TickerView{Bids: []common.Rest{{Price: 3, Size: 1, BotName: "botA"}}},
			},
		},
	}
	tickers := []string{"ZZZ", "AAA", "MMM"}

	for i := 0; i < 5; i++ {
		require.NoError(t, WriteOrderbookHistory(dir, "botA", tickers, observations))
		lines := readLines(t, filepath.Join(dir, "log_orderbook_data.csv"))
		require.Len(t, lines, 4)
		assert.Equal(t, "0,ZZZ,bid,1,1,botA", lines[1])
		assert.Equal(t, "0,AAA,bid,2,1,botA", lines[2])
		assert.Equal(t, "0,MMM,bid,3,1,botA", lines[3])
	}
}

func TestWriteTrades_AnonymizesAndLowercasesSide(t *testing.T) {
	dir := t.TempDir()
	trades := []common.Trade{
		{Ticker: "UEC", Price: 100.0, Size: 5, AggDir: common.Sell, AggBot: "botB", RestBot: "botA", LoopNum: 1},
	}
	require.NoError(t, WriteTrades(dir, "botA", trades))

	lines := readLines(t, filepath.Join(dir, "log_trades_data.csv"))
	require.Len(t, lines, 2)
	assert.Equal(t, "timestamp,ticker,price,size,side,agg_bot,rest_bot", lines[0])
	assert.Equal(t, "1,UEC,100,5,sell,ANONYMOUS,botA", lines[1])
}
