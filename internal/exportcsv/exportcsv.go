// Package exportcsv writes the three post-run CSV artifacts: the player's
// game record, the anonymized orderbook history, and the anonymized trade
// log. Schemas and anonymization rule are grounded on
// original_source/bin/mac_version/visualizer/data_export.py's
// export_game_data. encoding/csv (stdlib) is used deliberately: no example
// repo in the retrieved set reaches for a third-party CSV writer, and these
// three schemas are flat enough that stdlib's csv.Writer has no edge case
// worth a dependency.
package exportcsv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/QFinUWA/QFinProject2/internal/common"
	"github.com/QFinUWA/QFinProject2/internal/game"
)

const anonymousBot = "ANONYMOUS"

// anonymize replaces bot with ANONYMOUS unless it is the designated player.
func anonymize(bot, player string) string {
	if bot == player {
		return bot
	}
	return anonymousBot
}

// GameRecordRow is one tick of the player-only game record: the player's
// per-ticker position, cash and PnL, plus each ticker's mid price.
type GameRecordRow struct {
	Loop      int64
	Positions map[string]int64
	Cash      float64
	PnL       float64
	Mids      map[string]float64
}

// WriteGameRecord emits log_game_record.csv: one row per tick, columns
// timestamp, Loop, <player>_<ticker>, <player>_Cash, <player>_PnL, <ticker>
// (mid price), for the designated player only.
func WriteGameRecord(dir, player string, tickers []string, rows []GameRecordRow) error {
	f, err := createInDir(dir, "log_game_record.csv")
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"timestamp", "Loop"}
	for _, ticker := range tickers {
		header = append(header, fmt.Sprintf("%s_%s", player, ticker))
	}
	header = append(header, fmt.Sprintf("%s_Cash", player), fmt.Sprintf("%s_PnL", player))
	header = append(header, tickers...)
	if err := w.Write(header); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{strconv.FormatInt(row.Loop, 10), strconv.FormatInt(row.Loop, 10)}
		for _, ticker := range tickers {
			record = append(record, strconv.FormatInt(row.Positions[ticker], 10))
		}
		record = append(record, formatFloat(row.Cash), formatFloat(row.PnL))
		for _, ticker := range tickers {
			record = append(record, formatFloat(row.Mids[ticker]))
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// WriteOrderbookHistory emits log_orderbook_data.csv: one row per
// (tick, ticker, side, Rest), with non-player bot names replaced by
// ANONYMOUS. tickers fixes the per-row ticker order to the catalog's
// construction order: obs.Book is a map, and ranging it directly would make
// row order vary between runs, which spec §8 invariant 8 (determinism)
// forbids.
func WriteOrderbookHistory(dir, player string, tickers []string, observations []game.Observation) error {
	f, err := createInDir(dir, "log_orderbook_data.csv")
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"timestamp", "ticker", "side", "price", "size", "bot_name"}); err != nil {
		return err
	}

	for _, obs := range observations {
		for _, ticker := range tickers {
			book := obs.Book[ticker]
			writeRests(w, obs.LoopNum, ticker, "bid", book.Bids, player)
			writeRests(w, obs.LoopNum, ticker, "ask", book.Asks, player)
		}
	}

	w.Flush()
	return w.Error()
}

func writeRests(w *csv.Writer, loopNum int64, ticker, side string, rests []common.Rest, player string) {
	for _, r := range rests {
		_ = w.Write([]string{
			strconv.FormatInt(loopNum, 10),
			ticker,
			side,
			formatFloat(r.Price),
			strconv.FormatInt(r.Size, 10),
			anonymize(r.BotName, player),
		})
	}
}

// WriteTrades emits log_trades_data.csv: one row per trade across the whole
// run, with non-player agg_bot/rest_bot replaced by ANONYMOUS.
func WriteTrades(dir, player string, trades []common.Trade) error {
	f, err := createInDir(dir, "log_trades_data.csv")
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"timestamp", "ticker", "price", "size", "side", "agg_bot", "rest_bot"}); err != nil {
		return err
	}

	for _, t := range trades {
		side := "buy"
		if t.AggDir == common.Sell {
			side = "sell"
		}
		record := []string{
			strconv.FormatInt(t.LoopNum, 10),
			t.Ticker,
			formatFloat(t.Price),
			strconv.FormatInt(t.Size, 10),
			side,
			anonymize(t.AggBot, player),
			anonymize(t.RestBot, player),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func createInDir(dir, name string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("exportcsv: creating output dir %s: %w", dir, err)
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("exportcsv: creating %s: %w", name, err)
	}
	return f, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
