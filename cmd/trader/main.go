// Command trader runs one deterministic game: load a product catalog and
// run parameters from a YAML config, play the tick loop, emit the CSV
// triple, and print the final PnL. Lifecycle (SIGINT/SIGTERM) is supervised
// with gopkg.in/tomb.v2, mirroring the teacher's internal/net/server.go
// Run method, even though the game loop itself is synchronous and
// single-threaded (spec §5): the run goes on one tomb goroutine, and a
// SIGINT/SIGTERM is caught and logged while the run still plays every tick
// and exports its results. Nothing is parallelized.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"github.com/QFinUWA/QFinProject2/internal/agent"
	"github.com/QFinUWA/QFinProject2/internal/config"
	"github.com/QFinUWA/QFinProject2/internal/engine"
	"github.com/QFinUWA/QFinProject2/internal/exportcsv"
	"github.com/QFinUWA/QFinProject2/internal/game"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	configPath := "run.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	if err := run(configPath); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	t, ctx := tomb.WithContext(ctx)

	runID := uuid.New().String()
	log.Info().Str("run_id", runID).Msg("starting run")

	spec, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("trader: %w", err)
	}

	cat, err := spec.BuildCatalog()
	if err != nil {
		return fmt.Errorf("trader: %w", err)
	}

	eng := engine.New(cat)

	player := spec.Player
	if player == "" {
		player = "player"
	}
	playerAgent := agent.NewBaseAgent(player, cat)
	houseAgent := agent.NewBaseAgent("house", cat)
	participants := []game.Participant{
		{Agent: playerAgent, Acct: playerAgent},
		{Agent: houseAgent, Acct: houseAgent},
	}

	var result map[string]float64
	var g *game.Game

	t.Go(func() error {
		g = game.New(eng, participants)
		result = g.Run(spec.Ticks)
		return nil
	})
	go func() {
		<-ctx.Done()
		log.Warn().Msg("shutdown signal received, letting the run finish (no mid-tick cancellation)")
	}()

	<-t.Dead()
	if err := t.Err(); err != nil {
		return fmt.Errorf("trader: game run: %w", err)
	}

	if err := exportResults(spec, runID, g, cat.Tickers(), player); err != nil {
		return fmt.Errorf("trader: %w", err)
	}

	log.Info().Str("run_id", runID).Float64("pnl", result[player]).Msg("run complete")
	fmt.Printf("final PnL (%s): %f\n", player, result[player])
	return nil
}

// exportResults writes the CSV triple under <output_dir>/<run_id>/, so
// repeated runs against the same output_dir never collide.
func exportResults(spec config.RunSpec, runID string, g *game.Game, tickers []string, player string) error {
	outDir := spec.OutputDir
	if outDir == "" {
		outDir = "."
	}
	outDir = filepath.Join(outDir, runID)

	rows := make([]exportcsv.GameRecordRow, 0, len(g.Observations))
	for _, obs := range g.Observations {
		state := obs.AgentStates[player]
		rows = append(rows, exportcsv.GameRecordRow{
			Loop:      obs.LoopNum,
			Positions: state.Positions,
			Mids:      state.Mids,
			Cash:      state.Cash,
			PnL:       state.PnL,
		})
	}

	if err := exportcsv.WriteGameRecord(outDir, player, tickers, rows); err != nil {
		return err
	}
	if err := exportcsv.WriteOrderbookHistory(outDir, player, tickers, g.Observations); err != nil {
		return err
	}
	return exportcsv.WriteTrades(outDir, player, g.AllTrades)
}
