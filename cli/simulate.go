package cli

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lab1702/starbattle/config"
	"github.com/lab1702/starbattle/game"
	"github.com/lab1702/starbattle/logging"
)

// runStats summarises one headless battle
type runStats struct {
	runIndex int
	seed     uint64

	firstShotTick int
	firstHitTick  int
	firstKillTick int

	stats           game.Stats
	alive           map[game.Faction]int
	destroyed       map[game.Faction]int
	projectiles     int
	explosions      int
	pendingRespawns int
	simTime         float64
}

// simulation describes a batch of headless runs
type simulation struct {
	battle   game.BattleConfig
	runs     int
	ticks    int
	delta    float64
	seedBase uint64
	gridCell float64
	logger   zerolog.Logger
}

// NewSimulateCommand creates the simulate command
func NewSimulateCommand() *cobra.Command {
	var runs, ticks int
	var seed uint64
	var delta, gridCell float64

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run headless battles and print a report",
		Long: `Step seeded battles without a renderer and print per-run counters
followed by averages across all runs. Equal seeds give equal reports.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("runs") {
				cfg.Simulate.Runs = runs
			}
			if flags.Changed("ticks") {
				cfg.Simulate.Ticks = ticks
			}
			if flags.Changed("seed") {
				cfg.Simulate.Seed = seed
			}
			if flags.Changed("delta") {
				cfg.Simulate.Delta = delta
			}
			if err := config.ValidateConfig(cfg); err != nil {
				return err
			}

			sim := simulation{
				battle:   cfg.Battle,
				runs:     cfg.Simulate.Runs,
				ticks:    cfg.Simulate.Ticks,
				delta:    cfg.Simulate.Delta,
				seedBase: cfg.Simulate.Seed,
				gridCell: gridCell,
				logger:   logging.Component(logger, "engine"),
			}
			sim.report(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().IntVar(&runs, "runs", 1, "number of headless simulation runs")
	cmd.Flags().IntVar(&ticks, "ticks", 3600, "ticks per run")
	cmd.Flags().Uint64Var(&seed, "seed", 42, "base RNG seed for run 1")
	cmd.Flags().Float64Var(&delta, "delta", 1.0/60, "seconds advanced per tick")
	cmd.Flags().Float64Var(&gridCell, "grid", 0, "spatial index cell size for collision checks (0 = linear scan)")

	return cmd
}

// report runs every battle and writes the report to w
func (sim simulation) report(w io.Writer) []runStats {
	fmt.Fprintf(w, "=== Headless Battle Report ===\n")
	fmt.Fprintf(w, "runs=%d ticks=%d delta=%.4f seed_base=%d\n\n", sim.runs, sim.ticks, sim.delta, sim.seedBase)

	all := make([]runStats, 0, sim.runs)
	for i := 0; i < sim.runs; i++ {
		rs := sim.run(i+1, sim.seedBase+uint64(i))
		all = append(all, rs)
		printRun(w, rs)
	}

	printSummary(w, all)
	return all
}

// run steps one seeded battle
func (sim simulation) run(index int, seed uint64) runStats {
	opts := []game.Option{game.WithSeed(seed), game.WithLogger(sim.logger)}
	if sim.gridCell > 0 {
		opts = append(opts, game.WithSpatialIndex(sim.gridCell))
	}
	e := game.New(sim.battle, opts...)

	rs := runStats{
		runIndex:      index,
		seed:          seed,
		firstShotTick: -1,
		firstHitTick:  -1,
		firstKillTick: -1,
	}

	for tick := 1; tick <= sim.ticks; tick++ {
		e.Update(sim.delta)
		st := e.Stats()
		if rs.firstShotTick < 0 && st.ShotsFired > 0 {
			rs.firstShotTick = tick
		}
		if rs.firstHitTick < 0 && st.Hits > 0 {
			rs.firstHitTick = tick
		}
		if rs.firstKillTick < 0 && st.Kills[game.FactionRebel]+st.Kills[game.FactionImperial] > 0 {
			rs.firstKillTick = tick
		}
	}

	state := e.GetState()
	rs.alive = make(map[game.Faction]int, len(game.Factions))
	rs.destroyed = make(map[game.Faction]int, len(game.Factions))
	for _, s := range state.Ships {
		if s.Alive() {
			rs.alive[s.Faction]++
		} else {
			rs.destroyed[s.Faction]++
		}
	}
	rs.stats = e.Stats()
	rs.projectiles = len(state.Projectiles)
	rs.explosions = len(state.Explosions)
	rs.pendingRespawns = e.PendingRespawns()
	rs.simTime = e.Time()
	return rs
}

func printRun(w io.Writer, rs runStats) {
	fmt.Fprintf(w, "--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Fprintf(w, "phase_markers: first_shot=%s first_hit=%s first_kill=%s\n",
		tickLabel(rs.firstShotTick), tickLabel(rs.firstHitTick), tickLabel(rs.firstKillTick))
	fmt.Fprintf(w, "event_totals: shots=%d hits=%d respawns=%d accuracy=%.1f%%\n",
		rs.stats.ShotsFired, rs.stats.Hits, rs.stats.Respawns, percent(rs.stats.Hits, rs.stats.ShotsFired))
	fmt.Fprintf(w, "kills: rebel=%d imperial=%d\n",
		rs.stats.Kills[game.FactionRebel], rs.stats.Kills[game.FactionImperial])
	fmt.Fprintf(w, "final_ships: rebel_alive=%d rebel_destroyed=%d imperial_alive=%d imperial_destroyed=%d\n",
		rs.alive[game.FactionRebel], rs.destroyed[game.FactionRebel],
		rs.alive[game.FactionImperial], rs.destroyed[game.FactionImperial])
	fmt.Fprintf(w, "final_world: time_ms=%.0f projectiles=%d explosions=%d pending_respawns=%d\n\n",
		rs.simTime, rs.projectiles, rs.explosions, rs.pendingRespawns)
}

func printSummary(w io.Writer, all []runStats) {
	if len(all) == 0 {
		return
	}
	var shots, hits, respawns, rebelKills, imperialKills float64
	for _, rs := range all {
		shots += float64(rs.stats.ShotsFired)
		hits += float64(rs.stats.Hits)
		respawns += float64(rs.stats.Respawns)
		rebelKills += float64(rs.stats.Kills[game.FactionRebel])
		imperialKills += float64(rs.stats.Kills[game.FactionImperial])
	}
	n := float64(len(all))

	fmt.Fprintf(w, "=== Summary ===\n")
	fmt.Fprintf(w, "runs=%d\n", len(all))
	fmt.Fprintf(w, "avg_events_per_run: shots=%.1f hits=%.1f respawns=%.1f\n", shots/n, hits/n, respawns/n)
	fmt.Fprintf(w, "avg_kills_per_run: rebel=%.1f imperial=%.1f\n", rebelKills/n, imperialKills/n)
	fmt.Fprintf(w, "overall_accuracy=%.1f%%\n", percent(int(hits), int(shots)))
}

func tickLabel(tick int) string {
	if tick < 0 {
		return "never"
	}
	return fmt.Sprintf("%d", tick)
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return 100 * float64(part) / float64(whole)
}
