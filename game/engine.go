package game

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
)

// Stats holds cumulative counters since construction or the last Reset
type Stats struct {
	ShotsFired int             `json:"shotsFired"`
	Hits       int             `json:"hits"`
	Kills      map[Faction]int `json:"kills"` // Kills scored by each faction
	Respawns   int             `json:"respawns"`
}

// Option customises a BattleEngine at construction
type Option func(*BattleEngine)

// WithSeed makes every random draw reproducible for the given seed.
// Reset reseeds, so a reset engine replays the same battle.
func WithSeed(seed uint64) Option {
	return func(e *BattleEngine) {
		e.seed = &seed
	}
}

// WithRand uses the given random source
func WithRand(r *rand.Rand) Option {
	return func(e *BattleEngine) {
		e.rng = r
	}
}

// WithIDFunc replaces the per-engine counter used to name entities.
// kind is one of "ship", "laser" or "boom".
func WithIDFunc(fn func(kind string) string) Option {
	return func(e *BattleEngine) {
		e.idFunc = fn
	}
}

// WithLogger receives debug-level lifecycle events
func WithLogger(logger zerolog.Logger) Option {
	return func(e *BattleEngine) {
		e.logger = logger
	}
}

// WithSpatialIndex buckets ships into a grid for the collision pass
func WithSpatialIndex(cellSize float64) Option {
	return func(e *BattleEngine) {
		e.gridCellSize = cellSize
	}
}

// BattleEngine owns all entity state and advances the simulation.
// It is not safe for concurrent use; callers serialise access.
type BattleEngine struct {
	config BattleConfig

	ships       []*Starship
	projectiles []*LaserProjectile
	explosions  []*Explosion
	respawns    []respawn

	currentTime float64 // ms
	nextID      int
	stats       Stats

	rng          *rand.Rand
	seed         *uint64
	idFunc       func(kind string) string
	logger       zerolog.Logger
	gridCellSize float64
	shipGrid     *SpatialGrid
}

// New creates an engine, merging cfg onto the defaults, and spawns the
// initial fleets.
func New(cfg BattleConfig, opts ...Option) *BattleEngine {
	e := &BattleEngine{
		config: cfg.withDefaults(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil && e.seed == nil {
		e.rng = newRand(uint64(time.Now().UnixNano()))
	}
	if e.gridCellSize > 0 {
		e.shipGrid = NewSpatialGrid(e.config.CanvasWidth, e.config.CanvasHeight, e.gridCellSize)
	}

	e.init()
	return e
}

// init clears all state and spawns the initial fleets
func (e *BattleEngine) init() {
	if e.seed != nil {
		e.rng = newRand(*e.seed)
	}
	e.currentTime = 0
	e.nextID = 0
	e.ships = make([]*Starship, 0, max(0, e.config.RebelShipCount)+max(0, e.config.ImperialShipCount))
	e.projectiles = make([]*LaserProjectile, 0)
	e.explosions = make([]*Explosion, 0)
	e.respawns = make([]respawn, 0)
	e.stats = Stats{Kills: map[Faction]int{FactionRebel: 0, FactionImperial: 0}}

	for _, f := range Factions {
		for i := 0; i < e.config.ShipCount(f); i++ {
			e.ships = append(e.ships, e.spawnShip(f))
		}
	}
}

// Reset reinitialises the engine as construction does, reusing its config
func (e *BattleEngine) Reset() {
	e.init()
	e.logger.Debug().Int("ships", len(e.ships)).Msg("battle reset")
}

// Update advances the simulation by deltaTime seconds. The caller is
// responsible for keeping deltaTime small and non-negative.
func (e *BattleEngine) Update(deltaTime float64) {
	e.currentTime += deltaTime * 1000

	e.updateShips(deltaTime)
	e.updateProjectiles(deltaTime)
	e.CheckCollisions()
	e.updateExplosions()
	e.processRespawns()
	e.autoFire()
}

// GetState returns a snapshot that shares no memory with the engine
func (e *BattleEngine) GetState() State {
	state := State{
		Ships:       make([]Starship, len(e.ships)),
		Projectiles: make([]LaserProjectile, len(e.projectiles)),
		Explosions:  make([]Explosion, len(e.explosions)),
	}
	for i, s := range e.ships {
		state.Ships[i] = *s
	}
	for i, p := range e.projectiles {
		state.Projectiles[i] = *p
	}
	for i, x := range e.explosions {
		state.Explosions[i] = *x
	}
	return state
}

// Time returns the simulation clock in milliseconds
func (e *BattleEngine) Time() float64 {
	return e.currentTime
}

// Config returns the merged configuration
func (e *BattleEngine) Config() BattleConfig {
	return e.config
}

// PendingRespawns returns the number of queued ship replacements
func (e *BattleEngine) PendingRespawns() int {
	return len(e.respawns)
}

// Stats returns a copy of the cumulative counters
func (e *BattleEngine) Stats() Stats {
	s := e.stats
	s.Kills = make(map[Faction]int, len(e.stats.Kills))
	for f, n := range e.stats.Kills {
		s.Kills[f] = n
	}
	return s
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// newID names a new entity of the given kind
func (e *BattleEngine) newID(kind string) string {
	if e.idFunc != nil {
		return e.idFunc(kind)
	}
	e.nextID++
	return fmt.Sprintf("%s-%d", kind, e.nextID)
}

// findShip returns the ship with the given id, or nil
func (e *BattleEngine) findShip(id string) *Starship {
	for _, s := range e.ships {
		if s.ID == id {
			return s
		}
	}
	return nil
}
