package game

import (
	"math"
)

// spawnShip creates a fresh ship for a faction. Rebels start in the left half
// of the world and imperials in the right half, heading in a random direction.
func (e *BattleEngine) spawnShip(f Faction) *Starship {
	w, h := e.config.CanvasWidth, e.config.CanvasHeight

	minX, maxX := SpawnMargin, w/2-SpawnMargin
	if f == FactionImperial {
		minX, maxX = w/2+SpawnMargin, w-SpawnMargin
	}
	x := minX + e.rng.Float64()*(maxX-minX)
	y := SpawnMargin + e.rng.Float64()*(h-2*SpawnMargin)

	dir := e.rng.Float64() * 2 * math.Pi
	speed := e.config.ShipSpeed * (0.5 + e.rng.Float64()*0.5)

	return &Starship{
		ID:           e.newID("ship"),
		X:            x,
		Y:            y,
		VX:           math.Cos(dir) * speed,
		VY:           math.Sin(dir) * speed,
		Rotation:     dir,
		Faction:      f,
		Health:       ShipHealth,
		LastFireTime: e.currentTime,
		Size:         ShipSize,
	}
}

// destroyShip marks a ship as destroyed and schedules its replacement
func (e *BattleEngine) destroyShip(s *Starship) {
	s.Health = 0
	e.spawnExplosion(s.X, s.Y)
	e.respawns = append(e.respawns, respawn{
		faction:   s.Faction,
		respawnAt: e.currentTime + e.config.RespawnDelay,
	})
	e.stats.Kills[s.Faction.Enemy()]++

	e.logger.Debug().
		Str("ship", s.ID).
		Str("faction", string(s.Faction)).
		Float64("respawnAt", e.currentTime+e.config.RespawnDelay).
		Msg("ship destroyed")
}

// processRespawns replaces one destroyed ship per due queue entry.
// Entries that are not yet due stay queued in order.
func (e *BattleEngine) processRespawns() {
	writeIdx := 0
	for _, r := range e.respawns {
		if r.respawnAt > e.currentTime {
			e.respawns[writeIdx] = r
			writeIdx++
			continue
		}
		e.replaceDestroyed(r.faction)
	}
	e.respawns = e.respawns[:writeIdx]
}

// replaceDestroyed swaps the first destroyed ship of a faction for a fresh
// one. Without a destroyed ship to replace nothing is spawned, which keeps the
// per-faction count fixed.
func (e *BattleEngine) replaceDestroyed(f Faction) {
	for i, s := range e.ships {
		if s.Faction != f || s.Alive() {
			continue
		}
		e.ships = append(e.ships[:i], e.ships[i+1:]...)
		fresh := e.spawnShip(f)
		e.ships = append(e.ships, fresh)
		e.stats.Respawns++

		e.logger.Debug().
			Str("replaced", s.ID).
			Str("ship", fresh.ID).
			Str("faction", string(f)).
			Msg("ship respawned")
		return
	}
}
