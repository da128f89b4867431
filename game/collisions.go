package game

import (
	"slices"
)

// CheckCollisions resolves projectile hits against living enemy ships.
// Every projectile damages at most one ship: the first in iteration order
// within that ship's radius, not the nearest one.
func (e *BattleEngine) CheckCollisions() {
	if e.shipGrid != nil {
		e.shipGrid.IndexShips(e.ships)
	}

	var candidates []int
	writeIdx := 0
	for _, p := range e.projectiles {
		if e.shipGrid != nil {
			// Grid order is cell order; restore ship order for the tie-break
			candidates = e.shipGrid.GetNearby(p.X, p.Y, candidates[:0])
			slices.Sort(candidates)
		}

		hit := false
		for n := 0; ; n++ {
			var s *Starship
			if e.shipGrid != nil {
				if n >= len(candidates) {
					break
				}
				s = e.ships[candidates[n]]
			} else {
				if n >= len(e.ships) {
					break
				}
				s = e.ships[n]
			}

			if !s.Alive() || s.Faction == p.Faction {
				continue
			}
			if Distance(p.X, p.Y, s.X, s.Y) < s.Size {
				e.handleHit(p, s)
				hit = true
				break
			}
		}

		if hit {
			continue
		}
		e.projectiles[writeIdx] = p
		writeIdx++
	}
	clear(e.projectiles[writeIdx:])
	e.projectiles = e.projectiles[:writeIdx]
}

// handleHit applies a projectile's damage and spawns the impact explosion
func (e *BattleEngine) handleHit(p *LaserProjectile, s *Starship) {
	ApplyDamage(s, e.config.ProjectileDamage)
	e.spawnExplosion(p.X, p.Y)
	e.stats.Hits++

	if !s.Alive() {
		e.destroyShip(s)
	}
}
