package game

import (
	"math"
)

// FireAtTarget launches a laser from shipID toward targetID's current
// position. Missing or destroyed ships make this a no-op. The shot is not
// re-aimed later and can miss a moving target.
func (e *BattleEngine) FireAtTarget(shipID, targetID string) {
	shooter := e.findShip(shipID)
	target := e.findShip(targetID)
	if shooter == nil || target == nil || !shooter.Alive() || !target.Alive() {
		return
	}
	e.fire(shooter, target)
}

// fire creates a projectile at the shooter's position aimed at the target
func (e *BattleEngine) fire(shooter, target *Starship) {
	dx := target.X - shooter.X
	dy := target.Y - shooter.Y
	dist := math.Hypot(dx, dy)

	var ux, uy float64
	if dist > 0 {
		ux, uy = dx/dist, dy/dist
	} else {
		// Overlapping ships: shoot along the shooter's heading
		ux, uy = math.Cos(shooter.Rotation), math.Sin(shooter.Rotation)
	}

	e.projectiles = append(e.projectiles, &LaserProjectile{
		ID:        e.newID("laser"),
		TargetID:  target.ID,
		X:         shooter.X,
		Y:         shooter.Y,
		VX:        ux * e.config.ProjectileSpeed,
		VY:        uy * e.config.ProjectileSpeed,
		Faction:   shooter.Faction,
		CreatedAt: e.currentTime,
	})
	shooter.LastFireTime = e.currentTime
	e.stats.ShotsFired++
}

// updateProjectiles moves every laser and drops the ones that left the
// world margin or outlived ProjectileLifetime.
// Uses in-place filtering to avoid slice allocation every frame
func (e *BattleEngine) updateProjectiles(deltaTime float64) {
	w, h := e.config.CanvasWidth, e.config.CanvasHeight

	writeIdx := 0
	for _, p := range e.projectiles {
		p.X += p.VX * deltaTime
		p.Y += p.VY * deltaTime

		if p.X < -ProjectileMargin || p.X > w+ProjectileMargin ||
			p.Y < -ProjectileMargin || p.Y > h+ProjectileMargin {
			continue
		}
		if e.currentTime-p.CreatedAt > ProjectileLifetime {
			continue
		}

		e.projectiles[writeIdx] = p
		writeIdx++
	}
	clear(e.projectiles[writeIdx:])
	e.projectiles = e.projectiles[:writeIdx]
}

// autoFire makes every living ship whose cooldown elapsed shoot at its
// nearest living enemy
func (e *BattleEngine) autoFire() {
	for _, s := range e.ships {
		if !s.Alive() || e.currentTime-s.LastFireTime < e.config.FireRate {
			continue
		}
		if target := e.findNearestEnemy(s); target != nil {
			e.fire(s, target)
		}
	}
}
