package game

// spawnExplosion starts a new explosion at the given point
func (e *BattleEngine) spawnExplosion(x, y float64) {
	e.explosions = append(e.explosions, &Explosion{
		ID:        e.newID("boom"),
		X:         x,
		Y:         y,
		Radius:    0,
		MaxRadius: ExplosionMinRadius + e.rng.Float64()*(ExplosionMaxRadius-ExplosionMinRadius),
		Opacity:   1,
		CreatedAt: e.currentTime,
	})
}

// updateExplosions grows and fades every explosion, removing the finished ones
func (e *BattleEngine) updateExplosions() {
	writeIdx := 0
	for _, x := range e.explosions {
		progress := (e.currentTime - x.CreatedAt) / e.config.ExplosionDuration
		if progress >= 1 {
			continue
		}
		if progress < 0 {
			progress = 0
		}
		x.Radius = x.MaxRadius * progress
		x.Opacity = 1 - progress

		e.explosions[writeIdx] = x
		writeIdx++
	}
	clear(e.explosions[writeIdx:])
	e.explosions = e.explosions[:writeIdx]
}
