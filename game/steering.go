package game

import (
	"math"
)

// updateShips steers every living ship toward its nearest enemy and moves it
func (e *BattleEngine) updateShips(deltaTime float64) {
	for _, s := range e.ships {
		if !s.Alive() {
			continue
		}
		e.steerShip(s, deltaTime)

		s.X = wrap(s.X+s.VX*deltaTime, e.config.CanvasWidth)
		s.Y = wrap(s.Y+s.VY*deltaTime, e.config.CanvasHeight)
	}
}

// steerShip turns a ship toward its nearest living enemy at no more than
// TurnRate, keeping its current speed. Ships without an enemy fly straight.
func (e *BattleEngine) steerShip(s *Starship, deltaTime float64) {
	target := e.findNearestEnemy(s)
	if target == nil {
		return
	}

	desired := math.Atan2(target.Y-s.Y, target.X-s.X)
	diff := NormalizeAngle(desired - s.Rotation)

	maxTurn := TurnRate * deltaTime
	if diff > maxTurn {
		diff = maxTurn
	} else if diff < -maxTurn {
		diff = -maxTurn
	}
	s.Rotation += diff

	speed := s.Speed()
	if speed == 0 {
		speed = e.config.ShipSpeed
	}
	s.VX = math.Cos(s.Rotation) * speed
	s.VY = math.Sin(s.Rotation) * speed
}

// findNearestEnemy returns the closest living ship of the opposing faction,
// or nil when there is none.
func (e *BattleEngine) findNearestEnemy(s *Starship) *Starship {
	var nearest *Starship
	minDist := math.Inf(1)

	for _, other := range e.ships {
		if other.Faction == s.Faction || !other.Alive() {
			continue
		}
		dist := Distance(s.X, s.Y, other.X, other.Y)
		if dist < minDist {
			minDist = dist
			nearest = other
		}
	}
	return nearest
}
