package game

import (
	"math"
)

// Fixed simulation constants
const (
	ShipSize    = 20   // Collision radius of every starship
	ShipHealth  = 100  // Health of a freshly spawned ship
	TurnRate    = 2.0  // Maximum turn in radians per second
	SpawnMargin = 50.0 // Distance kept from the world edges when placing ships

	// Projectiles are culled once they are this far outside the world
	ProjectileMargin = 50.0
	// Projectiles older than this (ms) are culled
	ProjectileLifetime = 5000.0

	// Explosion radius is drawn uniformly from [ExplosionMinRadius, ExplosionMaxRadius)
	ExplosionMinRadius = 30.0
	ExplosionMaxRadius = 50.0
)

// Faction identifies which side a ship or projectile belongs to
type Faction string

const (
	FactionRebel    Faction = "rebel"
	FactionImperial Faction = "imperial"
)

// Factions lists both sides in spawn order
var Factions = [2]Faction{FactionRebel, FactionImperial}

// Enemy returns the opposing faction
func (f Faction) Enemy() Faction {
	if f == FactionRebel {
		return FactionImperial
	}
	return FactionRebel
}

// Starship is a combat unit
type Starship struct {
	ID       string  `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	VX       float64 `json:"vx"`
	VY       float64 `json:"vy"`
	Rotation float64 `json:"rotation"` // Heading in radians
	Faction  Faction `json:"faction"`
	Health   int     `json:"health"`

	LastFireTime float64 `json:"lastFireTime"` // Simulation ms of the last shot
	Size         float64 `json:"size"`
}

// Alive reports whether the ship can still move, fire and be hit
func (s *Starship) Alive() bool {
	return s.Health > 0
}

// Speed returns the magnitude of the ship's velocity
func (s *Starship) Speed() float64 {
	return math.Hypot(s.VX, s.VY)
}

// LaserProjectile is a fired shot travelling in a straight line
type LaserProjectile struct {
	ID        string  `json:"id"`
	TargetID  string  `json:"targetId"` // Informational only, hits are proximity based
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	VX        float64 `json:"vx"`
	VY        float64 `json:"vy"`
	Faction   Faction `json:"faction"`
	CreatedAt float64 `json:"createdAt"`
}

// Explosion is a transient effect left by a hit or a destroyed ship
type Explosion struct {
	ID        string  `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Radius    float64 `json:"radius"`
	MaxRadius float64 `json:"maxRadius"`
	Opacity   float64 `json:"opacity"`
	CreatedAt float64 `json:"createdAt"`
}

// State is an independently owned snapshot of the engine
type State struct {
	Ships       []Starship        `json:"ships"`
	Projectiles []LaserProjectile `json:"projectiles"`
	Explosions  []Explosion       `json:"explosions"`
}

// respawn is a pending replacement for a destroyed ship
type respawn struct {
	faction   Faction
	respawnAt float64
}

// Distance calculates distance between two points
func Distance(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}

// NormalizeAngle wraps an angle difference into (-PI, PI]
func NormalizeAngle(angle float64) float64 {
	for angle > math.Pi {
		angle -= 2 * math.Pi
	}
	for angle <= -math.Pi {
		angle += 2 * math.Pi
	}
	return angle
}

// wrap folds a coordinate back into [0, size] toroidally
func wrap(v, size float64) float64 {
	if v < 0 {
		return v + size
	}
	if v > size {
		return v - size
	}
	return v
}
