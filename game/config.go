package game

// BattleConfig holds the simulation parameters. Times are in milliseconds,
// speeds in world units per second.
type BattleConfig struct {
	CanvasWidth       float64 `json:"canvasWidth" mapstructure:"canvas_width"`
	CanvasHeight      float64 `json:"canvasHeight" mapstructure:"canvas_height"`
	RebelShipCount    int     `json:"rebelShipCount" mapstructure:"rebel_ship_count"`
	ImperialShipCount int     `json:"imperialShipCount" mapstructure:"imperial_ship_count"`
	ShipSpeed         float64 `json:"shipSpeed" mapstructure:"ship_speed"`
	ProjectileSpeed   float64 `json:"projectileSpeed" mapstructure:"projectile_speed"`
	FireRate          float64 `json:"fireRate" mapstructure:"fire_rate"`
	ProjectileDamage  int     `json:"projectileDamage" mapstructure:"projectile_damage"`
	ExplosionDuration float64 `json:"explosionDuration" mapstructure:"explosion_duration"`
	RespawnDelay      float64 `json:"respawnDelay" mapstructure:"respawn_delay"`
}

// DefaultBattleConfig returns the configuration used for any field left zero
func DefaultBattleConfig() BattleConfig {
	return BattleConfig{
		CanvasWidth:       800,
		CanvasHeight:      600,
		RebelShipCount:    5,
		ImperialShipCount: 5,
		ShipSpeed:         60,
		ProjectileSpeed:   400,
		FireRate:          1500,
		ProjectileDamage:  25,
		ExplosionDuration: 800,
		RespawnDelay:      3000,
	}
}

// withDefaults merges the overrides onto the defaults. Zero fields take the
// default; nothing else is validated, so negative counts simply spawn no ships.
func (c BattleConfig) withDefaults() BattleConfig {
	d := DefaultBattleConfig()
	if c.CanvasWidth != 0 {
		d.CanvasWidth = c.CanvasWidth
	}
	if c.CanvasHeight != 0 {
		d.CanvasHeight = c.CanvasHeight
	}
	if c.RebelShipCount != 0 {
		d.RebelShipCount = c.RebelShipCount
	}
	if c.ImperialShipCount != 0 {
		d.ImperialShipCount = c.ImperialShipCount
	}
	if c.ShipSpeed != 0 {
		d.ShipSpeed = c.ShipSpeed
	}
	if c.ProjectileSpeed != 0 {
		d.ProjectileSpeed = c.ProjectileSpeed
	}
	if c.FireRate != 0 {
		d.FireRate = c.FireRate
	}
	if c.ProjectileDamage != 0 {
		d.ProjectileDamage = c.ProjectileDamage
	}
	if c.ExplosionDuration != 0 {
		d.ExplosionDuration = c.ExplosionDuration
	}
	if c.RespawnDelay != 0 {
		d.RespawnDelay = c.RespawnDelay
	}
	return d
}

// ShipCount returns the number of ships the engine keeps alive for a faction
func (c BattleConfig) ShipCount(f Faction) int {
	if f == FactionRebel {
		return c.RebelShipCount
	}
	return c.ImperialShipCount
}

// MaxProjectileRange is the distance a laser covers before its lifetime
// expires, ignoring the world bounds.
func (c BattleConfig) MaxProjectileRange() float64 {
	return c.ProjectileSpeed * ProjectileLifetime / 1000
}
