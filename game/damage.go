package game

// ApplyDamage subtracts damage from a ship's health, clamping at zero.
// Returns the amount of health actually removed.
func ApplyDamage(s *Starship, damage int) int {
	if s == nil || damage <= 0 || s.Health <= 0 {
		return 0
	}

	applied := min(damage, s.Health)
	s.Health -= applied
	return applied
}
