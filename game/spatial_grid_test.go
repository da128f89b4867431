package game

import (
	"reflect"
	"slices"
	"testing"
)

func TestSpatialGridNearby(t *testing.T) {
	g := NewSpatialGrid(1000, 1000, 100)
	ships := []*Starship{
		{ID: "a", X: 50, Y: 50, Health: 100},
		{ID: "b", X: 150, Y: 50, Health: 100},
		{ID: "c", X: 950, Y: 950, Health: 100},
		{ID: "dead", X: 60, Y: 60, Health: 0},
		{ID: "edge", X: 1000, Y: 1000, Health: 100},
	}
	g.IndexShips(ships)

	tests := []struct {
		name     string
		x, y     float64
		expected []int
	}{
		{"Corner cell sees neighbour", 10, 10, []int{0, 1}},
		{"Far corner", 990, 990, []int{2, 4}},
		{"Outside the world clamps", -40, -40, []int{0, 1}},
		{"Empty region", 500, 500, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.GetNearby(tt.x, tt.y, nil)
			slices.Sort(got)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("GetNearby(%.0f, %.0f) = %v, expected %v", tt.x, tt.y, got, tt.expected)
			}
		})
	}
}

func TestSpatialGridMinimumCellSize(t *testing.T) {
	g := NewSpatialGrid(100, 100, 1)
	if g.cellSize != ShipSize {
		t.Errorf("Expected cell size raised to %v, got %v", ShipSize, g.cellSize)
	}
	if g.cols != 5 || g.rows != 5 {
		t.Errorf("Expected 5x5 grid, got %dx%d", g.cols, g.rows)
	}
}

// TestSpatialIndexMatchesLinearScan runs the same seeded battle with and
// without the grid and expects identical results
func TestSpatialIndexMatchesLinearScan(t *testing.T) {
	tests := []struct {
		name     string
		cfg      BattleConfig
		cellSize float64
	}{
		{"Default world", BattleConfig{FireRate: 120, RespawnDelay: 400}, 64},
		{"Crowded small world", BattleConfig{CanvasWidth: 300, CanvasHeight: 300, RebelShipCount: 12, ImperialShipCount: 12, FireRate: 80}, 20},
		{"Coarse grid", BattleConfig{RebelShipCount: 8, ImperialShipCount: 3, FireRate: 200}, 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			linear := New(tt.cfg, WithSeed(3))
			indexed := New(tt.cfg, WithSeed(3), WithSpatialIndex(tt.cellSize))

			for tick := 0; tick < 1500; tick++ {
				linear.Update(0.016)
				indexed.Update(0.016)
			}

			if !reflect.DeepEqual(linear.GetState(), indexed.GetState()) {
				t.Errorf("Spatial index changed the outcome of the battle")
			}
			if !reflect.DeepEqual(linear.Stats(), indexed.Stats()) {
				t.Errorf("Stats differ: %+v vs %+v", linear.Stats(), indexed.Stats())
			}
			if linear.Stats().Hits == 0 {
				t.Errorf("Expected some hits to compare")
			}
		})
	}
}
