package game

import (
	"math"
)

// SpatialGrid buckets ships into uniform cells so a projectile only has to
// be tested against ships in its own and the adjacent cells.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]int // Each cell contains ship indices
}

// NewSpatialGrid creates a grid covering a width x height world.
// cellSize should be at least ShipSize so no hit can straddle two rings of cells.
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	if cellSize < ShipSize {
		cellSize = ShipSize
	}
	cols := max(1, int(math.Ceil(width/cellSize)))
	rows := max(1, int(math.Ceil(height/cellSize)))

	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 4) // Pre-allocate small capacity
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear resets the grid for a new frame
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0] // Reuse underlying array
	}
}

// cell returns the clamped column and row for a position
func (g *SpatialGrid) cell(x, y float64) (int, int) {
	col := int(math.Floor(x / g.cellSize))
	row := int(math.Floor(y / g.cellSize))
	return min(max(col, 0), g.cols-1), min(max(row, 0), g.rows-1)
}

// Insert adds a ship index to the grid
func (g *SpatialGrid) Insert(index int, x, y float64) {
	col, row := g.cell(x, y)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], index)
}

// GetNearby appends to dst the ship indices that might be within ShipSize of
// the given position. The caller must still perform exact distance checks.
func (g *SpatialGrid) GetNearby(x, y float64, dst []int) []int {
	col, row := g.cell(x, y)

	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			c := col + dc
			r := row + dr
			if c < 0 || c >= g.cols || r < 0 || r >= g.rows {
				continue
			}
			dst = append(dst, g.cells[r*g.cols+c]...)
		}
	}
	return dst
}

// IndexShips populates the grid with all living ships
func (g *SpatialGrid) IndexShips(ships []*Starship) {
	g.Clear()
	for i, s := range ships {
		if s.Alive() {
			g.Insert(i, s.X, s.Y)
		}
	}
}
