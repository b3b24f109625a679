package hevcdec

// deblockContext holds the four parallel per-4x4 tables for the CTU
// currently being filtered: vertical/horizontal edge flags and
// vertical/horizontal boundary strengths. It is allocated once per picture
// and cleared between CTUs (and again between the vertical and horizontal
// passes of the same CTU) rather than reallocated.
type deblockContext struct {
	cellsPerSide int

	verEdge []bool
	horEdge []bool
	verBS   []int
	horBS   []int
}

func newDeblockContext(ctbSize int) *deblockContext {
	cells := ctbSize / 4
	n := cells * cells
	return &deblockContext{
		cellsPerSide: cells,
		verEdge:      make([]bool, n),
		horEdge:      make([]bool, n),
		verBS:        make([]int, n),
		horBS:        make([]int, n),
	}
}

// clear resets all four tables to their zero value, ready for a new CTU.
func (c *deblockContext) clear() {
	for i := range c.verEdge {
		c.verEdge[i] = false
		c.horEdge[i] = false
		c.verBS[i] = 0
		c.horBS[i] = 0
	}
}

// idx converts CTU-local luma offsets (x, y) to a flat index into the
// per-CTU tables, or -1 if outside the CTU.
func (c *deblockContext) idx(x, y int) int {
	cx, cy := x/4, y/4
	if cx < 0 || cx >= c.cellsPerSide || cy < 0 || cy >= c.cellsPerSide {
		return -1
	}
	return cy*c.cellsPerSide + cx
}
