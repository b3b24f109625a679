package hevcdec

// PredMode is the prediction mode recorded per 4x4 cell.
type PredMode uint8

const (
	PredInter PredMode = iota
	PredIntra
)

// Metadata is the per-4x4-luma-sample Block Metadata Grid: for every cell
// fully covered by a coded block it records the transform-split flag, the
// prediction mode, and whether the containing transform unit had any
// non-zero coefficient. Stride is in 4x4 units.
type Metadata struct {
	StrideCells int // ceil(width/4)
	RowsCells   int // ceil(height/4)

	TransformSplit  []bool
	PredMode        []PredMode
	NonZeroCoeff    []bool
}

// NewMetadata allocates a metadata grid sized for a width x height luma
// plane.
func NewMetadata(width, height int) *Metadata {
	sw := (width + 3) / 4
	sh := (height + 3) / 4
	n := sw * sh
	return &Metadata{
		StrideCells:    sw,
		RowsCells:      sh,
		TransformSplit: make([]bool, n),
		PredMode:       make([]PredMode, n),
		NonZeroCoeff:   make([]bool, n),
	}
}

// cellIndex converts luma pixel coordinates to a flat index into the 4x4
// grid. Coordinates outside the grid return -1.
func (m *Metadata) cellIndex(x, y int) int {
	cx, cy := x/4, y/4
	if cx < 0 || cx >= m.StrideCells || cy < 0 || cy >= m.RowsCells {
		return -1
	}
	return cy*m.StrideCells + cx
}

// Get returns the metadata for the 4x4 cell containing luma sample (x, y),
// and whether that cell exists in the grid.
func (m *Metadata) Get(x, y int) (split bool, mode PredMode, nonZero bool, ok bool) {
	i := m.cellIndex(x, y)
	if i < 0 {
		return false, PredInter, false, false
	}
	return m.TransformSplit[i], m.PredMode[i], m.NonZeroCoeff[i], true
}

// fillRect marks every 4x4 cell inside [x0,x0+w) x [y0,y0+h) (luma sample
// coordinates) with the given field values.
func (m *Metadata) fillRect(x0, y0, w, h int, split bool, mode PredMode, nonZero bool) {
	for y := y0; y < y0+h; y += 4 {
		for x := x0; x < x0+w; x += 4 {
			i := m.cellIndex(x, y)
			if i < 0 {
				continue
			}
			m.TransformSplit[i] = split
			m.PredMode[i] = mode
			m.NonZeroCoeff[i] = nonZero
		}
	}
}
