package hevcdec

import "testing"

func TestMetadataFillRectAndGet(t *testing.T) {
	m := NewMetadata(16, 16)
	m.fillRect(4, 4, 8, 8, true, PredIntra, true)

	split, mode, nonZero, ok := m.Get(4, 4)
	if !ok || !split || mode != PredIntra || !nonZero {
		t.Errorf("Get(4,4) = %v %v %v %v, want true PredIntra true true", split, mode, nonZero, ok)
	}

	// Outside the filled rect, the cell exists but keeps its zero value.
	_, mode, _, ok = m.Get(0, 0)
	if !ok || mode != PredInter {
		t.Errorf("Get(0,0) mode = %v, ok = %v, want PredInter, true", mode, ok)
	}

	// Outside the grid entirely.
	if _, _, _, ok := m.Get(100, 100); ok {
		t.Error("expected Get outside the grid to report ok=false")
	}
}

func TestNewMetadataStride(t *testing.T) {
	m := NewMetadata(10, 6) // ceil(10/4)=3, ceil(6/4)=2
	if m.StrideCells != 3 || m.RowsCells != 2 {
		t.Errorf("StrideCells, RowsCells = %d, %d, want 3, 2", m.StrideCells, m.RowsCells)
	}
}
