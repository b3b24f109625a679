package hevcdec

import (
	"github.com/ausocean/heic/internal/bits"
	"github.com/ausocean/heic/internal/heicerr"
)

// Reconstructor is the named external collaborator responsible for intra
// prediction and inverse transform: turning one transform unit's position
// and non-zero-coefficient status into actual sample values written into
// frame. This core's responsibility stops at driving the quad-tree walk
// and populating the Block Metadata Grid; sample reconstruction is
// explicitly out of scope (§1).
type Reconstructor interface {
	ReconstructTU(frame *Frame, x, y, size int, mode PredMode, nonZero bool)
}

// NoopReconstructor leaves frame samples untouched. It satisfies
// Reconstructor for tests and for callers that only need the metadata grid
// (e.g. Session.Info's fast path never reaches partitioning at all, but
// tests of the deblocking filter build frames directly and never invoke
// partitioning).
type NoopReconstructor struct{}

func (NoopReconstructor) ReconstructTU(*Frame, int, int, int, PredMode, bool) {}

// Partition walks the CTU quad-tree of one slice's coded data, populating
// metadata and invoking recon for every transform unit it resolves.
func Partition(rbsp []byte, sps *SPS, sh *SliceHeader, frame *Frame, metadata *Metadata, recon Reconstructor) error {
	const op = "hevcdec.Partition"
	br := bits.NewReader(rbsp)
	engine, err := NewEngine(br)
	if err != nil {
		return heicerr.Wrap(op, heicerr.Truncated, err)
	}

	ctbSize := sps.CTBSize()
	minCbSize := 1 << uint(sps.Log2MinLumaCodingBlockSizeMinus3+3)

	for y0 := 0; y0 < sps.PicHeightInLumaSamples; y0 += ctbSize {
		for x0 := 0; x0 < sps.PicWidthInLumaSamples; x0 += ctbSize {
			w := clampInt(ctbSize, sps.PicWidthInLumaSamples-x0)
			h := clampInt(ctbSize, sps.PicHeightInLumaSamples-y0)
			if err := decodeCodingQuadtree(engine, frame, metadata, recon, x0, y0, ctbSize, w, h, minCbSize); err != nil {
				return heicerr.Wrap(op, heicerr.Malformed, err)
			}
		}
	}
	return nil
}

func clampInt(size, remaining int) int {
	if size < remaining {
		return size
	}
	return remaining
}

// decodeCodingQuadtree recurses per H.265 §7.3.8.4, reading split_cu_flag
// while the current node is larger than the minimum CU size and reaches
// into the picture, then decodes one coding unit's transform tree at the
// leaf.
func decodeCodingQuadtree(e *Engine, frame *Frame, m *Metadata, recon Reconstructor, x0, y0, size, availW, availH, minCbSize int) error {
	split := false
	if size > minCbSize {
		bin, err := e.DecodeBin(ctxSplitCuFlag)
		if err != nil {
			return err
		}
		split = bin == 1
	}
	if !split {
		return decodeCodingUnit(e, frame, m, recon, x0, y0, size)
	}

	half := size / 2
	for _, q := range [4]struct{ dx, dy int }{{0, 0}, {half, 0}, {0, half}, {half, half}} {
		cx, cy := x0+q.dx, y0+q.dy
		if cx >= x0+availW || cy >= y0+availH {
			continue
		}
		cw := clampInt(half, availW-q.dx)
		ch := clampInt(half, availH-q.dy)
		if err := decodeCodingQuadtree(e, frame, m, recon, cx, cy, half, cw, ch, minCbSize); err != nil {
			return err
		}
	}
	return nil
}

// decodeCodingUnit reads pred_mode_flag, then the (possibly split)
// transform tree for the unit, per §7.3.8.5/§7.3.8.8.
func decodeCodingUnit(e *Engine, frame *Frame, m *Metadata, recon Reconstructor, x0, y0, size int) error {
	predBin, err := e.DecodeBin(ctxPredModeFlag)
	if err != nil {
		return err
	}
	mode := PredIntra
	if predBin == 0 {
		mode = PredInter
	}
	return decodeTransformTree(e, frame, m, recon, x0, y0, size, mode)
}

// decodeTransformTree reads split_transform_flag; at a leaf it reads the
// luma/chroma coded-block-flags and marks the 4x4 cells it covers.
func decodeTransformTree(e *Engine, frame *Frame, m *Metadata, recon Reconstructor, x0, y0, size int, mode PredMode) error {
	const minTUSize = 4
	splitBin := 0
	if size > minTUSize {
		var err error
		splitBin, err = e.DecodeBin(ctxSplitTransformFlag)
		if err != nil {
			return err
		}
	}
	if splitBin == 1 {
		half := size / 2
		for _, q := range [4]struct{ dx, dy int }{{0, 0}, {half, 0}, {0, half}, {half, half}} {
			if err := decodeTransformTree(e, frame, m, recon, x0+q.dx, y0+q.dy, half, mode); err != nil {
				return err
			}
		}
		return nil
	}

	cbfLuma, err := e.DecodeBin(ctxCbfLuma)
	if err != nil {
		return err
	}
	cbfCb, err := e.DecodeBin(ctxCbfChroma)
	if err != nil {
		return err
	}
	cbfCr, err := e.DecodeBin(ctxCbfChroma)
	if err != nil {
		return err
	}
	nonZero := cbfLuma == 1 || cbfCb == 1 || cbfCr == 1

	m.fillRect(x0, y0, size, size, splitBin == 1, mode, nonZero)
	recon.ReconstructTU(frame, x0, y0, size, mode, nonZero)
	return nil
}
