package hevcdec

import (
	"github.com/ausocean/heic/internal/bits"
	"github.com/ausocean/heic/internal/heicerr"
)

// ctxElement names the bounded set of context-adaptive syntax elements this
// core's entropy engine tracks. A full HEVC decoder maintains a context
// model per binIdx of every syntax element in the standard; this core only
// needs enough to populate the Block Metadata Grid (prediction mode,
// transform-split flag, non-zero-coefficient flag), so it tracks exactly
// one context per element instead.
type ctxElement int

const (
	ctxSplitCuFlag ctxElement = iota
	ctxSplitTransformFlag
	ctxCbfLuma
	ctxCbfChroma
	ctxPredModeFlag
	numCtxElements
)

// contextModel is one CABAC context: probability state index and the value
// currently assigned as most-probable-symbol (H.265 §9.3.2.2).
type contextModel struct {
	pStateIdx int
	valMPS    int
}

// initialContextModels gives each tracked element a fixed initial state,
// collapsed to the I-slice case (this core never decodes P or B slices).
// A full decoder derives these from slice QP via table 9-5/9-6; fixing them
// is the bounded-context-model simplification documented alongside the
// Block Metadata Grid.
func initialContextModels() [numCtxElements]contextModel {
	return [numCtxElements]contextModel{
		ctxSplitCuFlag:        {pStateIdx: 39, valMPS: 0},
		ctxSplitTransformFlag: {pStateIdx: 31, valMPS: 0},
		ctxCbfLuma:            {pStateIdx: 30, valMPS: 1},
		ctxCbfChroma:          {pStateIdx: 20, valMPS: 1},
		ctxPredModeFlag:       {pStateIdx: 45, valMPS: 1},
	}
}

// Engine is a CABAC arithmetic decoding engine. Its renormalization,
// bypass, and terminate mechanics (§9.3.4.3 of H.265, §9.3.3.2 of H.264)
// are standard-identical to the H.264 engine this core's table data is
// ported from; only the context-model bookkeeping above is HEVC-specific
// and deliberately bounded.
type Engine struct {
	br        *bits.Reader
	codIRange int
	codIOffset int
	ctx       [numCtxElements]contextModel
}

// NewEngine initializes the arithmetic decoding engine per H.265 §9.3.2.5,
// reading the initial 9-bit codIOffset from br.
func NewEngine(br *bits.Reader) (*Engine, error) {
	const op = "hevcdec.NewEngine"
	off, err := br.ReadBits(9)
	if err != nil {
		return nil, heicerr.Wrap(op, heicerr.Truncated, err)
	}
	return &Engine{
		br:         br,
		codIRange:  510,
		codIOffset: int(off),
		ctx:        initialContextModels(),
	}, nil
}

// renormD is the renormalization process of §9.3.4.3.2.2.
func (e *Engine) renormD() error {
	const op = "hevcdec.Engine.renormD"
	for e.codIRange < 256 {
		e.codIRange <<= 1
		bit, err := e.br.ReadBits(1)
		if err != nil {
			return heicerr.Wrap(op, heicerr.Truncated, err)
		}
		e.codIOffset = (e.codIOffset << 1) | int(bit)
	}
	return nil
}

// DecodeBin decodes one regular (context-coded) bin for elem, per
// §9.3.4.3.2.1, and updates that element's context state.
func (e *Engine) DecodeBin(elem ctxElement) (int, error) {
	c := &e.ctx[elem]
	qCodIRangeIdx := (e.codIRange >> 6) & 3
	codIRangeLPS, err := retCodIRangeLPS(c.pStateIdx, qCodIRangeIdx)
	if err != nil {
		return 0, err
	}
	e.codIRange -= codIRangeLPS

	var binVal int
	if e.codIOffset >= e.codIRange {
		binVal = 1 - c.valMPS
		e.codIOffset -= e.codIRange
		e.codIRange = codIRangeLPS
		if c.pStateIdx == 0 {
			c.valMPS = 1 - c.valMPS
		}
		c.pStateIdx = stateTransxTab[c.pStateIdx].TransIdxLPS
	} else {
		binVal = c.valMPS
		c.pStateIdx = stateTransxTab[c.pStateIdx].TransIdxMPS
	}

	if err := e.renormD(); err != nil {
		return 0, err
	}
	return binVal, nil
}

// DecodeBypass decodes one bypass-coded bin, per §9.3.4.3.4.
func (e *Engine) DecodeBypass() (int, error) {
	const op = "hevcdec.Engine.DecodeBypass"
	bit, err := e.br.ReadBits(1)
	if err != nil {
		return 0, heicerr.Wrap(op, heicerr.Truncated, err)
	}
	e.codIOffset = (e.codIOffset << 1) | int(bit)
	if e.codIOffset >= e.codIRange {
		e.codIOffset -= e.codIRange
		return 1, nil
	}
	return 0, nil
}

// DecodeTerminate decodes end_of_slice_segment_flag / pcm_flag, per
// §9.3.4.3.5.
func (e *Engine) DecodeTerminate() (int, error) {
	e.codIRange -= 2
	if e.codIOffset >= e.codIRange {
		return 1, nil
	}
	if err := e.renormD(); err != nil {
		return 0, err
	}
	return 0, nil
}
