package hevcdec

import (
	"bytes"
	"testing"

	"github.com/ausocean/heic/internal/bits"
)

func TestNewEngineInitialState(t *testing.T) {
	br := bits.NewReader([]byte{0xff, 0xff})
	e, err := NewEngine(br)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	if e.codIRange != 510 {
		t.Errorf("codIRange = %d, want 510", e.codIRange)
	}
	if e.codIOffset != 0x1ff {
		t.Errorf("codIOffset = %#x, want 0x1ff", e.codIOffset)
	}
}

func TestDecodeBinStaysInRange(t *testing.T) {
	br := bits.NewReader(bytes.Repeat([]byte{0xaa}, 16))
	e, err := NewEngine(br)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	for i := 0; i < 32; i++ {
		bin, err := e.DecodeBin(ctxSplitCuFlag)
		if err != nil {
			t.Fatalf("DecodeBin failed at iteration %d: %v", i, err)
		}
		if bin != 0 && bin != 1 {
			t.Fatalf("DecodeBin returned %d, want 0 or 1", bin)
		}
		if e.codIRange < 256 || e.codIRange > 510 {
			t.Fatalf("codIRange = %d out of the normative [256,510] range after renormalization", e.codIRange)
		}
	}
}

func TestDecodeBypass(t *testing.T) {
	br := bits.NewReader(bytes.Repeat([]byte{0x55}, 8))
	e, err := NewEngine(br)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	for i := 0; i < 16; i++ {
		if _, err := e.DecodeBypass(); err != nil {
			t.Fatalf("DecodeBypass failed at iteration %d: %v", i, err)
		}
	}
}

func TestRetCodIRangeLPSBounds(t *testing.T) {
	if _, err := retCodIRangeLPS(-1, 0); err == nil {
		t.Error("expected an out-of-range pStateIdx to fail")
	}
	if _, err := retCodIRangeLPS(0, 4); err == nil {
		t.Error("expected an out-of-range qCodIRangeIdx to fail")
	}
	v, err := retCodIRangeLPS(0, 0)
	if err != nil || v != rangeTabLPS[0][0] {
		t.Errorf("retCodIRangeLPS(0,0) = %d, %v, want %d, nil", v, err, rangeTabLPS[0][0])
	}
}
