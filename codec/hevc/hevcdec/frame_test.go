package hevcdec

import "testing"

func TestNewFrameFromSPSAppliesConformanceWindow(t *testing.T) {
	sps := &SPS{
		PicWidthInLumaSamples:  64,
		PicHeightInLumaSamples: 64,
		ConformanceWindowFlag:  true,
		ConfWinLeftOffset:      1,
		ConfWinRightOffset:     1,
		ConfWinTopOffset:       0,
		ConfWinBottomOffset:    2,
	}
	f := NewFrameFromSPS(sps)
	if f.Width != 64 || f.Height != 64 {
		t.Errorf("uncropped dims = %dx%d, want 64x64", f.Width, f.Height)
	}
	if f.CropX != 2 || f.CropWidth != 60 {
		t.Errorf("CropX, CropWidth = %d, %d, want 2, 60", f.CropX, f.CropWidth)
	}
	if f.CropY != 0 || f.CropHeight != 60 {
		t.Errorf("CropY, CropHeight = %d, %d, want 0, 60", f.CropY, f.CropHeight)
	}
}

func TestFrameAtSetOutOfRange(t *testing.T) {
	f := NewFrame(4, 4)
	f.Set(PlaneY, 0, 0, 100)
	if got := f.At(PlaneY, 0, 0); got != 100 {
		t.Errorf("At(0,0) = %d, want 100", got)
	}
	if got := f.At(PlaneY, -1, 0); got != 0 {
		t.Errorf("At(-1,0) = %d, want 0 (out of range reads as zero)", got)
	}
	f.Set(PlaneY, 100, 100, 5) // must not panic.
}

func TestFrameClone(t *testing.T) {
	f := NewFrame(4, 4)
	f.Set(PlaneY, 1, 1, 42)
	c := f.Clone()
	c.Set(PlaneY, 1, 1, 99)
	if got := f.At(PlaneY, 1, 1); got != 42 {
		t.Errorf("mutating a clone changed the original: At(1,1) = %d, want 42", got)
	}
}
