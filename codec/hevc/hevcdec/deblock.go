package hevcdec

// Deblock smooths blocking artefacts at transform-unit and prediction-unit
// boundaries that lie on the 8-sample luma grid, strictly in place, once
// per decoded frame (H.265 §8.7.2).
//
// Preconditions: metadata has been populated for every 4x4 luma cell
// inside the picture; frame's planes contain entropy-decoded pre-filter
// samples. Postcondition: sample values remain within [0, 255]; no writes
// occur outside the picture. If sh.DeblockingFilterDisabledFlag is set,
// this is a no-op. Malformed inputs are a contract violation, not a
// runtime error: this function never fails.
func Deblock(frame *Frame, sps *SPS, pps *PPS, sh *SliceHeader, metadata *Metadata) {
	if sh.DeblockingFilterDisabledFlag {
		return
	}

	ctbSize := sps.CTBSize()
	ctx := newDeblockContext(ctbSize)

	for y0 := 0; y0 < sps.PicHeightInLumaSamples; y0 += ctbSize {
		for x0 := 0; x0 < sps.PicWidthInLumaSamples; x0 += ctbSize {
			w := clampInt(ctbSize, sps.PicWidthInLumaSamples-x0)
			h := clampInt(ctbSize, sps.PicHeightInLumaSamples-y0)

			ctx.clear()
			markVerticalEdges(ctx, metadata, sh, x0, y0, w, h)
			deriveBoundaryStrengths(ctx, metadata, x0, y0, w, h, true)
			filterLumaEdges(frame, sh, ctx, x0, y0, w, h, true)
			filterChromaEdges(frame, sh, ctx, x0, y0, w, h, true)

			ctx.clear()
			markHorizontalEdges(ctx, metadata, sh, x0, y0, w, h)
			deriveBoundaryStrengths(ctx, metadata, x0, y0, w, h, false)
			filterLumaEdges(frame, sh, ctx, x0, y0, w, h, false)
			filterChromaEdges(frame, sh, ctx, x0, y0, w, h, false)
		}
	}
}

// isOuterEdgeSuppressed reports whether the CTU's outer edge (the one
// shared with a neighbouring slice/tile) must be left unfiltered. This core
// models a single slice covering the whole picture and no tiles, so the
// only source of suppression is the loop-filter-across-slices flag.
func isOuterEdgeSuppressed(sh *SliceHeader) bool {
	return !sh.LoopFilterAcrossSlicesEnabledFlag
}

func markVerticalEdges(ctx *deblockContext, m *Metadata, sh *SliceHeader, x0, y0, w, h int) {
	for y := 0; y < h; y += 4 {
		for x := 0; x < w; x += 8 {
			mark := x > 0 || (x0 > 0 && !isOuterEdgeSuppressed(sh))
			if mark {
				if i := ctx.idx(x, y); i >= 0 {
					ctx.verEdge[i] = true
				}
			}
		}
	}
}

func markHorizontalEdges(ctx *deblockContext, m *Metadata, sh *SliceHeader, x0, y0, w, h int) {
	for x := 0; x < w; x += 4 {
		for y := 0; y < h; y += 8 {
			mark := y > 0 || (y0 > 0 && !isOuterEdgeSuppressed(sh))
			if mark {
				if i := ctx.idx(x, y); i >= 0 {
					ctx.horEdge[i] = true
				}
			}
		}
	}
}

// deriveBoundaryStrengths implements the table in §4.6 "Boundary strength
// derivation": intra on either side of the edge outranks non-zero
// coefficients, which outranks a strength of zero. Inter-vs-inter motion
// vector comparison is not considered (still-image use).
func deriveBoundaryStrengths(ctx *deblockContext, m *Metadata, x0, y0, w, h int, vertical bool) {
	dx, dy := 1, 0
	if !vertical {
		dx, dy = 0, 1
	}
	for y := 0; y < h; y += 4 {
		for x := 0; x < w; x += 4 {
			i := ctx.idx(x, y)
			if i < 0 {
				continue
			}
			edge := ctx.verEdge
			if !vertical {
				edge = ctx.horEdge
			}
			if !edge[i] {
				continue
			}

			qx, qy := x0+x, y0+y
			px, py := qx-dx*4, qy-dy*4
			if px < 0 {
				px = 0
			}
			if py < 0 {
				py = 0
			}

			_, pMode, pNonZero, _ := m.Get(px, py)
			_, qMode, qNonZero, _ := m.Get(qx, qy)

			bs := 0
			switch {
			case pMode == PredIntra || qMode == PredIntra:
				bs = 2
			case pNonZero || qNonZero:
				bs = 1
			}

			if vertical {
				ctx.verBS[i] = bs
			} else {
				ctx.horBS[i] = bs
			}
		}
	}
}

// lumaThresholds computes β and tC for the constant base QP this core uses
// (Open Question (a): a full implementation derives per-block QP from
// slice QP plus cu_qp_delta). β is computed for structural parity with the
// normative derivation but is not used: only tC is used, as the clipping
// bound of both filters, and the strong/weak selection follows bS alone.
func lumaThresholds(sh *SliceHeader) (beta, tc int) {
	const baseQP = 0
	qpL := clamp(baseQP+2*sh.BetaOffsetDiv2, 0, 51)
	beta = betaTable[qpL]
	tcIdx := clamp(qpL+2*sh.TcOffsetDiv2+2, 0, 53)
	tc = tcTable[tcIdx]
	return beta, tc
}

func filterLumaEdges(frame *Frame, sh *SliceHeader, ctx *deblockContext, x0, y0, w, h int, vertical bool) {
	_, tc := lumaThresholds(sh)

	for cy := 0; cy < h; cy += 4 {
		for cx := 0; cx < w; cx += 4 {
			i := ctx.idx(cx, cy)
			if i < 0 {
				continue
			}
			bs := ctx.verBS[i]
			if !vertical {
				bs = ctx.horBS[i]
			}
			if bs == 0 {
				continue
			}

			x, y := x0+cx, y0+cy
			strong := bs == 2
			if vertical {
				if x == 0 || !lumaWindowInBounds(frame, y, x-1, y, x, true) {
					continue
				}
				for k := 0; k < 4; k++ {
					filterLumaPair(frame, y+k, x-1, y+k, x, tc, strong)
				}
			} else {
				if y == 0 || !lumaWindowInBounds(frame, y-1, x, y, x, false) {
					continue
				}
				for k := 0; k < 4; k++ {
					filterLumaPair(frame, y-1, x+k, y, x+k, tc, strong)
				}
			}
		}
	}
}

// lumaWindowInBounds reports whether every one of the four colinear P/Q
// sample pairs spanning a 4x4 cell's edge lies inside the picture. Per
// §4.6, a window that is only partially out of range is skipped in full
// rather than filtering just its in-range pairs.
func lumaWindowInBounds(frame *Frame, py, px, qy, qx int, vertical bool) bool {
	for k := 0; k < 4; k++ {
		ppy, ppx, qqy, qqx := py, px, qy, qx
		if vertical {
			ppy += k
			qqy += k
		} else {
			ppx += k
			qqx += k
		}
		if ppx < 0 || ppy < 0 || qqx < 0 || qqy < 0 ||
			ppx >= frame.Width || qqx >= frame.Width || ppy >= frame.Height || qqy >= frame.Height {
			return false
		}
	}
	return true
}

func filterLumaPair(frame *Frame, py, px, qy, qx, tc int, strong bool) {
	if px < 0 || py < 0 || qx < 0 || qy < 0 ||
		px >= frame.Width || qx >= frame.Width || py >= frame.Height || qy >= frame.Height {
		return
	}
	p0 := int(frame.At(PlaneY, py, px))
	q0 := int(frame.At(PlaneY, qy, qx))

	var delta int
	if strong {
		delta = clamp(q0-p0, -tc, tc)
		frame.Set(PlaneY, py, px, uint16(clamp(p0+delta/2, 0, 255)))
		frame.Set(PlaneY, qy, qx, uint16(clamp(q0-delta/2, 0, 255)))
		return
	}
	delta = clamp((9*(q0-p0))/16, -tc, tc)
	frame.Set(PlaneY, py, px, uint16(clamp(p0+delta, 0, 255)))
	frame.Set(PlaneY, qy, qx, uint16(clamp(q0-delta, 0, 255)))
}

// filterChromaEdges visits the 8x8 luma grid and filters Cb/Cr only where
// bS == 2.
func filterChromaEdges(frame *Frame, sh *SliceHeader, ctx *deblockContext, x0, y0, w, h int, vertical bool) {
	_, tc := lumaThresholds(sh)

	for cy := 0; cy < h; cy += 8 {
		for cx := 0; cx < w; cx += 8 {
			i := ctx.idx(cx, cy)
			if i < 0 {
				continue
			}
			bs := ctx.verBS[i]
			if !vertical {
				bs = ctx.horBS[i]
			}
			if bs != 2 {
				continue
			}

			x, y := x0+cx, y0+cy
			chromaX, chromaY := x/2, y/2
			for _, plane := range [2]Plane{PlaneCb, PlaneCr} {
				if vertical {
					if chromaX == 0 {
						continue
					}
					for k := 0; k < 2; k++ {
						filterChromaPair(frame, plane, chromaY+k, chromaX-1, chromaY+k, chromaX, tc)
					}
				} else {
					if chromaY == 0 {
						continue
					}
					for k := 0; k < 2; k++ {
						filterChromaPair(frame, plane, chromaY-1, chromaX+k, chromaY, chromaX+k, tc)
					}
				}
			}
		}
	}
}

func filterChromaPair(frame *Frame, plane Plane, py, px, qy, qx, tc int) {
	cw, ch := frame.chromaWidth(), frame.chromaHeight()
	if px < 0 || py < 0 || qx < 0 || qy < 0 || px >= cw || qx >= cw || py >= ch || qy >= ch {
		return
	}
	p0 := int(frame.At(plane, py, px))
	q0 := int(frame.At(plane, qy, qx))
	delta := clamp((q0-p0)/2, -tc, tc)
	frame.Set(plane, py, px, uint16(clamp(p0+delta, 0, 255)))
	frame.Set(plane, qy, qx, uint16(clamp(q0-delta, 0, 255)))
}
