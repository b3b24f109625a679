/*
NAME
  heic - a pure, sandboxed HEIF/HEIC still-image decoder core.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package heic decodes a single still image out of a HEIF/HEIC container:
// it resolves the primary item (or, for a grid, its first tile) to an HEVC
// bitstream, parses the parameter sets and slice header, walks the CTU
// quad-tree to populate per-4x4 block metadata, and runs the in-loop
// deblocking filter. Intra prediction and the inverse transform are the
// Reconstructor's responsibility and are not performed by this package.
package heic

import (
	"github.com/ausocean/utils/logging"

	"github.com/ausocean/heic/codec/heif"
	"github.com/ausocean/heic/codec/hevc/hevcdec"
	"github.com/ausocean/heic/internal/heicerr"
)

// Log is the package-level logger. It defaults to a discarding logger so a
// caller that never configures one gets silence, not a panic.
var Log logging.Logger = logging.New(logging.Debug, nopWriter{}, false)

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

// defaultMaxPictureSize bounds the luma plane area this core will allocate
// a Frame for, guarding against a maliciously large pic_width/pic_height
// pair in an otherwise well-formed SPS.
const defaultMaxPictureSize = 8192 * 8192

// Session holds decode-wide configuration. The zero value is not usable;
// construct with NewSession.
type Session struct {
	log             logging.Logger
	maxPictureSize  int
	recon           hevcdec.Reconstructor
}

// Option configures a Session.
type Option func(*Session)

// WithLogger overrides the Session's logger. The default is the
// package-level Log.
func WithLogger(l logging.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithMaxPictureSize overrides the maximum luma plane area (width*height)
// a decode will allocate for.
func WithMaxPictureSize(n int) Option {
	return func(s *Session) { s.maxPictureSize = n }
}

// WithReconstructor overrides the transform-unit reconstructor used during
// CTU partitioning. The default performs no sample reconstruction and only
// populates the block metadata grid.
func WithReconstructor(r hevcdec.Reconstructor) Option {
	return func(s *Session) { s.recon = r }
}

// NewSession constructs a Session with the given options applied over
// defaults.
func NewSession(opts ...Option) *Session {
	s := &Session{
		log:            Log,
		maxPictureSize: defaultMaxPictureSize,
		recon:          hevcdec.NoopReconstructor{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Result is the outcome of a Decode: the reconstructed picture, its
// parameter sets, and the per-4x4 block metadata grid produced while
// partitioning it.
type Result struct {
	Frame    *hevcdec.Frame
	SPS      *hevcdec.SPS
	PPS      *hevcdec.PPS
	Slice    *hevcdec.SliceHeader
	Metadata *hevcdec.Metadata
}

// Decode parses a HEIF/HEIC container, resolves its primary image to an
// HEVC bitstream, and runs the full pipeline: NAL/RBSP extraction,
// parameter set and slice header parsing, CTU partitioning (via the
// Session's Reconstructor), and in-loop deblocking.
//
// A primary item that is a grid decodes only its first referenced tile
// (§12): a full grid reassembly is out of scope for this core, and Log
// records a warning when this shortcut is taken.
func (s *Session) Decode(container []byte) (*Result, error) {
	const op = "heic.Session.Decode"

	c, err := heif.Parse(container)
	if err != nil {
		return nil, err
	}
	item, err := resolvePrimaryHEVCItem(c, s.log)
	if err != nil {
		return nil, err
	}
	if item.HVCC == nil {
		return nil, heicerr.New(op, heicerr.MissingItemData)
	}
	data, err := c.GetItemData(item.ID)
	if err != nil {
		return nil, err
	}

	record, err := hevcdec.ParseHVCC(item.HVCC)
	if err != nil {
		return nil, err
	}

	sps, pps, err := parseParameterSets(record)
	if err != nil {
		return nil, err
	}
	if sps.PicWidthInLumaSamples*sps.PicHeightInLumaSamples > s.maxPictureSize {
		return nil, heicerr.New(op, heicerr.Unsupported)
	}

	units, err := hevcdec.SplitLengthPrefixed(data, record.LengthSize())
	if err != nil {
		return nil, err
	}

	var slice *hevcdec.SliceHeader
	var sliceRBSP []byte
	for _, u := range units {
		nal, err := hevcdec.ParseNALUnit(u)
		if err != nil {
			return nil, err
		}
		if nal.Type == hevcdec.NalVPS || nal.Type == hevcdec.NalSPS || nal.Type == hevcdec.NalPPS {
			continue
		}
		sh, err := hevcdec.ParseSliceHeader(nal.Payload, nal.Type, sps, pps)
		if err != nil {
			continue // not a slice NAL this core recognises; try the next unit.
		}
		slice = sh
		sliceRBSP = nal.Payload
		break
	}
	if slice == nil {
		return nil, heicerr.New(op, heicerr.Unsupported)
	}

	frame := hevcdec.NewFrameFromSPS(sps)
	metadata := hevcdec.NewMetadata(sps.PicWidthInLumaSamples, sps.PicHeightInLumaSamples)

	if err := hevcdec.Partition(sliceRBSP, sps, slice, frame, metadata, s.recon); err != nil {
		return nil, err
	}
	hevcdec.Deblock(frame, sps, pps, slice, metadata)

	return &Result{Frame: frame, SPS: sps, PPS: pps, Slice: slice, Metadata: metadata}, nil
}

// resolvePrimaryHEVCItem returns the primary item if it is directly an
// HEVC image, or the first grid master of a primary grid item, logging a
// warning in the latter case.
func resolvePrimaryHEVCItem(c *heif.Container, log logging.Logger) (*heif.Item, error) {
	const op = "heic.resolvePrimaryHEVCItem"
	item, err := c.PrimaryItem()
	if err != nil {
		return nil, err
	}
	switch item.Type {
	case heif.ItemHEVC:
		return item, nil
	case heif.ItemGrid:
		if len(item.GridMasters) == 0 {
			return nil, heicerr.New(op, heicerr.Malformed)
		}
		log.Warning("primary item is a grid; decoding only its first tile", "tileID", item.GridMasters[0])
		return c.GetItem(item.GridMasters[0])
	default:
		return nil, heicerr.New(op, heicerr.Unsupported)
	}
}

func parseParameterSets(record *hevcdec.DecoderConfigurationRecord) (*hevcdec.SPS, *hevcdec.PPS, error) {
	const op = "heic.parseParameterSets"
	spsNALs := record.NALUsOfType(hevcdec.NalSPS)
	ppsNALs := record.NALUsOfType(hevcdec.NalPPS)
	if len(spsNALs) == 0 || len(ppsNALs) == 0 {
		return nil, nil, heicerr.New(op, heicerr.Malformed)
	}
	spsNAL, err := hevcdec.ParseNALUnit(spsNALs[0])
	if err != nil {
		return nil, nil, err
	}
	sps, err := hevcdec.ParseSPS(spsNAL.Payload)
	if err != nil {
		return nil, nil, err
	}
	ppsNAL, err := hevcdec.ParseNALUnit(ppsNALs[0])
	if err != nil {
		return nil, nil, err
	}
	pps, err := hevcdec.ParsePPS(ppsNAL.Payload)
	if err != nil {
		return nil, nil, err
	}
	return sps, pps, nil
}
