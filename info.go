package heic

import (
	"github.com/ausocean/heic/codec/heif"
	"github.com/ausocean/heic/codec/hevc/hevcdec"
	"github.com/ausocean/heic/internal/heicerr"
)

// ImageInfo is the subset of a HEIF image's dimensions obtainable from its
// hvcC/SPS without ever walking the CTU quad-tree or running the
// deblocking filter.
type ImageInfo struct {
	Width, Height int
	ChromaFormatIDC int
	BitDepthLuma    int
	IsGrid          bool
}

// Info reports a HEIF/HEIC container's primary image dimensions without
// decoding any sample data (§12): it stops at SPS parsing, the fast path
// callers needing only width/height take instead of a full Decode.
func (s *Session) Info(container []byte) (ImageInfo, error) {
	c, err := heif.Parse(container)
	if err != nil {
		return ImageInfo{}, err
	}
	primary, err := c.PrimaryItem()
	if err != nil {
		return ImageInfo{}, err
	}

	item := primary
	isGrid := primary.Type == heif.ItemGrid
	if isGrid {
		resolved, err := resolvePrimaryHEVCItem(c, s.log)
		if err != nil {
			return ImageInfo{}, err
		}
		item = resolved
	}

	sps, err := spsFromItem(c, item)
	if err != nil {
		return ImageInfo{}, err
	}

	return ImageInfo{
		Width:           sps.CropWidthOrFull(),
		Height:          sps.CropHeightOrFull(),
		ChromaFormatIDC: sps.ChromaFormatIDC,
		BitDepthLuma:    sps.BitDepthLuma(),
		IsGrid:          isGrid,
	}, nil
}

// spsFromItem extracts an item's SPS the cheapest way available: from its
// hvcC record if one is attached, or else by scanning its Annex-B item data
// for an in-band SPS NAL unit (§12, mirroring lib.rs's get_info fallback).
func spsFromItem(c *heif.Container, item *heif.Item) (*hevcdec.SPS, error) {
	const op = "heic.spsFromItem"
	if item.HVCC != nil {
		record, err := hevcdec.ParseHVCC(item.HVCC)
		if err != nil {
			return nil, err
		}
		sps, _, err := parseParameterSets(record)
		return sps, err
	}

	data, err := c.GetItemData(item.ID)
	if err != nil {
		return nil, err
	}
	for _, u := range hevcdec.SplitAnnexB(data) {
		nal, err := hevcdec.ParseNALUnit(u)
		if err != nil {
			continue
		}
		if nal.Type != hevcdec.NalSPS {
			continue
		}
		return hevcdec.ParseSPS(nal.Payload)
	}
	return nil, heicerr.New(op, heicerr.MissingItemData)
}
