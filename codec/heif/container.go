package heif

import (
	"github.com/ausocean/heic/internal/byteio"
	"github.com/ausocean/heic/internal/heicerr"
)

// Container is the parsed box tree of a HEIF/HEIC file: an item table plus
// enough bookkeeping to resolve any item's bytes back into the original
// container buffer. The container bytes are a borrowed immutable slice for
// the Container's lifetime.
type Container struct {
	data          []byte
	items         map[uint32]*Item
	order         []uint32
	primaryItemID uint32
	hasPrimary    bool
}

// Parse walks the top-level box stream (ftyp, meta, mdat) and materialises
// an item table. Unknown top-level and unknown meta-child boxes are
// skipped; only structural damage (truncation, malformed box length, a
// missing mandatory meta box) is fatal.
func Parse(data []byte) (*Container, error) {
	const op = "heif.Parse"
	c := &Container{data: data, items: make(map[uint32]*Item)}

	r := byteio.NewReader(data)
	var sawFtyp, sawMeta bool

	err := walkBoxes(r, len(data), func(b box) error {
		switch b.Type {
		case "ftyp":
			sawFtyp = true
			return nil
		case "meta":
			sawMeta = true
			mr := byteio.NewReader(data)
			if err := mr.SeekTo(b.BodyStart); err != nil {
				return heicerr.Wrap(op, heicerr.Malformed, err)
			}
			if _, _, err := fullBoxVersionFlags(mr); err != nil {
				return heicerr.Wrap(op, heicerr.Truncated, err)
			}
			return c.parseMeta(mr, b.End)
		default:
			// mdat and any other top-level box: skip, its bytes are
			// resolved later via iloc extents directly against data.
			return nil
		}
	})
	if err != nil {
		return nil, err
	}
	if !sawFtyp {
		return nil, heicerr.New(op, heicerr.Malformed)
	}
	if !sawMeta {
		return nil, heicerr.New(op, heicerr.Malformed)
	}
	return c, nil
}

func (c *Container) parseMeta(r *byteio.Reader, end int) error {
	const op = "heif.parseMeta"
	return walkBoxes(r, end, func(b box) error {
		br := byteio.NewReader(c.data)
		if err := br.SeekTo(b.BodyStart); err != nil {
			return heicerr.Wrap(op, heicerr.Malformed, err)
		}
		switch b.Type {
		case "iinf":
			return c.parseIinf(br, b.End)
		case "iloc":
			return c.parseIloc(br, b.End)
		case "iprp":
			return c.parseIprp(br, b.End)
		case "pitm":
			return c.parsePitm(br)
		case "iref":
			return c.parseIref(br, b.End)
		default:
			return nil // hdlr and anything else: not needed by this core.
		}
	})
}

func (c *Container) itemOrNew(id uint32) *Item {
	it, ok := c.items[id]
	if !ok {
		it = &Item{ID: id}
		c.items[id] = it
		c.order = append(c.order, id)
	}
	return it
}

func (c *Container) parseIinf(r *byteio.Reader, end int) error {
	const op = "heif.parseIinf"
	version, _, err := fullBoxVersionFlags(r)
	if err != nil {
		return heicerr.Wrap(op, heicerr.Truncated, err)
	}
	var entryCount int
	if version == 0 {
		v, err := r.U16()
		if err != nil {
			return heicerr.Wrap(op, heicerr.Truncated, err)
		}
		entryCount = int(v)
	} else {
		v, err := r.U32()
		if err != nil {
			return heicerr.Wrap(op, heicerr.Truncated, err)
		}
		entryCount = int(v)
	}
	_ = entryCount
	return walkBoxes(r, end, func(b box) error {
		if b.Type != "infe" {
			return nil
		}
		ir := byteio.NewReader(c.data)
		if err := ir.SeekTo(b.BodyStart); err != nil {
			return heicerr.Wrap(op, heicerr.Malformed, err)
		}
		return c.parseInfe(ir)
	})
}

func (c *Container) parseInfe(r *byteio.Reader) error {
	const op = "heif.parseInfe"
	version, _, err := fullBoxVersionFlags(r)
	if err != nil {
		return heicerr.Wrap(op, heicerr.Truncated, err)
	}
	if version < 2 {
		// Versions 0/1 use a differently shaped entry not carrying a
		// 4-char item_type; this core only recognises v2+ entries, the
		// form every modern HEIF encoder emits.
		return nil
	}
	var itemID uint32
	if version == 2 {
		v, err := r.U16()
		if err != nil {
			return heicerr.Wrap(op, heicerr.Truncated, err)
		}
		itemID = uint32(v)
	} else {
		v, err := r.U32()
		if err != nil {
			return heicerr.Wrap(op, heicerr.Truncated, err)
		}
		itemID = v
	}
	if _, err := r.U16(); err != nil { // item_protection_index
		return heicerr.Wrap(op, heicerr.Truncated, err)
	}
	typeBytes, err := r.ReadN(4)
	if err != nil {
		return heicerr.Wrap(op, heicerr.Truncated, err)
	}
	fourCC := string(typeBytes)

	it := c.itemOrNew(itemID)
	it.RawType = fourCC
	it.Type = itemTypeOf(fourCC)
	return nil
}

func (c *Container) parseIloc(r *byteio.Reader, end int) error {
	const op = "heif.parseIloc"
	version, _, err := fullBoxVersionFlags(r)
	if err != nil {
		return heicerr.Wrap(op, heicerr.Truncated, err)
	}
	sizes, err := r.U8()
	if err != nil {
		return heicerr.Wrap(op, heicerr.Truncated, err)
	}
	offsetSize := int(sizes >> 4)
	lengthSize := int(sizes & 0x0f)

	sizes2, err := r.U8()
	if err != nil {
		return heicerr.Wrap(op, heicerr.Truncated, err)
	}
	baseOffsetSize := int(sizes2 >> 4)
	indexSize := int(sizes2 & 0x0f)
	if version == 0 {
		indexSize = 0
	}

	var itemCount int
	if version < 2 {
		v, err := r.U16()
		if err != nil {
			return heicerr.Wrap(op, heicerr.Truncated, err)
		}
		itemCount = int(v)
	} else {
		v, err := r.U32()
		if err != nil {
			return heicerr.Wrap(op, heicerr.Truncated, err)
		}
		itemCount = int(v)
	}

	for i := 0; i < itemCount; i++ {
		var itemID uint32
		if version < 2 {
			v, err := r.U16()
			if err != nil {
				return heicerr.Wrap(op, heicerr.Truncated, err)
			}
			itemID = uint32(v)
		} else {
			v, err := r.U32()
			if err != nil {
				return heicerr.Wrap(op, heicerr.Truncated, err)
			}
			itemID = v
		}

		constructionMethod := 0
		if version == 1 || version == 2 {
			v, err := r.U16()
			if err != nil {
				return heicerr.Wrap(op, heicerr.Truncated, err)
			}
			constructionMethod = int(v & 0x0f)
		}

		if _, err := r.U16(); err != nil { // data_reference_index
			return heicerr.Wrap(op, heicerr.Truncated, err)
		}
		baseOffset, err := r.UintN(baseOffsetSize)
		if err != nil {
			return heicerr.Wrap(op, heicerr.Truncated, err)
		}
		extentCount, err := r.U16()
		if err != nil {
			return heicerr.Wrap(op, heicerr.Truncated, err)
		}

		it := c.itemOrNew(itemID)
		for e := 0; e < int(extentCount); e++ {
			if indexSize > 0 {
				if _, err := r.UintN(indexSize); err != nil {
					return heicerr.Wrap(op, heicerr.Truncated, err)
				}
			}
			extOffset, err := r.UintN(offsetSize)
			if err != nil {
				return heicerr.Wrap(op, heicerr.Truncated, err)
			}
			extLength, err := r.UintN(lengthSize)
			if err != nil {
				return heicerr.Wrap(op, heicerr.Truncated, err)
			}
			if constructionMethod != 0 {
				// idat- or item-relative construction: not modelled by
				// this core's single-file byte model.
				return heicerr.New(op, heicerr.Unsupported)
			}
			it.Extents = append(it.Extents, Extent{
				Offset: int64(baseOffset) + int64(extOffset),
				Length: int64(extLength),
			})
		}
	}
	return nil
}

func (c *Container) parsePitm(r *byteio.Reader) error {
	const op = "heif.parsePitm"
	version, _, err := fullBoxVersionFlags(r)
	if err != nil {
		return heicerr.Wrap(op, heicerr.Truncated, err)
	}
	var id uint32
	if version == 0 {
		v, err := r.U16()
		if err != nil {
			return heicerr.Wrap(op, heicerr.Truncated, err)
		}
		id = uint32(v)
	} else {
		v, err := r.U32()
		if err != nil {
			return heicerr.Wrap(op, heicerr.Truncated, err)
		}
		id = v
	}
	c.primaryItemID = id
	c.hasPrimary = true
	return nil
}

func (c *Container) parseIref(r *byteio.Reader, end int) error {
	const op = "heif.parseIref"
	version, _, err := fullBoxVersionFlags(r)
	if err != nil {
		return heicerr.Wrap(op, heicerr.Truncated, err)
	}
	idSize := 2
	if version != 0 {
		idSize = 4
	}
	return walkBoxes(r, end, func(b box) error {
		if b.Type != "dimg" {
			return nil
		}
		br := byteio.NewReader(c.data)
		if err := br.SeekTo(b.BodyStart); err != nil {
			return heicerr.Wrap(op, heicerr.Malformed, err)
		}
		fromID, err := br.UintN(idSize)
		if err != nil {
			return heicerr.Wrap(op, heicerr.Truncated, err)
		}
		count, err := br.U16()
		if err != nil {
			return heicerr.Wrap(op, heicerr.Truncated, err)
		}
		it := c.itemOrNew(uint32(fromID))
		for i := 0; i < int(count); i++ {
			toID, err := br.UintN(idSize)
			if err != nil {
				return heicerr.Wrap(op, heicerr.Truncated, err)
			}
			it.GridMasters = append(it.GridMasters, uint32(toID))
		}
		return nil
	})
}

// PrimaryItem returns the container's primary item.
func (c *Container) PrimaryItem() (*Item, error) {
	const op = "heif.Container.PrimaryItem"
	if !c.hasPrimary {
		return nil, heicerr.New(op, heicerr.NoPrimaryImage)
	}
	it, ok := c.items[c.primaryItemID]
	if !ok {
		return nil, heicerr.New(op, heicerr.NoPrimaryImage)
	}
	return it, nil
}

// GetItem returns the item with the given id.
func (c *Container) GetItem(id uint32) (*Item, error) {
	const op = "heif.Container.GetItem"
	it, ok := c.items[id]
	if !ok {
		return nil, heicerr.New(op, heicerr.MissingItemData)
	}
	return it, nil
}

// GetItemData concatenates the item's extents into a single byte slice
// resolved against the container's bytes.
func (c *Container) GetItemData(id uint32) ([]byte, error) {
	const op = "heif.Container.GetItemData"
	it, err := c.GetItem(id)
	if err != nil {
		return nil, err
	}
	if len(it.Extents) == 0 {
		return nil, heicerr.New(op, heicerr.MissingItemData)
	}
	var out []byte
	for _, e := range it.Extents {
		if e.Offset < 0 || e.Length < 0 || e.Offset+e.Length > int64(len(c.data)) {
			return nil, heicerr.New(op, heicerr.MissingItemData)
		}
		out = append(out, c.data[e.Offset:e.Offset+e.Length]...)
	}
	return out, nil
}
