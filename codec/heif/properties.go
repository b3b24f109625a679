package heif

import (
	"github.com/ausocean/heic/internal/byteio"
	"github.com/ausocean/heic/internal/heicerr"
)

// property is one entry of the ipco property container, recorded with its
// four-character type and raw body bytes so the caller can later pull out
// the ones it recognises (only hvcC is of interest to this core).
type property struct {
	Type string
	Body []byte
}

// parseIprp walks iprp's two children: ipco (the flat property array) and
// ipma (the per-item association list, 1-based into ipco). Properties are
// resolved onto items only after both have been seen, since ipma may
// precede ipco in the stream.
func (c *Container) parseIprp(r *byteio.Reader, end int) error {
	const op = "heif.parseIprp"
	var props []property
	var assoc map[uint32][]int // itemID -> 1-based property indexes

	err := walkBoxes(r, end, func(b box) error {
		switch b.Type {
		case "ipco":
			ps, err := c.parseIpco(b.BodyStart, b.End)
			if err != nil {
				return err
			}
			props = ps
			return nil
		case "ipma":
			br := byteio.NewReader(c.data)
			if err := br.SeekTo(b.BodyStart); err != nil {
				return heicerr.Wrap(op, heicerr.Malformed, err)
			}
			a, err := parseIpma(br)
			if err != nil {
				return err
			}
			assoc = a
			return nil
		default:
			return nil
		}
	})
	if err != nil {
		return err
	}

	for itemID, indexes := range assoc {
		it := c.itemOrNew(itemID)
		for _, idx := range indexes {
			if idx < 1 || idx > len(props) {
				continue
			}
			p := props[idx-1]
			if p.Type == "hvcC" {
				it.HVCC = p.Body
			}
		}
	}
	return nil
}

// parseIpco reads the flat, unversioned array of property boxes between
// start and end, capturing each one's raw body bytes. Properties are not
// full boxes: they have no version/flags of their own, just a type and a
// body (ISO/IEC 23008-12 §9.3.1).
func (c *Container) parseIpco(start, end int) ([]property, error) {
	const op = "heif.parseIpco"
	r := byteio.NewReader(c.data)
	if err := r.SeekTo(start); err != nil {
		return nil, heicerr.Wrap(op, heicerr.Malformed, err)
	}
	var props []property
	err := walkBoxes(r, end, func(b box) error {
		body := c.data[b.BodyStart:b.End]
		props = append(props, property{Type: b.Type, Body: body})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return props, nil
}

// parseIpma reads the item-property association list, mapping each item id
// to the 1-based indexes of the properties it carries (ISO/IEC 23008-12
// §9.3.1).
func parseIpma(r *byteio.Reader) (map[uint32][]int, error) {
	const op = "heif.parseIpma"
	version, flags, err := fullBoxVersionFlags(r)
	if err != nil {
		return nil, heicerr.Wrap(op, heicerr.Truncated, err)
	}
	entryCount, err := r.U32()
	if err != nil {
		return nil, heicerr.Wrap(op, heicerr.Truncated, err)
	}

	indexSizeIsLarge := flags&0x1 != 0
	assoc := make(map[uint32][]int)

	for e := uint32(0); e < entryCount; e++ {
		var itemID uint32
		if version < 1 {
			v, err := r.U16()
			if err != nil {
				return nil, heicerr.Wrap(op, heicerr.Truncated, err)
			}
			itemID = uint32(v)
		} else {
			v, err := r.U32()
			if err != nil {
				return nil, heicerr.Wrap(op, heicerr.Truncated, err)
			}
			itemID = v
		}
		assocCount, err := r.U8()
		if err != nil {
			return nil, heicerr.Wrap(op, heicerr.Truncated, err)
		}
		for a := 0; a < int(assocCount); a++ {
			var idx int
			if indexSizeIsLarge {
				v, err := r.U16()
				if err != nil {
					return nil, heicerr.Wrap(op, heicerr.Truncated, err)
				}
				idx = int(v & 0x7fff)
			} else {
				v, err := r.U8()
				if err != nil {
					return nil, heicerr.Wrap(op, heicerr.Truncated, err)
				}
				idx = int(v & 0x7f)
			}
			assoc[itemID] = append(assoc[itemID], idx)
		}
	}
	return assoc, nil
}
