package heif

import (
	"bytes"
	"testing"

	"github.com/ausocean/heic/internal/heicerr"
)

// buildSyntheticHEIC assembles a minimal but structurally complete
// HEIF/HEIC file: one hvc1 item, its hvcC property, and an iloc extent
// pointing at payload bytes placed in a trailing mdat box.
func buildSyntheticHEIC(payload []byte) []byte {
	ftyp := makeBox("ftyp", []byte("heic\x00\x00\x00\x00heicmif1"))

	pitm := makeBox("pitm", fullBoxBody(0, 0, u16(1)))

	infe := makeBox("infe", fullBoxBody(2, 0, append(append(u16(1), u16(0)...), []byte("hvc1")...)))
	iinf := makeBox("iinf", append(fullBoxBody(0, 0, u16(1)), infe...))

	hvcC := makeBox("hvcC", []byte{0xde, 0xad, 0xbe, 0xef})
	ipco := makeBox("ipco", hvcC)
	ipmaBody := fullBoxBody(0, 0, u32(1))
	ipmaBody = append(ipmaBody, u16(1)...) // item_ID
	ipmaBody = append(ipmaBody, 1)         // association_count
	ipmaBody = append(ipmaBody, 0x01)      // essential=0, property_index=1
	ipma := makeBox("ipma", ipmaBody)
	iprp := makeBox("iprp", append(ipco, ipma...))

	// ftyp(8+16) + meta box header(8) + meta fullbox(4) + iinf + iloc + iprp + pitm...
	// Compute the mdat payload offset after we know meta's total size, so
	// build iloc last once everything before it is known.
	metaChildrenWithoutIloc := append(append(append([]byte{}, pitm...), iinf...), iprp...)

	// iloc: offsetSize=4, lengthSize=4, baseOffsetSize=0, indexSize=0, 1 item.
	ilocBody := fullBoxBody(0, 0, []byte{0x44, 0x00})
	ilocBody = append(ilocBody, u16(1)...) // item_count
	ilocBody = append(ilocBody, u16(1)...) // item_ID
	ilocBody = append(ilocBody, u16(0)...) // data_reference_index
	// base_offset: 0 bytes (baseOffsetSize=0)
	ilocBody = append(ilocBody, u16(1)...) // extent_count

	// The payload will live in an mdat box placed right after meta. Its
	// absolute file offset is: ftyp + meta box header/fullbox + all meta
	// children (pitm+iinf+iprp+iloc) + mdat's own 8-byte header.
	ilocPlaceholderExtent := append(u32(0), u32(uint32(len(payload)))...)
	ilocBody = append(ilocBody, ilocPlaceholderExtent...)
	iloc := makeBox("iloc", ilocBody)

	metaBody := fullBoxBody(0, 0, nil)
	metaBody = append(metaBody, metaChildrenWithoutIloc...)
	metaBody = append(metaBody, iloc...)
	meta := makeBox("meta", metaBody)

	mdatHeaderSize := 8
	payloadOffset := len(ftyp) + len(meta) + mdatHeaderSize

	// Patch the extent offset now that it's known.
	extentOffsetPos := len(iloc) - 8 // extent = [offset(4)][length(4)]
	patched := append([]byte{}, iloc...)
	copy(patched[extentOffsetPos:extentOffsetPos+4], u32(uint32(payloadOffset)))
	// Rebuild meta with the patched iloc.
	metaBody = fullBoxBody(0, 0, nil)
	metaBody = append(metaBody, metaChildrenWithoutIloc...)
	metaBody = append(metaBody, patched...)
	meta = makeBox("meta", metaBody)

	mdat := makeBox("mdat", payload)

	out := append([]byte{}, ftyp...)
	out = append(out, meta...)
	out = append(out, mdat...)
	return out
}

func TestParseResolvesPrimaryItem(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	data := buildSyntheticHEIC(payload)

	c, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	item, err := c.PrimaryItem()
	if err != nil {
		t.Fatalf("PrimaryItem failed: %v", err)
	}
	if item.ID != 1 {
		t.Errorf("primary item ID = %d, want 1", item.ID)
	}
	if item.Type != ItemHEVC {
		t.Errorf("primary item Type = %v, want ItemHEVC", item.Type)
	}
	if !bytes.Equal(item.HVCC, []byte{0xde, 0xad, 0xbe, 0xef}) {
		t.Errorf("HVCC = %v, want [0xde 0xad 0xbe 0xef]", item.HVCC)
	}

	got, err := c.GetItemData(item.ID)
	if err != nil {
		t.Fatalf("GetItemData failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("GetItemData = %v, want %v", got, payload)
	}
}

func TestParseMissingMetaFails(t *testing.T) {
	ftyp := makeBox("ftyp", []byte("heic"))
	if _, err := Parse(ftyp); err == nil {
		t.Error("expected Parse to fail on a file with no meta box")
	}
}

func TestParseTruncatedBoxFails(t *testing.T) {
	data := buildSyntheticHEIC([]byte{1, 2, 3, 4})
	if _, err := Parse(data[:len(data)-20]); err == nil {
		t.Error("expected Parse to fail on a truncated file")
	}
}

func TestPrimaryItemMissingReturnsNoPrimaryImage(t *testing.T) {
	ftyp := makeBox("ftyp", []byte("heic"))
	meta := makeBox("meta", fullBoxBody(0, 0, nil))
	data := append(append([]byte{}, ftyp...), meta...)

	c, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, err := c.PrimaryItem(); !heicerr.Is(err, heicerr.NoPrimaryImage) {
		t.Errorf("PrimaryItem error = %v, want a NoPrimaryImage error when no pitm box is present", err)
	}
}
