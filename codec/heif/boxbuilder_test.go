package heif

import "encoding/binary"

// makeBox wraps body in a box header of the given four-character type,
// used only by tests to assemble synthetic container byte streams.
func makeBox(typ string, body []byte) []byte {
	size := 8 + len(body)
	out := make([]byte, 0, size)
	var sizeBuf [4]byte
	binary.BigEndian.PutUint32(sizeBuf[:], uint32(size))
	out = append(out, sizeBuf[:]...)
	out = append(out, []byte(typ)...)
	out = append(out, body...)
	return out
}

func fullBoxBody(version int, flags uint32, rest []byte) []byte {
	out := []byte{byte(version), byte(flags >> 16), byte(flags >> 8), byte(flags)}
	return append(out, rest...)
}

func u16(v uint16) []byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return b[:]
}

func u32(v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return b[:]
}
