package heif

import "testing"

func TestItemTypeOf(t *testing.T) {
	cases := map[string]ItemType{
		"hvc1": ItemHEVC,
		"grid": ItemGrid,
		"Exif": ItemOther,
		"mime": ItemOther,
	}
	for fourCC, want := range cases {
		if got := itemTypeOf(fourCC); got != want {
			t.Errorf("itemTypeOf(%q) = %v, want %v", fourCC, got, want)
		}
	}
}
