package transform

import "fmt"

// byteTransform is the shared implementation of every byte-local transform.
// The decode and encode byte maps are expanded into 256-entry tables on
// first use and applied by table translation.
type byteTransform struct {
	name      string
	shortName string
	dec       func(b byte) byte
	enc       func(b byte) byte

	decTab *[256]byte
	encTab *[256]byte
}

func (t *byteTransform) Name() string      { return t.name }
func (t *byteTransform) ShortName() string { return t.shortName }

func (t *byteTransform) Table(dir Direction) *[256]byte {
	if dir == Encode {
		if t.encTab == nil {
			t.encTab = expand(t.enc)
		}
		return t.encTab
	}
	if t.decTab == nil {
		t.decTab = expand(t.dec)
	}
	return t.decTab
}

func (t *byteTransform) Apply(src []byte, dir Direction) []byte {
	tab := t.Table(dir)
	out := make([]byte, len(src))
	for i, b := range src {
		out[i] = tab[b]
	}
	return out
}

func expand(f func(b byte) byte) *[256]byte {
	var tab [256]byte
	for i := 0; i < 256; i++ {
		tab[i] = f(byte(i))
	}
	return &tab
}

// NewTableTransform wraps a pre-computed decode table as an opaque
// transform. The table cache uses it to replay stored rows; label is the
// joined shortnames of the parameter tuples that produced the table.
func NewTableTransform(label string, table [256]byte) ByteLocal {
	dec := table
	var enc [256]byte
	for i, v := range dec {
		enc[v] = byte(i)
	}
	return &byteTransform{
		name:      label,
		shortName: label,
		decTab:    &dec,
		encTab:    &enc,
	}
}

func identityFamily() *Family {
	return &Family{
		Name:        "Identity",
		Description: "Returns the data unchanged",
		Params:      "none",
		Level:       1,
		ByteLocal:   true,
		Count:       1,
		At: func(int) Transform {
			return &byteTransform{
				name:      "Identity",
				shortName: "no_trans",
				dec:       func(b byte) byte { return b },
				enc:       func(b byte) byte { return b },
			}
		},
	}
}

func rolFamily() *Family {
	return &Family{
		Name:        "ROL",
		Description: "Rotate each byte left",
		Params:      "A: 1-7",
		Level:       1,
		ByteLocal:   true,
		Count:       7,
		At: func(i int) Transform {
			r := 1 + i
			return &byteTransform{
				name:      fmt.Sprintf("ROL %02X", r),
				shortName: fmt.Sprintf("rol_%02X", r),
				dec:       func(b byte) byte { return rotl8(b, r) },
				enc:       func(b byte) byte { return rotl8(b, 8-r) },
			}
		},
	}
}

func xorFamily() *Family {
	return &Family{
		Name:        "XOR",
		Description: "XOR each byte",
		Params:      "A: 1-0xFF",
		Level:       1,
		ByteLocal:   true,
		Count:       255,
		At: func(i int) Transform {
			k := byte(1 + i)
			return &byteTransform{
				name:      fmt.Sprintf("XOR %02X", k),
				shortName: fmt.Sprintf("xor_%02X", k),
				dec:       func(b byte) byte { return b ^ k },
				enc:       func(b byte) byte { return b ^ k },
			}
		},
	}
}

func addFamily() *Family {
	return &Family{
		Name:        "Add",
		Description: "Add to each byte",
		Params:      "A: 1-0xFF",
		Level:       1,
		ByteLocal:   true,
		Count:       255,
		At: func(i int) Transform {
			k := byte(1 + i)
			return &byteTransform{
				name:      fmt.Sprintf("Add %02X", k),
				shortName: fmt.Sprintf("add_%02X", k),
				dec:       func(b byte) byte { return b + k },
				enc:       func(b byte) byte { return b - k },
			}
		},
	}
}

func xorROLFamily() *Family {
	return &Family{
		Name:        "XOR-ROL",
		Description: "XOR byte and then ROL the byte",
		Params:      "A: 1-0xFF B: 1-7",
		Level:       1,
		ByteLocal:   true,
		Count:       255 * 7,
		At: func(i int) Transform {
			k := byte(1 + i/7)
			r := 1 + i%7
			return &byteTransform{
				name:      fmt.Sprintf("XOR %02X ROL %02X", k, r),
				shortName: fmt.Sprintf("xor%02X_rol%02X", k, r),
				dec:       func(b byte) byte { return rotl8(b^k, r) },
				enc:       func(b byte) byte { return rotl8(b, 8-r) ^ k },
			}
		},
	}
}

func addROLFamily() *Family {
	return &Family{
		Name:        "Add-ROL",
		Description: "Add to byte and then ROL byte",
		Params:      "A: 1-0xFF B: 1-7",
		Level:       1,
		ByteLocal:   true,
		Count:       255 * 7,
		At: func(i int) Transform {
			k := byte(1 + i/7)
			r := 1 + i%7
			return &byteTransform{
				name:      fmt.Sprintf("Add %02X ROL %02X", k, r),
				shortName: fmt.Sprintf("add%02X_rol%02X", k, r),
				dec:       func(b byte) byte { return rotl8(b+k, r) },
				enc:       func(b byte) byte { return rotl8(b, 8-r) - k },
			}
		},
	}
}

func rolAddFamily() *Family {
	return &Family{
		Name:        "ROL-Add",
		Description: "ROL byte then Add",
		Params:      "A: 1-7 B: 1-0xFF",
		Level:       1,
		ByteLocal:   true,
		Count:       7 * 255,
		At: func(i int) Transform {
			r := 1 + i/255
			k := byte(1 + i%255)
			return &byteTransform{
				name:      fmt.Sprintf("ROL %02X Add %02X", r, k),
				shortName: fmt.Sprintf("rol%02X_add%02X", r, k),
				dec:       func(b byte) byte { return rotl8(b, r) + k },
				enc:       func(b byte) byte { return rotl8(b-k, 8-r) },
			}
		},
	}
}

func xorAddFamily() *Family {
	return &Family{
		Name:        "XOR-Add",
		Description: "XOR byte then Add",
		Params:      "A: 1-0xFF B: 1-0xFF",
		Level:       1,
		ByteLocal:   true,
		Count:       255 * 255,
		At: func(i int) Transform {
			k1 := byte(1 + i/255)
			k2 := byte(1 + i%255)
			return &byteTransform{
				name:      fmt.Sprintf("XOR %02X Add %02X", k1, k2),
				shortName: fmt.Sprintf("xor%02X_add%02X", k1, k2),
				dec:       func(b byte) byte { return (b ^ k1) + k2 },
				enc:       func(b byte) byte { return (b - k2) ^ k1 },
			}
		},
	}
}

func addXORFamily() *Family {
	return &Family{
		Name:        "Add-XOR",
		Description: "Add byte then XOR",
		Params:      "A: 1-0xFF B: 1-0xFF",
		Level:       1,
		ByteLocal:   true,
		Count:       255 * 255,
		At: func(i int) Transform {
			k1 := byte(1 + i/255)
			k2 := byte(1 + i%255)
			return &byteTransform{
				name:      fmt.Sprintf("Add %02X XOR %02X", k1, k2),
				shortName: fmt.Sprintf("add%02X_xor%02X", k1, k2),
				dec:       func(b byte) byte { return (b + k1) ^ k2 },
				enc:       func(b byte) byte { return (b ^ k2) - k1 },
			}
		},
	}
}
