package transform

import "fmt"

// stringTransform is the shared implementation of the stringwise families:
// transforms whose output byte may depend on the byte's position or on its
// neighbours, so no 256-entry table can describe them.
type stringTransform struct {
	name      string
	shortName string
	dec       func(src []byte) []byte
	enc       func(src []byte) []byte
}

func (t *stringTransform) Name() string      { return t.name }
func (t *stringTransform) ShortName() string { return t.shortName }

func (t *stringTransform) Apply(src []byte, dir Direction) []byte {
	if dir == Encode {
		return t.enc(src)
	}
	return t.dec(src)
}

func xorIncFamily() *Family {
	return &Family{
		Name:        "XOR-Inc",
		Description: "XOR with byte A and increment after each byte",
		Params:      "A: 0-0xFF",
		Level:       2,
		Count:       256,
		At: func(i int) Transform {
			k := i
			// XOR with a position-dependent key is its own inverse.
			apply := func(src []byte) []byte {
				out := make([]byte, len(src))
				for j, b := range src {
					out[j] = b ^ byte(k+j)
				}
				return out
			}
			return &stringTransform{
				name:      fmt.Sprintf("XOR %02X Increment", k),
				shortName: fmt.Sprintf("xor%02X_inc", k),
				dec:       apply,
				enc:       apply,
			}
		},
	}
}

func xorDecFamily() *Family {
	return &Family{
		Name:        "XOR-Dec",
		Description: "XOR with byte A and decrements after each byte",
		Params:      "A: 0-0xFF",
		Level:       2,
		Count:       256,
		At: func(i int) Transform {
			k := i
			apply := func(src []byte) []byte {
				out := make([]byte, len(src))
				for j, b := range src {
					out[j] = b ^ byte(k+255-j)
				}
				return out
			}
			return &stringTransform{
				name:      fmt.Sprintf("XOR %02X Decrement", k),
				shortName: fmt.Sprintf("xor%02X_dec", k),
				dec:       apply,
				enc:       apply,
			}
		},
	}
}

func subIncFamily() *Family {
	return &Family{
		Name:        "Sub-Inc",
		Description: "Subtract with a value incrementing after each byte",
		Params:      "A: 0-0xFF",
		Level:       2,
		Count:       256,
		At: func(i int) Transform {
			k := i
			return &stringTransform{
				name:      fmt.Sprintf("Sub %02X Increment", k),
				shortName: fmt.Sprintf("sub%02X_inc", k),
				dec: func(src []byte) []byte {
					out := make([]byte, len(src))
					for j, b := range src {
						out[j] = b - byte(k+j)
					}
					return out
				},
				enc: func(src []byte) []byte {
					out := make([]byte, len(src))
					for j, b := range src {
						out[j] = b + byte(k+j)
					}
					return out
				},
			}
		},
	}
}

func xorLChainedFamily() *Family {
	return &Family{
		Name:        "XOR-LChained",
		Description: "XOR with key chained with previous byte",
		Params:      "A: 0-0xFF",
		Level:       2,
		Count:       256,
		At: func(i int) Transform {
			k := byte(i)
			return &stringTransform{
				name:      fmt.Sprintf("XOR %02X LChained", k),
				shortName: fmt.Sprintf("xor%02X_lchained", k),
				dec: func(src []byte) []byte {
					out := make([]byte, len(src))
					if len(src) == 0 {
						return out
					}
					out[0] = src[0] ^ k
					for j := 1; j < len(src); j++ {
						out[j] = src[j] ^ k ^ src[j-1]
					}
					return out
				},
				enc: func(src []byte) []byte {
					out := make([]byte, len(src))
					if len(src) == 0 {
						return out
					}
					out[0] = src[0] ^ k
					for j := 1; j < len(src); j++ {
						out[j] = src[j] ^ k ^ out[j-1]
					}
					return out
				},
			}
		},
	}
}

func xorRChainedFamily() *Family {
	return &Family{
		Name:        "XOR-RChained",
		Description: "XOR with key chained with next byte",
		Params:      "A: 0-0xFF",
		Level:       2,
		Count:       256,
		At: func(i int) Transform {
			k := byte(i)
			return &stringTransform{
				name:      fmt.Sprintf("XOR %02X RChained", k),
				shortName: fmt.Sprintf("xor%02X_rchained", k),
				dec: func(src []byte) []byte {
					out := make([]byte, len(src))
					if len(src) == 0 {
						return out
					}
					for j := 0; j < len(src)-1; j++ {
						out[j] = src[j] ^ k ^ src[j+1]
					}
					out[len(src)-1] = src[len(src)-1] ^ k
					return out
				},
				enc: func(src []byte) []byte {
					out := make([]byte, len(src))
					if len(src) == 0 {
						return out
					}
					out[len(src)-1] = src[len(src)-1] ^ k
					for j := len(src) - 2; j >= 0; j-- {
						out[j] = src[j] ^ k ^ out[j+1]
					}
					return out
				},
			}
		},
	}
}

func xorIncROLFamily() *Family {
	return &Family{
		Name:        "XOR-Inc-ROL",
		Description: "XOR with byte A, increment after each byte then ROL",
		Params:      "A: 0-0xFF B: 1-7",
		Level:       3,
		Count:       256 * 7,
		At: func(i int) Transform {
			k := i / 7
			r := 1 + i%7
			return &stringTransform{
				name:      fmt.Sprintf("XOR %02X Inc ROL %02X", k, r),
				shortName: fmt.Sprintf("xor%02X_inc_rol%02X", k, r),
				dec: func(src []byte) []byte {
					out := make([]byte, len(src))
					for j, b := range src {
						out[j] = rotl8(b^byte(k+j), r)
					}
					return out
				},
				enc: func(src []byte) []byte {
					out := make([]byte, len(src))
					for j, b := range src {
						out[j] = rotl8(b, 8-r) ^ byte(k+j)
					}
					return out
				},
			}
		},
	}
}

func xorRChainedAllFamily() *Family {
	return &Family{
		Name:        "XOR-RChained-All",
		Description: "XOR byte with all the bytes from the right of it",
		Params:      "A: 0-0xFF",
		Level:       3,
		Count:       256,
		At: func(i int) Transform {
			k := byte(i)
			return &stringTransform{
				name:      fmt.Sprintf("XOR %02X RChained All", k),
				shortName: fmt.Sprintf("xor%02X_rchained_all", k),
				dec: func(src []byte) []byte {
					// The loop stops before writing index 0, which stays
					// zero. That matches the published behavior and is
					// kept as-is.
					out := make([]byte, len(src))
					if len(src) == 0 {
						return out
					}
					for j := len(src) - 1; j >= 2; j-- {
						out[j-1] = src[j-1] ^ k ^ src[j]
					}
					out[len(src)-1] = src[len(src)-1] ^ k
					return out
				},
				enc: func(src []byte) []byte {
					out := make([]byte, len(src))
					if len(src) == 0 {
						return out
					}
					out[len(src)-1] = src[len(src)-1] ^ k
					for j := len(src) - 2; j >= 0; j-- {
						out[j] = src[j] ^ k ^ out[j+1]
					}
					return out
				},
			}
		},
	}
}
