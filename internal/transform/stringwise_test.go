package transform

import (
	"bytes"
	"testing"
)

func TestXORIncDecode(t *testing.T) {
	tr := xorIncFamily().At(0x10)
	in := []byte{0x00, 0x00, 0x00, 0xFF}
	want := []byte{0x10, 0x11, 0x12, 0xFF ^ 0x13}
	if got := tr.Apply(in, Decode); !bytes.Equal(got, want) {
		t.Errorf("XOR 10 Increment decode = % X, want % X", got, want)
	}
}

func TestXORIncKeyWraps(t *testing.T) {
	tr := xorIncFamily().At(0xFF)
	in := []byte{0x00, 0x00}
	want := []byte{0xFF, 0x00} // key wraps from FF to 00
	if got := tr.Apply(in, Decode); !bytes.Equal(got, want) {
		t.Errorf("XOR FF Increment decode = % X, want % X", got, want)
	}
}

func TestXORDecDecode(t *testing.T) {
	tr := xorDecFamily().At(0x01)
	in := []byte{0x00, 0x00, 0x00}
	want := []byte{0x00, 0xFF, 0xFE} // keys 0x100&0xFF, 0xFF, 0xFE
	if got := tr.Apply(in, Decode); !bytes.Equal(got, want) {
		t.Errorf("XOR 01 Decrement decode = % X, want % X", got, want)
	}
}

func TestSubIncWraps(t *testing.T) {
	tr := subIncFamily().At(0x05)
	in := []byte{0x03, 0x10}
	want := []byte{0xFE, 0x0A} // 0x03-0x05 wraps; 0x10-0x06
	if got := tr.Apply(in, Decode); !bytes.Equal(got, want) {
		t.Errorf("Sub 05 Increment decode = % X, want % X", got, want)
	}
}

func TestXORLChainedDecode(t *testing.T) {
	tr := xorLChainedFamily().At(0x20)
	in := []byte{0x41, 0x42, 0x43}
	want := []byte{
		0x41 ^ 0x20,
		0x42 ^ 0x20 ^ 0x41,
		0x43 ^ 0x20 ^ 0x42,
	}
	if got := tr.Apply(in, Decode); !bytes.Equal(got, want) {
		t.Errorf("XOR 20 LChained decode = % X, want % X", got, want)
	}
}

func TestXORRChainedDecode(t *testing.T) {
	tr := xorRChainedFamily().At(0x20)
	in := []byte{0x41, 0x42, 0x43}
	want := []byte{
		0x41 ^ 0x20 ^ 0x42,
		0x42 ^ 0x20 ^ 0x43,
		0x43 ^ 0x20,
	}
	if got := tr.Apply(in, Decode); !bytes.Equal(got, want) {
		t.Errorf("XOR 20 RChained decode = % X, want % X", got, want)
	}
}

func TestXORIncROLDecode(t *testing.T) {
	// Index 0 is (k=0, r=1).
	tr := xorIncROLFamily().At(0)
	in := []byte{0x01, 0x01}
	want := []byte{
		rotl8(0x01^0x00, 1),
		rotl8(0x01^0x01, 1),
	}
	if got := tr.Apply(in, Decode); !bytes.Equal(got, want) {
		t.Errorf("XOR 00 Inc ROL 01 decode = % X, want % X", got, want)
	}
}

func TestXORRChainedAllDecode(t *testing.T) {
	tr := xorRChainedAllFamily().At(0x11)
	in := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	got := tr.Apply(in, Decode)

	// Index 0 is never written by the backward walk and stays zero.
	if got[0] != 0x00 {
		t.Errorf("out[0] = %02X, want 00", got[0])
	}
	if got[1] != 0xBB^0x11^0xCC {
		t.Errorf("out[1] = %02X, want %02X", got[1], 0xBB^0x11^0xCC)
	}
	if got[2] != 0xCC^0x11^0xDD {
		t.Errorf("out[2] = %02X, want %02X", got[2], 0xCC^0x11^0xDD)
	}
	if got[3] != 0xDD^0x11 {
		t.Errorf("out[3] = %02X, want %02X", got[3], 0xDD^0x11)
	}
}

func TestStringwiseRoundTrip(t *testing.T) {
	data := []byte("This program cannot be run in DOS mode")
	fams := []*Family{
		xorIncFamily(), xorDecFamily(), subIncFamily(),
		xorLChainedFamily(), xorRChainedFamily(), xorIncROLFamily(),
	}
	for _, f := range fams {
		f := f
		t.Run(f.Name, func(t *testing.T) {
			err := f.ForEach(func(tr Transform) error {
				enc := tr.Apply(data, Encode)
				if !bytes.Equal(tr.Apply(enc, Decode), data) {
					t.Fatalf("%s: decode(encode(x)) != x", tr.Name())
				}
				return nil
			})
			if err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestXORRChainedAllRoundTripExceptFirst(t *testing.T) {
	// The decode path zeroes index 0, so only the tail survives a round
	// trip; that is the published behavior.
	data := []byte("Microsoft Visual C++")
	f := xorRChainedAllFamily()
	tr := f.At(0x42)
	enc := tr.Apply(data, Encode)
	dec := tr.Apply(enc, Decode)
	if dec[0] != 0x00 {
		t.Errorf("dec[0] = %02X, want 00", dec[0])
	}
	if !bytes.Equal(dec[1:], data[1:]) {
		t.Errorf("tail round trip failed: %q", dec[1:])
	}
}
