package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ciphertechsolutions/locke/internal/pattern"
	"github.com/ciphertechsolutions/locke/internal/transform"
)

func builtinRegistry(t *testing.T) *pattern.Registry {
	t.Helper()
	reg, err := pattern.Builtin()
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func selectSources(t *testing.T, names string) []transform.Source {
	t.Helper()
	fams, err := transform.Select(transform.SelectOptions{Names: names})
	if err != nil {
		t.Fatal(err)
	}
	sources := make([]transform.Source, len(fams))
	for i, f := range fams {
		sources[i] = f
	}
	return sources
}

func familyTransform(t *testing.T, name string, idx int) transform.Transform {
	t.Helper()
	for _, f := range transform.All() {
		if f.Name == name {
			return f.At(idx)
		}
	}
	t.Fatalf("no family %q", name)
	return nil
}

// peBuffer is an MZ/PE skeleton: header magic, a zero pad and the PE
// signature, close enough together that the MZ..PE span pattern can fire.
func peBuffer(pad int) []byte {
	buf := []byte("MZ\x90\x00\x03")
	buf = append(buf, make([]byte, pad)...)
	return append(buf, []byte("PE\x00\x00")...)
}

func run(t *testing.T, names string, data []byte, opts Options) []Candidate {
	t.Helper()
	d := NewDriver(builtinRegistry(t), data, opts)
	results, err := d.Run(context.Background(), selectSources(t, names))
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 {
		t.Fatal("no results")
	}
	return results
}

func TestIdentityWinsOnPlainInput(t *testing.T) {
	// XOR never enumerates k=0, so the untouched buffer can only win
	// through the Identity family.
	for _, f := range transform.All() {
		if f.Name != "XOR" {
			continue
		}
		f.ForEach(func(tr transform.Transform) error {
			if tr.ShortName() == "xor_00" {
				t.Fatal("XOR enumerated k=0")
			}
			return nil
		})
	}

	results := run(t, "identity,xor", peBuffer(512), Options{})
	top := results[0]
	if top.Transform.ShortName() != "no_trans" {
		t.Fatalf("top transform %s, want Identity", top.Transform.Name())
	}
	found := false
	for _, r := range top.Reports {
		if r.Description == "MZ header followed by PE header" {
			found = true
		}
	}
	if !found {
		t.Error("Identity's stage-2 report misses the MZ..PE span")
	}
	if len(results) > 1 && results[1].Score >= top.Score {
		t.Error("Identity should out-score every XOR candidate")
	}
}

func TestRecoverSingleByteXOR(t *testing.T) {
	key := byte(0x5A)
	plain := peBuffer(512)
	enc := make([]byte, len(plain))
	for i, b := range plain {
		enc[i] = b ^ key
	}

	results := run(t, "xor", enc, Options{})
	top := results[0]
	if top.Transform.ShortName() != "xor_5A" {
		t.Fatalf("top transform %s, want XOR 5A", top.Transform.Name())
	}
	if len(results) > 1 && results[1].Score >= top.Score {
		t.Errorf("XOR 5A (%d) should strictly beat the runner-up (%d)",
			top.Score, results[1].Score)
	}
}

func TestRecoverRotate(t *testing.T) {
	plain := []byte("This program cannot be run in DOS mode")
	enc := make([]byte, 4096)
	for i, b := range plain {
		enc[i] = b<<3 | b>>5
	}

	results := run(t, "rol", enc, Options{})
	// Decode rotates left too, so the inverse of an encode-side ROL 3 is
	// ROL 5.
	if got := results[0].Transform.ShortName(); got != "rol_05" {
		t.Fatalf("top transform %s, want ROL 05", got)
	}
}

func TestRecoverAddXORComposition(t *testing.T) {
	plain := []byte("Microsoft Visual C++")
	idx := (7-1)*255 + (0x42 - 1)
	tr := familyTransform(t, "Add-XOR", idx)
	if tr.Name() != "Add 07 XOR 42" {
		t.Fatalf("index math broken: got %s", tr.Name())
	}
	enc := tr.Apply(plain, transform.Encode)

	results := run(t, "add-xor", enc, Options{})
	// (k1+0x80, k2^0x80) produces the identical translation table, so the
	// winner is decided by first-appearance order among the tied pair.
	if got := results[0].Transform.Name(); got != "Add 07 XOR 42" {
		t.Fatalf("top transform %s, want Add 07 XOR 42", got)
	}
}

func TestSaveBoundsResults(t *testing.T) {
	results := run(t, "rol", peBuffer(64), Options{Keep: 5, Save: 3})
	if len(results) > 3 {
		t.Fatalf("got %d results, want at most Save=3", len(results))
	}
}

func TestSaveClampedToKeep(t *testing.T) {
	// Stage-2 survivors are a subset of stage-1 survivors: Save can never
	// exceed Keep.
	results := run(t, "rol", peBuffer(64), Options{Keep: 2, Save: 10})
	if len(results) > 2 {
		t.Fatalf("got %d results, want at most Keep=2", len(results))
	}
}

func TestTieBreakFirstAppearance(t *testing.T) {
	// All-zero input scores zero under every rotation; the ranking must
	// then follow enumeration order exactly.
	results := run(t, "rol", make([]byte, 128), Options{Keep: 7, Save: 7})
	for i, c := range results {
		if c.Score != 0 {
			t.Fatalf("expected all-zero scores, got %d", c.Score)
		}
		want := fmt.Sprintf("rol_%02X", 1+i)
		if got := c.Transform.ShortName(); got != want {
			t.Errorf("rank %d: %s, want %s", i+1, got, want)
		}
	}
}

type failingSource struct{ err error }

func (s *failingSource) FamilyName() string { return "boom" }
func (s *failingSource) ClassLevel() int    { return 1 }
func (s *failingSource) ForEach(func(transform.Transform) error) error {
	return s.err
}

func TestEnumerationErrorFailsRun(t *testing.T) {
	boom := errors.New("bad row")
	d := NewDriver(builtinRegistry(t), []byte("data"), Options{})
	_, err := d.Run(context.Background(), []transform.Source{&failingSource{err: boom}})
	if err == nil {
		t.Fatal("expected the run to fail")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("error %v does not wrap the source failure", err)
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := NewDriver(builtinRegistry(t), peBuffer(64), Options{})
	if _, err := d.Run(ctx, selectSources(t, "rol")); err == nil {
		t.Fatal("expected an error from a cancelled context")
	}
}
