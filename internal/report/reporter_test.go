package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ciphertechsolutions/locke/internal/search"
	"github.com/ciphertechsolutions/locke/internal/transform"
	"github.com/ciphertechsolutions/locke/pkg/models"
)

func xorTransform(t *testing.T, key byte) transform.Transform {
	t.Helper()
	for _, f := range transform.All() {
		if f.Name == "XOR" {
			return f.At(int(key) - 1)
		}
	}
	t.Fatal("no XOR family")
	return nil
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		in   string
		rank int
		sn   string
		want string
	}{
		{"sample.bin", 1, "xor_5A", "sample_1_xor_5A.bin"},
		{"sample", 2, "rol_03", "sample_2_rol_03"},
		{"dir/deep.file.exe", 10, "no_trans", "dir/deep.file_10_no_trans.exe"},
	}
	for _, tt := range tests {
		if got := outputName(tt.in, tt.rank, tt.sn); got != tt.want {
			t.Errorf("outputName(%q, %d, %q) = %q, want %q", tt.in, tt.rank, tt.sn, got, tt.want)
		}
	}
}

func TestPreviewTruncation(t *testing.T) {
	short := Preview([]byte("short"))
	if short != `"short"` {
		t.Errorf("short preview = %s", short)
	}
	long := Preview(bytes.Repeat([]byte("A"), 100))
	if len(long) != 50 {
		t.Errorf("long preview length %d, want 50", len(long))
	}
	if !strings.Contains(long, "...") {
		t.Error("long preview should contain an ellipsis")
	}
}

func TestCrackWritesWinnersSkipsZeroScores(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "sample.bin")
	plain := []byte("Microsoft Visual C++")
	key := byte(0x5A)
	enc := make([]byte, len(plain))
	for i, b := range plain {
		enc[i] = b ^ key
	}
	if err := os.WriteFile(inputPath, enc, 0o644); err != nil {
		t.Fatal(err)
	}

	results := []search.Candidate{
		{
			Transform: xorTransform(t, key),
			Score:     10000,
			Reports: []models.PatternReport{{
				Description: "Possibly compiled with Microsoft Visual C++",
				Weight:      10000,
				Matches:     []models.Match{{Offset: 0, Data: plain}},
			}},
		},
		{Transform: xorTransform(t, 0x01), Score: 0},
	}
	err := Crack(results, inputPath, enc, CrackOptions{
		RunID:    "test-run",
		Families: []string{"XOR"},
		Keep:     20,
		Save:     10,
	})
	if err != nil {
		t.Fatal(err)
	}

	wrote, err := os.ReadFile(filepath.Join(dir, "sample_1_xor_5A.bin"))
	if err != nil {
		t.Fatalf("rank-1 output missing: %v", err)
	}
	if !bytes.Equal(wrote, plain) {
		t.Errorf("rank-1 output = %q, want the decoded plaintext", wrote)
	}

	if _, err := os.Stat(filepath.Join(dir, "sample_2_xor_01.bin")); !os.IsNotExist(err) {
		t.Error("zero-score candidate should not be written")
	}

	logData, err := os.ReadFile(inputPath + ".cracklog")
	if err != nil {
		t.Fatalf("cracklog missing: %v", err)
	}
	logText := string(logData)
	for _, want := range []string{"run test-run", "families XOR", "#1 XOR 5A | score 10000"} {
		if !strings.Contains(logText, want) {
			t.Errorf("cracklog misses %q:\n%s", want, logText)
		}
	}
}

func TestCrackNoSave(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "sample.bin")
	results := []search.Candidate{
		{Transform: xorTransform(t, 0x11), Score: 42},
	}
	err := Crack(results, inputPath, []byte{0x00}, CrackOptions{
		RunID: "test-run", NoSave: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "sample_1_xor_11.bin")); !os.IsNotExist(err) {
		t.Error("no-save run should not write decoded outputs")
	}
}
