package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ciphertechsolutions/locke/pkg/models"
)

func TestSearchWriterPlain(t *testing.T) {
	var out bytes.Buffer
	w, err := NewSearchWriter(&out, "")
	if err != nil {
		t.Fatal(err)
	}
	reports := []models.PatternReport{{
		Description: "IPv4 address",
		Weight:      100,
		Matches: []models.Match{
			{Offset: 0x10, Data: []byte("8.8.8.8")},
		},
	}}
	if err := w.File("sample.bin", reports); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	text := out.String()
	for _, want := range []string{
		"File: sample.bin",
		`at 00000010: IPv4 address - "8.8.8.8"`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output misses %q:\n%s", want, text)
		}
	}
}

func TestSearchWriterCSV(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "out.csv")
	w, err := NewSearchWriter(&bytes.Buffer{}, csvPath)
	if err != nil {
		t.Fatal(err)
	}
	reports := []models.PatternReport{{
		Description: "Common URL (http/https/ftp)",
		Weight:      10000,
		Matches: []models.Match{
			{Offset: 0x20, Data: []byte("http://example.com/a")},
		},
	}}
	if err := w.File("sample.bin", reports); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d CSV rows, want header + 1", len(rows))
	}
	if rows[0][0] != "Filename" || rows[0][4] != "Length" {
		t.Errorf("bad header: %v", rows[0])
	}
	want := []string{"sample.bin", "0x00000020", "Common URL (http/https/ftp)", `"http://example.com/a"`, "20"}
	for i, v := range want {
		if rows[1][i] != v {
			t.Errorf("row[%d] = %q, want %q", i, rows[1][i], v)
		}
	}
}
