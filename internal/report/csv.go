package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ciphertechsolutions/locke/pkg/models"
)

// SearchWriter emits the search verb's per-match lines and, optionally,
// CSV rows mirroring them.
type SearchWriter struct {
	out io.Writer
	csv *csv.Writer
	f   *os.File
}

var searchCSVHeader = []string{"Filename", "Index", "Pattern name", "Match", "Length"}

// NewSearchWriter writes matches to out. If csvPath is non-empty, a CSV
// file with the standard header is created as well.
func NewSearchWriter(out io.Writer, csvPath string) (*SearchWriter, error) {
	w := &SearchWriter{out: out}
	if csvPath != "" {
		f, err := os.Create(csvPath)
		if err != nil {
			return nil, fmt.Errorf("creating CSV %q: %w", csvPath, err)
		}
		w.f = f
		w.csv = csv.NewWriter(f)
		if err := w.csv.Write(searchCSVHeader); err != nil {
			f.Close()
			return nil, err
		}
	}
	return w, nil
}

// File reports one file's stage-2 match reports.
func (w *SearchWriter) File(filename string, reports []models.PatternReport) error {
	fmt.Fprintln(w.out, "===============================================================================")
	fmt.Fprintf(w.out, "File: %s\n\n", filename)
	for _, r := range reports {
		for _, m := range r.Matches {
			preview := Preview(m.Data)
			fmt.Fprintf(w.out, "at %08X: %s - %s\n", m.Offset, r.Description, preview)
			if w.csv != nil {
				row := []string{
					filename,
					fmt.Sprintf("0x%08X", m.Offset),
					r.Description,
					preview,
					strconv.Itoa(len(m.Data)),
				}
				if err := w.csv.Write(row); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Close flushes and closes the CSV file, if any.
func (w *SearchWriter) Close() error {
	if w.csv == nil {
		return nil
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

// Preview quotes matched bytes for display, truncating long matches to a
// head and tail around an ellipsis.
func Preview(data []byte) string {
	s := fmt.Sprintf("%q", data)
	if len(s) > 50 {
		s = s[:24] + "..." + s[len(s)-23:]
	}
	return s
}
