// Package report turns ranked search results into operator output: the
// console summary, the decoded output files and the companion cracklog.
package report

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ciphertechsolutions/locke/internal/search"
	"github.com/ciphertechsolutions/locke/internal/transform"
)

// CrackOptions controls how a crack run is reported.
type CrackOptions struct {
	RunID     string   // uuid of this run, recorded in the cracklog
	Families  []string // names of the families that were searched
	Keep      int
	Save      int
	Verbosity int // 0 summary, 1 + per-pattern lines, 2 + per-match offsets
	NoSave    bool
}

// Crack prints the ranked candidates and, unless NoSave is set, writes
// each non-zero-scoring candidate's decoded bytes to
// <stem>_<rank>_<shortname><ext> beside the input. Zero scores are
// reported but skipped on disk. A <input>.cracklog summary is written
// alongside.
func Crack(results []search.Candidate, inputPath string, data []byte, opts CrackOptions) error {
	var logb strings.Builder
	fmt.Fprintf(&logb, "run %s\n", opts.RunID)
	fmt.Fprintf(&logb, "input %s (%d bytes)\n", inputPath, len(data))
	fmt.Fprintf(&logb, "families %s\n", strings.Join(opts.Families, ", "))
	fmt.Fprintf(&logb, "keep %d save %d\n\n", opts.Keep, opts.Save)

	for i, c := range results {
		rank := i + 1
		head := fmt.Sprintf("#%d %s | score %d", rank, c.Transform.Name(), c.Score)
		fmt.Println(head)
		fmt.Fprintln(&logb, head)

		if opts.Verbosity >= 1 {
			for _, r := range c.Reports {
				line := fmt.Sprintf("  %4d x %s (weight %d)", len(r.Matches), r.Description, r.Weight)
				fmt.Println(line)
				fmt.Fprintln(&logb, line)
				if opts.Verbosity >= 2 {
					for _, m := range r.Matches {
						fmt.Printf("       at %08X: % X\n", m.Offset, snippet(m.Data))
					}
				}
			}
		}

		if opts.NoSave {
			continue
		}
		if c.Score == 0 {
			log.Printf("[Reporter] Skipping write for %s: score is 0", c.Transform.Name())
			continue
		}
		name := outputName(inputPath, rank, c.Transform.ShortName())
		if err := os.WriteFile(name, c.Transform.Apply(data, transform.Decode), 0o644); err != nil {
			return fmt.Errorf("writing %q: %w", name, err)
		}
		log.Printf("[Reporter] Wrote %s to file %s", c.Transform.Name(), name)
		fmt.Fprintf(&logb, "  wrote %s\n", name)
	}

	logName := inputPath + ".cracklog"
	if err := os.WriteFile(logName, []byte(logb.String()), 0o644); err != nil {
		return fmt.Errorf("writing %q: %w", logName, err)
	}
	return nil
}

// outputName builds <stem>_<rank>_<shortname><ext> next to the input.
func outputName(inputPath string, rank int, shortName string) string {
	ext := filepath.Ext(inputPath)
	stem := strings.TrimSuffix(inputPath, ext)
	return fmt.Sprintf("%s_%d_%s%s", stem, rank, shortName, ext)
}

// snippet bounds the hex dump of one match at 16 bytes.
func snippet(b []byte) []byte {
	if len(b) > 16 {
		return b[:16]
	}
	return b
}
