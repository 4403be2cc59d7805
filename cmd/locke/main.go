// Locke hunts for payloads hidden behind cheap byte-wise obfuscation. It
// enumerates a family of inverse transforms, scores every candidate
// plaintext by the interesting patterns it contains and writes out the
// best decodings.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/ciphertechsolutions/locke/internal/input"
	"github.com/ciphertechsolutions/locke/internal/pattern"
	"github.com/ciphertechsolutions/locke/internal/report"
	"github.com/ciphertechsolutions/locke/internal/search"
	"github.com/ciphertechsolutions/locke/internal/transdb"
	"github.com/ciphertechsolutions/locke/internal/transform"
)

const defaultDBPath = "transforms.db"

// errUsage marks errors whose message the flag set already printed.
var errUsage = errors.New("usage")

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "search":
		err = runSearch(os.Args[2:])
	case "crack":
		err = runCrack(os.Args[2:])
	case "patterns":
		err = runPatterns()
	case "transforms":
		err = runTransforms(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatalf("FATAL: %v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: locke <command> [flags]

Commands:
  search      Search for patterns of interest in the supplied files
  crack       Use patterns and transformations of interest to crack a file
  patterns    List all patterns known by Locke
  transforms  List transformations, test duplicates or generate the cache

Run 'locke <command> -h' for command flags.`)
}

// runSearch scans already-plain files with the stage-2 patterns only.
func runSearch(args []string) error {
	f, err := parseSearchFlags(args)
	if err != nil {
		return err
	}
	if len(f.files) == 0 {
		return fmt.Errorf("search: no input files")
	}
	reg, err := pattern.Builtin()
	if err != nil {
		return err
	}
	w, err := report.NewSearchWriter(os.Stdout, f.csvPath)
	if err != nil {
		return err
	}
	if f.csvPath != "" {
		fmt.Printf("Writing CSV results to %s\n", f.csvPath)
	}
	for _, name := range f.files {
		data, err := input.ReadFile(name)
		if err != nil {
			w.Close()
			return err
		}
		reports := pattern.NewScanner(reg, data).Scan(2)
		if err := w.File(name, reports); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}

// runCrack performs the full two-stage search over one file.
func runCrack(args []string) error {
	f, err := parseCrackFlags(args)
	if err != nil {
		return err
	}
	if f.password != "" && !f.zipFile {
		return fmt.Errorf("--password is set without -z")
	}

	fams, err := transform.Select(transform.SelectOptions{
		Names:     f.names,
		OnlyLevel: f.onlyLevel,
		MaxLevel:  f.level,
		Yes:       f.yes,
	})
	if err != nil {
		return err
	}

	sources, closeSources, err := crackSources(fams, f.names != "", f.dbPath)
	if err != nil {
		return err
	}
	defer closeSources()

	var data []byte
	if f.zipFile {
		data, err = input.ReadZip(f.file, f.password, nil)
	} else {
		data, err = input.ReadFile(f.file)
	}
	if err != nil {
		return err
	}

	reg, err := pattern.Builtin()
	if err != nil {
		return err
	}

	driver := search.NewDriver(reg, data, search.Options{
		Keep:      f.keep,
		Save:      f.save,
		Verbosity: f.verbosity,
	})
	results, err := driver.Run(context.Background(), sources)
	if err != nil {
		return err
	}

	famNames := make([]string, len(fams))
	for i, fam := range fams {
		famNames[i] = fam.Name
	}
	return report.Crack(results, f.file, data, report.CrackOptions{
		RunID:     uuid.NewString(),
		Families:  famNames,
		Keep:      f.keep,
		Save:      f.save,
		Verbosity: f.verbosity,
		NoSave:    f.noSave,
	})
}

// crackSources turns the selected families into enumeration sources.
// Level-based selection swaps the byte-local families for the composite
// table-cache source, which deduplicates equivalent transforms; explicit
// name selection runs the named families directly and needs no cache.
func crackSources(fams []*transform.Family, byName bool, dbPath string) ([]transform.Source, func(), error) {
	var sources []transform.Source
	composite := false
	for _, fam := range fams {
		if fam.ByteLocal && !byName {
			composite = true
			continue
		}
		sources = append(sources, fam)
	}
	if !composite {
		return sources, func() {}, nil
	}
	store, err := transdb.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("run 'locke transforms -g' to create the cache: %w", err)
	}
	sources = append([]transform.Source{&transdb.CompositeSource{Store: store}}, sources...)
	return sources, func() { store.Close() }, nil
}

// runPatterns lists every registered pattern.
func runPatterns() error {
	reg, err := pattern.Builtin()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Stage\tDescription\tWeight")
	for _, p := range reg.All() {
		fmt.Fprintf(w, "%d\t%s\t%d\n", p.Stage, p.Description, p.Weight)
	}
	return w.Flush()
}

// runTransforms lists families, reports duplicate substitution tables or
// regenerates the cache.
func runTransforms(args []string) error {
	f, err := parseTransformsFlags(args)
	if err != nil {
		return err
	}
	fams, err := transform.Select(transform.SelectOptions{
		Names:     f.names,
		OnlyLevel: f.onlyLevel,
		MaxLevel:  f.level,
		Yes:       f.yes,
	})
	if err != nil {
		return err
	}

	switch {
	case f.test:
		dups, err := transdb.Duplicates(fams)
		if err != nil {
			return err
		}
		if len(dups) == 0 {
			fmt.Println("No duplicate substitution tables found")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Members\tTransforms")
		for _, g := range dups {
			fmt.Fprintf(w, "%d\t%s\n", len(g.ShortNames), g.Label())
		}
		return w.Flush()
	case f.generate:
		fmt.Printf("Generating new %s file\n", f.dbPath)
		return transdb.Generate(f.dbPath, fams)
	default:
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Level\tName\tDescription\tParams")
		for _, fam := range fams {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", fam.Level, fam.Name, fam.Description, fam.Params)
		}
		return w.Flush()
	}
}
