package main

import "flag"

// Flag sets for the four verbs. Declarations live here so main.go only
// carries the dispatch and verb logic.

type searchFlags struct {
	csvPath string
	files   []string
}

func parseSearchFlags(args []string) (*searchFlags, error) {
	var f searchFlags
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.StringVar(&f.csvPath, "csv", "", "Also write results as CSV to `PATH`")
	if err := fs.Parse(args); err != nil {
		return nil, errUsage
	}
	f.files = fs.Args()
	return &f, nil
}

type crackFlags struct {
	level     int
	onlyLevel int
	names     string
	keep      int
	save      int
	zipFile   bool
	password  string
	noSave    bool
	verbosity int
	dbPath    string
	yes       bool
	file      string
}

func parseCrackFlags(args []string) (*crackFlags, error) {
	var f crackFlags
	fs := flag.NewFlagSet("crack", flag.ContinueOnError)
	fs.IntVar(&f.level, "l", 3, "Select transformers with `level` 1, 2, or 3 and below")
	fs.IntVar(&f.onlyLevel, "o", 0, "Only use transformers on that specific `level`")
	fs.StringVar(&f.names, "n", "", "Comma-separated transformer `names` to use (case-insensitive)")
	fs.IntVar(&f.keep, "k", 20, "How many transforms to keep after stage 1")
	fs.IntVar(&f.save, "s", 10, "How many transforms to save after stage 2")
	fs.BoolVar(&f.zipFile, "z", false, "Mark this file as a zip file. Use --password to enter zip password")
	fs.StringVar(&f.password, "password", "", "Only works if -z is set. Password for the zip file")
	fs.BoolVar(&f.noSave, "no-save", false, "Don't save results to disk")
	fs.IntVar(&f.verbosity, "v", 0, "Verbosity `level` 0-2")
	fs.StringVar(&f.dbPath, "db", defaultDBPath, "Path to the substitution-table cache")
	fs.BoolVar(&f.yes, "yes", false, "Continue without asking when some requested names are unknown")
	if err := fs.Parse(args); err != nil {
		return nil, errUsage
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, errUsage
	}
	f.file = fs.Arg(0)
	return &f, nil
}

type transformsFlags struct {
	level     int
	onlyLevel int
	names     string
	test      bool
	generate  bool
	dbPath    string
	yes       bool
}

func parseTransformsFlags(args []string) (*transformsFlags, error) {
	var f transformsFlags
	fs := flag.NewFlagSet("transforms", flag.ContinueOnError)
	fs.IntVar(&f.level, "l", 3, "Select transformers with `level` 1, 2, or 3 and below")
	fs.IntVar(&f.onlyLevel, "o", 0, "Only use transformers on that specific `level`")
	fs.StringVar(&f.names, "n", "", "Comma-separated transformer `names` to use (case-insensitive)")
	fs.BoolVar(&f.test, "t", false, "Test transformations for duplicate substitution tables")
	fs.BoolVar(&f.generate, "g", false, "Generate the substitution-table cache")
	fs.StringVar(&f.dbPath, "db", defaultDBPath, "Path to the substitution-table cache")
	fs.BoolVar(&f.yes, "yes", false, "Continue without asking when some requested names are unknown")
	if err := fs.Parse(args); err != nil {
		return nil, errUsage
	}
	return &f, nil
}
