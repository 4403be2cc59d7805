// Package input reads the bytes to be searched, either from a raw file or
// from an entry of a (possibly password-protected) zip archive.
package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/yeka/zip"
)

// ReadFile slurps a raw input file into memory. The whole search operates
// on this one buffer; nothing is streamed.
func ReadFile(name string) ([]byte, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", name, err)
	}
	return data, nil
}

// Chooser picks one entry (1-based) out of the listed zip entry names.
// The default asks on stdin, like the original tool; tests install their
// own.
type Chooser func(names []string) (int, error)

// ReadZip opens a zip archive, lets the operator pick an entry and returns
// that entry's bytes. password decrypts encrypted entries; an empty
// password on an encrypted entry surfaces as a read error.
func ReadZip(name, password string, choose Chooser) ([]byte, error) {
	rc, err := zip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("%q is not a valid zip file: %w", name, err)
	}
	defer rc.Close()

	if len(rc.File) == 0 {
		return nil, fmt.Errorf("%q: zip archive has no entries", name)
	}

	names := make([]string, len(rc.File))
	for i, f := range rc.File {
		names[i] = f.Name
	}
	if choose == nil {
		choose = stdinChooser
	}
	n, err := choose(names)
	if err != nil {
		return nil, err
	}
	if n < 1 || n > len(rc.File) {
		return nil, fmt.Errorf("entry %d is out of range 1-%d", n, len(rc.File))
	}

	entry := rc.File[n-1]
	if entry.IsEncrypted() {
		entry.SetPassword(password)
	}
	r, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("opening zip entry %q: %w", entry.Name, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading zip entry %q (wrong password?): %w", entry.Name, err)
	}
	return data, nil
}

func stdinChooser(names []string) (int, error) {
	fmt.Println("What file do you want to evaluate:")
	for i, n := range names {
		fmt.Printf("%d: %s\n", i+1, n)
	}
	fmt.Printf("1 - %d: ", len(names))
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return 0, fmt.Errorf("reading entry selection: %w", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("entry selection %q is not a number", strings.TrimSpace(line))
	}
	return n, nil
}
