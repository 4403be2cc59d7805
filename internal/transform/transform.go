package transform

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Direction selects which way a transform runs. Decode inverts the
// obfuscation and is what the search driver enumerates; Encode is the
// forward operation and exists so round trips can be verified.
type Direction int

const (
	Decode Direction = iota
	Encode
)

// Transform is one concrete (family, parameter) instantiation. Apply is
// pure and length-preserving; two calls with the same input return the
// same output.
type Transform interface {
	// Name is the human label, e.g. "XOR 5A ROL 03".
	Name() string
	// ShortName is filesystem-safe and uniquely recoverable from the
	// parameters, e.g. "xor5A_rol03". It is used as the output file suffix.
	ShortName() string
	// Apply transforms src into a freshly allocated buffer of equal length.
	Apply(src []byte, dir Direction) []byte
}

// ByteLocal is implemented by transforms whose output byte depends only on
// the corresponding input byte. Such transforms are fully described by a
// 256-entry translation table, which is what the substitution-table cache
// deduplicates on.
type ByteLocal interface {
	Transform
	Table(dir Direction) *[256]byte
}

// Source yields the transforms of one enabled family in a deterministic,
// restartable order. Built-in families implement it over their parameter
// space; the table cache implements it over stored rows.
type Source interface {
	FamilyName() string
	ClassLevel() int
	// ForEach calls fn for every transform in enumeration order. A non-nil
	// error from fn stops the walk and is returned unchanged.
	ForEach(fn func(Transform) error) error
}

// Family is a parameterized class of transforms. Count and At define the
// finite parameter space: At(i) for i in [0, Count) enumerates it in a
// fixed order, so iteration can restart from scratch at any time.
type Family struct {
	Name        string
	Description string
	Params      string
	Level       int // 1..3; -1 disables the family
	ByteLocal   bool
	Count       int
	At          func(i int) Transform
}

func (f *Family) FamilyName() string { return f.Name }

func (f *Family) ClassLevel() int { return f.Level }

// ForEach walks the whole parameter space in order.
func (f *Family) ForEach(fn func(Transform) error) error {
	for i := 0; i < f.Count; i++ {
		if err := fn(f.At(i)); err != nil {
			return err
		}
	}
	return nil
}

// rotl8 rotates b left by r bits. r is reduced mod 8 so callers may pass
// any non-negative count.
func rotl8(b byte, r int) byte {
	r = r % 8
	if r == 0 {
		return b
	}
	return b<<r | b>>(8-r)
}

var families []*Family

func register(f *Family) {
	families = append(families, f)
}

func init() {
	// Registration order is the enumeration order everywhere: listings,
	// the search driver and the cache builder all walk this slice.
	register(identityFamily())
	register(rolFamily())
	register(xorFamily())
	register(addFamily())
	register(xorROLFamily())
	register(addROLFamily())
	register(rolAddFamily())
	register(xorAddFamily())
	register(addXORFamily())
	register(pstFamily())
	register(xorIncFamily())
	register(xorDecFamily())
	register(subIncFamily())
	register(xorLChainedFamily())
	register(xorRChainedFamily())
	register(xorIncROLFamily())
	register(xorRChainedAllFamily())
}

// All returns every registered family, including disabled ones.
func All() []*Family {
	return families
}

// SelectOptions controls which families Select enables.
//
// Precedence: Names wins over OnlyLevel wins over MaxLevel. A family with
// level -1 is never selected by level; it can still be named explicitly.
type SelectOptions struct {
	Names     string // comma-separated family names, case-insensitive
	OnlyLevel int    // restrict to exactly this level (0 = unset)
	MaxLevel  int    // highest level to include (0 = default 3)
	Yes       bool   // skip the confirmation prompt on unknown names
	// Prompt asks the operator a yes/no question. Nil means read stdin.
	Prompt func(question string) bool
}

// Select resolves the option set to a list of families.
//
// Unknown names are reported; if at least one name matched, the operator is
// asked whether to continue, and if none matched the selection fails.
func Select(opts SelectOptions) ([]*Family, error) {
	if opts.Names != "" {
		return selectByName(opts)
	}
	if opts.OnlyLevel != 0 {
		if opts.OnlyLevel < 1 || opts.OnlyLevel > 3 {
			return nil, fmt.Errorf("there is no such level as %d", opts.OnlyLevel)
		}
		var out []*Family
		for _, f := range families {
			if f.Level == opts.OnlyLevel {
				out = append(out, f)
			}
		}
		return out, nil
	}
	max := opts.MaxLevel
	if max == 0 {
		max = 3
	}
	if max < 1 || max > 3 {
		return nil, fmt.Errorf("there is no such level as %d", max)
	}
	var out []*Family
	for _, f := range families {
		if f.Level >= 1 && f.Level <= max {
			out = append(out, f)
		}
	}
	return out, nil
}

func selectByName(opts SelectOptions) ([]*Family, error) {
	var out []*Family
	var notFound []string
	for _, raw := range strings.Split(opts.Names, ",") {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		found := false
		for _, f := range families {
			if strings.ToLower(f.Name) == name {
				out = append(out, f)
				found = true
				break
			}
		}
		if !found {
			notFound = append(notFound, name)
		}
	}
	if len(notFound) > 0 {
		fmt.Printf("No transformation found for: %s\n", strings.Join(notFound, ", "))
		if len(out) == 0 {
			return nil, fmt.Errorf("no matching transformations for %q", opts.Names)
		}
		if !opts.Yes {
			prompt := opts.Prompt
			if prompt == nil {
				prompt = stdinPrompt
			}
			if !prompt("Do you wish to continue? (y/n) ") {
				return nil, fmt.Errorf("selection aborted")
			}
		}
	}
	return out, nil
}

func stdinPrompt(question string) bool {
	fmt.Print(question)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(strings.ToLower(line)) != "n"
}
