package pattern

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/coregx/ahocorasick"
	"github.com/coregx/coregex"

	"github.com/ciphertechsolutions/locke/pkg/models"
)

// Pattern is a named detector. Exactly one of Literal, Literals or Expr
// must be set; validation normalizes the payload to bytes, compiles regexes
// and builds the multi-literal automaton once, before any scan runs.
type Pattern struct {
	Stage       int // 1 (cheap, wide) or 2 (rich, narrow); 0 defaults to 1
	Description string
	Weight      int  // contribution per match; 0 defaults to 1
	NoCase      bool // scan the pre-lowered buffer instead of the raw one

	Literal  string
	Literals []string
	Expr     string

	// Filter post-filters candidate matches. Nil keeps everything.
	Filter func(m models.Match) bool

	lit  []byte
	auto *ahocorasick.Automaton
	re   *coregex.Regex
}

func (p *Pattern) validate() error {
	if p.Description == "" {
		return fmt.Errorf("pattern without a description")
	}
	if p.Stage == 0 {
		p.Stage = 1
	}
	if p.Stage != 1 && p.Stage != 2 {
		return fmt.Errorf("pattern %q: stage %d out of range", p.Description, p.Stage)
	}
	if p.Weight == 0 {
		p.Weight = 1
	}
	if p.Weight < 0 {
		return fmt.Errorf("pattern %q: negative weight %d", p.Description, p.Weight)
	}

	set := 0
	if p.Literal != "" {
		set++
	}
	if p.Literals != nil {
		set++
	}
	if p.Expr != "" {
		set++
	}
	if set != 1 {
		return fmt.Errorf("pattern %q: need exactly one of a literal, a literal list or a regex", p.Description)
	}

	switch {
	case p.Literal != "":
		p.lit = []byte(p.Literal)
		if p.NoCase {
			p.lit = bytes.ToLower(p.lit)
		}
	case p.Literals != nil:
		if len(p.Literals) == 0 {
			return fmt.Errorf("pattern %q: empty byte list", p.Description)
		}
		builder := ahocorasick.NewBuilder()
		for _, s := range p.Literals {
			if s == "" {
				return fmt.Errorf("pattern %q: empty literal in byte list", p.Description)
			}
			b := []byte(s)
			if p.NoCase {
				b = bytes.ToLower(b)
			}
			builder.AddPattern(b)
		}
		auto, err := builder.Build()
		if err != nil {
			return fmt.Errorf("pattern %q: building literal automaton: %w", p.Description, err)
		}
		p.auto = auto
	default:
		// Case folding happens on the buffer, never inside the engine, so a
		// case-insensitive regex must already be written in lowercase.
		if p.NoCase && p.Expr != strings.ToLower(p.Expr) {
			return fmt.Errorf("pattern %q: case-insensitive regex must be lowercase", p.Description)
		}
		re, err := coregex.Compile(p.Expr)
		if err != nil {
			return fmt.Errorf("pattern %q: %w", p.Description, err)
		}
		p.re = re
	}
	return nil
}

// findAll returns every match of p in data, left to right. Literal and
// list matches are non-overlapping: the search resumes past the end of
// each match. Regex matches follow the engine's leftmost non-overlapping
// semantics.
func (p *Pattern) findAll(data []byte) []models.Match {
	var out []models.Match
	switch {
	case p.lit != nil:
		for at := 0; ; {
			i := bytes.Index(data[at:], p.lit)
			if i < 0 {
				break
			}
			at += i
			out = append(out, models.Match{Offset: at, Data: data[at : at+len(p.lit)]})
			at += len(p.lit)
		}
	case p.auto != nil:
		for at := 0; at < len(data); {
			m := p.auto.Find(data, at)
			if m == nil {
				break
			}
			out = append(out, models.Match{Offset: m.Start, Data: data[m.Start:m.End]})
			if m.End > at {
				at = m.End
			} else {
				at++
			}
		}
	default:
		for at := 0; at <= len(data); {
			loc := p.re.FindIndex(data[at:])
			if loc == nil {
				break
			}
			start, end := at+loc[0], at+loc[1]
			out = append(out, models.Match{Offset: start, Data: data[start:end]})
			if end > at {
				at = end
			} else {
				at++
			}
		}
	}
	return out
}

// Registry holds validated patterns in registration order.
type Registry struct {
	pats []*Pattern
}

// NewRegistry validates every pattern and fails on the first bad one.
func NewRegistry(pats ...*Pattern) (*Registry, error) {
	for _, p := range pats {
		if err := p.validate(); err != nil {
			return nil, err
		}
	}
	return &Registry{pats: pats}, nil
}

// Stage returns the patterns registered for the given stage.
func (r *Registry) Stage(stage int) []*Pattern {
	var out []*Pattern
	for _, p := range r.pats {
		if p.Stage == stage {
			out = append(out, p)
		}
	}
	return out
}

// All returns every registered pattern in registration order.
func (r *Registry) All() []*Pattern {
	return r.pats
}

// NeedsLower reports whether any pattern wants the lowercased buffer.
func (r *Registry) NeedsLower() bool {
	for _, p := range r.pats {
		if p.NoCase {
			return true
		}
	}
	return false
}
