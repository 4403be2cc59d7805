package pattern

import (
	"bytes"

	"github.com/ciphertechsolutions/locke/pkg/models"
)

// Scanner runs a registry against one buffer. The buffer and, when any
// pattern needs it, a lowercased sibling are shared read-only for the
// scanner's lifetime, so the input is lowered exactly once no matter how
// many case-insensitive patterns run.
type Scanner struct {
	reg   *Registry
	data  []byte
	lower []byte
}

func NewScanner(reg *Registry, data []byte) *Scanner {
	s := &Scanner{reg: reg, data: data}
	if reg.NeedsLower() {
		s.lower = bytes.ToLower(data)
	}
	return s
}

// Scan runs every pattern of the given stage and returns one report per
// pattern that matched at least once. Matches are ordered by ascending
// offset; reports follow pattern registration order.
func (s *Scanner) Scan(stage int) []models.PatternReport {
	var reports []models.PatternReport
	for _, p := range s.reg.Stage(stage) {
		data := s.data
		if p.NoCase {
			data = s.lower
		}
		ms := p.findAll(data)
		if p.Filter != nil {
			kept := ms[:0]
			for _, m := range ms {
				if p.Filter(m) {
					kept = append(kept, m)
				}
			}
			ms = kept
		}
		if len(ms) == 0 {
			continue
		}
		reports = append(reports, models.PatternReport{
			Description: p.Description,
			Weight:      p.Weight,
			Matches:     ms,
		})
	}
	return reports
}
