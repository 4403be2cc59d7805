package transdb

import (
	"fmt"
	"log"
	"strings"

	"github.com/ciphertechsolutions/locke/internal/transform"
)

// Group is one distinct translation table together with the shortnames of
// every (family, parameter) pair that produces it. Parameter tuples whose
// tables collide are functionally the same transform, so the search only
// needs to run one of them.
type Group struct {
	Table      [256]byte
	ShortNames []string
}

// Label joins the member shortnames the way the cache stores them.
func (g Group) Label() string {
	return strings.Join(g.ShortNames, "_-_")
}

// CollectGroups enumerates every byte-local family in the list, computes
// each parameter's decode table and groups identical tables. Group order
// is first appearance, so output is deterministic for a fixed family list.
func CollectGroups(fams []*transform.Family) ([]Group, error) {
	index := make(map[[256]byte]int)
	var groups []Group
	for _, f := range fams {
		if !f.ByteLocal {
			continue
		}
		log.Printf("[TransDB] Collecting tables for %s (%d params)", f.Name, f.Count)
		err := f.ForEach(func(tr transform.Transform) error {
			bl, ok := tr.(transform.ByteLocal)
			if !ok {
				return fmt.Errorf("%s: not byte-local", tr.Name())
			}
			tab := *bl.Table(transform.Decode)
			if i, ok := index[tab]; ok {
				groups[i].ShortNames = append(groups[i].ShortNames, tr.ShortName())
				return nil
			}
			index[tab] = len(groups)
			groups = append(groups, Group{Table: tab, ShortNames: []string{tr.ShortName()}})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	log.Printf("[TransDB] Found %d unique tables", len(groups))
	return groups, nil
}

// Generate rebuilds the cache file from the given families.
func Generate(path string, fams []*transform.Family) error {
	groups, err := CollectGroups(fams)
	if err != nil {
		return err
	}
	store, err := Create(path)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.InsertAll(groups); err != nil {
		return err
	}
	log.Printf("[TransDB] Wrote %d tables to %s", len(groups), path)
	return nil
}

// Duplicates returns only the groups more than one parameter tuple maps
// to. The transforms verb prints these for development use; no cache file
// is touched.
func Duplicates(fams []*transform.Family) ([]Group, error) {
	groups, err := CollectGroups(fams)
	if err != nil {
		return nil, err
	}
	var dups []Group
	for _, g := range groups {
		if len(g.ShortNames) > 1 {
			dups = append(dups, g)
		}
	}
	return dups, nil
}

// CompositeSource exposes the stored tables as a single transform family,
// replacing direct enumeration of the byte-local families during a crack
// run.
type CompositeSource struct {
	Store *Store
}

func (c *CompositeSource) FamilyName() string { return "All-Stage-12" }

func (c *CompositeSource) ClassLevel() int { return 1 }

// ForEach yields one opaque table-backed transform per stored row.
func (c *CompositeSource) ForEach(fn func(transform.Transform) error) error {
	return c.Store.ForEach(func(tab [256]byte, label string) error {
		return fn(transform.NewTableTransform(label, tab))
	})
}
