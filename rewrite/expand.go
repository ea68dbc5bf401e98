// Package rewrite holds the arc-level transforms applied to lexicon and
// utterance transducers before they are written back to an archive.
package rewrite

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/ieee0824/oovfst/fst"
	"github.com/ieee0824/oovfst/symtab"
	"github.com/pkg/errors"
)

// DefaultSeparator joins the two halves of a compound label.
const DefaultSeparator = "|"

// ErrMalformedCompound is returned when a label marked for expansion does not
// split into exactly two parts.
var ErrMalformedCompound = errors.New("compound label must have exactly two parts")

// expansion is a planned rewrite of one compound arc.
type expansion struct {
	arc    fst.Arc
	first  int
	second int
}

type statePlan struct {
	keep   []fst.Arc
	expand []expansion
}

// Expand replaces every arc whose output symbol is in compounds with a
// two-arc chain through a new state:
//
//	src -ilabel:first/weight-> new -<eps>:second/0-> dst
//
// where first and second are the ids of the output symbol's two parts.
// Only states present before the call are rewritten. At a rewritten state
// the kept arcs come first in their original order, then the chains.
// The whole rewrite is validated before f is touched, so on error f is
// unchanged.
func Expand(f *fst.Fst, syms *symtab.Table, compounds map[string]bool, sep string) error {
	if len(compounds) == 0 {
		return nil
	}

	n := f.NumStates()
	plans := make([]*statePlan, n)
	for s := 0; s < n; s++ {
		plan, err := planState(f.Arcs(s), syms, compounds, sep)
		if err != nil {
			return errors.Wrapf(err, "state %d", s)
		}
		plans[s] = plan
	}

	for s, plan := range plans {
		if plan == nil {
			continue
		}
		f.DeleteArcs(s)
		for _, a := range plan.keep {
			f.AddArc(s, a)
		}
		for _, x := range plan.expand {
			mid := f.AddState()
			f.AddArc(s, fst.Arc{ILabel: x.arc.ILabel, OLabel: x.first, Weight: x.arc.Weight, NextState: mid})
			f.AddArc(mid, fst.Arc{ILabel: symtab.Epsilon, OLabel: x.second, NextState: x.arc.NextState})
		}
	}
	return nil
}

// planState classifies the arcs of one state. It returns nil when no arc
// needs expanding.
func planState(arcs []fst.Arc, syms *symtab.Table, compounds map[string]bool, sep string) (*statePlan, error) {
	plan := &statePlan{keep: make([]fst.Arc, 0, len(arcs))}
	for _, a := range arcs {
		sym, err := syms.Lookup(a.OLabel)
		if err != nil {
			return nil, err
		}
		if !compounds[sym] {
			plan.keep = append(plan.keep, a)
			continue
		}
		parts := strings.Split(sym, sep)
		if len(parts) != 2 {
			return nil, errors.Wrapf(ErrMalformedCompound, "%q", sym)
		}
		first, err := syms.ID(parts[0])
		if err != nil {
			return nil, errors.Wrapf(err, "first part of %q", sym)
		}
		second, err := syms.ID(parts[1])
		if err != nil {
			return nil, errors.Wrapf(err, "second part of %q", sym)
		}
		plan.expand = append(plan.expand, expansion{arc: a, first: first, second: second})
	}
	if len(plan.expand) == 0 {
		return nil, nil
	}
	return plan, nil
}

// LoadCompounds reads the set of compound symbols, one per line.
func LoadCompounds(r io.Reader) (map[string]bool, error) {
	set := make(map[string]bool)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		set[line] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return set, nil
}

// LoadCompoundsFile is a convenience wrapper that opens a file path.
func LoadCompoundsFile(path string) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadCompounds(f)
}
