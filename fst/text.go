package fst

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/ieee0824/oovfst/symtab"
)

// WriteText prints f in AT&T text format: one "src dst ilabel olabel [weight]"
// line per arc, then one "state [weight]" line per final state. Arcs of the
// start state come first. Labels are printed as symbols when the matching
// table is non-nil; zero weights are omitted.
func (f *Fst) WriteText(w io.Writer, isyms, osyms *symtab.Table) error {
	bw := bufio.NewWriter(w)
	if f.start == NoState {
		return bw.Flush()
	}

	visit := make([]int, 0, len(f.states))
	visit = append(visit, f.start)
	for s := range f.states {
		if s != f.start {
			visit = append(visit, s)
		}
	}

	for _, s := range visit {
		for _, a := range f.states[s].arcs {
			il, err := label(a.ILabel, isyms)
			if err != nil {
				return err
			}
			ol, err := label(a.OLabel, osyms)
			if err != nil {
				return err
			}
			fmt.Fprintf(bw, "%d\t%d\t%s\t%s%s\n", s, a.NextState, il, ol, weightSuffix(a.Weight))
		}
	}
	for _, s := range visit {
		if final := f.states[s].final; !isInf(final) {
			fmt.Fprintf(bw, "%d%s\n", s, weightSuffix(final))
		}
	}
	return bw.Flush()
}

func label(id int, syms *symtab.Table) (string, error) {
	if syms == nil {
		return strconv.Itoa(id), nil
	}
	return syms.Lookup(id)
}

func weightSuffix(w float32) string {
	if w == 0 {
		return ""
	}
	return "\t" + strconv.FormatFloat(float64(w), 'g', -1, 32)
}
