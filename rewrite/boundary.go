package rewrite

import (
	"github.com/ieee0824/oovfst/fst"
)

// DefaultBoundary is the symbol marking utterance edges.
const DefaultBoundary = "<b>"

// AddBoundary routes every accepting path through one extra boundary arc.
// Each final state gets an arc label:label with weight 0 to a single new
// final state and loses its own final marking. Arcs are then sorted by
// output label. It returns the id of the new final state.
func AddBoundary(f *fst.Fst, label int) int {
	finals := f.FinalStates()
	end := f.AddState()
	for _, s := range finals {
		f.AddArc(s, fst.Arc{ILabel: label, OLabel: label, NextState: end})
		f.SetFinal(s, fst.Inf)
	}
	f.SetFinal(end, 0)
	f.ArcSort(fst.OLabelSort)
	return end
}
