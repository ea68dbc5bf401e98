// Package fst implements a mutable weighted transducer over the tropical
// semiring, stored as an arena of states that own their outgoing arcs.
package fst

import (
	"math"
	"sort"
)

// NoState marks an unset start state.
const NoState = -1

// Inf is the tropical zero: the final weight of a non-final state.
var Inf = float32(math.Inf(1))

// Arc is a transition owned by its source state.
type Arc struct {
	ILabel    int
	OLabel    int
	Weight    float32
	NextState int
}

type state struct {
	final float32
	arcs  []Arc
}

// SortType selects the arc sort key.
type SortType int

const (
	ILabelSort SortType = iota
	OLabelSort
)

// Fst is a mutable transducer with a single start state.
type Fst struct {
	states []state
	start  int
	// sorted records the last ArcSort; any arc mutation resets it.
	sorted   SortType
	isSorted bool
}

// New creates an empty transducer.
func New() *Fst {
	return &Fst{start: NoState}
}

// AddState appends a non-final state and returns its id.
func (f *Fst) AddState() int {
	f.states = append(f.states, state{final: Inf})
	return len(f.states) - 1
}

// NumStates returns the number of states.
func (f *Fst) NumStates() int {
	return len(f.states)
}

// ValidState reports whether s is a state of f.
func (f *Fst) ValidState(s int) bool {
	return s >= 0 && s < len(f.states)
}

// SetStart sets the start state.
func (f *Fst) SetStart(s int) {
	f.mustState(s)
	f.start = s
}

// Start returns the start state, or NoState.
func (f *Fst) Start() int {
	return f.start
}

// SetFinal sets the final weight of s. Inf clears the final marking.
func (f *Fst) SetFinal(s int, weight float32) {
	f.mustState(s)
	f.states[s].final = weight
}

// Final returns the final weight of s; Inf if s is not final.
func (f *Fst) Final(s int) float32 {
	f.mustState(s)
	return f.states[s].final
}

// IsFinal reports whether s has a finite final weight.
func (f *Fst) IsFinal(s int) bool {
	return !isInf(f.Final(s))
}

// FinalStates returns all final states in id order.
func (f *Fst) FinalStates() []int {
	var finals []int
	for s := range f.states {
		if f.IsFinal(s) {
			finals = append(finals, s)
		}
	}
	return finals
}

// AddArc adds an arc from src. Both endpoints must exist.
func (f *Fst) AddArc(src int, arc Arc) {
	f.mustState(src)
	f.mustState(arc.NextState)
	f.states[src].arcs = append(f.states[src].arcs, arc)
	f.isSorted = false
}

// Arcs returns a copy of the arcs leaving s, so callers may mutate f while
// holding the result.
func (f *Fst) Arcs(s int) []Arc {
	f.mustState(s)
	arcs := make([]Arc, len(f.states[s].arcs))
	copy(arcs, f.states[s].arcs)
	return arcs
}

// NumArcs returns the number of arcs leaving s.
func (f *Fst) NumArcs(s int) int {
	f.mustState(s)
	return len(f.states[s].arcs)
}

// TotalArcs returns the number of arcs in f.
func (f *Fst) TotalArcs() int {
	n := 0
	for i := range f.states {
		n += len(f.states[i].arcs)
	}
	return n
}

// DeleteArcs removes every arc leaving s.
func (f *Fst) DeleteArcs(s int) {
	f.mustState(s)
	f.states[s].arcs = nil
}

// ArcSort stably sorts the arcs of every state by the given label.
func (f *Fst) ArcSort(by SortType) {
	for i := range f.states {
		arcs := f.states[i].arcs
		switch by {
		case ILabelSort:
			sort.SliceStable(arcs, func(a, b int) bool { return arcs[a].ILabel < arcs[b].ILabel })
		case OLabelSort:
			sort.SliceStable(arcs, func(a, b int) bool { return arcs[a].OLabel < arcs[b].OLabel })
		}
	}
	f.sorted = by
	f.isSorted = true
}

// Sorted returns the sort key of the last ArcSort, if no arc was added since.
func (f *Fst) Sorted() (SortType, bool) {
	return f.sorted, f.isSorted
}

// Copy returns a deep copy of f.
func (f *Fst) Copy() *Fst {
	c := &Fst{
		states:   make([]state, len(f.states)),
		start:    f.start,
		sorted:   f.sorted,
		isSorted: f.isSorted,
	}
	for i, st := range f.states {
		c.states[i].final = st.final
		c.states[i].arcs = append([]Arc(nil), st.arcs...)
	}
	return c
}

func (f *Fst) mustState(s int) {
	if !f.ValidState(s) {
		panic("fst: invalid state id")
	}
}
