package rewrite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ieee0824/oovfst/fst"
	"github.com/ieee0824/oovfst/symtab"
	"github.com/pkg/errors"
)

func TestNewPipelineMissingBoundary(t *testing.T) {
	syms := loadSyms(t)
	if _, err := NewPipeline(syms, Options{Boundary: "<nope>"}); !errors.Is(err, symtab.ErrNotFound) {
		t.Errorf("NewPipeline error = %v, want ErrNotFound", err)
	}
}

func TestPipelineApply(t *testing.T) {
	syms := loadSyms(t)
	p, err := NewPipeline(syms, Options{Compounds: map[string]bool{"A|B": true}})
	if err != nil {
		t.Fatal(err)
	}
	f := twoArcs(3)
	if err := p.Apply(f); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	// 2 states + 1 expansion state + 1 boundary state
	if f.NumStates() != 4 {
		t.Errorf("NumStates = %d, want 4", f.NumStates())
	}
	// 2 arcs + 1 from expansion + 1 boundary arc
	if f.TotalArcs() != 4 {
		t.Errorf("TotalArcs = %d, want 4", f.TotalArcs())
	}
	if finals := f.FinalStates(); len(finals) != 1 || finals[0] != 3 {
		t.Errorf("FinalStates = %v, want [3]", finals)
	}
}

func TestRewriteArchive(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.ark")
	out := filepath.Join(dir, "out.ark")
	for _, key := range []string{"u1", "u2"} {
		if err := fst.AppendArchive(in, key, twoArcs(3)); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(out, []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := NewPipeline(loadSyms(t), Options{})
	if err != nil {
		t.Fatal(err)
	}
	n, err := p.RewriteArchive(in, out)
	if err != nil {
		t.Fatalf("RewriteArchive error: %v", err)
	}
	if n != 2 {
		t.Errorf("written = %d, want 2", n)
	}

	entries, err := fst.ReadArchive(out)
	if err != nil {
		t.Fatalf("ReadArchive error: %v", err)
	}
	if len(entries) != 2 || entries[0].Key != "u1" || entries[1].Key != "u2" {
		t.Fatalf("entries = %+v", entries)
	}
	for _, e := range entries {
		// Expansion disabled: only the boundary state and arc are added.
		if e.Fst.NumStates() != 3 || e.Fst.TotalArcs() != 3 {
			t.Errorf("%s: %d states, %d arcs", e.Key, e.Fst.NumStates(), e.Fst.TotalArcs())
		}
		if by, ok := e.Fst.Sorted(); !ok || by != fst.OLabelSort {
			t.Errorf("%s: olabel sorted property lost", e.Key)
		}
	}
}

func TestRewriteArchiveFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.ark")
	out := filepath.Join(dir, "out.ark")
	if err := fst.AppendArchive(in, "ok", twoArcs(3)); err != nil {
		t.Fatal(err)
	}
	if err := fst.AppendArchive(in, "bad", twoArcs(5)); err != nil {
		t.Fatal(err)
	}

	p, err := NewPipeline(loadSyms(t), Options{Compounds: map[string]bool{"A|B|C": true}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.RewriteArchive(in, out); !errors.Is(err, ErrMalformedCompound) {
		t.Fatalf("RewriteArchive error = %v, want ErrMalformedCompound", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("output archive should not exist after failure")
	}
}
