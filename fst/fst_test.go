package fst

import (
	"bytes"
	"io"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ieee0824/oovfst/symtab"
	"github.com/pkg/errors"
)

// chain builds 0 -1:1-> 1 -2:0-> 2(final) plus an olabel-unsorted state 0.
func chain() *Fst {
	f := New()
	s0, s1, s2 := f.AddState(), f.AddState(), f.AddState()
	f.SetStart(s0)
	f.AddArc(s0, Arc{ILabel: 3, OLabel: 5, Weight: 0.5, NextState: s1})
	f.AddArc(s0, Arc{ILabel: 1, OLabel: 1, NextState: s1})
	f.AddArc(s1, Arc{ILabel: 2, OLabel: 0, NextState: s2})
	f.SetFinal(s2, 0)
	return f
}

func TestBasicOps(t *testing.T) {
	f := chain()
	if f.NumStates() != 3 {
		t.Errorf("NumStates = %d, want 3", f.NumStates())
	}
	if f.TotalArcs() != 3 {
		t.Errorf("TotalArcs = %d, want 3", f.TotalArcs())
	}
	if f.Start() != 0 {
		t.Errorf("Start = %d, want 0", f.Start())
	}
	if !f.IsFinal(2) || f.IsFinal(0) {
		t.Error("final markings wrong")
	}
	if got := f.FinalStates(); !reflect.DeepEqual(got, []int{2}) {
		t.Errorf("FinalStates = %v, want [2]", got)
	}

	arcs := f.Arcs(0)
	arcs[0].ILabel = 99
	if f.Arcs(0)[0].ILabel != 3 {
		t.Error("Arcs must return a copy")
	}

	f.DeleteArcs(0)
	if f.NumArcs(0) != 0 {
		t.Errorf("NumArcs(0) after DeleteArcs = %d", f.NumArcs(0))
	}
	f.SetFinal(2, Inf)
	if len(f.FinalStates()) != 0 {
		t.Error("SetFinal(Inf) should clear final")
	}
}

func TestAddArcInvalidState(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for arc to missing state")
		}
	}()
	f := New()
	s := f.AddState()
	f.AddArc(s, Arc{NextState: 7})
}

func TestArcSort(t *testing.T) {
	f := chain()
	f.ArcSort(OLabelSort)
	arcs := f.Arcs(0)
	if arcs[0].OLabel != 1 || arcs[1].OLabel != 5 {
		t.Errorf("olabel sort: %+v", arcs)
	}
	if by, ok := f.Sorted(); !ok || by != OLabelSort {
		t.Errorf("Sorted = %v, %v", by, ok)
	}
	f.AddArc(2, Arc{NextState: 0})
	if _, ok := f.Sorted(); ok {
		t.Error("AddArc should reset sorted flag")
	}
}

func TestCopyIndependent(t *testing.T) {
	f := chain()
	c := f.Copy()
	c.AddArc(0, Arc{NextState: 2})
	c.SetFinal(0, 1)
	if f.NumArcs(0) != 2 || f.IsFinal(0) {
		t.Error("Copy shares state with original")
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	f := chain()
	f.ArcSort(OLabelSort)
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if !reflect.DeepEqual(got, f) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, f)
	}
	if buf.Len() != 0 {
		t.Errorf("%d trailing bytes left unread", buf.Len())
	}
}

func TestBinaryHeaderLayout(t *testing.T) {
	var buf bytes.Buffer
	if err := New().Write(&buf); err != nil {
		t.Fatal(err)
	}
	b := buf.Bytes()
	// magic(4) + "vector"(4+6) + "standard"(4+8) + version, flags(8) +
	// properties(8) + start, states, arcs(24)
	if len(b) != 4+10+12+8+8+24 {
		t.Fatalf("header length = %d", len(b))
	}
	if !bytes.Equal(b[:4], []byte{0xd6, 0xfd, 0xb2, 0x7e}) {
		t.Errorf("magic bytes = % x", b[:4])
	}
	if string(b[8:14]) != "vector" || string(b[18:26]) != "standard" {
		t.Errorf("type strings wrong: %q %q", b[8:14], b[18:26])
	}
}

func TestReadRejectsBadInput(t *testing.T) {
	if _, err := Read(bytes.NewReader([]byte{1, 2, 3, 4})); !errors.Is(err, ErrBadHeader) {
		t.Errorf("bad magic: err = %v", err)
	}

	var buf bytes.Buffer
	if err := chain().Write(&buf); err != nil {
		t.Fatal(err)
	}
	truncated := buf.Bytes()[:buf.Len()-3]
	if _, err := Read(bytes.NewReader(truncated)); err == nil {
		t.Error("expected error for truncated fst")
	}

	tests := []struct {
		name      string
		version   int32
		numStates int64
		numArcs   int64
		want      error
	}{
		{"huge state count", vectorVersion, 1 << 60, 0, ErrBadHeader},
		{"huge arc count", vectorVersion, 1, 1 << 60, ErrBadHeader},
		{"negative state count", vectorVersion, -5, 0, ErrBadHeader},
		{"other version", 1, 1, 0, ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hdr bytes.Buffer
			if err := writeAll(&hdr, magicNumber); err != nil {
				t.Fatal(err)
			}
			if err := writeString(&hdr, vectorType); err != nil {
				t.Fatal(err)
			}
			if err := writeString(&hdr, standardArc); err != nil {
				t.Fatal(err)
			}
			if err := writeAll(&hdr, tt.version, int32(0), propExpanded, int64(0), tt.numStates, tt.numArcs); err != nil {
				t.Fatal(err)
			}
			if _, err := Read(&hdr); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReadTruncatedLargeHeader(t *testing.T) {
	// A plausible count with no records behind it fails on the first read.
	var hdr bytes.Buffer
	if err := writeAll(&hdr, magicNumber); err != nil {
		t.Fatal(err)
	}
	if err := writeString(&hdr, vectorType); err != nil {
		t.Fatal(err)
	}
	if err := writeString(&hdr, standardArc); err != nil {
		t.Fatal(err)
	}
	if err := writeAll(&hdr, vectorVersion, int32(0), propExpanded, int64(0), int64(maxCount), int64(maxCount)); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(&hdr); err == nil {
		t.Error("expected error for header without state records")
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ark")
	a := chain()
	b := New()
	b.SetStart(b.AddState())
	b.SetFinal(0, 0.25)
	if err := AppendArchive(path, "utt1", a); err != nil {
		t.Fatal(err)
	}
	if err := AppendArchive(path, "utt2", b); err != nil {
		t.Fatal(err)
	}

	entries, err := ReadArchive(path)
	if err != nil {
		t.Fatalf("ReadArchive error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Key != "utt1" || entries[1].Key != "utt2" {
		t.Errorf("keys = %s, %s", entries[0].Key, entries[1].Key)
	}
	if !reflect.DeepEqual(entries[0].Fst, a) || !reflect.DeepEqual(entries[1].Fst, b) {
		t.Error("archive entries differ from written fsts")
	}
}

func TestArchiveKaldiMarker(t *testing.T) {
	var body bytes.Buffer
	if err := chain().Write(&body); err != nil {
		t.Fatal(err)
	}
	data := append([]byte("k1 \x00B"), body.Bytes()...)
	ar := NewArchiveReader(bytes.NewReader(data))
	e, err := ar.Next()
	if err != nil {
		t.Fatalf("Next error: %v", err)
	}
	if e.Key != "k1" || e.Fst.NumStates() != 3 {
		t.Errorf("entry = %s with %d states", e.Key, e.Fst.NumStates())
	}
	if _, err := ar.Next(); err != io.EOF {
		t.Errorf("second Next error = %v, want io.EOF", err)
	}
}

func TestWriteEntryBadKey(t *testing.T) {
	for _, key := range []string{"", "a b", "a\tb"} {
		if err := WriteEntry(io.Discard, key, New()); !errors.Is(err, ErrBadKey) {
			t.Errorf("WriteEntry(%q) error = %v, want ErrBadKey", key, err)
		}
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := chain().WriteText(&buf, nil, nil); err != nil {
		t.Fatal(err)
	}
	want := "0\t1\t3\t5\t0.5\n0\t1\t1\t1\n1\t2\t2\t0\n2\n"
	if buf.String() != want {
		t.Errorf("WriteText =\n%s\nwant\n%s", buf.String(), want)
	}

	syms, err := symtab.Load(strings.NewReader("<eps> 0\none 1\ntwo 2\nthree 3\nfive 5\n"))
	if err != nil {
		t.Fatal(err)
	}
	buf.Reset()
	if err := chain().WriteText(&buf, syms, syms); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "0\t1\tthree\tfive\t0.5\n") {
		t.Errorf("symbolic WriteText = %q", buf.String())
	}

	partial, _ := symtab.Load(strings.NewReader("<eps> 0\n"))
	if err := chain().WriteText(io.Discard, partial, nil); !errors.Is(err, symtab.ErrNotFound) {
		t.Errorf("missing symbol error = %v", err)
	}
}
