package fst

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
)

// Binary layout of an OpenFst "vector" FST with "standard" (tropical, int32
// label) arcs. All values are little endian.
const (
	magicNumber   int32 = 2125659606
	vectorType          = "vector"
	standardArc         = "standard"
	vectorVersion int32 = 2

	flagISymbols int32 = 0x1
	flagOSymbols int32 = 0x2
	flagAligned  int32 = 0x4

	propExpanded     uint64 = 0x1
	propMutable      uint64 = 0x2
	propILabelSorted uint64 = 0x10000000
	propOLabelSorted uint64 = 0x40000000

	// maxStringLen bounds header strings so a corrupt length cannot
	// trigger a huge allocation.
	maxStringLen = 1 << 16

	// maxCount bounds state and arc counts; ids are int32 on disk.
	maxCount = math.MaxInt32
)

var (
	ErrBadHeader   = errors.New("bad fst header")
	ErrUnsupported = errors.New("unsupported fst")
)

var order = binary.LittleEndian

// Write serializes f in OpenFst binary vector format.
func (f *Fst) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	props := propExpanded | propMutable
	if by, ok := f.Sorted(); ok {
		if by == ILabelSort {
			props |= propILabelSorted
		} else {
			props |= propOLabelSorted
		}
	}

	if err := writeAll(bw, magicNumber); err != nil {
		return err
	}
	if err := writeString(bw, vectorType); err != nil {
		return err
	}
	if err := writeString(bw, standardArc); err != nil {
		return err
	}
	if err := writeAll(bw, vectorVersion, int32(0), props,
		int64(f.start), int64(len(f.states)), int64(f.TotalArcs())); err != nil {
		return err
	}

	for _, st := range f.states {
		if err := writeAll(bw, st.final, int64(len(st.arcs))); err != nil {
			return err
		}
		for _, a := range st.arcs {
			if err := writeAll(bw, int32(a.ILabel), int32(a.OLabel), a.Weight, int32(a.NextState)); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// WriteFile writes f to path, replacing any existing file.
func (f *Fst) WriteFile(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := f.Write(out); err != nil {
		out.Close()
		return errors.Wrap(err, path)
	}
	return out.Close()
}

// Read parses one FST in OpenFst binary vector format. The reader is not
// consumed past the end of the FST, so several can be read in sequence.
func Read(r io.Reader) (*Fst, error) {
	var magic int32
	if err := binary.Read(r, order, &magic); err != nil {
		return nil, errors.Wrap(err, "read magic")
	}
	if magic != magicNumber {
		return nil, errors.Wrapf(ErrBadHeader, "magic %d", magic)
	}
	fstType, err := readString(r)
	if err != nil {
		return nil, err
	}
	arcType, err := readString(r)
	if err != nil {
		return nil, err
	}
	if fstType != vectorType || arcType != standardArc {
		return nil, errors.Wrapf(ErrUnsupported, "type %s/%s", fstType, arcType)
	}

	var hdr struct {
		Version    int32
		Flags      int32
		Properties uint64
		Start      int64
		NumStates  int64
		NumArcs    int64
	}
	if err := binary.Read(r, order, &hdr); err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	if hdr.Version != vectorVersion {
		return nil, errors.Wrapf(ErrUnsupported, "version %d", hdr.Version)
	}
	if hdr.Flags&(flagISymbols|flagOSymbols|flagAligned) != 0 {
		return nil, errors.Wrapf(ErrUnsupported, "header flags %#x", hdr.Flags)
	}
	if hdr.NumStates < 0 || hdr.NumStates > maxCount || hdr.NumArcs < 0 || hdr.NumArcs > maxCount {
		return nil, errors.Wrapf(ErrBadHeader, "%d states, %d arcs", hdr.NumStates, hdr.NumArcs)
	}
	if hdr.Start < NoState || hdr.Start >= hdr.NumStates {
		return nil, errors.Wrapf(ErrBadHeader, "start %d, %d states", hdr.Start, hdr.NumStates)
	}

	// Counts come from the file, so storage grows only as records are read.
	f := New()
	var arcTotal int64
	for s := int64(0); s < hdr.NumStates; s++ {
		var stHdr struct {
			Final   float32
			NumArcs int64
		}
		if err := binary.Read(r, order, &stHdr); err != nil {
			return nil, errors.Wrapf(err, "read state %d", s)
		}
		if stHdr.NumArcs < 0 || arcTotal+stHdr.NumArcs > hdr.NumArcs {
			return nil, errors.Wrapf(ErrBadHeader, "state %d: %d arcs", s, stHdr.NumArcs)
		}
		arcTotal += stHdr.NumArcs
		st := state{final: stHdr.Final}
		for i := int64(0); i < stHdr.NumArcs; i++ {
			var a struct {
				ILabel, OLabel int32
				Weight         float32
				NextState      int32
			}
			if err := binary.Read(r, order, &a); err != nil {
				return nil, errors.Wrapf(err, "read arc %d of state %d", i, s)
			}
			if a.NextState < 0 || int64(a.NextState) >= hdr.NumStates {
				return nil, errors.Wrapf(ErrBadHeader, "state %d: arc to %d", s, a.NextState)
			}
			st.arcs = append(st.arcs, Arc{ILabel: int(a.ILabel), OLabel: int(a.OLabel), Weight: a.Weight, NextState: int(a.NextState)})
		}
		f.states = append(f.states, st)
	}
	if arcTotal != hdr.NumArcs {
		return nil, errors.Wrapf(ErrBadHeader, "header says %d arcs, read %d", hdr.NumArcs, arcTotal)
	}
	f.start = int(hdr.Start)
	switch {
	case hdr.Properties&propOLabelSorted != 0:
		f.sorted, f.isSorted = OLabelSort, true
	case hdr.Properties&propILabelSorted != 0:
		f.sorted, f.isSorted = ILabelSort, true
	}
	return f, nil
}

// ReadFile reads a single FST from path.
func ReadFile(path string) (*Fst, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	f, err := Read(bufio.NewReader(in))
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return f, nil
}

func writeAll(w io.Writer, vals ...any) error {
	for _, v := range vals {
		if err := binary.Write(w, order, v); err != nil {
			return err
		}
	}
	return nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, order, int32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n int32
	if err := binary.Read(r, order, &n); err != nil {
		return "", errors.Wrap(err, "read string length")
	}
	if n < 0 || n > maxStringLen {
		return "", errors.Wrapf(ErrBadHeader, "string length %d", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", errors.Wrap(err, "read string")
	}
	return string(buf), nil
}

// isInf reports whether w is the tropical zero.
func isInf(w float32) bool {
	return math.IsInf(float64(w), 1)
}
