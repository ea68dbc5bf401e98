package lexicon

import (
	"strings"

	"github.com/ieee0824/oovfst/fst"
	"github.com/ieee0824/oovfst/symtab"
	"github.com/pkg/errors"
)

// Suffixes mark the position of a phone inside a word.
type Suffixes struct {
	Begin    string
	Internal string
	End      string
}

// DefaultSuffixes returns the Kaldi word-position suffixes _B, _I, _E.
func DefaultSuffixes() Suffixes {
	return Suffixes{Begin: "_B", Internal: "_I", End: "_E"}
}

// SkipReason says why an entry contributed no path.
type SkipReason int

const (
	SkipTooShort  SkipReason = iota // one phone or none
	SkipDuplicate                   // phone sequence already used by an earlier entry
)

func (r SkipReason) String() string {
	switch r {
	case SkipTooShort:
		return "too-short"
	case SkipDuplicate:
		return "duplicate"
	}
	return "unknown"
}

// Skipped records an entry left out of the transducer.
type Skipped struct {
	Word   string
	Reason SkipReason
}

// Builder compiles lexicon entries into a transducer from position-marked
// phones to words.
type Builder struct {
	phones *symtab.Table
	words  *symtab.Table
	suffix Suffixes
}

// NewBuilder creates a builder. phones holds position-marked phone symbols,
// words the output vocabulary.
func NewBuilder(phones, words *symtab.Table, suffix Suffixes) *Builder {
	return &Builder{phones: phones, words: words, suffix: suffix}
}

// Build returns a transducer with start state 0 and a single final state 1.
// Every kept entry adds one path from start to final:
//
//	p1_B:word  p2_I:<eps> ... pn_E:<eps>
//
// Entries with fewer than two phones, and entries repeating an earlier
// phone sequence, are skipped and returned in file order.
func (b *Builder) Build(entries []Entry) (*fst.Fst, []Skipped, error) {
	f := fst.New()
	start := f.AddState()
	end := f.AddState()
	f.SetStart(start)
	f.SetFinal(end, 0)

	seen := make(map[string]bool)
	var skipped []Skipped

	for _, e := range entries {
		if len(e.Phones) <= 1 {
			skipped = append(skipped, Skipped{Word: e.Word, Reason: SkipTooShort})
			continue
		}
		key := strings.Join(e.Phones, " ")
		if seen[key] {
			skipped = append(skipped, Skipped{Word: e.Word, Reason: SkipDuplicate})
			continue
		}
		seen[key] = true

		if err := b.addPath(f, start, end, e); err != nil {
			return nil, nil, errors.Wrapf(err, "word %q", e.Word)
		}
	}
	return f, skipped, nil
}

func (b *Builder) addPath(f *fst.Fst, start, end int, e Entry) error {
	olabel, err := b.words.ID(e.Word)
	if err != nil {
		return err
	}
	last := len(e.Phones) - 1
	cur := start
	for i, phone := range e.Phones {
		suffix := b.suffix.Internal
		switch i {
		case 0:
			suffix = b.suffix.Begin
		case last:
			suffix = b.suffix.End
		}
		ilabel, err := b.phones.ID(phone + suffix)
		if err != nil {
			return err
		}

		next := end
		if i != last {
			next = f.AddState()
		}
		f.AddArc(cur, fst.Arc{ILabel: ilabel, OLabel: olabel, NextState: next})
		olabel = symtab.Epsilon
		cur = next
	}
	return nil
}
