package rewrite

import (
	"os"

	"github.com/ieee0824/oovfst/fst"
	"github.com/ieee0824/oovfst/symtab"
	"github.com/pkg/errors"
)

// Options configures a Pipeline. A nil or empty Compounds set disables
// expansion.
type Options struct {
	Compounds map[string]bool
	Separator string
	Boundary  string
}

// Pipeline applies Expand, then AddBoundary, to each transducer.
type Pipeline struct {
	syms      *symtab.Table
	compounds map[string]bool
	sep       string
	boundary  int
}

// NewPipeline resolves the boundary symbol in syms.
func NewPipeline(syms *symtab.Table, opts Options) (*Pipeline, error) {
	if opts.Separator == "" {
		opts.Separator = DefaultSeparator
	}
	if opts.Boundary == "" {
		opts.Boundary = DefaultBoundary
	}
	boundary, err := syms.ID(opts.Boundary)
	if err != nil {
		return nil, errors.Wrap(err, "boundary symbol")
	}
	return &Pipeline{
		syms:      syms,
		compounds: opts.Compounds,
		sep:       opts.Separator,
		boundary:  boundary,
	}, nil
}

// Apply rewrites f in place.
func (p *Pipeline) Apply(f *fst.Fst) error {
	if err := Expand(f, p.syms, p.compounds, p.sep); err != nil {
		return err
	}
	AddBoundary(f, p.boundary)
	return nil
}

// RewriteArchive reads every entry of the archive at in, applies the
// pipeline and writes the results to out, replacing it. Nothing is written
// unless every entry succeeds. It returns the number of entries written.
func (p *Pipeline) RewriteArchive(in, out string) (int, error) {
	entries, err := fst.ReadArchive(in)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		if err := p.Apply(e.Fst); err != nil {
			return 0, errors.Wrapf(err, "entry %s", e.Key)
		}
	}

	if err := os.Remove(out); err != nil && !os.IsNotExist(err) {
		return 0, err
	}
	for i, e := range entries {
		if err := fst.AppendArchive(out, e.Key, e.Fst); err != nil {
			return i, err
		}
	}
	return len(entries), nil
}
