package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/ieee0824/oovfst/internal/config"
	"github.com/ieee0824/oovfst/rewrite"
	"github.com/ieee0824/oovfst/symtab"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (optional)")
	noExpand := flag.Bool("noexpand", false, "skip compound label expansion; only add boundary arcs")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: expandfsts [options] <in.ark> <compounds.txt> <syms.txt> <out.ark>")
		fmt.Fprintln(os.Stderr, "  Expands compound A|B output labels into two arcs, appends a boundary arc")
		fmt.Fprintln(os.Stderr, "  to every final state and sorts arcs by output label. out.ark is replaced.")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 4 {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger(os.Stderr)

	if err := run(cfg, logger, *noExpand, flag.Arg(0), flag.Arg(1), flag.Arg(2), flag.Arg(3)); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, noExpand bool, inPath, compoundsPath, symPath, outPath string) error {
	syms, err := symtab.LoadFile(symPath)
	if err != nil {
		return fmt.Errorf("loading symbols: %w", err)
	}

	var compounds map[string]bool
	if !noExpand {
		compounds, err = rewrite.LoadCompoundsFile(compoundsPath)
		if err != nil {
			return fmt.Errorf("loading compounds: %w", err)
		}
	}
	logger.Debug("inputs loaded", "symbols", syms.Len(), "compounds", len(compounds), "noexpand", noExpand)

	p, err := rewrite.NewPipeline(syms, rewrite.Options{
		Compounds: compounds,
		Separator: cfg.Expand.Separator,
		Boundary:  cfg.Expand.BoundarySymbol,
	})
	if err != nil {
		return err
	}
	n, err := p.RewriteArchive(inPath, outPath)
	if err != nil {
		return err
	}
	logger.Info("archive written", "path", outPath, "entries", n)
	return nil
}
