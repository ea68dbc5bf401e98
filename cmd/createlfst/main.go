package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ieee0824/oovfst/internal/config"
	"github.com/ieee0824/oovfst/lexicon"
	"github.com/ieee0824/oovfst/symtab"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (optional)")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: createlfst [options] <lexicon.txt> <phones.txt> <words.txt> <L.fst>")
		fmt.Fprintln(os.Stderr, "  Builds a lexicon transducer from position-marked phones (_B/_I/_E) to words.")
		fmt.Fprintln(os.Stderr, "  Words with one phone or a duplicate pronunciation are skipped and listed on stdout.")
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

	if err := run(cfg, logger, os.Stdout, flag.Arg(0), flag.Arg(1), flag.Arg(2), flag.Arg(3)); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, stdout io.Writer, lexPath, isymPath, osymPath, outPath string) error {
	logger.Info("not including words with phone count <= 1 or duplicate pronunciations")

	phones, err := symtab.LoadFile(isymPath)
	if err != nil {
		return fmt.Errorf("loading input symbols: %w", err)
	}
	words, err := symtab.LoadFile(osymPath)
	if err != nil {
		return fmt.Errorf("loading output symbols: %w", err)
	}
	entries, err := lexicon.LoadFile(lexPath)
	if err != nil {
		return fmt.Errorf("loading lexicon: %w", err)
	}
	logger.Debug("inputs loaded", "entries", len(entries), "phones", phones.Len(), "words", words.Len())

	f, skipped, err := lexicon.NewBuilder(phones, words, cfg.Suffixes()).Build(entries)
	if err != nil {
		return err
	}
	if err := f.WriteFile(outPath); err != nil {
		return err
	}
	logger.Info("lexicon fst written", "path", outPath,
		"states", f.NumStates(), "arcs", f.TotalArcs(), "skipped", len(skipped))

	w := bufio.NewWriter(stdout)
	for _, s := range skipped {
		fmt.Fprintf(w, "%s\t%s\n", s.Word, s.Reason)
	}
	return w.Flush()
}
