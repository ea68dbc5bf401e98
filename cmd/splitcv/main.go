package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/ieee0824/oovfst/internal/config"
	"github.com/ieee0824/oovfst/split"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (optional)")
	minTest := flag.Int("min-test", 0, "target test set size (0 = use config, default 1000)")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: splitcv [options] <vocab> <data-dir> <test.list> <train.list>")
		fmt.Fprintln(os.Stderr, "  Builds a test set of OOV utterances whose speaker never occurs in train.")
		fmt.Fprintln(os.Stderr, "  <vocab> is a word list, or an ARPA model when it ends in .arpa.")
		fmt.Fprintln(os.Stderr, "  <data-dir> is a Kaldi data directory with text and utt2spk.")
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
		if *minTest > 0 {
			cfg.Split.MinTest = *minTest
		}
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger(os.Stderr)

	if err := run(cfg, logger, flag.Arg(0), flag.Arg(1), flag.Arg(2), flag.Arg(3)); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, vocabPath, dataDir, testPath, trainPath string) error {
	vocab, err := split.LoadVocabFile(vocabPath)
	if err != nil {
		return fmt.Errorf("loading vocabulary: %w", err)
	}
	corpus, err := split.LoadCorpus(dataDir)
	if err != nil {
		return fmt.Errorf("loading data directory: %w", err)
	}

	res, err := split.Split(corpus, vocab, cfg.SplitOptions())
	if err != nil {
		return err
	}
	logger.Info("utterances classified",
		"oov", res.NumOOV, "other", len(corpus.Utts)-res.NumOOV, "initial_test", res.InitialTest)
	if len(res.Removed) > 0 {
		logger.Info("clusters removed from train", "count", len(res.Removed))
		logger.Debug("removed clusters", "clusters", res.Removed)
	}

	if err := split.WriteList(testPath, res.Test); err != nil {
		return err
	}
	if err := split.WriteList(trainPath, res.Train); err != nil {
		return err
	}
	logger.Info("split written", "test", len(res.Test), "train", len(res.Train), "dropped", len(res.Dropped))
	return nil
}
