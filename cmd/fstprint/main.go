package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ieee0824/oovfst/fst"
	"github.com/ieee0824/oovfst/symtab"
)

func main() {
	isymPath := flag.String("isyms", "", "input symbol table for printing labels as symbols")
	osymPath := flag.String("osyms", "", "output symbol table for printing labels as symbols")
	key := flag.String("key", "", "print only the entry with this key")
	single := flag.Bool("fst", false, "input is a single FST file (such as createlfst output), not an archive")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: fstprint [options] <in.ark | in.fst>")
		fmt.Fprintln(os.Stderr, "  Prints archive entries in AT&T text format, each preceded by its key.")
		fmt.Fprintln(os.Stderr, "  With -fst the input is one FST and is printed without a key line.")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	isyms, err := loadOptional(*isymPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading -isyms: %v\n", err)
		os.Exit(1)
	}
	osyms, err := loadOptional(*osymPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading -osyms: %v\n", err)
		os.Exit(1)
	}

	w := bufio.NewWriter(os.Stdout)
	if *single {
		err = printFst(w, flag.Arg(0), isyms, osyms)
	} else {
		err = printArchive(w, flag.Arg(0), *key, isyms, osyms)
	}
	if ferr := w.Flush(); err == nil {
		err = ferr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func loadOptional(path string) (*symtab.Table, error) {
	if path == "" {
		return nil, nil
	}
	return symtab.LoadFile(path)
}

func printFst(w io.Writer, path string, isyms, osyms *symtab.Table) error {
	f, err := fst.ReadFile(path)
	if err != nil {
		return err
	}
	return f.WriteText(w, isyms, osyms)
}

// printArchive streams the archive so large files are never held whole.
func printArchive(w io.Writer, path, key string, isyms, osyms *symtab.Table) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	ar := fst.NewArchiveReader(in)
	found := false
	for {
		e, err := ar.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if key != "" && e.Key != key {
			continue
		}
		found = true
		fmt.Fprintln(w, e.Key)
		if err := e.Fst.WriteText(w, isyms, osyms); err != nil {
			return fmt.Errorf("entry %s: %w", e.Key, err)
		}
		fmt.Fprintln(w)
	}
	if key != "" && !found {
		return fmt.Errorf("key %s not found in %s", key, path)
	}
	return nil
}
