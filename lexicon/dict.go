// Package lexicon reads Kaldi-style pronunciation lexicons and compiles them
// into lexicon transducers.
package lexicon

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// ErrMalformed is returned for a lexicon line without a word.
var ErrMalformed = errors.New("malformed lexicon line")

// Entry represents a single pronunciation for a word.
type Entry struct {
	Word   string
	Phones []string
}

// Load reads a pronunciation lexicon in file order.
// Format: word phone1 phone2 ..., whitespace separated. Every line is an
// entry; a blank line is malformed. A word without phones is kept so that
// the builder can report it.
func Load(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			return nil, errors.Wrapf(ErrMalformed, "line %d: no word", lineNum)
		}
		entries = append(entries, Entry{Word: fields[0], Phones: fields[1:]})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// LoadFile is a convenience wrapper that opens a file path.
func LoadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	entries, err := Load(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return entries, nil
}
