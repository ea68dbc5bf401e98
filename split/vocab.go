package split

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Vocab is the set of known words.
type Vocab map[string]bool

// HasOOV reports whether any of words is missing from v.
func (v Vocab) HasOOV(words []string) bool {
	for _, w := range words {
		if !v[w] {
			return true
		}
	}
	return false
}

// LoadVocab reads one word per line; surrounding whitespace is trimmed.
func LoadVocab(r io.Reader) (Vocab, error) {
	v := make(Vocab)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		w := strings.TrimSpace(scanner.Text())
		if w == "" {
			continue
		}
		v[w] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return v, nil
}

// LoadARPAVocab collects the unigram words of an ARPA language model.
func LoadARPAVocab(r io.Reader) (Vocab, error) {
	v := make(Vocab)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	inUnigrams := false
	found := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "\\") {
			if inUnigrams {
				break
			}
			inUnigrams = line == "\\1-grams:"
			found = found || inUnigrams
			continue
		}
		if !inUnigrams || line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, errors.Wrapf(ErrMalformed, "unigram line %q", line)
		}
		v[fields[1]] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Wrap(ErrMalformed, "no \\1-grams: section")
	}
	return v, nil
}

// LoadVocabFile loads a word list, or the unigrams of an ARPA model when
// path ends in .arpa.
func LoadVocabFile(path string) (Vocab, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var v Vocab
	if strings.HasSuffix(path, ".arpa") {
		v, err = LoadARPAVocab(f)
	} else {
		v, err = LoadVocab(f)
	}
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return v, nil
}
