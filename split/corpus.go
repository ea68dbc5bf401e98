// Package split partitions a Kaldi data directory into train and test lists
// whose test side holds only out-of-vocabulary utterances from clusters
// (speakers or conversations) that do not occur in train.
package split

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrMalformed        = errors.New("malformed line")
	ErrUnknownUtterance = errors.New("utterance has no cluster")
)

// Utterance is one line of a Kaldi text file.
type Utterance struct {
	ID    string
	Words []string
}

// Corpus holds the parts of a data directory the splitter needs.
type Corpus struct {
	Utts    []Utterance       // text order
	Cluster map[string]string // utterance -> cluster
}

// LoadText reads "utt word1 word2 ..." lines. Utterance ids must be
// unique; a blank line is malformed.
func LoadText(r io.Reader) ([]Utterance, error) {
	var utts []Utterance
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			return nil, errors.Wrapf(ErrMalformed, "text line %d: blank", lineNum)
		}
		if seen[fields[0]] {
			return nil, errors.Wrapf(ErrMalformed, "text line %d: duplicate utterance %s", lineNum, fields[0])
		}
		seen[fields[0]] = true
		utts = append(utts, Utterance{ID: fields[0], Words: fields[1:]})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return utts, nil
}

// LoadUtt2Spk reads "utt cluster" lines into an utterance->cluster map.
func LoadUtt2Spk(r io.Reader) (map[string]string, error) {
	cluster := make(map[string]string)
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			return nil, errors.Wrapf(ErrMalformed, "utt2spk line %d: expected 2 fields, got %d", lineNum, len(fields))
		}
		utt, cid := fields[0], fields[1]
		if prev, ok := cluster[utt]; ok {
			return nil, errors.Wrapf(ErrMalformed, "utt2spk line %d: %s already mapped to %s", lineNum, utt, prev)
		}
		cluster[utt] = cid
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cluster, nil
}

// LoadCorpus reads dir/text and dir/utt2spk.
func LoadCorpus(dir string) (*Corpus, error) {
	textPath := filepath.Join(dir, "text")
	tf, err := os.Open(textPath)
	if err != nil {
		return nil, err
	}
	utts, err := LoadText(tf)
	tf.Close()
	if err != nil {
		return nil, errors.Wrap(err, textPath)
	}

	spkPath := filepath.Join(dir, "utt2spk")
	sf, err := os.Open(spkPath)
	if err != nil {
		return nil, err
	}
	cluster, err := LoadUtt2Spk(sf)
	sf.Close()
	if err != nil {
		return nil, errors.Wrap(err, spkPath)
	}

	return &Corpus{Utts: utts, Cluster: cluster}, nil
}

// WriteList writes one id per line to path.
func WriteList(path string, ids []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, id := range ids {
		w.WriteString(id)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return errors.Wrap(err, path)
	}
	return f.Close()
}
