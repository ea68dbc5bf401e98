package fst

import (
	"bufio"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// ErrBadKey is returned for archive keys that are empty or contain whitespace.
var ErrBadKey = errors.New("bad archive key")

// Entry is one keyed FST of an archive.
type Entry struct {
	Key string
	Fst *Fst
}

// ArchiveReader reads a Kaldi-style archive: a sequence of "key " followed by
// a binary FST. The Kaldi binary marker "\x00B" after the key is accepted.
type ArchiveReader struct {
	r *bufio.Reader
}

// NewArchiveReader wraps r.
func NewArchiveReader(r io.Reader) *ArchiveReader {
	return &ArchiveReader{r: bufio.NewReader(r)}
}

// Next returns the next entry, or io.EOF after the last one.
func (a *ArchiveReader) Next() (Entry, error) {
	key, err := a.readKey()
	if err != nil {
		return Entry{}, err
	}
	sep, err := a.r.ReadByte()
	if err != nil {
		return Entry{}, errors.Wrapf(io.ErrUnexpectedEOF, "entry %s", key)
	}
	if sep != ' ' {
		return Entry{}, errors.Wrapf(ErrBadKey, "entry %s: expected space after key, got %q", key, sep)
	}
	if marker, err := a.r.Peek(2); err == nil && marker[0] == 0 && marker[1] == 'B' {
		a.r.Discard(2)
	}
	f, err := Read(a.r)
	if err != nil {
		return Entry{}, errors.Wrapf(err, "entry %s", key)
	}
	return Entry{Key: key, Fst: f}, nil
}

func (a *ArchiveReader) readKey() (string, error) {
	var sb strings.Builder
	for {
		c, err := a.r.ReadByte()
		if err == io.EOF {
			if sb.Len() == 0 {
				return "", io.EOF
			}
			return "", errors.Wrapf(io.ErrUnexpectedEOF, "key %s", sb.String())
		}
		if err != nil {
			return "", err
		}
		if unicode.IsSpace(rune(c)) {
			if sb.Len() == 0 {
				continue
			}
			return sb.String(), a.r.UnreadByte()
		}
		sb.WriteByte(c)
	}
}

// ReadArchive reads every entry of the archive at path.
func ReadArchive(path string) ([]Entry, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	ar := NewArchiveReader(in)
	var entries []Entry
	for {
		e, err := ar.Next()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, path)
		}
		entries = append(entries, e)
	}
}

// WriteEntry writes one archive entry to w.
func WriteEntry(w io.Writer, key string, f *Fst) error {
	if key == "" || strings.IndexFunc(key, unicode.IsSpace) >= 0 {
		return errors.Wrapf(ErrBadKey, "%q", key)
	}
	if _, err := io.WriteString(w, key+" "); err != nil {
		return err
	}
	return f.Write(w)
}

// AppendArchive appends one entry to the archive at path, creating it if needed.
func AppendArchive(path, key string, f *Fst) error {
	out, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if err := WriteEntry(out, key, f); err != nil {
		out.Close()
		return errors.Wrap(err, path)
	}
	return out.Close()
}
