// Package symtab reads OpenFst-style text symbol tables.
package symtab

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Epsilon is the reserved "no label" id.
const Epsilon = 0

var (
	ErrNotFound  = errors.New("symbol not found")
	ErrMalformed = errors.New("malformed symbol table line")
	ErrDuplicate = errors.New("duplicate symbol table entry")
)

// Table maps symbols to ids and back.
type Table struct {
	ids     map[string]int
	symbols map[int]string
}

// New creates an empty table.
func New() *Table {
	return &Table{
		ids:     make(map[string]int),
		symbols: make(map[int]string),
	}
}

// Add registers a symbol/id pair. Both the symbol and the id must be new.
func (t *Table) Add(symbol string, id int) error {
	if id < 0 {
		return errors.Wrapf(ErrMalformed, "negative id %d for %q", id, symbol)
	}
	if prev, ok := t.ids[symbol]; ok {
		return errors.Wrapf(ErrDuplicate, "symbol %q already has id %d", symbol, prev)
	}
	if prev, ok := t.symbols[id]; ok {
		return errors.Wrapf(ErrDuplicate, "id %d already assigned to %q", id, prev)
	}
	t.ids[symbol] = id
	t.symbols[id] = symbol
	return nil
}

// Find returns the id of symbol.
func (t *Table) Find(symbol string) (int, bool) {
	id, ok := t.ids[symbol]
	return id, ok
}

// Symbol returns the symbol registered for id.
func (t *Table) Symbol(id int) (string, bool) {
	s, ok := t.symbols[id]
	return s, ok
}

// ID is Find with an ErrNotFound error for a missing symbol.
func (t *Table) ID(symbol string) (int, error) {
	id, ok := t.ids[symbol]
	if !ok {
		return 0, errors.Wrapf(ErrNotFound, "symbol %q", symbol)
	}
	return id, nil
}

// Lookup is Symbol with an ErrNotFound error for a missing id.
func (t *Table) Lookup(id int) (string, error) {
	s, ok := t.symbols[id]
	if !ok {
		return "", errors.Wrapf(ErrNotFound, "id %d", id)
	}
	return s, nil
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.ids)
}

// Load reads a symbol table. Format: symbol<whitespace>id, one pair per line.
func Load(r io.Reader) (*Table, error) {
	t := New()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, errors.Wrapf(ErrMalformed, "line %d: expected 2 fields, got %d", lineNum, len(fields))
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, errors.Wrapf(ErrMalformed, "line %d: bad id %q", lineNum, fields[1])
		}
		if err := t.Add(fields[0], id); err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNum)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadFile is a convenience wrapper that opens a file path.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := Load(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return t, nil
}
