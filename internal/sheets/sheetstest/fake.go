// Package sheetstest provides an in-memory sheets.Backend for tests.
package sheetstest

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"sync"

	"github.com/MrSnakeDoc/disco/internal/sheets"
)

// ErrBadRange mimics the API rejecting a locator whose tab does not exist.
var ErrBadRange = errors.New("unable to parse range")

var rowNumber = regexp.MustCompile(`A([0-9]+):[A-Z]+[0-9]+$`)

// Backend stores tabs as rows of cell text. The tab named "" is the first
// sheet and answers bare column locators such as "A:L".
type Backend struct {
	mu     sync.Mutex
	tabs   map[string][][]string
	order  []string
	failOn map[string]error

	Gets    int
	Appends int
	Updates int
	Deletes int
}

var _ sheets.Backend = (*Backend)(nil)

// New returns an empty backend.
func New() *Backend {
	return &Backend{
		tabs:   map[string][][]string{},
		failOn: map[string]error{},
	}
}

// SetTab creates or replaces a tab. The first tab created is also the
// default sheet for bare locators.
func (b *Backend) SetTab(name string, rows [][]string) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.tabs[name]; !ok {
		b.order = append(b.order, name)
	}
	b.tabs[name] = cloneRows(rows)
	return b
}

// Tab returns a copy of a tab's rows.
func (b *Backend) Tab(name string) [][]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneRows(b.tabs[b.resolve(name)])
}

// FailOn makes every call addressing locator return err.
func (b *Backend) FailOn(locator string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failOn[locator] = err
}

func (b *Backend) Get(_ context.Context, rng string) ([][]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Gets++

	if err := b.failOn[rng]; err != nil {
		return nil, err
	}
	rows, ok := b.tabs[b.resolve(sheets.SheetName(rng))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBadRange, rng)
	}
	return cloneRows(rows), nil
}

func (b *Backend) Append(_ context.Context, rng string, row []any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Appends++

	if err := b.failOn[rng]; err != nil {
		return err
	}
	name := b.resolve(sheets.SheetName(rng))
	if _, ok := b.tabs[name]; !ok {
		return fmt.Errorf("%w: %s", ErrBadRange, rng)
	}
	b.tabs[name] = append(b.tabs[name], stringify(row))
	return nil
}

func (b *Backend) Update(_ context.Context, rng string, row []any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Updates++

	if err := b.failOn[rng]; err != nil {
		return err
	}
	name := b.resolve(sheets.SheetName(rng))
	rows, ok := b.tabs[name]
	m := rowNumber.FindStringSubmatch(rng)
	if !ok || m == nil {
		return fmt.Errorf("%w: %s", ErrBadRange, rng)
	}
	n, _ := strconv.Atoi(m[1])
	for len(rows) < n {
		rows = append(rows, nil)
	}
	rows[n-1] = stringify(row)
	b.tabs[name] = rows
	return nil
}

func (b *Backend) DeleteRow(_ context.Context, sheet string, rowIndex int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Deletes++

	name := b.resolve(sheet)
	rows, ok := b.tabs[name]
	if !ok {
		return fmt.Errorf("sheet %q not found", sheet)
	}
	if rowIndex < 0 || rowIndex >= len(rows) {
		return fmt.Errorf("row %d out of range", rowIndex)
	}
	b.tabs[name] = append(rows[:rowIndex], rows[rowIndex+1:]...)
	return nil
}

// Calls returns the total number of backend calls made so far.
func (b *Backend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Gets + b.Appends + b.Updates + b.Deletes
}

// GetCount returns the number of reads made so far.
func (b *Backend) GetCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Gets
}

// resolve maps "" to the first tab. Caller holds mu.
func (b *Backend) resolve(name string) string {
	if name == "" && len(b.order) > 0 {
		return b.order[0]
	}
	return name
}

func stringify(row []any) []string {
	out := make([]string, len(row))
	for i, c := range row {
		switch v := c.(type) {
		case float64:
			out[i] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}

func cloneRows(rows [][]string) [][]string {
	if rows == nil {
		return nil
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}
