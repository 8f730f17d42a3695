package column

import (
	"fmt"
	"sync"
)

// Sort is one entry of a list request's sort list.
type Sort struct {
	Column string    `json:"column"`
	Order  SortOrder `json:"order"`
}

// SearchRequest is the body of an entity search request. When NestedAccess is
// set the backend ignores Column and matches the dotted path instead.
type SearchRequest struct {
	Search       string  `json:"search"`
	Column       *string `json:"column"`
	Count        int     `json:"count"`
	NestedAccess *string `json:"nested_access"`
}

// Table coordinates the columns of one rendered table. It owns the sort state
// and guarantees that at most one column is the active sort key.
type Table struct {
	Name string

	mu    sync.RWMutex
	cols  []Column
	index map[string]int
}

// NewTable checks cols and returns a Table owning a copy of them.
func NewTable(name string, cols []Column) (*Table, error) {
	if err := Check(cols); err != nil {
		return nil, err
	}
	t := &Table{Name: name, cols: make([]Column, len(cols)), index: make(map[string]int, len(cols))}
	copy(t.cols, cols)
	for i, c := range t.cols {
		t.index[c.APIName] = i
	}
	return t, nil
}

// Columns returns a snapshot of every column in definition order.
func (t *Table) Columns() []Column {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Column, len(t.cols))
	copy(out, t.cols)
	return out
}

// Column returns the column named apiName.
func (t *Table) Column(apiName string) (Column, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i, ok := t.index[apiName]
	if !ok {
		return Column{}, false
	}
	return t.cols[i], true
}

// Visible returns the columns shown in the table view.
func (t *Table) Visible() []Column {
	return t.filter(Column.Visible)
}

// EditForm returns the columns of the edit form, readonly ones included.
func (t *Table) EditForm() []Column {
	return t.filter(func(c Column) bool { return c.Edit })
}

// Searchable returns the columns that accept search requests.
func (t *Table) Searchable() []Column {
	return t.filter(func(c Column) bool { return c.Searchable })
}

func (t *Table) filter(keep func(Column) bool) []Column {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []Column
	for _, c := range t.cols {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// ToggleSort cycles the sort of apiName through none, Asc, Desc and back to
// none. Every other column loses its sort.
func (t *Table) ToggleSort(apiName string) (*SortOrder, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i, ok := t.index[apiName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, apiName)
	}
	var next *SortOrder
	switch cur := t.cols[i].CurrentSort; {
	case cur == nil:
		next = Ptr(Asc)
	case *cur == Asc:
		next = Ptr(Desc)
	}
	t.setLocked(i, next)
	return next, nil
}

// SetSort makes apiName the sort key with the given order; nil clears it.
func (t *Table) SetSort(apiName string, order *SortOrder) error {
	if order != nil && *order != Asc && *order != Desc {
		return fmt.Errorf("%w: sort %q", ErrInvalidType, *order)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	i, ok := t.index[apiName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, apiName)
	}
	t.setLocked(i, order)
	return nil
}

func (t *Table) setLocked(i int, order *SortOrder) {
	for j := range t.cols {
		t.cols[j].CurrentSort = nil
	}
	if order != nil {
		o := *order
		t.cols[i].CurrentSort = &o
	}
}

// Sort returns the active sort column and order, if any.
func (t *Table) Sort() (string, SortOrder, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, c := range t.cols {
		if c.CurrentSort != nil {
			return c.APIName, *c.CurrentSort, true
		}
	}
	return "", "", false
}

// Sorts returns the sort list for a list request, using request names.
func (t *Table) Sorts() []Sort {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := []Sort{}
	for _, c := range t.cols {
		if c.CurrentSort != nil {
			out = append(out, Sort{Column: c.RequestName(), Order: *c.CurrentSort})
		}
	}
	return out
}

// SearchRequest builds a search request matching term against apiName.
func (t *Table) SearchRequest(term string, count int, apiName string) (SearchRequest, error) {
	c, ok := t.Column(apiName)
	if !ok {
		return SearchRequest{}, fmt.Errorf("%w: %s", ErrUnknownColumn, apiName)
	}
	if !c.Searchable {
		return SearchRequest{}, fmt.Errorf("%w: %s", ErrNotSearchable, apiName)
	}
	req := SearchRequest{Search: term, Count: count}
	if c.SearchNested != nil && *c.SearchNested != "" {
		nested := *c.SearchNested
		req.NestedAccess = &nested
		return req, nil
	}
	name := c.RequestName()
	req.Column = &name
	return req, nil
}

// Payload returns the submittable subset of record: keys of non edit columns
// and readonly columns are dropped, as are keys that match no column.
func (t *Table) Payload(record map[string]any) map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]any, len(record))
	for k, v := range record {
		i, ok := t.index[k]
		if !ok || !t.cols[i].Submittable() {
			continue
		}
		out[k] = v
	}
	return out
}
