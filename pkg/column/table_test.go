package column

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := NewTable("customers", []Column{
		{APIName: "id", DisplayName: Ptr("ID"), Type: Number{Integer: true}},
		{APIName: "name", DisplayName: Ptr("Name"), Type: String{}, Edit: true, Searchable: true},
		{APIName: "supplier", DisplayName: Ptr("Supplier"), APIRequestName: Ptr("supplier_id"), Type: String{},
			Edit: true, Searchable: true, SearchNested: Ptr("suppliers.name")},
		{APIName: "created_at", DisplayName: Ptr("Created"), Type: DateTime{}, Edit: true, Readonly: true},
		{APIName: "password", Type: Password{}, Edit: true},
	})
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	return tbl
}

func TestToggleSortKeepsSingleKey(t *testing.T) {
	tbl := newTestTable(t)
	steps := []struct {
		col  string
		want *SortOrder
	}{
		{"name", Ptr(Asc)},
		{"name", Ptr(Desc)},
		{"id", Ptr(Asc)},
		{"id", Ptr(Desc)},
		{"id", nil},
	}
	for _, s := range steps {
		got, err := tbl.ToggleSort(s.col)
		if err != nil {
			t.Fatalf("toggle %s: %v", s.col, err)
		}
		if diff := cmp.Diff(s.want, got); diff != "" {
			t.Fatalf("toggle %s (-want +got):\n%s", s.col, diff)
		}
		n := 0
		for _, c := range tbl.Columns() {
			if c.CurrentSort != nil {
				n++
			}
		}
		if n > 1 {
			t.Fatalf("%d columns sorted after toggling %s", n, s.col)
		}
	}
	if _, _, ok := tbl.Sort(); ok {
		t.Fatalf("expected no sort")
	}
}

func TestSortsUseRequestName(t *testing.T) {
	tbl := newTestTable(t)
	if err := tbl.SetSort("supplier", Ptr(Desc)); err != nil {
		t.Fatalf("set sort: %v", err)
	}
	want := []Sort{{Column: "supplier_id", Order: Desc}}
	if diff := cmp.Diff(want, tbl.Sorts()); diff != "" {
		t.Fatalf("sorts (-want +got):\n%s", diff)
	}
	if _, err := tbl.ToggleSort("missing"); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("want ErrUnknownColumn, got %v", err)
	}
}

func TestSearchRequest(t *testing.T) {
	tbl := newTestTable(t)
	req, err := tbl.SearchRequest("ac", 10, "supplier")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if req.Column != nil || req.NestedAccess == nil || *req.NestedAccess != "suppliers.name" {
		t.Fatalf("nested search not used: %+v", req)
	}
	req, err = tbl.SearchRequest("ac", 10, "name")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if req.Column == nil || *req.Column != "name" || req.NestedAccess != nil {
		t.Fatalf("plain search: %+v", req)
	}
	if _, err := tbl.SearchRequest("ac", 10, "id"); !errors.Is(err, ErrNotSearchable) {
		t.Fatalf("want ErrNotSearchable, got %v", err)
	}
}

func TestPayloadDropsNonEditAndReadonly(t *testing.T) {
	tbl := newTestTable(t)
	got := tbl.Payload(map[string]any{
		"id":         7,
		"name":       "Acme",
		"created_at": "2024-01-01T00:00:00Z",
		"password":   "pw",
		"unknown":    true,
	})
	want := map[string]any{"name": "Acme", "password": "pw"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload (-want +got):\n%s", diff)
	}
}

func TestVisibleAndEditForm(t *testing.T) {
	tbl := newTestTable(t)
	if n := len(tbl.Visible()); n != 4 {
		t.Fatalf("visible=%d", n)
	}
	if n := len(tbl.EditForm()); n != 4 {
		t.Fatalf("edit form=%d", n)
	}
	if n := len(tbl.Searchable()); n != 2 {
		t.Fatalf("searchable=%d", n)
	}
}
