package column

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeTaggedTypes(t *testing.T) {
	raw := `[
		{"api_name":"name","display_name":"Name","current_sort":null,"edit":true,"readonly":false,"searchable":true,
		 "type":{"type":"string","data":{"regex":null,"length_range":[1,64]}}},
		{"api_name":"stock","display_name":"Stock","current_sort":"Asc","edit":true,"readonly":false,"searchable":false,
		 "type":{"type":"number","data":{"range":[0,null],"integer":true,"step":1}}},
		{"api_name":"notes","display_name":null,"current_sort":null,"edit":true,"readonly":false,"searchable":false,
		 "type":{"type":"textarea","data":{"regex":null,"length_range":[0,null],"resize":"both"}}},
		{"api_name":"created","display_name":"Created","current_sort":null,"edit":false,"readonly":false,"searchable":false,
		 "type":{"type":"datetime","data":{"accuracy":"minute","format":"dd/mm/yy hh:MM tt"}}},
		{"api_name":"kind","display_name":"Kind","current_sort":null,"edit":true,"readonly":false,"searchable":false,
		 "type":{"type":"select","data":{"options":["a","b"]}}},
		{"api_name":"paid","display_name":"Paid","current_sort":null,"edit":true,"readonly":false,"searchable":false,
		 "type":{"type":"checkbox"}}
	]`
	var cols []Column
	if err := json.Unmarshal([]byte(raw), &cols); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(cols) != 6 {
		t.Fatalf("len=%d", len(cols))
	}
	want := []ValueType{
		String{Length: LengthRange{Min: 1, Max: Ptr(64)}},
		Number{Min: Ptr(0.0), Integer: true, Step: 1},
		Textarea{Length: LengthRange{}, Resize: ResizeBoth},
		DateTime{Accuracy: AccuracyMinute, Format: "dd/mm/yy hh:MM tt"},
		Select{Options: []any{"a", "b"}},
		Checkbox{},
	}
	for i, c := range cols {
		if diff := cmp.Diff(want[i], c.Type); diff != "" {
			t.Fatalf("column %s type mismatch (-want +got):\n%s", c.APIName, diff)
		}
	}
	if cols[2].Visible() {
		t.Fatalf("null display_name must hide the column")
	}
	if cols[1].CurrentSort == nil || *cols[1].CurrentSort != Asc {
		t.Fatalf("sort not decoded: %v", cols[1].CurrentSort)
	}
}

func TestDecodeUnknownTag(t *testing.T) {
	var c Column
	err := json.Unmarshal([]byte(`{"api_name":"x","type":{"type":"colour"}}`), &c)
	if !errors.Is(err, ErrInvalidType) {
		t.Fatalf("want ErrInvalidType, got %v", err)
	}
}

func TestColumnJSONKeepsDisplayMap(t *testing.T) {
	c := Column{APIName: "status", DisplayName: Ptr("Status"), Type: DisplayOnly{}}.
		WithDisplayMap(map[string]string{"1": "Open", "2": "Closed"})
	b, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Column
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.DisplayMapFn == nil {
		t.Fatalf("display map lost: %s", b)
	}
	if got := back.DisplayMapFn(2); got != "Closed" {
		t.Fatalf("label=%q", got)
	}
	if got := back.DisplayMapFn(9); got != "9" {
		t.Fatalf("fallback=%q", got)
	}
}

func TestCheck(t *testing.T) {
	label := func(any) string { return "" }
	tests := []struct {
		name string
		cols []Column
		want error
	}{
		{"ok", []Column{{APIName: "a", Type: String{}}, {APIName: "b", Type: DisplayOnly{}, DisplayMapFn: label}}, nil},
		{"duplicate", []Column{{APIName: "a", Type: String{}}, {APIName: "a", Type: Checkbox{}}}, ErrDuplicateColumn},
		{"display only edit", []Column{{APIName: "a", Type: DisplayOnly{}, DisplayMapFn: label, Edit: true}}, ErrEditNotPermitted},
		{"display only without fn", []Column{{APIName: "a", Type: DisplayOnly{}}}, ErrMissingDisplayMap},
		{"two sorts", []Column{{APIName: "a", Type: String{}, CurrentSort: Ptr(Asc)}, {APIName: "b", Type: String{}, CurrentSort: Ptr(Desc)}}, ErrMultipleSorts},
		{"bad regex", []Column{{APIName: "a", Type: String{Regex: "("}}}, ErrInvalidType},
		{"inverted length", []Column{{APIName: "a", Type: Textarea{Length: LengthRange{Min: 5, Max: Ptr(1)}}}}, ErrInvalidType},
		{"inverted range", []Column{{APIName: "a", Type: Number{Min: Ptr(10.0), Max: Ptr(1.0)}}}, ErrInvalidType},
		{"empty select", []Column{{APIName: "a", Type: Select{}}}, ErrInvalidType},
		{"missing type", []Column{{APIName: "a"}}, ErrInvalidType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.cols)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRequestName(t *testing.T) {
	c := Column{APIName: "customer"}
	if c.RequestName() != "customer" {
		t.Fatalf("fallback=%s", c.RequestName())
	}
	c.APIRequestName = Ptr("customer_id")
	if c.RequestName() != "customer_id" {
		t.Fatalf("override=%s", c.RequestName())
	}
}
