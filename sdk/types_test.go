package sdk

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSettingValueDecode(t *testing.T) {
	tests := []struct {
		in   string
		want SettingValue
	}{
		{`{"type":"boolean","data":true}`, SettingValue{Type: SettingBoolean, Data: true}},
		{`{"type":"string","data":"My Shop"}`, SettingValue{Type: SettingString, Data: "My Shop"}},
		{`{"type":"int","data":-4}`, SettingValue{Type: SettingInt, Data: int64(-4)}},
		{`{"type":"unsigned_int","data":2}`, SettingValue{Type: SettingUnsignedInt, Data: uint64(2)}},
		{`{"type":"float","data":0.5}`, SettingValue{Type: SettingFloat, Data: 0.5}},
		{`{"type":"decimal","data":"12.3400"}`, SettingValue{Type: SettingDecimal, Data: "12.3400"}},
		{`{"type":"text_vec","data":["a","b"]}`, SettingValue{Type: SettingTextVec, Data: []string{"a", "b"}}},
	}
	for _, tt := range tests {
		var got SettingValue
		if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
			t.Fatalf("%s: %v", tt.in, err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Fatalf("%s (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestSettingValueRejectsMismatch(t *testing.T) {
	for _, in := range []string{
		`{"type":"boolean","data":"yes"}`,
		`{"type":"unsigned_int","data":-1}`,
		`{"type":"int","data":1.5}`,
		`{"type":"colour","data":"red"}`,
	} {
		var v SettingValue
		if err := json.Unmarshal([]byte(in), &v); err == nil {
			t.Fatalf("%s: expected error", in)
		}
	}
}

func TestSettingRoundTrip(t *testing.T) {
	desc := "Shown in the header"
	in := Setting{Key: "business_name", LongName: "Business name", Description: &desc, Value: SettingValue{Type: SettingString, Data: "Acme"}}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Setting
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if s, ok := out.Value.Text(); !ok || s != "Acme" {
		t.Fatalf("Text()=%q %v", s, ok)
	}
}

func TestAccessors(t *testing.T) {
	v := SettingValue{Type: SettingUnsignedInt, Data: uint64(7)}
	if n, ok := v.Int(); !ok || n != 7 {
		t.Fatalf("Int()=%d %v", n, ok)
	}
	if f, ok := v.Float(); !ok || f != 7 {
		t.Fatalf("Float()=%v %v", f, ok)
	}
	if _, ok := v.Bool(); ok {
		t.Fatalf("Bool() should fail for unsigned_int")
	}
	if !(AuthInfo{Permissions: []string{"settings"}}).HasPermission("settings") {
		t.Fatalf("HasPermission")
	}
}
