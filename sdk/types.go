package sdk

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
)

// AuthInfo is the authenticated principal returned by auth/status.
type AuthInfo struct {
	Username    string   `json:"username"`
	Permissions []string `json:"permissions"`
}

// HasPermission reports whether the principal holds p.
func (a AuthInfo) HasPermission(p string) bool {
	return slices.Contains(a.Permissions, p)
}

// Setting is a single application setting.
type Setting struct {
	Key         string       `json:"key"`
	LongName    string       `json:"long_name"`
	Description *string      `json:"description"`
	Value       SettingValue `json:"value"`
}

// SettingType names the payload kind of a SettingValue.
type SettingType string

const (
	SettingBoolean        SettingType = "boolean"
	SettingString         SettingType = "string"
	SettingInt            SettingType = "int"
	SettingFloat          SettingType = "float"
	SettingUnsignedInt    SettingType = "unsigned_int"
	SettingDecimal        SettingType = "decimal"
	SettingImageBase64URI SettingType = "image_base64_uri"
	SettingTextVec        SettingType = "text_vec"
)

// SettingValue is the tagged value of a setting. After decoding, Data holds a
// bool, string, int64, float64, uint64 or []string depending on Type.
// Decimal and image payloads are strings.
type SettingValue struct {
	Type SettingType
	Data any
}

type settingWire struct {
	Type SettingType     `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (v SettingValue) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(v.Data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(settingWire{Type: v.Type, Data: data})
}

func (v *SettingValue) UnmarshalJSON(b []byte) error {
	var w settingWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	data, err := decodeSettingData(w.Type, w.Data)
	if err != nil {
		return err
	}
	v.Type, v.Data = w.Type, data
	return nil
}

func decodeSettingData(t SettingType, raw json.RawMessage) (any, error) {
	var err error
	switch t {
	case SettingBoolean:
		var b bool
		err = json.Unmarshal(raw, &b)
		if err == nil {
			return b, nil
		}
	case SettingString, SettingDecimal, SettingImageBase64URI:
		var s string
		err = json.Unmarshal(raw, &s)
		if err == nil {
			return s, nil
		}
	case SettingInt:
		var n int64
		err = json.Unmarshal(raw, &n)
		if err == nil {
			return n, nil
		}
	case SettingUnsignedInt:
		var n uint64
		err = json.Unmarshal(raw, &n)
		if err == nil {
			return n, nil
		}
	case SettingFloat:
		var f float64
		err = json.Unmarshal(raw, &f)
		if err == nil {
			return f, nil
		}
	case SettingTextVec:
		var ss []string
		err = json.Unmarshal(raw, &ss)
		if err == nil {
			if ss == nil {
				ss = []string{}
			}
			return ss, nil
		}
	default:
		return nil, fmt.Errorf("setting value: unknown type %q", t)
	}
	return nil, fmt.Errorf("setting value: %s payload: %w", t, err)
}

// Bool returns the payload of a boolean setting.
func (v SettingValue) Bool() (bool, bool) {
	b, ok := v.Data.(bool)
	return b, ok && v.Type == SettingBoolean
}

// Text returns the payload of string, decimal and image settings.
func (v SettingValue) Text() (string, bool) {
	s, ok := v.Data.(string)
	return s, ok
}

// Int returns int and unsigned_int payloads that fit in an int64.
func (v SettingValue) Int() (int64, bool) {
	switch n := v.Data.(type) {
	case int64:
		return n, true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

// Float returns float payloads and widens integer payloads.
func (v SettingValue) Float() (float64, bool) {
	switch n := v.Data.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// Strings returns the payload of a text_vec setting.
func (v SettingValue) Strings() ([]string, bool) {
	ss, ok := v.Data.([]string)
	return ss, ok
}
