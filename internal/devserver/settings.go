package devserver

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/faciam-dev/crudkit/sdk"
)

var (
	ErrSettingNotFound = errors.New("setting not found")
	ErrSettingType     = errors.New("setting type mismatch")
)

// Settings is an in-memory settings table.
type Settings struct {
	mu    sync.RWMutex
	byKey map[string]sdk.Setting
}

// NewSettings returns a table seeded with DefaultSettings.
func NewSettings() *Settings {
	s := &Settings{byKey: map[string]sdk.Setting{}}
	for _, d := range DefaultSettings() {
		s.byKey[d.Key] = d
	}
	return s
}

func (s *Settings) Get(key string) (sdk.Setting, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.byKey[key]
	return v, ok
}

// All returns every setting ordered by key.
func (s *Settings) All() []sdk.Setting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]sdk.Setting, 0, len(s.byKey))
	for _, v := range s.byKey {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b sdk.Setting) int { return strings.Compare(a.Key, b.Key) })
	return out
}

// Many returns the settings for keys in request order, skipping unknown keys.
func (s *Settings) Many(keys []string) []sdk.Setting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]sdk.Setting, 0, len(keys))
	for _, k := range keys {
		if v, ok := s.byKey[k]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Set replaces the value of an existing setting. The value type cannot
// change.
func (s *Settings) Set(v sdk.Setting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.byKey[v.Key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSettingNotFound, v.Key)
	}
	if cur.Value.Type != v.Value.Type {
		return fmt.Errorf("%w: %s is %s, got %s", ErrSettingType, v.Key, cur.Value.Type, v.Value.Type)
	}
	cur.Value = v.Value
	s.byKey[v.Key] = cur
	return nil
}

func text(key, name, value string, desc ...string) sdk.Setting {
	return withDesc(sdk.Setting{Key: key, LongName: name, Value: sdk.SettingValue{Type: sdk.SettingString, Data: value}}, desc)
}

func withDesc(s sdk.Setting, desc []string) sdk.Setting {
	if len(desc) > 0 {
		d := desc[0]
		s.Description = &d
	}
	return s
}

// DefaultSettings are the values a fresh installation starts with.
func DefaultSettings() []sdk.Setting {
	return []sdk.Setting{
		text("business_name", "Business Name", "Business Name"),
		text("business_address", "Business Address", "123 Business Avenue"),
		text("business_email", "Business Email", "business@gmail.com"),
		text("business_website", "Business Website", "https://business.com"),
		{Key: "business_bank_accounts", LongName: "Business Bank Accounts", Value: sdk.SettingValue{Type: sdk.SettingTextVec, Data: []string{}}},
		{Key: "business_phone_numbers", LongName: "Business Phone Numbers", Value: sdk.SettingValue{Type: sdk.SettingTextVec, Data: []string{}}},
		text("currency_prefix", "Currency Prefix", ""),
		text("currency_suffix", "Currency Suffix", ""),
		{Key: "currency_decimal_places", LongName: "Currency Decimal Places", Value: sdk.SettingValue{Type: sdk.SettingUnsignedInt, Data: uint64(2)}},
		text("currency_decimal_separator", "Currency Decimal Separator", "."),
		text("currency_thousand_separator", "Currency Thousand Separator", ","),
		text("theme_color", "Theme Color", "#d3d3d3", "Primary theme color in hex"),
		withDesc(sdk.Setting{Key: "invoice_signature_fields", LongName: "Invoice Signature Fields", Value: sdk.SettingValue{Type: sdk.SettingBoolean, Data: true}},
			[]string{"Whether signature fields should be included in invoices"}),
		text("date_time_format", "Date Time Format", "dd/mm/yy hh:MM tt", "Date and time format, e.g. dd/mm/yy hh:MM tt"),
	}
}
