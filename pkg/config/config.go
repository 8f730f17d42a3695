package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/faciam-dev/crudkit/pkg/crypto"
)

// Cookie is a saved session cookie.
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Profile struct {
	Name    string   `json:"name"`
	APIURL  string   `json:"apiUrl,omitempty"`
	Origin  string   `json:"origin,omitempty"`
	Cookies []Cookie `json:"cookies,omitempty"`
}

// HTTPCookies converts the saved cookies for a cookie jar.
func (p Profile) HTTPCookies() []*http.Cookie {
	out := make([]*http.Cookie, 0, len(p.Cookies))
	for _, c := range p.Cookies {
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

// SetCookies replaces the saved cookies.
func (p *Profile) SetCookies(cs []*http.Cookie) {
	p.Cookies = p.Cookies[:0]
	for _, c := range cs {
		p.Cookies = append(p.Cookies, Cookie{Name: c.Name, Value: c.Value})
	}
	if len(p.Cookies) == 0 {
		p.Cookies = nil
	}
}

type File struct {
	Active   string             `json:"active"`
	Profiles map[string]Profile `json:"profiles"`
	Version  int                `json:"version"`
}

func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".crudctl")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func Load() (*File, error) {
	p, err := Path()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &File{Active: "default", Profiles: map[string]Profile{}, Version: 1}, nil
		}
		return nil, err
	}
	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	if err := openCookies(&f); err != nil {
		return nil, err
	}
	if f.Profiles == nil {
		f.Profiles = map[string]Profile{}
	}
	if f.Active == "" {
		f.Active = "default"
	}
	if f.Version == 0 {
		f.Version = 1
	}
	return &f, nil
}

// Save writes f atomically; the file holds session cookies so it is only
// readable by the owner. Cookie values are sealed when crypto.KeyEnv is set.
func Save(f *File) error {
	p, err := Path()
	if err != nil {
		return err
	}
	out, err := sealCookies(f)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

// sealCookies returns a copy of f with cookie values encrypted, or f itself
// when no key is configured.
func sealCookies(f *File) (*File, error) {
	s, err := crypto.FromEnv()
	if errors.Is(err, crypto.ErrNoKey) {
		return f, nil
	}
	if err != nil {
		return nil, err
	}
	out := *f
	out.Profiles = make(map[string]Profile, len(f.Profiles))
	for name, p := range f.Profiles {
		cs := make([]Cookie, len(p.Cookies))
		for i, c := range p.Cookies {
			if !crypto.IsSealed(c.Value) {
				if c.Value, err = s.SealString(c.Value); err != nil {
					return nil, err
				}
			}
			cs[i] = c
		}
		if len(cs) == 0 {
			cs = nil
		}
		p.Cookies = cs
		out.Profiles[name] = p
	}
	return &out, nil
}

func openCookies(f *File) error {
	var s *crypto.Sealer
	for name, p := range f.Profiles {
		for i, c := range p.Cookies {
			if !crypto.IsSealed(c.Value) {
				continue
			}
			if s == nil {
				var err error
				if s, err = crypto.FromEnv(); err != nil {
					return fmt.Errorf("profile %s has sealed cookies: %w", name, err)
				}
			}
			v, err := s.OpenString(c.Value)
			if err != nil {
				return fmt.Errorf("profile %s: open cookie %s: %w", name, c.Name, err)
			}
			p.Cookies[i].Value = v
		}
		f.Profiles[name] = p
	}
	return nil
}
