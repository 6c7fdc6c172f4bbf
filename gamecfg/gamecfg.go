// Package gamecfg manages game profiles: which dialects a game supports and
// which file extensions it uses. Profiles for the stock games are built in;
// user profiles are TOML files merged over the registry.
package gamecfg

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/s3thra/TrenchBroom/mapparser"
)

// Profile describes one game: its name, the dialects it accepts (first is
// the default), and the map file extensions it uses.
type Profile struct {
	Name       string
	Dialects   []mapparser.Dialect
	Extensions []string
}

// DefaultDialect returns the profile's preferred dialect.
func (p *Profile) DefaultDialect() mapparser.Dialect {
	if len(p.Dialects) == 0 {
		return mapparser.DialectUnknown
	}
	return p.Dialects[0]
}

// Supports reports whether the profile accepts the given dialect.
func (p *Profile) Supports(d mapparser.Dialect) bool {
	for _, s := range p.Dialects {
		if s == d {
			return true
		}
	}
	return false
}

// Registry holds profiles keyed by game name.
type Registry struct {
	profiles map[string]*Profile
}

// NewRegistry returns a registry preloaded with the stock game profiles.
func NewRegistry() *Registry {
	r := &Registry{profiles: make(map[string]*Profile)}
	for _, p := range builtinProfiles() {
		r.profiles[p.Name] = p
	}
	return r
}

func builtinProfiles() []*Profile {
	return []*Profile{
		{Name: "Quake", Dialects: []mapparser.Dialect{mapparser.DialectStandard, mapparser.DialectValve}, Extensions: []string{".map"}},
		{Name: "Half-Life", Dialects: []mapparser.Dialect{mapparser.DialectValve}, Extensions: []string{".map"}},
		{Name: "Quake 2", Dialects: []mapparser.Dialect{mapparser.DialectQuake2, mapparser.DialectQuake2Valve}, Extensions: []string{".map"}},
		{Name: "Quake 3", Dialects: []mapparser.Dialect{mapparser.DialectQuake3, mapparser.DialectQuake2}, Extensions: []string{".map"}},
		{Name: "Hexen 2", Dialects: []mapparser.Dialect{mapparser.DialectHexen2}, Extensions: []string{".map"}},
		{Name: "Daikatana", Dialects: []mapparser.Dialect{mapparser.DialectDaikatana}, Extensions: []string{".map"}},
		{Name: "Heretic 2", Dialects: []mapparser.Dialect{mapparser.DialectQuake2}, Extensions: []string{".map"}},
	}
}

// Profile returns the profile for name, or nil when unknown.
func (r *Registry) Profile(name string) *Profile {
	return r.profiles[name]
}

// Names returns all registered game names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// profileFile mirrors the TOML layout of a user profile:
//
//	[game]
//	name = "Quake 2"
//	formats = ["Quake2"]
//
//	[files]
//	extensions = [".map"]
type profileFile struct {
	Game struct {
		Name    string   `toml:"name"`
		Formats []string `toml:"formats"`
	} `toml:"game"`
	Files struct {
		Extensions []string `toml:"extensions"`
	} `toml:"files"`
}

// Load reads one TOML profile and merges it into the registry, replacing any
// existing profile with the same name.
func (r *Registry) Load(path string) (*Profile, error) {
	var file profileFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("reading game profile %s: %w", path, err)
	}
	if file.Game.Name == "" {
		return nil, fmt.Errorf("game profile %s: missing game name", path)
	}
	if len(file.Game.Formats) == 0 {
		return nil, fmt.Errorf("game profile %s: no formats listed", path)
	}

	profile := &Profile{Name: file.Game.Name, Extensions: file.Files.Extensions}
	for _, name := range file.Game.Formats {
		d := mapparser.ParseDialect(name)
		if d == mapparser.DialectUnknown {
			return nil, fmt.Errorf("game profile %s: unknown format %q", path, name)
		}
		profile.Dialects = append(profile.Dialects, d)
	}
	if len(profile.Extensions) == 0 {
		profile.Extensions = []string{".map"}
	}
	r.profiles[profile.Name] = profile
	return profile, nil
}

// LoadDir merges every *.toml profile in dir into the registry. A missing
// directory is not an error.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading profile directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		if _, err := r.Load(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// DetectProfile probes the document's game header comment and returns the
// matching profile, or nil when the game is absent or unknown.
func (r *Registry) DetectProfile(src []byte) *Profile {
	name := mapparser.ReadGameComment(src)
	if name == "" {
		return nil
	}
	return r.profiles[name]
}

// ValidatePair is the pre-parse configuration check: both dialects must be
// defined, and when a profile is given it must support the source dialect.
func ValidatePair(profile *Profile, source, target mapparser.Dialect) error {
	if _, err := mapparser.NewParser(nil, source, target, nil); err != nil {
		return err
	}
	if profile != nil && !profile.Supports(source) {
		return fmt.Errorf("game %q does not support the %s dialect", profile.Name, source)
	}
	return nil
}
