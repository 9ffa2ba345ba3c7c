// Package resorts holds the read-only resort name to coordinate directory.
package resorts

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/bobby-s-dev/freeride-assistant/internal/models"
)

//go:embed resorts.yaml
var embeddedResorts []byte

var ErrUnknownResort = errors.New("unknown resort")

type file struct {
	Resorts []models.Resort `yaml:"resorts"`
}

// Directory maps display names to resorts. It is immutable once loaded.
type Directory struct {
	byName map[string]models.Resort
	names  []string
}

// Load reads the directory from path, or from the embedded list when path is empty.
func Load(path string) (*Directory, error) {
	data := embeddedResorts
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read resorts file: %w", err)
		}
		data = b
	}
	return Parse(data)
}

func Parse(data []byte) (*Directory, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse resorts: %w", err)
	}
	if len(f.Resorts) == 0 {
		return nil, fmt.Errorf("parse resorts: no resorts defined")
	}

	d := &Directory{byName: make(map[string]models.Resort, len(f.Resorts))}
	for _, r := range f.Resorts {
		if r.Name == "" {
			return nil, fmt.Errorf("parse resorts: resort without name")
		}
		if _, dup := d.byName[r.Name]; dup {
			return nil, fmt.Errorf("parse resorts: duplicate resort %q", r.Name)
		}
		if math.Abs(r.Latitude) > 90 || math.Abs(r.Longitude) > 180 {
			return nil, fmt.Errorf("parse resorts: %q has invalid coordinates %v,%v", r.Name, r.Latitude, r.Longitude)
		}
		d.byName[r.Name] = r
		d.names = append(d.names, r.Name)
	}
	sort.Strings(d.names)

	return d, nil
}

func (d *Directory) Lookup(name string) (models.Resort, error) {
	r, ok := d.byName[name]
	if !ok {
		return models.Resort{}, fmt.Errorf("%w: %q", ErrUnknownResort, name)
	}
	return r, nil
}

// Names returns resort names sorted alphabetically.
func (d *Directory) Names() []string {
	return append([]string(nil), d.names...)
}

// All returns every resort sorted by name.
func (d *Directory) All() []models.Resort {
	out := make([]models.Resort, 0, len(d.names))
	for _, n := range d.names {
		out = append(out, d.byName[n])
	}
	return out
}

func (d *Directory) Len() int {
	return len(d.names)
}
