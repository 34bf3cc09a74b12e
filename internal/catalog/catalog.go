// Package catalog holds the static list of social platforms a link can be created for.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed platforms.yaml
var platformsYAML []byte

// Platform is one catalog entry.
type Platform struct {
	Name        string `yaml:"name"        json:"name"`
	Color       string `yaml:"color"       json:"color"`
	Icon        string `yaml:"icon"        json:"icon"`
	Placeholder string `yaml:"placeholder" json:"placeholder"`
}

type Catalog struct {
	platforms []Platform
	byName    map[string]int
}

type file struct {
	Platforms []Platform `yaml:"platforms"`
}

// Default parses the embedded platform list.
func Default() (*Catalog, error) {
	return Parse(platformsYAML)
}

// MustDefault is Default for callers that treat a broken embedded file as a programming error.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: parsing platforms: %w", err)
	}

	c := &Catalog{byName: make(map[string]int, len(f.Platforms))}
	for _, p := range f.Platforms {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			return nil, fmt.Errorf("catalog: platform without a name")
		}
		key := strings.ToLower(p.Name)
		if _, dup := c.byName[key]; dup {
			return nil, fmt.Errorf("catalog: duplicate platform %q", p.Name)
		}
		c.byName[key] = len(c.platforms)
		c.platforms = append(c.platforms, p)
	}
	return c, nil
}

// Lookup finds a platform by case-insensitive name.
func (c *Catalog) Lookup(name string) (Platform, bool) {
	i, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Platform{}, false
	}
	return c.platforms[i], true
}

// Resolve returns the catalog entry for name, or a neutral entry for custom links.
func (c *Catalog) Resolve(name string) Platform {
	if p, ok := c.Lookup(name); ok {
		return p
	}
	return Platform{Name: strings.TrimSpace(name), Color: "#6B7280", Icon: "link"}
}

// All returns the platforms in catalog order.
func (c *Catalog) All() []Platform {
	out := make([]Platform, len(c.platforms))
	copy(out, c.platforms)
	return out
}
