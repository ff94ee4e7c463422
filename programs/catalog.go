// Package programs holds the bundled example programs.
package programs

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

type Program struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Source      string `yaml:"source"`
}

//go:embed catalog.yaml
var catalogYAML []byte

var catalog = sync.OnceValue(func() []Program {
	var ret []Program
	if err := yaml.Unmarshal(catalogYAML, &ret); err != nil {
		panic(fmt.Errorf("decode catalog: %w", err))
	}
	slices.SortFunc(ret, func(a, b Program) int {
		return strings.Compare(a.Name, b.Name)
	})
	return ret
})

// All returns the catalog sorted by name.
func All() []Program {
	return slices.Clone(catalog())
}

func Get(name string) (Program, bool) {
	for _, p := range catalog() {
		if p.Name == name {
			return p, true
		}
	}
	return Program{}, false
}

// Source returns the source of the named program and panics if there is none.
func Source(name string) string {
	p, ok := Get(name)
	if !ok {
		panic(fmt.Errorf("no such program: %s", name))
	}
	return p.Source
}
