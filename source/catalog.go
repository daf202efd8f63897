// Package source maps amplifier input indices to the display names configured
// by the installer.
package source

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var ErrConfig = errors.New("invalid source configuration")

// Catalog is an immutable, bidirectional index<->name mapping shared by every
// zone of an installation.
type Catalog struct {
	names   map[int]string
	indices map[string]int
	ordered []string
}

// Build parses a raw configuration mapping of numeric-string index to
// display name.
func Build(raw map[string]string) (*Catalog, error) {
	c := &Catalog{
		names:   make(map[int]string, len(raw)),
		indices: make(map[string]int, len(raw)),
	}

	for key, name := range raw {
		index, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("%w: source index %q is not a number", ErrConfig, key)
		}
		if name == "" {
			return nil, fmt.Errorf("%w: source %d has no name", ErrConfig, index)
		}
		if _, found := c.names[index]; found {
			return nil, fmt.Errorf("%w: source index %d configured twice", ErrConfig, index)
		}
		if other, found := c.indices[name]; found {
			return nil, fmt.Errorf("%w: sources %d and %d are both named %q", ErrConfig, other, index, name)
		}
		c.names[index] = name
		c.indices[name] = index
	}

	indices := make([]int, 0, len(c.names))
	for index := range c.names {
		indices = append(indices, index)
	}
	sort.Ints(indices)

	c.ordered = make([]string, 0, len(indices))
	for _, index := range indices {
		c.ordered = append(c.ordered, c.names[index])
	}
	return c, nil
}

// Name returns the display name of index. Unconfigured inputs are expected
// and reported with ok == false.
func (c *Catalog) Name(index int) (name string, ok bool) {
	name, ok = c.names[index]
	return
}

func (c *Catalog) Index(name string) (index int, ok bool) {
	index, ok = c.indices[name]
	return
}

// Names lists the display names ordered by ascending index.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.ordered...)
}

func (c *Catalog) Len() int {
	return len(c.ordered)
}
