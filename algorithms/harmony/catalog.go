package harmony

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Catalog holds the interval property tables of one ring, keyed by formal length.
// It is an externally fixed music-theory model; this package only reads it.
type Catalog struct {
	Order   int
	entries map[int]catalogEntry
}

type catalogEntry struct {
	name       string
	properties map[Property]float64
}

// on-disk shape of a catalog file
type catalogFile struct {
	Order     int `yaml:"order"`
	Intervals []struct {
		Length     int                `yaml:"length"`
		Name       string             `yaml:"name"`
		Properties map[string]float64 `yaml:"properties"`
	} `yaml:"intervals"`
}

// ParseCatalog decodes a YAML catalog
func ParseCatalog(r io.Reader) (*Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty interval catalog")
		}
		return nil, fmt.Errorf("failed to decode interval catalog: %w", err)
	}

	if !validOrder(file.Order) {
		return nil, fmt.Errorf("%w: catalog order %d", ErrInvalidOrder, file.Order)
	}

	c := &Catalog{Order: file.Order, entries: make(map[int]catalogEntry, len(file.Intervals))}
	for _, iv := range file.Intervals {
		if iv.Length < 0 || iv.Length >= file.Order {
			return nil, fmt.Errorf("catalog interval %q has length %d outside 0..%d", iv.Name, iv.Length, file.Order-1)
		}
		if _, dup := c.entries[iv.Length]; dup {
			return nil, fmt.Errorf("catalog defines length %d twice", iv.Length)
		}
		props := make(map[Property]float64, len(iv.Properties))
		for k, v := range iv.Properties {
			props[Property(k)] = v
		}
		c.entries[iv.Length] = catalogEntry{name: iv.Name, properties: props}
	}
	return c, nil
}

// LoadCatalog reads a YAML catalog from disk
func LoadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open interval catalog: %w", err)
	}
	defer f.Close()
	return ParseCatalog(f)
}

var (
	defaultCatalogOnce sync.Once
	defaultCatalog     *Catalog
)

// DefaultCatalog returns the embedded 12-tone catalog
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := ParseCatalog(bytes.NewReader(defaultCatalogYAML))
		if err != nil {
			panic("embedded interval catalog is invalid: " + err.Error())
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Lengths returns the formal lengths the catalog defines, ascending
func (c *Catalog) Lengths() []int {
	return slices.Sorted(maps.Keys(c.entries))
}

// Name returns the catalog name for a formal length
func (c *Catalog) Name(length int) (string, bool) {
	e, ok := c.entries[length]
	return e.name, ok
}
