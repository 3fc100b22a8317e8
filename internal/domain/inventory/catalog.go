package inventory

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const catalogEnv = "INVENTORY_CATALOG_YAML"

//go:embed catalog.yaml
var embeddedCatalog []byte

const (
	CategoryMerchandising = "Merchandising"
	CategoryComputer      = "Computer"
	CategoryMonitor       = "Monitor"
	CategoryAudio         = "Audio"
	CategoryPeripherals   = "Peripherals"
	CategoryOther         = "Other"
)

const (
	GroupByName       = "name"
	GroupByAttributes = "attributes"
)

type CategorySpec struct {
	Name        string `yaml:"name"`
	Recoverable bool   `yaml:"recoverable"`
	GroupBy     string `yaml:"group_by"`
}

type Catalog struct {
	Version            int            `yaml:"version"`
	Categories         []CategorySpec `yaml:"categories"`
	VolatileAttributes []string       `yaml:"volatile_attributes"`

	byName   map[string]CategorySpec
	volatile map[string]struct{}
}

// fallback used when an override file is unreadable or invalid
var fallbackCatalog = Catalog{
	Version: 1,
	Categories: []CategorySpec{
		{Name: CategoryMerchandising, Recoverable: false, GroupBy: GroupByName},
		{Name: CategoryComputer, Recoverable: true, GroupBy: GroupByAttributes},
		{Name: CategoryMonitor, Recoverable: true, GroupBy: GroupByAttributes},
		{Name: CategoryAudio, Recoverable: true, GroupBy: GroupByAttributes},
		{Name: CategoryPeripherals, Recoverable: true, GroupBy: GroupByAttributes},
		{Name: CategoryOther, Recoverable: true, GroupBy: GroupByAttributes},
	},
	VolatileAttributes: []string{"color"},
}

var (
	catalogOnce  sync.Once
	catalogCache *Catalog
	catalogErr   error
)

// DefaultCatalog returns the category catalog, loading it once.
func DefaultCatalog() *Catalog {
	catalogOnce.Do(func() {
		catalogCache, catalogErr = loadCatalog()
		if catalogErr != nil {
			fb := fallbackCatalog
			fb.index()
			catalogCache = &fb
		}
	})
	return catalogCache
}

// CatalogLoadError reports why the configured catalog was replaced by the fallback.
func CatalogLoadError() error {
	DefaultCatalog()
	return catalogErr
}

func loadCatalog() (*Catalog, error) {
	data := embeddedCatalog
	if path := strings.TrimSpace(os.Getenv(catalogEnv)); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %q: %w", path, err)
		}
		data = b
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if len(c.Categories) == 0 {
		return nil, errors.New("catalog has no categories")
	}
	seen := map[string]bool{}
	for i, cat := range c.Categories {
		name := strings.TrimSpace(cat.Name)
		if name == "" {
			return nil, fmt.Errorf("catalog category %d has no name", i)
		}
		if seen[strings.ToLower(name)] {
			return nil, fmt.Errorf("catalog category %q declared twice", name)
		}
		seen[strings.ToLower(name)] = true
		switch cat.GroupBy {
		case "":
			c.Categories[i].GroupBy = GroupByAttributes
		case GroupByName, GroupByAttributes:
		default:
			return nil, fmt.Errorf("catalog category %q: unknown group_by %q", name, cat.GroupBy)
		}
		c.Categories[i].Name = name
	}
	c.index()
	return &c, nil
}

func (c *Catalog) index() {
	c.byName = make(map[string]CategorySpec, len(c.Categories))
	for _, cat := range c.Categories {
		c.byName[strings.ToLower(cat.Name)] = cat
	}
	c.volatile = make(map[string]struct{}, len(c.VolatileAttributes))
	for _, k := range c.VolatileAttributes {
		c.volatile[strings.ToLower(strings.TrimSpace(k))] = struct{}{}
	}
}

// Lookup resolves a category case-insensitively and returns its canonical spec.
func (c *Catalog) Lookup(category string) (CategorySpec, bool) {
	spec, ok := c.byName[strings.ToLower(strings.TrimSpace(category))]
	return spec, ok
}

func (c *Catalog) IsRecoverable(category string) bool {
	spec, ok := c.Lookup(category)
	return ok && spec.Recoverable
}

func (c *Catalog) GroupsByName(category string) bool {
	spec, ok := c.Lookup(category)
	return ok && spec.GroupBy == GroupByName
}

func (c *Catalog) IsVolatileAttribute(key string) bool {
	_, ok := c.volatile[strings.ToLower(strings.TrimSpace(key))]
	return ok
}
