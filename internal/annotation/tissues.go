package annotation

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// UnknownSystem is reported for tissues without a system grouping.
const UnknownSystem = "Unknown"

//go:embed tissues.yaml
var tissuesYAML []byte

// TissueCatalog groups tissues into organ systems and lists the tissues
// available for each study.
type TissueCatalog struct {
	Systems map[string]string   `yaml:"systems"`
	Studies map[string][]string `yaml:"studies"`
}

var (
	catalogOnce sync.Once
	catalog     *TissueCatalog
	catalogErr  error
)

// ParseTissueCatalog decodes a catalog from YAML.
func ParseTissueCatalog(data []byte) (*TissueCatalog, error) {
	var c TissueCatalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode tissue catalog: %w", err)
	}
	if c.Systems == nil {
		c.Systems = map[string]string{}
	}
	if c.Studies == nil {
		c.Studies = map[string][]string{}
	}
	return &c, nil
}

// Catalog returns the built-in tissue catalog, decoded on first use.
func Catalog() *TissueCatalog {
	catalogOnce.Do(func() {
		catalog, catalogErr = ParseTissueCatalog(tissuesYAML)
	})
	if catalogErr != nil {
		panic(catalogErr)
	}
	return catalog
}

// System returns the organ system for a tissue, or UnknownSystem.
func (c *TissueCatalog) System(tissue string) string {
	if s, ok := c.Systems[tissue]; ok {
		return s
	}
	return UnknownSystem
}

// TissuesForStudy returns a copy of the tissues listed for a study.
func (c *TissueCatalog) TissuesForStudy(study string) []string {
	return append([]string(nil), c.Studies[study]...)
}

// StudyNames returns the known studies in sorted order.
func (c *TissueCatalog) StudyNames() []string {
	names := make([]string, 0, len(c.Studies))
	for name := range c.Studies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SystemForTissue looks a tissue up in the built-in catalog.
func SystemForTissue(tissue string) string {
	return Catalog().System(tissue)
}

// TissuesForStudy looks a study up in the built-in catalog.
func TissuesForStudy(study string) []string {
	return Catalog().TissuesForStudy(study)
}
