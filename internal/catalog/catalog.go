// Package catalog serves the static archaeology reference entries shown on
// the artifacts, excavations and research pages.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"archeohub-backend/internal/models"
)

//go:embed catalog.yaml
var embedded []byte

type Catalog struct {
	Artifacts   []models.Artifact      `yaml:"artifacts"`
	Excavations []models.Site          `yaml:"excavations"`
	Research    []models.ResearchTopic `yaml:"research"`
}

// Default parses the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(embedded)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if err := uniqueIDs("artifacts", c.Artifacts, func(a models.Artifact) int { return a.ID }); err != nil {
		return err
	}
	if err := uniqueIDs("excavations", c.Excavations, func(s models.Site) int { return s.ID }); err != nil {
		return err
	}
	return uniqueIDs("research", c.Research, func(r models.ResearchTopic) int { return r.ID })
}

func uniqueIDs[T any](kind string, items []T, id func(T) int) error {
	seen := make(map[int]bool, len(items))
	for _, item := range items {
		n := id(item)
		if seen[n] {
			return fmt.Errorf("catalog: duplicate %s id %d", kind, n)
		}
		seen[n] = true
	}
	return nil
}

// FilterArtifacts returns entries whose name, era or description contains q
// (case-insensitive). An empty q returns everything.
func (c *Catalog) FilterArtifacts(q string) []models.Artifact {
	return filter(c.Artifacts, q, func(a models.Artifact) []string {
		return []string{a.Name, a.Era, a.Description}
	})
}

func (c *Catalog) FilterExcavations(q string) []models.Site {
	return filter(c.Excavations, q, func(s models.Site) []string {
		return []string{s.Name, s.Location, s.Period, s.Description}
	})
}

func (c *Catalog) FilterResearch(q string) []models.ResearchTopic {
	return filter(c.Research, q, func(r models.ResearchTopic) []string {
		return []string{r.Title, r.Field, r.Description}
	})
}

func (c *Catalog) Artifact(id int) (models.Artifact, bool) {
	return find(c.Artifacts, id, func(a models.Artifact) int { return a.ID })
}

func (c *Catalog) Excavation(id int) (models.Site, bool) {
	return find(c.Excavations, id, func(s models.Site) int { return s.ID })
}

func (c *Catalog) ResearchTopic(id int) (models.ResearchTopic, bool) {
	return find(c.Research, id, func(r models.ResearchTopic) int { return r.ID })
}

func filter[T any](items []T, q string, fields func(T) []string) []T {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]T, 0, len(items))
	for _, item := range items {
		if q == "" || matches(fields(item), q) {
			out = append(out, item)
		}
	}
	return out
}

func matches(fields []string, q string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func find[T any](items []T, id int, idOf func(T) int) (T, bool) {
	for _, item := range items {
		if idOf(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}
