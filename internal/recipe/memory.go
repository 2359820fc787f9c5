// Package recipe provides the built-in recipe catalogue.
package recipe

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hammamikhairi/ottocoach/internal/domain"
	"github.com/hammamikhairi/ottocoach/internal/logger"
)

//go:embed recipes.yaml
var builtinYAML []byte

// Compile-time interface check.
var _ domain.RecipeSource = (*MemorySource)(nil)

// entry is one catalogue record as written in YAML.
type entry struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
	Steps       []struct {
		Description string `yaml:"description"`
		Duration    string `yaml:"duration"`
	} `yaml:"steps"`

	inputs []domain.StepInput
}

// MemorySource holds the catalogue in memory. Safe for concurrent reads.
type MemorySource struct {
	mu      sync.RWMutex
	entries map[string]*entry
	log     *logger.Logger
}

// NewMemorySource creates a recipe source preloaded with the built-in recipes.
func NewMemorySource(log *logger.Logger) (*MemorySource, error) {
	return NewMemorySourceFromYAML(builtinYAML, log)
}

// NewMemorySourceFromYAML loads a catalogue from YAML. Every recipe is
// validated up front so Get never hands out a malformed recipe.
func NewMemorySourceFromYAML(data []byte, log *logger.Logger) (*MemorySource, error) {
	var raw []*entry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing recipe catalogue: %w", err)
	}

	src := &MemorySource{
		entries: make(map[string]*entry, len(raw)),
		log:     log,
	}
	for _, e := range raw {
		if e.ID == "" {
			return nil, fmt.Errorf("recipe %q: %w: missing id", e.Name, domain.ErrInvalidRecipe)
		}
		if _, dup := src.entries[e.ID]; dup {
			return nil, fmt.Errorf("recipe %s: duplicate id", e.ID)
		}
		for i, s := range e.Steps {
			d, err := time.ParseDuration(s.Duration)
			if err != nil {
				return nil, fmt.Errorf("recipe %s step %d: %w", e.ID, i+1, err)
			}
			e.inputs = append(e.inputs, domain.StepInput{
				Description:     s.Description,
				DurationSeconds: int(d.Round(time.Second) / time.Second),
			})
		}
		if _, err := domain.NewRecipe(e.Name, e.inputs); err != nil {
			return nil, fmt.Errorf("recipe %s: %w", e.ID, err)
		}
		src.entries[e.ID] = e
	}

	log.Debug("loaded %d recipes", len(src.entries))
	return src, nil
}

// List returns summaries of all available recipes.
func (s *MemorySource) List(ctx context.Context) ([]domain.RecipeSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.log.Debug("listing all recipes, count=%d", len(s.entries))

	out := make([]domain.RecipeSummary, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Get builds a fresh Recipe for id. Each call returns a new value, so a run
// never shares state with another.
func (s *MemorySource) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		s.log.Debug("recipe not found: %s", id)
		return nil, fmt.Errorf("recipe %s: %w", id, domain.ErrNotFound)
	}
	return domain.NewRecipe(e.Name, e.inputs)
}

// Search returns recipes whose name, description, or tags contain the query.
func (s *MemorySource) Search(ctx context.Context, query string) ([]domain.RecipeSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	s.log.Debug("searching recipes for: %s", q)

	var out []domain.RecipeSummary
	for _, e := range s.entries {
		if e.matches(q) {
			out = append(out, e.summary())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (e *entry) summary() domain.RecipeSummary {
	return domain.RecipeSummary{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Tags:        e.Tags,
		Steps:       len(e.inputs),
	}
}

func (e *entry) matches(query string) bool {
	if strings.Contains(strings.ToLower(e.Name), query) {
		return true
	}
	if strings.Contains(strings.ToLower(e.Description), query) {
		return true
	}
	for _, tag := range e.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}
