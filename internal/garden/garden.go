// Package garden loads the plots the scheduler keeps fresh.
package garden

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/johnhkchen/solar-sim/internal/obstacle"
	"github.com/johnhkchen/solar-sim/internal/shadow"
	"github.com/johnhkchen/solar-sim/internal/solar"
)

var validate = validator.New()

// ErrInvalidGarden is returned for garden files that fail validation.
var ErrInvalidGarden = errors.New("invalid garden file")

// Plot is one bed or observation point.
type Plot struct {
	Name        string              `yaml:"name" json:"name" validate:"required"`
	Coordinates solar.Coordinates   `yaml:",inline" json:"coordinates"`
	Slope       *shadow.PlotSlope   `yaml:"slope,omitempty" json:"slope,omitempty"`
	Obstacles   []obstacle.Obstacle `yaml:"obstacles" json:"obstacles" validate:"dive"`
}

// Garden is the parsed garden file.
type Garden struct {
	Plots []Plot `yaml:"plots" validate:"dive"`
}

// Load reads and validates a YAML garden file.
func Load(path string) (*Garden, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read garden file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a garden document. Obstacles without an ID get a random one.
func Parse(data []byte) (*Garden, error) {
	var g Garden
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGarden, err)
	}

	for i := range g.Plots {
		for j := range g.Plots[i].Obstacles {
			if g.Plots[i].Obstacles[j].ID == "" {
				g.Plots[i].Obstacles[j].ID = uuid.NewString()
			}
		}
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// Validate checks struct tags, then domain rules, and rejects duplicate names.
func (g *Garden) Validate() error {
	if err := validate.Struct(g); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidGarden, err)
	}

	seen := make(map[string]bool, len(g.Plots))
	for _, p := range g.Plots {
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate plot %q", ErrInvalidGarden, p.Name)
		}
		seen[p.Name] = true

		if err := p.Coordinates.Validate(); err != nil {
			return fmt.Errorf("%w: plot %q: %w", ErrInvalidGarden, p.Name, err)
		}
		if p.Slope != nil {
			if err := p.Slope.Validate(); err != nil {
				return fmt.Errorf("%w: plot %q: %w", ErrInvalidGarden, p.Name, err)
			}
		}
		if err := obstacle.ValidateAll(p.Obstacles); err != nil {
			return fmt.Errorf("%w: plot %q: %w", ErrInvalidGarden, p.Name, err)
		}
	}
	return nil
}

// Plot returns the plot called name.
func (g *Garden) Plot(name string) (Plot, bool) {
	for _, p := range g.Plots {
		if p.Name == name {
			return p, true
		}
	}
	return Plot{}, false
}
