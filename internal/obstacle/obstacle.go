package obstacle

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidObstacle is returned for obstacles with impossible geometry or an unknown type.
	ErrInvalidObstacle = errors.New("invalid obstacle")
)

// Type is the physical class of an obstacle.
type Type string

const (
	Building      Type = "building"
	Fence         Type = "fence"
	EvergreenTree Type = "evergreen-tree"
	DeciduousTree Type = "deciduous-tree"
	Hedge         Type = "hedge"
)

// transparency is the fraction of direct light passing through one obstacle
// of each type. Constant through the year; leaf-off deciduous trees are not
// modelled.
var transparency = map[Type]float64{
	Building:      0,
	Fence:         0,
	EvergreenTree: 0.3,
	DeciduousTree: 0.4,
	Hedge:         0.3,
}

// Valid reports whether t is one of the known obstacle types.
func (t Type) Valid() bool {
	_, ok := transparency[t]
	return ok
}

// Transparency returns the fraction of light that passes through the type.
func (t Type) Transparency() float64 {
	return transparency[t]
}

// TreeLike reports whether the type is vegetation rather than a structure.
func (t Type) TreeLike() bool {
	switch t {
	case EvergreenTree, DeciduousTree, Hedge:
		return true
	default:
		return false
	}
}

// Point is a planar offset from the observation point, in meters.
type Point struct {
	X float64 `json:"x" yaml:"x"` // east
	Y float64 `json:"y" yaml:"y"` // north
}

// Obstacle is something in or around the garden that can shade it. Obstacles
// are authored by users and treated as read-only.
type Obstacle struct {
	ID        string  `json:"id" yaml:"id"`
	Type      Type    `json:"type" yaml:"type" validate:"required,oneof=building fence evergreen-tree deciduous-tree hedge"`
	Direction float64 `json:"direction" yaml:"direction" validate:"gte=0,lte=360"` // degrees from north
	Distance  float64 `json:"distance" yaml:"distance" validate:"gt=0"`            // meters
	Height    float64 `json:"height" yaml:"height" validate:"gt=0"`                // meters
	Width     float64 `json:"width" yaml:"width" validate:"gt=0"`                  // meters

	// Position overrides the location derived from Direction and Distance
	// when projecting shadows.
	Position *Point `json:"position,omitempty" yaml:"position,omitempty"`
}

// Validate rejects non-positive dimensions, directions outside [0, 360] and
// unknown types.
func (o Obstacle) Validate() error {
	if !o.Type.Valid() {
		return fmt.Errorf("%w: %q has unknown type %q", ErrInvalidObstacle, o.ID, o.Type)
	}
	if !positive(o.Distance) {
		return fmt.Errorf("%w: %q distance must be > 0, got %v", ErrInvalidObstacle, o.ID, o.Distance)
	}
	if !positive(o.Height) {
		return fmt.Errorf("%w: %q height must be > 0, got %v", ErrInvalidObstacle, o.ID, o.Height)
	}
	if !positive(o.Width) {
		return fmt.Errorf("%w: %q width must be > 0, got %v", ErrInvalidObstacle, o.ID, o.Width)
	}
	if math.IsNaN(o.Direction) || o.Direction < 0 || o.Direction > 360 {
		return fmt.Errorf("%w: %q direction must be within [0, 360], got %v", ErrInvalidObstacle, o.ID, o.Direction)
	}
	return nil
}

// Location returns the obstacle's planar position relative to the observer.
func (o Obstacle) Location() Point {
	if o.Position != nil {
		return *o.Position
	}
	rad := o.Direction * math.Pi / 180
	return Point{X: o.Distance * math.Sin(rad), Y: o.Distance * math.Cos(rad)}
}

// ShadeIntensity is the opacity of the obstacle: 1 for solid structures.
func (o Obstacle) ShadeIntensity() float64 {
	return 1 - o.Type.Transparency()
}

// ValidateAll validates every obstacle and stops at the first failure.
func ValidateAll(obstacles []Obstacle) error {
	for i, o := range obstacles {
		if err := o.Validate(); err != nil {
			return fmt.Errorf("obstacle %d: %w", i, err)
		}
	}
	return nil
}

// TreeLike filters obstacles down to vegetation.
func TreeLike(obstacles []Obstacle) []Obstacle {
	out := make([]Obstacle, 0, len(obstacles))
	for _, o := range obstacles {
		if o.Type.TreeLike() {
			out = append(out, o)
		}
	}
	return out
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
