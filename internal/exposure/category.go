package exposure

// LightCategory is the horticultural reading of average effective sun.
type LightCategory string

const (
	FullSun   LightCategory = "full-sun"
	PartSun   LightCategory = "part-sun"
	PartShade LightCategory = "part-shade"
	FullShade LightCategory = "full-shade"
)

// Categorize maps daily effective sun hours to a light category.
func Categorize(hours float64) LightCategory {
	switch {
	case hours >= 6:
		return FullSun
	case hours >= 4:
		return PartSun
	case hours >= 2:
		return PartShade
	default:
		return FullShade
	}
}
