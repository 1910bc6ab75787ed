package common

const (
	// Epsilon is the geometric tolerance used for area and distance checks.
	Epsilon = 1e-9

	// HardnessUncuttable marks a shape that no cut may modify.
	HardnessUncuttable uint8 = 255

	DefaultTileExtent     = 512.0
	DefaultTouchTolerance = 0.05
	DefaultDiskSegments   = 24
	// DefaultGravity pulls toward -y; terrain space has y pointing up.
	DefaultGravity = -900.0
)

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
