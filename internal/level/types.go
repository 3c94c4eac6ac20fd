package level

// Level is the band an estimate falls into
type Level string

const (
	LevelNone       Level = "NONE"
	LevelBelowLimit Level = "BELOW_LIMIT"
	LevelOverLimit  Level = "OVER_LIMIT"
	LevelSevere     Level = "SEVERE"
	LevelUndefined  Level = "UNDEFINED"
)

// Valid reports whether l is one of the known levels
func (l Level) Valid() bool {
	switch l {
	case LevelNone, LevelBelowLimit, LevelOverLimit, LevelSevere, LevelUndefined:
		return true
	}
	return false
}

// Thresholds configures the band boundaries, both inclusive lower bounds
type Thresholds struct {
	Limit  float64 `json:"limit" yaml:"limit"`
	Severe float64 `json:"severe" yaml:"severe"`
}

// DefaultThresholds returns the drink-driving limit and the aggravated limit
func DefaultThresholds() Thresholds {
	return Thresholds{
		Limit:  0.5,
		Severe: 1.2,
	}
}

// Classification is the result of classifying a single estimate
type Classification struct {
	Level     Level
	Threshold float64
	Reasons   []string
}
