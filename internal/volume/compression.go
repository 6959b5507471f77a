package volume

import (
	"fmt"
	"strings"
)

// Level is one of the three named compression presets.
type Level int

const (
	LevelBasic Level = iota + 1
	LevelMedium
	LevelAggressive
)

// Levels lists every level in increasing strength.
var Levels = []Level{LevelBasic, LevelMedium, LevelAggressive}

// Settings is the fixed record of options a Level stands for.
type Settings struct {
	Quality         int // target image quality, 0-100
	CompressStreams bool
	CompressImages  bool
	Description     string
}

// ParseLevel maps a level name to a Level.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "basic":
		return LevelBasic, nil
	case "medium":
		return LevelMedium, nil
	case "aggressive":
		return LevelAggressive, nil
	default:
		return 0, fmt.Errorf("%w: unknown compression level %q (choose from basic, medium, aggressive)", ErrInvalidInput, name)
	}
}

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelBasic:
		return "basic"
	case LevelMedium:
		return "medium"
	case LevelAggressive:
		return "aggressive"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Settings returns the fixed settings for the level.
func (l Level) Settings() Settings {
	switch l {
	case LevelBasic:
		return Settings{
			Quality:         85,
			CompressStreams: true,
			CompressImages:  false,
			Description:     "Basic compression - keeps high quality, less compression",
		}
	case LevelMedium:
		return Settings{
			Quality:         65,
			CompressStreams: true,
			CompressImages:  true,
			Description:     "Medium compression - good quality with more compression",
		}
	case LevelAggressive:
		return Settings{
			Quality:         35,
			CompressStreams: true,
			CompressImages:  true,
			Description:     "Aggressive compression - may lose quality for maximum compression",
		}
	default:
		return Settings{}
	}
}

// LevelInfo renders the table of available levels.
func LevelInfo() string {
	var b strings.Builder
	b.WriteString("Available compression levels:")
	for _, l := range Levels {
		fmt.Fprintf(&b, "\n  %s: %s", l, l.Settings().Description)
	}
	return b.String()
}
