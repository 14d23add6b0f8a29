package logger

// Level represents the minimum severity a logger emits.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

var levelNames = map[Level]string{
	DebugLevel: "debug",
	InfoLevel:  "info",
	WarnLevel:  "warn",
	ErrorLevel: "error",
}

// String returns the lowercase name of the level.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "info"
}

// ParseLevel maps a level name to its Level, defaulting to info for
// anything unrecognized.
func ParseLevel(levelStr string) Level {
	for level, name := range levelNames {
		if name == levelStr {
			return level
		}
	}
	return InfoLevel
}
