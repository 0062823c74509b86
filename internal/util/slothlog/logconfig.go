package slothlog

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

type LogConfig struct {
	// One of debug, info, warning. Empty means info.
	Level string `json:"level" split_words:"true"`
}

type Level zerolog.Level

func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return Level(zerolog.DebugLevel), nil
	case "info", "":
		return Level(zerolog.InfoLevel), nil
	case "warning":
		return Level(zerolog.WarnLevel), nil
	}
	return 0, fmt.Errorf(
		"Bad logging level: %s. Acceptable values: debug, info, warning", s)
}

// Apply sets the global level.
func (c LogConfig) Apply() error {
	level, err := ParseLevel(c.Level)
	if err != nil {
		return err
	}
	SetLevel(level)
	return nil
}
