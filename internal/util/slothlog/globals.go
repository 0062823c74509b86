package slothlog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func LogCommandLine() {
	fmt.Printf("Command: %s\n", strings.Join(os.Args, " "))
}

var GlobalLogger Logger

// SetGlobalOutput sends all loggers, sub-loggers included, to w.
func SetGlobalOutput(w io.Writer) {
	log.Logger = log.Output(
		zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: "2006-01-02 15:04:05",
			PartsOrder: []string{"level", "time", "caller", "message"},
		},
	)
	GlobalLogger.zlog = log.Logger
	refreshSubloggers()
}

func SetLevel(level Level) {
	zerolog.SetGlobalLevel(zerolog.Level(level))
}

func init() {
	SetGlobalOutput(os.Stdout)
}

var (
	subloggersMu sync.Mutex
	subloggers   = map[string]*Logger{}
)

func newSublogger(module string) Logger {
	return Logger{GlobalLogger.zlog.With().Str("module", module).Logger()}
}

// SubLogger returns a logger tagged with module. The returned pointer follows later
// SetGlobalOutput calls.
func SubLogger(module string) *Logger {
	subloggersMu.Lock()
	defer subloggersMu.Unlock()
	if l, ok := subloggers[module]; ok {
		return l
	}
	l := newSublogger(module)
	subloggers[module] = &l
	return &l
}

func refreshSubloggers() {
	subloggersMu.Lock()
	defer subloggersMu.Unlock()
	for module, l := range subloggers {
		*l = newSublogger(module)
	}
}

func Fatal(msg string) {
	GlobalLogger.Fatal(msg)
}

func FatalE(err error, msg string) {
	GlobalLogger.FatalE(err, msg)
}
