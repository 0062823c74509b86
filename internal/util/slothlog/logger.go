package slothlog

import (
	"github.com/rs/zerolog"
)

// Tag adds fields to one log event. The T methods take them, as F already stands for
// format strings.
type Tag func(e *zerolog.Event)

func Int64(key string, value int64) Tag {
	return func(e *zerolog.Event) { e.Int64(key, value) }
}

func Int(key string, value int) Tag {
	return func(e *zerolog.Event) { e.Int(key, value) }
}

func Str(key string, value string) Tag {
	return func(e *zerolog.Event) { e.Str(key, value) }
}

func Err(err error) Tag {
	return func(e *zerolog.Event) { e.Err(err) }
}

// Tags merges tags into one.
func Tags(tags ...Tag) Tag {
	return func(e *zerolog.Event) {
		for _, t := range tags {
			t(e)
		}
	}
}

type Logger struct {
	zlog zerolog.Logger
}

func (l Logger) DebugT(t Tag, msg string) {
	emit(l.zlog.Debug(), t, msg)
}

func (l Logger) Info(msg string) {
	l.zlog.Info().Msg(msg)
}

func (l Logger) InfoF(format string, v ...interface{}) {
	l.zlog.Info().Msgf(format, v...)
}

func (l Logger) Warn(msg string) {
	l.zlog.Warn().Msg(msg)
}

func (l Logger) WarnF(format string, v ...interface{}) {
	l.zlog.Warn().Msgf(format, v...)
}

func (l Logger) WarnT(t Tag, msg string) {
	emit(l.zlog.Warn(), t, msg)
}

func (l Logger) Error(msg string) {
	l.zlog.Error().Msg(msg)
}

func (l Logger) ErrorE(err error, msg string) {
	emit(l.zlog.Error(), Err(err), msg)
}

func (l Logger) ErrorF(format string, v ...interface{}) {
	l.zlog.Error().Msgf(format, v...)
}

// Fatal logs and exits the process.
func (l Logger) Fatal(msg string) {
	l.zlog.Fatal().Msg(msg)
}

func (l Logger) FatalE(err error, msg string) {
	emit(l.zlog.Fatal(), Err(err), msg)
}

// emit is a no-op for events below the global level; zerolog hands those out as nil.
func emit(e *zerolog.Event, t Tag, msg string) {
	if e == nil {
		return
	}
	t(e)
	e.Msg(msg)
}
