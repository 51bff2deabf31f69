// Maps decoded GELF messages onto the error tracker event schema
package translator

import (
	"fmt"
	"gelfmover/pkg/gelf"
	"maps"
	"strconv"
)

const (
	LevelFatal   string = "fatal"
	LevelError   string = "error"
	LevelWarning string = "warning"
	LevelInfo    string = "info"
	LevelDebug   string = "debug"

	Platform   string = "other"
	TagGELFLvl string = "gelf_level"
)

// Syslog severity (index) to sink level
var DefaultLevels = [8]string{
	LevelFatal,   // emergency
	LevelFatal,   // alert
	LevelFatal,   // critical
	LevelError,   // error
	LevelWarning, // warning
	LevelInfo,    // notice
	LevelInfo,    // informational
	LevelDebug,   // debug
}

// Creates a translator stamping loggerName on every event.
// overrides replaces individual entries of DefaultLevels.
func New(loggerName string, overrides map[int]string) (new *Translator, err error) {
	new = &Translator{
		levels:   DefaultLevels,
		fallback: LevelError,
		logger:   loggerName,
	}

	for severity, level := range overrides {
		if severity < 0 || severity >= len(new.levels) {
			err = fmt.Errorf("severity %d outside 0-7", severity)
			new = nil
			return
		}
		if !validLevel(level) {
			err = fmt.Errorf("unknown level %q for severity %d", level, severity)
			new = nil
			return
		}
		new.levels[severity] = level
	}
	return
}

func validLevel(level string) (valid bool) {
	switch level {
	case LevelFatal, LevelError, LevelWarning, LevelInfo, LevelDebug:
		valid = true
	}
	return
}

// Sink level for a GELF severity; out of range values get the fallback
func (translator *Translator) Level(severity int64) (level string) {
	if severity < 0 || severity >= int64(len(translator.levels)) {
		level = translator.fallback
		return
	}
	level = translator.levels[severity]
	return
}

// Builds the sink event. Total over any decoded message and free of side effects.
func (translator *Translator) Translate(msg gelf.Message) (event Event) {
	event = Event{
		Message:    msg.ShortMessage,
		ServerName: msg.Host,
		Level:      translator.Level(msg.Level),
		Timestamp:  msg.Timestamp,
		Logger:     translator.logger,
		Platform:   Platform,
		Tags:       map[string]string{TagGELFLvl: strconv.FormatInt(msg.Level, 10)},
	}
	if len(msg.Extra) > 0 {
		event.Extra = maps.Clone(msg.Extra)
	}
	return
}
