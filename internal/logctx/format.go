package logctx

import (
	"strings"
	"time"
)

// Fixed width RFC3339 with nanoseconds
const timestampLayout string = "2006-01-02T15:04:05.000000000Z07:00"

// Interior line breaks come from remote supplied text and are shown escaped
var lineBreakEscaper = strings.NewReplacer("\r", `\r`, "\n", `\n`)

// Renders the event as one log line. Only present parts are printed.
func (event Event) Format() (text string) {
	var line strings.Builder

	section := func(value string) {
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteByte('[')
		line.WriteString(value)
		line.WriteByte(']')
	}

	if !event.Timestamp.IsZero() {
		section(padTimestamp(event.Timestamp))
	}
	if len(event.Tags) > 0 {
		section(strings.Join(event.Tags, "/"))
	}
	if event.Severity != "" {
		section(event.Severity)
	}

	if event.Message != "" {
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		// Message creator determines the trailing newline
		body, trailing := strings.CutSuffix(event.Message, "\n")
		line.WriteString(lineBreakEscaper.Replace(body))
		if trailing {
			line.WriteByte('\n')
		}
	}

	text = line.String()
	return
}

func padTimestamp(timestamp time.Time) (formatted string) {
	formatted = timestamp.Format(timestampLayout)
	return
}
