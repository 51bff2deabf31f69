package journald

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"gelfmover/internal/global"
	"gelfmover/internal/receiver/translator"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Writes one event as a journal entry to the configured remote
func (mod *OutModule) Send(ctx context.Context, eventID string, event translator.Event) (err error) {
	if mod == nil {
		return
	}
	err = ctx.Err()
	if err != nil {
		return
	}

	payload := exportEntry(journalFields(eventID, mod.bootID, event))
	err = mod.sendJournalExport(ctx, payload)
	if err != nil {
		err = fmt.Errorf("%w (event id '%s', hostname '%s')", err, eventID, event.ServerName)
		return
	}
	return
}

// Maps an event onto journal fields
func journalFields(eventID, bootID string, event translator.Event) (fields map[string]string) {
	fields = map[string]string{
		"__REALTIME_TIMESTAMP": realtime(event.Timestamp), // Required field
		"_BOOT_ID":             bootID,                    // Required field
		"MESSAGE":              event.Message,             // Required field
		"HOSTNAME":             event.ServerName,
		"SYSLOG_HOSTNAME":      event.ServerName,
		"SYSLOG_IDENTIFIER":    event.Logger,
		"GELF_EVENT_ID":        eventID,
		"GELF_SINK_LEVEL":      event.Level,
		"GELF_FORWARDER":       global.ProgName,
	}
	if level, ok := event.Tags[translator.TagGELFLvl]; ok {
		fields["PRIORITY"] = level
	}
	for key, value := range event.Extra {
		name := fieldName(key)
		if name == "" {
			continue
		}
		fields["GELF_"+name] = formatValue(value)
	}
	return
}

// Journal field names are upper case letters, digits and underscores
func fieldName(key string) (name string) {
	key = strings.TrimLeft(key, "_")
	var out strings.Builder
	for _, char := range strings.ToUpper(key) {
		if (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') {
			out.WriteRune(char)
		} else {
			out.WriteByte('_')
		}
	}
	name = out.String()
	return
}

func formatValue(value any) (text string) {
	switch typed := value.(type) {
	case string:
		text = typed
	case json.Number:
		text = typed.String()
	case nil:
		text = ""
	default:
		encoded, err := json.Marshal(typed)
		if err != nil {
			text = fmt.Sprint(typed)
			return
		}
		text = string(encoded)
	}
	return
}

// Microseconds since epoch from fractional seconds; now when unparsable
func realtime(timestamp json.Number) (micros string) {
	seconds, err := timestamp.Float64()
	if err != nil || seconds <= 0 || math.IsInf(seconds, 0) {
		micros = strconv.FormatInt(time.Now().UnixMicro(), 10)
		return
	}
	micros = strconv.FormatInt(int64(math.Round(seconds*1e6)), 10)
	return
}

// Serializes fields in journal export format.
// Values with newlines use the binary form.
// https://systemd.io/JOURNAL_EXPORT_FORMATS/#journal-export-format
func exportEntry(fields map[string]string) (payload []byte) {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for _, key := range keys {
		value := fields[key]
		if key == "" || value == "" {
			continue
		}
		buf.WriteString(key)
		if strings.ContainsRune(value, '\n') {
			buf.WriteByte('\n')
			var size [8]byte
			binary.LittleEndian.PutUint64(size[:], uint64(len(value)))
			buf.Write(size[:])
		} else {
			buf.WriteByte('=')
		}
		buf.WriteString(value)
		buf.WriteByte('\n')
	}
	// Terminate with double newline
	buf.WriteByte('\n')

	payload = buf.Bytes()
	return
}
