// Syslog severity names as carried in the GELF level field
package syslog

import (
	"fmt"
	"strconv"
)

var severityNames = [8]string{
	"emerg",
	"alert",
	"crit",
	"err",
	"warning",
	"notice",
	"info",
	"debug",
}

// Aliases accepted in addition to the canonical names
var severityAliases = map[string]int{
	"emergency":     0,
	"panic":         0,
	"critical":      2,
	"error":         3,
	"warn":          4,
	"informational": 6,
}

// Convert severity string to numeric code
func SeverityToCode(severity string) (code int, err error) {
	for index, name := range severityNames {
		if name == severity {
			code = index
			return
		}
	}
	code, exists := severityAliases[severity]
	if !exists {
		err = fmt.Errorf("unknown severity name: %s", severity)
	}
	return
}

// Convert severity code to string
func CodeToSeverity(code int) (severity string, err error) {
	if code < 0 || code >= len(severityNames) {
		err = fmt.Errorf("unknown severity code: %d", code)
		return
	}
	severity = severityNames[code]
	return
}

// Accepts a severity as either its number or its name
func ParseSeverity(raw string) (code int, err error) {
	code, err = strconv.Atoi(raw)
	if err == nil {
		_, err = CodeToSeverity(code)
		return
	}
	code, err = SeverityToCode(raw)
	return
}
