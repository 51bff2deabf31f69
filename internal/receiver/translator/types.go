package translator

import "encoding/json"

// Sink side representation of one GELF record
type Event struct {
	Message    string            `json:"message"`
	ServerName string            `json:"server_name"`
	Level      string            `json:"level"`
	Timestamp  json.Number       `json:"timestamp"`
	Logger     string            `json:"logger,omitempty"`
	Platform   string            `json:"platform"`
	Tags       map[string]string `json:"tags,omitempty"`
	Extra      map[string]any    `json:"extra,omitempty"`
}

// Maps GELF severities onto sink levels
type Translator struct {
	levels   [8]string
	fallback string
	logger   string
}
