package server

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "debug", "info", "warning", "error"
}

// consoleWriter turns zerolog JSON events into console messages
type consoleWriter struct {
	consoleChan chan<- ConsoleMessage
}

// NewWebLogger creates a logger for a specific render that forwards Info and
// above to consoleChan and copies every event to out
func NewWebLogger(renderID string, consoleChan chan<- ConsoleMessage, out io.Writer) zerolog.Logger {
	writers := []io.Writer{&consoleWriter{consoleChan: consoleChan}}
	if out != nil {
		writers = append(writers, out)
	}
	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Str("render", renderID).
		Logger()
}

// Write implements io.Writer. It never fails and never blocks: when the
// channel is full the message is dropped.
func (cw *consoleWriter) Write(p []byte) (int, error) {
	if cw.consoleChan == nil {
		return len(p), nil
	}

	msg := ConsoleMessage{Timestamp: time.Now(), Level: "info"}

	var event map[string]interface{}
	if err := json.Unmarshal(p, &event); err != nil {
		msg.Message = strings.TrimSpace(string(p))
	} else {
		msg.Message, msg.Level = formatEvent(event)
	}

	select {
	case cw.consoleChan <- msg:
	default:
	}
	return len(p), nil
}

// formatEvent renders the message followed by its fields as sorted key=value pairs
func formatEvent(event map[string]interface{}) (string, string) {
	level, _ := event[zerolog.LevelFieldName].(string)
	message, _ := event[zerolog.MessageFieldName].(string)
	delete(event, zerolog.LevelFieldName)
	delete(event, zerolog.MessageFieldName)
	delete(event, zerolog.TimestampFieldName)
	delete(event, "render")

	keys := make([]string, 0, len(event))
	for key := range event {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(message)
	for _, key := range keys {
		fmt.Fprintf(&sb, " %s=%v", key, event[key])
	}

	switch level {
	case "":
		level = "info"
	case zerolog.LevelWarnValue:
		level = "warning"
	}
	return strings.TrimSpace(sb.String()), level
}
