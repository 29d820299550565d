// Package glog is the engine's structured logger: JSON log entries on a
// leveled, field-tagged *log.Logger, kept in the same shape as the
// teacher's StructuredLogger with RDP-domain helpers replaced by
// engine-domain ones.
package glog

import (
	"encoding/hex"
	"encoding/json"
	"log"
	"os"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/GoFeGroup/keymagic-go/engine"
	"github.com/GoFeGroup/keymagic-go/vkey"
)

// LEVEL orders log severities for the StructuredLogger's level filter.
// Absent from the trimmed teacher copy; authored here following the same
// DEBUG < INFO < WARN < ERROR ordering the teacher's filter check assumes.
type LEVEL int

const (
	DEBUG LEVEL = iota
	INFO
	WARN
	ERROR
)

// LogEntry represents a structured log entry
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Function  string                 `json:"function,omitempty"`
	File      string                 `json:"file,omitempty"`
	Line      int                    `json:"line,omitempty"`
}

// StructuredLogger provides structured logging capabilities
type StructuredLogger struct {
	logger *log.Logger
	level  LEVEL
	output *os.File
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(output *os.File, level LEVEL) *StructuredLogger {
	if output == nil {
		output = os.Stdout
	}

	return &StructuredLogger{
		logger: log.New(output, "", 0),
		level:  level,
		output: output,
	}
}

// logStructured logs a structured message
func (sl *StructuredLogger) logStructured(level LEVEL, message string, fields map[string]interface{}) {
	if level < sl.level {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     levelToString(level),
		Message:   message,
		Fields:    fields,
	}

	// Convert to JSON
	jsonData, err := json.Marshal(entry)
	if err != nil {
		// Fallback to simple logging if JSON marshaling fails
		sl.logger.Printf("[%s] %s", levelToString(level), message)
		return
	}

	sl.logger.Println(string(jsonData))
}

// levelToString converts LEVEL to string
func levelToString(level LEVEL) string {
	switch level {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// DebugStructured logs a debug message with structured fields
func (sl *StructuredLogger) DebugStructured(message string, fields map[string]interface{}) {
	sl.logStructured(DEBUG, message, fields)
}

// InfoStructured logs an info message with structured fields
func (sl *StructuredLogger) InfoStructured(message string, fields map[string]interface{}) {
	sl.logStructured(INFO, message, fields)
}

// WarnStructured logs a warning message with structured fields
func (sl *StructuredLogger) WarnStructured(message string, fields map[string]interface{}) {
	sl.logStructured(WARN, message, fields)
}

// ErrorStructured logs an error message with structured fields
func (sl *StructuredLogger) ErrorStructured(message string, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	sl.logStructured(ERROR, message, fields)
}

// WithFields returns a copy of the logger. The given fields are not stored
// and do not appear in the copy's entries.
func (sl *StructuredLogger) WithFields(fields map[string]interface{}) *StructuredLogger {
	// Copy the logger; fields is not used
	newLogger := *sl
	return &newLogger
}

// LogPerformance logs a timed operation's duration, kept verbatim in shape
// from the teacher so the management console's per-engine timing can reuse
// it unmodified.
func (sl *StructuredLogger) LogPerformance(operation string, duration time.Duration, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["operation"] = operation
	fields["duration_ms"] = duration.Milliseconds()
	fields["duration_ns"] = duration.Nanoseconds()

	sl.InfoStructured("Performance measurement", fields)
}

// LogKeyboardLoad records a keyboard layout load attempt, replacing the
// teacher's connection-oriented LogConnection.
func (sl *StructuredLogger) LogKeyboardLoad(name string, data []byte, ruleCount int, err error) {
	fields := map[string]interface{}{
		"keyboard":    name,
		"rule_count":  ruleCount,
		"fingerprint": layoutFingerprint(data),
	}

	if err != nil {
		fields["error"] = err.Error()
		sl.ErrorStructured("Keyboard load failed", err, fields)
	} else {
		sl.InfoStructured("Keyboard loaded", fields)
	}
}

// layoutFingerprint identifies a loaded .km2 file by content rather than by
// name alone, so two pool entries loaded from the same bytes under
// different names are recognizable as the same layout in the log stream.
func layoutFingerprint(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// LogKeyEvent records one processed key event and the action it produced,
// replacing the teacher's LogInput.
func (sl *StructuredLogger) LogKeyEvent(vk vkey.VirtualKey, action engine.ActionType, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["key"] = vk.String()
	fields["action"] = int(action)

	sl.DebugStructured("Key event processed", fields)
}

// LogRuleMatch records which rule fired and how many buffer characters it
// consumed, replacing the teacher's LogBitmap/LogVirtualChannel pair.
func (sl *StructuredLogger) LogRuleMatch(ruleIndex int, consumed int) {
	sl.DebugStructured("Rule matched", map[string]interface{}{
		"rule_index": ruleIndex,
		"consumed":   consumed,
	})
}

// Global structured logger instance
var structuredLogger *StructuredLogger

func init() {
	structuredLogger = NewStructuredLogger(nil, DEBUG)
}

// SetStructuredLogger sets the global structured logger
func SetStructuredLogger(logger *StructuredLogger) {
	structuredLogger = logger
}

// GetStructuredLogger returns the global structured logger
func GetStructuredLogger() *StructuredLogger {
	return structuredLogger
}
