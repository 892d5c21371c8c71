// Package core provides the shared building blocks of the storefront
// client: domain types, the error taxonomy, configuration and logging.
//
// The logger here follows a layered approach:
//   - JSON format when running in a cluster-like environment (or when
//     configured explicitly), for log aggregation
//   - human-readable text for local development
//   - level filtering driven by configuration or SHOPFRONT_LOG_LEVEL
package core

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProductionLogger is a structured logger safe for concurrent use.
type ProductionLogger struct {
	level  string
	format string
	output io.Writer
	mu     sync.Mutex
}

// NewLogger creates a logger from the logging configuration. An empty
// format auto-detects: JSON inside Kubernetes, text elsewhere.
func NewLogger(cfg LoggingConfig) *ProductionLogger {
	level := strings.ToUpper(cfg.Level)
	if level == "" {
		level = "INFO"
	}

	format := cfg.Format
	if format == "" {
		format = "text"
		if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
			format = "json"
		}
	}

	return &ProductionLogger{
		level:  level,
		format: format,
		output: os.Stdout,
	}
}

// SetOutput redirects log output, mainly for tests.
func (l *ProductionLogger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
}

func (l *ProductionLogger) Info(msg string, fields map[string]interface{}) {
	l.log("INFO", msg, fields)
}

func (l *ProductionLogger) Warn(msg string, fields map[string]interface{}) {
	l.log("WARN", msg, fields)
}

func (l *ProductionLogger) Error(msg string, fields map[string]interface{}) {
	l.log("ERROR", msg, fields)
}

func (l *ProductionLogger) Debug(msg string, fields map[string]interface{}) {
	l.log("DEBUG", msg, fields)
}

func (l *ProductionLogger) log(level, msg string, fields map[string]interface{}) {
	if !l.shouldLog(level) {
		return
	}

	timestamp := time.Now().Format(time.RFC3339)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.format == "json" {
		l.logJSON(timestamp, level, msg, fields)
	} else {
		l.logText(timestamp, level, msg, fields)
	}
}

func (l *ProductionLogger) logJSON(timestamp, level, msg string, fields map[string]interface{}) {
	entry := map[string]interface{}{
		"timestamp": timestamp,
		"level":     level,
		"service":   "storefront",
		"message":   msg,
	}

	for k, v := range fields {
		// Avoid overwriting core fields
		if k != "timestamp" && k != "level" && k != "service" && k != "message" {
			entry[k] = v
		}
	}

	if data, err := json.Marshal(entry); err == nil {
		fmt.Fprintln(l.output, string(data))
	}
}

func (l *ProductionLogger) logText(timestamp, level, msg string, fields map[string]interface{}) {
	var fieldStr strings.Builder
	if len(fields) > 0 {
		fieldStr.WriteString(" ")
		if op, ok := fields["operation"]; ok {
			fieldStr.WriteString(fmt.Sprintf("operation=%v ", op))
		}
		if err, ok := fields["error"]; ok {
			fieldStr.WriteString(fmt.Sprintf("error=%q ", fmt.Sprintf("%v", err)))
		}
		for k, v := range fields {
			if k == "operation" || k == "error" {
				continue
			}
			fieldStr.WriteString(fmt.Sprintf("%s=%v ", k, v))
		}
	}

	fmt.Fprintf(l.output, "%s [%s] [storefront] %s%s\n",
		timestamp, level, msg, strings.TrimRight(fieldStr.String(), " "))
}

func (l *ProductionLogger) shouldLog(level string) bool {
	levels := map[string]int{
		"DEBUG": 0,
		"INFO":  1,
		"WARN":  2,
		"ERROR": 3,
	}

	currentLevel, ok1 := levels[l.level]
	messageLevel, ok2 := levels[level]
	if !ok1 || !ok2 {
		return true
	}
	return messageLevel >= currentLevel
}
