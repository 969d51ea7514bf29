package utils

import (
	"context"
	"os"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

func GenerateTraceId() string {
	return uuid.New().String()
}

// ExtractServiceName returns the service identifier attached to every log
// entry, derived from the ENVIRONMENT variable.
func ExtractServiceName() string {
	service := os.Getenv("ENVIRONMENT")
	if service == "" {
		service = "development"
	}

	return "todo-api-" + service
}

// LogEntry dispatches a message to the entry at the given level.
func LogEntry(entry *log.Entry, level, message string) {
	switch level {
	case "debug":
		entry.Debug(message)
	case "info":
		entry.Info(message)
	case "warn":
		entry.Warn(message)
	case "error":
		entry.Error(message)
	case "fatal":
		entry.Fatal(message)
	case "panic":
		entry.Panic(message)
	default:
		entry.Info(message)
	}
}

// LogMessageWithFields logs a message together with the trace id carried by
// the request context. It accepts any context so both gin contexts and plain
// contexts work.
func LogMessageWithFields(ctx context.Context, level, message string) {
	traceId, _ := ctx.Value(TraceIdKey.String()).(string)

	entry := log.WithFields(log.Fields{
		"traceId": traceId,
		"service": ExtractServiceName(),
	})

	LogEntry(entry, level, message)
}
