package logger

import (
	"log/slog"
	"os"
)

var log *slog.Logger

// Init configures the process-wide structured logger. Call once from main
// before anything else logs.
func Init() {
	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(log)
}

func fieldsToAttrs(fields map[string]interface{}) []any {
	attrs := make([]any, 0, len(fields)*2)
	for key, value := range fields {
		attrs = append(attrs, key, value)
	}
	return attrs
}

func Info(event string, fields map[string]interface{}) {
	logger().Info(event, fieldsToAttrs(fields)...)
}

func Warn(event string, fields map[string]interface{}) {
	logger().Warn(event, fieldsToAttrs(fields)...)
}

func Error(event string, err error, fields map[string]interface{}) {
	attrs := fieldsToAttrs(fields)
	if err != nil {
		attrs = append(attrs, "error", err.Error())
	}
	logger().Error(event, attrs...)
}

func InfoWithUser(userID string, event string, fields map[string]interface{}) {
	attrs := append(fieldsToAttrs(fields), "user_id", userID)
	logger().Info(event, attrs...)
}

func WarnWithUser(userID string, event string, fields map[string]interface{}) {
	attrs := append(fieldsToAttrs(fields), "user_id", userID)
	logger().Warn(event, attrs...)
}

func logger() *slog.Logger {
	if log == nil {
		Init()
	}
	return log
}
