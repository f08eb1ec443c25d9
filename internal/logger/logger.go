package logger

import (
	"encoding/json"
	"log"
	"os"
	"time"
)

// Minimal structured logger: one JSON object per line on stdout.
// Deliberately not leveled beyond the four entry points below.

func Init() {
	log.SetOutput(os.Stdout)
	log.SetFlags(0)
	emit("INFO", "logger initialized", nil)
}

func emit(level, msg string, fields map[string]any) {
	entry := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339),
		"level": level,
		"msg":   msg,
	}
	if len(fields) > 0 {
		entry["fields"] = fields
	}
	line, err := json.Marshal(entry)
	if err != nil {
		log.Printf(`{"level":"ERROR","msg":"unloggable entry: %s"}`, err)
		return
	}
	log.Print(string(line))
}

func Info(msg string, fields map[string]any)  { emit("INFO", msg, fields) }
func Warn(msg string, fields map[string]any)  { emit("WARN", msg, fields) }
func Error(msg string, fields map[string]any) { emit("ERROR", msg, fields) }

func Fatal(msg string, fields map[string]any) {
	emit("FATAL", msg, fields)
	os.Exit(1)
}
